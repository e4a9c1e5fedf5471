package usecases

import (
	"context"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/rollcall/internal/modules/voice/application/ports"
	"github.com/sglre6355/rollcall/internal/modules/voice/domain"
)

type mockRepository struct {
	mu       sync.Mutex
	sessions map[snowflake.ID]*domain.VoiceSession
	deleted  []snowflake.ID
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		sessions: make(map[snowflake.ID]*domain.VoiceSession),
	}
}

func (m *mockRepository) Get(guildID snowflake.ID) *domain.VoiceSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[guildID]
}

func (m *mockRepository) Save(session *domain.VoiceSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.GetGuildID()] = session
}

func (m *mockRepository) Delete(guildID snowflake.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, guildID)
	delete(m.sessions, guildID)
}

func (m *mockRepository) All() []*domain.VoiceSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.VoiceSession, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

// createConnectedState creates a VoiceSession on a fresh mock connection and saves it.
func (m *mockRepository) createConnectedState(
	guildID, channelID snowflake.ID,
) (*domain.VoiceSession, *mockConnection) {
	conn := &mockConnection{}
	session := domain.NewVoiceSession(guildID, channelID, conn)
	m.Save(session)
	return session, conn
}

type mockConnection struct {
	mu            sync.Mutex
	disconnects   int
	disconnectErr error
}

func (m *mockConnection) Speaking(bool) error { return nil }

func (m *mockConnection) SendOpus(context.Context, []byte) error { return nil }

func (m *mockConnection) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnects++
	return m.disconnectErr
}

func (m *mockConnection) disconnectCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disconnects
}

type mockConnector struct {
	mu      sync.Mutex
	err     error
	reuse   domain.VoiceConnection // returned instead of a new connection when set
	created []*mockConnection
	calls   []snowflake.ID // channel IDs
}

func (m *mockConnector) Connect(
	_ context.Context,
	_, channelID snowflake.ID,
) (domain.VoiceConnection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, channelID)
	if m.err != nil {
		return nil, m.err
	}
	if m.reuse != nil {
		return m.reuse, nil
	}
	conn := &mockConnection{}
	m.created = append(m.created, conn)
	return conn, nil
}

type mockVoiceStateProvider struct {
	mu       sync.Mutex
	channels map[snowflake.ID]snowflake.ID // userID -> channelID
	err      error
}

func newMockVoiceStateProvider() *mockVoiceStateProvider {
	return &mockVoiceStateProvider{channels: make(map[snowflake.ID]snowflake.ID)}
}

func (m *mockVoiceStateProvider) GetUserVoiceChannel(
	_, userID snowflake.ID,
) (snowflake.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return m.channels[userID], nil
}

type mockDownloader struct {
	mu         sync.Mutex
	title      string
	err        error
	onDownload func(ctx context.Context) error
	downloads  []string
	cleaned    []*ports.Media
}

func (m *mockDownloader) Download(ctx context.Context, url string) (*ports.Media, error) {
	m.mu.Lock()
	m.downloads = append(m.downloads, url)
	n := len(m.downloads)
	m.mu.Unlock()

	if m.onDownload != nil {
		if err := m.onDownload(ctx); err != nil {
			return nil, err
		}
	}
	if m.err != nil {
		return nil, m.err
	}

	dir := "/tmp/media-" + string(rune('a'+n-1))
	return &ports.Media{
		Title: m.title,
		Path:  dir + "/audio.mp3",
		Dir:   dir,
	}, nil
}

func (m *mockDownloader) Cleanup(media *ports.Media) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleaned = append(m.cleaned, media)
	return nil
}

func (m *mockDownloader) downloadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.downloads)
}

func (m *mockDownloader) cleanedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cleaned)
}

type mockPlayer struct {
	mu      sync.Mutex
	paths   []string
	started chan string // receives the path when playback starts, if set
	block   bool        // block until the context is cancelled
	err     error
}

func (m *mockPlayer) Play(ctx context.Context, _ domain.VoiceConnection, path string) error {
	m.mu.Lock()
	m.paths = append(m.paths, path)
	m.mu.Unlock()

	if m.started != nil {
		m.started <- path
	}
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return m.err
}

func (m *mockPlayer) playedPaths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.paths...)
}
