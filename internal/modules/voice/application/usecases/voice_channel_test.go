package usecases

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/disgoorg/snowflake/v2"
)

func newTestVoiceChannelService() (
	*VoiceChannelService,
	*mockRepository,
	*mockConnector,
	*mockVoiceStateProvider,
) {
	repo := newMockRepository()
	connector := &mockConnector{}
	voiceState := newMockVoiceStateProvider()
	service := NewVoiceChannelService(repo, connector, voiceState, NewGuildLocks())
	return service, repo, connector, voiceState
}

func TestVoiceChannelService_Join(t *testing.T) {
	guildID := snowflake.ID(1)
	userID := snowflake.ID(2)
	voiceChannelID := snowflake.ID(4)

	tests := []struct {
		name          string
		setupRepo     func(*mockRepository)
		setupConn     func(*mockConnector)
		setupVoice    func(*mockVoiceStateProvider)
		wantErr       bool
		wantSession   bool
		wantConnected bool
		wantConnects  int
	}{
		{
			name: "join user's channel",
			setupVoice: func(m *mockVoiceStateProvider) {
				m.channels[userID] = voiceChannelID
			},
			wantSession:   true,
			wantConnected: true,
			wantConnects:  1,
		},
		{
			name:         "user not in voice is a silent no-op",
			wantSession:  false,
			wantConnects: 0,
		},
		{
			name: "voice state lookup error",
			setupVoice: func(m *mockVoiceStateProvider) {
				m.err = errors.New("guild not cached")
			},
			wantErr:      true,
			wantConnects: 0,
		},
		{
			name: "already connected to same channel",
			setupRepo: func(m *mockRepository) {
				m.createConnectedState(guildID, voiceChannelID)
			},
			setupVoice: func(m *mockVoiceStateProvider) {
				m.channels[userID] = voiceChannelID
			},
			wantSession:  true,
			wantConnects: 0,
		},
		{
			name: "voice connection error",
			setupConn: func(m *mockConnector) {
				m.err = errors.New("connection failed")
			},
			setupVoice: func(m *mockVoiceStateProvider) {
				m.channels[userID] = voiceChannelID
			},
			wantErr:      true,
			wantSession:  false,
			wantConnects: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, connector, voiceState := newTestVoiceChannelService()
			if tt.setupRepo != nil {
				tt.setupRepo(repo)
			}
			if tt.setupConn != nil {
				tt.setupConn(connector)
			}
			if tt.setupVoice != nil {
				tt.setupVoice(voiceState)
			}

			output, err := service.Join(context.Background(), JoinInput{
				GuildID: guildID,
				UserID:  userID,
			})

			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if output.Connected != tt.wantConnected {
					t.Errorf("expected connected=%v, got %v", tt.wantConnected, output.Connected)
				}
			}

			if got := repo.Get(guildID) != nil; got != tt.wantSession {
				t.Errorf("expected session present=%v, got %v", tt.wantSession, got)
			}
			if len(connector.calls) != tt.wantConnects {
				t.Errorf("expected %d connects, got %d", tt.wantConnects, len(connector.calls))
			}
		})
	}
}

func TestVoiceChannelService_Join_StoresUserChannel(t *testing.T) {
	service, repo, _, voiceState := newTestVoiceChannelService()
	guildID := snowflake.ID(1)
	voiceState.channels[snowflake.ID(2)] = snowflake.ID(4)

	output, err := service.Join(context.Background(), JoinInput{GuildID: guildID, UserID: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if output.VoiceChannelID != snowflake.ID(4) {
		t.Errorf("expected channel ID 4, got %d", output.VoiceChannelID)
	}
	session := repo.Get(guildID)
	if session == nil {
		t.Fatal("expected session to be created")
	}
	if session.GetChannelID() != snowflake.ID(4) {
		t.Errorf("expected session channel 4, got %d", session.GetChannelID())
	}
}

func TestVoiceChannelService_Join_DifferentChannelReplacesConnection(t *testing.T) {
	service, repo, connector, voiceState := newTestVoiceChannelService()
	guildID := snowflake.ID(1)
	oldSession, oldConn := repo.createConnectedState(guildID, snowflake.ID(4))
	voiceState.channels[snowflake.ID(2)] = snowflake.ID(5)

	playbackStopped := false
	oldSession.StartPlayback("old track", func() { playbackStopped = true })

	_, err := service.Join(context.Background(), JoinInput{GuildID: guildID, UserID: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if oldConn.disconnectCount() != 1 {
		t.Errorf("expected old connection to be disconnected once, got %d", oldConn.disconnectCount())
	}
	if !playbackStopped {
		t.Error("expected playback on the old channel to be stopped")
	}

	session := repo.Get(guildID)
	if session == nil || session.GetChannelID() != snowflake.ID(5) {
		t.Fatal("expected session for channel 5")
	}
	if session.Connection() != connector.created[0] {
		t.Error("expected session to hold the new connection")
	}
}

func TestVoiceChannelService_Join_MovedConnectionIsKept(t *testing.T) {
	service, repo, connector, voiceState := newTestVoiceChannelService()
	guildID := snowflake.ID(1)
	_, conn := repo.createConnectedState(guildID, snowflake.ID(4))
	connector.reuse = conn
	voiceState.channels[snowflake.ID(2)] = snowflake.ID(5)

	_, err := service.Join(context.Background(), JoinInput{GuildID: guildID, UserID: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if conn.disconnectCount() != 0 {
		t.Errorf("expected moved connection not to be disconnected, got %d", conn.disconnectCount())
	}
	if repo.Get(guildID).Connection() != conn {
		t.Error("expected session to keep the moved connection")
	}
}

func TestVoiceChannelService_Join_ConcurrentSameGuildDoesNotLeak(t *testing.T) {
	service, repo, connector, voiceState := newTestVoiceChannelService()
	guildID := snowflake.ID(1)

	// Users in two different channels race to summon the bot
	for u := 1; u <= 20; u++ {
		voiceState.channels[snowflake.ID(u)] = snowflake.ID(100 + u%2)
	}

	var wg sync.WaitGroup
	for u := 1; u <= 20; u++ {
		wg.Add(1)
		go func(userID snowflake.ID) {
			defer wg.Done()
			if _, err := service.Join(context.Background(), JoinInput{GuildID: guildID, UserID: userID}); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}(snowflake.ID(u))
	}
	wg.Wait()

	session := repo.Get(guildID)
	if session == nil {
		t.Fatal("expected a session")
	}

	open := 0
	for _, conn := range connector.created {
		if conn.disconnectCount() == 0 {
			open++
			if session.Connection() != conn {
				t.Error("expected the only open connection to be the stored one")
			}
		}
	}
	if open != 1 {
		t.Errorf("expected exactly 1 open connection, got %d of %d", open, len(connector.created))
	}
}

func TestVoiceChannelService_Leave(t *testing.T) {
	guildID := snowflake.ID(1)

	t.Run("no session is a no-op", func(t *testing.T) {
		service, repo, _, _ := newTestVoiceChannelService()

		if err := service.Leave(context.Background(), LeaveInput{GuildID: guildID}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(repo.deleted) != 0 {
			t.Errorf("expected no state change, got deletes %v", repo.deleted)
		}
	})

	t.Run("disconnects and removes session", func(t *testing.T) {
		service, repo, _, _ := newTestVoiceChannelService()
		session, conn := repo.createConnectedState(guildID, snowflake.ID(4))

		stopped := false
		session.StartPlayback("track", func() { stopped = true })

		if err := service.Leave(context.Background(), LeaveInput{GuildID: guildID}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if conn.disconnectCount() != 1 {
			t.Errorf("expected 1 disconnect, got %d", conn.disconnectCount())
		}
		if repo.Get(guildID) != nil {
			t.Error("expected session to be removed")
		}
		if !stopped {
			t.Error("expected playback to be stopped")
		}
	})

	t.Run("disconnect error still removes session", func(t *testing.T) {
		service, repo, _, _ := newTestVoiceChannelService()
		_, conn := repo.createConnectedState(guildID, snowflake.ID(4))
		conn.disconnectErr = errors.New("websocket closed")

		err := service.Leave(context.Background(), LeaveInput{GuildID: guildID})
		if err == nil {
			t.Error("expected error, got nil")
		}
		if repo.Get(guildID) != nil {
			t.Error("expected session to be removed")
		}
	})

	t.Run("leaving twice", func(t *testing.T) {
		service, repo, _, _ := newTestVoiceChannelService()
		_, conn := repo.createConnectedState(guildID, snowflake.ID(4))

		for range 2 {
			if err := service.Leave(context.Background(), LeaveInput{GuildID: guildID}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if conn.disconnectCount() != 1 {
			t.Errorf("expected 1 disconnect, got %d", conn.disconnectCount())
		}
	})
}

func TestVoiceChannelService_JoinThenLeave(t *testing.T) {
	service, repo, _, voiceState := newTestVoiceChannelService()
	guildID := snowflake.ID(1)
	voiceState.channels[snowflake.ID(2)] = snowflake.ID(4)

	if _, err := service.Join(context.Background(), JoinInput{GuildID: guildID, UserID: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.Get(guildID) == nil {
		t.Fatal("expected session after join")
	}

	if err := service.Leave(context.Background(), LeaveInput{GuildID: guildID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.Get(guildID) != nil {
		t.Error("expected no session after leave")
	}
}

func TestVoiceChannelService_HandleBotVoiceStateChange(t *testing.T) {
	guildID := snowflake.ID(1)

	t.Run("disconnected removes session", func(t *testing.T) {
		service, repo, _, _ := newTestVoiceChannelService()
		session, conn := repo.createConnectedState(guildID, snowflake.ID(4))
		stopped := false
		session.StartPlayback("track", func() { stopped = true })

		service.HandleBotVoiceStateChange(BotVoiceStateChangeInput{GuildID: guildID})

		if repo.Get(guildID) != nil {
			t.Error("expected session to be removed")
		}
		if !stopped {
			t.Error("expected playback to be stopped")
		}
		if conn.disconnectCount() != 1 {
			t.Errorf("expected dropped connection to be closed, got %d", conn.disconnectCount())
		}
	})

	t.Run("moved updates channel", func(t *testing.T) {
		service, repo, _, _ := newTestVoiceChannelService()
		repo.createConnectedState(guildID, snowflake.ID(4))
		newChannel := snowflake.ID(9)

		service.HandleBotVoiceStateChange(BotVoiceStateChangeInput{
			GuildID:      guildID,
			NewChannelID: &newChannel,
		})

		session := repo.Get(guildID)
		if session == nil {
			t.Fatal("expected session to remain")
		}
		if session.GetChannelID() != newChannel {
			t.Errorf("expected channel %d, got %d", newChannel, session.GetChannelID())
		}
	})

	t.Run("no session", func(t *testing.T) {
		service, repo, _, _ := newTestVoiceChannelService()

		service.HandleBotVoiceStateChange(BotVoiceStateChangeInput{GuildID: guildID})

		if len(repo.deleted) != 0 {
			t.Errorf("expected no deletes, got %v", repo.deleted)
		}
	})
}

func TestVoiceChannelService_Shutdown(t *testing.T) {
	service, repo, _, _ := newTestVoiceChannelService()
	_, conn1 := repo.createConnectedState(snowflake.ID(1), snowflake.ID(10))
	_, conn2 := repo.createConnectedState(snowflake.ID(2), snowflake.ID(20))

	if err := service.Shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if conn1.disconnectCount() != 1 || conn2.disconnectCount() != 1 {
		t.Error("expected every connection to be disconnected")
	}
	if len(repo.All()) != 0 {
		t.Errorf("expected no sessions, got %d", len(repo.All()))
	}
}
