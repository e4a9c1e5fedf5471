package usecases

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// GuildLocks serializes operations on the voice session of a single guild.
// Operations on different guilds do not block each other.
type GuildLocks struct {
	mu    sync.Mutex
	locks map[snowflake.ID]*sync.Mutex
}

// NewGuildLocks creates a new GuildLocks.
func NewGuildLocks() *GuildLocks {
	return &GuildLocks{
		locks: make(map[snowflake.ID]*sync.Mutex),
	}
}

// Lock acquires the lock of the given guild and returns the function releasing it.
func (g *GuildLocks) Lock(guildID snowflake.ID) (unlock func()) {
	g.mu.Lock()
	lock, ok := g.locks[guildID]
	if !ok {
		lock = &sync.Mutex{}
		g.locks[guildID] = lock
	}
	g.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
