package bot

import "github.com/bwmarrin/discordgo"

// CommandHandler handles a prefixed text command.
// args holds the whitespace-separated words following the command name.
type CommandHandler func(s *discordgo.Session, m *discordgo.MessageCreate, args []string, r Responder) error

// Command describes a single text command provided by a module.
type Command struct {
	// Name is the word following the prefix, e.g. "roll" for "!roll".
	Name string

	// Usage lists the arguments for the help output, e.g. "<max_val>".
	Usage string

	// Brief is the one-line description shown by the help command.
	Brief string

	Handler CommandHandler
}

// EventHandler is a generic handler for any Discord event.
// It should be a function matching one of discordgo's handler signatures,
// e.g., func(s *discordgo.Session, m *discordgo.VoiceStateUpdate)
type EventHandler any

// ModuleDependencies provides dependencies that modules may need during initialization.
type ModuleDependencies struct {
	Session *discordgo.Session
	Config  *Config
}

// Module defines the interface that all bot modules must implement.
type Module interface {
	// Name returns the unique identifier for this module.
	Name() string

	// Commands returns the text commands that this module provides.
	// It is called after Init.
	Commands() []Command

	// EventHandlers returns event handlers for this module.
	// Each handler should match a discordgo handler signature.
	EventHandlers() []EventHandler

	// Init initializes the module with the provided dependencies.
	Init(deps ModuleDependencies) error

	// Shutdown gracefully shuts down the module.
	Shutdown() error
}

// ConfigurableModule is an optional interface for modules that need configuration.
// Modules implementing this interface will have LoadConfig called before Init.
type ConfigurableModule interface {
	// LoadConfig loads and validates module-specific configuration.
	// Called before Init() and before Discord connection is established.
	// Should return an error if required configuration is missing or invalid.
	LoadConfig() error
}
