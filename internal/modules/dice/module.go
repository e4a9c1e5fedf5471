package dice

import (
	"github.com/sglre6355/rollcall/internal/bot"
	"github.com/sglre6355/rollcall/internal/modules/dice/application"
	"github.com/sglre6355/rollcall/internal/modules/dice/presentation"
)

func init() {
	bot.Register(&DiceModule{})
}

// DiceModule provides the roll command.
type DiceModule struct {
	rollHandler *presentation.RollHandler
}

// Name returns the module name.
func (m *DiceModule) Name() string {
	return "dice"
}

// Commands returns the text commands for this module.
func (m *DiceModule) Commands() []bot.Command {
	return []bot.Command{
		{
			Name:    "roll",
			Usage:   "<max_val>",
			Brief:   "Generate random number between 1 and <arg>",
			Handler: m.rollHandler.Handle,
		},
	}
}

// EventHandlers returns the event handlers for this module.
func (m *DiceModule) EventHandlers() []bot.EventHandler {
	return nil
}

// Init initializes the module.
func (m *DiceModule) Init(deps bot.ModuleDependencies) error {
	m.rollHandler = presentation.NewRollHandler(application.NewRollInteractor())
	return nil
}

// Shutdown cleans up module resources.
func (m *DiceModule) Shutdown() error {
	return nil
}
