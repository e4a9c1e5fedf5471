package dice

import (
	"testing"

	"github.com/sglre6355/rollcall/internal/bot"
)

func TestDiceModule_Commands(t *testing.T) {
	m := &DiceModule{}
	if err := m.Init(bot.ModuleDependencies{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	commands := m.Commands()
	if len(commands) != 1 {
		t.Fatalf("expected 1 command, got %d", len(commands))
	}
	if commands[0].Name != "roll" {
		t.Errorf("expected command %q, got %q", "roll", commands[0].Name)
	}
	if commands[0].Handler == nil {
		t.Error("expected handler to be set")
	}

	responder := &bot.MockResponder{}
	if err := commands[0].Handler(nil, nil, []string{"0"}, responder); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if responder.LastMessage() != "argument <max_val> must be at least 1" {
		t.Errorf("unexpected reply %q", responder.LastMessage())
	}
}
