package presentation

import (
	"errors"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/rollcall/internal/bot"
	"github.com/sglre6355/rollcall/internal/modules/dice/application"
)

// Argument errors relayed to the channel like any other roll failure.
var (
	errMissingUpperBound = errors.New("max_val is a required argument that is missing.")
	errBadUpperBound     = errors.New(`Converting to "int" failed for parameter "max_val".`)
)

// RollHandler handles the roll command.
type RollHandler struct {
	interactor *application.RollInteractor
}

// NewRollHandler creates a new RollHandler.
func NewRollHandler(interactor *application.RollInteractor) *RollHandler {
	return &RollHandler{
		interactor: interactor,
	}
}

// Handle rolls a number and replies with it. Any failure of the roll itself
// is replied verbatim instead of being returned.
func (h *RollHandler) Handle(
	_ *discordgo.Session,
	_ *discordgo.MessageCreate,
	args []string,
	r bot.Responder,
) error {
	upperBound, err := parseUpperBound(args)
	if err != nil {
		return r.Send(err.Error())
	}

	result, err := h.interactor.Execute(upperBound)
	if err != nil {
		return r.Send(err.Error())
	}

	return r.Send(strconv.Itoa(result.Value))
}

func parseUpperBound(args []string) (int, error) {
	if len(args) == 0 {
		return 0, errMissingUpperBound
	}

	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, errBadUpperBound
	}
	return n, nil
}
