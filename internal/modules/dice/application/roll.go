package application

import (
	"math/rand/v2"

	"github.com/sglre6355/rollcall/internal/modules/dice/domain"
)

// RollInteractor handles the roll use case.
type RollInteractor struct {
	intn domain.IntN
}

// NewRollInteractor creates a new RollInteractor backed by the process-wide
// random source.
func NewRollInteractor() *RollInteractor {
	return &RollInteractor{intn: rand.IntN}
}

// NewRollInteractorWithSource creates a RollInteractor drawing from intn.
func NewRollInteractorWithSource(intn domain.IntN) *RollInteractor {
	return &RollInteractor{intn: intn}
}

// Execute rolls a number in [1, upperBound].
func (r *RollInteractor) Execute(upperBound int) (*domain.RollResult, error) {
	return domain.Roll(upperBound, r.intn)
}
