package domain

import "errors"

// ErrInvalidArgument is returned when the upper bound of a roll is below 1.
var ErrInvalidArgument = errors.New("argument <max_val> must be at least 1")

// IntN returns a uniformly distributed integer in [0, n). It panics if n <= 0.
type IntN func(n int) int

// RollResult represents the outcome of a single roll.
type RollResult struct {
	Value      int
	UpperBound int
}

// Roll draws a uniformly random integer in [1, upperBound] from intn.
func Roll(upperBound int, intn IntN) (*RollResult, error) {
	if upperBound < 1 {
		return nil, ErrInvalidArgument
	}

	return &RollResult{
		Value:      intn(upperBound) + 1,
		UpperBound: upperBound,
	}, nil
}
