package credit

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientCredits matches every *InsufficientCreditsError
	ErrInsufficientCredits = errors.New("insufficient credits")

	ErrBalanceNotFound = errors.New("credit balance not found")
	ErrUnknownFeature  = errors.New("unknown feature")
	ErrInvalidCost     = errors.New("feature cost must be a finite number >= 0")
	ErrUnknownPlan     = errors.New("unknown plan")
	ErrDeltaOutOfRange = errors.New("credit delta out of range")
)

// InsufficientCreditsError carries both sides of a failed credit check
type InsufficientCreditsError struct {
	Feature          string
	CreditsRemaining int
	CreditsRequired  int
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits for %s: remaining %d, required %d",
		e.Feature, e.CreditsRemaining, e.CreditsRequired)
}

func (e *InsufficientCreditsError) Unwrap() error {
	return ErrInsufficientCredits
}
