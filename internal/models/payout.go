package models

import "time"

// Payout is an append-only ledger entry created exactly once for each cycle
// that was paid out. Skipped cycles have no Payout.
type Payout struct {
	// ID is the unique identifier for the payout (UUID format).
	ID string

	GroupID     string
	Cycle       int
	RecipientID string

	// Amount is the pot paid to the recipient: the monthly contribution
	// times the member count.
	Amount int64

	// Collected is the sum of paid contributions when the payout ran.
	// It is lower than Amount only for a forced payout.
	Collected int64

	// Forced is set when an admin paid out a group that was still waiting.
	Forced bool

	// PaidAt is when the payout was processed.
	PaidAt time.Time
}

// Shortfall is the part of the pot not covered by contributions.
func (p *Payout) Shortfall() int64 {
	return p.Amount - p.Collected
}
