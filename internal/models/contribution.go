package models

import "time"

// Contribution records a member's payment into the pot for one cycle.
// It is unique per (GroupID, MemberID, Cycle).
type Contribution struct {
	GroupID  string
	MemberID string
	Cycle    int

	// Paid is false for a placeholder row that has not been settled.
	Paid bool

	// Amount is the paid amount in minor currency units.
	Amount int64

	// PaidAt is when the payment was recorded.
	PaidAt time.Time
}
