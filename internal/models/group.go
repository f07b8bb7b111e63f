package models

import "time"

// Status is the lifecycle state of a payout group.
type Status string

const (
	// StatusWaiting means at least one member has not paid the current cycle.
	StatusWaiting Status = "waiting"

	// StatusReady means every member has paid the current cycle.
	StatusReady Status = "ready"

	// StatusProcessing marks a payout in flight. The synchronous engine
	// never persists it.
	StatusProcessing Status = "processing"

	// StatusCompleted is terminal: every cycle has been paid out or skipped.
	StatusCompleted Status = "completed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusWaiting, StatusReady, StatusProcessing, StatusCompleted:
		return true
	}
	return false
}

// Role is the capability of the actor issuing a command.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// CanOverride reports whether the role may force a payout or skip a cycle.
func (r Role) CanOverride() bool {
	return r == RoleAdmin
}

// ParseRole maps a string onto a Role. Unknown values fall back to RoleMember.
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleMember
}

// Group represents a rotating payout group (ROSCA).
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Main Group A").
	Name string

	// Members are ordered by Position; the order is the payout rotation.
	Members []Member

	// MonthlyContribution is the fixed amount each member pays per cycle,
	// in minor currency units.
	MonthlyContribution int64

	// TotalCycles is the number of cycles the group runs for.
	TotalCycles int

	// CurrentCycle is 1-indexed. It equals TotalCycles+1 once completed.
	CurrentCycle int

	// Status is derived from contributions for the current cycle.
	Status Status

	// StartDate is when the first cycle's payout is due.
	StartDate time.Time

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Member represents one participant of a payout group.
type Member struct {
	// ID identifies the member within the group.
	ID string

	// Name is the member's display name.
	Name string

	// JoinedAt is when the member joined the group.
	JoinedAt time.Time

	// Position is the 1-based payout order, unique within the group.
	Position int
}

// Member looks up a member by ID.
func (g *Group) Member(memberID string) (Member, bool) {
	for _, m := range g.Members {
		if m.ID == memberID {
			return m, true
		}
	}
	return Member{}, false
}

// Completed reports whether the group has reached its terminal state.
func (g *Group) Completed() bool {
	return g.Status == StatusCompleted
}
