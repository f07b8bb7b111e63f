// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/vikoba/internal/models"
)

var (
	// ErrNotFound is returned when a group does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a cycle advance raced with another writer
	// or a payout for the cycle already exists.
	ErrConflict = errors.New("conflicting write")
)

// CycleAdvance describes one atomic move of a group to its next cycle.
type CycleAdvance struct {
	GroupID string

	// FromCycle must match the stored current cycle or the advance fails
	// with ErrConflict.
	FromCycle int
	ToCycle   int
	Status    models.Status

	// Payout is appended when the cycle was paid out; nil for a skip.
	Payout *models.Payout
}

// Store defines the interface for payout group storage operations.
// This abstraction allows swapping storage backends (SQLite, in-memory, etc.)
// without changing the engine.
type Store interface {
	// CreateGroup persists a new group with its members.
	// The group.ID and CreatedAt fields are populated by the store when empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with members ordered by position.
	// Returns an error wrapping ErrNotFound if the group does not exist.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups retrieves all groups ordered by creation time.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// ListContributions returns the contributions recorded for one cycle.
	ListContributions(ctx context.Context, groupID string, cycle int) ([]models.Contribution, error)

	// SaveContribution upserts a contribution and sets the group status in a
	// single transaction. It returns ErrConflict if the group is no longer at
	// the contribution's cycle.
	SaveContribution(ctx context.Context, contribution models.Contribution, status models.Status) error

	// AdvanceCycle moves a group to its next cycle, appends the optional
	// payout and clears contributions of the new cycle, atomically.
	AdvanceCycle(ctx context.Context, advance CycleAdvance) error

	// ListPayouts returns a group's payouts ordered by cycle ascending.
	ListPayouts(ctx context.Context, groupID string) ([]models.Payout, error)

	// Close releases any resources held by the store.
	Close() error
}
