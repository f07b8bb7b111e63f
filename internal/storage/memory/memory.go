// Package memory provides an in-process implementation of storage.Store.
// State is lost when the process exits.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/vikoba/internal/models"
	"github.com/mmynk/vikoba/internal/storage"
)

var _ storage.Store = (*Store)(nil)

type contributionKey struct {
	groupID  string
	memberID string
	cycle    int
}

// Store keeps groups, contributions and payouts in maps guarded by one mutex.
type Store struct {
	mu            sync.Mutex
	groups        map[string]*models.Group
	order         []string
	contributions map[contributionKey]models.Contribution
	payouts       map[string][]models.Payout
}

// New creates an empty store.
func New() *Store {
	return &Store{
		groups:        make(map[string]*models.Group),
		contributions: make(map[contributionKey]models.Contribution),
		payouts:       make(map[string][]models.Payout),
	}
}

// CreateGroup stores a copy of the group, generating an ID and timestamp when unset.
func (s *Store) CreateGroup(_ context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.groups[group.ID]; exists {
		return fmt.Errorf("group %s: %w", group.ID, storage.ErrConflict)
	}
	s.groups[group.ID] = cloneGroup(group)
	s.order = append(s.order, group.ID)
	return nil
}

// GetGroup returns a copy of the group.
func (s *Store) GetGroup(_ context.Context, groupID string) (*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	return cloneGroup(g), nil
}

// ListGroups returns copies of all groups in creation order.
func (s *Store) ListGroups(_ context.Context) ([]*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	groups := make([]*models.Group, 0, len(s.order))
	for _, id := range s.order {
		groups = append(groups, cloneGroup(s.groups[id]))
	}
	return groups, nil
}

// ListContributions returns the contributions recorded for one cycle.
func (s *Store) ListContributions(_ context.Context, groupID string, cycle int) ([]models.Contribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Contribution
	for key, c := range s.contributions {
		if key.groupID == groupID && key.cycle == cycle {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MemberID < out[j].MemberID })
	return out, nil
}

// SaveContribution upserts a contribution and sets the group status while the
// group is still at the contribution's cycle.
func (s *Store) SaveContribution(_ context.Context, c models.Contribution, status models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[c.GroupID]
	if !ok {
		return fmt.Errorf("group %s: %w", c.GroupID, storage.ErrNotFound)
	}
	if g.CurrentCycle != c.Cycle {
		return fmt.Errorf("group %s is at cycle %d, not %d: %w",
			c.GroupID, g.CurrentCycle, c.Cycle, storage.ErrConflict)
	}
	s.contributions[contributionKey{c.GroupID, c.MemberID, c.Cycle}] = c
	g.Status = status
	return nil
}

// AdvanceCycle moves a group to its next cycle if it is still at adv.FromCycle.
func (s *Store) AdvanceCycle(_ context.Context, adv storage.CycleAdvance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[adv.GroupID]
	if !ok {
		return fmt.Errorf("group %s: %w", adv.GroupID, storage.ErrNotFound)
	}
	if g.CurrentCycle != adv.FromCycle {
		return fmt.Errorf("group %s is at cycle %d, not %d: %w",
			adv.GroupID, g.CurrentCycle, adv.FromCycle, storage.ErrConflict)
	}
	if adv.Payout != nil {
		for _, p := range s.payouts[adv.GroupID] {
			if p.Cycle == adv.Payout.Cycle {
				return fmt.Errorf("payout for cycle %d: %w", p.Cycle, storage.ErrConflict)
			}
		}
		s.payouts[adv.GroupID] = append(s.payouts[adv.GroupID], *adv.Payout)
	}
	for key := range s.contributions {
		if key.groupID == adv.GroupID && key.cycle == adv.ToCycle {
			delete(s.contributions, key)
		}
	}
	g.CurrentCycle = adv.ToCycle
	g.Status = adv.Status
	return nil
}

// ListPayouts returns the group's payouts, oldest cycle first.
func (s *Store) ListPayouts(_ context.Context, groupID string) ([]models.Payout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payouts := append([]models.Payout(nil), s.payouts[groupID]...)
	sort.Slice(payouts, func(i, j int) bool { return payouts[i].Cycle < payouts[j].Cycle })
	return payouts, nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

func cloneGroup(g *models.Group) *models.Group {
	c := *g
	c.Members = append([]models.Member(nil), g.Members...)
	return &c
}
