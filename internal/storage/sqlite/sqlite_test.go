package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmynk/vikoba/internal/models"
	"github.com/mmynk/vikoba/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "vikoba-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleGroup() *models.Group {
	joined := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &models.Group{
		Name: "Main Group A",
		Members: []models.Member{
			{ID: "john", Name: "John Doe", JoinedAt: joined, Position: 1},
			{ID: "jane", Name: "Jane Smith", JoinedAt: joined.AddDate(0, 0, 4), Position: 2},
			{ID: "peter", Name: "Peter Johnson", JoinedAt: joined.AddDate(0, 0, 9), Position: 3},
		},
		MonthlyContribution: 50000,
		TotalCycles:         3,
		CurrentCycle:        1,
		Status:              models.StatusWaiting,
		StartDate:           time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateGroup generates ID and timestamp", func(t *testing.T) {
		group := sampleGroup()
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if group.ID == "" {
			t.Error("Expected group ID to be generated")
		}
		if group.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("GetGroup retrieves complete group", func(t *testing.T) {
		original := sampleGroup()
		if err := store.CreateGroup(ctx, original); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		retrieved, err := store.GetGroup(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}

		if retrieved.Name != original.Name {
			t.Errorf("Name mismatch: got %s, want %s", retrieved.Name, original.Name)
		}
		if retrieved.MonthlyContribution != original.MonthlyContribution {
			t.Errorf("MonthlyContribution mismatch: got %d, want %d", retrieved.MonthlyContribution, original.MonthlyContribution)
		}
		if retrieved.Status != models.StatusWaiting {
			t.Errorf("Status mismatch: got %s, want %s", retrieved.Status, models.StatusWaiting)
		}
		if !retrieved.StartDate.Equal(original.StartDate) {
			t.Errorf("StartDate mismatch: got %v, want %v", retrieved.StartDate, original.StartDate)
		}
		if len(retrieved.Members) != 3 {
			t.Fatalf("Members count mismatch: got %d, want 3", len(retrieved.Members))
		}
		for i, m := range retrieved.Members {
			if m.ID != original.Members[i].ID || m.Position != i+1 {
				t.Errorf("Member %d mismatch: got %+v", i, m)
			}
			if !m.JoinedAt.Equal(original.Members[i].JoinedAt) {
				t.Errorf("Member %d JoinedAt mismatch: got %v", i, m.JoinedAt)
			}
		}
	})

	t.Run("GetGroup returns ErrNotFound for nonexistent group", func(t *testing.T) {
		_, err := store.GetGroup(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("GetGroup rejects unknown status", func(t *testing.T) {
		group := sampleGroup()
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if _, err := store.db.ExecContext(ctx, "UPDATE payout_groups SET status = 'paused' WHERE id = ?", group.ID); err != nil {
			t.Fatalf("UPDATE failed: %v", err)
		}
		if _, err := store.GetGroup(ctx, group.ID); err == nil {
			t.Error("Expected error for unknown status")
		}
		if _, err := store.db.ExecContext(ctx, "UPDATE payout_groups SET status = 'waiting' WHERE id = ?", group.ID); err != nil {
			t.Fatalf("UPDATE failed: %v", err)
		}
	})

	t.Run("ListGroups includes members", func(t *testing.T) {
		groups, err := store.ListGroups(ctx)
		if err != nil {
			t.Fatalf("ListGroups failed: %v", err)
		}
		if len(groups) < 2 {
			t.Fatalf("Expected at least 2 groups, got %d", len(groups))
		}
		for _, g := range groups {
			if len(g.Members) == 0 {
				t.Errorf("group %s has no members", g.ID)
			}
		}
	})
}

func TestSaveContribution(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := sampleGroup()
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	paidAt := time.Date(2024, time.January, 25, 10, 0, 0, 0, time.UTC)
	c := models.Contribution{GroupID: group.ID, MemberID: "john", Cycle: 1, Paid: true, Amount: 50000, PaidAt: paidAt}

	if err := store.SaveContribution(ctx, c, models.StatusWaiting); err != nil {
		t.Fatalf("SaveContribution failed: %v", err)
	}
	// Upsert on the same key must not duplicate the row.
	if err := store.SaveContribution(ctx, c, models.StatusReady); err != nil {
		t.Fatalf("second SaveContribution failed: %v", err)
	}

	contributions, err := store.ListContributions(ctx, group.ID, 1)
	if err != nil {
		t.Fatalf("ListContributions failed: %v", err)
	}
	if len(contributions) != 1 {
		t.Fatalf("Expected 1 contribution, got %d", len(contributions))
	}
	if !contributions[0].Paid || contributions[0].Amount != 50000 || !contributions[0].PaidAt.Equal(paidAt) {
		t.Errorf("Unexpected contribution: %+v", contributions[0])
	}

	got, _ := store.GetGroup(ctx, group.ID)
	if got.Status != models.StatusReady {
		t.Errorf("Expected status to be updated to ready, got %s", got.Status)
	}

	t.Run("unknown member violates foreign key", func(t *testing.T) {
		bad := c
		bad.MemberID = "stranger"
		if err := store.SaveContribution(ctx, bad, models.StatusWaiting); err == nil {
			t.Error("Expected error for unknown member")
		}
	})

	t.Run("unknown group", func(t *testing.T) {
		bad := c
		bad.GroupID = "missing"
		err := store.SaveContribution(ctx, bad, models.StatusWaiting)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestSaveContributionAfterCycleAdvanced(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := sampleGroup()
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	for _, id := range []string{"john", "jane"} {
		c := models.Contribution{GroupID: group.ID, MemberID: id, Cycle: 1, Paid: true, Amount: 50000, PaidAt: time.Now()}
		if err := store.SaveContribution(ctx, c, models.StatusWaiting); err != nil {
			t.Fatalf("SaveContribution(%s) failed: %v", id, err)
		}
	}

	// A second writer forces the cycle 1 payout before peter's write lands.
	err := store.AdvanceCycle(ctx, storage.CycleAdvance{
		GroupID:   group.ID,
		FromCycle: 1,
		ToCycle:   2,
		Status:    models.StatusWaiting,
		Payout:    &models.Payout{GroupID: group.ID, Cycle: 1, RecipientID: "john", Amount: 150000, Collected: 100000, Forced: true, PaidAt: time.Now()},
	})
	if err != nil {
		t.Fatalf("AdvanceCycle failed: %v", err)
	}

	late := models.Contribution{GroupID: group.ID, MemberID: "peter", Cycle: 1, Paid: true, Amount: 50000, PaidAt: time.Now()}
	err = store.SaveContribution(ctx, late, models.StatusReady)
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("Expected ErrConflict, got %v", err)
	}

	got, err := store.GetGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if got.CurrentCycle != 2 || got.Status != models.StatusWaiting {
		t.Errorf("Expected cycle 2 waiting, got cycle %d %s", got.CurrentCycle, got.Status)
	}

	contributions, err := store.ListContributions(ctx, group.ID, 1)
	if err != nil {
		t.Fatalf("ListContributions failed: %v", err)
	}
	for _, c := range contributions {
		if c.MemberID == "peter" {
			t.Error("Expected the late contribution to be rolled back")
		}
	}
}

func TestAdvanceCycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := sampleGroup()
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	payout := &models.Payout{
		GroupID:     group.ID,
		Cycle:       1,
		RecipientID: "john",
		Amount:      150000,
		Collected:   150000,
		PaidAt:      time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
	}
	err := store.AdvanceCycle(ctx, storage.CycleAdvance{
		GroupID:   group.ID,
		FromCycle: 1,
		ToCycle:   2,
		Status:    models.StatusWaiting,
		Payout:    payout,
	})
	if err != nil {
		t.Fatalf("AdvanceCycle failed: %v", err)
	}
	if payout.ID == "" {
		t.Error("Expected payout ID to be generated")
	}

	got, _ := store.GetGroup(ctx, group.ID)
	if got.CurrentCycle != 2 {
		t.Errorf("Expected cycle 2, got %d", got.CurrentCycle)
	}

	t.Run("stale cycle is a conflict", func(t *testing.T) {
		err := store.AdvanceCycle(ctx, storage.CycleAdvance{
			GroupID: group.ID, FromCycle: 1, ToCycle: 2, Status: models.StatusWaiting,
		})
		if !errors.Is(err, storage.ErrConflict) {
			t.Errorf("Expected ErrConflict, got %v", err)
		}
	})

	t.Run("skip appends no payout", func(t *testing.T) {
		err := store.AdvanceCycle(ctx, storage.CycleAdvance{
			GroupID: group.ID, FromCycle: 2, ToCycle: 3, Status: models.StatusWaiting,
		})
		if err != nil {
			t.Fatalf("AdvanceCycle failed: %v", err)
		}
		payouts, err := store.ListPayouts(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListPayouts failed: %v", err)
		}
		if len(payouts) != 1 || payouts[0].Cycle != 1 {
			t.Errorf("Expected only the cycle 1 payout, got %+v", payouts)
		}
	})

	t.Run("duplicate payout for a cycle is a conflict", func(t *testing.T) {
		dup := *payout
		dup.ID = ""
		err := store.AdvanceCycle(ctx, storage.CycleAdvance{
			GroupID: group.ID, FromCycle: 3, ToCycle: 4, Status: models.StatusCompleted, Payout: &dup,
		})
		if !errors.Is(err, storage.ErrConflict) {
			t.Errorf("Expected ErrConflict, got %v", err)
		}
		after, _ := store.GetGroup(ctx, group.ID)
		if after.CurrentCycle != 3 {
			t.Errorf("Expected rollback to keep cycle 3, got %d", after.CurrentCycle)
		}
	})

	t.Run("payouts are append-only", func(t *testing.T) {
		if _, err := store.db.ExecContext(ctx, "UPDATE payouts SET amount = 1"); err == nil {
			t.Error("Expected UPDATE on payouts to be rejected")
		}
		if _, err := store.db.ExecContext(ctx, "DELETE FROM payouts"); err == nil {
			t.Error("Expected DELETE on payouts to be rejected")
		}
	})
}
