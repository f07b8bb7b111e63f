package rotation

import (
	"fmt"
	"testing"
	"time"

	"github.com/mmynk/vikoba/internal/models"
)

func members(ids ...string) []models.Member {
	out := make([]models.Member, len(ids))
	for i, id := range ids {
		out[i] = models.Member{ID: id, Name: id, Position: i + 1}
	}
	return out
}

func TestRecipientIndex(t *testing.T) {
	tests := []struct {
		name        string
		cycle       int
		memberCount int
		want        int
		wantErr     bool
	}{
		{name: "first cycle pays first slot", cycle: 1, memberCount: 3, want: 0},
		{name: "last slot", cycle: 3, memberCount: 3, want: 2},
		{name: "wraps around", cycle: 4, memberCount: 3, want: 0},
		{name: "single member always paid", cycle: 7, memberCount: 1, want: 0},
		{name: "zero members should error", cycle: 1, memberCount: 0, wantErr: true},
		{name: "cycle zero should error", cycle: 0, memberCount: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RecipientIndex(tt.cycle, tt.memberCount)
			if (err != nil) != tt.wantErr {
				t.Fatalf("RecipientIndex() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("RecipientIndex() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRecipientIsPeriodic(t *testing.T) {
	ms := members("a", "b", "c", "d")
	for cycle := 1; cycle <= 12; cycle++ {
		first, err := Recipient(ms, cycle)
		if err != nil {
			t.Fatalf("Recipient(%d) failed: %v", cycle, err)
		}
		later, err := Recipient(ms, cycle+len(ms))
		if err != nil {
			t.Fatalf("Recipient(%d) failed: %v", cycle+len(ms), err)
		}
		if first.ID != later.ID {
			t.Errorf("cycle %d paid %s but cycle %d paid %s", cycle, first.ID, cycle+len(ms), later.ID)
		}
	}
}

func TestRecipientFollowsPosition(t *testing.T) {
	// Stored order differs from payout order.
	ms := []models.Member{
		{ID: "c", Position: 3},
		{ID: "a", Position: 1},
		{ID: "b", Position: 2},
	}

	seen := make(map[string]bool)
	for cycle, want := range []string{"a", "b", "c"} {
		got, err := Recipient(ms, cycle+1)
		if err != nil {
			t.Fatalf("Recipient failed: %v", err)
		}
		if got.ID != want {
			t.Errorf("cycle %d: expected %s, got %s", cycle+1, want, got.ID)
		}
		seen[got.ID] = true
	}
	if len(seen) != 3 {
		t.Errorf("expected every member paid once per rotation, got %v", seen)
	}
}

func TestTally(t *testing.T) {
	ms := members("alice", "bob", "carol")

	tests := []struct {
		name          string
		contributions []models.Contribution
		wantCollected int64
		wantAllPaid   bool
		wantPaid      []bool
	}{
		{
			name:        "nobody paid",
			wantAllPaid: false,
			wantPaid:    []bool{false, false, false},
		},
		{
			name: "partial",
			contributions: []models.Contribution{
				{MemberID: "alice", Cycle: 2, Paid: true, Amount: 100},
				{MemberID: "carol", Cycle: 2, Paid: true, Amount: 100},
			},
			wantCollected: 200,
			wantPaid:      []bool{true, false, true},
		},
		{
			name: "everyone paid",
			contributions: []models.Contribution{
				{MemberID: "alice", Cycle: 2, Paid: true, Amount: 100},
				{MemberID: "bob", Cycle: 2, Paid: true, Amount: 100},
				{MemberID: "carol", Cycle: 2, Paid: true, Amount: 100},
			},
			wantCollected: 300,
			wantAllPaid:   true,
			wantPaid:      []bool{true, true, true},
		},
		{
			name: "other cycles and unpaid rows ignored",
			contributions: []models.Contribution{
				{MemberID: "alice", Cycle: 1, Paid: true, Amount: 100},
				{MemberID: "bob", Cycle: 2, Paid: false},
				{MemberID: "stranger", Cycle: 2, Paid: true, Amount: 100},
			},
			wantPaid: []bool{false, false, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paid, collected, allPaid := Tally(ms, 2, tt.contributions)
			if collected != tt.wantCollected {
				t.Errorf("collected = %d, want %d", collected, tt.wantCollected)
			}
			if allPaid != tt.wantAllPaid {
				t.Errorf("allPaid = %v, want %v", allPaid, tt.wantAllPaid)
			}
			for i, p := range paid {
				if p.Paid != tt.wantPaid[i] {
					t.Errorf("%s paid = %v, want %v", p.Member.ID, p.Paid, tt.wantPaid[i])
				}
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	if got := StatusFor(1, 3, false); got != models.StatusWaiting {
		t.Errorf("expected waiting, got %s", got)
	}
	if got := StatusFor(1, 3, true); got != models.StatusReady {
		t.Errorf("expected ready, got %s", got)
	}
	if got := StatusFor(4, 3, true); got != models.StatusCompleted {
		t.Errorf("expected completed, got %s", got)
	}
}

func TestPotAmountAndDueDate(t *testing.T) {
	if got := PotAmount(50000, 5); got != 250000 {
		t.Errorf("PotAmount = %d, want 250000", got)
	}

	start := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	if got := DueDate(start, 1); !got.Equal(start) {
		t.Errorf("DueDate(1) = %v, want %v", got, start)
	}
	want := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	if got := DueDate(start, 3); !got.Equal(want) {
		t.Errorf("DueDate(3) = %v, want %v", got, want)
	}
	if got := DueDate(time.Time{}, 2); !got.IsZero() {
		t.Errorf("expected zero due date without a start date, got %v", got)
	}
}

func TestDueDateClampsToMonthEnd(t *testing.T) {
	start := time.Date(2024, time.January, 31, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		cycle int
		want  time.Time
	}{
		{1, time.Date(2024, time.January, 31, 9, 0, 0, 0, time.UTC)},
		{2, time.Date(2024, time.February, 29, 9, 0, 0, 0, time.UTC)},
		{3, time.Date(2024, time.March, 31, 9, 0, 0, 0, time.UTC)},
		{4, time.Date(2024, time.April, 30, 9, 0, 0, 0, time.UTC)},
		{14, time.Date(2025, time.February, 28, 9, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("cycle %d", tt.cycle), func(t *testing.T) {
			if got := DueDate(start, tt.cycle); !got.Equal(tt.want) {
				t.Errorf("DueDate(%d) = %v, want %v", tt.cycle, got, tt.want)
			}
		})
	}
}
