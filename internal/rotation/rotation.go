// Package rotation holds the pure rules of a rotating payout group: who is
// paid in a cycle, how large the pot is and when a group is ready.
package rotation

import (
	"fmt"
	"sort"
	"time"

	"github.com/mmynk/vikoba/internal/models"
)

// MemberPaid is one member's contribution state for a cycle.
type MemberPaid struct {
	Member models.Member
	Paid   bool
	Amount int64
}

// RecipientIndex returns the zero-based rotation slot paid in the given cycle.
// Cycle 1 pays slot 0; the rotation repeats every memberCount cycles.
func RecipientIndex(cycle, memberCount int) (int, error) {
	if memberCount <= 0 {
		return 0, fmt.Errorf("must have at least one member")
	}
	if cycle < 1 {
		return 0, fmt.Errorf("cycle must be at least 1, got %d", cycle)
	}
	return (cycle - 1) % memberCount, nil
}

// Ordered returns a copy of members sorted by Position.
func Ordered(members []models.Member) []models.Member {
	ordered := make([]models.Member, len(members))
	copy(ordered, members)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})
	return ordered
}

// Recipient returns the member paid in the given cycle.
func Recipient(members []models.Member, cycle int) (models.Member, error) {
	idx, err := RecipientIndex(cycle, len(members))
	if err != nil {
		return models.Member{}, err
	}
	return Ordered(members)[idx], nil
}

// PotAmount is the total collected when every member pays.
func PotAmount(monthly int64, memberCount int) int64 {
	return monthly * int64(memberCount)
}

// Tally matches contributions for one cycle against the member list. It
// returns per-member paid flags in position order, the collected total, and
// whether everyone has paid. Contributions for other cycles are ignored.
func Tally(members []models.Member, cycle int, contributions []models.Contribution) ([]MemberPaid, int64, bool) {
	byMember := make(map[string]models.Contribution, len(contributions))
	for _, c := range contributions {
		if c.Cycle != cycle {
			continue
		}
		byMember[c.MemberID] = c
	}

	ordered := Ordered(members)
	result := make([]MemberPaid, len(ordered))
	var collected int64
	allPaid := len(ordered) > 0
	for i, m := range ordered {
		c, ok := byMember[m.ID]
		paid := ok && c.Paid
		result[i] = MemberPaid{Member: m, Paid: paid}
		if paid {
			result[i].Amount = c.Amount
			collected += c.Amount
		} else {
			allPaid = false
		}
	}
	return result, collected, allPaid
}

// StatusFor derives the lifecycle status for a cycle.
func StatusFor(cycle, totalCycles int, allPaid bool) models.Status {
	switch {
	case cycle > totalCycles:
		return models.StatusCompleted
	case allPaid:
		return models.StatusReady
	default:
		return models.StatusWaiting
	}
}

// DueDate returns when the payout for the given cycle is due: one calendar
// month per cycle after start. The day is clamped to the end of shorter
// months, so a group starting on Jan 31 is due on Feb 29 and Mar 31.
func DueDate(start time.Time, cycle int) time.Time {
	if start.IsZero() || cycle < 1 {
		return time.Time{}
	}
	month := time.Date(start.Year(), start.Month()+time.Month(cycle-1), 1,
		start.Hour(), start.Minute(), start.Second(), start.Nanosecond(), start.Location())
	lastDay := month.AddDate(0, 1, -1).Day()
	return month.AddDate(0, 0, min(start.Day(), lastDay)-1)
}
