// Package engine owns the lifecycle of rotating payout groups: membership
// order, contribution tracking per cycle, readiness and cycle advancement.
//
// Every mutating operation for a group runs under that group's lock, checks
// all preconditions first and then commits through a single Store call, so a
// failed operation leaves no trace. Different groups never share a lock.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/vikoba/internal/models"
	"github.com/mmynk/vikoba/internal/notify"
	"github.com/mmynk/vikoba/internal/rotation"
	"github.com/mmynk/vikoba/internal/storage"
)

// Engine implements the payout group operations on top of a Store.
type Engine struct {
	store    storage.Store
	notifier notify.Notifier
	logger   *slog.Logger
	now      func() time.Time
	locks    *groupLocks
}

// Option configures an Engine.
type Option func(*Engine)

// WithNotifier sets the collaborator told about committed changes.
func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock overrides the time source used for contribution and payout
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine backed by store.
func New(store storage.Store, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		notifier: notify.Nop{},
		logger:   slog.Default(),
		now:      time.Now,
		locks:    newGroupLocks(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewMember describes a member at group creation.
type NewMember struct {
	// ID is optional; a UUID is generated when empty.
	ID       string
	Name     string
	JoinedAt time.Time
}

// NewGroup is the confirmed membership and terms of a group before cycle 1.
type NewGroup struct {
	Name string

	// Members in payout order.
	Members             []NewMember
	MonthlyContribution int64
	TotalCycles         int
	StartDate           time.Time
}

// ContributionResult is the outcome of RecordContribution.
type ContributionResult struct {
	Contribution models.Contribution
	GroupStatus  models.Status

	// Recorded is false when the call repeated an existing payment.
	Recorded bool
}

// StatusReport is a read-only view of a group's current cycle.
type StatusReport struct {
	Group  *models.Group
	Status models.Status

	// Recipient is nil once the group has completed.
	Recipient     *models.Member
	PotAmount     int64
	Collected     int64
	NextPayoutDue time.Time

	// Contributions holds one entry per member in payout order.
	Contributions []rotation.MemberPaid
}

// CreateGroup validates and persists a new group at cycle 1.
func (e *Engine) CreateGroup(ctx context.Context, in NewGroup) (*models.Group, error) {
	if err := validateNewGroup(in); err != nil {
		return nil, err
	}

	group := &models.Group{
		ID:                  uuid.New().String(),
		Name:                strings.TrimSpace(in.Name),
		MonthlyContribution: in.MonthlyContribution,
		TotalCycles:         in.TotalCycles,
		CurrentCycle:        1,
		Status:              models.StatusWaiting,
		StartDate:           in.StartDate,
		CreatedAt:           e.now().Unix(),
	}
	for i, m := range in.Members {
		id := m.ID
		if id == "" {
			id = uuid.New().String()
		}
		group.Members = append(group.Members, models.Member{
			ID:       id,
			Name:     m.Name,
			JoinedAt: m.JoinedAt,
			Position: i + 1,
		})
	}

	if err := e.store.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	e.logger.InfoContext(ctx, "Group created",
		"group_id", group.ID,
		"members_count", len(group.Members),
		"total_cycles", group.TotalCycles,
	)
	return group, nil
}

func validateNewGroup(in NewGroup) error {
	var problems []string
	if strings.TrimSpace(in.Name) == "" {
		problems = append(problems, "name is required")
	}
	if len(in.Members) == 0 {
		problems = append(problems, "at least one member is required")
	}
	if in.MonthlyContribution <= 0 {
		problems = append(problems, "monthly contribution must be positive")
	}
	if in.TotalCycles < 1 {
		problems = append(problems, "total cycles must be at least 1")
	}
	seen := make(map[string]bool, len(in.Members))
	for _, m := range in.Members {
		if m.ID == "" {
			continue
		}
		if seen[m.ID] {
			problems = append(problems, fmt.Sprintf("duplicate member %q", m.ID))
		}
		seen[m.ID] = true
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidGroup, strings.Join(problems, "; "))
	}
	return nil
}

// GetGroup returns a group by ID.
func (e *Engine) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return e.loadGroup(ctx, groupID)
}

// ListGroups returns every group.
func (e *Engine) ListGroups(ctx context.Context) ([]*models.Group, error) {
	groups, err := e.store.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

// RecordContribution marks a member as paid for the group's current cycle.
// Repeating an identical payment is a no-op.
func (e *Engine) RecordContribution(ctx context.Context, groupID, memberID string, amount int64, cycle int) (*ContributionResult, error) {
	unlock := e.locks.lock(groupID)
	defer unlock()

	group, err := e.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.Completed() {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyCompleted, groupID)
	}
	if _, ok := group.Member(memberID); !ok {
		return nil, fmt.Errorf("%w: %s in group %s", ErrUnknownMember, memberID, groupID)
	}
	if cycle != group.CurrentCycle {
		return nil, fmt.Errorf("%w: got %d, group is at cycle %d", ErrInvalidCycle, cycle, group.CurrentCycle)
	}
	if amount != group.MonthlyContribution {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrAmountMismatch, amount, group.MonthlyContribution)
	}

	existing, err := e.store.ListContributions(ctx, groupID, cycle)
	if err != nil {
		return nil, fmt.Errorf("failed to load contributions: %w", err)
	}

	contributions := make([]models.Contribution, 0, len(existing)+1)
	for _, c := range existing {
		if c.MemberID != memberID {
			contributions = append(contributions, c)
			continue
		}
		if c.Paid && c.Amount == amount {
			return &ContributionResult{Contribution: c, GroupStatus: group.Status}, nil
		}
	}

	contribution := models.Contribution{
		GroupID:  groupID,
		MemberID: memberID,
		Cycle:    cycle,
		Paid:     true,
		Amount:   amount,
		PaidAt:   e.now(),
	}
	contributions = append(contributions, contribution)

	_, _, allPaid := rotation.Tally(group.Members, cycle, contributions)
	status := rotation.StatusFor(cycle, group.TotalCycles, allPaid)

	if err := e.store.SaveContribution(ctx, contribution, status); err != nil {
		return nil, fmt.Errorf("failed to save contribution: %w", err)
	}

	e.logger.InfoContext(ctx, "Contribution recorded",
		"group_id", groupID,
		"member_id", memberID,
		"cycle", cycle,
		"status", status,
	)

	e.notify(ctx, notify.Event{
		Type:      notify.EventContributionRecorded,
		GroupID:   groupID,
		GroupName: group.Name,
		Cycle:     cycle,
		MemberID:  memberID,
		Amount:    amount,
	})
	if status == models.StatusReady && group.Status != models.StatusReady {
		recipient, _ := rotation.Recipient(group.Members, cycle)
		e.notify(ctx, notify.Event{
			Type:        notify.EventGroupReady,
			GroupID:     groupID,
			GroupName:   group.Name,
			Cycle:       cycle,
			RecipientID: recipient.ID,
			Amount:      rotation.PotAmount(group.MonthlyContribution, len(group.Members)),
		})
	}

	return &ContributionResult{Contribution: contribution, GroupStatus: status, Recorded: true}, nil
}

// ProcessPayout pays the current recipient and moves the group to the next
// cycle. A group that is still waiting can only be paid out by an actor with
// override authority; the payout is then marked Forced.
func (e *Engine) ProcessPayout(ctx context.Context, groupID string, actor models.Role) (*models.Payout, error) {
	unlock := e.locks.lock(groupID)
	defer unlock()

	group, err := e.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.Completed() {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyCompleted, groupID)
	}

	collected, allPaid, err := e.tally(ctx, group)
	if err != nil {
		return nil, err
	}
	if !allPaid && !actor.CanOverride() {
		return nil, fmt.Errorf("%w: %s has unpaid contributions for cycle %d", ErrNotReady, groupID, group.CurrentCycle)
	}

	recipient, err := rotation.Recipient(group.Members, group.CurrentCycle)
	if err != nil {
		return nil, fmt.Errorf("failed to select recipient: %w", err)
	}

	payout := &models.Payout{
		ID:          uuid.New().String(),
		GroupID:     groupID,
		Cycle:       group.CurrentCycle,
		RecipientID: recipient.ID,
		Amount:      rotation.PotAmount(group.MonthlyContribution, len(group.Members)),
		Collected:   collected,
		Forced:      !allPaid,
		PaidAt:      e.now(),
	}

	next, status, err := e.advance(ctx, group, payout)
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "Payout processed",
		"group_id", groupID,
		"cycle", payout.Cycle,
		"recipient_id", payout.RecipientID,
		"amount", payout.Amount,
		"forced", payout.Forced,
		"next_cycle", next,
	)
	if payout.Forced {
		e.logger.WarnContext(ctx, "Payout forced with missing contributions",
			"group_id", groupID,
			"cycle", payout.Cycle,
			"shortfall", payout.Shortfall(),
		)
	}

	e.notify(ctx, notify.Event{
		Type:        notify.EventPayoutProcessed,
		GroupID:     groupID,
		GroupName:   group.Name,
		Cycle:       payout.Cycle,
		RecipientID: payout.RecipientID,
		Amount:      payout.Amount,
		Forced:      payout.Forced,
	})
	e.notifyCompleted(ctx, group, status)

	return payout, nil
}

// SkipCycle advances a waiting group without paying anyone. Admin only.
func (e *Engine) SkipCycle(ctx context.Context, groupID string, actor models.Role) (*models.Group, error) {
	if !actor.CanOverride() {
		return nil, fmt.Errorf("%w: role %q cannot skip a cycle", ErrNotAuthorized, actor)
	}

	unlock := e.locks.lock(groupID)
	defer unlock()

	group, err := e.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.Completed() {
		return nil, fmt.Errorf("%w: %s is %s", ErrInvalidState, groupID, group.Status)
	}
	_, allPaid, err := e.tally(ctx, group)
	if err != nil {
		return nil, err
	}
	if allPaid {
		return nil, fmt.Errorf("%w: %s is %s", ErrInvalidState, groupID, models.StatusReady)
	}

	skipped := group.CurrentCycle
	next, status, err := e.advance(ctx, group, nil)
	if err != nil {
		return nil, err
	}
	group.CurrentCycle = next
	group.Status = status

	e.logger.InfoContext(ctx, "Cycle skipped",
		"group_id", groupID,
		"cycle", skipped,
		"next_cycle", next,
	)

	e.notify(ctx, notify.Event{
		Type:      notify.EventCycleSkipped,
		GroupID:   groupID,
		GroupName: group.Name,
		Cycle:     skipped,
	})
	e.notifyCompleted(ctx, group, status)

	return group, nil
}

// CurrentRecipient returns the member due to be paid this cycle.
func (e *Engine) CurrentRecipient(ctx context.Context, groupID string) (models.Member, error) {
	group, err := e.loadGroup(ctx, groupID)
	if err != nil {
		return models.Member{}, err
	}
	if group.Completed() {
		return models.Member{}, fmt.Errorf("%w: %s has no recipient", ErrAlreadyCompleted, groupID)
	}
	return rotation.Recipient(group.Members, group.CurrentCycle)
}

// Status reports the current cycle and who has paid in it.
func (e *Engine) Status(ctx context.Context, groupID string) (*StatusReport, error) {
	group, err := e.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	report := &StatusReport{
		Group:     group,
		Status:    group.Status,
		PotAmount: rotation.PotAmount(group.MonthlyContribution, len(group.Members)),
	}

	if group.Completed() {
		report.Contributions, _, _ = rotation.Tally(group.Members, group.CurrentCycle, nil)
		return report, nil
	}

	contributions, err := e.store.ListContributions(ctx, groupID, group.CurrentCycle)
	if err != nil {
		return nil, fmt.Errorf("failed to load contributions: %w", err)
	}
	report.Contributions, report.Collected, _ = rotation.Tally(group.Members, group.CurrentCycle, contributions)

	recipient, err := rotation.Recipient(group.Members, group.CurrentCycle)
	if err != nil {
		return nil, fmt.Errorf("failed to select recipient: %w", err)
	}
	report.Recipient = &recipient
	report.NextPayoutDue = rotation.DueDate(group.StartDate, group.CurrentCycle)
	return report, nil
}

// PayoutHistory returns the group's payouts ordered by cycle.
func (e *Engine) PayoutHistory(ctx context.Context, groupID string) ([]models.Payout, error) {
	if _, err := e.loadGroup(ctx, groupID); err != nil {
		return nil, err
	}
	payouts, err := e.store.ListPayouts(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}
	return payouts, nil
}

func (e *Engine) loadGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := e.store.GetGroup(ctx, groupID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGroup, groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load group: %w", err)
	}
	return group, nil
}

func (e *Engine) tally(ctx context.Context, group *models.Group) (int64, bool, error) {
	contributions, err := e.store.ListContributions(ctx, group.ID, group.CurrentCycle)
	if err != nil {
		return 0, false, fmt.Errorf("failed to load contributions: %w", err)
	}
	_, collected, allPaid := rotation.Tally(group.Members, group.CurrentCycle, contributions)
	return collected, allPaid, nil
}

// advance commits the move to the next cycle. The new cycle starts with no
// contributions, so the group is waiting unless it has run out of cycles.
func (e *Engine) advance(ctx context.Context, group *models.Group, payout *models.Payout) (int, models.Status, error) {
	next := group.CurrentCycle + 1
	status := rotation.StatusFor(next, group.TotalCycles, false)

	err := e.store.AdvanceCycle(ctx, storage.CycleAdvance{
		GroupID:   group.ID,
		FromCycle: group.CurrentCycle,
		ToCycle:   next,
		Status:    status,
		Payout:    payout,
	})
	if err != nil {
		return 0, "", fmt.Errorf("failed to advance cycle: %w", err)
	}
	return next, status, nil
}

func (e *Engine) notifyCompleted(ctx context.Context, group *models.Group, status models.Status) {
	if status != models.StatusCompleted {
		return
	}
	e.logger.InfoContext(ctx, "Group completed", "group_id", group.ID, "total_cycles", group.TotalCycles)
	e.notify(ctx, notify.Event{
		Type:      notify.EventGroupCompleted,
		GroupID:   group.ID,
		GroupName: group.Name,
		Cycle:     group.TotalCycles,
	})
}

// notify runs after commit; a delivery failure cannot undo the change, so it
// is logged and dropped.
func (e *Engine) notify(ctx context.Context, event notify.Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = e.now()
	}
	if err := e.notifier.Notify(ctx, event); err != nil {
		e.logger.WarnContext(ctx, "Notification failed",
			"type", event.Type,
			"group_id", event.GroupID,
			"error", err,
		)
	}
}
