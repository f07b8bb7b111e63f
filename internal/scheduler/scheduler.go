// Package scheduler runs the periodic contribution reminder job.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mmynk/vikoba/internal/engine"
	"github.com/mmynk/vikoba/internal/models"
	"github.com/mmynk/vikoba/internal/notify"
)

// GroupReader is the read side of the engine used by the reminder job.
type GroupReader interface {
	ListGroups(ctx context.Context) ([]*models.Group, error)
	Status(ctx context.Context, groupID string) (*engine.StatusReport, error)
}

// ReminderScheduler reminds members of waiting groups whose payout is due
// within the lead time.
type ReminderScheduler struct {
	cronEngine *cron.Cron
	groups     GroupReader
	notifier   notify.Notifier
	logger     *slog.Logger
	spec       string
	lead       time.Duration
	timeout    time.Duration
	now        func() time.Time
}

// NewReminderScheduler creates a scheduler. spec is a standard five-field
// cron expression, e.g. "0 9 * * *" for 9 AM daily.
func NewReminderScheduler(groups GroupReader, notifier notify.Notifier, logger *slog.Logger, spec string, lead time.Duration) *ReminderScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReminderScheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)),
		groups:     groups,
		notifier:   notifier,
		logger:     logger,
		spec:       spec,
		lead:       lead,
		timeout:    time.Minute,
		now:        time.Now,
	}
}

// Start registers the reminder job and starts the cron engine.
func (s *ReminderScheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.spec, func() {
		s.logger.Info("Reminder job triggered")
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		sent, err := s.RunOnce(ctx)
		if err != nil {
			s.logger.Error("Reminder job failed", "error", err)
			return
		}
		s.logger.Info("Reminder job complete", "reminders_sent", sent)
	})
	if err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", s.spec, err)
	}

	s.cronEngine.Start()
	s.logger.Info("Reminder scheduler started", "schedule", s.spec, "lead", s.lead)
	return nil
}

// Stop stops the cron engine and waits for a running job to finish.
func (s *ReminderScheduler) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Reminder scheduler stopped")
}

// RunOnce sends one reminder per waiting group that is due within the lead
// time and still has unpaid members. It returns the number of reminders sent.
func (s *ReminderScheduler) RunOnce(ctx context.Context) (int, error) {
	groups, err := s.groups.ListGroups(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list groups: %w", err)
	}

	now := s.now()
	sent := 0
	for _, g := range groups {
		if g.Status != models.StatusWaiting {
			continue
		}

		report, err := s.groups.Status(ctx, g.ID)
		if err != nil {
			s.logger.Warn("Skipping reminder", "group_id", g.ID, "error", err)
			continue
		}
		if report.NextPayoutDue.IsZero() || report.NextPayoutDue.Sub(now) > s.lead {
			continue
		}

		var unpaid []string
		for _, c := range report.Contributions {
			if !c.Paid {
				unpaid = append(unpaid, c.Member.ID)
			}
		}
		if len(unpaid) == 0 {
			continue
		}

		event := notify.Event{
			Type:       notify.EventContributionReminder,
			GroupID:    g.ID,
			GroupName:  g.Name,
			Cycle:      g.CurrentCycle,
			Amount:     g.MonthlyContribution,
			Unpaid:     unpaid,
			DueDate:    report.NextPayoutDue,
			OccurredAt: now,
		}
		if report.Recipient != nil {
			event.RecipientID = report.Recipient.ID
		}

		if err := s.notifier.Notify(ctx, event); err != nil {
			s.logger.Warn("Reminder delivery failed", "group_id", g.ID, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}
