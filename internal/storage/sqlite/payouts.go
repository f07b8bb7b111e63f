package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/vikoba/internal/models"
	"github.com/mmynk/vikoba/internal/storage"
)

// AdvanceCycle moves a group to its next cycle. The update only applies when
// the stored cycle still equals adv.FromCycle.
func (s *SQLiteStore) AdvanceCycle(ctx context.Context, adv storage.CycleAdvance) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE payout_groups SET current_cycle = ?, status = ? WHERE id = ? AND current_cycle = ?",
		adv.ToCycle, string(adv.Status), adv.GroupID, adv.FromCycle,
	)
	if err != nil {
		return fmt.Errorf("failed to advance cycle: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		exists, err := groupExists(ctx, tx, adv.GroupID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("group %s: %w", adv.GroupID, storage.ErrNotFound)
		}
		return fmt.Errorf("group %s is no longer at cycle %d: %w", adv.GroupID, adv.FromCycle, storage.ErrConflict)
	}

	if p := adv.Payout; p != nil {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO payouts (id, group_id, cycle, recipient_id, amount, collected, forced, paid_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.GroupID, p.Cycle, p.RecipientID, p.Amount, p.Collected, boolToInt(p.Forced), toUnix(p.PaidAt),
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("payout for cycle %d: %w", p.Cycle, storage.ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("failed to insert payout: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"DELETE FROM contributions WHERE group_id = ? AND cycle = ?",
		adv.GroupID, adv.ToCycle,
	)
	if err != nil {
		return fmt.Errorf("failed to clear contributions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListPayouts retrieves all payouts for a group, oldest cycle first.
func (s *SQLiteStore) ListPayouts(ctx context.Context, groupID string) ([]models.Payout, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, cycle, recipient_id, amount, collected, forced, paid_at
		 FROM payouts WHERE group_id = ? ORDER BY cycle ASC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts by group: %w", err)
	}
	defer rows.Close()

	var payouts []models.Payout
	for rows.Next() {
		var p models.Payout
		var forced int
		var paidAt int64
		if err := rows.Scan(&p.ID, &p.GroupID, &p.Cycle, &p.RecipientID,
			&p.Amount, &p.Collected, &forced, &paidAt); err != nil {
			return nil, fmt.Errorf("failed to scan payout: %w", err)
		}
		p.Forced = forced != 0
		p.PaidAt = fromUnix(paidAt)
		payouts = append(payouts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payouts: %w", err)
	}

	return payouts, nil
}
