package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/vikoba/internal/models"
	"github.com/mmynk/vikoba/internal/storage"
)

// ListContributions retrieves the contributions recorded for one cycle.
func (s *SQLiteStore) ListContributions(ctx context.Context, groupID string, cycle int) ([]models.Contribution, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT group_id, member_id, cycle, paid, amount, paid_at
		 FROM contributions WHERE group_id = ? AND cycle = ? ORDER BY member_id`,
		groupID, cycle,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	defer rows.Close()

	var contributions []models.Contribution
	for rows.Next() {
		var c models.Contribution
		var paid int
		var paidAt int64
		if err := rows.Scan(&c.GroupID, &c.MemberID, &c.Cycle, &paid, &c.Amount, &paidAt); err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		c.Paid = paid != 0
		c.PaidAt = fromUnix(paidAt)
		contributions = append(contributions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contributions: %w", err)
	}

	return contributions, nil
}

// SaveContribution upserts a contribution and updates the group status. The
// write only applies while the group is still at c.Cycle.
func (s *SQLiteStore) SaveContribution(ctx context.Context, c models.Contribution, status models.Status) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE payout_groups SET status = ? WHERE id = ? AND current_cycle = ?",
		string(status), c.GroupID, c.Cycle,
	)
	if err != nil {
		return fmt.Errorf("failed to update group status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		exists, err := groupExists(ctx, tx, c.GroupID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("group %s: %w", c.GroupID, storage.ErrNotFound)
		}
		return fmt.Errorf("group %s is no longer at cycle %d: %w", c.GroupID, c.Cycle, storage.ErrConflict)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO contributions (group_id, member_id, cycle, paid, amount, paid_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (group_id, member_id, cycle) DO UPDATE SET
		     paid = excluded.paid,
		     amount = excluded.amount,
		     paid_at = excluded.paid_at`,
		c.GroupID, c.MemberID, c.Cycle, boolToInt(c.Paid), c.Amount, toUnix(c.PaidAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert contribution: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
