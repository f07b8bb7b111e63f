package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/vikoba/internal/models"
	"github.com/mmynk/vikoba/internal/storage"
)

// CreateGroup persists a new payout group and its members.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	// Generate ID if not set
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO payout_groups (id, name, monthly_contribution, total_cycles, current_cycle, status, start_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		group.ID, group.Name, group.MonthlyContribution, group.TotalCycles,
		group.CurrentCycle, string(group.Status), toUnix(group.StartDate), group.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("group %s: %w", group.ID, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	for _, m := range group.Members {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO group_members (group_id, member_id, name, joined_at, position) VALUES (?, ?, ?, ?, ?)",
			group.ID, m.ID, m.Name, toUnix(m.JoinedAt), m.Position,
		)
		if err != nil {
			return fmt.Errorf("failed to insert member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetGroup retrieves a group by ID, including members in payout order.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := scanGroup(s.db.QueryRowContext(ctx,
		`SELECT id, name, monthly_contribution, total_cycles, current_cycle, status, start_date, created_at
		 FROM payout_groups WHERE id = ?`,
		groupID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	if group.Members, err = s.listMembers(ctx, groupID); err != nil {
		return nil, err
	}
	return group, nil
}

// ListGroups retrieves all groups with their members.
func (s *SQLiteStore) ListGroups(ctx context.Context) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, monthly_contribution, total_cycles, current_cycle, status, start_date, created_at
		 FROM payout_groups ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	rows.Close()

	for _, group := range groups {
		if group.Members, err = s.listMembers(ctx, group.ID); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

func (s *SQLiteStore) listMembers(ctx context.Context, groupID string) ([]models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT member_id, name, joined_at, position FROM group_members WHERE group_id = ? ORDER BY position",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		var joinedAt int64
		if err := rows.Scan(&m.ID, &m.Name, &joinedAt, &m.Position); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.JoinedAt = fromUnix(joinedAt)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGroup(row rowScanner) (*models.Group, error) {
	group := &models.Group{}
	var status string
	var startDate int64
	err := row.Scan(&group.ID, &group.Name, &group.MonthlyContribution, &group.TotalCycles,
		&group.CurrentCycle, &status, &startDate, &group.CreatedAt)
	if err != nil {
		return nil, err
	}
	group.Status = models.Status(status)
	if !group.Status.Valid() {
		return nil, fmt.Errorf("group %s has unknown status %q", group.ID, status)
	}
	group.StartDate = fromUnix(startDate)
	return group, nil
}
