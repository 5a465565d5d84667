package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/appointment-availability-api/internal/models"
)

// BlockedTimeRepository reads vacations and blocked slots.
type BlockedTimeRepository struct {
	db *sqlx.DB
}

// NewBlockedTimeRepository constructs a blocked time repository.
func NewBlockedTimeRepository(db *sqlx.DB) *BlockedTimeRepository {
	return &BlockedTimeRepository{db: db}
}

// ListInRange returns blocked entries of the employees dated between from and
// to inclusive. Dates are YYYY-MM-DD keys.
func (r *BlockedTimeRepository) ListInRange(ctx context.Context, employeeIDs []string, from, to string) ([]models.BlockedTime, error) {
	if len(employeeIDs) == 0 {
		return []models.BlockedTime{}, nil
	}
	const query = `SELECT id, employee_id, group_id, date, start_time, end_time, all_day, reason
FROM blocked_times
WHERE employee_id = ANY($1) AND date >= $2 AND date <= $3
ORDER BY date, employee_id`
	var rows []models.BlockedTime
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(employeeIDs), from, to); err != nil {
		return nil, fmt.Errorf("list blocked times: %w", err)
	}
	return rows, nil
}
