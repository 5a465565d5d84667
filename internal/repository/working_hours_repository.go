package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/appointment-availability-api/internal/models"
)

// WorkingHoursRepository reads recurring weekly schedules.
type WorkingHoursRepository struct {
	db *sqlx.DB
}

// NewWorkingHoursRepository constructs a working hours repository.
func NewWorkingHoursRepository(db *sqlx.DB) *WorkingHoursRepository {
	return &WorkingHoursRepository{db: db}
}

// ListByEmployees returns every schedule row of the given employees.
func (r *WorkingHoursRepository) ListByEmployees(ctx context.Context, employeeIDs []string) ([]models.WorkingHours, error) {
	if len(employeeIDs) == 0 {
		return []models.WorkingHours{}, nil
	}
	const query = `SELECT id, employee_id, weekday, start_time, end_time, pause_start, pause_end, lead_time, timeslot_interval
FROM working_hours WHERE employee_id = ANY($1)
ORDER BY employee_id, weekday, start_time`
	var rows []models.WorkingHours
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(employeeIDs)); err != nil {
		return nil, fmt.Errorf("list working hours: %w", err)
	}
	return rows, nil
}
