package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/appointment-availability-api/internal/models"
)

// AppointmentRepository reads existing bookings.
type AppointmentRepository struct {
	db *sqlx.DB
}

// NewAppointmentRepository constructs an appointment repository.
func NewAppointmentRepository(db *sqlx.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// ListActiveInRange returns non-cancelled appointments of the employees that
// intersect [from, to).
func (r *AppointmentRepository) ListActiveInRange(ctx context.Context, employeeIDs []string, from, to time.Time) ([]models.Appointment, error) {
	if len(employeeIDs) == 0 {
		return []models.Appointment{}, nil
	}
	const query = `SELECT id, employee_id, service_id, date, start_time, end_time, status
FROM appointments
WHERE employee_id = ANY($1) AND start_time < $3 AND end_time > $2 AND status <> $4
ORDER BY start_time`
	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, pq.Array(employeeIDs), from.UTC(), to.UTC(), models.AppointmentCancelled); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appointments, nil
}
