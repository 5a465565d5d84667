package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/appointment-availability-api/internal/models"
)

// CalendarIntegrationRepository reads and toggles external calendar links.
type CalendarIntegrationRepository struct {
	db *sqlx.DB
}

// NewCalendarIntegrationRepository constructs a calendar integration repository.
func NewCalendarIntegrationRepository(db *sqlx.DB) *CalendarIntegrationRepository {
	return &CalendarIntegrationRepository{db: db}
}

// FindByEmployee returns the enabled integration of an employee, or nil when none exists.
func (r *CalendarIntegrationRepository) FindByEmployee(ctx context.Context, employeeID string) (*models.CalendarIntegration, error) {
	const query = `SELECT id, employee_id, provider, calendar_id, access_token, refresh_token, token_expiry, enabled, updated_at
FROM calendar_integrations WHERE employee_id = $1 AND enabled = TRUE
ORDER BY updated_at DESC LIMIT 1`
	var integration models.CalendarIntegration
	if err := r.db.GetContext(ctx, &integration, query, employeeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find calendar integration: %w", err)
	}
	return &integration, nil
}

// Disable marks an integration unusable until the employee reconnects.
func (r *CalendarIntegrationRepository) Disable(ctx context.Context, id string) error {
	const query = `UPDATE calendar_integrations SET enabled = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("disable calendar integration %s: %w", id, err)
	}
	return nil
}
