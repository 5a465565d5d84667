package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/appointment-availability-api/internal/models"
)

// EmployeeRepository reads bookable employees.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository constructs an employee repository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// FindByIDs returns the active employees among ids.
func (r *EmployeeRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Employee, error) {
	if len(ids) == 0 {
		return []models.Employee{}, nil
	}
	const query = `SELECT id, name, active, created_at, updated_at
FROM employees WHERE id = ANY($1) AND active = TRUE ORDER BY id`
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find employees: %w", err)
	}
	return employees, nil
}

// ListByService returns active employees qualified for a service.
func (r *EmployeeRepository) ListByService(ctx context.Context, serviceID string) ([]models.Employee, error) {
	const query = `SELECT e.id, e.name, e.active, e.created_at, e.updated_at
FROM employees e
JOIN employee_services es ON es.employee_id = e.id
WHERE es.service_id = $1 AND e.active = TRUE
ORDER BY e.id`
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query, serviceID); err != nil {
		return nil, fmt.Errorf("list employees for service %s: %w", serviceID, err)
	}
	return employees, nil
}
