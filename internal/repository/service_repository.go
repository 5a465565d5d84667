package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/appointment-availability-api/internal/models"
)

// ServiceRepository reads bookable services.
type ServiceRepository struct {
	db *sqlx.DB
}

// NewServiceRepository constructs a service repository.
func NewServiceRepository(db *sqlx.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

// FindByID fetches an active service. sql.ErrNoRows is returned untouched.
func (r *ServiceRepository) FindByID(ctx context.Context, id string) (*models.Service, error) {
	const query = `SELECT id, name, duration, buffer_time, active, created_at, updated_at
FROM services WHERE id = $1 AND active = TRUE`
	var svc models.Service
	if err := r.db.GetContext(ctx, &svc, query, id); err != nil {
		return nil, err
	}
	return &svc, nil
}
