package port

import (
	"context"

	"github.com/rl1809/helados/internal/core/domain"
)

type DatabaseRepository interface {
	// EnsureSchema creates the helados table if it does not exist
	EnsureSchema(ctx context.Context) error

	// CreateHelado inserts a new record and returns the id assigned by the store
	CreateHelado(ctx context.Context, helado domain.Helado) (int64, error)

	// GetHelado retrieves a record by id, returns nil if absent
	GetHelado(ctx context.Context, id int64) (*domain.Helado, error)

	// ListHelados retrieves every record
	ListHelados(ctx context.Context) ([]domain.Helado, error)

	// UpdateHelado overwrites flavor and stock status, a missing id is not reported
	UpdateHelado(ctx context.Context, id int64, helado domain.Helado) error

	// DeleteHelado removes a record, returns false if no row matched
	DeleteHelado(ctx context.Context, id int64) (bool, error)
}
