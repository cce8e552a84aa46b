package port

import (
	"context"

	"github.com/rl1809/helados/internal/core/domain"
)

type CacheRepository interface {
	// GetHelado returns a cached record, false on miss
	GetHelado(ctx context.Context, id int64) (*domain.Helado, bool, error)

	// SetHelado caches a record read from the database, returns false if the id
	// was invalidated recently and the record may be stale
	SetHelado(ctx context.Context, helado domain.Helado) (bool, error)

	// InvalidateHelado drops a cached record after a write and blocks SetHelado
	// for that id until the invalidation window passes
	InvalidateHelado(ctx context.Context, id int64) error
}
