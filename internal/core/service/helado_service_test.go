package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/helados/internal/core/domain"
)

// Mock DatabaseRepository
type mockDatabaseRepo struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[int64]domain.Helado
	failErr error
	reads   int

	// When set, GetHelado signals rowRead after reading and waits for release.
	rowRead chan struct{}
	release chan struct{}
}

func newMockDatabaseRepo() *mockDatabaseRepo {
	return &mockDatabaseRepo{rows: make(map[int64]domain.Helado)}
}

func (m *mockDatabaseRepo) EnsureSchema(ctx context.Context) error {
	return m.failErr
}

func (m *mockDatabaseRepo) CreateHelado(ctx context.Context, helado domain.Helado) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return 0, m.failErr
	}
	m.nextID++
	m.rows[m.nextID] = helado.WithID(m.nextID)
	return m.nextID, nil
}

func (m *mockDatabaseRepo) GetHelado(ctx context.Context, id int64) (*domain.Helado, error) {
	m.mu.Lock()
	m.reads++
	if m.failErr != nil {
		m.mu.Unlock()
		return nil, m.failErr
	}
	h, ok := m.rows[id]
	rowRead, release := m.rowRead, m.release
	m.rowRead, m.release = nil, nil
	m.mu.Unlock()

	if rowRead != nil {
		close(rowRead)
		<-release
	}
	if !ok {
		return nil, nil
	}
	return &h, nil
}

func (m *mockDatabaseRepo) ListHelados(ctx context.Context) ([]domain.Helado, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	var out []domain.Helado
	for _, h := range m.rows {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].ID < *out[j].ID })
	return out, nil
}

func (m *mockDatabaseRepo) UpdateHelado(ctx context.Context, id int64, helado domain.Helado) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	if _, ok := m.rows[id]; ok {
		m.rows[id] = helado.WithID(id)
	}
	return nil
}

func (m *mockDatabaseRepo) DeleteHelado(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return false, m.failErr
	}
	if _, ok := m.rows[id]; !ok {
		return false, nil
	}
	delete(m.rows, id)
	return true, nil
}

// Mock CacheRepository
type mockCacheRepo struct {
	mu          sync.Mutex
	entries     map[int64]domain.Helado
	invalidated map[int64]bool
	failErr     error
}

func newMockCacheRepo() *mockCacheRepo {
	return &mockCacheRepo{
		entries:     make(map[int64]domain.Helado),
		invalidated: make(map[int64]bool),
	}
}

func (m *mockCacheRepo) GetHelado(ctx context.Context, id int64) (*domain.Helado, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, false, m.failErr
	}
	h, ok := m.entries[id]
	if !ok {
		return nil, false, nil
	}
	return &h, true, nil
}

func (m *mockCacheRepo) SetHelado(ctx context.Context, helado domain.Helado) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return false, m.failErr
	}
	if m.invalidated[*helado.ID] {
		return false, nil
	}
	m.entries[*helado.ID] = helado
	return true, nil
}

func (m *mockCacheRepo) InvalidateHelado(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	delete(m.entries, id)
	m.invalidated[id] = true
	return nil
}

func TestCreateThenGet(t *testing.T) {
	svc := NewHeladoService(newMockDatabaseRepo(), nil)
	ctx := context.Background()

	id, err := svc.Create(ctx, domain.Helado{Flavor: "vanilla", StockStatus: "high"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	h, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, h.ID)
	assert.Equal(t, id, *h.ID)
	assert.Equal(t, "vanilla", h.Flavor)
	assert.Equal(t, "high", h.StockStatus)
}

func TestCreate_IgnoresClientID(t *testing.T) {
	db := newMockDatabaseRepo()
	svc := NewHeladoService(db, nil)

	id, err := svc.Create(context.Background(), domain.Helado{Flavor: "mango", StockStatus: "low"}.WithID(77))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	_, exists := db.rows[77]
	assert.False(t, exists)
}

func TestGet_NotFound(t *testing.T) {
	svc := NewHeladoService(newMockDatabaseRepo(), nil)

	_, err := svc.Get(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGet_DatabaseError(t *testing.T) {
	db := newMockDatabaseRepo()
	db.failErr = errors.New("connection refused")
	svc := NewHeladoService(db, nil)

	_, err := svc.Get(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestList_EmptyIsNotNil(t *testing.T) {
	svc := NewHeladoService(newMockDatabaseRepo(), nil)

	helados, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, helados)
	assert.Empty(t, helados)
}

func TestList_CountMatchesRows(t *testing.T) {
	svc := NewHeladoService(newMockDatabaseRepo(), nil)
	ctx := context.Background()

	for _, flavor := range []string{"a", "b", "c"} {
		_, err := svc.Create(ctx, domain.Helado{Flavor: flavor, StockStatus: "high"})
		require.NoError(t, err)
	}

	helados, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, helados, 3)
}

func TestUpdate_MissingIDSucceeds(t *testing.T) {
	svc := NewHeladoService(newMockDatabaseRepo(), nil)

	err := svc.Update(context.Background(), 999, domain.Helado{Flavor: "x", StockStatus: "y"})
	assert.NoError(t, err)
}

func TestDelete_Twice(t *testing.T) {
	svc := NewHeladoService(newMockDatabaseRepo(), nil)
	ctx := context.Background()

	id, err := svc.Create(ctx, domain.Helado{Flavor: "limon", StockStatus: "high"})
	require.NoError(t, err)

	assert.NoError(t, svc.Delete(ctx, id))
	assert.ErrorIs(t, svc.Delete(ctx, id), ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, id), ErrNotFound)
}

func TestGet_ServedFromCache(t *testing.T) {
	db := newMockDatabaseRepo()
	cache := newMockCacheRepo()
	svc := NewHeladoService(db, cache)
	ctx := context.Background()

	id, err := svc.Create(ctx, domain.Helado{Flavor: "vanilla", StockStatus: "high"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, id)
	require.NoError(t, err)
	_, err = svc.Get(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, 1, db.reads)
}

func TestUpdate_InvalidatesCache(t *testing.T) {
	db := newMockDatabaseRepo()
	cache := newMockCacheRepo()
	svc := NewHeladoService(db, cache)
	ctx := context.Background()

	id, err := svc.Create(ctx, domain.Helado{Flavor: "vanilla", StockStatus: "high"})
	require.NoError(t, err)
	_, err = svc.Get(ctx, id)
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, id, domain.Helado{Flavor: "vanilla", StockStatus: "out"}))

	h, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "out", h.StockStatus)
}

func TestDelete_InvalidatesCache(t *testing.T) {
	cache := newMockCacheRepo()
	svc := NewHeladoService(newMockDatabaseRepo(), cache)
	ctx := context.Background()

	id, err := svc.Create(ctx, domain.Helado{Flavor: "vanilla", StockStatus: "high"})
	require.NoError(t, err)
	_, err = svc.Get(ctx, id)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, id))

	_, err = svc.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGet_CacheFailureFallsBackToDatabase(t *testing.T) {
	cache := newMockCacheRepo()
	cache.failErr = errors.New("redis down")
	svc := NewHeladoService(newMockDatabaseRepo(), cache)
	ctx := context.Background()

	id, err := svc.Create(ctx, domain.Helado{Flavor: "vanilla", StockStatus: "high"})
	require.NoError(t, err)

	h, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "vanilla", h.Flavor)
}

func TestGet_RacingUpdateDoesNotCacheStaleRow(t *testing.T) {
	db := newMockDatabaseRepo()
	cache := newMockCacheRepo()
	svc := NewHeladoService(db, cache)
	ctx := context.Background()

	id, err := svc.Create(ctx, domain.Helado{Flavor: "vanilla", StockStatus: "high"})
	require.NoError(t, err)

	rowRead := make(chan struct{})
	release := make(chan struct{})
	db.mu.Lock()
	db.rowRead, db.release = rowRead, release
	db.mu.Unlock()

	// Get reads the old row, then the update commits before Get caches it
	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.Get(ctx, id)
	}()
	<-rowRead
	require.NoError(t, svc.Update(ctx, id, domain.Helado{Flavor: "vanilla", StockStatus: "out"}))
	close(release)
	<-done

	h, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "out", h.StockStatus)
}
