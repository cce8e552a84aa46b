package handler

import (
	"context"
	"sort"
	"sync"

	"github.com/rl1809/helados/internal/core/domain"
	"github.com/rl1809/helados/internal/core/service"
)

// Mock DatabaseRepository
type mockDatabaseRepo struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[int64]domain.Helado
	failErr error
}

func newMockDatabaseRepo() *mockDatabaseRepo {
	return &mockDatabaseRepo{rows: make(map[int64]domain.Helado)}
}

func newTestService(db *mockDatabaseRepo) *service.HeladoService {
	return service.NewHeladoService(db, nil)
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
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	h, ok := m.rows[id]
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
	out := []domain.Helado{}
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
