package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/rl1809/helados/internal/core/domain"
	"github.com/rl1809/helados/internal/port"
)

var ErrNotFound = errors.New("helado not found")

type HeladoService struct {
	db    port.DatabaseRepository
	cache port.CacheRepository
}

// NewHeladoService wires the service to its store. cache may be nil.
func NewHeladoService(db port.DatabaseRepository, cache port.CacheRepository) *HeladoService {
	return &HeladoService{db: db, cache: cache}
}

func (s *HeladoService) Create(ctx context.Context, helado domain.Helado) (int64, error) {
	helado.ID = nil

	id, err := s.db.CreateHelado(ctx, helado)
	if err != nil {
		return 0, fmt.Errorf("create helado: %w", err)
	}
	return id, nil
}

func (s *HeladoService) Get(ctx context.Context, id int64) (*domain.Helado, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.GetHelado(ctx, id)
		if err != nil {
			log.Printf("cache get %d: %v", id, err)
		} else if ok {
			return cached, nil
		}
	}

	helado, err := s.db.GetHelado(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get helado %d: %w", id, err)
	}
	if helado == nil {
		return nil, ErrNotFound
	}

	// The cache refuses the write if an update or delete invalidated id
	// while this read was in flight.
	if s.cache != nil {
		if _, err := s.cache.SetHelado(ctx, *helado); err != nil {
			log.Printf("cache set %d: %v", id, err)
		}
	}
	return helado, nil
}

func (s *HeladoService) List(ctx context.Context) ([]domain.Helado, error) {
	helados, err := s.db.ListHelados(ctx)
	if err != nil {
		return nil, fmt.Errorf("list helados: %w", err)
	}
	if helados == nil {
		helados = []domain.Helado{}
	}
	return helados, nil
}

// Update overwrites the record with the given id. Updating an id that does
// not exist succeeds.
func (s *HeladoService) Update(ctx context.Context, id int64, helado domain.Helado) error {
	if err := s.db.UpdateHelado(ctx, id, helado); err != nil {
		return fmt.Errorf("update helado %d: %w", id, err)
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *HeladoService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.db.DeleteHelado(ctx, id)
	if err != nil {
		return fmt.Errorf("delete helado %d: %w", id, err)
	}
	s.invalidate(ctx, id)
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (s *HeladoService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateHelado(ctx, id); err != nil {
		log.Printf("cache invalidate %d: %v", id, err)
	}
}
