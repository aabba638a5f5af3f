package cart

import (
	"context"
	"sync"

	"fournil/internal/domain"
)

// Store holds in-progress carts keyed by session id. A missing session
// yields an empty cart, never an error.
type Store interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Save(ctx context.Context, sessionID string, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStore is the default single-instance store. Carts live until
// checkout clears them or the process restarts.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]domain.Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]domain.Cart)}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.carts[sessionID]
	if !ok {
		return &domain.Cart{}, nil
	}

	// Copy out so callers never alias the stored slice.
	cart := domain.Cart{Lines: make([]domain.CartLine, len(stored.Lines))}
	copy(cart.Lines, stored.Lines)
	return &cart, nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := domain.Cart{Lines: make([]domain.CartLine, len(cart.Lines))}
	copy(stored.Lines, cart.Lines)
	s.carts[sessionID] = stored
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, sessionID)
	return nil
}
