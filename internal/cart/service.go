package cart

import (
	"context"

	"go.uber.org/zap"

	"fournil/internal/domain"
)

// Service applies cart mutations against the session store. All mutations
// read-modify-write the whole cart; line identity stays positional.
type Service struct {
	store  Store
	logger *zap.Logger
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

func (s *Service) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	return s.store.Get(ctx, sessionID)
}

func (s *Service) Add(ctx context.Context, sessionID string, line domain.CartLine) (*domain.Cart, error) {
	cart, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.Add(line)
	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, err
	}

	s.logger.Debug("cart line added",
		zap.String("sessionId", sessionID),
		zap.String("product", line.Name),
		zap.Int("quantity", line.Quantity),
		zap.Int("cartSize", len(cart.Lines)))

	return cart, nil
}

// Remove drops the line at index. An out-of-range index leaves the cart
// untouched; the UI only ever submits indices it just displayed.
func (s *Service) Remove(ctx context.Context, sessionID string, index int) (*domain.Cart, error) {
	cart, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.Remove(index)
	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

// Clear destroys the session's cart. Called after checkout success.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}
