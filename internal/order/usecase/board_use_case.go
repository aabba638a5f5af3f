package usecase

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"fournil/internal/domain"
	apperrors "fournil/internal/errors"
)

type OrderRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	UpdateStatusFrom(ctx context.Context, id string, from, to domain.Status) error
	DeleteTx(ctx context.Context, tx *sql.Tx, id string) error
	DeleteCompletedTx(ctx context.Context, tx *sql.Tx) (int64, error)
}

type OrderItemRepository interface {
	ListByOrderID(ctx context.Context, orderID string) ([]domain.OrderItem, error)
	DeleteByOrderIDTx(ctx context.Context, tx *sql.Tx, orderID string) (int64, error)
	DeleteForCompletedTx(ctx context.Context, tx *sql.Tx) (int64, error)
}

type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// OrderView is one board entry: the header plus its items.
type OrderView struct {
	Order domain.Order
	Items []domain.OrderItem
}

// StatusGroup is one column of the board.
type StatusGroup struct {
	Status domain.Status
	Label  string
	Count  int
	Orders []OrderView
}

// Board partitions the full order set into the three lifecycle groups,
// each most-recent-first.
type Board struct {
	Pending    StatusGroup
	InProgress StatusGroup
	Completed  StatusGroup
}

type BoardUseCase struct {
	tm        TransactionManager
	orderRepo OrderRepository
	itemRepo  OrderItemRepository
	logger    *zap.Logger
}

func NewBoardUseCase(
	tm TransactionManager,
	orderRepo OrderRepository,
	itemRepo OrderItemRepository,
	logger *zap.Logger,
) *BoardUseCase {
	return &BoardUseCase{
		tm:        tm,
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
		logger:    logger,
	}
}

// Board loads every order with its items and partitions by status. The
// repository already orders by created_at descending; partitioning keeps
// that order within each group.
func (uc *BoardUseCase) Board(ctx context.Context) (*Board, error) {
	orders, err := uc.orderRepo.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("loading orders", err)
	}

	board := &Board{
		Pending:    newStatusGroup(domain.StatusPending),
		InProgress: newStatusGroup(domain.StatusInProgress),
		Completed:  newStatusGroup(domain.StatusCompleted),
	}

	for _, order := range orders {
		items, err := uc.itemRepo.ListByOrderID(ctx, order.ID)
		if err != nil {
			return nil, apperrors.NewPersistenceError("loading order items", err)
		}

		view := OrderView{Order: order, Items: items}
		switch order.Status {
		case domain.StatusPending:
			board.Pending.append(view)
		case domain.StatusInProgress:
			board.InProgress.append(view)
		case domain.StatusCompleted:
			board.Completed.append(view)
		default:
			uc.logger.Warn("order with unknown status skipped",
				zap.String("orderId", order.ID),
				zap.String("status", string(order.Status)))
		}
	}

	return board, nil
}

// Advance moves an order one step forward. An empty target means "the next
// state"; an explicit target must be exactly one step ahead, so skipping a
// stage is rejected.
func (uc *BoardUseCase) Advance(ctx context.Context, orderID string, target domain.Status) (*domain.Order, error) {
	order, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if target == "" {
		next, ok := order.Status.Next()
		if !ok {
			return nil, apperrors.NewConflictError("order is already completed")
		}
		target = next
	} else {
		if !target.Valid() {
			return nil, apperrors.NewValidationError("unknown status", apperrors.ValidationDetail{
				Field:   "status",
				Message: "status must be one of pending, in_progress, completed",
			})
		}
		if !domain.CanTransition(order.Status, target) {
			return nil, apperrors.NewConflictError(
				"illegal transition from " + string(order.Status) + " to " + string(target))
		}
	}

	if err := uc.orderRepo.UpdateStatusFrom(ctx, orderID, order.Status, target); err != nil {
		// The store is the source of truth: no local mutation on failure.
		return nil, err
	}

	uc.logger.Info("order status advanced",
		zap.String("orderId", orderID),
		zap.String("from", string(order.Status)),
		zap.String("to", string(target)))

	order.Status = target
	return order, nil
}

// Delete removes one order, items first, as a unit.
func (uc *BoardUseCase) Delete(ctx context.Context, orderID string) error {
	err := uc.tm.WithinTx(ctx, func(tx *sql.Tx) error {
		if _, err := uc.itemRepo.DeleteByOrderIDTx(ctx, tx, orderID); err != nil {
			return err
		}
		return uc.orderRepo.DeleteTx(ctx, tx, orderID)
	})
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return err
		}
		return apperrors.NewPersistenceError("deleting order", err)
	}

	uc.logger.Info("order deleted", zap.String("orderId", orderID))
	return nil
}

// PurgeCompleted removes every completed order and its items. Items go
// first within the same transaction. Running it again with no new
// completions deletes nothing and reports zero.
func (uc *BoardUseCase) PurgeCompleted(ctx context.Context) (int64, error) {
	var purged int64

	err := uc.tm.WithinTx(ctx, func(tx *sql.Tx) error {
		if _, err := uc.itemRepo.DeleteForCompletedTx(ctx, tx); err != nil {
			return err
		}

		n, err := uc.orderRepo.DeleteCompletedTx(ctx, tx)
		if err != nil {
			return err
		}
		purged = n
		return nil
	})
	if err != nil {
		return 0, apperrors.NewPersistenceError("purging completed orders", err)
	}

	uc.logger.Info("completed orders purged", zap.Int64("count", purged))
	return purged, nil
}

func newStatusGroup(status domain.Status) StatusGroup {
	return StatusGroup{
		Status: status,
		Label:  status.Label(),
		Orders: []OrderView{},
	}
}

func (g *StatusGroup) append(view OrderView) {
	g.Orders = append(g.Orders, view)
	g.Count = len(g.Orders)
}
