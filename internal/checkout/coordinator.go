package checkout

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fournil/internal/domain"
	apperrors "fournil/internal/errors"
	"fournil/internal/notify"
)

type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type OrderRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, order domain.Order) error
}

type OrderItemRepository interface {
	InsertBatch(ctx context.Context, tx *sql.Tx, items []domain.OrderItem) error
}

type Notifier interface {
	SendOrderConfirmation(ctx context.Context, email notify.OrderEmail) error
}

type ContactInfo struct {
	Name  string
	Phone string
	Email string
}

type Result struct {
	OrderID    string
	TotalPrice decimal.Decimal
	Status     domain.Status
	EmailSent  bool
	Warning    string
}

// Coordinator converts a non-empty cart plus contact info into a durable
// order. Header and items are written in one transaction; the confirmation
// email is best-effort after commit.
type Coordinator struct {
	tm        TransactionManager
	orderRepo OrderRepository
	itemRepo  OrderItemRepository
	notifier  Notifier
	logger    *zap.Logger
	txTimeout time.Duration
}

func NewCoordinator(
	tm TransactionManager,
	orderRepo OrderRepository,
	itemRepo OrderItemRepository,
	notifier Notifier,
	logger *zap.Logger,
	txTimeout time.Duration,
) *Coordinator {
	return &Coordinator{
		tm:        tm,
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
		notifier:  notifier,
		logger:    logger,
		txTimeout: txTimeout,
	}
}

func (c *Coordinator) Checkout(ctx context.Context, cart *domain.Cart, info ContactInfo) (*Result, error) {
	if err := validate(cart, info); err != nil {
		return nil, err
	}

	orderID := uuid.New().String()
	total := cart.Total()

	var email *string
	if info.Email != "" {
		email = &info.Email
	}

	order := domain.Order{
		ID:           orderID,
		CustomerName: info.Name,
		Phone:        info.Phone,
		Email:        email,
		TotalPrice:   total,
		Status:       domain.StatusPending,
	}

	items := make([]domain.OrderItem, len(cart.Lines))
	for i, line := range cart.Lines {
		items[i] = domain.OrderItem{
			OrderID:     orderID,
			ProductName: line.Name,
			Options:     line.Options,
			Quantity:    line.Quantity,
			UnitPrice:   domain.UnitPrice(line.Price, line.Quantity),
			TotalPrice:  line.Price,
		}
	}

	txCtx, cancel := context.WithTimeout(ctx, c.txTimeout)
	defer cancel()

	err := c.tm.WithinTx(txCtx, func(tx *sql.Tx) error {
		if err := c.orderRepo.Insert(txCtx, tx, order); err != nil {
			return err
		}
		return c.itemRepo.InsertBatch(txCtx, tx, items)
	})
	if err != nil {
		c.logger.Error("checkout transaction failed", zap.String("orderId", orderID), zap.Error(err))
		return nil, apperrors.NewPersistenceError("saving order", err)
	}

	c.logger.Info("order persisted",
		zap.String("orderId", orderID),
		zap.Int("itemCount", len(items)),
		zap.String("totalPrice", total.StringFixed(2)))

	result := &Result{
		OrderID:    orderID,
		TotalPrice: total,
		Status:     domain.StatusPending,
		EmailSent:  true,
	}

	if err := c.notifier.SendOrderConfirmation(ctx, buildOrderEmail(info, items, total)); err != nil {
		// Best effort: the order stays valid, the user gets a soft warning.
		c.logger.Warn("confirmation email failed", zap.String("orderId", orderID), zap.Error(err))
		result.EmailSent = false
		result.Warning = "order saved, confirmation email not sent"
	}

	return result, nil
}

func validate(cart *domain.Cart, info ContactInfo) error {
	var details []apperrors.ValidationDetail

	if info.Name == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "name",
			Message: "name is required",
		})
	}

	if info.Phone == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "phone",
			Message: "phone is required",
		})
	}

	if cart == nil || cart.IsEmpty() {
		details = append(details, apperrors.ValidationDetail{
			Field:   "cart",
			Message: "cart must not be empty",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	return nil
}

func buildOrderEmail(info ContactInfo, items []domain.OrderItem, total decimal.Decimal) notify.OrderEmail {
	emailItems := make([]notify.OrderEmailItem, len(items))
	for i, item := range items {
		emailItems[i] = notify.OrderEmailItem{
			ProductName: item.ProductName,
			Options:     item.Options,
			Quantity:    item.Quantity,
			TotalPrice:  item.TotalPrice,
		}
	}

	return notify.OrderEmail{
		CustomerName:  info.Name,
		CustomerEmail: info.Email,
		Phone:         info.Phone,
		Items:         emailItems,
		TotalPrice:    total,
	}
}
