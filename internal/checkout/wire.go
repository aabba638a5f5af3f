package checkout

import (
	"database/sql"
	"time"

	"go.uber.org/zap"

	"fournil/internal/infrastructure/mysql"
	orderrepo "fournil/internal/order/repository"
)

const checkoutTxTimeout = 5 * time.Second

// NewModule wires the checkout feature over the shared order repositories.
func NewModule(db *sql.DB, carts CartAccess, notifier Notifier, logger *zap.Logger) *Controller {
	coordinator := NewCoordinator(
		mysql.NewTxRunner(db),
		orderrepo.NewMySQLOrderRepository(db),
		orderrepo.NewMySQLOrderItemRepository(db),
		notifier,
		logger,
		checkoutTxTimeout,
	)

	return NewController(coordinator, carts, logger)
}
