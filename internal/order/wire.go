package order

import (
	"database/sql"

	"go.uber.org/zap"

	"fournil/internal/infrastructure/mysql"
	"fournil/internal/order/controller"
	"fournil/internal/order/repository"
	"fournil/internal/order/usecase"
)

// NewModule wires the admin order board feature.
func NewModule(db *sql.DB, logger *zap.Logger) *controller.AdminOrdersController {
	orderRepo := repository.NewMySQLOrderRepository(db)
	itemRepo := repository.NewMySQLOrderItemRepository(db)

	uc := usecase.NewBoardUseCase(
		mysql.NewTxRunner(db),
		orderRepo,
		itemRepo,
		logger,
	)

	return controller.NewAdminOrdersController(uc, logger)
}
