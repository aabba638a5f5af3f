package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fournil/internal/domain"
	apperrors "fournil/internal/errors"
	"fournil/internal/order/usecase"
)

type BoardUseCase interface {
	Board(ctx context.Context) (*usecase.Board, error)
	Advance(ctx context.Context, orderID string, target domain.Status) (*domain.Order, error)
	Delete(ctx context.Context, orderID string) error
	PurgeCompleted(ctx context.Context) (int64, error)
}

type OrderDTO struct {
	ID           string          `json:"id"`
	CustomerName string          `json:"customerName"`
	Phone        string          `json:"phone"`
	Email        *string         `json:"email"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	Status       string          `json:"status"`
	StatusLabel  string          `json:"statusLabel"`
	CreatedAt    time.Time       `json:"createdAt"`
	Items        []OrderItemDTO  `json:"items"`
}

type OrderItemDTO struct {
	ProductName string          `json:"productName"`
	Options     string          `json:"options"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

type StatusGroupDTO struct {
	Status string     `json:"status"`
	Label  string     `json:"label"`
	Count  int        `json:"count"`
	Orders []OrderDTO `json:"orders"`
}

type BoardResponse struct {
	Pending    StatusGroupDTO `json:"pending"`
	InProgress StatusGroupDTO `json:"inProgress"`
	Completed  StatusGroupDTO `json:"completed"`
}

type AdvanceRequest struct {
	Status string `json:"status"`
}

type AdminOrdersController struct {
	useCase BoardUseCase
	logger  *zap.Logger
}

func NewAdminOrdersController(useCase BoardUseCase, logger *zap.Logger) *AdminOrdersController {
	return &AdminOrdersController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *AdminOrdersController) HandleBoard(w http.ResponseWriter, r *http.Request) {
	board, err := c.useCase.Board(r.Context())
	if err != nil {
		c.handleError(w, err, c.logger)
		return
	}

	c.writeJSON(w, http.StatusOK, BoardResponse{
		Pending:    toStatusGroupDTO(board.Pending),
		InProgress: toStatusGroupDTO(board.InProgress),
		Completed:  toStatusGroupDTO(board.Completed),
	})
}

func (c *AdminOrdersController) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID := chi.URLParam(r, "orderId")

	// An empty or absent body means "move to the next state".
	var req AdvanceRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			c.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "request body must be valid JSON")
			return
		}
	}

	order, err := c.useCase.Advance(r.Context(), orderID, domain.Status(req.Status))
	if err != nil {
		c.handleError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]any{
		"orderId":     order.ID,
		"status":      string(order.Status),
		"statusLabel": order.Status.Label(),
	})
}

func (c *AdminOrdersController) HandleDelete(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	if err := c.useCase.Delete(r.Context(), orderID); err != nil {
		c.handleError(w, err, c.logger)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]string{
		"orderId": orderID,
		"message": "order deleted",
	})
}

func (c *AdminOrdersController) HandlePurgeCompleted(w http.ResponseWriter, r *http.Request) {
	purged, err := c.useCase.PurgeCompleted(r.Context())
	if err != nil {
		c.handleError(w, err, c.logger)
		return
	}

	message := "completed orders purged"
	if purged == 0 {
		message = "no completed orders to purge"
	}

	c.writeJSON(w, http.StatusOK, map[string]any{
		"purged":  purged,
		"message": message,
	})
}

func (c *AdminOrdersController) handleError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", ve.Message)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}

	if _, ok := apperrors.IsConflictError(err); ok {
		c.writeError(w, http.StatusConflict, "CONFLICT", err.Error())
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

func (c *AdminOrdersController) writeError(w http.ResponseWriter, statusCode int, code, message string) {
	c.writeJSON(w, statusCode, map[string]string{
		"error":   code,
		"message": message,
	})
}

func (c *AdminOrdersController) writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		c.logger.Error("writing response failed", zap.Error(err))
	}
}

func toStatusGroupDTO(group usecase.StatusGroup) StatusGroupDTO {
	orders := make([]OrderDTO, len(group.Orders))
	for i, view := range group.Orders {
		items := make([]OrderItemDTO, len(view.Items))
		for j, item := range view.Items {
			items[j] = OrderItemDTO{
				ProductName: item.ProductName,
				Options:     item.Options,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				TotalPrice:  item.TotalPrice,
			}
		}

		orders[i] = OrderDTO{
			ID:           view.Order.ID,
			CustomerName: view.Order.CustomerName,
			Phone:        view.Order.Phone,
			Email:        view.Order.Email,
			TotalPrice:   view.Order.TotalPrice,
			Status:       string(view.Order.Status),
			StatusLabel:  view.Order.Status.Label(),
			CreatedAt:    view.Order.CreatedAt,
			Items:        items,
		}
	}

	return StatusGroupDTO{
		Status: string(group.Status),
		Label:  group.Label,
		Count:  group.Count,
		Orders: orders,
	}
}
