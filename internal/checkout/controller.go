package checkout

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fournil/internal/cart"
	"fournil/internal/domain"
	apperrors "fournil/internal/errors"
)

// CartAccess is the slice of the cart service the checkout flow needs:
// read the session cart before the transaction, destroy it after success.
type CartAccess interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

type CheckoutRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type CheckoutResponse struct {
	OrderID    string          `json:"orderId"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Status     string          `json:"status"`
	EmailSent  bool            `json:"emailSent"`
	Warning    string          `json:"warning,omitempty"`
}

type Controller struct {
	coordinator *Coordinator
	carts       CartAccess
	logger      *zap.Logger
}

func NewController(coordinator *Coordinator, carts CartAccess, logger *zap.Logger) *Controller {
	return &Controller{
		coordinator: coordinator,
		carts:       carts,
		logger:      logger,
	}
}

func (c *Controller) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	sessionID := cart.SessionID(w, r)

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "request body must be valid JSON", nil)
		return
	}

	sessionCart, err := c.carts.Get(r.Context(), sessionID)
	if err != nil {
		logger.Error("loading cart failed", zap.Error(err))
		c.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred", nil)
		return
	}

	result, err := c.coordinator.Checkout(r.Context(), sessionCart, ContactInfo{
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
	})
	if err != nil {
		c.handleCheckoutError(w, err, logger)
		return
	}

	// The order is durable; only now does the cart go away. A failed clear
	// leaves a stale cart behind, which the next visit overwrites.
	if err := c.carts.Clear(r.Context(), sessionID); err != nil {
		logger.Warn("clearing cart after checkout failed", zap.Error(err))
	}

	c.writeJSON(w, http.StatusCreated, CheckoutResponse{
		OrderID:    result.OrderID,
		TotalPrice: result.TotalPrice,
		Status:     string(result.Status),
		EmailSent:  result.EmailSent,
		Warning:    result.Warning,
	})
}

func (c *Controller) handleCheckoutError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", ve.Message, ve.Details)
		return
	}

	if _, ok := apperrors.IsPersistenceError(err); ok {
		logger.Error("checkout persistence failure", zap.Error(err))
		// The cart is preserved; the user may resubmit.
		c.writeError(w, http.StatusInternalServerError, "PERSISTENCE_ERROR",
			"order could not be saved, please try again", nil)
		return
	}

	logger.Error("unexpected checkout error", zap.Error(err))
	c.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred", nil)
}

func (c *Controller) writeError(w http.ResponseWriter, statusCode int, code, message string, details []apperrors.ValidationDetail) {
	body := map[string]any{
		"error":   code,
		"message": message,
	}
	if len(details) > 0 {
		body["details"] = details
	}
	c.writeJSON(w, statusCode, body)
}

func (c *Controller) writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		c.logger.Error("writing response failed", zap.Error(err))
	}
}
