package cart

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fournil/internal/domain"
	apperrors "fournil/internal/errors"
)

const sessionCookie = "cart_session"

// SessionID returns the browsing session id from the request cookie,
// minting and setting a fresh one when absent.
func SessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

type AddLineRequest struct {
	Name     string          `json:"name"`
	Options  string          `json:"options"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type CartResponse struct {
	Items []domain.CartLine `json:"items"`
	Total decimal.Decimal   `json:"total"`
	Empty bool              `json:"empty"`
}

type Controller struct {
	service *Service
	logger  *zap.Logger
}

func NewController(service *Service, logger *zap.Logger) *Controller {
	return &Controller{
		service: service,
		logger:  logger,
	}
}

func (c *Controller) HandleGetCart(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionID(w, r)

	cart, err := c.service.Get(r.Context(), sessionID)
	if err != nil {
		c.logger.Error("loading cart failed", zap.Error(err))
		c.writeInternalError(w)
		return
	}

	c.writeCart(w, http.StatusOK, cart)
}

func (c *Controller) HandleAddLine(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionID(w, r)

	var req AddLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if err := c.validateAddLine(req); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	cart, err := c.service.Add(r.Context(), sessionID, domain.CartLine{
		Name:     req.Name,
		Options:  req.Options,
		Quantity: req.Quantity,
		Price:    domain.RoundMoney(req.Price),
	})
	if err != nil {
		c.logger.Error("adding cart line failed", zap.Error(err))
		c.writeInternalError(w)
		return
	}

	c.writeCart(w, http.StatusOK, cart)
}

func (c *Controller) HandleRemoveLine(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionID(w, r)

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		c.writeValidationError(w, "invalid line index", apperrors.ValidationDetail{
			Field:   "index",
			Message: "index must be an integer",
		})
		return
	}

	cart, err := c.service.Remove(r.Context(), sessionID, index)
	if err != nil {
		c.logger.Error("removing cart line failed", zap.Error(err))
		c.writeInternalError(w)
		return
	}

	c.writeCart(w, http.StatusOK, cart)
}

func (c *Controller) validateAddLine(req AddLineRequest) error {
	var details []apperrors.ValidationDetail

	if req.Name == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "name",
			Message: "name is required",
		})
	}

	if req.Quantity < 1 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must be a positive integer",
		})
	}

	if req.Price.IsNegative() {
		details = append(details, apperrors.ValidationDetail{
			Field:   "price",
			Message: "price must be non-negative",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	return nil
}

func (c *Controller) writeCart(w http.ResponseWriter, statusCode int, cart *domain.Cart) {
	items := cart.Lines
	if items == nil {
		items = []domain.CartLine{}
	}

	c.writeJSON(w, statusCode, CartResponse{
		Items: items,
		Total: cart.Total(),
		Empty: cart.IsEmpty(),
	})
}

func (c *Controller) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":   "VALIDATION_ERROR",
		"message": message,
		"details": details,
	})
}

func (c *Controller) writeInternalError(w http.ResponseWriter) {
	c.writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "INTERNAL_ERROR",
		"message": "an unexpected error occurred",
	})
}

func (c *Controller) writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		c.logger.Error("writing response failed", zap.Error(err))
	}
}
