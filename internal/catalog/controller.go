package catalog

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type Controller struct {
	catalog *Catalog
	logger  *zap.Logger
}

func NewController(catalog *Catalog, logger *zap.Logger) *Controller {
	return &Controller{
		catalog: catalog,
		logger:  logger,
	}
}

func (c *Controller) HandleList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]any{
		"products": c.catalog.Products,
	}); err != nil {
		c.logger.Error("writing response failed", zap.Error(err))
	}
}
