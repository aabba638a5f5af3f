package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"fournil/internal/admin"
	admincontroller "fournil/internal/admin/controller"
	"fournil/internal/cart"
	"fournil/internal/catalog"
	"fournil/internal/checkout"
	ordercontroller "fournil/internal/order/controller"
)

type Controllers struct {
	Catalog  *catalog.Controller
	Cart     *cart.Controller
	Checkout *checkout.Controller
	Auth     *admincontroller.AuthController
	Orders   *ordercontroller.AdminOrdersController
	Sessions admin.SessionResolver
}

func NewRouter(c Controllers, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", c.Catalog.HandleList)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", c.Cart.HandleGetCart)
			r.Post("/items", c.Cart.HandleAddLine)
			r.Delete("/items/{index}", c.Cart.HandleRemoveLine)
		})

		r.Post("/checkout", c.Checkout.HandleCheckout)

		r.Route("/admin", func(r chi.Router) {
			r.Route("/auth", func(r chi.Router) {
				r.Post("/signup", c.Auth.HandleSignUp)
				r.Post("/signin", c.Auth.HandleSignIn)
				r.Post("/signout", c.Auth.HandleSignOut)
				r.Post("/password-reset/request", c.Auth.HandleRequestPasswordReset)
				r.Post("/password-reset/confirm", c.Auth.HandleResetPassword)
				r.Post("/magic-link/request", c.Auth.HandleRequestMagicLink)
				r.Post("/magic-link/redeem", c.Auth.HandleRedeemMagicLink)

				r.Group(func(r chi.Router) {
					r.Use(admin.RequireAdmin(c.Sessions, logger))
					r.Get("/session", c.Auth.HandleSession)
				})
			})

			r.Route("/orders", func(r chi.Router) {
				r.Use(admin.RequireAdmin(c.Sessions, logger))

				r.Get("/", c.Orders.HandleBoard)
				// registered before {orderId} so "completed" is not taken
				// for an order id
				r.Delete("/completed", c.Orders.HandlePurgeCompleted)
				r.Post("/{orderId}/advance", c.Orders.HandleAdvance)
				r.Delete("/{orderId}", c.Orders.HandleDelete)
			})
		})
	})

	return r
}
