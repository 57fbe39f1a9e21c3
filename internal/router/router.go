package router

import (
	"roomhub-commerce-api/internal/handler"
	"roomhub-commerce-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler        *handler.Handler
	CartHandler    *handler.CartHandler
	OrderHandler   *handler.OrderHandler
	RoomHandler    *handler.RoomHandler
	WalletHandler  *handler.WalletHandler
	ProductHandler *handler.ProductHandler
	Logger         *logrus.Logger
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-User-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// PUBLIC routes (no identity required)
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
		r.Get("/api/v1/health", cfg.Handler.Health)
		r.Get("/api/v1/ready", cfg.Handler.Ready)
	}

	// AUTHENTICATED routes (identity middleware applies to this group only)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity)

		r.Route("/api/v1", func(r chi.Router) {
			if cfg.CartHandler != nil {
				r.Route("/cart", func(r chi.Router) {
					r.Get("/", cfg.CartHandler.List)
					r.Delete("/", cfg.CartHandler.Clear)
					r.Post("/items", cfg.CartHandler.AddItem)
					r.Patch("/items/{item_id}", cfg.CartHandler.UpdateItem)
					r.Delete("/items/{item_id}", cfg.CartHandler.RemoveItem)
					r.Post("/checkout", cfg.CartHandler.Checkout)
				})
			}

			if cfg.OrderHandler != nil {
				r.Route("/orders", func(r chi.Router) {
					r.Get("/", cfg.OrderHandler.List)
					r.Post("/", cfg.OrderHandler.Place)
					r.Get("/{order_id}", cfg.OrderHandler.Get)
					r.Patch("/{order_id}/status", cfg.OrderHandler.UpdateStatus)
					r.Post("/{order_id}/cancel", cfg.OrderHandler.Cancel)
				})
			}

			if cfg.RoomHandler != nil {
				r.Route("/rooms", func(r chi.Router) {
					r.Post("/", cfg.RoomHandler.Create)
					r.Get("/quota", cfg.RoomHandler.Quota)

					if cfg.ProductHandler != nil {
						r.Post("/{room_id}/products", cfg.ProductHandler.Create)
						r.Get("/{room_id}/products", cfg.ProductHandler.ListByRoom)
					}
				})
			}

			if cfg.ProductHandler != nil {
				r.Get("/products/{product_id}", cfg.ProductHandler.Get)
			}

			if cfg.WalletHandler != nil {
				r.Route("/wallet", func(r chi.Router) {
					r.Get("/", cfg.WalletHandler.Balance)
					r.Get("/transactions", cfg.WalletHandler.History)
					r.Post("/rewards/daily-login", cfg.WalletHandler.ClaimDailyLogin)
					r.Post("/rewards/registration", cfg.WalletHandler.ClaimRegistration)
				})
			}
		})
	})

	return r
}
