package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/campoverde/backoffice/internal/auth"
	"github.com/campoverde/backoffice/internal/calendar"
	"github.com/campoverde/backoffice/internal/clients"
	"github.com/campoverde/backoffice/internal/products"
	"github.com/campoverde/backoffice/internal/sales"
	"github.com/campoverde/backoffice/internal/shared"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	Tokens          *shared.TokenManager
	AuthHandler     *auth.Handler
	ClientsHandler  *clients.Handler
	ProductsHandler *products.Handler
	SalesHandler    *sales.Handler
	CalendarHandler *calendar.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	// Everything below requires a valid bearer token.
	r.Group(func(r chi.Router) {
		r.Use(shared.RequireAuth(params.Tokens))
		r.Route("/clients", params.ClientsHandler.MountRoutes)
		r.Route("/products", params.ProductsHandler.MountRoutes)
		r.Route("/orders", params.SalesHandler.MountOrderRoutes)
		r.Route("/sales", params.SalesHandler.MountSaleRoutes)
		r.Route("/calendar", params.CalendarHandler.MountRoutes)
	})

	return r
}
