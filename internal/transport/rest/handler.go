// Package rest exposes the storefront over HTTP.
package rest

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/gostorefront/internal/auth"
	"github.com/abgdnv/gostorefront/internal/catalog"
	"github.com/abgdnv/gostorefront/internal/checkout"
	"github.com/abgdnv/gostorefront/internal/dashboard"
	"github.com/abgdnv/gostorefront/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Services are the domain components behind the HTTP API.
type Services struct {
	Catalog  *catalog.Holder
	Loader   catalog.Loader
	Sessions *session.Registry
	Checkout *checkout.Service
	Verifier auth.Verifier
	Tokens   *auth.Tokens
	Board    *dashboard.Board
}

type Handler struct {
	svc      Services
	validate *validator.Validate
	logger   *slog.Logger
}

// Notice is the human-readable outcome of an action, shown to the user as a toast.
type Notice struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

func NewHandler(svc Services, logger *slog.Logger) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the storefront API routes.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Authenticate(h.svc.Tokens, h.logger))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Get("/featured", h.FeaturedProducts)
			r.Get("/price-range", h.PriceRange)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.FindProduct)
				r.Get("/related", h.RelatedProducts)
			})
		})
		r.Get("/categories", h.ListCategories)

		r.Group(func(r chi.Router) {
			r.Use(session.Middleware(h.svc.Sessions))
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.GetCart)
				r.Delete("/", h.ClearCart)
				r.Post("/items", h.AddCartItem)
				r.Put("/items/{productId}", h.UpdateCartItem)
				r.Delete("/items/{productId}", h.RemoveCartItem)
			})
			r.Route("/checkout", func(r chi.Router) {
				r.Get("/summary", h.CheckoutSummary)
				r.Post("/orders", h.PlaceOrder)
			})
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signin", h.SignIn)
			r.Post("/signup", h.SignUp)
			r.Post("/signout", h.SignOut)
			r.Get("/me", h.Me)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireRole(h.logger, auth.RoleAdmin))
			r.Get("/dashboard", h.AdminDashboard)
			r.Post("/applications/{id}/approve", h.ApproveApplication)
			r.Post("/applications/{id}/reject", h.RejectApplication)
			r.Post("/tickets/{id}/resolve", h.ResolveTicket)
			r.Post("/catalog/reload", h.ReloadCatalog)
		})

		r.Route("/seller", func(r chi.Router) {
			r.With(auth.RequireRole(h.logger, auth.RoleSeller, auth.RoleAdmin)).Get("/dashboard", h.SellerDashboard)
			r.With(auth.RequireRole(h.logger, auth.RoleUser, auth.RoleSeller, auth.RoleAdmin)).Post("/applications", h.ApplyAsSeller)
		})

		r.Post("/support/tickets", h.OpenTicket)
	})

	r.Get("/healthz", h.HealthCheck)
}

// HealthCheck reports that the service is up.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
