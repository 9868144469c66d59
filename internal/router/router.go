package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"go-product-catalog/internal/config"
	"go-product-catalog/internal/handler"
	"go-product-catalog/internal/middleware"
)

type Handlers struct {
	User    *handler.UserHandler
	Product *handler.ProductHandler
}

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	handlers Handlers,
	healthCheck func(context.Context) error,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(chimiddleware.StripSlashes)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if healthCheck != nil {
			if err := healthCheck(req.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("database unavailable"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/users", func(users chi.Router) {
		users.Post("/sign_up", handlers.User.SignUp)
		users.Post("/sign_in", handlers.User.SignIn)
		users.Post("/refresh", handlers.User.Refresh)
		users.Post("/logout", handlers.User.Logout)
		users.With(authMiddleware.RequireAuth).Get("/", handlers.User.Me)
		users.With(authMiddleware.RequireAuth).Patch("/", handlers.User.UpdateProfile)
	})

	r.Route("/products", func(products chi.Router) {
		products.Get("/", handlers.Product.List)
		products.Post("/", handlers.Product.Create)
		products.Get("/{id}", handlers.Product.Retrieve)
		products.Patch("/{id}", handlers.Product.Update)
		products.With(authMiddleware.RequireAuth).Delete("/{id}", handlers.Product.Delete)
	})

	return r
}
