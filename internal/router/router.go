// Package router sets up all HTTP routes and middleware chains for the
// blogdesk API. Reads are public, writes sit behind the bearer-token
// guard, and the external-service proxies are rate limited per client.
package router

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"blogdesk/internal/handlers"
	"blogdesk/internal/middleware"
)

// Handlers bundles the handler groups mounted by New.
type Handlers struct {
	Auth      *handlers.Auth
	Content   *handlers.Content
	Dashboard *handlers.Dashboard
	Proxy     *handlers.Proxy
}

// Options configures the cross-cutting parts of the router.
type Options struct {
	Tokens  middleware.TokenParser
	Limiter *middleware.RateLimiter // nil disables proxy rate limiting
	// UploadDir is served at /static/uploads/ when non-empty.
	UploadDir string
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(h Handlers, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecureHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	requireToken := middleware.RequireToken(opts.Tokens)

	r.Get("/health", healthHandler)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
		r.With(requireToken).Get("/me", h.Auth.Me)
	})

	r.Route("/api", func(r chi.Router) {
		// Public reads
		r.Get("/categories", h.Content.ListCategories)
		r.Get("/categories/{id}", h.Content.GetCategory)
		r.Get("/subcategories", h.Content.ListSubCategories)
		r.Get("/subcategories/{id}", h.Content.GetSubCategory)
		r.Get("/articles", h.Content.ListArticles)
		r.Get("/articles/latest", h.Content.LatestArticles)
		r.Get("/articles/{key}", h.Content.GetArticle)
		r.Get("/articles/{key}/qr", h.Content.ArticleQR)

		// Token-protected writes
		r.Group(func(r chi.Router) {
			r.Use(requireToken)

			r.Post("/categories", h.Content.CreateCategory)
			r.Put("/categories/{id}", h.Content.UpdateCategory)
			r.Delete("/categories/{id}", h.Content.DeleteCategory)

			r.Post("/subcategories", h.Content.CreateSubCategory)
			r.Put("/subcategories/{id}", h.Content.UpdateSubCategory)
			r.Delete("/subcategories/{id}", h.Content.DeleteSubCategory)

			r.Post("/articles", h.Content.CreateArticle)
			r.Put("/articles/{key}", h.Content.UpdateArticle)
			r.Delete("/articles/{key}", h.Content.DeleteArticle)

			r.Get("/dashboard-stats", h.Dashboard.Stats)
		})

		// External-service proxies
		r.Group(func(r chi.Router) {
			if opts.Limiter != nil {
				r.Use(opts.Limiter.Middleware)
			}
			r.Post("/gemini", h.Proxy.Gemini)
			r.Post("/ocr", h.Proxy.OCR)
			r.Post("/ocr/export", h.Proxy.OCRExport)
			r.Post("/ocr/bulk", h.Proxy.OCRBulk)
			r.Post("/tts", h.Proxy.TTS)
		})
	})

	if opts.UploadDir != "" {
		r.Handle("/static/uploads/*", http.StripPrefix("/static/uploads/", uploadsHandler(opts.UploadDir)))
	}

	return r
}

// uploadsHandler serves stored thumbnails without directory listings.
func uploadsHandler(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
