package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nikhilbhutani/legalrag/internal/api/handlers"
	"github.com/nikhilbhutani/legalrag/internal/api/middleware"
	"github.com/nikhilbhutani/legalrag/internal/config"
)

// Deps are the services behind the HTTP surface.
type Deps struct {
	Asker    handlers.Asker
	Searcher handlers.Searcher
	Files    handlers.FileService
	Users    handlers.UserService
	Chat     handlers.ChatService
	Checks   map[string]handlers.Pinger
}

type Router struct {
	mux  *chi.Mux
	cfg  config.ServerConfig
	deps Deps
}

func NewRouter(cfg config.ServerConfig, deps Deps) *Router {
	return &Router{
		mux:  chi.NewRouter(),
		cfg:  cfg,
		deps: deps,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	if rt.cfg.RateLimitRPS > 0 {
		rl := middleware.NewRateLimiter(rt.cfg.RateLimitRPS, rt.cfg.RateLimitBurst)
		r.Use(rl.Limit)
	}

	// Health endpoints
	health := handlers.NewHealthHandler(rt.deps.Checks)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	r.Route("/api/v1", func(r chi.Router) {
		retrievalH := handlers.NewRetrievalHandler(rt.deps.Asker, rt.deps.Searcher)
		r.Post("/retrieve", retrievalH.Retrieve)
		r.Post("/search", retrievalH.Search)

		fileH := handlers.NewFileHandler(rt.deps.Files)
		r.Post("/upload", fileH.Upload)
		r.Get("/files/{fileID}", fileH.Get)

		userH := handlers.NewUserHandler(rt.deps.Users)
		chatH := handlers.NewChatHandler(rt.deps.Chat)
		r.Post("/users", userH.Create)
		r.Route("/users/{authID}", func(r chi.Router) {
			r.Get("/", userH.Get)
			r.Patch("/", userH.Update)
			r.Post("/context", userH.AppendContext)
			r.Get("/chat", chatH.History)
			r.Get("/sessions", chatH.Sessions)
		})
		r.Post("/chat/messages", chatH.AddMessage)
	})

	return r
}
