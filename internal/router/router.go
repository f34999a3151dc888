package router

import (
	"log"
	"net/http"

	"github.com/beautypos/workstation/internal/catalog"
	"github.com/beautypos/workstation/internal/config"
	"github.com/beautypos/workstation/internal/handler"
	mw "github.com/beautypos/workstation/internal/middleware"
	"github.com/beautypos/workstation/internal/service"
	"github.com/beautypos/workstation/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// New creates a Chi router with all application routes wired up.
// Session routes require a token issued for the session in the path.
func New(cfg *config.Config, cat *catalog.Catalog, sessions *service.SessionService, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	catalogHandler := handler.NewCatalogHandler(cat)
	r.Route("/catalog", catalogHandler.RegisterRoutes)

	// WebSocket route (validates the session token from the query param)
	r.Get("/ws/sessions/{sid}/notifications", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, sessions, cfg.SessionSecret, w, r)
	})

	sessionHandler := handler.NewSessionHandler(sessions, cfg.SessionSecret)
	r.Route("/sessions", func(r chi.Router) {
		sessionHandler.RegisterRoutes(r)

		r.Route("/{sid}", func(r chi.Router) {
			r.Use(mw.RequireSession(cfg.SessionSecret))
			sessionHandler.RegisterSessionRoutes(r)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
