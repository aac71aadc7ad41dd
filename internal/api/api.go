// Package api exposes a small web API over the matchmaking state: Discord
// OAuth login, public leaderboards and queue status, and the logged-in
// player's own record.
package api

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"golang.org/x/oauth2"

	"github.com/matchbot-dev/matchbot/internal/config"
	"github.com/matchbot-dev/matchbot/internal/db"
	"github.com/matchbot-dev/matchbot/internal/matchmaking"
	"github.com/matchbot-dev/matchbot/internal/registry"
)

type API struct {
	router      *mux.Router
	engine      *matchmaking.Engine
	registry    *registry.Registry
	db          *db.DB
	config      *config.Config
	oauthConfig *oauth2.Config
	jwtSecret   []byte
}

func New(cfg *config.Config, engine *matchmaking.Engine, reg *registry.Registry, database *db.DB) *API {
	api := &API{
		router:    mux.NewRouter(),
		engine:    engine,
		registry:  reg,
		db:        database,
		config:    cfg,
		jwtSecret: []byte(cfg.JWTSecret),
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			RedirectURL:  cfg.DiscordRedirectURI,
			Scopes:       []string{"identify"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://discord.com/api/oauth2/authorize",
				TokenURL: "https://discord.com/api/oauth2/token",
			},
		},
	}

	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	// Auth endpoints
	a.router.HandleFunc("/api/auth/login", a.handleLogin).Methods("GET")
	a.router.HandleFunc("/api/auth/callback", a.handleCallback).Methods("GET")
	a.router.HandleFunc("/api/auth/logout", a.handleLogout).Methods("POST")

	// Public endpoints
	a.router.HandleFunc("/api/public/queues", a.handleListQueues).Methods("GET")
	a.router.HandleFunc("/api/public/queues/{queue_id}/status", a.handleQueueStatus).Methods("GET")
	a.router.HandleFunc("/api/public/queues/{queue_id}/leaderboard", a.handleLeaderboard).Methods("GET")
	a.router.HandleFunc("/api/public/queues/{queue_id}/history", a.handleHistory).Methods("GET")

	// Protected endpoints
	protected := a.router.PathPrefix("/api").Subrouter()
	protected.Use(a.authMiddleware)

	protected.HandleFunc("/queues/{queue_id}/me", a.handleOwnStats).Methods("GET")
}

func (a *API) Start() error {
	// When AllowedOrigins is "*", AllowCredentials must stay false.
	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}

	handler := cors.New(corsOptions).Handler(a.router)

	log.Printf("API server listening on http://%s", a.config.WebBind)
	return http.ListenAndServe(a.config.WebBind, handler)
}
