package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server
func NewServer(port string, handler *Handler) *Server {
	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Games
	api.HandleFunc("/games", handler.GetGamesByDate).Methods("GET")
	api.HandleFunc("/games/{gameID}/boxscore", handler.GetBoxScore).Methods("GET")

	// Standings
	api.HandleFunc("/standings", handler.GetStandings).Methods("GET")

	// Teams
	api.HandleFunc("/teams", handler.GetTeams).Methods("GET")
	api.HandleFunc("/teams/{teamID}/roster", handler.GetRoster).Methods("GET")

	// Players
	api.HandleFunc("/players/stats", handler.GetPlayerStats).Methods("GET")
	api.HandleFunc("/players/{playerID}", handler.GetPlayer).Methods("GET")
	api.HandleFunc("/players/{playerID}/gamelog", handler.GetGameLog).Methods("GET")

	// Lineups
	api.HandleFunc("/lineups/{gameID}", handler.GetLineups).Methods("GET")

	// Sync trigger
	api.HandleFunc("/sync/stats", handler.TriggerSync).Methods("POST")

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Router exposes the configured route table, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.server.Handler
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
