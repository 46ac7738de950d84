// Package http exposes the expense tracker as a JSON REST API.
package http

import (
	"net/http"

	"expensetracker/internal/services"
	"expensetracker/internal/token"
)

const apiVersion = "3.0"

type Server struct {
	http.Server
	auth     *services.AuthService
	expenses *services.ExpenseService
	tokens   *token.Service
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, auth *services.AuthService, expenses *services.ExpenseService, tokens *token.Service) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr: addr,
		},
		auth:     auth,
		expenses: expenses,
		tokens:   tokens,
	}

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	// Authentication endpoints (open)
	mux.HandleFunc("POST /signup", s.handleSignup)
	mux.HandleFunc("POST /login", s.handleLogin)

	// Protected expense endpoints
	mux.HandleFunc("GET /expenses/{user_id}/{date}", s.requireAuth(s.handleGetExpenses))
	mux.HandleFunc("POST /expenses/{date}", s.requireAuth(s.handleReplaceExpenses))
	mux.HandleFunc("GET /analytics_by_category/{user_id}", s.requireAuth(s.handleSummaryByCategory))
	mux.HandleFunc("GET /analytics_by_months/{user_id}", s.requireAuth(s.handleSummaryByMonth))

	s.Handler = s.withRequestLog(mux)

	return s
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Expense Tracker API is running",
		"version": apiVersion,
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
