package app

import (
	"net/http"

	"github.com/finance-dashboard/dashboard/internal/config"
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods("GET")

	api := r.PathPrefix("/api/finance").Subrouter()
	setupApiMiddleware(api)

	// Expenses
	api.HandleFunc("/expenses", deps.ExpenseHandler.GetAll).Methods("GET", "OPTIONS")
	api.HandleFunc("/expenses", deps.ExpenseHandler.Register).Methods("POST")
	api.HandleFunc("/expenses", deps.ExpenseHandler.ReplaceAll).Methods("PUT")

	// Summary
	api.HandleFunc("/summary", deps.ExpenseHandler.GetSummary).Methods("GET", "OPTIONS")
}
