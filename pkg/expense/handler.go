package expense

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/finance-dashboard/dashboard/internal/rest"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetAll godoc
// @Summary List expenses
// @Description Get all expenses ordered by due day
// @Tags Expense
// @Produce json
// @Success 200 {array} ExpenseDTO
// @Failure 500 {string} string "Internal Server Error"
// @Router /api/finance/expenses [get]
func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing expenses")
	expenses, err := h.service.ListExpenses(r.Context())
	if err != nil {
		log.Errorf("failed to list expenses: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTOs(expenses))
}

// Register godoc
// @Summary Register an expense
// @Description Store a new expense. A paid expense is always stored with nothing remaining.
// @Tags Expense
// @Accept json
// @Produce json
// @Param expense body ExpenseRequest true "Expense"
// @Success 201 {object} ExpenseDTO
// @Failure 400 {object} rest.ValidationErrorResponse
// @Failure 500 {string} string "Internal Server Error"
// @Router /api/finance/expenses [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	log.Debug("Registering expense")
	var request ExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if fields := request.Validate(); fields != nil {
		rest.WriteValidationError(w, fields)
		return
	}
	expense, err := request.ToExpense()
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid expense", err.Error())
		return
	}

	created, err := h.service.RegisterExpense(r.Context(), expense)
	if err != nil {
		log.Errorf("failed to register expense: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, ToDTO(created))
}

// ReplaceAll godoc
// @Summary Replace all expenses
// @Description Overwrite the stored expenses with the given list
// @Tags Expense
// @Accept json
// @Param expenses body []ExpenseRequest true "Expenses"
// @Success 204 "No Content"
// @Failure 400 {object} rest.ValidationErrorResponse
// @Failure 500 {string} string "Internal Server Error"
// @Router /api/finance/expenses [put]
func (h *Handler) ReplaceAll(w http.ResponseWriter, r *http.Request) {
	log.Debug("Replacing expenses")
	var requests []ExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&requests); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if requests == nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", "an expense list is required")
		return
	}

	fields := make(map[string]string)
	for i, request := range requests {
		for field, message := range request.Validate() {
			fields[fmt.Sprintf("[%d].%s", i, field)] = message
		}
	}
	if len(fields) > 0 {
		rest.WriteValidationError(w, fields)
		return
	}

	expenses := make([]Expense, 0, len(requests))
	for _, request := range requests {
		expense, err := request.ToExpense()
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid expense", err.Error())
			return
		}
		expenses = append(expenses, expense)
	}

	if err := h.service.ReplaceExpenses(r.Context(), expenses); err != nil {
		log.Errorf("failed to replace expenses: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSummary godoc
// @Summary Expense summary
// @Description Get planned, paid and remaining totals together with the expenses
// @Tags Expense
// @Produce json
// @Success 200 {object} SummaryResponseDTO
// @Failure 500 {string} string "Internal Server Error"
// @Router /api/finance/summary [get]
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	log.Debug("Calculating expense summary")
	summary, expenses, err := h.service.CalculateSummary(r.Context())
	if err != nil {
		log.Errorf("failed to calculate summary: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, SummaryToDTO(summary, expenses))
}
