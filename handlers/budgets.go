package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/satheeshds/fintrack/models"
)

// ListBudgets lists budgets with their utilization
// @Summary      List budgets
// @Description  Each budget carries spent, utilization (spent / limit) and is_over.
// @Tags         budgets
// @Produce      json
// @Param        month  query     string  false  "YYYY-MM"
// @Success      200    {object}  Response{data=[]models.BudgetStatus}
// @Failure      400    {object}  Response{error=string}
// @Router       /budgets [get]
// @Security     SessionToken
func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month != "" {
		if _, err := models.ParseMonth(month, nil); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	budgets, err := h.store.ListBudgets(r.Context(), userID(r), month)
	if err != nil {
		writeFailure(w, r, err, "budget")
		return
	}
	statuses, err := h.engine.BudgetStatuses(r.Context(), budgets)
	if err != nil {
		writeFailure(w, r, err, "budget")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(statuses))
}

// GetBudget retrieves a budget with its utilization
// @Summary      Get budget
// @Tags         budgets
// @Produce      json
// @Param        id   path      string  true  "Budget ID"
// @Success      200  {object}  Response{data=models.BudgetStatus}
// @Failure      404  {object}  Response{error=string}
// @Router       /budgets/{id} [get]
// @Security     SessionToken
func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	b, err := h.store.GetBudget(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, r, err, "budget")
		return
	}
	h.writeBudgetStatus(w, r, http.StatusOK, b)
}

// CreateBudget sets a monthly limit for an expense category
// @Summary      Create budget
// @Tags         budgets
// @Accept       json
// @Produce      json
// @Param        budget  body      models.BudgetInput  true  "Budget contents"
// @Success      201     {object}  Response{data=models.BudgetStatus}
// @Failure      400     {object}  Response{error=string}
// @Failure      404     {object}  Response{error=string}
// @Failure      409     {object}  Response{error=string}
// @Router       /budgets [post]
// @Security     SessionToken
func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	var input models.BudgetInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	now := h.now().UTC()
	b, err := h.store.CreateBudget(r.Context(), models.Budget{
		ID:         uuid.NewString(),
		UserID:     userID(r),
		CategoryID: input.CategoryID,
		Month:      input.Month,
		Amount:     input.Amount,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		writeFailure(w, r, err, "budget")
		return
	}
	h.writeBudgetStatus(w, r, http.StatusCreated, b)
}

// UpdateBudget changes a budget's limit
// @Summary      Update budget
// @Tags         budgets
// @Accept       json
// @Produce      json
// @Param        id      path      string              true  "Budget ID"
// @Param        budget  body      models.BudgetPatch  true  "New limit"
// @Success      200     {object}  Response{data=models.BudgetStatus}
// @Failure      400     {object}  Response{error=string}
// @Failure      404     {object}  Response{error=string}
// @Router       /budgets/{id} [patch]
// @Security     SessionToken
func (h *Handler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	var patch models.BudgetPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if msg := patch.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	b, err := h.store.GetBudget(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, r, err, "budget")
		return
	}
	b.Amount = *patch.Amount
	b.UpdatedAt = h.now().UTC()
	if b, err = h.store.UpdateBudget(r.Context(), b); err != nil {
		writeFailure(w, r, err, "budget")
		return
	}
	h.writeBudgetStatus(w, r, http.StatusOK, b)
}

// DeleteBudget deletes a budget
// @Summary      Delete budget
// @Tags         budgets
// @Produce      json
// @Param        id   path      string  true  "Budget ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /budgets/{id} [delete]
// @Security     SessionToken
func (h *Handler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteBudget(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, r, err, "budget")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

func (h *Handler) writeBudgetStatus(w http.ResponseWriter, r *http.Request, status int, b models.Budget) {
	s, err := h.engine.BudgetStatus(r.Context(), b)
	if err != nil {
		writeFailure(w, r, err, "budget")
		return
	}
	writeJSON(w, status, s)
}
