package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/satheeshds/fintrack/models"
)

// ListGoals lists the owner's savings goals
// @Summary      List goals
// @Tags         goals
// @Produce      json
// @Success      200  {object}  Response{data=[]models.Goal}
// @Router       /goals [get]
// @Security     SessionToken
func (h *Handler) ListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.store.ListGoals(r.Context(), userID(r))
	if err != nil {
		writeFailure(w, r, err, "goal")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(goals))
}

// GetGoal retrieves a goal
// @Summary      Get goal
// @Tags         goals
// @Produce      json
// @Param        id   path      string  true  "Goal ID"
// @Success      200  {object}  Response{data=models.Goal}
// @Failure      404  {object}  Response{error=string}
// @Router       /goals/{id} [get]
// @Security     SessionToken
func (h *Handler) GetGoal(w http.ResponseWriter, r *http.Request) {
	g, err := h.store.GetGoal(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, r, err, "goal")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// CreateGoal creates a savings goal
// @Summary      Create goal
// @Description  A linked account lets the current amount be synced from its balance.
// @Tags         goals
// @Accept       json
// @Produce      json
// @Param        goal  body      models.GoalInput  true  "Goal contents"
// @Success      201   {object}  Response{data=models.Goal}
// @Failure      400   {object}  Response{error=string}
// @Failure      404   {object}  Response{error=string}
// @Router       /goals [post]
// @Security     SessionToken
func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var input models.GoalInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	now := h.now().UTC()
	g := models.Goal{
		ID:            uuid.NewString(),
		UserID:        userID(r),
		Name:          input.Name,
		TargetAmount:  input.TargetAmount,
		CurrentAmount: input.CurrentAmount,
		Currency:      strings.ToUpper(input.Currency),
		Status:        models.GoalActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if g.Currency == "" {
		g.Currency = h.defaultCurrency
	}
	if input.Deadline != nil {
		d, err := models.ParseDate(*input.Deadline, h.engine.Location())
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		g.Deadline = &d
	}
	if input.LinkedAccountID != nil && *input.LinkedAccountID != "" {
		g.LinkedAccountID = input.LinkedAccountID
	}

	g, err := h.store.CreateGoal(r.Context(), g)
	if err != nil {
		writeFailure(w, r, err, "linked account")
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

// UpdateGoal updates a goal
// @Summary      Update goal
// @Description  Setting status to COMPLETED fills the goal. An empty linked_account_id or deadline clears it.
// @Tags         goals
// @Accept       json
// @Produce      json
// @Param        id    path      string            true  "Goal ID"
// @Param        goal  body      models.GoalPatch  true  "Fields to change"
// @Success      200   {object}  Response{data=models.Goal}
// @Failure      400   {object}  Response{error=string}
// @Failure      404   {object}  Response{error=string}
// @Router       /goals/{id} [patch]
// @Security     SessionToken
func (h *Handler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	var patch models.GoalPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if patch.Status != nil {
		s := models.GoalStatus(strings.ToUpper(string(*patch.Status)))
		patch.Status = &s
	}
	if msg := patch.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	g, err := h.store.GetGoal(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, r, err, "goal")
		return
	}
	patch.Apply(&g, h.engine.Location())
	g.UpdatedAt = h.now().UTC()

	if g, err = h.store.UpdateGoal(r.Context(), g); err != nil {
		writeFailure(w, r, err, "goal or linked account")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// DeleteGoal deletes a goal
// @Summary      Delete goal
// @Tags         goals
// @Produce      json
// @Param        id   path      string  true  "Goal ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /goals/{id} [delete]
// @Security     SessionToken
func (h *Handler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteGoal(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, r, err, "goal")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

// SyncGoal copies the linked account balance into the goal
// @Summary      Sync goal
// @Description  Sets current_amount to the linked account's balance, clamped between 0 and the target. Goals without a linked account are returned unchanged.
// @Tags         goals
// @Produce      json
// @Param        id   path      string  true  "Goal ID"
// @Success      200  {object}  Response{data=models.Goal}
// @Failure      404  {object}  Response{error=string}
// @Router       /goals/{id}/sync [post]
// @Security     SessionToken
func (h *Handler) SyncGoal(w http.ResponseWriter, r *http.Request) {
	g, err := h.engine.SyncGoal(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, r, err, "goal")
		return
	}
	writeJSON(w, http.StatusOK, g)
}
