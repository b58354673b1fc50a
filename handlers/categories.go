package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/satheeshds/fintrack/db"
	"github.com/satheeshds/fintrack/models"
)

// ListCategories lists the owner's categories
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Param        type              query     string  false  "INCOME or EXPENSE"
// @Param        include_archived  query     bool    false  "Include archived categories"
// @Success      200               {object}  Response{data=[]models.Category}
// @Router       /categories [get]
// @Security     SessionToken
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := db.CategoryFilter{Type: models.TransactionType(strings.ToUpper(q.Get("type")))}
	if f.Type != "" && f.Type != models.TypeIncome && f.Type != models.TypeExpense {
		writeError(w, http.StatusBadRequest, "type must be one of: INCOME, EXPENSE")
		return
	}
	if s := q.Get("include_archived"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "include_archived must be a boolean")
			return
		}
		f.IncludeArchived = b
	}

	cats, err := h.store.ListCategories(r.Context(), userID(r), f)
	if err != nil {
		writeFailure(w, r, err, "category")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(cats))
}

// CreateCategory creates a category
// @Summary      Create category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        category  body      models.CategoryInput  true  "Category contents"
// @Success      201       {object}  Response{data=models.Category}
// @Failure      400       {object}  Response{error=string}
// @Failure      409       {object}  Response{error=string}
// @Router       /categories [post]
// @Security     SessionToken
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input models.CategoryInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.Type = models.TransactionType(strings.ToUpper(string(input.Type)))
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	now := h.now().UTC()
	c, err := h.store.CreateCategory(r.Context(), models.Category{
		ID:        uuid.NewString(),
		UserID:    userID(r),
		Name:      input.Name,
		Type:      input.Type,
		Icon:      input.Icon,
		ParentID:  input.ParentID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		writeFailure(w, r, err, "category")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateCategory renames or archives a category
// @Summary      Update category
// @Description  Categories are never deleted; set is_archived to hide one.
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        id        path      string                true  "Category ID"
// @Param        category  body      models.CategoryPatch  true  "Fields to change"
// @Success      200       {object}  Response{data=models.Category}
// @Failure      400       {object}  Response{error=string}
// @Failure      404       {object}  Response{error=string}
// @Router       /categories/{id} [patch]
// @Security     SessionToken
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var patch models.CategoryPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if msg := patch.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	c, err := h.store.GetCategory(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, r, err, "category")
		return
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Icon != nil {
		c.Icon = patch.Icon
	}
	if patch.IsArchived != nil {
		c.IsArchived = *patch.IsArchived
	}
	c.UpdatedAt = h.now().UTC()

	if c, err = h.store.UpdateCategory(r.Context(), c); err != nil {
		writeFailure(w, r, err, "category")
		return
	}
	writeJSON(w, http.StatusOK, c)
}
