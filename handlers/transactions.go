package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/satheeshds/fintrack/events"
	"github.com/satheeshds/fintrack/models"
)

// ListTransactions lists the owner's transactions
// @Summary      List transactions
// @Description  Newest first. Date bounds are inclusive; a bare day as "to" covers the whole day.
// @Tags         transactions
// @Produce      json
// @Param        account_id   query     string  false  "Source or destination account"
// @Param        category_id  query     string  false  "Category"
// @Param        type         query     string  false  "INCOME, EXPENSE or TRANSFER"
// @Param        from         query     string  false  "YYYY-MM-DD or RFC3339"
// @Param        to           query     string  false  "YYYY-MM-DD or RFC3339"
// @Param        page         query     int     false  "Page, from 1"
// @Param        page_size    query     int     false  "Rows per page, at most 100"
// @Success      200          {object}  Response{data=[]models.Transaction}
// @Failure      400          {object}  Response{error=string}
// @Router       /transactions [get]
// @Security     SessionToken
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.TransactionFilter{
		UserID:     userID(r),
		AccountID:  q.Get("account_id"),
		CategoryID: q.Get("category_id"),
	}
	if tp := q.Get("type"); tp != "" {
		f.Type = models.TransactionType(strings.ToUpper(tp))
		if !f.Type.Valid() {
			writeError(w, http.StatusBadRequest, "type must be one of: INCOME, EXPENSE, TRANSFER")
			return
		}
	}
	if s := q.Get("from"); s != "" {
		from, err := h.parseBound(s, false)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		f.From = &from
	}
	if s := q.Get("to"); s != "" {
		to, err := h.parseBound(s, true)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		f.To = &to
	}
	var err error
	if f.Limit, f.Offset, err = pagination(r); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txns, err := h.store.ListTransactions(r.Context(), f)
	if err != nil {
		writeFailure(w, r, err, "transaction")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(txns))
}

// GetTransaction retrieves a single transaction
// @Summary      Get transaction
// @Tags         transactions
// @Produce      json
// @Param        id   path      string  true  "Transaction ID"
// @Success      200  {object}  Response{data=models.Transaction}
// @Failure      404  {object}  Response{error=string}
// @Router       /transactions/{id} [get]
// @Security     SessionToken
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := h.store.GetTransaction(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, r, err, "transaction")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// CreateTransaction records income, an expense or a transfer
// @Summary      Create transaction
// @Description  Transfers need to_account_id and no category. Archived accounts are rejected with 409.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        transaction  body      models.TransactionInput  true  "Transaction contents"
// @Success      201          {object}  Response{data=models.Transaction}
// @Failure      400          {object}  Response{error=string}
// @Failure      404          {object}  Response{error=string}
// @Failure      409          {object}  Response{error=string}
// @Router       /transactions [post]
// @Security     SessionToken
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var input models.TransactionInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.Type = models.TransactionType(strings.ToUpper(string(input.Type)))
	if input.CategoryID != nil && *input.CategoryID == "" {
		input.CategoryID = nil
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	t, err := h.engine.RecordTransaction(r.Context(), userID(r), input)
	if err != nil {
		writeFailure(w, r, err, "account or category")
		return
	}
	kind := events.TransactionCreated
	if t.Type == models.TypeTransfer {
		kind = events.TransferCreated
	}
	h.publish(r.Context(), events.New(kind, t.UserID, t.ID, t.AccountIDs()...))
	writeJSON(w, http.StatusCreated, t)
}

// CreateTransfer moves money between two of the owner's accounts
// @Summary      Transfer
// @Description  Records one TRANSFER transaction: an outflow for the source and an inflow for the destination. Income and expense totals are unaffected.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        transfer  body      models.TransferInput  true  "Transfer contents"
// @Success      201       {object}  Response{data=models.Transaction}
// @Failure      400       {object}  Response{error=string}
// @Failure      404       {object}  Response{error=string}
// @Failure      409       {object}  Response{error=string}
// @Router       /transfers [post]
// @Security     SessionToken
func (h *Handler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	var input models.TransferInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	t, err := h.engine.Transfer(r.Context(), userID(r), input)
	if err != nil {
		writeFailure(w, r, err, "account")
		return
	}
	h.publish(r.Context(), events.New(events.TransferCreated, t.UserID, t.ID, t.AccountIDs()...))
	writeJSON(w, http.StatusCreated, t)
}

// UpdateTransaction updates the mutable fields of a transaction
// @Summary      Update transaction
// @Description  Amount, category, note, date and receipt metadata can change. An empty category_id clears the category.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id           path      string                   true  "Transaction ID"
// @Param        transaction  body      models.TransactionPatch  true  "Fields to change"
// @Success      200          {object}  Response{data=models.Transaction}
// @Failure      400          {object}  Response{error=string}
// @Failure      404          {object}  Response{error=string}
// @Router       /transactions/{id} [patch]
// @Security     SessionToken
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var patch models.TransactionPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if msg := patch.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	t, err := h.store.GetTransaction(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, r, err, "transaction")
		return
	}

	if patch.Amount != nil {
		t.Amount = *patch.Amount
	}
	if patch.CategoryID != nil {
		if *patch.CategoryID == "" {
			t.CategoryID = nil
		} else if t.Type == models.TypeTransfer {
			writeError(w, http.StatusBadRequest, "transfers cannot have a category")
			return
		} else {
			id := *patch.CategoryID
			t.CategoryID = &id
		}
	}
	if patch.Note != nil {
		note := strings.TrimSpace(*patch.Note)
		t.Note = &note
		if note == "" {
			t.Note = nil
		}
	}
	if patch.Date != nil {
		if t.Date, err = models.ParseDate(*patch.Date, h.engine.Location()); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if patch.ReceiptMetadata != nil {
		t.ReceiptMetadata = patch.ReceiptMetadata
	}
	t.UpdatedAt = h.now().UTC()

	if t, err = h.store.UpdateTransaction(r.Context(), t); err != nil {
		writeFailure(w, r, err, "category")
		return
	}
	h.publish(r.Context(), events.New(events.TransactionUpdated, t.UserID, t.ID, t.AccountIDs()...))
	writeJSON(w, http.StatusOK, t)
}

// DeleteTransaction deletes a transaction
// @Summary      Delete transaction
// @Description  Balances of every account it touched change immediately.
// @Tags         transactions
// @Produce      json
// @Param        id   path      string  true  "Transaction ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /transactions/{id} [delete]
// @Security     SessionToken
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := h.store.DeleteTransaction(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, r, err, "transaction")
		return
	}
	h.publish(r.Context(), events.New(events.TransactionDeleted, t.UserID, t.ID, t.AccountIDs()...))
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
