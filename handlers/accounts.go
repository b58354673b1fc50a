package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/satheeshds/fintrack/events"
	"github.com/satheeshds/fintrack/models"
)

// ListAccounts lists the owner's accounts
// @Summary      List accounts
// @Description  Get every account of the current user, archived ones included, with derived balances.
// @Tags         accounts
// @Produce      json
// @Param        status  query     string  false  "Only ACTIVE or ARCHIVED accounts"
// @Success      200     {object}  Response{data=[]models.Account}
// @Router       /accounts [get]
// @Security     SessionToken
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.engine.AccountsWithBalances(r.Context(), userID(r))
	if err != nil {
		writeFailure(w, r, err, "account")
		return
	}

	if status := models.AccountStatus(strings.ToUpper(r.URL.Query().Get("status"))); status != "" {
		filtered := accounts[:0]
		for _, a := range accounts {
			if a.Status == status {
				filtered = append(filtered, a)
			}
		}
		accounts = filtered
	}
	writeJSON(w, http.StatusOK, nonNil(accounts))
}

// GetAccount retrieves a single account
// @Summary      Get account
// @Description  Get one account with its derived balance.
// @Tags         accounts
// @Produce      json
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  Response{data=models.Account}
// @Failure      404  {object}  Response{error=string}
// @Router       /accounts/{id} [get]
// @Security     SessionToken
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	a, err := h.store.GetAccount(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, r, err, "account")
		return
	}
	b, err := h.engine.AccountBalance(r.Context(), a.UserID, a.ID)
	if err != nil {
		writeFailure(w, r, err, "account")
		return
	}
	a.Balance = b.Balance
	writeJSON(w, http.StatusOK, a)
}

// CreateAccount creates a new account
// @Summary      Create account
// @Description  Create a cash wallet, bank account, e-wallet, credit card, loan or investment account.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        account  body      models.AccountInput  true  "Account contents"
// @Success      201      {object}  Response{data=models.Account}
// @Failure      400      {object}  Response{error=string}
// @Router       /accounts [post]
// @Security     SessionToken
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var input models.AccountInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	currency := strings.ToUpper(input.Currency)
	if currency == "" {
		currency = h.defaultCurrency
	}
	now := h.now().UTC()
	a, err := h.store.CreateAccount(r.Context(), models.Account{
		ID:            uuid.NewString(),
		UserID:        userID(r),
		Name:          input.Name,
		Type:          input.Type,
		Status:        models.AccountActive,
		InitialAmount: input.InitialAmount,
		Currency:      currency,
		Color:         input.Color,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		writeFailure(w, r, err, "account")
		return
	}
	a.Balance = a.InitialAmount
	writeJSON(w, http.StatusCreated, a)
}

// UpdateAccount updates an account
// @Summary      Update account
// @Description  Change name, type, initial amount, currency or color. Omitted fields are kept.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Account ID"
// @Param        account  body      models.AccountPatch  true  "Fields to change"
// @Success      200      {object}  Response{data=models.Account}
// @Failure      400      {object}  Response{error=string}
// @Failure      404      {object}  Response{error=string}
// @Router       /accounts/{id} [patch]
// @Security     SessionToken
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	var patch models.AccountPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if msg := patch.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	a, err := h.store.GetAccount(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, r, err, "account")
		return
	}
	patch.Apply(&a)
	a.UpdatedAt = h.now().UTC()
	if a, err = h.store.UpdateAccount(r.Context(), a); err != nil {
		writeFailure(w, r, err, "account")
		return
	}
	b, err := h.engine.AccountBalance(r.Context(), a.UserID, a.ID)
	if err != nil {
		writeFailure(w, r, err, "account")
		return
	}
	a.Balance = b.Balance
	writeJSON(w, http.StatusOK, a)
}

// ArchiveAccount soft-deletes an account
// @Summary      Archive account
// @Description  Archive an account. Its history stays and still counts toward net worth, but it cannot take new transactions.
// @Tags         accounts
// @Produce      json
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  Response{data=models.Account}
// @Failure      404  {object}  Response{error=string}
// @Router       /accounts/{id}/archive [post]
// @Security     SessionToken
func (h *Handler) ArchiveAccount(w http.ResponseWriter, r *http.Request) {
	a, err := h.store.ArchiveAccount(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, r, err, "account")
		return
	}
	h.publish(r.Context(), events.New(events.AccountArchived, a.UserID, a.ID, a.ID))
	writeJSON(w, http.StatusOK, a)
}

// DeleteAccount deletes an unused account
// @Summary      Delete account
// @Description  Permanently delete an account that no transaction touches. Accounts with history must be archived.
// @Tags         accounts
// @Produce      json
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Failure      409  {object}  Response{error=string}
// @Router       /accounts/{id} [delete]
// @Security     SessionToken
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteAccount(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, r, err, "account")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

// GetAccountBalance returns the derived balance
// @Summary      Account balance
// @Description  Initial amount plus inflows minus outflows, in the account currency.
// @Tags         accounts
// @Produce      json
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  Response{data=models.Balance}
// @Failure      404  {object}  Response{error=string}
// @Router       /accounts/{id}/balance [get]
// @Security     SessionToken
func (h *Handler) GetAccountBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.store.GetAccount(r.Context(), userID(r), id); err != nil {
		writeFailure(w, r, err, "account")
		return
	}
	b, err := h.engine.AccountBalance(r.Context(), userID(r), id)
	if err != nil {
		writeFailure(w, r, err, "account")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// ListAccountTransactions lists one account's transactions
// @Summary      Account transactions
// @Description  Transactions where the account is the source or the transfer destination, newest first.
// @Tags         accounts
// @Produce      json
// @Param        id         path      string  true   "Account ID"
// @Param        page       query     int     false  "Page, from 1"
// @Param        page_size  query     int     false  "Rows per page, at most 100"
// @Success      200        {object}  Response{data=[]models.Transaction}
// @Failure      404        {object}  Response{error=string}
// @Router       /accounts/{id}/transactions [get]
// @Security     SessionToken
func (h *Handler) ListAccountTransactions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.store.GetAccount(r.Context(), userID(r), id); err != nil {
		writeFailure(w, r, err, "account")
		return
	}
	limit, offset, err := pagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	txns, err := h.store.ListTransactions(r.Context(), models.TransactionFilter{
		UserID: userID(r), AccountID: id, Limit: limit, Offset: offset,
	})
	if err != nil {
		writeFailure(w, r, err, "transaction")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(txns))
}
