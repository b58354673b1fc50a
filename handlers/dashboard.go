package handlers

import (
	"net/http"
)

// GetDashboard retrieves the overview figures
// @Summary      Get dashboard
// @Description  Total balance, all-time income, expense and net, accounts with balances and the 15 most recent transactions.
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  Response{data=models.Dashboard}
// @Router       /dashboard [get]
// @Security     SessionToken
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.engine.Dashboard(r.Context(), userID(r), recentLimit)
	if err != nil {
		writeFailure(w, r, err, "dashboard")
		return
	}
	d.Accounts = nonNil(d.Accounts)
	d.RecentTransactions = nonNil(d.RecentTransactions)
	writeJSON(w, http.StatusOK, d)
}
