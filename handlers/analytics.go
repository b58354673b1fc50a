package handlers

import (
	"net/http"
	"strconv"
)

const defaultSummaryYears = 5

// GetCashFlow totals income and expense over a window
// @Summary      Cash flow
// @Description  Income, expense and net over [from, to]. Transfers are excluded. Defaults to the current month.
// @Tags         analytics
// @Produce      json
// @Param        from  query     string  false  "YYYY-MM-DD or RFC3339"
// @Param        to    query     string  false  "YYYY-MM-DD or RFC3339"
// @Success      200   {object}  Response{data=models.CashFlow}
// @Failure      400   {object}  Response{error=string}
// @Router       /analytics/cashflow [get]
// @Security     SessionToken
func (h *Handler) GetCashFlow(w http.ResponseWriter, r *http.Request) {
	rng, err := h.dateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	flow, err := h.engine.CashFlow(r.Context(), userID(r), rng)
	if err != nil {
		writeFailure(w, r, err, "report")
		return
	}
	writeJSON(w, http.StatusOK, flow)
}

// GetExpenseBreakdown groups expenses by category
// @Summary      Expense breakdown
// @Description  Expense totals per category over [from, to], largest first. Expenses without a category are grouped as Uncategorized.
// @Tags         analytics
// @Produce      json
// @Param        from  query     string  false  "YYYY-MM-DD or RFC3339"
// @Param        to    query     string  false  "YYYY-MM-DD or RFC3339"
// @Success      200   {object}  Response{data=[]models.CategoryTotal}
// @Failure      400   {object}  Response{error=string}
// @Router       /analytics/breakdown [get]
// @Security     SessionToken
func (h *Handler) GetExpenseBreakdown(w http.ResponseWriter, r *http.Request) {
	rng, err := h.dateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rows, err := h.engine.ExpenseBreakdown(r.Context(), userID(r), rng)
	if err != nil {
		writeFailure(w, r, err, "report")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(rows))
}

// GetMonthlySummary returns twelve monthly cash flows
// @Summary      Monthly summary
// @Description  Exactly twelve rows, January to December, tagged YYYY-MM. Defaults to the current year.
// @Tags         analytics
// @Produce      json
// @Param        year  query     int  false  "Calendar year"
// @Success      200   {object}  Response{data=[]models.PeriodSummary}
// @Failure      400   {object}  Response{error=string}
// @Router       /analytics/monthly [get]
// @Security     SessionToken
func (h *Handler) GetMonthlySummary(w http.ResponseWriter, r *http.Request) {
	year := h.today().Year()
	if s := r.URL.Query().Get("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil || y < 1 || y > 9999 {
			writeError(w, http.StatusBadRequest, "year must be between 1 and 9999")
			return
		}
		year = y
	}
	rows, err := h.engine.MonthlySummary(r.Context(), userID(r), year)
	if err != nil {
		writeFailure(w, r, err, "report")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// GetYearlySummary returns yearly cash flows up to the current year
// @Summary      Yearly summary
// @Description  years+1 rows for the current year and the given number of years before it, oldest first.
// @Tags         analytics
// @Produce      json
// @Param        years  query     int  false  "Years to look back (default 5)"
// @Success      200    {object}  Response{data=[]models.PeriodSummary}
// @Failure      400    {object}  Response{error=string}
// @Router       /analytics/yearly [get]
// @Security     SessionToken
func (h *Handler) GetYearlySummary(w http.ResponseWriter, r *http.Request) {
	n := defaultSummaryYears
	if s := r.URL.Query().Get("years"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v > 100 {
			writeError(w, http.StatusBadRequest, "years must be an integer between 0 and 100")
			return
		}
		n = v
	}
	rows, err := h.engine.YearlySummary(r.Context(), userID(r), n)
	if err != nil {
		writeFailure(w, r, err, "report")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// GetNetWorth sums every account balance
// @Summary      Net worth
// @Description  Sum of all account balances, archived included. Currencies are not converted; more than one entry in currencies means the total mixes them.
// @Tags         analytics
// @Produce      json
// @Success      200  {object}  Response{data=models.NetWorth}
// @Router       /analytics/networth [get]
// @Security     SessionToken
func (h *Handler) GetNetWorth(w http.ResponseWriter, r *http.Request) {
	nw, err := h.engine.NetWorth(r.Context(), userID(r))
	if err != nil {
		writeFailure(w, r, err, "report")
		return
	}
	writeJSON(w, http.StatusOK, nw)
}
