package handler

import (
	"log/slog"
	"net/http"
	"sort"
	"time"

	"finance-ledger/internal/middleware"
	"finance-ledger/internal/store"
	"finance-ledger/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	defaultSummaryDays = 30
	topCategories      = 3
)

// SummaryHandler serves /summary.
type SummaryHandler struct {
	Store *store.Store
	Log   *slog.Logger
	Now   func() time.Time
}

func NewSummaryHandler(st *store.Store, log *slog.Logger) *SummaryHandler {
	return &SummaryHandler{Store: st, Log: log, Now: time.Now}
}

// SummaryQuery selects the period; from and to are inclusive days.
type SummaryQuery struct {
	From      string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To        string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	AccountID string `form:"accountId" binding:"omitempty,max=64"`
}

type categoryTotal struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

type dayTotal struct {
	Date     string `json:"date"`
	Income   int64  `json:"income"`
	Expenses int64  `json:"expenses"`
}

type summaryResp struct {
	RemainingAmount int64           `json:"remainingAmount"`
	RemainingChange float64         `json:"remainingChange"`
	IncomeAmount    int64           `json:"incomeAmount"`
	IncomeChange    float64         `json:"incomeChange"`
	ExpensesAmount  int64           `json:"expensesAmount"`
	ExpensesChange  float64         `json:"expensesChange"`
	Categories      []categoryTotal `json:"categories"`
	Days            []dayTotal      `json:"days"`
}

// period is a span of whole UTC days, both ends inclusive.
type period struct {
	From time.Time
	To   time.Time
}

func (p period) days() int {
	return int(p.To.Sub(p.From).Hours()/24) + 1
}

// previous is the period of the same length ending the day before p starts.
func (p period) previous() period {
	n := p.days()
	return period{From: p.From.AddDate(0, 0, -n), To: p.To.AddDate(0, 0, -n)}
}

func (p period) filter(accountID string) store.TransactionFilter {
	return store.TransactionFilter{From: p.From, To: p.To.AddDate(0, 0, 1), AccountID: accountID}
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// resolvePeriod applies the defaults: the last 30 days up to today.
func resolvePeriod(q *SummaryQuery, now time.Time) period {
	to := truncateDay(now)
	if q.To != "" {
		if t, err := time.Parse(time.DateOnly, q.To); err == nil {
			to = t
		}
	}
	from := to.AddDate(0, 0, -defaultSummaryDays)
	if q.From != "" {
		if t, err := time.Parse(time.DateOnly, q.From); err == nil {
			from = t
		}
	}
	if from.After(to) {
		from, to = to, from
	}
	return period{From: from, To: to}
}

// totals sums positive amounts as income and negative amounts as expenses.
func totals(rows []store.TransactionView) (income, expenses int64) {
	for _, r := range rows {
		if r.Amount >= 0 {
			income += r.Amount
		} else {
			expenses += r.Amount
		}
	}
	return income, expenses
}

// percentChange is the change from previous to current in percent. A zero
// previous value yields 0 when nothing changed and 100 otherwise.
func percentChange(current, previous int64) float64 {
	if previous == 0 {
		if current == previous {
			return 0
		}
		return 100
	}
	return float64(current-previous) / float64(previous) * 100
}

// categoryTotals returns absolute expense totals per category, the largest
// three first and everything else folded into "Other". Uncategorized rows are skipped.
func categoryTotals(rows []store.TransactionView) []categoryTotal {
	byName := make(map[string]int64)
	for _, r := range rows {
		if r.Amount >= 0 || r.Category == nil {
			continue
		}
		byName[*r.Category] += -r.Amount
	}

	all := make([]categoryTotal, 0, len(byName))
	for name, v := range byName {
		all = append(all, categoryTotal{Name: name, Value: v})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Value != all[j].Value {
			return all[i].Value > all[j].Value
		}
		return all[i].Name < all[j].Name
	})

	if len(all) <= topCategories {
		return all
	}
	out := append([]categoryTotal{}, all[:topCategories]...)
	var other int64
	for _, ct := range all[topCategories:] {
		other += ct.Value
	}
	return append(out, categoryTotal{Name: "Other", Value: other})
}

// dayTotals returns one entry per day of p; days without rows are zero.
// Expenses are reported as positive values.
func dayTotals(rows []store.TransactionView, p period) []dayTotal {
	byDay := make(map[string]*dayTotal)
	for _, r := range rows {
		key := r.Date.UTC().Format(time.DateOnly)
		d, ok := byDay[key]
		if !ok {
			d = &dayTotal{Date: key}
			byDay[key] = d
		}
		if r.Amount >= 0 {
			d.Income += r.Amount
		} else {
			d.Expenses += -r.Amount
		}
	}

	out := make([]dayTotal, 0, p.days())
	for day := p.From; !day.After(p.To); day = day.AddDate(0, 0, 1) {
		key := day.Format(time.DateOnly)
		if d, ok := byDay[key]; ok {
			out = append(out, *d)
		} else {
			out = append(out, dayTotal{Date: key})
		}
	}
	return out
}

func buildSummary(current, previous []store.TransactionView, p period) summaryResp {
	income, expenses := totals(current)
	prevIncome, prevExpenses := totals(previous)
	remaining := income + expenses
	prevRemaining := prevIncome + prevExpenses

	return summaryResp{
		RemainingAmount: remaining,
		RemainingChange: percentChange(remaining, prevRemaining),
		IncomeAmount:    income,
		IncomeChange:    percentChange(income, prevIncome),
		ExpensesAmount:  expenses,
		ExpensesChange:  percentChange(expenses, prevExpenses),
		Categories:      categoryTotals(current),
		Days:            dayTotals(current, p),
	}
}

func (h *SummaryHandler) Get(c *gin.Context) {
	q := middleware.Query[SummaryQuery](c)
	userID := middleware.UserID(c)
	ctx := c.Request.Context()

	p := resolvePeriod(q, h.Now())
	current, err := h.Store.ListTransactions(ctx, userID, p.filter(q.AccountID))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	previous, err := h.Store.ListTransactions(ctx, userID, p.previous().filter(q.AccountID))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	util.Success(c, http.StatusOK, buildSummary(current, previous, p))
}
