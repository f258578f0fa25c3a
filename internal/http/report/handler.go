package report

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tiammomo/mamoji/internal/http/request"
	"github.com/tiammomo/mamoji/internal/http/respond"
	"github.com/tiammomo/mamoji/internal/report"
	"github.com/tiammomo/mamoji/internal/transaction"
)

type Handler struct {
	svc *report.Service
}

func NewHandler(svc *report.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/totals", h.totals)
	r.Get("/periods", h.periods)
	r.Get("/categories", h.categories)
	r.Get("/net-worth", h.netWorth)
}

// rangeFilter reads the shared from/to query parameters.
func rangeFilter(r *http.Request) transaction.ListFilter {
	filter := transaction.ListFilter{}
	q := r.URL.Query()

	if s := q.Get("from"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.From = &t
		}
	}

	if s := q.Get("to"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.To = &t
		}
	}

	return filter
}

type totalsResponse struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

func (h *Handler) totals(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Totals(r.Context(), request.UserID(r.Context()), rangeFilter(r))
	if err != nil {
		respond.Err(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, totalsResponse{Income: t.Income, Expense: t.Expense, Net: t.Net})
}

type periodResponse struct {
	Period  string          `json:"period"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

func (h *Handler) periods(w http.ResponseWriter, r *http.Request) {
	period := report.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = report.PeriodMonthly
	}

	buckets, err := h.svc.ByPeriod(r.Context(), request.UserID(r.Context()), period, rangeFilter(r))
	if err != nil {
		respond.Err(w, err)
		return
	}

	resp := make([]periodResponse, len(buckets))
	for i, b := range buckets {
		resp[i] = periodResponse{Period: b.Key, Income: b.Income, Expense: b.Expense, Net: b.Net}
	}

	respond.JSON(w, http.StatusOK, resp)
}

type categoryShareResponse struct {
	CategoryID string          `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
	Percent    float64         `json:"percent"`
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	typ := transaction.Type(r.URL.Query().Get("type"))
	if typ == "" {
		typ = transaction.TypeExpense
	}

	shares, err := h.svc.CategoryShares(r.Context(), request.UserID(r.Context()), typ, rangeFilter(r))
	if err != nil {
		respond.Err(w, err)
		return
	}

	resp := make([]categoryShareResponse, len(shares))
	for i, s := range shares {
		resp[i] = categoryShareResponse{
			CategoryID: s.CategoryID.String(),
			Amount:     s.Amount,
			Percent:    s.Percent,
		}
	}

	respond.JSON(w, http.StatusOK, resp)
}

type netWorthResponse struct {
	TotalAssets      decimal.Decimal `json:"total_assets"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`
	NetAssets        decimal.Decimal `json:"net_assets"`
	AccountCount     int             `json:"account_count"`
}

func (h *Handler) netWorth(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.NetWorth(r.Context(), request.UserID(r.Context()))
	if err != nil {
		respond.Err(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, netWorthResponse{
		TotalAssets:      s.TotalAssets,
		TotalLiabilities: s.TotalLiabilities,
		NetAssets:        s.NetAssets,
		AccountCount:     s.AccountCount,
	})
}
