package transaction

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiammomo/mamoji/internal/http/request"
	"github.com/tiammomo/mamoji/internal/http/respond"
	"github.com/tiammomo/mamoji/internal/ledger"
	"github.com/tiammomo/mamoji/internal/transaction"
)

// LedgerAuthorizer resolves the caller's role in a shared ledger; every
// role may record transactions.
type LedgerAuthorizer interface {
	Authorize(ctx context.Context, userID, ledgerID uuid.UUID) (ledger.Role, error)
}

type Handler struct {
	svc     *transaction.Service
	ledgers LedgerAuthorizer
}

func NewHandler(svc *transaction.Service, ledgers LedgerAuthorizer) *Handler {
	return &Handler{svc: svc, ledgers: ledgers}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

// activeLedger resolves the X-Ledger-Id header and checks membership.
// Writes the error response itself; the bool says whether to continue.
func (h *Handler) activeLedger(w http.ResponseWriter, r *http.Request) (*uuid.UUID, bool) {
	ledgerID, err := request.LedgerID(r)
	if err != nil {
		http.Error(w, "invalid ledger id", http.StatusBadRequest)
		return nil, false
	}

	if ledgerID == nil {
		return nil, true
	}

	if _, err := h.ledgers.Authorize(r.Context(), request.UserID(r.Context()), *ledgerID); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			http.Error(w, "ledger not found", http.StatusNotFound)
			return nil, false
		}

		respond.Err(w, err)

		return nil, false
	}

	return ledgerID, true
}

type createTransactionRequest struct {
	AccountID  uuid.UUID        `json:"account_id"`
	CategoryID uuid.UUID        `json:"category_id"`
	BudgetID   *uuid.UUID       `json:"budget_id,omitempty"`
	Type       transaction.Type `json:"type"`
	Amount     decimal.Decimal  `json:"amount"`
	Currency   string           `json:"currency"`
	Note       string           `json:"note"`
	OccurredAt time.Time        `json:"occurred_at"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ledgerID, ok := h.activeLedger(w, r)
	if !ok {
		return
	}

	tx, err := h.svc.Create(r.Context(), request.UserID(r.Context()), transaction.CreateParams{
		LedgerID:   ledgerID,
		AccountID:  req.AccountID,
		CategoryID: req.CategoryID,
		BudgetID:   req.BudgetID,
		Type:       req.Type,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Note:       req.Note,
		OccurredAt: req.OccurredAt,
	})
	if err != nil {
		if notFound(err) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		respond.Err(w, err)

		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(tx))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ledgerID, ok := h.activeLedger(w, r)
	if !ok {
		return
	}

	filter := transaction.ListFilter{LedgerID: ledgerID}
	q := r.URL.Query()

	if s := q.Get("type"); s != "" {
		typ := transaction.Type(s)
		filter.Type = &typ
	}

	if s := q.Get("account_id"); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			filter.AccountID = &id
		}
	}

	if s := q.Get("category_id"); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			filter.CategoryID = &id
		}
	}

	if s := q.Get("budget_id"); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			filter.BudgetID = &id
		}
	}

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

	if s := q.Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			filter.Limit = n
		}
	}

	txs, err := h.svc.List(r.Context(), request.UserID(r.Context()), filter)
	if err != nil {
		respond.Err(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(txs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Get(r.Context(), request.UserID(r.Context()), id)
	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			http.Error(w, "transaction not found", http.StatusNotFound)
			return
		}

		respond.Err(w, err)

		return
	}

	respond.JSON(w, http.StatusOK, toResponse(tx))
}

type updateTransactionRequest struct {
	AccountID  uuid.UUID        `json:"account_id"`
	CategoryID uuid.UUID        `json:"category_id"`
	BudgetID   *uuid.UUID       `json:"budget_id,omitempty"`
	Type       transaction.Type `json:"type"`
	Amount     decimal.Decimal  `json:"amount"`
	Note       string           `json:"note"`
	OccurredAt time.Time        `json:"occurred_at"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Update(r.Context(), request.UserID(r.Context()), id, transaction.UpdateParams{
		AccountID:  req.AccountID,
		CategoryID: req.CategoryID,
		BudgetID:   req.BudgetID,
		Type:       req.Type,
		Amount:     req.Amount,
		Note:       req.Note,
		OccurredAt: req.OccurredAt,
	})
	if err != nil {
		if notFound(err) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		respond.Err(w, err)

		return
	}

	respond.JSON(w, http.StatusOK, toResponse(tx))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), request.UserID(r.Context()), id); err != nil {
		if notFound(err) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		respond.Err(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
