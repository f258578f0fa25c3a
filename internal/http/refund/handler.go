package refund

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiammomo/mamoji/internal/http/request"
	"github.com/tiammomo/mamoji/internal/http/respond"
	"github.com/tiammomo/mamoji/internal/refund"
	"github.com/tiammomo/mamoji/internal/transaction"
)

type Handler struct {
	svc *refund.Service
}

func NewHandler(svc *refund.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Delete("/{id}", h.cancel)
	r.Get("/transaction/{transactionID}", h.summary)
}

type refundResponse struct {
	ID            uuid.UUID       `json:"id"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	AccountID     uuid.UUID       `json:"account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toResponse(r *refund.Refund) refundResponse {
	return refundResponse{
		ID:            r.ID,
		TransactionID: r.TransactionID,
		AccountID:     r.AccountID,
		Amount:        r.Amount,
		Reason:        r.Reason,
		OccurredAt:    r.OccurredAt,
		Active:        r.Active,
		CreatedAt:     r.CreatedAt,
	}
}

type createRefundRequest struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ref, err := h.svc.Create(r.Context(), request.UserID(r.Context()), refund.CreateParams{
		TransactionID: req.TransactionID,
		Amount:        req.Amount,
		Reason:        req.Reason,
		OccurredAt:    req.OccurredAt,
	})
	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			http.Error(w, "transaction not found", http.StatusNotFound)
			return
		}

		respond.Err(w, err)

		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(ref))
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	s, err := h.svc.Cancel(r.Context(), request.UserID(r.Context()), id)
	if err != nil {
		if errors.Is(err, refund.ErrNotFound) {
			http.Error(w, "refund not found", http.StatusNotFound)
			return
		}

		respond.Err(w, err)

		return
	}

	respond.JSON(w, http.StatusOK, toSummaryResponse(s))
}

type summaryResponse struct {
	TransactionID  uuid.UUID        `json:"transaction_id"`
	OriginalAmount decimal.Decimal  `json:"original_amount"`
	Refunded       decimal.Decimal  `json:"refunded"`
	Remaining      decimal.Decimal  `json:"remaining"`
	HasRefund      bool             `json:"has_refund"`
	RefundCount    int              `json:"refund_count"`
	Refunds        []refundResponse `json:"refunds"`
}

func toSummaryResponse(s *refund.Summary) summaryResponse {
	resp := summaryResponse{
		TransactionID:  s.TransactionID,
		OriginalAmount: s.OriginalAmount,
		Refunded:       s.Refunded,
		Remaining:      s.Remaining,
		HasRefund:      s.HasRefund,
		RefundCount:    s.RefundCount,
		Refunds:        make([]refundResponse, len(s.Refunds)),
	}

	for i, ref := range s.Refunds {
		resp.Refunds[i] = toResponse(ref)
	}

	return resp
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	transactionID, err := uuid.Parse(chi.URLParam(r, "transactionID"))
	if err != nil {
		http.Error(w, "invalid transaction id", http.StatusBadRequest)
		return
	}

	s, err := h.svc.Summarize(r.Context(), request.UserID(r.Context()), transactionID)
	if err != nil {
		respond.Err(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toSummaryResponse(s))
}
