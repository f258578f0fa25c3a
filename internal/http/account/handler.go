package account

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiammomo/mamoji/internal/account"
	"github.com/tiammomo/mamoji/internal/http/request"
	"github.com/tiammomo/mamoji/internal/http/respond"
)

type Handler struct {
	svc *account.Service
}

func NewHandler(svc *account.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/summary", h.summary)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type accountResponse struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Type           account.Type    `json:"type"`
	Balance        decimal.Decimal `json:"balance"`
	Currency       string          `json:"currency"`
	IncludeInTotal bool            `json:"include_in_total"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      *time.Time      `json:"updated_at,omitempty"`
}

func toResponse(acc *account.Account) accountResponse {
	return accountResponse{
		ID:             acc.ID,
		Name:           acc.Name,
		Type:           acc.Type,
		Balance:        acc.Balance,
		Currency:       acc.Currency,
		IncludeInTotal: acc.IncludeInTotal,
		CreatedAt:      acc.CreatedAt,
		UpdatedAt:      acc.UpdatedAt,
	}
}

type createAccountRequest struct {
	Name           string          `json:"name"`
	Type           account.Type    `json:"type"`
	Balance        decimal.Decimal `json:"balance"`
	Currency       string          `json:"currency"`
	IncludeInTotal bool            `json:"include_in_total"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	acc, err := h.svc.Create(r.Context(), request.UserID(r.Context()), account.CreateParams{
		Name:           req.Name,
		Type:           req.Type,
		Balance:        req.Balance,
		Currency:       req.Currency,
		IncludeInTotal: req.IncludeInTotal,
	})
	if err != nil {
		respond.Err(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(acc))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.List(r.Context(), request.UserID(r.Context()))
	if err != nil {
		respond.Err(w, err)
		return
	}

	resp := make([]accountResponse, len(accounts))
	for i, acc := range accounts {
		resp[i] = toResponse(acc)
	}

	respond.JSON(w, http.StatusOK, resp)
}

type summaryResponse struct {
	TotalAssets      decimal.Decimal `json:"total_assets"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`
	NetAssets        decimal.Decimal `json:"net_assets"`
	AccountCount     int             `json:"account_count"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Summarize(r.Context(), request.UserID(r.Context()))
	if err != nil {
		respond.Err(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, summaryResponse{
		TotalAssets:      s.TotalAssets,
		TotalLiabilities: s.TotalLiabilities,
		NetAssets:        s.NetAssets,
		AccountCount:     s.AccountCount,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	acc, err := h.svc.Get(r.Context(), request.UserID(r.Context()), id)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			http.Error(w, "account not found", http.StatusNotFound)
			return
		}

		respond.Err(w, err)

		return
	}

	respond.JSON(w, http.StatusOK, toResponse(acc))
}

type updateAccountRequest struct {
	Name           *string          `json:"name,omitempty"`
	Type           *account.Type    `json:"type,omitempty"`
	Currency       *string          `json:"currency,omitempty"`
	IncludeInTotal *bool            `json:"include_in_total,omitempty"`
	Balance        *decimal.Decimal `json:"balance,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	acc, err := h.svc.Update(r.Context(), request.UserID(r.Context()), id, account.UpdateParams{
		Name:           req.Name,
		Type:           req.Type,
		Currency:       req.Currency,
		IncludeInTotal: req.IncludeInTotal,
		Balance:        req.Balance,
	})
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			http.Error(w, "account not found", http.StatusNotFound)
			return
		}

		respond.Err(w, err)

		return
	}

	respond.JSON(w, http.StatusOK, toResponse(acc))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), request.UserID(r.Context()), id); err != nil {
		if errors.Is(err, account.ErrNotFound) {
			http.Error(w, "account not found", http.StatusNotFound)
			return
		}

		respond.Err(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
