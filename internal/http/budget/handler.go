package budget

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiammomo/mamoji/internal/budget"
	"github.com/tiammomo/mamoji/internal/http/request"
	"github.com/tiammomo/mamoji/internal/http/respond"
)

type Handler struct {
	svc *budget.Service
}

func NewHandler(svc *budget.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Post("/{id}/cancel", h.cancel)
	r.Delete("/{id}", h.delete)
}

type budgetResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
	Progress  float64         `json:"progress"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
	Status    budget.Status   `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

func toResponse(b *budget.Budget) budgetResponse {
	return budgetResponse{
		ID:        b.ID,
		Name:      b.Name,
		Amount:    b.Amount,
		Spent:     b.Spent,
		Remaining: b.Remaining(),
		Progress:  budget.Progress(b.Spent, b.Amount),
		StartDate: b.StartDate,
		EndDate:   b.EndDate,
		Status:    b.Status,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

type createBudgetRequest struct {
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b, err := h.svc.Create(r.Context(), request.UserID(r.Context()), budget.CreateParams{
		Name:      req.Name,
		Amount:    req.Amount,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		respond.Err(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(b))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	budgets, err := h.svc.List(r.Context(), request.UserID(r.Context()), activeOnly)
	if err != nil {
		respond.Err(w, err)
		return
	}

	resp := make([]budgetResponse, len(budgets))
	for i, b := range budgets {
		resp[i] = toResponse(b)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	b, err := h.svc.Get(r.Context(), request.UserID(r.Context()), id)
	if err != nil {
		if errors.Is(err, budget.ErrNotFound) {
			http.Error(w, "budget not found", http.StatusNotFound)
			return
		}

		respond.Err(w, err)

		return
	}

	respond.JSON(w, http.StatusOK, toResponse(b))
}

type updateBudgetRequest struct {
	Name      *string          `json:"name,omitempty"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	StartDate *time.Time       `json:"start_date,omitempty"`
	EndDate   *time.Time       `json:"end_date,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b, err := h.svc.Update(r.Context(), request.UserID(r.Context()), id, budget.UpdateParams{
		Name:      req.Name,
		Amount:    req.Amount,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		if errors.Is(err, budget.ErrNotFound) {
			http.Error(w, "budget not found", http.StatusNotFound)
			return
		}

		respond.Err(w, err)

		return
	}

	respond.JSON(w, http.StatusOK, toResponse(b))
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Cancel(r.Context(), request.UserID(r.Context()), id); err != nil {
		if errors.Is(err, budget.ErrNotFound) {
			http.Error(w, "budget not found", http.StatusNotFound)
			return
		}

		respond.Err(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), request.UserID(r.Context()), id); err != nil {
		if errors.Is(err, budget.ErrNotFound) {
			http.Error(w, "budget not found", http.StatusNotFound)
			return
		}

		respond.Err(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
