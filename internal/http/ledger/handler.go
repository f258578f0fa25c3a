package ledger

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tiammomo/mamoji/internal/http/request"
	"github.com/tiammomo/mamoji/internal/http/respond"
	"github.com/tiammomo/mamoji/internal/ledger"
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Get("/{id}/members", h.members)
	r.Post("/{id}/members", h.addMember)
	r.Patch("/{id}/members/{userID}", h.updateRole)
	r.Delete("/{id}/members/{userID}", h.removeMember)
}

type ledgerResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func toResponse(l *ledger.Ledger) ledgerResponse {
	return ledgerResponse{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		CreatedBy:   l.CreatedBy,
		CreatedAt:   l.CreatedAt,
	}
}

type memberResponse struct {
	UserID   uuid.UUID   `json:"user_id"`
	Role     ledger.Role `json:"role"`
	JoinedAt time.Time   `json:"joined_at"`
}

type createLedgerRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createLedgerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	l, err := h.svc.Create(r.Context(), request.UserID(r.Context()), req.Name, req.Description)
	if err != nil {
		respond.Err(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(l))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ledgers, err := h.svc.List(r.Context(), request.UserID(r.Context()))
	if err != nil {
		respond.Err(w, err)
		return
	}

	resp := make([]ledgerResponse, len(ledgers))
	for i, l := range ledgers {
		resp[i] = toResponse(l)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	l, err := h.svc.Get(r.Context(), request.UserID(r.Context()), id)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			http.Error(w, "ledger not found", http.StatusNotFound)
			return
		}

		respond.Err(w, err)

		return
	}

	respond.JSON(w, http.StatusOK, toResponse(l))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), request.UserID(r.Context()), id); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			http.Error(w, "ledger not found", http.StatusNotFound)
			return
		}

		respond.Err(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) members(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	members, err := h.svc.Members(r.Context(), request.UserID(r.Context()), id)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			http.Error(w, "ledger not found", http.StatusNotFound)
			return
		}

		respond.Err(w, err)

		return
	}

	resp := make([]memberResponse, len(members))
	for i, m := range members {
		resp[i] = memberResponse{UserID: m.UserID, Role: m.Role, JoinedAt: m.JoinedAt}
	}

	respond.JSON(w, http.StatusOK, resp)
}

type addMemberRequest struct {
	UserID uuid.UUID   `json:"user_id"`
	Role   ledger.Role `json:"role"`
}

func (h *Handler) addMember(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = h.svc.AddMember(r.Context(), request.UserID(r.Context()), id, req.UserID, req.Role)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			http.Error(w, "ledger not found", http.StatusNotFound)
			return
		}

		respond.Err(w, err)

		return
	}

	w.WriteHeader(http.StatusCreated)
}

type updateRoleRequest struct {
	Role ledger.Role `json:"role"`
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = h.svc.UpdateRole(r.Context(), request.UserID(r.Context()), id, userID, req.Role)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) || errors.Is(err, ledger.ErrMemberNotFound) {
			http.Error(w, "member not found", http.StatusNotFound)
			return
		}

		respond.Err(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeMember(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	err = h.svc.RemoveMember(r.Context(), request.UserID(r.Context()), id, userID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) || errors.Is(err, ledger.ErrMemberNotFound) {
			http.Error(w, "member not found", http.StatusNotFound)
			return
		}

		respond.Err(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
