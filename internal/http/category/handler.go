package category

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tiammomo/mamoji/internal/category"
	"github.com/tiammomo/mamoji/internal/http/request"
	"github.com/tiammomo/mamoji/internal/http/respond"
)

type Handler struct {
	svc *category.Service
}

func NewHandler(svc *category.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type categoryResponse struct {
	ID     uuid.UUID     `json:"id"`
	Name   string        `json:"name"`
	Kind   category.Kind `json:"kind"`
	Icon   string        `json:"icon,omitempty"`
	System bool          `json:"system"`
}

func toResponse(c *category.Category) categoryResponse {
	return categoryResponse{
		ID:     c.ID,
		Name:   c.Name,
		Kind:   c.Kind,
		Icon:   c.Icon,
		System: c.System(),
	}
}

type createCategoryRequest struct {
	Name string        `json:"name"`
	Kind category.Kind `json:"kind"`
	Icon string        `json:"icon"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.svc.Create(r.Context(), request.UserID(r.Context()), category.CreateParams{
		Name: req.Name,
		Kind: req.Kind,
		Icon: req.Icon,
	})
	if err != nil {
		respond.Err(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(c))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var kind *category.Kind

	if s := r.URL.Query().Get("kind"); s != "" {
		k := category.Kind(s)
		kind = &k
	}

	cats, err := h.svc.List(r.Context(), request.UserID(r.Context()), kind)
	if err != nil {
		respond.Err(w, err)
		return
	}

	resp := make([]categoryResponse, len(cats))
	for i, c := range cats {
		resp[i] = toResponse(c)
	}

	respond.JSON(w, http.StatusOK, resp)
}

type updateCategoryRequest struct {
	Name *string `json:"name,omitempty"`
	Icon *string `json:"icon,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.svc.Update(r.Context(), request.UserID(r.Context()), id, category.UpdateParams{
		Name: req.Name,
		Icon: req.Icon,
	})
	if err != nil {
		if errors.Is(err, category.ErrNotFound) {
			http.Error(w, "category not found", http.StatusNotFound)
			return
		}

		respond.Err(w, err)

		return
	}

	respond.JSON(w, http.StatusOK, toResponse(c))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), request.UserID(r.Context()), id); err != nil {
		if errors.Is(err, category.ErrNotFound) {
			http.Error(w, "category not found", http.StatusNotFound)
			return
		}

		respond.Err(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
