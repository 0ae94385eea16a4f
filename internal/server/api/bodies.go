// Package api provides HTTP API handlers for the body catalog.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/hologram/internal/store"
)

// BodyHandler handles HTTP requests for catalog bodies. Changes apply to the
// next session start; the running scene keeps the bodies it started with.
type BodyHandler struct {
	store *store.Store
}

// NewBodyHandler creates a new BodyHandler with the given store.
func NewBodyHandler(s *store.Store) *BodyHandler {
	return &BodyHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *BodyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/bodies or /api/bodies/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/bodies")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type createBodyRequest struct {
	Name        string  `json:"name"`
	Color       string  `json:"color"`
	Distance    float64 `json:"distance"`
	Size        float64 `json:"size"`
	Speed       float64 `json:"speed"`
	Description string  `json:"description"`
	Temperature string  `json:"temperature"`
	Gravity     string  `json:"gravity"`
}

// updateBodyRequest uses pointers so a field can be set to its zero value.
type updateBodyRequest struct {
	Name        *string  `json:"name"`
	Color       *string  `json:"color"`
	Distance    *float64 `json:"distance"`
	Size        *float64 `json:"size"`
	Speed       *float64 `json:"speed"`
	Description *string  `json:"description"`
	Temperature *string  `json:"temperature"`
	Gravity     *string  `json:"gravity"`
	Position    *int     `json:"position"`
}

type bodyResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Color       string  `json:"color"`
	Distance    float64 `json:"distance"`
	Size        float64 `json:"size"`
	Speed       float64 `json:"speed"`
	Description string  `json:"description"`
	Temperature string  `json:"temperature"`
	Gravity     string  `json:"gravity"`
	Position    int     `json:"position"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type listBodiesResponse struct {
	Bodies []bodyResponse `json:"bodies"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toResponse converts a store.Body to a bodyResponse.
func toResponse(b *store.Body) bodyResponse {
	return bodyResponse{
		ID:          b.ID,
		Name:        b.Name,
		Color:       b.Color,
		Distance:    b.Distance,
		Size:        b.Size,
		Speed:       b.Speed,
		Description: b.Description,
		Temperature: b.Temperature,
		Gravity:     b.Gravity,
		Position:    b.Position,
		CreatedAt:   b.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   b.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeStoreError maps repository errors onto status codes.
func writeStoreError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Body not found")
	case errors.Is(err, store.ErrDuplicateName):
		writeError(w, http.StatusConflict, "Body name already exists")
	case errors.Is(err, store.ErrInvalidBody):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

// list handles GET /api/bodies and returns the catalog in scene order.
func (h *BodyHandler) list(w http.ResponseWriter, r *http.Request) {
	bodies, err := h.store.Bodies().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bodies")
		return
	}

	response := listBodiesResponse{
		Bodies: make([]bodyResponse, 0, len(bodies)),
	}
	for _, b := range bodies {
		response.Bodies = append(response.Bodies, toResponse(b))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/bodies/{id}.
func (h *BodyHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	body, err := h.store.Bodies().GetByID(id)
	if err != nil {
		writeStoreError(w, err, "Failed to get body")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(body))
}

// create handles POST /api/bodies and appends a body to the catalog.
func (h *BodyHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createBodyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	body := &store.Body{
		Name:        req.Name,
		Color:       req.Color,
		Distance:    req.Distance,
		Size:        req.Size,
		Speed:       req.Speed,
		Description: req.Description,
		Temperature: req.Temperature,
		Gravity:     req.Gravity,
	}

	if err := h.store.Bodies().Create(body); err != nil {
		writeStoreError(w, err, "Failed to create body")
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(body))
}

// update handles PUT /api/bodies/{id}. Omitted fields keep their values.
func (h *BodyHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	body, err := h.store.Bodies().GetByID(id)
	if err != nil {
		writeStoreError(w, err, "Failed to get body")
		return
	}

	var req updateBodyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name != nil {
		body.Name = *req.Name
	}
	if req.Color != nil {
		body.Color = *req.Color
	}
	if req.Distance != nil {
		body.Distance = *req.Distance
	}
	if req.Size != nil {
		body.Size = *req.Size
	}
	if req.Speed != nil {
		body.Speed = *req.Speed
	}
	if req.Description != nil {
		body.Description = *req.Description
	}
	if req.Temperature != nil {
		body.Temperature = *req.Temperature
	}
	if req.Gravity != nil {
		body.Gravity = *req.Gravity
	}
	if req.Position != nil {
		body.Position = *req.Position
	}

	if err := h.store.Bodies().Update(body); err != nil {
		writeStoreError(w, err, "Failed to update body")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(body))
}

// delete handles DELETE /api/bodies/{id}.
func (h *BodyHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Bodies().Delete(id); err != nil {
		writeStoreError(w, err, "Failed to delete body")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
