package handler

import (
	"encoding/json"
	"net/http"

	"roomhub-commerce-api/internal/model"
	"roomhub-commerce-api/internal/service"
	"roomhub-commerce-api/pkg/apierror"
	"roomhub-commerce-api/pkg/response"
)

// RoomHandler handles room creation and quota queries.
type RoomHandler struct {
	quota *service.RoomQuotaService
}

// NewRoomHandler creates a new room handler.
func NewRoomHandler(quota *service.RoomQuotaService) *RoomHandler {
	return &RoomHandler{quota: quota}
}

// CreateRoomRequest is the body for creating a room.
type CreateRoomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if req.Name == "" {
		response.Error(w, apierror.ValidationError("invalid room",
			apierror.FieldError{Field: "name", Message: "required"}))
		return
	}
	if req.Visibility == "" {
		req.Visibility = "public"
	}

	result, err := h.quota.ProcessCreation(r.Context(), userID, &model.Room{
		Name:        req.Name,
		Description: req.Description,
		Visibility:  req.Visibility,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, result)
}

// Quota handles GET /api/v1/rooms/quota
func (h *RoomHandler) Quota(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	info, err := h.quota.CanCreate(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, info)
}
