package handler

import (
	"encoding/json"
	"net/http"

	"roomhub-commerce-api/internal/service"
	"roomhub-commerce-api/pkg/apierror"
	"roomhub-commerce-api/pkg/response"
)

// ProductHandler handles product catalog HTTP requests.
type ProductHandler struct {
	catalog *service.CatalogService
}

// NewProductHandler creates a new product handler.
func NewProductHandler(catalog *service.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// Create handles POST /api/v1/rooms/{room_id}/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	roomID, err := pathID(r, "room_id")
	if err != nil {
		response.Error(w, err)
		return
	}

	var in service.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), userID, roomID, in)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, product)
}

// Get handles GET /api/v1/products/{product_id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "product_id")
	if err != nil {
		response.Error(w, err)
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), productID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, product)
}

// ListByRoom handles GET /api/v1/rooms/{room_id}/products
func (h *ProductHandler) ListByRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := pathID(r, "room_id")
	if err != nil {
		response.Error(w, err)
		return
	}

	products, err := h.catalog.ListRoomProducts(r.Context(), roomID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, products)
}
