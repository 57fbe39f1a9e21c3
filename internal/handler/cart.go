package handler

import (
	"encoding/json"
	"net/http"

	"roomhub-commerce-api/internal/model"
	"roomhub-commerce-api/internal/service"
	"roomhub-commerce-api/pkg/apierror"
	"roomhub-commerce-api/pkg/response"
)

// CartHandler handles cart-related HTTP requests.
type CartHandler struct {
	carts *service.CartService
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(carts *service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// AddItemRequest is the body for adding a product to the cart.
type AddItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if req.ProductID <= 0 {
		response.Error(w, apierror.BadRequest("product_id is required"))
		return
	}

	item, err := h.carts.AddToCart(r.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, item)
}

// UpdateItemRequest is the body for changing a cart line's quantity.
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateItem handles PATCH /api/v1/cart/items/{item_id}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	itemID, err := pathID(r, "item_id")
	if err != nil {
		response.Error(w, err)
		return
	}

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	item, err := h.carts.UpdateQuantity(r.Context(), userID, itemID, req.Quantity)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, item)
}

// RemoveItem handles DELETE /api/v1/cart/items/{item_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	itemID, err := pathID(r, "item_id")
	if err != nil {
		response.Error(w, err)
		return
	}

	if err := h.carts.RemoveItem(r.Context(), userID, itemID); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}

// Clear handles DELETE /api/v1/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	if err := h.carts.ClearCart(r.Context(), userID); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}

// List handles GET /api/v1/cart
func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	items, err := h.carts.ListItems(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, items)
}

// CheckoutRequest is the body for converting the cart into orders.
type CheckoutRequest struct {
	ShipName    string `json:"ship_name"`
	ShipAddress string `json:"ship_address"`
	ShipPhone   string `json:"ship_phone"`
}

// Checkout handles POST /api/v1/cart/checkout
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if req.ShipName == "" || req.ShipAddress == "" {
		response.Error(w, apierror.ValidationError("shipping details required",
			apierror.FieldError{Field: "ship_name", Message: "required"},
			apierror.FieldError{Field: "ship_address", Message: "required"},
		))
		return
	}

	result, err := h.carts.Checkout(r.Context(), userID, model.Shipping{
		Name:    req.ShipName,
		Address: req.ShipAddress,
		Phone:   req.ShipPhone,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, result)
}
