package handler

import (
	"encoding/json"
	"net/http"

	"roomhub-commerce-api/internal/model"
	"roomhub-commerce-api/internal/service"
	"roomhub-commerce-api/pkg/apierror"
	"roomhub-commerce-api/pkg/response"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	orders *service.OrderService
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// PlaceOrderRequest is the body for the buy-now path.
type PlaceOrderRequest struct {
	ProductID   int64  `json:"product_id"`
	Quantity    int    `json:"quantity"`
	ShipName    string `json:"ship_name"`
	ShipAddress string `json:"ship_address"`
	ShipPhone   string `json:"ship_phone"`
}

// Place handles POST /api/v1/orders
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if req.ProductID <= 0 {
		response.Error(w, apierror.BadRequest("product_id is required"))
		return
	}
	if req.ShipName == "" || req.ShipAddress == "" {
		response.Error(w, apierror.ValidationError("shipping details required",
			apierror.FieldError{Field: "ship_name", Message: "required"},
			apierror.FieldError{Field: "ship_address", Message: "required"},
		))
		return
	}

	order, err := h.orders.PlaceDirectOrder(r.Context(), userID, req.ProductID, req.Quantity, model.Shipping{
		Name:    req.ShipName,
		Address: req.ShipAddress,
		Phone:   req.ShipPhone,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, order)
}

// Get handles GET /api/v1/orders/{order_id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	orderID, err := pathID(r, "order_id")
	if err != nil {
		response.Error(w, err)
		return
	}

	order, err := h.orders.Get(r.Context(), userID, orderID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, order)
}

// List handles GET /api/v1/orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	orders, err := h.orders.ListForBuyer(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, orders)
}

// UpdateStatusRequest is the body for a seller-side status change.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /api/v1/orders/{order_id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	orderID, err := pathID(r, "order_id")
	if err != nil {
		response.Error(w, err)
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	batch, err := h.orders.UpdateStatus(r.Context(), userID, orderID, model.OrderStatus(req.Status))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, batch)
}

// Cancel handles POST /api/v1/orders/{order_id}/cancel
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	orderID, err := pathID(r, "order_id")
	if err != nil {
		response.Error(w, err)
		return
	}

	batch, err := h.orders.Cancel(r.Context(), userID, orderID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, batch)
}
