package apierror

import (
	"encoding/json"
	"net/http"
)

// Error represents a structured API error response. Code is a stable machine
// kind; Message is human-readable. Meta carries structured detail for kinds
// that need it (available stock, required coins, attempted transition).
// Internal error text is never placed in Message.
type Error struct {
	StatusCode int            `json:"-"`
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    []FieldError   `json:"details,omitempty"`
	Meta       map[string]any `json:"meta,omitempty"`
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// WithDetails adds field-level error details.
func (e *Error) WithDetails(details ...FieldError) *Error {
	e.Details = details
	return e
}

// WithMeta attaches structured detail to the error.
func (e *Error) WithMeta(meta map[string]any) *Error {
	e.Meta = meta
	return e
}

// ToJSON converts the error to JSON bytes.
func (e *Error) ToJSON() []byte {
	errBody := map[string]any{
		"code":    e.Code,
		"message": e.Message,
	}
	if len(e.Details) > 0 {
		errBody["details"] = e.Details
	}
	if len(e.Meta) > 0 {
		errBody["meta"] = e.Meta
	}

	data, _ := json.Marshal(map[string]any{
		"success": false,
		"error":   errBody,
	})
	return data
}

// Is reports whether err is an *Error with the given code.
func Is(err error, code string) bool {
	apiErr, ok := err.(*Error)
	return ok && apiErr.Code == code
}

// Stable error codes.
const (
	CodeBadRequest        = "BAD_REQUEST"
	CodeValidation        = "VALIDATION_ERROR"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeInternal          = "INTERNAL_ERROR"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeInsufficientCoins = "INSUFFICIENT_COINS"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeNotCancellable    = "NOT_CANCELLABLE"
	CodeSelfPurchase      = "SELF_PURCHASE"
	CodeProductInactive   = "PRODUCT_INACTIVE"
	CodeAlreadyClaimed    = "ALREADY_CLAIMED"
)

// BadRequest creates a 400 Bad Request error.
func BadRequest(message string) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       CodeBadRequest,
		Message:    message,
	}
}

// ValidationError creates a 400 error with validation details.
func ValidationError(message string, details ...FieldError) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       CodeValidation,
		Message:    message,
		Details:    details,
	}
}

// Unauthorized creates a 401 Unauthorized error.
func Unauthorized(message string) *Error {
	if message == "" {
		message = "Authentication required"
	}
	return &Error{
		StatusCode: http.StatusUnauthorized,
		Code:       CodeUnauthorized,
		Message:    message,
	}
}

// Forbidden creates a 403 Forbidden error. The message stays generic so the
// response does not reveal which ownership check failed.
func Forbidden(message string) *Error {
	if message == "" {
		message = "Access denied"
	}
	return &Error{
		StatusCode: http.StatusForbidden,
		Code:       CodeForbidden,
		Message:    message,
	}
}

// NotFound creates a 404 Not Found error.
func NotFound(message string) *Error {
	if message == "" {
		message = "Resource not found"
	}
	return &Error{
		StatusCode: http.StatusNotFound,
		Code:       CodeNotFound,
		Message:    message,
	}
}

// Conflict creates a 409 Conflict error.
func Conflict(message string) *Error {
	return &Error{
		StatusCode: http.StatusConflict,
		Code:       CodeConflict,
		Message:    message,
	}
}

// InternalError creates a 500 Internal Server Error.
func InternalError(message string) *Error {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return &Error{
		StatusCode: http.StatusInternalServerError,
		Code:       CodeInternal,
		Message:    message,
	}
}

// InsufficientStock creates the error returned when a reservation exceeds the
// product's available stock. The caller can retry with a smaller amount.
func InsufficientStock(requested, available int) *Error {
	return &Error{
		StatusCode: http.StatusConflict,
		Code:       CodeInsufficientStock,
		Message:    "Not enough stock available",
		Meta: map[string]any{
			"requested": requested,
			"available": available,
		},
	}
}

// InsufficientCoins creates the error returned when a debit exceeds the
// user's coin balance.
func InsufficientCoins(required, current int64) *Error {
	return &Error{
		StatusCode: http.StatusConflict,
		Code:       CodeInsufficientCoins,
		Message:    "Not enough coins",
		Meta: map[string]any{
			"required": required,
			"current":  current,
		},
	}
}

// InvalidTransition creates the error returned when an order status change is
// not permitted from the current state.
func InvalidTransition(from, to string) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       CodeInvalidTransition,
		Message:    "Status change not allowed from current status",
		Meta: map[string]any{
			"current":   from,
			"attempted": to,
		},
	}
}

// NotCancellable creates the error returned when an order can no longer be
// cancelled by the buyer.
func NotCancellable(current string) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       CodeNotCancellable,
		Message:    "Order can no longer be cancelled",
		Meta: map[string]any{
			"current": current,
		},
	}
}

// SelfPurchase creates the error returned when a user tries to buy their own
// product.
func SelfPurchase() *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       CodeSelfPurchase,
		Message:    "You cannot purchase your own product",
	}
}

// ProductInactive creates the error returned when the product is not open for
// purchase.
func ProductInactive() *Error {
	return &Error{
		StatusCode: http.StatusConflict,
		Code:       CodeProductInactive,
		Message:    "Product is not available for purchase",
	}
}

// AlreadyClaimed creates the error returned when a reward was already claimed
// for the current period.
func AlreadyClaimed(action string) *Error {
	return &Error{
		StatusCode: http.StatusConflict,
		Code:       CodeAlreadyClaimed,
		Message:    "Reward already claimed",
		Meta: map[string]any{
			"action": action,
		},
	}
}
