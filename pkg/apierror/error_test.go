package apierror

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestIs(t *testing.T) {
	err := InsufficientStock(5, 2)
	if !Is(err, CodeInsufficientStock) {
		t.Error("Is should match the error's code")
	}
	if Is(err, CodeNotFound) {
		t.Error("Is should not match a different code")
	}
	if Is(errors.New("plain"), CodeInternal) {
		t.Error("Is should not match a non-apierror value")
	}
}

func TestToJSONEnvelope(t *testing.T) {
	err := InsufficientCoins(50, 20)

	var envelope struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string         `json:"code"`
			Message string         `json:"message"`
			Meta    map[string]any `json:"meta"`
		} `json:"error"`
	}
	if jerr := json.Unmarshal(err.ToJSON(), &envelope); jerr != nil {
		t.Fatalf("unmarshal: %v", jerr)
	}
	if envelope.Success {
		t.Error("success should be false")
	}
	if envelope.Error.Code != CodeInsufficientCoins {
		t.Errorf("code = %s, want %s", envelope.Error.Code, CodeInsufficientCoins)
	}
	if envelope.Error.Meta["required"] != float64(50) || envelope.Error.Meta["current"] != float64(20) {
		t.Errorf("meta = %v", envelope.Error.Meta)
	}
}

func TestStatusCodes(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{BadRequest("x"), http.StatusBadRequest},
		{Unauthorized(""), http.StatusUnauthorized},
		{Forbidden(""), http.StatusForbidden},
		{NotFound(""), http.StatusNotFound},
		{Conflict("x"), http.StatusConflict},
		{InternalError(""), http.StatusInternalServerError},
		{InsufficientStock(1, 0), http.StatusConflict},
		{InsufficientCoins(1, 0), http.StatusConflict},
		{InvalidTransition("pending", "delivered"), http.StatusBadRequest},
		{NotCancellable("delivered"), http.StatusBadRequest},
		{SelfPurchase(), http.StatusBadRequest},
		{ProductInactive(), http.StatusConflict},
		{AlreadyClaimed("daily_login"), http.StatusConflict},
	}
	for _, c := range cases {
		if c.err.StatusCode != c.want {
			t.Errorf("%s status = %d, want %d", c.err.Code, c.err.StatusCode, c.want)
		}
	}
}
