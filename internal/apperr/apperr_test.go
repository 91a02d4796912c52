package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("status", "Invalid status"), http.StatusBadRequest},
		{"auth", Auth("not authenticated"), http.StatusUnauthorized},
		{"not found", NotFound("Order not found"), http.StatusNotFound},
		{"store", Dependency("failed to load order", cause), http.StatusInternalServerError},
		{"upstream", Upstream("payment processor unavailable", cause), http.StatusBadGateway},
		{"wrapped", fmt.Errorf("confirming: %w", NotFound("Order not found")), http.StatusNotFound},
		{"plain", cause, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	msg, field := Message(fmt.Errorf("wrap: %w", Validation("items", "Order must contain at least one item")))
	if msg != "Order must contain at least one item" || field != "items" {
		t.Errorf("unexpected message %q field %q", msg, field)
	}

	msg, field = Message(errors.New("secret detail"))
	if msg != "internal error" || field != "" {
		t.Errorf("plain errors must not leak: %q %q", msg, field)
	}
}

func TestUnwrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Upstream("payment processor unavailable", cause)
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable with errors.Is")
	}
	if !Is(err, KindDependency) {
		t.Errorf("expected dependency kind, got %s", KindOf(err))
	}
}
