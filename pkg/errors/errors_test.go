package errors

import (
	stderrors "errors"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := NewError(ErrorTypeForbidden, "request blocked")
		want := "forbidden: request blocked"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	})

	t.Run("with cause", func(t *testing.T) {
		cause := stderrors.New("connection refused")
		err := NewError(ErrorTypeUnavailable, "store unreachable").WithCause(cause)
		want := "unavailable: store unreachable: connection refused"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	})
}

func TestErrorUnwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := NewError(ErrorTypeInternal, "wrapper").WithCause(cause)

	if !Is(err, cause) {
		t.Error("expected Is to find the cause in the chain")
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestErrorIsMatchesType(t *testing.T) {
	a := NewError(ErrorTypeRateLimit, "limit hit")
	b := NewError(ErrorTypeRateLimit, "different message")
	c := NewError(ErrorTypeForbidden, "limit hit")

	if !Is(a, b) {
		t.Error("errors of the same type should match")
	}
	if Is(a, c) {
		t.Error("errors of different types should not match")
	}
}

func TestErrorAs(t *testing.T) {
	err := Wrap(NewError(ErrorTypeNotFound, "no such token"), "lookup failed")

	var structured *Error
	if !As(err, &structured) {
		t.Fatal("expected As to find the structured error")
	}
	if structured.Type != ErrorTypeNotFound {
		t.Errorf("Type = %q, want not_found", structured.Type)
	}
}

func TestErrorDetails(t *testing.T) {
	err := NewError(ErrorTypeBadRequest, "bad config").
		WithDetail("field", "banThreshold").
		WithDetail("value", 0)

	if err.Details["field"] != "banThreshold" {
		t.Errorf("field detail = %v", err.Details["field"])
	}
	if err.Details["value"] != 0 {
		t.Errorf("value detail = %v", err.Details["value"])
	}
}

func TestHTTPStatusCode(t *testing.T) {
	cases := map[ErrorType]int{
		ErrorTypeNotFound:    404,
		ErrorTypeBadRequest:  400,
		ErrorTypeForbidden:   403,
		ErrorTypeRateLimit:   403,
		ErrorTypeUnavailable: 503,
		ErrorTypeInternal:    500,
	}
	for errType, want := range cases {
		if got := NewError(errType, "x").HTTPStatusCode(); got != want {
			t.Errorf("HTTPStatusCode(%s) = %d, want %d", errType, got, want)
		}
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should be nil")
	}
}
