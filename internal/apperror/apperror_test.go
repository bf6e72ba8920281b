package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("bad input"), http.StatusBadRequest},
		{"auth", Auth("no token"), http.StatusUnauthorized},
		{"not found", NotFound("missing"), http.StatusNotFound},
		{"conflict", Conflict("taken"), http.StatusConflict},
		{"dependency", Dependency("media down", errors.New("timeout")), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("outer: %w", NotFound("inner")), http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StatusOf(tc.err); got != tc.want {
				t.Errorf("StatusOf() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestErrorsIs(t *testing.T) {
	err := fmt.Errorf("playlist: %w", NotFound("Playlist not found."))

	if !errors.Is(err, ErrNotFound) {
		t.Error("expected errors.Is to match ErrNotFound")
	}
	if errors.Is(err, ErrValidation) {
		t.Error("did not expect a validation match")
	}
}

func TestFromWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("disk full")
	appErr := From(cause)

	if appErr.Kind != KindInternal {
		t.Fatalf("expected internal kind, got %s", appErr.Kind)
	}
	if !errors.Is(appErr, cause) {
		t.Error("expected cause to be preserved")
	}
	if From(nil) != nil {
		t.Error("From(nil) should be nil")
	}
}
