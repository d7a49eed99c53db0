package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{CodeInvalidParam, http.StatusBadRequest},
		{CodeTokenInvalid, http.StatusUnauthorized},
		{CodeTooManyRequests, http.StatusTooManyRequests},
		{CodeGenerationFailed, http.StatusInternalServerError},
		{CodeLLMProviderError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := New(tt.code, "x").HTTPStatus; got != tt.want {
			t.Errorf("code %s: status = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestWrapChain(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := fmt.Errorf("turn: %w", Wrap(cause, CodeLLMProviderError, "LLM provider error"))

	if !IsAppError(err) {
		t.Fatal("wrapped AppError should be found in chain")
	}
	if !HasCode(err, CodeLLMProviderError) {
		t.Fatal("code should match")
	}
	if !stderrors.Is(err, ErrLLMProvider) {
		t.Fatal("errors.Is should match by code")
	}
	if !stderrors.Is(err, cause) {
		t.Fatal("cause should be reachable")
	}
	if AsAppError(stderrors.New("plain")).Code != CodeUnknown {
		t.Fatal("plain errors map to CodeUnknown")
	}
}

func TestWithDetailDoesNotMutateSentinel(t *testing.T) {
	e := ErrGenerationFailed.WithDetail("missing setting")
	if ErrGenerationFailed.Detail != "" {
		t.Fatal("sentinel mutated")
	}
	if e.Detail != "missing setting" {
		t.Fatalf("detail = %q", e.Detail)
	}
}
