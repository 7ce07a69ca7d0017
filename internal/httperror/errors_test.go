package httperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/Adi4512/nextjsaichattool/internal/admission"
	"github.com/Adi4512/nextjsaichattool/internal/upstream"
)

func rejectFrom(t *testing.T, limits admission.Limits, message string) error {
	t.Helper()
	state := admission.NewState(limits, nil)
	pipeline := admission.NewPipeline(limits, state, nil)
	_, err := pipeline.Admit("ip", func() (string, error) { return message, nil })
	if err == nil {
		t.Fatalf("expected rejection")
	}
	return err
}

func TestFromErrorMapsRejections(t *testing.T) {
	limits := admission.DefaultLimits()

	status, body := Response(rejectFrom(t, limits, ""))
	if status != http.StatusBadRequest || body.Error != "Message is required." {
		t.Fatalf("unexpected invalid input mapping: %d %+v", status, body)
	}

	long := make([]rune, 501)
	for i := range long {
		long[i] = 'a'
	}
	status, body = Response(rejectFrom(t, limits, string(long)))
	if status != http.StatusBadRequest || body.Error != "Message too long. Maximum 500 characters allowed." {
		t.Fatalf("unexpected too long mapping: %d %+v", status, body)
	}

	limits.MaxDailyTokens = 1
	status, body = Response(fmt.Errorf("wrapped: %w", rejectFrom(t, limits, "ab")))
	if status != http.StatusTooManyRequests || body.Error != "Daily token limit exceeded" {
		t.Fatalf("unexpected quota mapping: %d %+v", status, body)
	}
}

func TestFromErrorHidesInternalDetail(t *testing.T) {
	status, body := Response(errors.New("db password leaked"))
	if status != http.StatusInternalServerError || body.Error != MessageInternal {
		t.Fatalf("unexpected internal mapping: %d %+v", status, body)
	}

	status, body = Response(&upstream.Error{Provider: "openrouter", Status: 502, Message: "bad gateway"})
	if status != http.StatusInternalServerError || body.Error != MessageInternal {
		t.Fatalf("unexpected upstream mapping: %d %+v", status, body)
	}
	if FromError(&upstream.Error{Provider: "x"}).Code != ErrorCodeUpstream {
		t.Fatalf("expected upstream code")
	}
}

func TestFromErrorValidation(t *testing.T) {
	type payload struct {
		Message string `validate:"required"`
	}
	err := validator.New().Struct(payload{})
	apiErr := FromError(err)
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != admission.MessageRequired {
		t.Fatalf("unexpected validation mapping: %+v", apiErr)
	}
}

func TestFromErrorPassThrough(t *testing.T) {
	if FromError(nil) != nil {
		t.Fatalf("expected nil")
	}
	status, body := Response(NewUnauthorized())
	if status != http.StatusUnauthorized || body.Error != "Unauthorized" {
		t.Fatalf("unexpected unauthorized mapping: %d %+v", status, body)
	}
	if status, _ := Response(nil); status != http.StatusInternalServerError {
		t.Fatalf("nil error must map to internal error")
	}
}
