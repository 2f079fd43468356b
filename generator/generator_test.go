package generator

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jonwraymond/genops/resilience"
)

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want error
	}{
		{name: "valid", req: Request{Operation: "rewrite", Prompt: "hello"}},
		{name: "missing operation", req: Request{Prompt: "hello"}, want: ErrMissingOperation},
		{name: "blank operation", req: Request{Operation: "  ", Prompt: "hello"}, want: ErrMissingOperation},
		{name: "empty prompt", req: Request{Operation: "rewrite"}, want: ErrEmptyPrompt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFunc_Generate(t *testing.T) {
	var got Request
	g := Func(func(_ context.Context, req Request) (json.RawMessage, error) {
		got = req
		return json.RawMessage(`{"ok":true}`), nil
	})

	out, err := g.Generate(context.Background(), Request{Operation: "op", Prompt: "p"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if string(out) != `{"ok":true}` {
		t.Errorf("Generate() = %s", out)
	}
	if got.Operation != "op" || got.Prompt != "p" {
		t.Errorf("request not passed through: %+v", got)
	}
}

func TestStatusError(t *testing.T) {
	inner := errors.New("raw")
	err := &StatusError{Code: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota exceeded", Err: inner}

	if err.Error() != "generator: RESOURCE_EXHAUSTED (429): quota exceeded" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("StatusError should unwrap to the raw error")
	}
	if err.StatusCode() != 429 {
		t.Errorf("StatusCode() = %d", err.StatusCode())
	}

	bare := &StatusError{Code: 400, Message: "bad"}
	if bare.Error() != "generator: status 400: bad" {
		t.Errorf("Error() = %q", bare.Error())
	}
}

func TestStatusError_Classification(t *testing.T) {
	tests := []struct {
		code int
		want resilience.Class
	}{
		{429, resilience.ClassRateLimited},
		{503, resilience.ClassOverloaded},
		{500, resilience.ClassOverloaded},
		{400, resilience.ClassPermanent},
		{403, resilience.ClassPermanent},
	}
	for _, tt := range tests {
		err := error(&StatusError{Code: tt.code, Message: "x"})
		if got := resilience.Classify(err); got != tt.want {
			t.Errorf("Classify(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestSentinels_ArePermanent(t *testing.T) {
	for _, err := range []error{ErrEmptyResponse, ErrInvalidResponse, ErrBlocked, ErrEmptyPrompt} {
		if resilience.IsRetryable(err) {
			t.Errorf("%v should not be retryable", err)
		}
	}
}
