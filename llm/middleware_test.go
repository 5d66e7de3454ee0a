package llm

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/fairlabor/pobot/errors"
)

func TestChainOrder(t *testing.T) {
	var calls []string
	tag := func(name string) Middleware {
		return func(next Client) Client {
			return ClientFunc(func(ctx context.Context, prompt string) (string, error) {
				calls = append(calls, name)
				return next.Complete(ctx, prompt)
			})
		}
	}
	base := ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		calls = append(calls, "base")
		return "ok", nil
	})

	out, err := Chain(base, tag("outer"), tag("inner")).Complete(context.Background(), "prompt")
	if err != nil || out != "ok" {
		t.Fatalf("Complete failed: %q %v", out, err)
	}
	want := []string{"outer", "inner", "base"}
	if len(calls) != len(want) {
		t.Fatalf("Calls: %v", calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("Call %d is %s, want %s", i, calls[i], want[i])
		}
	}
}

func TestWithValidationRejectsEmptyPrompt(t *testing.T) {
	base := ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		t.Error("Base client should not be reached")
		return "", nil
	})
	client := Chain(base, WithValidation())

	_, err := client.Complete(context.Background(), "   ")
	if !stderrors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestWithValidationPassesThrough(t *testing.T) {
	base := ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		return "answer", nil
	})
	out, err := Chain(base, WithValidation()).Complete(context.Background(), "a question")
	if err != nil || out != "answer" {
		t.Errorf("Got %q %v", out, err)
	}
}
