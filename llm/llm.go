// Package llm defines the contract the engine needs from a completion
// service. The service is a stateless black box: one prompt in, one
// generated text out.
package llm

import "context"

// Client is the completion service adapter.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, prompt string) (string, error)

// Complete implements Client.
func (f ClientFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
