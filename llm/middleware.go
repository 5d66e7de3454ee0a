package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fairlabor/pobot/errors"
	"github.com/fairlabor/pobot/pkg/logging"
)

// Middleware wraps a Client with additional behaviour.
type Middleware func(Client) Client

// Chain applies middlewares to a client, first middleware outermost.
func Chain(client Client, middlewares ...Middleware) Client {
	for i := len(middlewares) - 1; i >= 0; i-- {
		client = middlewares[i](client)
	}
	return client
}

// WithLogging logs every completion round-trip with its duration.
func WithLogging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = logging.WithComponent("llm")
	}
	return func(next Client) Client {
		return ClientFunc(func(ctx context.Context, prompt string) (string, error) {
			start := time.Now()
			response, err := next.Complete(ctx, prompt)
			if err != nil {
				logger.Error("completion failed",
					"prompt_chars", len(prompt),
					"duration", time.Since(start),
					"error", err)
				return "", err
			}
			logger.Debug("completion round-trip",
				"prompt_chars", len(prompt),
				"response_chars", len(response),
				"duration", time.Since(start))
			return response, nil
		})
	}
}

// WithValidation rejects empty prompts before they reach the service.
func WithValidation() Middleware {
	return func(next Client) Client {
		return ClientFunc(func(ctx context.Context, prompt string) (string, error) {
			if strings.TrimSpace(prompt) == "" {
				return "", fmt.Errorf("%w: prompt cannot be empty", errors.ErrInvalidInput)
			}
			return next.Complete(ctx, prompt)
		})
	}
}
