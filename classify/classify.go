// Package classify resolves a free-text problem description to one of the
// supported case types.
package classify

import (
	"context"
	"log/slog"
	"strings"

	"github.com/fairlabor/pobot/casegraph"
	"github.com/fairlabor/pobot/llm"
	"github.com/fairlabor/pobot/pkg/logging"
	"github.com/fairlabor/pobot/prompt"
)

// ReplyUnresolved is sent when the description does not map to any case
// type and the user should be asked again.
const ReplyUnresolved = "I'm sorry, I couldn't identify the type of case you're describing. Could you provide more details about your situation?"

// Classifier maps a problem description to a case workflow graph.
type Classifier struct {
	client  llm.Client
	prompts *prompt.Manager
	logger  *slog.Logger
}

// New creates a classifier.
func New(client llm.Client, prompts *prompt.Manager) *Classifier {
	return &Classifier{
		client:  client,
		prompts: prompts,
		logger:  logging.WithComponent("classify"),
	}
}

// Classify asks the completion service for the case type and resolves it
// to a workflow graph. ok is false when the answer names no known case
// type; the canonical case type is available as the graph's CaseType.
func (c *Classifier) Classify(ctx context.Context, problem string) (*casegraph.Graph, bool, error) {
	rendered, err := c.prompts.Render(prompt.TmplCaseClassify, map[string]any{"Problem": problem})
	if err != nil {
		return nil, false, err
	}
	answer, err := c.client.Complete(ctx, rendered)
	if err != nil {
		return nil, false, err
	}

	answer = strings.TrimSpace(answer)
	g, ok := casegraph.ForCaseType(answer)
	if !ok {
		c.logger.Info("case type unresolved", "answer", answer)
		return nil, false, nil
	}
	c.logger.Info("case classified", "case_type", g.CaseType())
	return g, true, nil
}
