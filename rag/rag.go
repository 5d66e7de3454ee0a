// Package rag answers legal-rights inquiries from a document corpus. The
// user's questions are refined into one search query, passages are
// retrieved, and the answer is generated under fixed guidance rules.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fairlabor/pobot/llm"
	"github.com/fairlabor/pobot/pkg/logging"
	"github.com/fairlabor/pobot/prompt"
)

// Passage is one retrieved piece of context.
type Passage struct {
	Content string
	Source  string
	Score   float64
}

// Retriever finds the passages most relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]Passage, error)
}

// Advisor generates grounded answers for legal-rights inquiries.
type Advisor struct {
	client    llm.Client
	prompts   *prompt.Manager
	retriever Retriever
	topK      int
	logger    *slog.Logger
}

// NewAdvisor creates an advisor that retrieves one passage per answer.
func NewAdvisor(client llm.Client, prompts *prompt.Manager, retriever Retriever) *Advisor {
	return &Advisor{
		client:    client,
		prompts:   prompts,
		retriever: retriever,
		topK:      1,
		logger:    logging.WithComponent("rag"),
	}
}

// SetTopK overrides how many passages are retrieved per answer.
func (a *Advisor) SetTopK(k int) {
	if k > 0 {
		a.topK = k
	}
}

// Answer responds to the latest query. queries holds everything the user
// asked so far in chronological order, the latest query last; history is
// the rendered conversation.
func (a *Advisor) Answer(ctx context.Context, queries []string, history string) (string, error) {
	if len(queries) == 0 {
		return "", fmt.Errorf("rag: no query to answer")
	}
	current := queries[len(queries)-1]

	refined, err := a.refineQuery(ctx, queries)
	if err != nil {
		return "", err
	}

	passages, err := a.retriever.Retrieve(ctx, refined, a.topK)
	if err != nil {
		return "", err
	}
	var contents []string
	for _, p := range passages {
		contents = append(contents, p.Content)
	}
	a.logger.Info("context retrieved", "refined_query", refined, "passages", len(passages))

	rendered, err := a.prompts.Render(prompt.TmplContextAnswer, map[string]any{
		"Context": strings.Join(contents, "\n\n"),
		"History": history,
		"Query":   current,
	})
	if err != nil {
		return "", err
	}
	return a.client.Complete(ctx, rendered)
}

// refineQuery folds every query the user asked into one retrieval query.
// A single question is used as is.
func (a *Advisor) refineQuery(ctx context.Context, queries []string) (string, error) {
	if len(queries) <= 1 {
		return queries[len(queries)-1], nil
	}
	b := prompt.NewBuilder()
	for i, q := range queries {
		b.AddFormat("Query %d: %s\n", i+1, q)
	}
	rendered, err := a.prompts.Render(prompt.TmplQueryRefine, map[string]any{
		"Queries": strings.TrimSuffix(b.Build(), "\n"),
	})
	if err != nil {
		return "", err
	}
	refined, err := a.client.Complete(ctx, rendered)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(refined), nil
}
