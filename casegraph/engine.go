package casegraph

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fairlabor/pobot/errors"
	"github.com/fairlabor/pobot/llm"
	"github.com/fairlabor/pobot/pkg/logging"
	"github.com/fairlabor/pobot/prompt"
	"github.com/fairlabor/pobot/session"
)

// Step is the outcome of one engine turn.
type Step struct {
	// Reply is the next message for the user, in the working language.
	Reply string
	// Node is the current step after the turn.
	Node string
	// Advanced reports whether the turn moved to a new step.
	Advanced bool
	// ReportDue is set when the turn reached the report step; the caller
	// runs the report pipeline in the same turn.
	ReportDue bool
}

// Engine walks a session through its case graph one turn at a time.
type Engine struct {
	client  llm.Client
	prompts *prompt.Manager
	store   session.Store
	logger  *slog.Logger
}

// NewEngine creates a graph engine.
func NewEngine(client llm.Client, prompts *prompt.Manager, store session.Store) *Engine {
	return &Engine{
		client:  client,
		prompts: prompts,
		store:   store,
		logger:  logging.WithComponent("casegraph"),
	}
}

// Begin produces the opening reply for a freshly classified case. The
// session's current node must already be set to the start node.
func (e *Engine) Begin(ctx context.Context, g *Graph, history, utterance string) (string, error) {
	return e.acknowledge(ctx, g, NodeStart, history, utterance)
}

// Step runs one turn: judge whether the current step is complete, advance
// along the first outgoing edge when it is, and produce the reply. A judge
// failure is treated as an incomplete step rather than a turn failure.
func (e *Engine) Step(ctx context.Context, sess *session.Session, g *Graph, history, utterance string) (Step, error) {
	node := sess.CurrentNode
	if node == "" {
		node = NodeStart
		sess.CurrentNode = node
	}
	if _, ok := g.Node(node); !ok {
		return Step{}, fmt.Errorf("casegraph: node %q in case %q: %w", node, g.CaseType(), errors.ErrNotFound)
	}

	// The basic-info step of an exploitation case doubles as a chance to
	// pick up the factory's industrial sector.
	if node == "collect_basic_info" {
		e.extractSector(ctx, sess, utterance)
	}

	if e.judge(ctx, g, node, sess, utterance) == Advance {
		next, ok := g.Successor(node)
		if !ok {
			reply, err := e.acknowledge(ctx, g, node, history, utterance)
			if err != nil {
				return Step{}, err
			}
			return Step{Reply: reply, Node: node}, nil
		}

		sess.CurrentNode = next
		if err := e.store.Save(ctx, sess); err != nil {
			return Step{}, err
		}
		e.logger.Info("step advanced", "session_id", sess.ID, "from", node, "to", next)

		if next == NodeReport {
			reply, err := e.acknowledge(ctx, g, node, history, utterance)
			if err != nil {
				return Step{}, err
			}
			return Step{Reply: reply, Node: next, Advanced: true, ReportDue: true}, nil
		}

		reply, err := e.transition(ctx, g, node, next, history, utterance)
		if err != nil {
			return Step{}, err
		}
		return Step{Reply: reply, Node: next, Advanced: true}, nil
	}

	reply, err := e.acknowledge(ctx, g, node, history, utterance)
	if err != nil {
		return Step{}, err
	}
	return Step{Reply: reply, Node: node}, nil
}

// judge asks the evaluator whether the user's reply completes the current
// step. Any judge failure keeps the conversation where it is.
func (e *Engine) judge(ctx context.Context, g *Graph, node string, sess *session.Session, utterance string) Decision {
	rendered, err := e.prompts.Render(prompt.TmplNavigationJudge, map[string]any{
		"Requirement": g.Requirement(node),
		"BotMessage":  sess.LastAssistantMessage(),
		"UserMessage": utterance,
	})
	if err != nil {
		e.logger.Warn("judge prompt failed", "session_id", sess.ID, "node", node, "error", err)
		return Stay
	}
	answer, err := e.client.Complete(ctx, rendered)
	if err != nil {
		e.logger.Warn("judge call failed", "session_id", sess.ID, "node", node, "error", err)
		return Stay
	}
	return ParseDecision(answer)
}

func (e *Engine) acknowledge(ctx context.Context, g *Graph, node, history, utterance string) (string, error) {
	name := prompt.TmplNodeAcknowledge
	vars := map[string]any{
		"Requirement": g.Requirement(node),
		"History":     history,
		"UserMessage": utterance,
	}
	if strings.TrimSpace(utterance) == "" {
		name = prompt.TmplNodeQuestion
	}
	rendered, err := e.prompts.Render(name, vars)
	if err != nil {
		return "", err
	}
	return e.client.Complete(ctx, rendered)
}

func (e *Engine) transition(ctx context.Context, g *Graph, completed, next, history, utterance string) (string, error) {
	rendered, err := e.prompts.Render(prompt.TmplNodeTransition, map[string]any{
		"Completed":   g.Requirement(completed),
		"Next":        g.Requirement(next),
		"History":     history,
		"UserMessage": utterance,
	})
	if err != nil {
		return "", err
	}
	return e.client.Complete(ctx, rendered)
}

// extractSector tries to pull the factory's industrial sector out of the
// utterance. Misses and service failures are ignored.
func (e *Engine) extractSector(ctx context.Context, sess *session.Session, utterance string) {
	rendered, err := e.prompts.Render(prompt.TmplSectorExtract, map[string]any{"Message": utterance})
	if err != nil {
		return
	}
	raw, err := e.client.Complete(ctx, rendered)
	if err != nil {
		e.logger.Warn("sector extraction failed", "session_id", sess.ID, "error", err)
		return
	}
	sector := strings.TrimSpace(raw)
	switch strings.ToLower(sector) {
	case "", "none", "unknown", "null":
		return
	}
	sess.IndustrialSector = sector
	if err := e.store.Save(ctx, sess); err != nil {
		e.logger.Warn("sector save failed", "session_id", sess.ID, "error", err)
	}
}
