// Package orchestrator ties the conversation layers together: profile
// intake, case classification, the case-graph walk, grounded legal-rights
// answers, and the closing report pipeline. One HandleTurn call processes
// one user utterance end to end.
package orchestrator

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/fairlabor/pobot/casegraph"
	"github.com/fairlabor/pobot/classify"
	"github.com/fairlabor/pobot/errors"
	"github.com/fairlabor/pobot/intake"
	"github.com/fairlabor/pobot/llm"
	"github.com/fairlabor/pobot/message"
	"github.com/fairlabor/pobot/pkg/logging"
	"github.com/fairlabor/pobot/pkg/telemetry"
	"github.com/fairlabor/pobot/policy"
	"github.com/fairlabor/pobot/prompt"
	"github.com/fairlabor/pobot/rag"
	"github.com/fairlabor/pobot/report"
	"github.com/fairlabor/pobot/session"
)

// replyFallback is sent when the session is in a state no handler claims.
const replyFallback = "I'm sorry, I'm having trouble understanding. Could you please provide more details about your situation?"

// Turn is the outcome of processing one utterance. Most turns produce one
// reply; the turn that closes a case produces the step acknowledgment and
// the pipeline's closing message.
type Turn struct {
	SessionID string
	Replies   []string
	Completed bool
}

// Reply returns the last reply of the turn.
func (t *Turn) Reply() string {
	if len(t.Replies) == 0 {
		return ""
	}
	return t.Replies[len(t.Replies)-1]
}

// Option customizes an orchestrator.
type Option func(*Orchestrator)

// WithPrompts replaces the default prompt set.
func WithPrompts(m *prompt.Manager) Option {
	return func(o *Orchestrator) { o.prompts = m }
}

// WithHistoryBudget truncates rendered history to a token budget.
func WithHistoryBudget(tokenizer prompt.Tokenizer, maxTokens int) Option {
	return func(o *Orchestrator) {
		o.tokenizer = tokenizer
		o.historyBudget = maxTokens
	}
}

// Orchestrator routes each turn to the handler owning the session's stage.
type Orchestrator struct {
	client   llm.Client
	sessions session.Store

	prompts       *prompt.Manager
	tokenizer     prompt.Tokenizer
	historyBudget int

	intake     *intake.Machine
	classifier *classify.Classifier
	engine     *casegraph.Engine
	reports    *report.Generator
	advisor    *rag.Advisor
	translator *intake.Translator

	logger *slog.Logger
}

// New wires an orchestrator from its backing services.
func New(client llm.Client, sessions session.Store, policies policy.Store, retriever rag.Retriever, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:   client,
		sessions: sessions,
		prompts:  prompt.DefaultManager(),
		logger:   logging.WithComponent("orchestrator"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	o.intake = intake.NewMachine(client, o.prompts, sessions)
	o.translator = o.intake.Translator()
	o.classifier = classify.New(client, o.prompts)
	o.engine = casegraph.NewEngine(client, o.prompts, sessions)
	o.reports = report.NewGenerator(client, o.prompts, sessions, policies)
	o.advisor = rag.NewAdvisor(client, o.prompts, retriever)
	return o
}

// HandleTurn processes one utterance for the session, creating the session
// on first contact. forceNew discards any in-progress conversation for the
// session identity before the turn runs. The user message is committed
// before any downstream work so a mid-turn failure never loses what the
// user said.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID, utterance string, forceNew bool) (_ *Turn, err error) {
	ctx, span := telemetry.Tracer("orchestrator").Start(ctx, "HandleTurn")
	defer func() { telemetry.End(span, err) }()

	if forceNew {
		if err := o.Reset(ctx, sessionID); err != nil {
			return nil, err
		}
	}

	sess, err := o.loadOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	userMsg := message.New(message.RoleUser, utterance)
	sess.AppendMessage(userMsg)
	if err := o.sessions.AppendMessage(ctx, sess.ID, userMsg); err != nil {
		return nil, err
	}

	turn := &Turn{SessionID: sess.ID}

	if !o.intake.Done(sess) {
		reply, err := o.intake.Advance(ctx, sess, utterance)
		if err != nil {
			return nil, err
		}
		if err := o.respond(ctx, sess, turn, reply); err != nil {
			return nil, err
		}
		return turn, nil
	}

	switch sess.Stage {
	case session.StageCaseDescription:
		err = o.handleCaseDescription(ctx, sess, turn, utterance)
	case session.StageCaseHandling:
		err = o.handleCase(ctx, sess, turn, utterance)
	case session.StageComplete:
		err = o.respond(ctx, sess, turn, report.ReplyScheduled)
		turn.Completed = true
	default:
		err = o.respond(ctx, sess, turn, replyFallback)
	}
	if err != nil {
		return nil, err
	}
	return turn, nil
}

// Reset discards the session so the next turn starts a fresh conversation.
func (o *Orchestrator) Reset(ctx context.Context, sessionID string) error {
	err := o.sessions.Delete(ctx, sessionID)
	if stderrors.Is(err, errors.ErrNotFound) {
		return nil
	}
	return err
}

func (o *Orchestrator) loadOrCreate(ctx context.Context, sessionID string) (*session.Session, error) {
	sess, err := o.sessions.Load(ctx, sessionID)
	if err == nil {
		return sess, nil
	}
	if !stderrors.Is(err, errors.ErrNotFound) {
		return nil, err
	}
	sess = session.New(sessionID)
	if err := o.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	o.logger.Info("session created", "session_id", sessionID)
	return sess, nil
}

// handleCaseDescription classifies the problem and opens the case graph.
func (o *Orchestrator) handleCaseDescription(ctx context.Context, sess *session.Session, turn *Turn, utterance string) error {
	translated, err := o.translator.ToWorking(ctx, sess.Language, utterance)
	if err != nil {
		return err
	}

	if sess.CaseType != "" {
		sess.Stage = session.StageCaseHandling
		if err := o.sessions.Save(ctx, sess); err != nil {
			return err
		}
		return o.handleCase(ctx, sess, turn, utterance)
	}

	g, ok, err := o.classifier.Classify(ctx, translated)
	if err != nil {
		return err
	}
	if !ok {
		return o.respond(ctx, sess, turn, classify.ReplyUnresolved)
	}

	if err := sess.SetCaseType(g.CaseType()); err != nil {
		return err
	}
	sess.Stage = session.StageCaseHandling
	sess.CurrentNode = casegraph.NodeStart
	if err := o.sessions.Save(ctx, sess); err != nil {
		return err
	}
	o.logger.Info("case opened", "session_id", sess.ID, "case_type", g.CaseType())

	if g.CaseType() == casegraph.CaseLegalRights {
		return o.answerInquiry(ctx, sess, turn, translated)
	}

	reply, err := o.engine.Begin(ctx, g, o.history(sess), translated)
	if err != nil {
		return err
	}
	return o.respond(ctx, sess, turn, reply)
}

// handleCase walks one turn of the session's case graph.
func (o *Orchestrator) handleCase(ctx context.Context, sess *session.Session, turn *Turn, utterance string) error {
	g, ok := casegraph.ForCaseType(sess.CaseType)
	if !ok {
		return o.respond(ctx, sess, turn, replyFallback)
	}

	translated, err := o.translator.ToWorking(ctx, sess.Language, utterance)
	if err != nil {
		return err
	}

	if g.CaseType() == casegraph.CaseLegalRights {
		return o.answerInquiry(ctx, sess, turn, translated)
	}

	history := o.history(sess)
	step, err := o.engine.Step(ctx, sess, g, history, translated)
	if err != nil {
		return err
	}
	if err := o.respond(ctx, sess, turn, step.Reply); err != nil {
		return err
	}

	if step.ReportDue {
		result, err := o.reports.Generate(ctx, sess, history)
		if err != nil {
			return err
		}
		sess.Stage = session.StageComplete
		if err := o.sessions.Save(ctx, sess); err != nil {
			return err
		}
		turn.Completed = true
		o.logger.Info("case completed",
			"session_id", sess.ID,
			"factory", result.FactoryName,
			"buyers", len(result.Buyers))
		return o.respond(ctx, sess, turn, result.Reply)
	}
	return nil
}

// answerInquiry serves a legal-rights inquiry with the grounded advisor.
// The start node moves to the response node on first answer and stays
// there for follow-up questions.
func (o *Orchestrator) answerInquiry(ctx context.Context, sess *session.Session, turn *Turn, translated string) error {
	if sess.CurrentNode == casegraph.NodeStart {
		sess.CurrentNode = "rag_response"
		if err := o.sessions.Save(ctx, sess); err != nil {
			return err
		}
	}

	// Earlier queries are taken from the log; the current one is already
	// there in its original language, so substitute the translated form.
	queries := message.UserContents(sess.Messages)
	if len(queries) > 0 {
		queries[len(queries)-1] = translated
	}
	reply, err := o.advisor.Answer(ctx, queries, o.history(sess))
	if err != nil {
		return err
	}
	return o.respond(ctx, sess, turn, reply)
}

// respond translates a working-language reply for the user, records it,
// and adds it to the turn.
func (o *Orchestrator) respond(ctx context.Context, sess *session.Session, turn *Turn, reply string) error {
	out, err := o.translator.FromWorking(ctx, sess.Language, reply)
	if err != nil {
		return fmt.Errorf("translating reply: %w", err)
	}
	msg := message.New(message.RoleAssistant, out)
	sess.AppendMessage(msg)
	if err := o.sessions.AppendMessage(ctx, sess.ID, msg); err != nil {
		return err
	}
	turn.Replies = append(turn.Replies, out)
	return nil
}

func (o *Orchestrator) history(sess *session.Session) string {
	return prompt.RenderHistory(sess.Messages, o.tokenizer, o.historyBudget)
}
