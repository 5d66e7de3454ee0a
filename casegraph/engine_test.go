package casegraph

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/fairlabor/pobot/message"
	"github.com/fairlabor/pobot/prompt"
	"github.com/fairlabor/pobot/session"
	"github.com/fairlabor/pobot/session/store"
)

// scriptedClient routes prompts to canned answers by template markers.
type scriptedClient struct {
	judgeAnswers []string
	judgeErr     error
	sector       string
}

func (c *scriptedClient) Complete(ctx context.Context, p string) (string, error) {
	switch {
	case strings.Contains(p, "conversation state evaluator"):
		if c.judgeErr != nil {
			return "", c.judgeErr
		}
		if len(c.judgeAnswers) == 0 {
			return "No", nil
		}
		answer := c.judgeAnswers[0]
		c.judgeAnswers = c.judgeAnswers[1:]
		return answer, nil
	case strings.Contains(p, "smoothly transition"):
		return "transition reply", nil
	case strings.Contains(p, "Acknowledge the user's input"):
		return "ack reply", nil
	case strings.Contains(p, "industrial sector extraction agent"):
		if c.sector == "" {
			return "None", nil
		}
		return c.sector, nil
	}
	return "", fmt.Errorf("unexpected prompt: %.60s", p)
}

func newEngineFixture(t *testing.T, client *scriptedClient, caseType, node string) (*Engine, *session.Session, *Graph) {
	t.Helper()
	sessions := store.NewInMemoryStore()
	sess := session.New("sess1")
	sess.Stage = session.StageCaseHandling
	if err := sess.SetCaseType(caseType); err != nil {
		t.Fatalf("SetCaseType failed: %v", err)
	}
	sess.CurrentNode = node
	sess.AppendMessage(message.New(message.RoleAssistant, "previous question"))
	if err := sessions.Save(context.Background(), sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	g, ok := ForCaseType(caseType)
	if !ok {
		t.Fatalf("No graph for %s", caseType)
	}
	return NewEngine(client, prompt.DefaultManager(), sessions), sess, g
}

func TestStepStaysOnNo(t *testing.T) {
	client := &scriptedClient{judgeAnswers: []string{"No"}}
	engine, sess, g := newEngineFixture(t, client, CaseLenderHarassment, "document_interactions")

	step, err := engine.Step(context.Background(), sess, g, "history", "some answer")
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if step.Advanced {
		t.Error("Expected no advance on No")
	}
	if step.Node != "document_interactions" {
		t.Errorf("Node moved to %s", step.Node)
	}
	if step.Reply != "ack reply" {
		t.Errorf("Unexpected reply %q", step.Reply)
	}
}

func TestStepStaysOnMalformedJudgeAnswer(t *testing.T) {
	client := &scriptedClient{judgeAnswers: []string{"Maybe, it depends"}}
	engine, sess, g := newEngineFixture(t, client, CaseLenderHarassment, "document_interactions")

	step, err := engine.Step(context.Background(), sess, g, "history", "some answer")
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if step.Advanced {
		t.Error("Malformed judge answer must not advance")
	}
}

func TestStepStaysOnJudgeError(t *testing.T) {
	client := &scriptedClient{judgeErr: fmt.Errorf("service down")}
	engine, sess, g := newEngineFixture(t, client, CaseLenderHarassment, "document_interactions")

	step, err := engine.Step(context.Background(), sess, g, "history", "some answer")
	if err != nil {
		t.Fatalf("Judge failure should not fail the turn: %v", err)
	}
	if step.Advanced {
		t.Error("Judge failure must not advance")
	}
}

func TestStepAdvances(t *testing.T) {
	client := &scriptedClient{judgeAnswers: []string{"Yes"}}
	engine, sess, g := newEngineFixture(t, client, CaseLenderHarassment, "document_interactions")

	step, err := engine.Step(context.Background(), sess, g, "history", "dates and times")
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if !step.Advanced {
		t.Fatal("Expected advance on Yes")
	}
	if step.Node != "check_loan_terms" {
		t.Errorf("Advanced to %s, want check_loan_terms", step.Node)
	}
	if step.Reply != "transition reply" {
		t.Errorf("Unexpected reply %q", step.Reply)
	}
	if sess.CurrentNode != "check_loan_terms" {
		t.Errorf("Session node is %s", sess.CurrentNode)
	}
}

func TestStepReachesReport(t *testing.T) {
	client := &scriptedClient{judgeAnswers: []string{"Yes"}}
	engine, sess, g := newEngineFixture(t, client, CaseEmployerExploit, "ask_for_proof")

	step, err := engine.Step(context.Background(), sess, g, "history", "here are the pay slips")
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if !step.ReportDue {
		t.Fatal("Expected ReportDue at the report step")
	}
	if step.Node != NodeReport {
		t.Errorf("Node is %s, want %s", step.Node, NodeReport)
	}
	// The reply acknowledges the completed step rather than asking a new
	// question.
	if step.Reply != "ack reply" {
		t.Errorf("Unexpected reply %q", step.Reply)
	}
}

func TestStepExtractsSector(t *testing.T) {
	client := &scriptedClient{judgeAnswers: []string{"Yes"}, sector: "Textiles"}
	engine, sess, g := newEngineFixture(t, client, CaseEmployerExploit, "collect_basic_info")

	if _, err := engine.Step(context.Background(), sess, g, "history", "we sew garments"); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if sess.IndustrialSector != "Textiles" {
		t.Errorf("Sector is %q, want Textiles", sess.IndustrialSector)
	}
}

func TestStepSectorMissIgnored(t *testing.T) {
	client := &scriptedClient{judgeAnswers: []string{"No"}}
	engine, sess, g := newEngineFixture(t, client, CaseEmployerExploit, "collect_basic_info")

	if _, err := engine.Step(context.Background(), sess, g, "history", "hello"); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if sess.IndustrialSector != "" {
		t.Errorf("Sector should stay empty, got %q", sess.IndustrialSector)
	}
}
