package report

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/fairlabor/pobot/message"
	"github.com/fairlabor/pobot/policy"
	"github.com/fairlabor/pobot/prompt"
	"github.com/fairlabor/pobot/session"
	"github.com/fairlabor/pobot/session/store"
)

type pipelineClient struct {
	factory     string
	summary     string
	correlation string

	lastCorrelationPrompt string
}

func (c *pipelineClient) Complete(ctx context.Context, p string) (string, error) {
	switch {
	case strings.Contains(p, "extract the factory name"):
		return c.factory, nil
	case strings.Contains(p, "incidents that the user mentioned"):
		return c.summary, nil
	case strings.Contains(p, "legal analyst assessing corporate compliance"):
		c.lastCorrelationPrompt = p
		return c.correlation, nil
	}
	return "", fmt.Errorf("unexpected prompt: %.60s", p)
}

const structuredAnswer = "```json\n" + `{
  "complaint_summary": "Worker paid recruitment fees and had documents taken.",
  "incidents": [
    "Paid a recruitment fee of 3000 USD",
    "Passport confiscated on arrival"
  ],
  "policy_violations": [
    {
      "policy_category": "Recruitment Fees",
      "related_incidents": ["Paid a recruitment fee of 3000 USD"],
      "violation_description": "The worker paid for the job in breach of the employer-pays principle."
    },
    {
      "policy_category": "Confiscation of Documents",
      "related_incidents": ["Passport confiscated on arrival"],
      "violation_description": "The passport was withheld."
    }
  ]
}` + "\n```"

func pipelineFixture(t *testing.T, client *pipelineClient) (*Generator, *session.Session, *store.InMemoryStore) {
	t.Helper()
	sessions := store.NewInMemoryStore()
	sess := session.New("sess1")
	sess.Stage = session.StageCaseHandling
	sess.AppendMessage(message.New(message.RoleUser, "I paid a recruitment fee"))
	sess.AppendMessage(message.New(message.RoleAssistant, "I am sorry to hear that"))
	sess.AppendMessage(message.New(message.RoleUser, "they also took my passport"))
	if err := sessions.Save(context.Background(), sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	policies := policy.NewInMemoryStore(
		[]policy.SupplierLink{
			{Factory: "Golden Textile Co.", Buyer: "Northwind Apparel"},
		},
		[]policy.CompanyPolicies{
			{
				Company: "Northwind Apparel",
				Policies: map[string]policy.Ref{
					policy.CategoryRecruitmentFees: {
						Text:         "Workers shall never pay for their jobs.",
						DocumentName: "Supplier Code of Conduct",
						DocumentURL:  "https://example.com/code.pdf",
					},
					policy.CategoryDocumentConfiscation: {
						Text:         "Identity documents stay with the worker.",
						DocumentName: "Migrant Worker Policy",
						DocumentURL:  "https://example.com/migrant.pdf",
					},
				},
			},
		},
	)
	return NewGenerator(client, prompt.DefaultManager(), sessions, policies), sess, sessions
}

func TestGenerateStructured(t *testing.T) {
	client := &pipelineClient{
		factory:     "Golden Textile Co.",
		summary:     "The Worker Paid Fees And Lost The Passport",
		correlation: structuredAnswer,
	}
	gen, sess, sessions := pipelineFixture(t, client)

	result, err := gen.Generate(context.Background(), sess, "history")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if result.FactoryName != "Golden Textile Co." {
		t.Errorf("Factory is %q", result.FactoryName)
	}
	if len(result.Buyers) != 1 || result.Buyers[0] != "Northwind Apparel" {
		t.Fatalf("Buyers: %v", result.Buyers)
	}
	if result.Reply != ReplyScheduled {
		t.Errorf("Reply is %q", result.Reply)
	}

	if sess.IncidentDescription != "the worker paid fees and lost the passport" {
		t.Errorf("Summary not lowercased: %q", sess.IncidentDescription)
	}

	if len(result.Analyses) != 1 {
		t.Fatalf("Expected 1 analysis, got %d", len(result.Analyses))
	}
	analysis := result.Analyses[0]
	if analysis.Outcome != OutcomeStructured {
		t.Fatalf("Expected structured outcome, got %s", analysis.Outcome)
	}

	rep := analysis.Report
	if rep.ComplaintSummary == "" || len(rep.Incidents) != 2 {
		t.Errorf("Structured fields missing: %+v", rep)
	}
	if strings.Contains(rep.RawText, "```") {
		t.Error("Code fences survived into RawText")
	}
	if len(rep.PolicyViolations) != 2 {
		t.Fatalf("Expected 2 violations, got %d", len(rep.PolicyViolations))
	}

	// Exact category match.
	first := rep.PolicyViolations[0]
	if first.Reference == nil || first.Reference.DocumentName != "Supplier Code of Conduct" {
		t.Errorf("Exact-match reference wrong: %+v", first.Reference)
	}
	// "Confiscation of Documents" is not a known category but shares a
	// word with "Document Confiscation".
	second := rep.PolicyViolations[1]
	if second.Reference == nil || second.Reference.DocumentName != "Migrant Worker Policy" {
		t.Errorf("Word-overlap reference wrong: %+v", second.Reference)
	}

	// Everything is persisted.
	stored, _ := sessions.Load(context.Background(), "sess1")
	if len(stored.BuyerCompanies) != 1 || len(stored.Reports) != 1 {
		t.Errorf("Persisted state: buyers=%d reports=%d", len(stored.BuyerCompanies), len(stored.Reports))
	}
	if stored.FactoryName != "Golden Textile Co." {
		t.Errorf("Factory not persisted: %q", stored.FactoryName)
	}
}

func TestCorrelationPromptListsPolicies(t *testing.T) {
	client := &pipelineClient{
		factory:     "Golden Textile Co.",
		summary:     "summary",
		correlation: structuredAnswer,
	}
	gen, sess, _ := pipelineFixture(t, client)

	if _, err := gen.Generate(context.Background(), sess, "history"); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// Policy texts are tagged with their category in brackets, fees first
	// per the fixed category order.
	fees := "[Recruitment Fees] Workers shall never pay for their jobs."
	docs := "[Document Confiscation] Identity documents stay with the worker."
	p := client.lastCorrelationPrompt
	if !strings.Contains(p, fees) || !strings.Contains(p, docs) {
		t.Fatalf("Policy blocks missing from correlation prompt: %.200s", p)
	}
	if strings.Index(p, fees) > strings.Index(p, docs) {
		t.Error("Policy blocks out of category order")
	}
}

func TestGenerateRawFallback(t *testing.T) {
	client := &pipelineClient{
		factory:     "Golden Textile Co.",
		summary:     "summary",
		correlation: "I cannot produce JSON today, sorry.",
	}
	gen, sess, _ := pipelineFixture(t, client)

	result, err := gen.Generate(context.Background(), sess, "history")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(result.Analyses) != 1 {
		t.Fatalf("Expected 1 analysis, got %d", len(result.Analyses))
	}
	analysis := result.Analyses[0]
	if analysis.Outcome != OutcomeRaw {
		t.Fatalf("Expected raw outcome, got %s", analysis.Outcome)
	}
	if analysis.Report.RawText != "I cannot produce JSON today, sorry." {
		t.Errorf("RawText is %q", analysis.Report.RawText)
	}
	if len(analysis.Report.PolicyViolations) != 0 {
		t.Error("Raw outcome should carry no structured violations")
	}
	if result.Reply != ReplyScheduled {
		t.Errorf("Reply is %q", result.Reply)
	}
}

func TestGenerateNoBuyers(t *testing.T) {
	client := &pipelineClient{
		factory: "Unknown Factory",
		summary: "summary",
	}
	gen, sess, sessions := pipelineFixture(t, client)

	result, err := gen.Generate(context.Background(), sess, "history")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(result.Buyers) != 0 {
		t.Errorf("Buyers: %v", result.Buyers)
	}
	if result.Reply != ReplyNoBuyers {
		t.Errorf("Reply is %q", result.Reply)
	}
	if len(result.Analyses) != 0 {
		t.Error("No analyses expected without buyers")
	}

	stored, _ := sessions.Load(context.Background(), "sess1")
	if len(stored.Reports) != 0 {
		t.Errorf("Expected no persisted reports, got %d", len(stored.Reports))
	}
}

func TestGenerateRerunKeepsBuyersUnique(t *testing.T) {
	client := &pipelineClient{
		factory:     "Golden Textile Co.",
		summary:     "summary",
		correlation: structuredAnswer,
	}
	gen, sess, _ := pipelineFixture(t, client)

	if _, err := gen.Generate(context.Background(), sess, "history"); err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	if _, err := gen.Generate(context.Background(), sess, "history"); err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if len(sess.BuyerCompanies) != 1 {
		t.Errorf("Buyer recorded twice: %v", sess.BuyerCompanies)
	}
}

func TestCorrelateNoPolicies(t *testing.T) {
	client := &pipelineClient{}
	gen, _, _ := pipelineFixture(t, client)

	analysis, err := gen.correlate(context.Background(), "Unlisted Corp", "incident")
	if err != nil {
		t.Fatalf("correlate failed: %v", err)
	}
	if analysis.Outcome != OutcomeRaw {
		t.Errorf("Expected raw outcome, got %s", analysis.Outcome)
	}
	if !strings.Contains(analysis.Report.RawText, "no policy information") {
		t.Errorf("RawText is %q", analysis.Report.RawText)
	}
}
