// Package report runs the violation-report pipeline that closes a case:
// extract the factory, find its buyer companies, summarize the incidents,
// and correlate them against each buyer's labor policies.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/fairlabor/pobot/llm"
	"github.com/fairlabor/pobot/message"
	"github.com/fairlabor/pobot/pkg/logging"
	"github.com/fairlabor/pobot/policy"
	"github.com/fairlabor/pobot/prompt"
	"github.com/fairlabor/pobot/session"
)

// Final replies of the pipeline, in the working language.
const (
	ReplyScheduled = "Thank you for sharing your case. We will analyze the policy violations and will follow-up with you very soon!!"
	ReplyNoBuyers  = "I couldn't find any buyer companies associated with this factory. Please check the factory name or provide more details."
)

// Outcome tags how a buyer analysis ended.
type Outcome int

const (
	// OutcomeStructured means the correlation answer parsed as JSON.
	OutcomeStructured Outcome = iota
	// OutcomeRaw means the answer could not be parsed and was kept as
	// plain text.
	OutcomeRaw
)

func (o Outcome) String() string {
	if o == OutcomeRaw {
		return "raw"
	}
	return "structured"
}

// Analysis is the result of correlating the incident summary against one
// buyer company's policies.
type Analysis struct {
	Buyer   string
	Outcome Outcome
	Report  *session.ViolationReport
}

// Result is the outcome of a full pipeline run.
type Result struct {
	FactoryName string
	Buyers      []string
	Analyses    []Analysis
	// Reply is the closing message for the user, in the working language.
	Reply string
}

// codeFences strips markdown code fences that models wrap JSON answers in.
var codeFences = regexp.MustCompile("(?m)^```(?:json)?|```$")

// Generator runs the report pipeline against the policy store.
type Generator struct {
	client   llm.Client
	prompts  *prompt.Manager
	sessions session.Store
	policies policy.Store
	logger   *slog.Logger
}

// NewGenerator creates a report generator.
func NewGenerator(client llm.Client, prompts *prompt.Manager, sessions session.Store, policies policy.Store) *Generator {
	return &Generator{
		client:   client,
		prompts:  prompts,
		sessions: sessions,
		policies: policies,
		logger:   logging.WithComponent("report"),
	}
}

// Generate runs the pipeline for a session that reached its report step.
// history is the rendered conversation so far. Every intermediate finding
// is persisted as soon as it is known.
func (g *Generator) Generate(ctx context.Context, sess *session.Session, history string) (*Result, error) {
	factory, err := g.extractFactory(ctx, history)
	if err != nil {
		return nil, err
	}
	sess.FactoryName = factory
	if err := g.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	g.logger.Info("factory extracted", "session_id", sess.ID, "factory", factory)

	buyers, err := g.policies.BuyersForFactory(ctx, factory, policy.MatchBoth)
	if err != nil {
		return nil, err
	}
	for _, buyer := range buyers {
		if sess.AddBuyerCompany(buyer) {
			if err := g.sessions.AddBuyerCompany(ctx, sess.ID, buyer); err != nil {
				return nil, err
			}
		}
	}

	incident, err := g.summarizeIncidents(ctx, sess.Messages)
	if err != nil {
		return nil, err
	}
	sess.IncidentDescription = incident
	if err := g.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	result := &Result{FactoryName: factory, Buyers: buyers}
	for _, buyer := range buyers {
		analysis, err := g.correlate(ctx, buyer, incident)
		if err != nil {
			return nil, err
		}
		sess.AddReport(analysis.Report)
		if err := g.sessions.AddReport(ctx, sess.ID, analysis.Report); err != nil {
			return nil, err
		}
		result.Analyses = append(result.Analyses, analysis)
		g.logger.Info("buyer analyzed",
			"session_id", sess.ID,
			"buyer", buyer,
			"outcome", analysis.Outcome.String(),
			"violations", len(analysis.Report.PolicyViolations))
	}

	if len(buyers) > 0 {
		result.Reply = ReplyScheduled
	} else {
		result.Reply = ReplyNoBuyers
	}
	return result, nil
}

func (g *Generator) extractFactory(ctx context.Context, history string) (string, error) {
	rendered, err := g.prompts.Render(prompt.TmplFactoryExtract, map[string]any{"History": history})
	if err != nil {
		return "", err
	}
	name, err := g.client.Complete(ctx, rendered)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(name), nil
}

// summarizeIncidents condenses everything the user said into one incident
// description. The summary is normalized to lower case.
func (g *Generator) summarizeIncidents(ctx context.Context, msgs []*message.Message) (string, error) {
	transcript := strings.Join(message.UserContents(msgs), "\n")
	rendered, err := g.prompts.Render(prompt.TmplIncidentSummary, map[string]any{"Transcript": transcript})
	if err != nil {
		return "", err
	}
	summary, err := g.client.Complete(ctx, rendered)
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(summary)), nil
}

// violationPayload is the JSON shape the correlation prompt asks for.
type violationPayload struct {
	ComplaintSummary string   `json:"complaint_summary"`
	Incidents        []string `json:"incidents"`
	PolicyViolations []struct {
		PolicyCategory       string   `json:"policy_category"`
		RelatedIncidents     []string `json:"related_incidents"`
		ViolationDescription string   `json:"violation_description"`
	} `json:"policy_violations"`
}

// correlate runs the policy correlation for one buyer. A malformed model
// answer degrades to a raw-text report instead of failing the pipeline.
func (g *Generator) correlate(ctx context.Context, buyer, incident string) (Analysis, error) {
	refs, err := g.policies.PoliciesForCompany(ctx, buyer)
	if err != nil {
		return Analysis{}, err
	}
	if len(refs) == 0 {
		rep := session.NewViolationReport(buyer)
		rep.RawText = fmt.Sprintf("no policy information found for company: %s", buyer)
		return Analysis{Buyer: buyer, Outcome: OutcomeRaw, Report: rep}, nil
	}

	rendered, err := g.prompts.Render(prompt.TmplPolicyCorrelate, map[string]any{
		"Incident": incident,
		"Policies": renderPolicies(refs),
	})
	if err != nil {
		return Analysis{}, err
	}
	answer, err := g.client.Complete(ctx, rendered)
	if err != nil {
		return Analysis{}, err
	}

	cleaned := strings.TrimSpace(codeFences.ReplaceAllString(strings.TrimSpace(answer), ""))
	rep := session.NewViolationReport(buyer)
	rep.RawText = cleaned

	var payload violationPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		g.logger.Warn("correlation answer not parseable", "buyer", buyer, "error", err)
		rep.RawText = strings.TrimSpace(answer)
		return Analysis{Buyer: buyer, Outcome: OutcomeRaw, Report: rep}, nil
	}

	rep.ComplaintSummary = payload.ComplaintSummary
	rep.Incidents = payload.Incidents
	for _, v := range payload.PolicyViolations {
		violation := session.Violation{
			PolicyCategory:       v.PolicyCategory,
			RelatedIncidents:     v.RelatedIncidents,
			ViolationDescription: v.ViolationDescription,
			Reference:            lookupReference(v.PolicyCategory, refs),
		}
		rep.PolicyViolations = append(rep.PolicyViolations, violation)
	}
	return Analysis{Buyer: buyer, Outcome: OutcomeStructured, Report: rep}, nil
}

// renderPolicies formats policy texts with their category in brackets, the
// shape the correlation prompt expects.
func renderPolicies(refs map[string]policy.Ref) string {
	b := prompt.NewBuilder()
	for _, category := range policy.Categories() {
		ref, ok := refs[category]
		if !ok {
			continue
		}
		b.AddFormat("[%s] %s\n\n", category, ref.Text)
	}
	return b.Build()
}

// lookupReference resolves the policy reference for a reported category.
// Exact category match wins; otherwise the first known category sharing a
// word with the reported one is used.
func lookupReference(category string, refs map[string]policy.Ref) *session.ViolationReference {
	if ref, ok := refs[category]; ok {
		return &session.ViolationReference{
			PolicyText:   ref.Text,
			DocumentName: ref.DocumentName,
			DocumentURL:  ref.DocumentURL,
		}
	}
	words := strings.Fields(strings.ToLower(category))
	for _, known := range policy.Categories() {
		ref, ok := refs[known]
		if !ok {
			continue
		}
		lowered := strings.ToLower(known)
		for _, word := range words {
			if strings.Contains(lowered, word) {
				return &session.ViolationReference{
					PolicyText:   ref.Text,
					DocumentName: ref.DocumentName,
					DocumentURL:  ref.DocumentURL,
				}
			}
		}
	}
	return nil
}
