package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/fairlabor/pobot/errors"
	"github.com/fairlabor/pobot/message"
)

// Stage tracks how far a session has progressed through the layered
// conversation: profile intake first, then case classification, then the
// case-specific graph walk.
type Stage string

const (
	StageLanguage          Stage = "language_detection"
	StageLocation          Stage = "location_detection"
	StageGenderNationality Stage = "gender_nationality_detection"
	StageCaseDescription   Stage = "case_description"
	StageCaseHandling      Stage = "case_handling"
	StageComplete          Stage = "complete"
)

// BuyerCompany links a session to one resolved buyer-company name.
type BuyerCompany struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ViolationReference points at the policy text a violation was matched
// against, with its source document and URL when resolvable.
type ViolationReference struct {
	PolicyText   string `json:"policy_text"`
	DocumentName string `json:"document_name"`
	DocumentURL  string `json:"document_url"`
}

// Violation is one structured policy-violation entry inside a report.
type Violation struct {
	PolicyCategory       string              `json:"policy_category"`
	RelatedIncidents     []string            `json:"related_incidents"`
	ViolationDescription string              `json:"violation_description"`
	Reference            *ViolationReference `json:"reference,omitempty"`
}

// ViolationReport is the outcome of correlating the reported incidents
// against one buyer company's documented policies. RawText is always
// populated, even when the structured fields failed to parse.
type ViolationReport struct {
	ID               string      `json:"id"`
	BuyerCompany     string      `json:"buyer_company"`
	RawText          string      `json:"raw_text"`
	ComplaintSummary string      `json:"complaint_summary,omitempty"`
	Incidents        []string    `json:"incidents,omitempty"`
	PolicyViolations []Violation `json:"policy_violations,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}

// NewViolationReport creates an empty report for one buyer company.
func NewViolationReport(buyer string) *ViolationReport {
	now := time.Now()
	return &ViolationReport{
		ID:           fmt.Sprintf("report_%d", now.UnixNano()),
		BuyerCompany: buyer,
		CreatedAt:    now,
	}
}

// Session is the single mutable record threading through every component.
// Empty string means the slot is not yet filled.
type Session struct {
	ID                  string    `json:"id"`
	Language            string    `json:"language,omitempty"`
	Location            string    `json:"location,omitempty"`
	Gender              string    `json:"gender,omitempty"`
	Nationality         string    `json:"nationality,omitempty"`
	FactoryName         string    `json:"factory_name,omitempty"`
	IndustrialSector    string    `json:"industrial_sector,omitempty"`
	CaseType            string    `json:"case_type,omitempty"`
	IncidentDescription string    `json:"incident_description,omitempty"`
	Stage               Stage     `json:"stage"`
	CurrentNode         string    `json:"current_node,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	Messages       []*message.Message `json:"messages,omitempty"`
	BuyerCompanies []BuyerCompany     `json:"buyer_companies,omitempty"`
	Reports        []*ViolationReport `json:"reports,omitempty"`
}

// New creates a session record at the start of the intake flow.
func New(id string) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		Stage:     StageLanguage,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetCaseType records the classified case category. Once set the value is
// immutable for the life of the session.
func (s *Session) SetCaseType(caseType string) error {
	if s.CaseType != "" {
		if strings.EqualFold(s.CaseType, caseType) {
			return nil
		}
		return fmt.Errorf("%w: session %s already classified as %q", errors.ErrCaseTypeSet, s.ID, s.CaseType)
	}
	s.CaseType = caseType
	s.UpdatedAt = time.Now()
	return nil
}

// AppendMessage adds a message to the session's chronological log.
func (s *Session) AppendMessage(msg *message.Message) {
	if msg == nil {
		return
	}
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = time.Now()
}

// AddBuyerCompany records a resolved buyer, deduplicated by name.
// It reports whether a new entry was added.
func (s *Session) AddBuyerCompany(name string) bool {
	for _, bc := range s.BuyerCompanies {
		if bc.Name == name {
			return false
		}
	}
	s.BuyerCompanies = append(s.BuyerCompanies, BuyerCompany{Name: name, CreatedAt: time.Now()})
	s.UpdatedAt = time.Now()
	return true
}

// BuyerNames returns the deduplicated buyer names in insertion order.
func (s *Session) BuyerNames() []string {
	names := make([]string, 0, len(s.BuyerCompanies))
	for _, bc := range s.BuyerCompanies {
		names = append(names, bc.Name)
	}
	return names
}

// AddReport appends a violation report.
func (s *Session) AddReport(report *ViolationReport) {
	if report == nil {
		return
	}
	s.Reports = append(s.Reports, report)
	s.UpdatedAt = time.Now()
}

// LastAssistantMessage returns the most recent assistant message content.
func (s *Session) LastAssistantMessage() string {
	if msg := message.LastByRole(s.Messages, message.RoleAssistant); msg != nil {
		return msg.Content
	}
	return ""
}

// LastUserMessage returns the most recent user message content.
func (s *Session) LastUserMessage() string {
	if msg := message.LastByRole(s.Messages, message.RoleUser); msg != nil {
		return msg.Content
	}
	return ""
}

// Clone creates a deep copy of the session record.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cloned := *s
	cloned.Messages = message.CloneMessages(s.Messages)
	if len(s.BuyerCompanies) > 0 {
		cloned.BuyerCompanies = make([]BuyerCompany, len(s.BuyerCompanies))
		copy(cloned.BuyerCompanies, s.BuyerCompanies)
	}
	if len(s.Reports) > 0 {
		cloned.Reports = make([]*ViolationReport, 0, len(s.Reports))
		for _, rep := range s.Reports {
			cloned.Reports = append(cloned.Reports, rep.Clone())
		}
	}
	return &cloned
}

// Clone creates a deep copy of the report.
func (r *ViolationReport) Clone() *ViolationReport {
	if r == nil {
		return nil
	}
	cloned := *r
	if len(r.Incidents) > 0 {
		cloned.Incidents = append([]string(nil), r.Incidents...)
	}
	if len(r.PolicyViolations) > 0 {
		cloned.PolicyViolations = make([]Violation, len(r.PolicyViolations))
		for i, v := range r.PolicyViolations {
			cv := v
			if len(v.RelatedIncidents) > 0 {
				cv.RelatedIncidents = append([]string(nil), v.RelatedIncidents...)
			}
			if v.Reference != nil {
				ref := *v.Reference
				cv.Reference = &ref
			}
			cloned.PolicyViolations[i] = cv
		}
	}
	return &cloned
}
