package casegraph

import "strings"

// Case types the classifier can resolve to. Each one has a dedicated
// workflow graph.
const (
	CaseLegalRights       = "Legal Rights Inquiry"
	CaseLenderHarassment  = "Lender Harassment"
	CaseEmployerExploit   = "Employer Exploitation"
	CaseExcessiveInterest = "Excessive Interest Rate"
	CaseAgencyHarassment  = "Recruitment Agency Harassment"
)

var legalRightsGraph = NewBuilder(CaseLegalRights).
	AddNode(NodeStart, "Collect basic information about the legal rights inquiry.").
	AddNode("rag_response", "Provide comprehensive legal information using RAG approach based on the user's query.").
	AddEdge(NodeStart, "rag_response").
	Build()

var lenderHarassmentGraph = NewBuilder(CaseLenderHarassment).
	AddNode(NodeStart, "Collect basic information about the lender harassment situation.").
	AddNode("document_interactions", "Document all interactions with the lender, including dates, times, and what was said.").
	AddNode("check_loan_terms", "Review the loan agreement terms and identify any violations by the lender.").
	AddNode("gather_evidence", "Collect evidence such as threatening messages, call logs, or witness statements.").
	AddNode("legal_options", "Explore legal options such as filing a complaint with regulatory authorities.").
	AddNode("safety_plan", "Develop a safety plan if the harassment involves threats or intimidation.").
	AddNode(NodeReport, "Generate a comprehensive report of the harassment case.").
	AddEdge(NodeStart, "document_interactions").
	AddEdge("document_interactions", "check_loan_terms").
	AddEdge("check_loan_terms", "gather_evidence").
	AddEdge("gather_evidence", "legal_options").
	AddEdge("legal_options", "safety_plan").
	AddEdge("safety_plan", NodeReport).
	Build()

var employerExploitGraph = NewBuilder(CaseEmployerExploit).
	AddNode(NodeStart, "Begin by asking the client to describe their problem. Don't ask many questions; let the client tell their story first.").
	AddNode("collect_basic_info", "Collect basic information: What is the name of the factory? What type of goods does it produce? What is the factory address? What his task (job) in the factory?").
	AddNode("collect_brand_info", "Collect information about the brand/buyer companies if the user know: Do you know who are the companies that your factory supply to? If you don't know don't wort.").
	AddNode("ask_recruitment_agency", "Ask for the name of the recruitment agency and any brokers involved.").
	AddNode("ask_for_contract", "Request a copy or detailed description of their employment contract.").
	AddNode("ask_for_proof", "Ask for evidence of exploitation (photos, messages, pay slips, etc.).").
	AddNode(NodeReport, "Automatically generate policy violation report based on collected evidence").
	AddEdge(NodeStart, "collect_basic_info").
	AddEdge("collect_basic_info", "collect_brand_info").
	AddEdge("collect_brand_info", "ask_recruitment_agency").
	AddEdge("ask_recruitment_agency", "ask_for_contract").
	AddEdge("ask_for_contract", "ask_for_proof").
	AddEdge("ask_for_proof", NodeReport).
	Build()

var excessiveInterestGraph = NewBuilder(CaseExcessiveInterest).
	AddNode(NodeStart, "Collect basic information about the loan and interest rate concerns.").
	AddNode("review_loan_agreement", "Review the loan agreement to identify interest rates, fees, and terms.").
	AddNode("calculate_effective_rate", "Calculate the effective interest rate including all fees and charges.").
	AddNode("check_legal_limits", "Check legal interest rate limits in the relevant jurisdiction.").
	AddNode("document_communications", "Document all communications with the lender regarding the loan.").
	AddNode("explore_refinancing", "Explore refinancing options or debt consolidation possibilities.").
	AddNode(NodeReport, "Generate a comprehensive report of the excessive interest case.").
	AddEdge(NodeStart, "review_loan_agreement").
	AddEdge("review_loan_agreement", "calculate_effective_rate").
	AddEdge("calculate_effective_rate", "check_legal_limits").
	AddEdge("check_legal_limits", "document_communications").
	AddEdge("document_communications", "explore_refinancing").
	AddEdge("explore_refinancing", NodeReport).
	Build()

var agencyHarassmentGraph = NewBuilder(CaseAgencyHarassment).
	AddNode(NodeStart, "Collect basic information about the recruitment agency and harassment situation.").
	AddNode("document_interactions", "Document all interactions with the agency, including dates, times, and what was said.").
	AddNode("check_agency_status", "Check if the recruitment agency is legally registered and licensed.").
	AddNode("assess_threats", "Assess the nature and severity of threats or harassment from the agency.").
	AddNode("report_authorities", "Discuss options for reporting the agency to relevant authorities.").
	AddNode("refer_lawyer", "Provide information on seeking legal assistance for the harassment.").
	AddNode("ensure_protection", "Discuss measures to ensure personal safety and protection.").
	AddNode(NodeReport, "Generate a comprehensive report of the agency harassment case.").
	AddEdge(NodeStart, "document_interactions").
	AddEdge("document_interactions", "check_agency_status").
	AddEdge("check_agency_status", "assess_threats").
	AddEdge("assess_threats", "report_authorities").
	AddEdge("report_authorities", "refer_lawyer").
	AddEdge("refer_lawyer", "ensure_protection").
	AddEdge("ensure_protection", NodeReport).
	Build()

var graphsByCase = map[string]*Graph{
	strings.ToLower(CaseLegalRights):       legalRightsGraph,
	strings.ToLower(CaseLenderHarassment):  lenderHarassmentGraph,
	strings.ToLower(CaseEmployerExploit):   employerExploitGraph,
	strings.ToLower(CaseExcessiveInterest): excessiveInterestGraph,
	strings.ToLower(CaseAgencyHarassment):  agencyHarassmentGraph,
}

// ForCaseType resolves a classifier answer to its workflow graph. Matching
// is case-insensitive against the known case types.
func ForCaseType(caseType string) (*Graph, bool) {
	g, ok := graphsByCase[strings.ToLower(strings.TrimSpace(caseType))]
	return g, ok
}

// CaseTypes lists the supported case types in a stable order.
func CaseTypes() []string {
	return []string{
		CaseLegalRights,
		CaseLenderHarassment,
		CaseEmployerExploit,
		CaseExcessiveInterest,
		CaseAgencyHarassment,
	}
}
