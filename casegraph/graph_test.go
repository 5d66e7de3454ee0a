package casegraph

import "testing"

func TestForCaseType(t *testing.T) {
	for _, caseType := range CaseTypes() {
		g, ok := ForCaseType(caseType)
		if !ok {
			t.Fatalf("No graph for %s", caseType)
		}
		if g.CaseType() != caseType {
			t.Errorf("Graph case type %s, want %s", g.CaseType(), caseType)
		}
		if _, ok := g.Node(NodeStart); !ok {
			t.Errorf("Graph %s has no start node", caseType)
		}
	}
}

func TestForCaseTypeCaseInsensitive(t *testing.T) {
	g, ok := ForCaseType("  employer exploitation ")
	if !ok {
		t.Fatal("Expected match for lowercase case type")
	}
	if g.CaseType() != CaseEmployerExploit {
		t.Errorf("Got %s", g.CaseType())
	}

	if _, ok := ForCaseType("Parking Dispute"); ok {
		t.Error("Expected no graph for unknown case type")
	}
}

func TestEmployerExploitChain(t *testing.T) {
	g, _ := ForCaseType(CaseEmployerExploit)
	want := []string{
		NodeStart,
		"collect_basic_info",
		"collect_brand_info",
		"ask_recruitment_agency",
		"ask_for_contract",
		"ask_for_proof",
		NodeReport,
	}
	node := NodeStart
	for i := 1; i < len(want); i++ {
		next, ok := g.Successor(node)
		if !ok {
			t.Fatalf("No successor for %s", node)
		}
		if next != want[i] {
			t.Fatalf("Successor of %s = %s, want %s", node, next, want[i])
		}
		node = next
	}
	if _, ok := g.Successor(NodeReport); ok {
		t.Error("Report node should be terminal")
	}
}

func TestLegalRightsGraph(t *testing.T) {
	g, _ := ForCaseType(CaseLegalRights)
	if g.Len() != 2 {
		t.Errorf("Expected 2 nodes, got %d", g.Len())
	}
	next, ok := g.Successor(NodeStart)
	if !ok || next != "rag_response" {
		t.Errorf("Successor of start = %s, want rag_response", next)
	}
}

func TestRequirementLookup(t *testing.T) {
	g, _ := ForCaseType(CaseLenderHarassment)
	if req := g.Requirement("safety_plan"); req == "" {
		t.Error("Expected requirement text for safety_plan")
	}
	if req := g.Requirement("no_such_node"); req != "" {
		t.Errorf("Expected empty requirement for unknown node, got %q", req)
	}
}

func TestParseDecision(t *testing.T) {
	cases := []struct {
		answer string
		want   Decision
	}{
		{"Yes", Advance},
		{"yes.", Advance},
		{" YES, the user answered fully", Advance},
		{"No", Stay},
		{"Maybe", Stay},
		{"", Stay},
		{"The answer is Yes", Stay},
	}
	for _, tc := range cases {
		if got := ParseDecision(tc.answer); got != tc.want {
			t.Errorf("ParseDecision(%q) = %s, want %s", tc.answer, got, tc.want)
		}
	}
}

func TestBuilderPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic on duplicate node")
		}
	}()
	NewBuilder("Test").AddNode("a", "x").AddNode("a", "y")
}
