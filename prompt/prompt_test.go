package prompt

import (
	"strings"
	"testing"
)

func TestDefaultManagerHasEveryTemplate(t *testing.T) {
	m := DefaultManager()
	for name := range defaultTemplates {
		if _, err := m.Get(name); err != nil {
			t.Errorf("Template %s missing: %v", name, err)
		}
	}
}

func TestRenderSubstitutes(t *testing.T) {
	m := DefaultManager()
	out, err := m.Render(TmplCaseClassify, map[string]any{"Problem": "unpaid overtime"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(out, "Problem: unpaid overtime") {
		t.Errorf("Substitution missing: %q", out)
	}
}

func TestRenderJudgeTemplate(t *testing.T) {
	m := DefaultManager()
	out, err := m.Render(TmplNavigationJudge, map[string]any{
		"Requirement": "Collect the loan terms.",
		"BotMessage":  "What are the loan terms?",
		"UserMessage": "12 percent monthly",
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	for _, want := range []string{"Collect the loan terms.", "What are the loan terms?", "12 percent monthly"} {
		if !strings.Contains(out, want) {
			t.Errorf("Missing %q in rendered judge prompt", want)
		}
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	m := DefaultManager()
	if _, err := m.Render("no_such_template", nil); err == nil {
		t.Error("Expected error for unknown template")
	}
}

func TestBuilderConcatenatesParts(t *testing.T) {
	out := NewBuilder().
		Add("Policies:\n").
		AddFormat("[%s] %s\n", "Recruitment Fees", "Workers pay no fees.").
		AddLine("End of policies.").
		Build()
	want := "Policies:\n[Recruitment Fees] Workers pay no fees.\nEnd of policies.\n"
	if out != want {
		t.Errorf("Build() = %q, want %q", out, want)
	}
}

func TestBuilderEmpty(t *testing.T) {
	if out := NewBuilder().Build(); out != "" {
		t.Errorf("Empty builder produced %q", out)
	}
}
