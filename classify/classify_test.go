package classify

import (
	"context"
	"fmt"
	"testing"

	"github.com/fairlabor/pobot/casegraph"
	"github.com/fairlabor/pobot/prompt"
)

type fixedClient struct {
	answer string
	err    error
}

func (c *fixedClient) Complete(ctx context.Context, p string) (string, error) {
	return c.answer, c.err
}

func TestClassifyResolves(t *testing.T) {
	c := New(&fixedClient{answer: "Employer Exploitation"}, prompt.DefaultManager())
	g, ok, err := c.Classify(context.Background(), "my boss keeps my passport")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected resolution")
	}
	if g.CaseType() != casegraph.CaseEmployerExploit {
		t.Errorf("Got %s", g.CaseType())
	}
}

func TestClassifyNormalizesAnswer(t *testing.T) {
	c := New(&fixedClient{answer: "  lender harassment \n"}, prompt.DefaultManager())
	g, ok, err := c.Classify(context.Background(), "the lender calls me at night")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if !ok || g.CaseType() != casegraph.CaseLenderHarassment {
		t.Errorf("Got ok=%v case=%v", ok, g)
	}
}

func TestClassifyUnresolved(t *testing.T) {
	c := New(&fixedClient{answer: "Parking Dispute"}, prompt.DefaultManager())
	g, ok, err := c.Classify(context.Background(), "someone parked in my spot")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if ok || g != nil {
		t.Errorf("Expected no resolution, got %v", g)
	}
}

func TestClassifyServiceError(t *testing.T) {
	c := New(&fixedClient{err: fmt.Errorf("service down")}, prompt.DefaultManager())
	if _, _, err := c.Classify(context.Background(), "anything"); err == nil {
		t.Error("Expected error to propagate")
	}
}
