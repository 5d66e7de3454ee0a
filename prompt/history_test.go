package prompt

import (
	"strings"
	"testing"
	"time"

	"github.com/fairlabor/pobot/message"
)

type charTokenizer struct{}

func (charTokenizer) CountTokens(text string) int { return len(text) }

func TestRenderHistory(t *testing.T) {
	msgs := []*message.Message{
		message.New(message.RoleUser, "hello"),
		message.New(message.RoleAssistant, "hi there"),
	}
	rendered := RenderHistory(msgs, nil, 0)
	want := "user: hello\nassistant: hi there"
	if rendered != want {
		t.Errorf("Rendered %q, want %q", rendered, want)
	}
}

func TestRenderHistoryTruncatesOldest(t *testing.T) {
	msgs := []*message.Message{
		message.New(message.RoleUser, "a very long opening message that should be dropped"),
		message.New(message.RoleAssistant, "short"),
		message.New(message.RoleUser, "latest"),
	}
	rendered := RenderHistory(msgs, charTokenizer{}, 40)
	if strings.Contains(rendered, "a very long opening message") {
		t.Errorf("Oldest message survived truncation: %q", rendered)
	}
	if !strings.Contains(rendered, "latest") {
		t.Errorf("Most recent message was dropped: %q", rendered)
	}
}

func TestRenderHistoryOrdersByTimestamp(t *testing.T) {
	now := time.Now()
	first := message.New(message.RoleUser, "first")
	first.CreatedAt = now.Add(-2 * time.Minute)
	second := message.New(message.RoleAssistant, "second")
	second.CreatedAt = now.Add(-time.Minute)

	msgs := []*message.Message{second, first}
	rendered := RenderHistory(msgs, nil, 0)
	want := "user: first\nassistant: second"
	if rendered != want {
		t.Errorf("Rendered %q, want %q", rendered, want)
	}
	if msgs[0] != second {
		t.Error("Caller's slice order was mutated")
	}
}

func TestRenderHistoryKeepsLastOverBudget(t *testing.T) {
	msgs := []*message.Message{
		message.New(message.RoleUser, "this single message is longer than the whole budget allows"),
	}
	rendered := RenderHistory(msgs, charTokenizer{}, 10)
	if rendered == "" {
		t.Error("Last message must always survive")
	}
}
