package prompt

import (
	"fmt"
	"strings"

	"github.com/fairlabor/pobot/message"
)

// Tokenizer counts tokens for history truncation.
type Tokenizer interface {
	CountTokens(text string) int
}

// RenderHistory formats a conversation log for inclusion in a prompt.
// Messages are rendered oldest first regardless of input order. When a
// tokenizer and a positive budget are provided, the oldest turns are
// dropped until the rendered history fits; the most recent turns always
// survive.
func RenderHistory(msgs []*message.Message, tokenizer Tokenizer, maxTokens int) string {
	// Sort a copy so the caller's log order is left alone.
	ordered := make([]*message.Message, len(msgs))
	copy(ordered, msgs)
	message.SortChronological(ordered)

	lines := make([]string, 0, len(ordered))
	for _, msg := range ordered {
		lines = append(lines, fmt.Sprintf("%s: %s", msg.Role, msg.Content))
	}

	rendered := strings.Join(lines, "\n")
	if tokenizer == nil || maxTokens <= 0 {
		return rendered
	}

	for len(lines) > 1 && tokenizer.CountTokens(rendered) > maxTokens {
		lines = lines[1:]
		rendered = strings.Join(lines, "\n")
	}
	return rendered
}
