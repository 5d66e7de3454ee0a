package casegraph

import "strings"

// Decision is the outcome of judging whether the current step is complete.
type Decision int

const (
	// Stay keeps the conversation on the current step.
	Stay Decision = iota
	// Advance moves the conversation to the step's successor.
	Advance
)

func (d Decision) String() string {
	if d == Advance {
		return "advance"
	}
	return "stay"
}

// ParseDecision interprets a judge answer. Only an answer starting with
// "yes" advances; anything else, including malformed output, stays put.
func ParseDecision(answer string) Decision {
	normalized := strings.ToLower(strings.TrimSpace(answer))
	if strings.HasPrefix(normalized, "yes") {
		return Advance
	}
	return Stay
}
