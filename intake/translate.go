package intake

import (
	"context"
	"strings"

	"github.com/fairlabor/pobot/llm"
	"github.com/fairlabor/pobot/prompt"
)

// WorkingLanguage is the language every extractor, classifier, and judge
// operates on. User-facing text is translated back on the way out.
const WorkingLanguage = "English"

// Translator converts text between the user's language and the working
// language through completion-service calls.
type Translator struct {
	client  llm.Client
	prompts *prompt.Manager
}

// NewTranslator creates a translator.
func NewTranslator(client llm.Client, prompts *prompt.Manager) *Translator {
	return &Translator{client: client, prompts: prompts}
}

// IsWorkingLanguage reports whether the detected language already is the
// working language.
func IsWorkingLanguage(language string) bool {
	return language == "" || strings.EqualFold(language, WorkingLanguage)
}

// ToWorking translates an inbound utterance to the working language.
// Utterances already in the working language pass through untouched.
func (t *Translator) ToWorking(ctx context.Context, language, text string) (string, error) {
	if IsWorkingLanguage(language) {
		return text, nil
	}
	rendered, err := t.prompts.Render(prompt.TmplTranslateToEnglish, map[string]any{"Text": text})
	if err != nil {
		return "", err
	}
	translated, err := t.client.Complete(ctx, rendered)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(translated), nil
}

// FromWorking translates an outbound reply into the user's language.
func (t *Translator) FromWorking(ctx context.Context, language, text string) (string, error) {
	if IsWorkingLanguage(language) {
		return text, nil
	}
	rendered, err := t.prompts.Render(prompt.TmplTranslateFromEnglish, map[string]any{
		"Language": language,
		"Text":     text,
	})
	if err != nil {
		return "", err
	}
	translated, err := t.client.Complete(ctx, rendered)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(translated), nil
}
