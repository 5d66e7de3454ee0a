// Package intake runs the slot-filling phase of a conversation: language,
// location, then gender and nationality. Each slot is extracted from free
// text by a completion call and persisted as soon as it is found.
package intake

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fairlabor/pobot/llm"
	"github.com/fairlabor/pobot/pkg/logging"
	"github.com/fairlabor/pobot/prompt"
	"github.com/fairlabor/pobot/session"
)

// Canned replies used while collecting profile slots. Replies are produced
// in the working language; callers translate them for the user.
const (
	replyAskLanguage   = "Hello! I am PoBot. I couldn't detect your language. Please tell me which language you prefer to use: English, Bahasa Indonesia, Burmese, Vietnamese, or Thai?"
	replyAskLocation   = "Thank you! Kindly provide your current location (the country or region where you are currently situated)."
	replyRetryLocation = "I need to know your location to better assist you. Could you please tell me which country you are in? For example: Indonesia, Thailand, Vietnam, etc."
)

// Machine drives the intake stages for a session. It mutates the session,
// persists every accepted slot, and returns the next reply to the user.
type Machine struct {
	client     llm.Client
	prompts    *prompt.Manager
	store      session.Store
	translator *Translator
	logger     *slog.Logger
}

// NewMachine creates an intake machine.
func NewMachine(client llm.Client, prompts *prompt.Manager, store session.Store) *Machine {
	return &Machine{
		client:     client,
		prompts:    prompts,
		store:      store,
		translator: NewTranslator(client, prompts),
		logger:     logging.WithComponent("intake"),
	}
}

// Translator exposes the machine's translator so callers can reuse it for
// outbound replies.
func (m *Machine) Translator() *Translator { return m.translator }

// Done reports whether the session has collected every intake slot and
// moved on to case handling.
func (m *Machine) Done(sess *session.Session) bool {
	switch sess.Stage {
	case session.StageLanguage, session.StageLocation, session.StageGenderNationality:
		return false
	}
	return true
}

// Advance processes one utterance against the session's current intake
// stage and returns the reply in the working language.
func (m *Machine) Advance(ctx context.Context, sess *session.Session, utterance string) (string, error) {
	switch sess.Stage {
	case session.StageLanguage:
		return m.handleLanguage(ctx, sess, utterance)
	case session.StageLocation:
		return m.handleLocation(ctx, sess, utterance)
	case session.StageGenderNationality:
		return m.handleGenderNationality(ctx, sess, utterance)
	default:
		return "", fmt.Errorf("intake: stage %q is not an intake stage", sess.Stage)
	}
}

func (m *Machine) handleLanguage(ctx context.Context, sess *session.Session, utterance string) (string, error) {
	if sess.Language != "" {
		sess.Stage = session.StageLocation
		return m.handleLocation(ctx, sess, utterance)
	}

	language, ok, err := m.extract(ctx, prompt.TmplLanguageIdentify, utterance)
	if err != nil {
		return "", err
	}
	if !ok {
		return replyAskLanguage, nil
	}

	sess.Language = language
	sess.Stage = session.StageLocation
	if err := m.store.Save(ctx, sess); err != nil {
		return "", err
	}
	m.logger.Info("language detected", "session_id", sess.ID, "language", language)
	return replyAskLocation, nil
}

func (m *Machine) handleLocation(ctx context.Context, sess *session.Session, utterance string) (string, error) {
	if sess.Location != "" {
		sess.Stage = session.StageGenderNationality
		if err := m.store.Save(ctx, sess); err != nil {
			return "", err
		}
		return locationAck(sess.Location), nil
	}

	translated, err := m.translator.ToWorking(ctx, sess.Language, utterance)
	if err != nil {
		return "", err
	}
	location, ok, err := m.extract(ctx, prompt.TmplLocationExtract, translated)
	if err != nil {
		return "", err
	}
	if !ok {
		return replyRetryLocation, nil
	}

	sess.Location = location
	sess.Stage = session.StageGenderNationality
	if err := m.store.Save(ctx, sess); err != nil {
		return "", err
	}
	m.logger.Info("location detected", "session_id", sess.ID, "location", location)
	return locationAck(location), nil
}

func (m *Machine) handleGenderNationality(ctx context.Context, sess *session.Session, utterance string) (string, error) {
	if sess.Gender != "" && sess.Nationality != "" {
		sess.Stage = session.StageCaseDescription
		if err := m.store.Save(ctx, sess); err != nil {
			return "", err
		}
		return profileAck(sess.Gender, sess.Nationality), nil
	}

	translated, err := m.translator.ToWorking(ctx, sess.Language, utterance)
	if err != nil {
		return "", err
	}

	updated := false
	if sess.Gender == "" {
		gender, ok, err := m.extract(ctx, prompt.TmplGenderExtract, translated)
		if err != nil {
			return "", err
		}
		if ok {
			sess.Gender = gender
			updated = true
		}
	}
	if sess.Nationality == "" {
		nationality, ok, err := m.extract(ctx, prompt.TmplNationalityExtract, translated)
		if err != nil {
			return "", err
		}
		if ok {
			sess.Nationality = nationality
			updated = true
		}
	}

	if sess.Gender != "" && sess.Nationality != "" {
		sess.Stage = session.StageCaseDescription
		updated = true
	}
	if updated {
		if err := m.store.Save(ctx, sess); err != nil {
			return "", err
		}
	}

	if sess.Gender != "" && sess.Nationality != "" {
		return profileAck(sess.Gender, sess.Nationality), nil
	}

	var missing []string
	if sess.Gender == "" {
		missing = append(missing, "gender")
	}
	if sess.Nationality == "" {
		missing = append(missing, "nationality")
	}
	return fmt.Sprintf("Could you please tell me your %s?", strings.Join(missing, " and ")), nil
}

// extract renders the named single-slot template over the text and runs it
// through the completion service. Placeholder answers such as "none" or
// "unknown" count as a miss, not a value.
func (m *Machine) extract(ctx context.Context, template, text string) (string, bool, error) {
	rendered, err := m.prompts.Render(template, map[string]any{"Message": text})
	if err != nil {
		return "", false, err
	}
	raw, err := m.client.Complete(ctx, rendered)
	if err != nil {
		return "", false, err
	}
	value := strings.TrimSpace(raw)
	if rejected(value) {
		return "", false, nil
	}
	return value, true, nil
}

func rejected(value string) bool {
	switch strings.ToLower(value) {
	case "", "none", "unknown", "null":
		return true
	}
	return false
}

func locationAck(location string) string {
	return fmt.Sprintf("Thank you for providing your location in %s! Could you please tell me your gender and nationality?", location)
}

func profileAck(gender, nationality string) string {
	return fmt.Sprintf("Thank you for providing your gender (%s) and nationality (%s)! How can I help you?", gender, nationality)
}
