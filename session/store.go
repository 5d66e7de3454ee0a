package session

import (
	"context"

	"github.com/fairlabor/pobot/message"
)

// Store defines the interface for session storage backends. Every write is
// additive or a single-record update; nothing destroys history except an
// explicit Delete, which cascades to the session's messages, buyers, and
// reports.
type Store interface {
	Save(ctx context.Context, sess *Session) error
	Load(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
	Exists(ctx context.Context, id string) (bool, error)

	// AppendMessage durably adds one message to the session's ordered log.
	AppendMessage(ctx context.Context, sessionID string, msg *message.Message) error

	// AddBuyerCompany durably records a resolved buyer, deduplicated by
	// name within the session.
	AddBuyerCompany(ctx context.Context, sessionID, name string) error

	// AddReport durably appends a violation report.
	AddReport(ctx context.Context, sessionID string, report *ViolationReport) error
}
