package contract

import (
	"context"

	"acaradar-web/pkg/store"
)

// SessionRepository persists browser sessions between requests. Saves are
// last-writer-wins; there is no cross-request locking.
type SessionRepository interface {
	Get(ctx context.Context, sessionID string) (*store.Session, bool, error)
	Save(ctx context.Context, session *store.Session) error
	Delete(ctx context.Context, sessionID string) error
}
