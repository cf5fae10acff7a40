package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"acaradar-web/internal/repository/contract"
	"acaradar-web/pkg/store"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "acaradar:session:"

// SessionRepository keeps sessions in Redis so several web instances share them.
type SessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ contract.SessionRepository = &SessionRepository{}

func NewSessionRepository(rdb *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{rdb: rdb, ttl: ttl}
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*store.Session, bool, error) {
	raw, err := r.rdb.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get session: %w", err)
	}

	session, err := decodeSession(raw)
	if err != nil {
		return nil, false, err
	}
	return session, true, nil
}

// Save refreshes the TTL on every write, so active sessions slide forward.
func (r *SessionRepository) Save(ctx context.Context, session *store.Session) error {
	raw, err := encodeSession(session)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, sessionKey(session.ID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis save session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.rdb.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

func sessionKey(sessionID string) string {
	return keyPrefix + sessionID
}

func encodeSession(session *store.Session) ([]byte, error) {
	if session == nil {
		return nil, errors.New("nil session")
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return raw, nil
}

func decodeSession(raw []byte) (*store.Session, error) {
	var session store.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if session.WatchedItems == nil {
		session.WatchedItems = []store.WatchedItem{}
	}
	return &session, nil
}
