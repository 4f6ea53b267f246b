package conversation

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/angelmondragon/brewbot-backend/pkg/errors"
	redisclient "github.com/angelmondragon/brewbot-backend/pkg/redis"
)

// SessionStore persists per-user conversation state.
type SessionStore interface {
	// Get returns the stored session, or nil when the user has none yet.
	Get(ctx context.Context, userID string) (*Session, error)
	Save(ctx context.Context, userID string, session *Session) error
}

type sessionDocStore interface {
	GetJSON(ctx context.Context, key string, out any) error
	SetJSON(ctx context.Context, key string, doc any, ttl time.Duration) error
	SessionKey(userID string) string
}

// RedisSessionStore keeps sessions as JSON documents with a sliding TTL.
type RedisSessionStore struct {
	store sessionDocStore
	ttl   time.Duration
}

func NewRedisSessionStore(client *redisclient.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{store: client, ttl: ttl}
}

func (r *RedisSessionStore) Get(ctx context.Context, userID string) (*Session, error) {
	var session Session
	err := r.store.GetJSON(ctx, r.store.SessionKey(userID), &session)
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session")
	}
	return &session, nil
}

func (r *RedisSessionStore) Save(ctx context.Context, userID string, session *Session) error {
	if err := r.store.SetJSON(ctx, r.store.SessionKey(userID), session, r.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save session")
	}
	return nil
}
