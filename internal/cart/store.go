package cart

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/angelmondragon/brewbot-backend/pkg/errors"
	redisclient "github.com/angelmondragon/brewbot-backend/pkg/redis"
)

// Store persists per-user carts.
type Store interface {
	GetCart(ctx context.Context, userID string) ([]Item, error)
	SaveCart(ctx context.Context, userID string, items []Item) error
	ClearCart(ctx context.Context, userID string) error
}

type cartDocStore interface {
	GetJSON(ctx context.Context, key string, out any) error
	SetJSON(ctx context.Context, key string, doc any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(userID string) string
}

// RedisStore keeps each cart as a single JSON document. Carts outlive
// conversation sessions, so they carry no TTL.
type RedisStore struct {
	store cartDocStore
}

func NewRedisStore(client *redisclient.Client) *RedisStore {
	return &RedisStore{store: client}
}

func (r *RedisStore) GetCart(ctx context.Context, userID string) ([]Item, error) {
	var items []Item
	err := r.store.GetJSON(ctx, r.store.CartKey(userID), &items)
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return items, nil
}

func (r *RedisStore) SaveCart(ctx context.Context, userID string, items []Item) error {
	if err := r.store.SetJSON(ctx, r.store.CartKey(userID), items, 0); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return nil
}

func (r *RedisStore) ClearCart(ctx context.Context, userID string) error {
	if err := r.store.Del(ctx, r.store.CartKey(userID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}
