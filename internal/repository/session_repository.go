package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/reelstack/movie-catalogue/internal/utils"
)

const sessionKeyPrefix = "session:"

// SessionRepo stores server-side sessions in redis. Keys are random ids
// mapped to the owning user's id hex, expiring after TTL. Lookup never
// extends a session's lifetime.
type SessionRepo struct {
	RDB *redis.Client
	TTL time.Duration
}

func NewSessionRepo(rdb *redis.Client, ttl time.Duration) *SessionRepo {
	return &SessionRepo{RDB: rdb, TTL: ttl}
}

// Create opens a session for the user and returns the new session id.
func (r *SessionRepo) Create(ctx context.Context, userID string) (string, error) {
	sid, err := utils.RandomHex(32)
	if err != nil {
		return "", err
	}
	if err := r.RDB.Set(ctx, sessionKeyPrefix+sid, userID, r.TTL).Err(); err != nil {
		return "", err
	}
	return sid, nil
}

// Lookup resolves a session id to the owning user id. An unknown or expired
// session maps to ErrNotFound.
func (r *SessionRepo) Lookup(ctx context.Context, sid string) (string, error) {
	v, err := r.RDB.Get(ctx, sessionKeyPrefix+sid).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

// Delete invalidates a session. Deleting an already-gone session succeeds;
// a store failure is returned to the caller rather than swallowed.
func (r *SessionRepo) Delete(ctx context.Context, sid string) error {
	return r.RDB.Del(ctx, sessionKeyPrefix+sid).Err()
}
