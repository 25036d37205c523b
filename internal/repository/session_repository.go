package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/glossary-api/internal/models"
	appErrors "github.com/noah-isme/glossary-api/pkg/errors"
)

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository keeps login sessions in Redis with a TTL.
type SessionRepository struct {
	cache *CacheRepository
}

// NewSessionRepository builds a session store on top of the Redis client.
func NewSessionRepository(client redisKV) *SessionRepository {
	return &SessionRepository{cache: NewCacheRepository(client, "session:")}
}

// Save stores the session until it expires.
func (r *SessionRepository) Save(ctx context.Context, session *models.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("save session %s: already expired", session.ID)
	}
	return r.cache.Set(ctx, session.ID, session, ttl)
}

// Find loads a live session.
func (r *SessionRepository) Find(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	if err := r.cache.Get(ctx, id, &session); err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// Delete destroys a session. Deleting an unknown session is not an error.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.cache.Delete(ctx, id)
}
