package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound indicates the token does not map to a live session, either
// because it never existed or because the idle timeout elapsed.
var ErrNotFound = errors.New("session not found")

// Session is the identity bound to an opaque token.
type Session struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
}

// Store keeps sessions in redis under an idle TTL. Reading a session does
// not extend it; callers refresh explicitly on mutating requests.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore builds a session store with the given idle timeout.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 20 * time.Minute
	}
	return &Store{client: client, ttl: ttl}
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

// Create mints a new opaque token for the identity and persists it.
func (s *Store) Create(ctx context.Context, sess Session) (string, error) {
	payload, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}

	token := uuid.NewString()
	if err := s.client.Set(ctx, sessionKey(token), payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return token, nil
}

// Get resolves a token to its session. Expired or unknown tokens return
// ErrNotFound.
func (s *Store) Get(ctx context.Context, token string) (Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, ErrNotFound
	}

	payload, err := s.client.Get(ctx, sessionKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("failed to read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(payload), &sess); err != nil {
		return Session{}, fmt.Errorf("corrupt session payload: %w", err)
	}

	return sess, nil
}

// Refresh restarts the idle timeout for a live session.
func (s *Store) Refresh(ctx context.Context, token string) error {
	ok, err := s.client.Expire(ctx, sessionKey(token), s.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to refresh session: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Delete removes the session; deleting an unknown token is not an error.
func (s *Store) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}
