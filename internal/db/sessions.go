package db

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// CreateSession stores a fresh random session token and returns it.
func (s *Store) CreateSession(ctx context.Context, ttl time.Duration) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	expires := time.Now().UTC().Add(ttl)

	_, err := s.db.ExecContext(ctx,
		s.db.Rebind("INSERT INTO sessions (token, expires_at) VALUES (?, ?)"),
		token, expires)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return token, nil
}

// ValidateSession reports whether token is a live session. Expired sessions
// are deleted on sight and reported as ErrNotFound.
func (s *Store) ValidateSession(ctx context.Context, token string) error {
	var expiresAt time.Time
	err := s.db.GetContext(ctx, &expiresAt,
		s.db.Rebind("SELECT expires_at FROM sessions WHERE token = ?"), token)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("session: %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("looking up session: %w", err)
	}
	if time.Now().After(expiresAt) {
		s.DeleteSession(ctx, token)
		return fmt.Errorf("session expired: %w", ErrNotFound)
	}
	return nil
}

// DeleteSession removes a session token. Missing tokens are not an error.
func (s *Store) DeleteSession(ctx context.Context, token string) {
	s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM sessions WHERE token = ?"), token)
}
