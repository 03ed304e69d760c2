package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/reload/internal/models"
	"github.com/desertthunder/reload/internal/shared"
)

// SessionRepository persists issued session tokens.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create records a new session for userID that expires after ttl.
func (r *SessionRepository) Create(ctx context.Context, userID string, ttl time.Duration) (*models.SessionRecord, error) {
	ts := now()
	session := &models.SessionRecord{
		ID:        shared.GenerateID(),
		UserID:    userID,
		CreatedAt: ts,
		ExpiresAt: ts.Add(ttl),
	}

	query := `INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, session.ID, session.UserID, session.CreatedAt, session.ExpiresAt); err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}

	return session, nil
}

// Get retrieves a session by ID, revoked or not.
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.SessionRecord, error) {
	query := `SELECT id, user_id, created_at, expires_at, revoked_at FROM sessions WHERE id = ?`

	var (
		session   models.SessionRecord
		revokedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&session.ID, &session.UserID, &session.CreatedAt, &session.ExpiresAt, &revokedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: unknown session", shared.ErrNotAuthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	if revokedAt.Valid {
		session.RevokedAt = &revokedAt.Time
	}

	return &session, nil
}

// Revoke marks a session as revoked. Revoking twice is not an error.
func (r *SessionRepository) Revoke(ctx context.Context, id string) error {
	query := `UPDATE sessions SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, now(), id); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// RevokeAll revokes every active session of a user and returns how many were revoked.
func (r *SessionRepository) RevokeAll(ctx context.Context, userID string) (int64, error) {
	query := `UPDATE sessions SET revoked_at = ? WHERE user_id = ? AND revoked_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, now(), userID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return result.RowsAffected()
}

// DeleteExpired removes sessions that expired or were revoked before cutoff.
func (r *SessionRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)`
	result, err := r.db.ExecContext(ctx, query, cutoff.UTC(), cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}
