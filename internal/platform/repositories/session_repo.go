package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"portal/internal/platform/models"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, profileID string, ttl time.Duration) (*models.Session, error) {
	now := time.Now()
	session := &models.Session{
		ID:        "ses_" + uuid.NewString(),
		ProfileID: profileID,
		ExpiresAt: now.Add(ttl).Unix(),
		CreatedAt: now.Unix(),
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, profile_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`, session.ID, session.ProfileID, session.ExpiresAt, session.CreatedAt)
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	var s models.Session
	var revokedAt sql.NullInt64

	err := r.db.QueryRowContext(ctx, `
		SELECT id, profile_id, expires_at, revoked_at, created_at FROM sessions WHERE id = ?
	`, id).Scan(&s.ID, &s.ProfileID, &s.ExpiresAt, &revokedAt, &s.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if revokedAt.Valid {
		val := revokedAt.Int64
		s.RevokedAt = &val
	}
	return &s, nil
}

// Revoke marks the session as terminated. Revoking an already revoked or
// unknown session changes nothing and reports false.
func (r *SessionRepository) Revoke(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE sessions SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL`, time.Now().Unix(), id)
	return affected(res, err)
}

func (r *SessionRepository) RevokeAllForProfile(ctx context.Context, profileID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE sessions SET revoked_at = ? WHERE profile_id = ? AND revoked_at IS NULL`, time.Now().Unix(), profileID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteStale removes sessions that expired or were revoked before cutoff.
func (r *SessionRepository) DeleteStale(ctx context.Context, cutoff int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)`, cutoff, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
