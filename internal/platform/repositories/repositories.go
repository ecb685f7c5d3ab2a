package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"portal/internal/platform/models"
)

type IdentityRepository struct {
	db *sql.DB
}

func NewIdentityRepository(db *sql.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

func (r *IdentityRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, nil)
}

func (r *IdentityRepository) CreateTx(ctx context.Context, tx *sql.Tx, identity *models.Identity) error {
	if identity.ID == "" {
		identity.ID = uuid.NewString()
	}
	identity.CreatedAt = time.Now().Unix()

	_, err := tx.ExecContext(ctx, `
		INSERT INTO identities (id, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, identity.ID, identity.Email, identity.PasswordHash, identity.CreatedAt)
	return err
}

func (r *IdentityRepository) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	identity := &models.Identity{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at FROM identities WHERE email = ?
	`, email).Scan(&identity.ID, &identity.Email, &identity.PasswordHash, &identity.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return identity, nil
}

func (r *IdentityRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE identities SET password_hash = ? WHERE id = ?`, passwordHash, id)
	return err
}

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, email, full_name, role, is_active, status, created_at, updated_at`

func (r *ProfileRepository) CreateTx(ctx context.Context, tx *sql.Tx, profile *models.Profile) error {
	now := time.Now().Unix()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	_, err := tx.ExecContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, profile.ID, profile.Email, profile.FullName, string(profile.Role), profile.IsActive, string(profile.Status), profile.CreatedAt, profile.UpdatedAt)
	return err
}

// Upsert inserts the profile or overwrites role, status and activation of an existing row.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	now := time.Now().Unix()
	profile.UpdatedAt = now
	if profile.CreatedAt == 0 {
		profile.CreatedAt = now
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			full_name = excluded.full_name,
			role = excluded.role,
			is_active = excluded.is_active,
			status = excluded.status,
			updated_at = excluded.updated_at
	`, profile.ID, profile.Email, profile.FullName, string(profile.Role), profile.IsActive, string(profile.Status), profile.CreatedAt, profile.UpdatedAt)
	return err
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)
	profile, err := scanProfile(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]*models.Profile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// UpdateRole reports false when no profile has the given id.
func (r *ProfileRepository) UpdateRole(ctx context.Context, id string, role models.Role) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE profiles SET role = ?, updated_at = ? WHERE id = ?`, string(role), time.Now().Unix(), id)
	return affected(res, err)
}

func (r *ProfileRepository) SetActive(ctx context.Context, id string, active bool, status models.ProfileStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE profiles SET is_active = ?, status = ?, updated_at = ? WHERE id = ?`, active, string(status), time.Now().Unix(), id)
	return affected(res, err)
}

func (r *ProfileRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	return affected(res, err)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(s scanner) (*models.Profile, error) {
	var p models.Profile
	var role, status string
	if err := s.Scan(&p.ID, &p.Email, &p.FullName, &role, &p.IsActive, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	// Unknown role strings degrade to unassigned so the gate denies them.
	p.Role, _ = models.ParseRole(role)
	p.Status = models.ProfileStatus(status)
	return &p, nil
}

func affected(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IsUniqueViolation reports whether err comes from a UNIQUE or PRIMARY KEY constraint.
func IsUniqueViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
