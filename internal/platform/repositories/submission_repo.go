package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"portal/internal/platform/models"
)

const listLimit = 200

type ContactMessageRepository struct {
	db *sql.DB
}

func NewContactMessageRepository(db *sql.DB) *ContactMessageRepository {
	return &ContactMessageRepository{db: db}
}

func (r *ContactMessageRepository) Create(ctx context.Context, m *models.ContactMessage) error {
	m.ID = "msg_" + uuid.NewString()
	m.CreatedAt = time.Now().Unix()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contact_messages (id, firstname, lastname, email, subject, message, notified, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Firstname, m.Lastname, m.Email, m.Subject, m.Message, m.Notified, m.CreatedAt)
	return err
}

func (r *ContactMessageRepository) MarkNotified(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE contact_messages SET notified = 1 WHERE id = ?`, id)
	return err
}

func (r *ContactMessageRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contact_messages WHERE id = ?`, id)
	return affected(res, err)
}

func (r *ContactMessageRepository) List(ctx context.Context) ([]*models.ContactMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, firstname, lastname, email, subject, message, notified, created_at
		FROM contact_messages ORDER BY created_at DESC LIMIT ?
	`, listLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.ContactMessage
	for rows.Next() {
		var m models.ContactMessage
		if err := rows.Scan(&m.ID, &m.Firstname, &m.Lastname, &m.Email, &m.Subject, &m.Message, &m.Notified, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

type ProcedureRepository struct {
	db *sql.DB
}

func NewProcedureRepository(db *sql.DB) *ProcedureRepository {
	return &ProcedureRepository{db: db}
}

func (r *ProcedureRepository) Create(ctx context.Context, s *models.ProcedureSubmission) error {
	s.ID = "proc_" + uuid.NewString()
	s.CreatedAt = time.Now().Unix()
	if s.Status == "" {
		s.Status = models.SubmissionPending
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO procedure_submissions (id, procedure_type, firstname, lastname, email, phone, address, details, status, notified, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.ProcedureType, s.Firstname, s.Lastname, s.Email, s.Phone, s.Address, s.Details, string(s.Status), s.Notified, s.CreatedAt)
	return err
}

// SetStatus records how staff handled the submission.
func (r *ProcedureRepository) SetStatus(ctx context.Context, id string, status models.SubmissionStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE procedure_submissions SET status = ? WHERE id = ?`, string(status), id)
	return affected(res, err)
}

func (r *ProcedureRepository) MarkNotified(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE procedure_submissions SET notified = 1 WHERE id = ?`, id)
	return err
}

func (r *ProcedureRepository) List(ctx context.Context) ([]*models.ProcedureSubmission, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, procedure_type, firstname, lastname, email, phone, address, details, status, notified, created_at
		FROM procedure_submissions ORDER BY created_at DESC LIMIT ?
	`, listLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var submissions []*models.ProcedureSubmission
	for rows.Next() {
		var s models.ProcedureSubmission
		if err := rows.Scan(&s.ID, &s.ProcedureType, &s.Firstname, &s.Lastname, &s.Email, &s.Phone, &s.Address, &s.Details, &s.Status, &s.Notified, &s.CreatedAt); err != nil {
			return nil, err
		}
		submissions = append(submissions, &s)
	}
	return submissions, rows.Err()
}

type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, a *models.Application) error {
	a.ID = "app_" + uuid.NewString()
	a.CreatedAt = time.Now().Unix()

	var jobID sql.NullString
	if a.JobID != "" {
		jobID = sql.NullString{String: a.JobID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO applications (id, job_id, rp_lastname, rp_firstname, rp_age, position, motivation, experience, discord_id, availability, source, notified, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, jobID, a.RPLastname, a.RPFirstname, a.RPAge, a.Position, a.Motivation, a.Experience, a.DiscordID, a.Availability, a.Source, a.Notified, a.CreatedAt)
	return err
}

func (r *ApplicationRepository) MarkNotified(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE applications SET notified = 1 WHERE id = ?`, id)
	return err
}

func (r *ApplicationRepository) List(ctx context.Context) ([]*models.Application, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, job_id, rp_lastname, rp_firstname, rp_age, position, motivation, experience, discord_id, availability, source, notified, created_at
		FROM applications ORDER BY created_at DESC LIMIT ?
	`, listLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var applications []*models.Application
	for rows.Next() {
		var a models.Application
		var jobID sql.NullString
		if err := rows.Scan(&a.ID, &jobID, &a.RPLastname, &a.RPFirstname, &a.RPAge, &a.Position, &a.Motivation, &a.Experience, &a.DiscordID, &a.Availability, &a.Source, &a.Notified, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.JobID = jobID.String
		applications = append(applications, &a)
	}
	return applications, rows.Err()
}
