package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"portal/internal/platform/models"
)

type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `id, title, department, description, is_open, created_at, updated_at`

func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	now := time.Now().Unix()
	job.ID = "job_" + uuid.NewString()
	job.CreatedAt = now
	job.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO jobs (`+jobColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, job.ID, job.Title, job.Department, job.Description, job.IsOpen, job.CreatedAt, job.UpdatedAt)
	return err
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (*models.Job, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return job, nil
}

func (r *JobRepository) Update(ctx context.Context, job *models.Job) error {
	job.UpdatedAt = time.Now().Unix()
	_, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET title = ?, department = ?, description = ?, is_open = ?, updated_at = ?
		WHERE id = ?
	`, job.Title, job.Department, job.Description, job.IsOpen, job.UpdatedAt, job.ID)
	return err
}

func (r *JobRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	return affected(res, err)
}

func (r *JobRepository) List(ctx context.Context, openOnly bool) ([]*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	if openOnly {
		query += ` WHERE is_open = 1`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func scanJob(s scanner) (*models.Job, error) {
	var j models.Job
	if err := s.Scan(&j.ID, &j.Title, &j.Department, &j.Description, &j.IsOpen, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, err
	}
	return &j, nil
}
