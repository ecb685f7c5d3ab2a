package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"portal/internal/platform/models"
)

type NewsRepository struct {
	db *sql.DB
}

func NewNewsRepository(db *sql.DB) *NewsRepository {
	return &NewsRepository{db: db}
}

const newsColumns = `id, title, content, category, image_url, published_at, created_at, updated_at`

func (r *NewsRepository) Create(ctx context.Context, n *models.NewsArticle) error {
	now := time.Now().Unix()
	n.ID = "news_" + uuid.NewString()
	n.CreatedAt = now
	n.UpdatedAt = now
	if n.PublishedAt == 0 {
		n.PublishedAt = now
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO news (`+newsColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.Title, n.Content, n.Category, n.ImageURL, n.PublishedAt, n.CreatedAt, n.UpdatedAt)
	return err
}

func (r *NewsRepository) GetByID(ctx context.Context, id string) (*models.NewsArticle, error) {
	n, err := scanNews(r.db.QueryRowContext(ctx, `SELECT `+newsColumns+` FROM news WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return n, err
}

func (r *NewsRepository) Update(ctx context.Context, n *models.NewsArticle) error {
	n.UpdatedAt = time.Now().Unix()
	_, err := r.db.ExecContext(ctx, `
		UPDATE news SET title = ?, content = ?, category = ?, image_url = ?, updated_at = ?
		WHERE id = ?
	`, n.Title, n.Content, n.Category, n.ImageURL, n.UpdatedAt, n.ID)
	return err
}

func (r *NewsRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM news WHERE id = ?`, id)
	return affected(res, err)
}

// List returns the most recently published articles first.
func (r *NewsRepository) List(ctx context.Context) ([]*models.NewsArticle, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+newsColumns+` FROM news ORDER BY published_at DESC LIMIT ?`, listLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.NewsArticle
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func scanNews(s scanner) (*models.NewsArticle, error) {
	var n models.NewsArticle
	if err := s.Scan(&n.ID, &n.Title, &n.Content, &n.Category, &n.ImageURL, &n.PublishedAt, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, title, description, event_date, location, category, image_url, created_at, updated_at`

func (r *EventRepository) Create(ctx context.Context, e *models.Event) error {
	now := time.Now().Unix()
	e.ID = "evt_" + uuid.NewString()
	e.CreatedAt = now
	e.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Title, e.Description, e.EventDate, e.Location, e.Category, e.ImageURL, e.CreatedAt, e.UpdatedAt)
	return err
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

func (r *EventRepository) Update(ctx context.Context, e *models.Event) error {
	e.UpdatedAt = time.Now().Unix()
	_, err := r.db.ExecContext(ctx, `
		UPDATE events SET title = ?, description = ?, event_date = ?, location = ?, category = ?, image_url = ?, updated_at = ?
		WHERE id = ?
	`, e.Title, e.Description, e.EventDate, e.Location, e.Category, e.ImageURL, e.UpdatedAt, e.ID)
	return err
}

func (r *EventRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	return affected(res, err)
}

// List returns events in date order. A non-zero from keeps only events on or
// after that unix time.
func (r *EventRepository) List(ctx context.Context, from int64) ([]*models.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+eventColumns+` FROM events WHERE event_date >= ? ORDER BY event_date ASC LIMIT ?
	`, from, listLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEvent(s scanner) (*models.Event, error) {
	var e models.Event
	if err := s.Scan(&e.ID, &e.Title, &e.Description, &e.EventDate, &e.Location, &e.Category, &e.ImageURL, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

type ServiceRepository struct {
	db *sql.DB
}

func NewServiceRepository(db *sql.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

const serviceColumns = `id, title, description, category, icon, fields, is_active, created_at, updated_at`

func (r *ServiceRepository) Create(ctx context.Context, s *models.Service) error {
	fields, err := encodeFields(s.Fields)
	if err != nil {
		return err
	}
	now := time.Now().Unix()
	s.ID = "svc_" + uuid.NewString()
	s.CreatedAt = now
	s.UpdatedAt = now

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO services (`+serviceColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.Title, s.Description, s.Category, s.Icon, fields, s.IsActive, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *ServiceRepository) GetByID(ctx context.Context, id string) (*models.Service, error) {
	s, err := scanService(r.db.QueryRowContext(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

func (r *ServiceRepository) Update(ctx context.Context, s *models.Service) error {
	fields, err := encodeFields(s.Fields)
	if err != nil {
		return err
	}
	s.UpdatedAt = time.Now().Unix()
	_, err = r.db.ExecContext(ctx, `
		UPDATE services SET title = ?, description = ?, category = ?, icon = ?, fields = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`, s.Title, s.Description, s.Category, s.Icon, fields, s.IsActive, s.UpdatedAt, s.ID)
	return err
}

func (r *ServiceRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM services WHERE id = ?`, id)
	return affected(res, err)
}

func (r *ServiceRepository) List(ctx context.Context, activeOnly bool) ([]*models.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func encodeFields(fields []models.ServiceField) (string, error) {
	if fields == nil {
		fields = []models.ServiceField{}
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode service fields: %w", err)
	}
	return string(b), nil
}

func scanService(s scanner) (*models.Service, error) {
	var svc models.Service
	var fields string
	if err := s.Scan(&svc.ID, &svc.Title, &svc.Description, &svc.Category, &svc.Icon, &fields, &svc.IsActive, &svc.CreatedAt, &svc.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(fields), &svc.Fields); err != nil {
		return nil, fmt.Errorf("decode fields of service %s: %w", svc.ID, err)
	}
	return &svc, nil
}

// DashboardRepository counts rows for the admin home page.
type DashboardRepository struct {
	db *sql.DB
}

func NewDashboardRepository(db *sql.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

func (r *DashboardRepository) Counts(ctx context.Context, now time.Time) (*models.DashboardCounts, error) {
	var c models.DashboardCounts
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM profiles),
			(SELECT COUNT(*) FROM jobs WHERE is_open = 1),
			(SELECT COUNT(*) FROM events WHERE event_date >= ?),
			(SELECT COUNT(*) FROM news),
			(SELECT COUNT(*) FROM applications),
			(SELECT COUNT(*) FROM procedure_submissions WHERE status = ?),
			(SELECT COUNT(*) FROM contact_messages)
	`, now.Unix(), string(models.SubmissionPending)).Scan(
		&c.Users, &c.OpenJobs, &c.UpcomingEvents, &c.News, &c.Applications, &c.PendingProcedures, &c.Messages,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
