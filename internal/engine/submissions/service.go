package submissions

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"portal/internal/engine/webhooks"
	"portal/internal/pkg/validator"
	"portal/internal/platform/models"
	"portal/internal/platform/repositories"
)

// WarningNotNotified is returned to the submitter when the record was saved
// but the relay did not accept the notification.
const WarningNotNotified = "Votre demande a bien été enregistrée, mais l'équipe n'a pas pu être notifiée."

type Notifier interface {
	Dispatch(ctx context.Context, p webhooks.Payload) (webhooks.Result, error)
}

// ApplicationForm is an application payload plus the optional posting it answers.
type ApplicationForm struct {
	webhooks.Application
	JobID  string `json:"job_id" validate:"omitempty,max=64"`
	Source string `json:"source" validate:"omitempty,max=50"`
}

// Result is what the submitter learns about a stored submission.
type Result struct {
	ID       string `json:"id"`
	Notified bool   `json:"notified"`
	Warning  string `json:"warning,omitempty"`
}

// Service stores public form submissions and notifies the matching channel.
// The record is written before the notification and is kept whatever the
// relay answers.
type Service struct {
	contacts     *repositories.ContactMessageRepository
	procedures   *repositories.ProcedureRepository
	applications *repositories.ApplicationRepository
	jobs         *repositories.JobRepository
	notifier     Notifier
}

func NewService(
	contacts *repositories.ContactMessageRepository,
	procedures *repositories.ProcedureRepository,
	applications *repositories.ApplicationRepository,
	jobs *repositories.JobRepository,
	notifier Notifier,
) *Service {
	return &Service{
		contacts:     contacts,
		procedures:   procedures,
		applications: applications,
		jobs:         jobs,
		notifier:     notifier,
	}
}

func (s *Service) SubmitContact(ctx context.Context, c webhooks.Contact) (*Result, error) {
	c = trimContact(c)
	if err := validator.Struct(c); err != nil {
		return nil, err
	}

	record := &models.ContactMessage{
		Firstname: c.FirstName,
		Lastname:  c.LastName,
		Email:     validator.NormalizeEmail(c.Email),
		Subject:   c.Subject,
		Message:   c.Message,
	}
	if err := s.contacts.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("store contact message: %w", err)
	}

	return s.notify(ctx, record.ID, c, s.contacts.MarkNotified), nil
}

func (s *Service) SubmitProcedure(ctx context.Context, p webhooks.Procedure) (*Result, error) {
	p = trimProcedure(p)
	if err := validator.Struct(p); err != nil {
		return nil, err
	}

	record := &models.ProcedureSubmission{
		ProcedureType: p.ProcedureType,
		Firstname:     p.FirstName,
		Lastname:      p.LastName,
		Email:         validator.NormalizeEmail(p.Email),
		Phone:         p.Phone,
		Address:       p.Address,
		Details:       p.Details,
	}
	if err := s.procedures.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("store procedure submission: %w", err)
	}

	return s.notify(ctx, record.ID, p, s.procedures.MarkNotified), nil
}

func (s *Service) SubmitApplication(ctx context.Context, form ApplicationForm) (*Result, error) {
	form.Application = trimApplication(form.Application)
	form.JobID = strings.TrimSpace(form.JobID)
	form.Source = strings.TrimSpace(form.Source)
	if err := validator.Struct(form); err != nil {
		return nil, err
	}

	if form.JobID != "" {
		job, err := s.jobs.GetByID(ctx, form.JobID)
		if err != nil {
			return nil, fmt.Errorf("load job: %w", err)
		}
		if job == nil || !job.IsOpen {
			return nil, &validator.ValidationError{Fields: []validator.FieldError{{Field: "job_id", Rule: "open_job"}}}
		}
		if form.Position == "" {
			form.Position = job.Title
		}
	}

	a := form.Application
	record := &models.Application{
		JobID:        form.JobID,
		RPLastname:   a.RPLastName,
		RPFirstname:  a.RPFirstName,
		RPAge:        a.RPAge,
		Position:     a.Position,
		Motivation:   a.Motivation,
		Experience:   a.Experience,
		DiscordID:    a.DiscordID,
		Availability: a.Availability,
		Source:       form.Source,
	}
	if err := s.applications.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("store application: %w", err)
	}

	return s.notify(ctx, record.ID, a, s.applications.MarkNotified), nil
}

// notify dispatches p and flags the record only when the relay accepted it.
// Failures here never undo the stored record.
func (s *Service) notify(ctx context.Context, id string, p webhooks.Payload, mark func(context.Context, string) error) *Result {
	res := &Result{ID: id}
	logger := log.With().Str("submission_id", id).Str("channel", string(p.Channel())).Logger()

	outcome, err := s.notifier.Dispatch(ctx, p)
	if err != nil {
		logger.Warn().Err(err).Msg("submission stored without notification")
		res.Warning = WarningNotNotified
		return res
	}
	if outcome.Skipped {
		return res
	}

	if err := mark(ctx, id); err != nil {
		logger.Error().Err(err).Msg("failed to flag submission as notified")
		return res
	}
	res.Notified = true
	return res
}

func trimContact(c webhooks.Contact) webhooks.Contact {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Email = strings.TrimSpace(c.Email)
	c.Subject = strings.TrimSpace(c.Subject)
	c.Message = strings.TrimSpace(c.Message)
	return c
}

func trimProcedure(p webhooks.Procedure) webhooks.Procedure {
	p.ProcedureType = strings.TrimSpace(p.ProcedureType)
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Address = strings.TrimSpace(p.Address)
	p.Details = strings.TrimSpace(p.Details)
	return p
}

func trimApplication(a webhooks.Application) webhooks.Application {
	a.RPLastName = strings.TrimSpace(a.RPLastName)
	a.RPFirstName = strings.TrimSpace(a.RPFirstName)
	a.Position = strings.TrimSpace(a.Position)
	a.Motivation = strings.TrimSpace(a.Motivation)
	a.Experience = strings.TrimSpace(a.Experience)
	a.DiscordID = strings.TrimSpace(a.DiscordID)
	a.Availability = strings.TrimSpace(a.Availability)
	return a
}
