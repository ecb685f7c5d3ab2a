package handlers

import (
	"net/http"
	"time"

	"portal/internal/api/middleware"
	"portal/internal/pkg/errors"
	"portal/internal/pkg/validator"
	"portal/internal/platform/audit"
	"portal/internal/platform/models"
	"portal/internal/platform/repositories"
)

const (
	defaultCategory    = "Général"
	defaultServiceIcon = "FileText"
)

type NewsHandler struct {
	news  *repositories.NewsRepository
	audit *audit.Logger
}

func NewNewsHandler(news *repositories.NewsRepository, auditLogger *audit.Logger) *NewsHandler {
	return &NewsHandler{news: news, audit: auditLogger}
}

type NewsRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Content  string `json:"content" validate:"required"`
	Category string `json:"category" validate:"omitempty,max=80"`
	ImageURL string `json:"image_url" validate:"omitempty,url,max=500"`
}

func (h *NewsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.news.List(r.Context())
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list news", nil)
		return
	}
	if items == nil {
		items = []*models.NewsArticle{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *NewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req NewsRequest
	if err := decodeJSON(r, &req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if err := validator.Struct(req); err != nil {
		writeInputError(w, err)
		return
	}

	article := &models.NewsArticle{Title: req.Title, Content: req.Content, Category: orDefault(req.Category, defaultCategory), ImageURL: req.ImageURL}
	if err := h.news.Create(r.Context(), article); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create article", nil)
		return
	}

	h.audit.Log(r.Context(), r, middleware.ProfileFrom(r).ID, audit.ActionNewsCreated, "news", article.ID, map[string]interface{}{"title": article.Title})
	writeJSON(w, http.StatusCreated, article)
}

func (h *NewsHandler) Update(w http.ResponseWriter, r *http.Request) {
	article, err := h.news.GetByID(r.Context(), param(r, "news_id"))
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load article", nil)
		return
	}
	if article == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Article not found", nil)
		return
	}

	req := NewsRequest{Title: article.Title, Content: article.Content, Category: article.Category, ImageURL: article.ImageURL}
	if err := decodeJSON(r, &req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if err := validator.Struct(req); err != nil {
		writeInputError(w, err)
		return
	}

	article.Title = req.Title
	article.Content = req.Content
	article.Category = orDefault(req.Category, defaultCategory)
	article.ImageURL = req.ImageURL
	if err := h.news.Update(r.Context(), article); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update article", nil)
		return
	}

	h.audit.Log(r.Context(), r, middleware.ProfileFrom(r).ID, audit.ActionNewsUpdated, "news", article.ID, nil)
	writeJSON(w, http.StatusOK, article)
}

func (h *NewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := param(r, "news_id")
	deleted, err := h.news.Delete(r.Context(), id)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to delete article", nil)
		return
	}
	if !deleted {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Article not found", nil)
		return
	}

	h.audit.Log(r.Context(), r, middleware.ProfileFrom(r).ID, audit.ActionNewsDeleted, "news", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

type EventHandler struct {
	events *repositories.EventRepository
	audit  *audit.Logger
	now    func() time.Time
}

func NewEventHandler(events *repositories.EventRepository, auditLogger *audit.Logger) *EventHandler {
	return &EventHandler{events: events, audit: auditLogger, now: time.Now}
}

// EventRequest carries event_date as an RFC 3339 timestamp.
type EventRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	EventDate   string `json:"event_date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Location    string `json:"location" validate:"omitempty,max=200"`
	Category    string `json:"category" validate:"omitempty,max=80"`
	ImageURL    string `json:"image_url" validate:"omitempty,url,max=500"`
}

func (req EventRequest) apply(e *models.Event) error {
	at, err := time.Parse(time.RFC3339, req.EventDate)
	if err != nil {
		return err
	}
	e.Title = req.Title
	e.Description = req.Description
	e.EventDate = at.Unix()
	e.Location = req.Location
	e.Category = orDefault(req.Category, defaultCategory)
	e.ImageURL = req.ImageURL
	return nil
}

// ListUpcoming is the public calendar: events from now on, soonest first.
func (h *EventHandler) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.now().Unix())
}

func (h *EventHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, 0)
}

func (h *EventHandler) list(w http.ResponseWriter, r *http.Request, from int64) {
	items, err := h.events.List(r.Context(), from)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list events", nil)
		return
	}
	if items == nil {
		items = []*models.Event{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if err := decodeJSON(r, &req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if err := validator.Struct(req); err != nil {
		writeInputError(w, err)
		return
	}

	event := &models.Event{}
	if err := req.apply(event); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid event date", nil)
		return
	}
	if err := h.events.Create(r.Context(), event); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create event", nil)
		return
	}

	h.audit.Log(r.Context(), r, middleware.ProfileFrom(r).ID, audit.ActionEventCreated, "event", event.ID, map[string]interface{}{"title": event.Title})
	writeJSON(w, http.StatusCreated, event)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.GetByID(r.Context(), param(r, "event_id"))
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load event", nil)
		return
	}
	if event == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Event not found", nil)
		return
	}

	req := EventRequest{
		Title:       event.Title,
		Description: event.Description,
		EventDate:   time.Unix(event.EventDate, 0).UTC().Format(time.RFC3339),
		Location:    event.Location,
		Category:    event.Category,
		ImageURL:    event.ImageURL,
	}
	if err := decodeJSON(r, &req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if err := validator.Struct(req); err != nil {
		writeInputError(w, err)
		return
	}
	if err := req.apply(event); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid event date", nil)
		return
	}
	if err := h.events.Update(r.Context(), event); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update event", nil)
		return
	}

	h.audit.Log(r.Context(), r, middleware.ProfileFrom(r).ID, audit.ActionEventUpdated, "event", event.ID, map[string]interface{}{"event_date": event.EventDate})
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := param(r, "event_id")
	deleted, err := h.events.Delete(r.Context(), id)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to delete event", nil)
		return
	}
	if !deleted {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Event not found", nil)
		return
	}

	h.audit.Log(r.Context(), r, middleware.ProfileFrom(r).ID, audit.ActionEventDeleted, "event", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

type ServiceHandler struct {
	services *repositories.ServiceRepository
	audit    *audit.Logger
}

func NewServiceHandler(services *repositories.ServiceRepository, auditLogger *audit.Logger) *ServiceHandler {
	return &ServiceHandler{services: services, audit: auditLogger}
}

type ServiceRequest struct {
	Title       string                `json:"title" validate:"required,max=200"`
	Description string                `json:"description"`
	Category    string                `json:"category" validate:"omitempty,max=80"`
	Icon        string                `json:"icon" validate:"omitempty,max=64"`
	Fields      []models.ServiceField `json:"fields" validate:"max=50,dive"`
	IsActive    *bool                 `json:"is_active"`
}

// ListActive is the public catalogue of online procedures.
func (h *ServiceHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *ServiceHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

func (h *ServiceHandler) list(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	items, err := h.services.List(r.Context(), activeOnly)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list services", nil)
		return
	}
	if items == nil {
		items = []*models.Service{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ServiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ServiceRequest
	if err := decodeJSON(r, &req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if err := validator.Struct(req); err != nil {
		writeInputError(w, err)
		return
	}

	svc := &models.Service{
		Title:       req.Title,
		Description: req.Description,
		Category:    orDefault(req.Category, defaultCategory),
		Icon:        orDefault(req.Icon, defaultServiceIcon),
		Fields:      req.Fields,
		IsActive:    req.IsActive == nil || *req.IsActive,
	}
	if svc.Fields == nil {
		svc.Fields = []models.ServiceField{}
	}
	if err := h.services.Create(r.Context(), svc); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create service", nil)
		return
	}

	h.audit.Log(r.Context(), r, middleware.ProfileFrom(r).ID, audit.ActionServiceCreated, "service", svc.ID, map[string]interface{}{"title": svc.Title})
	writeJSON(w, http.StatusCreated, svc)
}

func (h *ServiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	svc, err := h.services.GetByID(r.Context(), param(r, "service_id"))
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load service", nil)
		return
	}
	if svc == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Service not found", nil)
		return
	}

	req := ServiceRequest{
		Title:       svc.Title,
		Description: svc.Description,
		Category:    svc.Category,
		Icon:        svc.Icon,
		Fields:      svc.Fields,
		IsActive:    &svc.IsActive,
	}
	if err := decodeJSON(r, &req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if err := validator.Struct(req); err != nil {
		writeInputError(w, err)
		return
	}

	svc.Title = req.Title
	svc.Description = req.Description
	svc.Category = orDefault(req.Category, defaultCategory)
	svc.Icon = orDefault(req.Icon, defaultServiceIcon)
	svc.Fields = req.Fields
	if svc.Fields == nil {
		svc.Fields = []models.ServiceField{}
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}
	if err := h.services.Update(r.Context(), svc); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update service", nil)
		return
	}

	h.audit.Log(r.Context(), r, middleware.ProfileFrom(r).ID, audit.ActionServiceUpdated, "service", svc.ID, map[string]interface{}{"is_active": svc.IsActive})
	writeJSON(w, http.StatusOK, svc)
}

func (h *ServiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := param(r, "service_id")
	deleted, err := h.services.Delete(r.Context(), id)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to delete service", nil)
		return
	}
	if !deleted {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Service not found", nil)
		return
	}

	h.audit.Log(r.Context(), r, middleware.ProfileFrom(r).ID, audit.ActionServiceDeleted, "service", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
