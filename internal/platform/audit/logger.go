package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"portal/internal/pkg/request"
	"portal/internal/platform/models"
)

const listLimit = 100

// Actions recorded by the admin surface.
const (
	ActionUserRoleChanged   = "user.role_changed"
	ActionUserApproved      = "user.approved"
	ActionUserToggled       = "user.toggled"
	ActionUserDeleted       = "user.deleted"
	ActionIntegrationSet    = "integration.updated"
	ActionIntegrationTested = "integration.tested"
	ActionSettingsUpdated   = "settings.updated"
	ActionJobCreated        = "job.created"
	ActionJobUpdated        = "job.updated"
	ActionJobDeleted        = "job.deleted"
	ActionNewsCreated       = "news.created"
	ActionNewsUpdated       = "news.updated"
	ActionNewsDeleted       = "news.deleted"
	ActionEventCreated      = "event.created"
	ActionEventUpdated      = "event.updated"
	ActionEventDeleted      = "event.deleted"
	ActionServiceCreated    = "service.created"
	ActionServiceUpdated    = "service.updated"
	ActionServiceDeleted    = "service.deleted"
	ActionProcedureStatus   = "procedure.status_changed"
	ActionMessageDeleted    = "message.deleted"
)

type Logger struct {
	db *sql.DB
}

func NewLogger(db *sql.DB) *Logger {
	return &Logger{db: db}
}

// Log records an admin action taken by actorID during r. A failed insert is
// logged and does not fail the action it describes.
func (l *Logger) Log(ctx context.Context, r *http.Request, actorID, action, resourceType, resourceID string, metadata map[string]interface{}) {
	entry := &models.AuditLog{
		ID:           "audit_" + uuid.NewString(),
		ActorID:      actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Metadata:     metadata,
		IPAddress:    "unknown",
		UserAgent:    "unknown",
		CreatedAt:    time.Now().Unix(),
	}
	if r != nil {
		entry.IPAddress = request.ClientIP(r)
		if ua := r.UserAgent(); ua != "" {
			entry.UserAgent = ua
		}
	}

	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		metaJSON = []byte("{}")
	}

	_, err = l.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_id, action, resource_type, resource_id, metadata, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.ActorID, entry.Action, entry.ResourceType, entry.ResourceID, string(metaJSON), entry.IPAddress, entry.UserAgent, entry.CreatedAt)
	if err != nil {
		log.Error().Err(err).Str("action", action).Str("actor_id", actorID).Msg("failed to write audit log")
	}
}

func (l *Logger) List(ctx context.Context) ([]*models.AuditLog, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, actor_id, action, resource_type, resource_id, metadata, ip_address, user_agent, created_at
		FROM audit_logs ORDER BY created_at DESC LIMIT ?
	`, listLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.AuditLog
	for rows.Next() {
		var entry models.AuditLog
		var metaStr string
		if err := rows.Scan(&entry.ID, &entry.ActorID, &entry.Action, &entry.ResourceType, &entry.ResourceID, &metaStr, &entry.IPAddress, &entry.UserAgent, &entry.CreatedAt); err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(metaStr), &entry.Metadata)
		logs = append(logs, &entry)
	}
	return logs, rows.Err()
}
