package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal/internal/platform/models"
	"portal/internal/platform/repositories"
)

var contentAdminRoutes = []struct{ method, path string }{
	{"GET", "/api/v1/admin/dashboard"},
	{"DELETE", "/api/v1/admin/messages/msg_x"},
	{"PATCH", "/api/v1/admin/procedures/proc_x/status"},
	{"GET", "/api/v1/admin/news"},
	{"POST", "/api/v1/admin/news"},
	{"PATCH", "/api/v1/admin/news/news_x"},
	{"DELETE", "/api/v1/admin/news/news_x"},
	{"GET", "/api/v1/admin/events"},
	{"POST", "/api/v1/admin/events"},
	{"PATCH", "/api/v1/admin/events/evt_x"},
	{"DELETE", "/api/v1/admin/events/evt_x"},
	{"GET", "/api/v1/admin/services"},
	{"POST", "/api/v1/admin/services"},
	{"PATCH", "/api/v1/admin/services/svc_x"},
	{"DELETE", "/api/v1/admin/services/svc_x"},
}

func TestContentRoutesRequireContentRole(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser("citoyen@mairie.bc", models.RoleUnassigned, true)
	env.seedUser("ancien@mairie.bc", models.RoleStaff, false)

	for _, rt := range contentAdminRoutes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, env.do(rt.method, rt.path, "", nil).Code)

			unassigned := env.login("citoyen@mairie.bc", "password123")
			assert.Equal(t, http.StatusForbidden, env.do(rt.method, rt.path, unassigned, nil).Code)

			inactive := env.login("ancien@mairie.bc", "password123")
			assert.Equal(t, http.StatusUnauthorized, env.do(rt.method, rt.path, inactive, nil).Code)
		})
	}

	for _, path := range []string{"/api/v1/news", "/api/v1/events", "/api/v1/services"} {
		assert.Equal(t, http.StatusOK, env.do("GET", path, "", nil).Code, path)
	}
}

func TestNews(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser("com@mairie.bc", models.RoleStaff, true)

	rr := env.do("POST", "/api/v1/admin/news", token, map[string]string{"title": "Travaux"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do("POST", "/api/v1/admin/news", token, map[string]string{"title": "Travaux", "content": "Rue fermée lundi"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var article models.NewsArticle
	decode(t, rr, &article)
	assert.Equal(t, "Général", article.Category)
	assert.NotZero(t, article.PublishedAt)

	rr = env.do("PATCH", "/api/v1/admin/news/"+article.ID, token, map[string]string{"category": "Voirie"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	decode(t, rr, &article)
	assert.Equal(t, "Voirie", article.Category)
	assert.Equal(t, "Travaux", article.Title)

	var list []models.NewsArticle
	decode(t, env.do("GET", "/api/v1/news", "", nil), &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Voirie", list[0].Category)

	assert.Equal(t, http.StatusNoContent, env.do("DELETE", "/api/v1/admin/news/"+article.ID, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do("DELETE", "/api/v1/admin/news/"+article.ID, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do("PATCH", "/api/v1/admin/news/"+article.ID, token, map[string]string{}).Code)

	var actions []string
	rows, err := env.db.Query(`SELECT action FROM audit_logs WHERE resource_id = ? ORDER BY created_at`, article.ID)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var a string
		require.NoError(t, rows.Scan(&a))
		actions = append(actions, a)
	}
	assert.ElementsMatch(t, []string{"news.created", "news.updated", "news.deleted"}, actions)
}

func TestEvents(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser("fetes@mairie.bc", models.RoleAdmin, true)

	rr := env.do("POST", "/api/v1/admin/events", token, map[string]string{"title": "Brocante", "event_date": "samedi"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	future := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	past := time.Now().Add(-48 * time.Hour).UTC().Truncate(time.Second)

	rr = env.do("POST", "/api/v1/admin/events", token, map[string]string{"title": "Brocante", "event_date": future.Format(time.RFC3339), "location": "Place"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var upcoming models.Event
	decode(t, rr, &upcoming)
	assert.Equal(t, future.Unix(), upcoming.EventDate)

	rr = env.do("POST", "/api/v1/admin/events", token, map[string]string{"title": "Fête", "event_date": past.Format(time.RFC3339)})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var over models.Event
	decode(t, rr, &over)

	var public []models.Event
	decode(t, env.do("GET", "/api/v1/events", "", nil), &public)
	require.Len(t, public, 1)
	assert.Equal(t, upcoming.ID, public[0].ID)

	var all []models.Event
	decode(t, env.do("GET", "/api/v1/admin/events", token, nil), &all)
	require.Len(t, all, 2)
	assert.Equal(t, over.ID, all[0].ID)

	// moving the past event forward publishes it
	rr = env.do("PATCH", "/api/v1/admin/events/"+over.ID, token, map[string]string{"event_date": future.Add(time.Hour).Format(time.RFC3339)})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	decode(t, env.do("GET", "/api/v1/events", "", nil), &public)
	assert.Len(t, public, 2)

	assert.Equal(t, http.StatusNoContent, env.do("DELETE", "/api/v1/admin/events/"+over.ID, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do("DELETE", "/api/v1/admin/events/"+over.ID, token, nil).Code)
}

func TestServices(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser("accueil@mairie.bc", models.RoleStaff, true)

	rr := env.do("POST", "/api/v1/admin/services", token, map[string]interface{}{
		"title":  "Carte d'identité",
		"fields": []map[string]interface{}{{"name": "birthdate", "label": "Date de naissance", "type": "colour"}},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do("POST", "/api/v1/admin/services", token, map[string]interface{}{
		"title":  "Carte d'identité",
		"fields": []map[string]interface{}{{"name": "birthdate", "label": "Date de naissance", "type": "date", "required": true}},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var svc models.Service
	decode(t, rr, &svc)
	assert.True(t, svc.IsActive)
	assert.Equal(t, "FileText", svc.Icon)
	require.Len(t, svc.Fields, 1)
	assert.True(t, svc.Fields[0].Required)

	var public []models.Service
	decode(t, env.do("GET", "/api/v1/services", "", nil), &public)
	assert.Len(t, public, 1)

	rr = env.do("PATCH", "/api/v1/admin/services/"+svc.ID, token, map[string]interface{}{"is_active": false})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	decode(t, rr, &svc)
	assert.False(t, svc.IsActive)
	assert.Len(t, svc.Fields, 1)

	decode(t, env.do("GET", "/api/v1/services", "", nil), &public)
	assert.Empty(t, public)
	var all []models.Service
	decode(t, env.do("GET", "/api/v1/admin/services", token, nil), &all)
	assert.Len(t, all, 1)

	assert.Equal(t, http.StatusNoContent, env.do("DELETE", "/api/v1/admin/services/"+svc.ID, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do("PATCH", "/api/v1/admin/services/"+svc.ID, token, map[string]interface{}{}).Code)
}

func TestInboxTriage(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser("accueil@mairie.bc", models.RoleStaff, true)
	ctx := context.Background()

	proc := &models.ProcedureSubmission{ProcedureType: "Carte", Firstname: "Jean", Lastname: "Dupont", Email: "jean@ex.com"}
	require.NoError(t, repositories.NewProcedureRepository(env.db).Create(ctx, proc))
	msg := &models.ContactMessage{Firstname: "Jean", Lastname: "Dupont", Email: "jean@ex.com", Subject: "Test", Message: "Bonjour"}
	require.NoError(t, repositories.NewContactMessageRepository(env.db).Create(ctx, msg))

	t.Run("procedure status", func(t *testing.T) {
		path := "/api/v1/admin/procedures/" + proc.ID + "/status"
		assert.Equal(t, http.StatusBadRequest, env.do("PATCH", path, token, map[string]string{"status": "ARCHIVED"}).Code)
		assert.Equal(t, http.StatusNotFound, env.do("PATCH", "/api/v1/admin/procedures/proc_missing/status", token, map[string]string{"status": "REJECTED"}).Code)

		rr := env.do("PATCH", path, token, map[string]string{"status": "PROCESSED"})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var list []models.ProcedureSubmission
		decode(t, env.do("GET", "/api/v1/admin/procedures", token, nil), &list)
		require.Len(t, list, 1)
		assert.Equal(t, models.SubmissionProcessed, list[0].Status)
	})

	t.Run("dashboard", func(t *testing.T) {
		rr := env.do("GET", "/api/v1/admin/dashboard", token, nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var counts models.DashboardCounts
		decode(t, rr, &counts)
		assert.Equal(t, 1, counts.Users)
		assert.Equal(t, 0, counts.PendingProcedures)
		assert.Equal(t, 1, counts.Messages)
	})

	t.Run("delete message", func(t *testing.T) {
		path := "/api/v1/admin/messages/" + msg.ID
		assert.Equal(t, http.StatusNoContent, env.do("DELETE", path, token, nil).Code)
		assert.Equal(t, http.StatusNotFound, env.do("DELETE", path, token, nil).Code)

		var list []models.ContactMessage
		decode(t, env.do("GET", "/api/v1/admin/messages", token, nil), &list)
		assert.Empty(t, list)

		var count int
		require.NoError(t, env.db.QueryRow(`SELECT COUNT(*) FROM audit_logs WHERE action = ? AND resource_id = ?`, "message.deleted", msg.ID).Scan(&count))
		assert.Equal(t, 1, count)
	})
}
