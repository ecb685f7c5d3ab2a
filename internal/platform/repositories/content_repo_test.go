package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal/internal/platform/models"
)

func TestNewsRepository_NewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNewsRepository(db)
	ctx := context.Background()

	older := &models.NewsArticle{Title: "Travaux", Content: "Rue fermée", Category: "Voirie", PublishedAt: 1000}
	newer := &models.NewsArticle{Title: "Marché", Content: "Samedi", Category: "Général", PublishedAt: 2000}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)

	older.Title = "Travaux prolongés"
	require.NoError(t, repo.Update(ctx, older))
	got, err := repo.GetByID(ctx, older.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Travaux prolongés", got.Title)
	assert.Equal(t, int64(1000), got.PublishedAt)

	deleted, err := repo.Delete(ctx, older.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = repo.Delete(ctx, older.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	missing, err := repo.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestEventRepository_ListFrom(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	past := &models.Event{Title: "Fête", EventDate: 100, Category: "Général"}
	soon := &models.Event{Title: "Conseil", EventDate: 5000, Category: "Général"}
	later := &models.Event{Title: "Brocante", EventDate: 9000, Category: "Général"}
	for _, e := range []*models.Event{later, past, soon} {
		require.NoError(t, repo.Create(ctx, e))
	}

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{past.ID, soon.ID, later.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	upcoming, err := repo.List(ctx, 1000)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, soon.ID, upcoming[0].ID)
}

func TestServiceRepository_FieldsAndActiveFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewServiceRepository(db)
	ctx := context.Background()

	active := &models.Service{
		Title:    "Carte d'identité",
		Category: "État civil",
		Icon:     "IdCard",
		Fields:   []models.ServiceField{{Name: "birthdate", Label: "Date de naissance", Type: "date", Required: true}},
		IsActive: true,
	}
	hidden := &models.Service{Title: "Ancien formulaire", Category: "Général", Icon: "FileText", IsActive: false}
	require.NoError(t, repo.Create(ctx, active))
	require.NoError(t, repo.Create(ctx, hidden))

	got, err := repo.GetByID(ctx, active.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, active.Fields, got.Fields)

	emptyFields, err := repo.GetByID(ctx, hidden.ID)
	require.NoError(t, err)
	assert.NotNil(t, emptyFields.Fields)
	assert.Empty(t, emptyFields.Fields)

	visible, err := repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, active.ID, visible[0].ID)

	all, err := repo.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestServiceRepository_CorruptFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "title", "description", "category", "icon", "fields", "is_active", "created_at", "updated_at"}).
		AddRow("svc_1", "t", "", "Général", "FileText", "{not json", true, 1, 1)
	mock.ExpectQuery("SELECT .* FROM services WHERE id").WillReturnRows(rows)

	_, err = NewServiceRepository(db).GetByID(context.Background(), "svc_1")
	assert.ErrorContains(t, err, "svc_1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcedureRepository_SetStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProcedureRepository(db)
	ctx := context.Background()

	sub := &models.ProcedureSubmission{ProcedureType: "Carte", Firstname: "Jean", Lastname: "Dupont", Email: "jean@ex.com"}
	require.NoError(t, repo.Create(ctx, sub))
	assert.Equal(t, models.SubmissionPending, sub.Status)

	ok, err := repo.SetStatus(ctx, sub.ID, models.SubmissionProcessed)
	require.NoError(t, err)
	assert.True(t, ok)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.SubmissionProcessed, list[0].Status)

	ok, err = repo.SetStatus(ctx, "proc_missing", models.SubmissionRejected)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDashboardRepository_Counts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Unix(10_000, 0)

	require.NoError(t, NewJobRepository(db).Create(ctx, &models.Job{Title: "Agent", IsOpen: true}))
	require.NoError(t, NewJobRepository(db).Create(ctx, &models.Job{Title: "Archiviste", IsOpen: false}))
	require.NoError(t, NewEventRepository(db).Create(ctx, &models.Event{Title: "Passé", EventDate: 5_000}))
	require.NoError(t, NewEventRepository(db).Create(ctx, &models.Event{Title: "Futur", EventDate: 20_000}))
	require.NoError(t, NewNewsRepository(db).Create(ctx, &models.NewsArticle{Title: "n", Content: "c"}))

	procs := NewProcedureRepository(db)
	done := &models.ProcedureSubmission{ProcedureType: "Carte", Firstname: "A", Lastname: "B", Email: "a@ex.com"}
	require.NoError(t, procs.Create(ctx, done))
	require.NoError(t, procs.Create(ctx, &models.ProcedureSubmission{ProcedureType: "Carte", Firstname: "C", Lastname: "D", Email: "c@ex.com"}))
	_, err := procs.SetStatus(ctx, done.ID, models.SubmissionProcessed)
	require.NoError(t, err)

	require.NoError(t, NewContactMessageRepository(db).Create(ctx, &models.ContactMessage{Firstname: "J", Lastname: "D", Email: "j@ex.com", Subject: "s", Message: "m"}))

	counts, err := NewDashboardRepository(db).Counts(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, models.DashboardCounts{
		Users:             0,
		OpenJobs:          1,
		UpcomingEvents:    1,
		News:              1,
		Applications:      0,
		PendingProcedures: 1,
		Messages:          1,
	}, *counts)
}
