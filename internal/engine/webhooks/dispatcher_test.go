package webhooks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal/internal/platform/config"
	"portal/internal/platform/models"
)

type memStore struct {
	mu   sync.Mutex
	rows map[string]string
}

func newMemStore() *memStore {
	return &memStore{rows: map[string]string{}}
}

func (m *memStore) Get(_ context.Context, key string) (*models.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.rows[key]
	if !ok {
		return nil, nil
	}
	return &models.Setting{Key: key, Value: v}, nil
}

func (m *memStore) Upsert(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[key] = value
	return nil
}

func testClient() *Client {
	return NewClient(config.RelayConfig{
		Timeout:   2 * time.Second,
		Username:  "Mairie de Blaine County",
		AvatarURL: "https://example.com/avatar.png",
	})
}

func TestDispatch_SkipsUnconfiguredChannel(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	store := newMemStore()
	store.rows[ChannelContact.SettingKey()] = "   "
	d := NewDispatcher(NewRegistry(store), testClient())

	payloads := []Payload{
		Contact{FirstName: "Jean", LastName: "Dupont", Email: "jean@ex.com", Subject: "Test", Message: "Bonjour"},
		Procedure{ProcedureType: "Urbanisme", FirstName: "A", LastName: "B", Email: "a@b.c"},
		Application{RPLastName: "Doe", RPFirstName: "John", RPAge: 30, Motivation: "x", DiscordID: "1"},
	}
	for _, p := range payloads {
		res, err := d.Dispatch(context.Background(), p)
		require.NoError(t, err)
		assert.True(t, res.Skipped)
	}

	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	assert.Equal(t, Stats{Skipped: 3}, d.Stats())
}

func TestDispatch_PostsEmbed(t *testing.T) {
	var got Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	store := newMemStore()
	reg := NewRegistry(store)
	require.NoError(t, reg.Set(context.Background(), ChannelContact, srv.URL))

	d := NewDispatcher(reg, testClient())
	d.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("X", 3600)) }

	res, err := d.Dispatch(context.Background(), Contact{
		FirstName: "Jean", LastName: "Dupont", Email: "jean@ex.com", Subject: "Test", Message: "Bonjour",
	})
	require.NoError(t, err)
	assert.False(t, res.Skipped)

	assert.Equal(t, "Mairie de Blaine County", got.Username)
	assert.Equal(t, "https://example.com/avatar.png", got.AvatarURL)
	require.Len(t, got.Embeds, 1)
	e := got.Embeds[0]
	assert.Equal(t, colorContact, e.Color)
	assert.Equal(t, "2026-03-01T09:00:00Z", e.Timestamp)
	assert.Equal(t, "Secrétariat de la Mairie - Blaine County", e.Footer.Text)
	require.Len(t, e.Fields, 4)
	assert.Equal(t, "Jean Dupont", e.Fields[0].Value)
	assert.Equal(t, "Bonjour", e.Fields[3].Value)
	assert.Equal(t, uint64(1), d.Stats().Sent)
}

func TestDispatch_NonSuccessIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown webhook", http.StatusNotFound)
	}))
	defer srv.Close()

	store := newMemStore()
	store.rows[ChannelRecruitment.SettingKey()] = srv.URL
	d := NewDispatcher(NewRegistry(store), testClient())

	_, err := d.Dispatch(context.Background(), Application{RPLastName: "Doe", DiscordID: "1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRelayRejected))
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, uint64(1), d.Stats().Rejected)
}

func TestDispatch_UnreachableIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	store := newMemStore()
	store.rows[ChannelProcedure.SettingKey()] = url
	d := NewDispatcher(NewRegistry(store), testClient())

	_, err := d.Dispatch(context.Background(), Procedure{ProcedureType: "Santé"})
	assert.ErrorIs(t, err, ErrRelayRejected)
}

func TestDispatchTo_RequiresURL(t *testing.T) {
	d := NewDispatcher(NewRegistry(newMemStore()), testClient())
	_, err := d.DispatchTo(context.Background(), ChannelContact, SamplePayload(ChannelContact))
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestBuildEmbed_TruncatesLongText(t *testing.T) {
	long := strings.Repeat("é", MaxFieldValue+300)
	at := time.Unix(0, 0)

	tests := []struct {
		name    string
		payload Payload
		field   string
		color   int
	}{
		{"contact", Contact{FirstName: "A", Message: long}, "💬 Message", colorContact},
		{"procedure", Procedure{ProcedureType: "T", Details: long}, "📝 Détails", colorProcedure},
		{"application motivation", Application{Motivation: long}, "💬 Motivation", colorApplication},
		{"application experience", Application{Experience: long}, "📜 Expérience RP", colorApplication},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := BuildEmbed(tt.payload, at)
			assert.Equal(t, tt.color, e.Color)

			var found bool
			for _, f := range e.Fields {
				assert.LessOrEqual(t, len([]rune(f.Value)), MaxFieldValue)
				if f.Name == tt.field {
					found = true
					assert.Equal(t, MaxFieldValue, len([]rune(f.Value)))
				}
			}
			assert.True(t, found, "field %q missing", tt.field)
		})
	}
}

func TestBuildEmbed_FieldOrderAndDefaults(t *testing.T) {
	e := BuildEmbed(Application{RPLastName: "Doe", RPFirstName: "John", DiscordID: "42"}, time.Unix(0, 0))

	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Name
	}
	assert.Equal(t, []string{
		"👤 Nom RP", "👤 Prénom RP", "🎂 Âge RP", "💼 Poste demandé",
		"💬 Motivation", "📜 Expérience RP", "🎮 Discord ID", "📅 Disponibilités",
	}, names)
	assert.Equal(t, notSpecified, e.Fields[2].Value)
	assert.Equal(t, "Non spécifiées", e.Fields[7].Value)

	p := BuildEmbed(Procedure{}, time.Unix(0, 0))
	assert.Equal(t, "📑 Nouvelle Démarche : Non spécifié", p.Title)
	assert.Equal(t, "Aucun détail fourni", p.Fields[4].Value)
}

func TestDecodePayload(t *testing.T) {
	p, err := DecodePayload(TypeApplication, json.RawMessage(`{"rp_lastname":"Doe","rp_age":31,"discord_id":"7"}`))
	require.NoError(t, err)
	app, ok := p.(Application)
	require.True(t, ok)
	assert.Equal(t, 31, app.RPAge)
	assert.Equal(t, ChannelRecruitment, p.Channel())

	_, err = DecodePayload("unknown", nil)
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = DecodePayload(TypeContact, json.RawMessage(`{"message":12}`))
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnknownType))
}

func TestRegistry(t *testing.T) {
	store := newMemStore()
	reg := NewRegistry(store)
	ctx := context.Background()

	assert.ErrorIs(t, reg.Set(ctx, ChannelContact, "ftp://example.com/hook"), ErrInvalidURL)
	assert.ErrorIs(t, reg.Set(ctx, ChannelContact, "not a url"), ErrInvalidURL)

	require.NoError(t, reg.Set(ctx, ChannelContact, "https://discord.com/api/webhooks/1/a"))
	require.NoError(t, reg.Set(ctx, ChannelContact, "https://discord.com/api/webhooks/1/b"))
	u, err := reg.Get(ctx, ChannelContact)
	require.NoError(t, err)
	assert.Equal(t, "https://discord.com/api/webhooks/1/b", u)

	all, err := reg.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "", all[ChannelRecruitment])

	require.NoError(t, reg.Set(ctx, ChannelContact, ""))
	u, err = reg.Get(ctx, ChannelContact)
	require.NoError(t, err)
	assert.Empty(t, u)
}

func TestParseChannel(t *testing.T) {
	ch, err := ParseChannel("demarches")
	require.NoError(t, err)
	assert.Equal(t, "discord_webhook_demarches", ch.SettingKey())
	assert.True(t, IsChannelSettingKey(ch.SettingKey()))
	assert.False(t, IsChannelSettingKey("site_name"))

	_, err = ParseChannel("general")
	assert.ErrorIs(t, err, ErrUnknownChannel)
}
