package handlers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oceanguard/hazard-server/internal/auth"
	"github.com/oceanguard/hazard-server/internal/middleware"
	"github.com/oceanguard/hazard-server/internal/models"
	"github.com/oceanguard/hazard-server/internal/observability"
	"github.com/oceanguard/hazard-server/internal/realtime"
	"github.com/oceanguard/hazard-server/internal/reports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type apiFixture struct {
	router *chi.Mux
	hub    *realtime.Hub
	users  *auth.MemoryUserStore
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	logger := zap.NewNop().Sugar()
	metrics := observability.NewMetricsForTesting()
	hub := realtime.NewHub(logger)

	users := auth.NewMemoryUserStore()
	provider := auth.NewLocalProvider(users, auth.NewMemoryOtpStore(),
		&auth.LogOtpSender{Logger: logger}, 5*time.Minute, logger)
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	authSvc := auth.NewService(provider, users, auth.NewMemorySessionStore(), tokens,
		hub, metrics, logger)

	reportSvc := reports.NewService(reports.NewMemoryStore(), hub, nil, nil, metrics, logger)

	authHandler := NewAuthHandler(authSvc, logger)
	reportHandler := NewReportHandler(reportSvc, logger)
	eventHandler := NewEventHandler(hub, metrics, logger)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/register", authHandler.Register)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(authSvc))
			r.Get("/auth/me", authHandler.Me)
			r.Post("/reports", reportHandler.Submit)
			r.Get("/reports", reportHandler.List)
			r.Put("/reports/{id}/status", reportHandler.UpdateStatus)
			r.Get("/reports/stats", reportHandler.Stats)
		})
		r.Get("/events", eventHandler.Stream)
	})

	return &apiFixture{router: r, hub: hub, users: users}
}

// seedUser creates an account with the given role and returns a login token.
func (f *apiFixture) seedUser(t *testing.T, email string, role models.Role) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("test password"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, f.users.Create(context.Background(), &auth.UserRecord{
		User: models.User{
			ID:       uuid.New(),
			Email:    email,
			Role:     role,
			Verified: true,
		},
		PasswordHash: string(hash),
	}))

	body := fmt.Sprintf(`{"email":%q,"password":"test password"}`, email)
	rec := f.do(t, "POST", "/api/v1/auth/login", body, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res auth.LoginResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res.Token
}

func (f *apiFixture) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

const draftBody = `{"hazard_type":"tsunami","severity":"critical","latitude":13.0827,"longitude":80.2707,"description":"Water receding fast from the shore"}`

func TestSubmitRequiresAuth(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, "POST", "/api/v1/reports", draftBody, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubmitAndList(t *testing.T) {
	f := newAPIFixture(t)
	token := f.seedUser(t, "citizen@example.com", models.RoleCitizen)

	rec := f.do(t, "POST", "/api/v1/reports", draftBody, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var submitted reports.SubmitResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))
	assert.Equal(t, models.StatusPending, submitted.Report.Status)

	rec = f.do(t, "GET", "/api/v1/reports", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Reports []models.HazardReport `json:"reports"`
		Count   int                   `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Equal(t, 1, listed.Count)
	assert.Equal(t, submitted.Report.ID, listed.Reports[0].ID)
}

func TestSubmitRejectsInvalidDraft(t *testing.T) {
	f := newAPIFixture(t)
	token := f.seedUser(t, "citizen@example.com", models.RoleCitizen)

	bad := `{"hazard_type":"volcano","severity":"critical","latitude":13.0,"longitude":80.0,"description":"x"}`
	rec := f.do(t, "POST", "/api/v1/reports", bad, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusTransitionRoles(t *testing.T) {
	f := newAPIFixture(t)
	citizenToken := f.seedUser(t, "citizen@example.com", models.RoleCitizen)
	officialToken := f.seedUser(t, "official@example.com", models.RoleOfficial)

	rec := f.do(t, "POST", "/api/v1/reports", draftBody, citizenToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	var submitted reports.SubmitResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))
	path := fmt.Sprintf("/api/v1/reports/%s/status", submitted.Report.ID)

	// Citizens cannot transition.
	rec = f.do(t, "PUT", path, `{"status":"verified"}`, citizenToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Officials can.
	rec = f.do(t, "PUT", path, `{"status":"verified"}`, officialToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Backward transitions conflict.
	rec = f.do(t, "PUT", path, `{"status":"pending"}`, officialToken)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUnknownReportIs404(t *testing.T) {
	f := newAPIFixture(t)
	token := f.seedUser(t, "official@example.com", models.RoleOfficial)

	path := fmt.Sprintf("/api/v1/reports/%s/status", uuid.New())
	rec := f.do(t, "PUT", path, `{"status":"verified"}`, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMeReturnsAllowedViews(t *testing.T) {
	f := newAPIFixture(t)
	token := f.seedUser(t, "citizen@example.com", models.RoleCitizen)
	rec := f.do(t, "GET", "/api/v1/auth/me", "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	var me struct {
		Views []string `json:"views"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Contains(t, me.Views, "dashboard")
	assert.NotContains(t, me.Views, "analytics")
}

func TestEventStreamDeliversReportSignal(t *testing.T) {
	f := newAPIFixture(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/events?topics=hazard_reports")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string, 16)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	f.hub.Publish(context.Background(), realtime.Notification{
		Topic: realtime.TopicReports, Event: "created", EntityID: uuid.NewString(),
	})

	deadline := time.After(3 * time.Second)
	var event, data string
	for event == "" || data == "" {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatal("stream closed before event arrived")
			}
			if strings.HasPrefix(line, "event: ") {
				event = strings.TrimPrefix(line, "event: ")
			}
			if strings.HasPrefix(line, "data: ") {
				data = strings.TrimPrefix(line, "data: ")
			}
		case <-deadline:
			t.Fatal("no event received")
		}
	}

	assert.Equal(t, realtime.TopicReports, event)
	var n realtime.Notification
	require.NoError(t, json.Unmarshal([]byte(data), &n))
	assert.Equal(t, "created", n.Event)
}

func TestEventStreamRejectsUnknownTopics(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, "GET", "/api/v1/events?topics=bogus", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
