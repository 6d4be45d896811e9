package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/voxhire/voxhire/server/domain/entities"
	"github.com/voxhire/voxhire/server/internal/auth"
	"github.com/voxhire/voxhire/server/internal/relay"
	"github.com/voxhire/voxhire/server/repository"
)

func newTestServer(secret string) (*echo.Echo, *relay.Handler) {
	candidates := repository.NewMemoryCandidateRepository()
	vacancies := repository.NewMemoryVacancyRepository()
	logger := zap.NewNop()

	handler := relay.NewHandler(
		candidates,
		vacancies,
		relay.NewRegistry(),
		nil,
		relay.NewFinalizer(candidates, nil, logger),
		entities.SessionParams{MinPrimaryRequired: 3, MinDialogMs: 60000},
		"gpt-4o-realtime-preview",
		logger,
	)

	e := echo.New()
	InitRoutes(e, handler, auth.NewAuthenticator(secret), logger)
	return e, handler
}

func TestHealthEndpoint(t *testing.T) {
	e, _ := newTestServer("")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
}

func TestWebsocketRequiresToken(t *testing.T) {
	e, _ := newTestServer("test-secret")

	req := httptest.NewRequest(http.MethodGet, "/realtime/ws/cand-001", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestWebsocketRejectsForeignCandidateToken(t *testing.T) {
	e, _ := newTestServer("test-secret")

	token, err := auth.NewAuthenticator("test-secret").GenerateInterviewToken("cand-other")
	if err != nil {
		t.Fatalf("GenerateInterviewToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/realtime/ws/cand-001?token="+token, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestWebsocketRejectsInvalidToken(t *testing.T) {
	e, _ := newTestServer("test-secret")

	req := httptest.NewRequest(http.MethodGet, "/realtime/ws/cand-001?token=bogus", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestSessionEndpoint(t *testing.T) {
	e, handler := newTestServer("")

	session := entities.NewInterviewSession("sess-1", "cand-001", "vac-001", "en",
		entities.DefaultScenario("en"), entities.SessionParams{})
	handler.Registry().Register(session)

	req := httptest.NewRequest(http.MethodGet, "/realtime/session/sess-1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var snap entities.SessionSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if snap.ID != "sess-1" || snap.CandidateID != "cand-001" {
		t.Errorf("snapshot = %+v", snap)
	}

	req = httptest.NewRequest(http.MethodGet, "/realtime/session/unknown", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown session status = %d, want 404", rec.Code)
	}
}

func TestLiveEndpoint(t *testing.T) {
	e, handler := newTestServer("")

	handler.Registry().Register(entities.NewInterviewSession("sess-1", "cand-001", "", "en",
		entities.DefaultScenario("en"), entities.SessionParams{}))
	handler.Registry().Register(entities.NewInterviewSession("sess-2", "cand-002", "", "ru",
		entities.DefaultScenario("ru"), entities.SessionParams{}))

	req := httptest.NewRequest(http.MethodGet, "/realtime/live", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body LiveSessionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Count != 2 || len(body.Sessions) != 2 {
		t.Errorf("live sessions = %+v", body)
	}
}
