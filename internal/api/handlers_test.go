package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/matchbot-dev/matchbot/internal/matchmaking"
	"github.com/matchbot-dev/matchbot/internal/rating"
	"github.com/matchbot-dev/matchbot/internal/registry"
)

func testAPI(t *testing.T) (*API, uuid.UUID) {
	t.Helper()
	engine := matchmaking.NewEngine(nil)
	qid := engine.CreateQueue(matchmaking.DefaultQueueConfig())

	a := &API{
		router:    mux.NewRouter(),
		engine:    engine,
		registry:  registry.New(nil),
		jwtSecret: []byte("test-secret"),
	}
	a.setupRoutes()
	return a, qid
}

func TestHandleListQueues(t *testing.T) {
	a, qid := testAPI(t)

	req := httptest.NewRequest("GET", "/api/public/queues", nil)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var out []queueSummary
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].ID != qid.String() || out[0].Teams != "2x5" {
		t.Fatalf("queues = %+v", out)
	}
}

func TestHandleQueueStatus(t *testing.T) {
	a, qid := testAPI(t)
	if err := a.engine.Enqueue(qid, "alice"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/public/queues/"+qid.String()+"/status", nil)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var out struct {
		Waiting  int             `json:"waiting"`
		Sessions []sessionStatus `json:"sessions"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Waiting != 1 || len(out.Sessions) != 0 {
		t.Fatalf("status = %+v", out)
	}
}

func TestHandleQueueStatusBadID(t *testing.T) {
	a, _ := testAPI(t)

	req := httptest.NewRequest("GET", "/api/public/queues/not-a-uuid/status", nil)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandleLeaderboardUnknownQueue(t *testing.T) {
	a, _ := testAPI(t)

	req := httptest.NewRequest("GET", "/api/public/queues/"+uuid.NewString()+"/leaderboard", nil)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestOwnStatsRequiresAuth(t *testing.T) {
	a, qid := testAPI(t)

	req := httptest.NewRequest("GET", "/api/queues/"+qid.String()+"/me", nil)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status without token = %d, want 401", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/queues/"+qid.String()+"/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status with bad token = %d, want 401", w.Code)
	}
}

func TestOwnStatsWithToken(t *testing.T) {
	a, qid := testAPI(t)

	claims := &Claims{
		UserID:   "alice",
		Username: "Alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.jwtSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/queues/"+qid.String()+"/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	var out struct {
		UserID string        `json:"user_id"`
		Rating rating.Rating `json:"rating"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.UserID != "alice" {
		t.Fatalf("user = %q, want alice", out.UserID)
	}
}
