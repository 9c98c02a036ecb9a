package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/cartelera/billboard/internal/domain/user"
	"github.com/cartelera/billboard/internal/http/handlers"
	"github.com/cartelera/billboard/internal/http/middlewares"
	"github.com/cartelera/billboard/internal/repo/postgres"
)

// memUserStore is a map-backed store so the full auth pipeline can run
// without a database.
type memUserStore struct {
	mu    sync.Mutex
	users map[string]user.User // by id
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]user.User)}
}

func (s *memUserStore) GetByEmail(ctx context.Context, email string) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (s *memUserStore) GetByID(ctx context.Context, id string) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (s *memUserStore) Create(ctx context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return user.User{}, postgres.ErrEmailAlreadyUsed
		}
	}

	s.users[u.ID] = u

	return u, nil
}

func (s *memUserStore) UpdateLastLogin(ctx context.Context, id string) error {
	return nil
}

// pipelineApp wires the real middleware chain around the auth handler and an
// admin route, backed by the in-memory store.
func pipelineApp(t *testing.T) *gin.Engine {
	t.Helper()

	store := newMemUserStore()
	rec, _ := testRecorder(t)
	tokens := testTokens(t)

	authHandler := handlers.NewAuthHandler(store, testHasher(), tokens, rec)
	authMW := middlewares.NewAuthMiddleware(tokens, store)

	engine := gin.New()
	engine.Use(middlewares.RequestID())
	engine.Use(middlewares.SecurityHeaders())
	engine.Use(middlewares.RequireJSON())

	engine.POST("/auth/register", authHandler.Register)
	engine.POST("/auth/login", authHandler.Login)
	engine.GET("/auth/profile", authMW.RequireAuth(), authHandler.Profile)

	admin := engine.Group("/admin")
	admin.Use(authMW.RequireAuth(), authMW.RequireRole(user.RoleAdmin))
	admin.GET("/statistics", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"totalUsers": len(store.users)})
	})

	return engine
}

func TestRegisterLoginProfileRoundTrip(t *testing.T) {
	app := pipelineApp(t)

	w := postJSON(app, "/auth/register", `{"name":"Ana","email":"ana@x.com","password":"Abcdef1"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d (%s)", w.Code, w.Body)
	}

	var registered struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &registered); err != nil {
		t.Fatalf("unmarshal register: %v", err)
	}

	w = postJSON(app, "/auth/login", `{"email":"ana@x.com","password":"Abcdef1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d (%s)", w.Code, w.Body)
	}

	var logged struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &logged); err != nil {
		t.Fatalf("unmarshal login: %v", err)
	}
	if logged.Token == "" {
		t.Fatal("login returned no token")
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+logged.Token)
	w = httptest.NewRecorder()
	app.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("profile status = %d (%s)", w.Code, w.Body)
	}

	var profile struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &profile); err != nil {
		t.Fatalf("unmarshal profile: %v", err)
	}

	if profile.User.ID != registered.User.ID {
		t.Fatalf("profile id %q != registered id %q", profile.User.ID, registered.User.ID)
	}
}

func TestAdminRouteRejectsArtistTokenWith403(t *testing.T) {
	app := pipelineApp(t)

	postJSON(app, "/auth/register", `{"name":"Ana","email":"ana@x.com","password":"Abcdef1"}`)
	w := postJSON(app, "/auth/login", `{"email":"ana@x.com","password":"Abcdef1"}`)

	var logged struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &logged); err != nil {
		t.Fatalf("unmarshal login: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/statistics", nil)
	req.Header.Set("Authorization", "Bearer "+logged.Token)
	w2 := httptest.NewRecorder()
	app.ServeHTTP(w2, req)

	if w2.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w2.Code)
	}
}

func TestAdminRouteRejectsMissingTokenWith401(t *testing.T) {
	app := pipelineApp(t)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/statistics", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestMutatingRequestNeedsJSONContentType(t *testing.T) {
	app := pipelineApp(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"name":"Ana","email":"ana@x.com","password":"Abcdef1"}`))
	req.Header.Set("Content-Type", "text/plain")

	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d, want 415", w.Code)
	}
}

func TestAdminRouteAcceptsAdminToken(t *testing.T) {
	app := pipelineApp(t)

	postJSON(app, "/auth/register", `{"name":"Root","email":"root@x.com","password":"Abcdef1","role":"admin"}`)
	w := postJSON(app, "/auth/login", `{"email":"root@x.com","password":"Abcdef1"}`)

	var logged struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &logged); err != nil {
		t.Fatalf("unmarshal login: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/statistics", nil)
	req.Header.Set("Authorization", "Bearer "+logged.Token)
	w2 := httptest.NewRecorder()
	app.ServeHTTP(w2, req)

	if w2.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", w2.Code, w2.Body)
	}
}
