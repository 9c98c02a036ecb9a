package middlewares_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/cartelera/billboard/internal/auth"
	"github.com/cartelera/billboard/internal/domain/user"
	"github.com/cartelera/billboard/internal/http/middlewares"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	verifyFn func(token string) (*auth.Claims, error)
}

func (f *fakeVerifier) Verify(token string) (*auth.Claims, error) {
	if f.verifyFn != nil {
		return f.verifyFn(token)
	}

	return &auth.Claims{UserID: "u-1", Role: user.RoleArtist}, nil
}

type fakeResolver struct {
	getFn func(ctx context.Context, id string) (user.User, error)
}

func (f *fakeResolver) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}

	return user.User{ID: id, Email: "a@x.com", Role: user.RoleArtist, Name: "Ana"}, nil
}

func protectedRouter(v middlewares.TokenVerifier, r middlewares.IdentityResolver) *gin.Engine {
	engine := gin.New()
	mw := middlewares.NewAuthMiddleware(v, r)

	engine.GET("/secret", mw.RequireAuth(), func(c *gin.Context) {
		id, _ := middlewares.UserIDFromContext(c)
		role, _ := middlewares.RoleFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "role": role})
	})

	return engine
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()

	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal error body: %v (%s)", err, body)
	}

	return payload.Error.Code
}

func TestRequireAuthRejectsMissingOrMalformedHeader(t *testing.T) {
	router := protectedRouter(&fakeVerifier{}, &fakeResolver{})

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic abc"},
		{"bare token", "some.jwt.token"},
		{"empty bearer", "Bearer   "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/secret", nil)

			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", w.Code)
			}
		})
	}
}

func TestRequireAuthGarbageTokenIs401Not500(t *testing.T) {
	verifier := &fakeVerifier{
		verifyFn: func(token string) (*auth.Claims, error) {
			return nil, auth.ErrTokenMalformed
		},
	}

	router := protectedRouter(verifier, &fakeResolver{})

	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.Header.Set("Authorization", "Bearer garbage")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	if code := errorCode(t, w.Body.Bytes()); code != "invalid_token" {
		t.Fatalf("error code = %q, want invalid_token", code)
	}
}

func TestRequireAuthExpiredTokenCode(t *testing.T) {
	verifier := &fakeVerifier{
		verifyFn: func(token string) (*auth.Claims, error) {
			return nil, auth.ErrTokenExpired
		},
	}

	router := protectedRouter(verifier, &fakeResolver{})

	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.Header.Set("Authorization", "Bearer expired.jwt")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	if code := errorCode(t, w.Body.Bytes()); code != "token_expired" {
		t.Fatalf("error code = %q, want token_expired", code)
	}
}

func TestRequireAuthDeletedSubjectIsUnauthorized(t *testing.T) {
	resolver := &fakeResolver{
		getFn: func(ctx context.Context, id string) (user.User, error) {
			return user.User{}, user.ErrNotFound
		},
	}

	router := protectedRouter(&fakeVerifier{}, resolver)

	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.Header.Set("Authorization", "Bearer ok.jwt")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401, not a server error", w.Code)
	}
}

func TestRequireAuthStoreFailureIs500(t *testing.T) {
	resolver := &fakeResolver{
		getFn: func(ctx context.Context, id string) (user.User, error) {
			return user.User{}, errors.New("connection refused")
		},
	}

	router := protectedRouter(&fakeVerifier{}, resolver)

	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.Header.Set("Authorization", "Bearer ok.jwt")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

// The role attached to the context must come from the store, not the token.
func TestRequireAuthUsesStoreRoleOverTokenRole(t *testing.T) {
	verifier := &fakeVerifier{
		verifyFn: func(token string) (*auth.Claims, error) {
			return &auth.Claims{UserID: "u-1", Role: user.RoleAdmin}, nil
		},
	}

	resolver := &fakeResolver{
		getFn: func(ctx context.Context, id string) (user.User, error) {
			return user.User{ID: id, Role: user.RoleArtist}, nil
		},
	}

	router := protectedRouter(verifier, resolver)

	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.Header.Set("Authorization", "Bearer ok.jwt")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got struct {
		Role string `json:"role"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.Role != user.RoleArtist {
		t.Fatalf("role = %q, want the store's %q", got.Role, user.RoleArtist)
	}
}
