package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/cartelera/billboard/internal/domain/profile"
	"github.com/cartelera/billboard/internal/http/handlers"
)

type fakeProfileStore struct {
	getFn        func(ctx context.Context, userID string) (profile.Profile, error)
	upsertFn     func(ctx context.Context, userID string, req profile.UpsertProfileRequest) (profile.Profile, bool, error)
	deactivateFn func(ctx context.Context, userID string) error
	listFn       func(ctx context.Context, genre *string) ([]profile.Profile, error)
}

func (f *fakeProfileStore) GetByUserID(ctx context.Context, userID string) (profile.Profile, error) {
	if f.getFn != nil {
		return f.getFn(ctx, userID)
	}
	return profile.Profile{}, profile.ErrNotFound
}

func (f *fakeProfileStore) Upsert(ctx context.Context, userID string, req profile.UpsertProfileRequest) (profile.Profile, bool, error) {
	if f.upsertFn != nil {
		return f.upsertFn(ctx, userID, req)
	}
	return profile.Profile{UserID: userID, Active: true}, true, nil
}

func (f *fakeProfileStore) Deactivate(ctx context.Context, userID string) error {
	if f.deactivateFn != nil {
		return f.deactivateFn(ctx, userID)
	}
	return nil
}

func (f *fakeProfileStore) ListActive(ctx context.Context, genre *string) ([]profile.Profile, error) {
	if f.listFn != nil {
		return f.listFn(ctx, genre)
	}
	return nil, nil
}

func profilesRouter(repo handlers.ProfileStore, artistID string) *gin.Engine {
	h := handlers.NewProfilesHandler(repo)

	engine := gin.New()
	engine.GET("/profiles", h.ListActive)
	engine.GET("/profile", asArtist(artistID), h.GetMine)
	engine.POST("/profile", asArtist(artistID), h.Upsert)
	engine.PUT("/profile", asArtist(artistID), h.Upsert)
	engine.DELETE("/profile", asArtist(artistID), h.Deactivate)

	return engine
}

func TestUpsertProfileStatusReflectsCreation(t *testing.T) {
	created := true

	repo := &fakeProfileStore{
		upsertFn: func(ctx context.Context, userID string, req profile.UpsertProfileRequest) (profile.Profile, bool, error) {
			return profile.Profile{UserID: userID, Active: true}, created, nil
		},
	}

	router := profilesRouter(repo, "artist-1")

	if w := postJSON(router, "/profile", `{"bio":"Cantante de tango"}`); w.Code != http.StatusCreated {
		t.Fatalf("first upsert: status = %d, want 201", w.Code)
	}

	created = false

	if w := postJSON(router, "/profile", `{"bio":"Cantante"}`); w.Code != http.StatusOK {
		t.Fatalf("second upsert: status = %d, want 200", w.Code)
	}
}

func TestUpsertProfileValidatesPlatformURLs(t *testing.T) {
	router := profilesRouter(&fakeProfileStore{}, "artist-1")

	cases := []struct {
		name string
		body string
		ok   bool
	}{
		{"spotify host required", `{"spotifyUrl":"https://example.com/artist"}`, false},
		{"spotify accepted", `{"spotifyUrl":"https://open.spotify.com/artist/xyz"}`, true},
		{"youtube channel main host", `{"youtubeChannelUrl":"https://www.youtube.com/@ana"}`, true},
		{"youtube channel music host", `{"youtubeChannelUrl":"https://music.youtube.com/channel/abc"}`, true},
		{"youtube channel wrong host", `{"youtubeChannelUrl":"https://vimeo.com/ana"}`, false},
		{"instagram host required", `{"instagramUrl":"https://tiktok.com/@ana"}`, false},
		{"not a url at all", `{"website":"not a url"}`, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(router, "/profile", tc.body)

			if tc.ok && w.Code != http.StatusCreated {
				t.Fatalf("status = %d, want 201 (%s)", w.Code, w.Body)
			}

			if !tc.ok && w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (%s)", w.Code, w.Body)
			}
		})
	}
}

func TestDeactivateProfile(t *testing.T) {
	var deactivated string

	repo := &fakeProfileStore{
		deactivateFn: func(ctx context.Context, userID string) error {
			deactivated = userID
			return nil
		},
	}

	router := profilesRouter(repo, "artist-3")

	req := httptest.NewRequest(http.MethodDelete, "/profile", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	if deactivated != "artist-3" {
		t.Fatalf("deactivated %q, want artist-3", deactivated)
	}
}

func TestListActiveProfilesPassesGenre(t *testing.T) {
	var gotGenre *string

	repo := &fakeProfileStore{
		listFn: func(ctx context.Context, genre *string) ([]profile.Profile, error) {
			gotGenre = genre
			return []profile.Profile{{UserID: "u-1", Active: true}}, nil
		},
	}

	router := profilesRouter(repo, "artist-1")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profiles?genre=tango", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	if gotGenre == nil || *gotGenre != "tango" {
		t.Fatalf("genre = %v, want tango", gotGenre)
	}

	if !strings.Contains(w.Body.String(), "u-1") {
		t.Fatalf("body = %s", w.Body)
	}
}
