package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cartelera/billboard/internal/config"
	"github.com/cartelera/billboard/internal/domain/profile"
	"github.com/cartelera/billboard/internal/http/middlewares"
	"github.com/cartelera/billboard/internal/sanitize"
)

type ProfileStore interface {
	GetByUserID(ctx context.Context, userID string) (profile.Profile, error)
	Upsert(ctx context.Context, userID string, req profile.UpsertProfileRequest) (profile.Profile, bool, error)
	Deactivate(ctx context.Context, userID string) error
	ListActive(ctx context.Context, genre *string) ([]profile.Profile, error)
}

type ProfilesHandler struct {
	repo ProfileStore
}

func NewProfilesHandler(repo ProfileStore) *ProfilesHandler {
	return &ProfilesHandler{repo: repo}
}

// ListActive is the public directory of artist pages. Deactivated profiles
// never show up here.
func (h *ProfilesHandler) ListActive(ctx *gin.Context) {
	var genre *string

	if s := sanitize.Clean(ctx.Query("genre")); s != "" {
		genre = &s
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, err := h.repo.ListActive(cctx, genre)

	if err != nil {
		RespondInternal(ctx, "Could not list profiles")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *ProfilesHandler) GetMine(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	p, err := h.repo.GetByUserID(cctx, userID)

	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			RespondNotFound(ctx, "Profile not found")
			return
		}

		RespondInternal(ctx, "Could not fetch profile")
		return
	}

	ctx.JSON(http.StatusOK, p)
}

// Upsert backs both POST and PUT: one artist has at most one profile row, a
// second write reactivates and overwrites it. The status code tells the
// client which happened.
func (h *ProfilesHandler) Upsert(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var req profile.UpsertProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	sanitize.Fields(req.Bio, req.Genre, req.Phone)

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	p, created, err := h.repo.Upsert(cctx, userID, req)

	if err != nil {
		RespondInternal(ctx, "Could not save profile")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	ctx.JSON(status, p)
}

func (h *ProfilesHandler) Deactivate(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.Deactivate(cctx, userID)

	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			RespondNotFound(ctx, "Profile not found")
			return
		}

		RespondInternal(ctx, "Could not delete profile")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"deactivated": userID})
}
