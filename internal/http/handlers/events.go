package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cartelera/billboard/internal/cache"
	"github.com/cartelera/billboard/internal/config"
	"github.com/cartelera/billboard/internal/domain/event"
	"github.com/cartelera/billboard/internal/http/middlewares"
	"github.com/cartelera/billboard/internal/sanitize"
	"github.com/cartelera/billboard/internal/utils"
)

type EventStore interface {
	Create(ctx context.Context, e event.Event) (event.Event, error)
	ListPublic(ctx context.Context, filter event.BillboardFilter) ([]event.Event, int, error)
	ListByArtist(ctx context.Context, artistID string) ([]event.Event, error)
	GetByID(ctx context.Context, id string) (event.Event, error)
	Update(ctx context.Context, id, artistID string, req event.UpdateEventRequest) (event.Event, error)
	Delete(ctx context.Context, id, artistID string) error
}

type billboardPage struct {
	Items  []event.Event `json:"items"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

type EventsHandler struct {
	repo    EventStore
	pageTTL *cache.Cache[billboardPage]
}

func NewEventsHandler(repo EventStore, ttl time.Duration) *EventsHandler {
	return &EventsHandler{
		repo:    repo,
		pageTTL: cache.New[billboardPage](ttl),
	}
}

// ListPublic serves the billboard: future active events, filtered at the
// query, cached for a short TTL keyed on the full filter, and wrapped in an
// ETag so repeat readers pay nothing.
func (h *EventsHandler) ListPublic(ctx *gin.Context) {
	limit := parseIntDefault(ctx.Query("limit"), 20)
	offset := parseIntDefault(ctx.Query("offset"), 0)

	if limit < 1 || limit > 100 {
		RespondBadRequest(ctx, "limit must be between 1 and 100", nil)
		return
	}

	if offset < 0 {
		RespondBadRequest(ctx, "offset must not be negative", nil)
		return
	}

	var city, genre *string

	if s := sanitize.Clean(ctx.Query("city")); s != "" {
		city = &s
	}

	if s := sanitize.Clean(ctx.Query("genre")); s != "" {
		genre = &s
	}

	key := utils.BuildBillboardCacheKey(limit, offset, city, genre)

	if page, ok := h.pageTTL.Get(key); ok {
		RespondJSONWithETag(ctx, http.StatusOK, page)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, total, err := h.repo.ListPublic(cctx, event.BillboardFilter{
		City:   city,
		Genre:  genre,
		Limit:  limit,
		Offset: offset,
	})

	if err != nil {
		RespondInternal(ctx, "Could not list events")
		return
	}

	page := billboardPage{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}

	h.pageTTL.Set(key, page)

	RespondJSONWithETag(ctx, http.StatusOK, page)
}

func (h *EventsHandler) GetByID(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "event id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	e, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "Event not found")
			return
		}

		RespondInternal(ctx, "Could not fetch event")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, e)
}

// ListMine returns every event of the authenticated artist, including past
// and cancelled ones.
func (h *EventsHandler) ListMine(ctx *gin.Context) {
	artistID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || artistID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, err := h.repo.ListByArtist(cctx, artistID)

	if err != nil {
		RespondInternal(ctx, "Could not list events")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *EventsHandler) Create(ctx *gin.Context) {
	artistID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || artistID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var req event.CreateEventRequest

	if !BindJSON(ctx, &req) {
		return
	}

	sanitize.Fields(&req.Title, &req.Description, &req.Venue, &req.City)

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	created, err := h.repo.Create(cctx, event.NewFromCreateRequest(artistID, req))

	if err != nil {
		RespondInternal(ctx, "Could not create event")
		return
	}

	h.pageTTL.Clear()

	ctx.JSON(http.StatusCreated, created)
}

func (h *EventsHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "event id must be a valid UUID", nil)
		return
	}

	artistID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || artistID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var req event.UpdateEventRequest

	if !BindJSON(ctx, &req) {
		return
	}

	sanitize.Fields(&req.Title, &req.Description, &req.Venue, &req.City)

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	updated, err := h.repo.Update(cctx, id, artistID, req)

	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			// not-owned looks identical to not-found on purpose
			RespondNotFound(ctx, "Event not found")
			return
		}

		RespondInternal(ctx, "Could not update event")
		return
	}

	h.pageTTL.Clear()

	ctx.JSON(http.StatusOK, updated)
}

func (h *EventsHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "event id must be a valid UUID", nil)
		return
	}

	artistID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || artistID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, id, artistID)

	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "Event not found")
			return
		}

		RespondInternal(ctx, "Could not delete event")
		return
	}

	h.pageTTL.Clear()

	ctx.JSON(http.StatusOK, gin.H{"deleted": id})
}

func parseIntDefault(s string, fallback int) int {
	if s == "" {
		return fallback
	}

	n, err := strconv.Atoi(s)

	if err != nil {
		return fallback
	}

	return n
}
