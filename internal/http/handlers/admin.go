package handlers

import (
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cartelera/billboard/internal/audit"
	"github.com/cartelera/billboard/internal/config"
	"github.com/cartelera/billboard/internal/repo/postgres"
	"github.com/cartelera/billboard/internal/sanitize"
)

type AuditReader interface {
	List(ctx context.Context, limit, offset int) ([]audit.Entry, int, error)
	GetByID(ctx context.Context, id int64) (audit.Entry, error)
	Search(ctx context.Context, q, action string, day *time.Time) ([]audit.Entry, error)
	ExportAll(ctx context.Context) ([]audit.Entry, error)
	CountByActionSince(ctx context.Context, action string, since time.Time) (int, error)
	CountAll(ctx context.Context) (int, error)
	CountByAction(ctx context.Context) ([]postgres.ActionCount, error)
}

type UserCounter interface {
	Count(ctx context.Context) (int, error)
}

type AdminHandler struct {
	auditLog AuditReader
	users    UserCounter
}

func NewAdminHandler(auditLog AuditReader, users UserCounter) *AdminHandler {
	return &AdminHandler{
		auditLog: auditLog,
		users:    users,
	}
}

// GET /admin/audit-logs?limit=20&offset=0
func (h *AdminHandler) ListAuditLogs(ctx *gin.Context) {
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

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, total, err := h.auditLog.List(cctx, limit, offset)

	if err != nil {
		RespondInternal(ctx, "Could not list audit logs")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items":  items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GET /admin/audit-logs/search?q=&action=&date=2026-08-29
func (h *AdminHandler) SearchAuditLogs(ctx *gin.Context) {
	q := sanitize.Clean(ctx.Query("q"))
	action := sanitize.Clean(ctx.Query("action"))

	var day *time.Time

	if raw := ctx.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)

		if err != nil {
			RespondBadRequest(ctx, "date must be formatted YYYY-MM-DD", nil)
			return
		}

		day = &parsed
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, err := h.auditLog.Search(cctx, q, action, day)

	if err != nil {
		RespondInternal(ctx, "Could not search audit logs")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// GET /admin/audit-logs/export, the full table as a CSV download.
func (h *AdminHandler) ExportAuditLogs(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	items, err := h.auditLog.ExportAll(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not export audit logs")
		return
	}

	filename := "audit-logs-" + time.Now().UTC().Format("2006-01-02") + ".csv"

	ctx.Header("Content-Type", "text/csv; charset=utf-8")
	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Status(http.StatusOK)

	w := csv.NewWriter(ctx.Writer)

	_ = w.Write([]string{"id", "actorId", "actorName", "actorEmail", "action", "detail", "sourceAddress", "timestamp"})

	for _, e := range items {
		_ = w.Write([]string{
			strconv.FormatInt(e.ID, 10),
			strOrEmpty(e.ActorID),
			strOrEmpty(e.ActorName),
			strOrEmpty(e.ActorEmail),
			e.Action,
			string(e.Detail),
			e.SourceAddress,
			e.Timestamp.UTC().Format(time.RFC3339),
		})
	}

	w.Flush()
}

// GET /admin/audit-logs/:id
func (h *AdminHandler) GetAuditLog(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil || id < 1 {
		RespondBadRequest(ctx, "audit log id must be a positive integer", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	entry, err := h.auditLog.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, postgres.ErrAuditEntryNotFound) {
			RespondNotFound(ctx, "Audit log not found")
			return
		}

		RespondInternal(ctx, "Could not fetch audit log")
		return
	}

	ctx.JSON(http.StatusOK, entry)
}

// GET /admin/statistics
func (h *AdminHandler) Statistics(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	totalUsers, err := h.users.Count(cctx)
	if err != nil {
		RespondInternal(ctx, "Could not compute statistics")
		return
	}

	totalEntries, err := h.auditLog.CountAll(cctx)
	if err != nil {
		RespondInternal(ctx, "Could not compute statistics")
		return
	}

	loginsToday, err := h.auditLog.CountByActionSince(cctx, audit.ActionUserLogin, midnight)
	if err != nil {
		RespondInternal(ctx, "Could not compute statistics")
		return
	}

	registrationsToday, err := h.auditLog.CountByActionSince(cctx, audit.ActionUserRegister, midnight)
	if err != nil {
		RespondInternal(ctx, "Could not compute statistics")
		return
	}

	byAction, err := h.auditLog.CountByAction(cctx)
	if err != nil {
		RespondInternal(ctx, "Could not compute statistics")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"totalUsers":         totalUsers,
		"totalAuditEntries":  totalEntries,
		"loginsToday":        loginsToday,
		"registrationsToday": registrationsToday,
		"actionsByType":      byAction,
	})
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
