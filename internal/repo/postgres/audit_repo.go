package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cartelera/billboard/internal/audit"
	"github.com/cartelera/billboard/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrAuditEntryNotFound = errors.New("audit entry not found")

type AuditRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewAuditRepo(pool *pgxpool.Pool, prom *observability.Prom) *AuditRepo {
	return &AuditRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *AuditRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}

	return fn()
}

func (r *AuditRepo) Insert(ctx context.Context, e audit.Entry) error {
	return r.observe("audit.insert", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO audit_log (actor_id, action, detail, source_address, timestamp)
			 VALUES ($1, $2, $3, $4, $5)`,
			e.ActorID, e.Action, e.Detail, e.SourceAddress, e.Timestamp,
		)

		return err
	})
}

const auditSelect = `SELECT al.id, al.actor_id, al.action, al.detail,
	al.source_address, al.timestamp, u.name, u.email
FROM audit_log al
LEFT JOIN users u ON al.actor_id = u.id`

func scanAuditRows(rows pgx.Rows) ([]audit.Entry, error) {
	defer rows.Close()

	output := make([]audit.Entry, 0)

	for rows.Next() {
		var e audit.Entry

		err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Detail,
			&e.SourceAddress, &e.Timestamp, &e.ActorName, &e.ActorEmail)

		if err != nil {
			return nil, err
		}

		output = append(output, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return output, nil
}

func (r *AuditRepo) List(ctx context.Context, limit, offset int) ([]audit.Entry, int, error) {
	rows, err := r.pool.Query(ctx,
		auditSelect+` ORDER BY al.timestamp DESC LIMIT $1 OFFSET $2`,
		limit, offset)

	if err != nil {
		return nil, 0, err
	}

	entries, err := scanAuditRows(rows)

	if err != nil {
		return nil, 0, err
	}

	var total int

	err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM audit_log`).Scan(&total)

	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *AuditRepo) GetByID(ctx context.Context, id int64) (audit.Entry, error) {
	var e audit.Entry

	err := r.pool.QueryRow(ctx, auditSelect+` WHERE al.id = $1`, id).
		Scan(&e.ID, &e.ActorID, &e.Action, &e.Detail,
			&e.SourceAddress, &e.Timestamp, &e.ActorName, &e.ActorEmail)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return audit.Entry{}, ErrAuditEntryNotFound
		}

		return audit.Entry{}, err
	}

	return e, nil
}

// Search filters by free text (actor name/email, action, source address),
// exact action tag, and calendar day. Results are capped, the admin UI is
// not a log pipeline.
func (r *AuditRepo) Search(ctx context.Context, q, action string, day *time.Time) ([]audit.Entry, error) {
	query := auditSelect + ` WHERE 1=1`
	var args []interface{}
	pos := 1

	if q != "" {
		query += fmt.Sprintf(` AND (u.name ILIKE $%d OR u.email ILIKE $%d OR al.action ILIKE $%d OR al.source_address ILIKE $%d)`, pos, pos, pos, pos)
		args = append(args, "%"+q+"%")
		pos++
	}

	if action != "" {
		query += fmt.Sprintf(` AND al.action = $%d`, pos)
		args = append(args, action)
		pos++
	}

	if day != nil {
		query += fmt.Sprintf(` AND al.timestamp::date = $%d::date`, pos)
		args = append(args, *day)
		pos++
	}

	query += ` ORDER BY al.timestamp DESC LIMIT 100`

	rows, err := r.pool.Query(ctx, query, args...)

	if err != nil {
		return nil, err
	}

	return scanAuditRows(rows)
}

// ExportAll streams every entry for the CSV download, newest first.
func (r *AuditRepo) ExportAll(ctx context.Context) ([]audit.Entry, error) {
	rows, err := r.pool.Query(ctx, auditSelect+` ORDER BY al.timestamp DESC`)

	if err != nil {
		return nil, err
	}

	return scanAuditRows(rows)
}

func (r *AuditRepo) CountByActionSince(ctx context.Context, action string, since time.Time) (int, error) {
	var n int

	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM audit_log WHERE action = $1 AND timestamp >= $2`,
		action, since).Scan(&n)

	if err != nil {
		return 0, err
	}

	return n, nil
}

func (r *AuditRepo) CountAll(ctx context.Context) (int, error) {
	var n int

	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM audit_log`).Scan(&n)

	if err != nil {
		return 0, err
	}

	return n, nil
}

type ActionCount struct {
	Action string `json:"action"`
	Count  int    `json:"count"`
}

func (r *AuditRepo) CountByAction(ctx context.Context) ([]ActionCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT action, COUNT(*) AS count
		 FROM audit_log
		 GROUP BY action
		 ORDER BY count DESC`)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	output := make([]ActionCount, 0)

	for rows.Next() {
		var ac ActionCount

		if err := rows.Scan(&ac.Action, &ac.Count); err != nil {
			return nil, err
		}

		output = append(output, ac)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return output, nil
}
