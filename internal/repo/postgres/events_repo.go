package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cartelera/billboard/internal/domain/event"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventsRepo struct {
	pool *pgxpool.Pool
}

// constructor function

func NewEventsRepo(pool *pgxpool.Pool) *EventsRepo {
	return &EventsRepo{
		pool: pool,
	}
}

func (r *EventsRepo) Create(ctx context.Context, e event.Event) (event.Event, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO events(id, artist_id, title, description, event_date, venue, city,
			entry_type, price, ticket_url, flyer_url, status, created_at, updated_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		e.ID, e.ArtistID, e.Title, e.Description, e.EventDate, e.Venue, e.City,
		e.EntryType, e.Price, e.TicketURL, e.FlyerURL, e.Status, e.CreatedAt, e.UpdatedAt)

	if err != nil {
		return event.Event{}, err
	}

	return e, nil
}

// ListPublic returns the public billboard: future, active events joined with
// the artist's display name.
func (r *EventsRepo) ListPublic(ctx context.Context, filter event.BillboardFilter) ([]event.Event, int, error) {
	baseQuery := `SELECT e.id,
		e.artist_id,
		u.name AS artist_name,
		e.title,
		e.description,
		e.event_date,
		e.venue,
		e.city,
		e.entry_type,
		e.price,
		e.ticket_url,
		e.flyer_url,
		e.status,
		e.created_at,
		e.updated_at,
		COUNT(*) OVER() AS total
	FROM events e
	JOIN users u ON e.artist_id = u.id
	LEFT JOIN artist_profiles ap ON ap.user_id = e.artist_id AND ap.active
	`

	conds := []string{"e.event_date >= NOW()", "e.status = 'active'"}
	var args []interface{}

	argsPosition := 1

	if filter.City != nil {
		conds = append(conds, fmt.Sprintf("LOWER(e.city) = LOWER($%d)", argsPosition))
		args = append(args, *filter.City)
		argsPosition++
	}

	if filter.Genre != nil {
		conds = append(conds, fmt.Sprintf("ap.genre ILIKE $%d", argsPosition))
		args = append(args, "%"+*filter.Genre+"%")
		argsPosition++
	}

	query := baseQuery + " WHERE " + strings.Join(conds, " AND ")

	// stable ordering for pagination
	query += fmt.Sprintf(" ORDER BY e.event_date ASC, e.id ASC LIMIT $%d OFFSET $%d", argsPosition, argsPosition+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)

	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	output := make([]event.Event, 0, filter.Limit)
	total := 0

	for rows.Next() {
		var e event.Event
		var t int

		err = rows.Scan(&e.ID, &e.ArtistID, &e.ArtistName, &e.Title, &e.Description,
			&e.EventDate, &e.Venue, &e.City, &e.EntryType, &e.Price, &e.TicketURL,
			&e.FlyerURL, &e.Status, &e.CreatedAt, &e.UpdatedAt, &t)

		if err != nil {
			return nil, 0, err
		}

		total = t
		output = append(output, e)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	return output, total, nil
}

func (r *EventsRepo) ListByArtist(ctx context.Context, artistID string) ([]event.Event, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, artist_id, title, description, event_date, venue, city,
			entry_type, price, ticket_url, flyer_url, status, created_at, updated_at
		 FROM events
		 WHERE artist_id = $1
		 ORDER BY event_date DESC`,
		artistID)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	output := make([]event.Event, 0)

	for rows.Next() {
		var e event.Event

		err = rows.Scan(&e.ID, &e.ArtistID, &e.Title, &e.Description, &e.EventDate,
			&e.Venue, &e.City, &e.EntryType, &e.Price, &e.TicketURL, &e.FlyerURL,
			&e.Status, &e.CreatedAt, &e.UpdatedAt)

		if err != nil {
			return nil, err
		}

		output = append(output, e)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return output, nil
}

func (r *EventsRepo) GetByID(ctx context.Context, id string) (event.Event, error) {
	var e event.Event

	err := r.pool.QueryRow(ctx,
		`SELECT e.id, e.artist_id, u.name AS artist_name, e.title, e.description,
			e.event_date, e.venue, e.city, e.entry_type, e.price, e.ticket_url,
			e.flyer_url, e.status, e.created_at, e.updated_at
		 FROM events e
		 JOIN users u ON e.artist_id = u.id
		 WHERE e.id = $1`, id,
	).Scan(&e.ID, &e.ArtistID, &e.ArtistName, &e.Title, &e.Description, &e.EventDate,
		&e.Venue, &e.City, &e.EntryType, &e.Price, &e.TicketURL, &e.FlyerURL,
		&e.Status, &e.CreatedAt, &e.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return event.Event{}, event.ErrNotFound
		}

		return event.Event{}, err
	}

	return e, nil
}

// Update scopes the write to the owning artist: a row owned by someone else
// behaves exactly like a missing row.
func (r *EventsRepo) Update(ctx context.Context, id, artistID string, req event.UpdateEventRequest) (event.Event, error) {
	var e event.Event

	status := req.Status
	if status == "" {
		status = event.StatusActive
	}

	err := r.pool.QueryRow(
		ctx,
		`UPDATE events
			SET title = $3,
				description = $4,
				event_date = $5,
				venue = $6,
				city = $7,
				entry_type = $8,
				price = $9,
				ticket_url = $10,
				flyer_url = $11,
				status = $12,
				updated_at = NOW()
		WHERE id = $1 AND artist_id = $2
		RETURNING id, artist_id, title, description, event_date, venue, city,
			entry_type, price, ticket_url, flyer_url, status, created_at, updated_at`,
		id,
		artistID,
		req.Title,
		req.Description,
		req.EventDate,
		req.Venue,
		req.City,
		req.EntryType,
		req.Price,
		req.TicketURL,
		req.FlyerURL,
		status,
	).Scan(
		&e.ID,
		&e.ArtistID,
		&e.Title,
		&e.Description,
		&e.EventDate,
		&e.Venue,
		&e.City,
		&e.EntryType,
		&e.Price,
		&e.TicketURL,
		&e.FlyerURL,
		&e.Status,
		&e.CreatedAt,
		&e.UpdatedAt,
	)

	if err != nil {
		// no rows matching id+owner
		if errors.Is(err, pgx.ErrNoRows) {
			return event.Event{}, event.ErrNotFound
		}

		return event.Event{}, err
	}

	return e, nil
}

func (r *EventsRepo) Delete(ctx context.Context, id, artistID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM events WHERE id = $1 AND artist_id = $2`,
		id, artistID)

	if err != nil {
		return err
	}

	// if no rows were deleted as a result return a not found error
	if tag.RowsAffected() == 0 {
		return event.ErrNotFound
	}

	return nil
}
