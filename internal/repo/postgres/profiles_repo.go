package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cartelera/billboard/internal/domain/profile"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfilesRepo struct {
	pool *pgxpool.Pool
}

func NewProfilesRepo(pool *pgxpool.Pool) *ProfilesRepo {
	return &ProfilesRepo{pool: pool}
}

const profileColumns = `id, user_id, photo_url, phone, website, portfolio_url,
	spotify_url, apple_music_url, tidal_url, youtube_music_url,
	youtube_channel_url, instagram_url, bio, genre, active, created_at, updated_at`

func scanProfile(row pgx.Row) (profile.Profile, error) {
	var p profile.Profile

	err := row.Scan(
		&p.ID, &p.UserID, &p.PhotoURL, &p.Phone, &p.Website, &p.PortfolioURL,
		&p.SpotifyURL, &p.AppleMusicURL, &p.TidalURL, &p.YoutubeMusicURL,
		&p.YoutubeChannelURL, &p.InstagramURL, &p.Bio, &p.Genre, &p.Active,
		&p.CreatedAt, &p.UpdatedAt,
	)

	return p, err
}

func (r *ProfilesRepo) GetByUserID(ctx context.Context, userID string) (profile.Profile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx,
		`SELECT `+profileColumns+`
		 FROM artist_profiles
		 WHERE user_id = $1 AND active = TRUE`,
		userID))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Profile{}, profile.ErrNotFound
		}

		return profile.Profile{}, err
	}

	return p, nil
}

// Upsert inserts the profile on first write and fully replaces it on every
// later one. Re-upserting also reactivates a soft-deleted profile, matching
// the create-or-update route semantics.
func (r *ProfilesRepo) Upsert(ctx context.Context, userID string, req profile.UpsertProfileRequest) (profile.Profile, bool, error) {
	now := time.Now().UTC()

	var created bool

	p, err := scanProfile(r.pool.QueryRow(ctx,
		`INSERT INTO artist_profiles (
			id, user_id, photo_url, phone, website, portfolio_url,
			spotify_url, apple_music_url, tidal_url, youtube_music_url,
			youtube_channel_url, instagram_url, bio, genre, active, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,TRUE,$15,$15)
		ON CONFLICT (user_id) DO UPDATE SET
			photo_url = EXCLUDED.photo_url,
			phone = EXCLUDED.phone,
			website = EXCLUDED.website,
			portfolio_url = EXCLUDED.portfolio_url,
			spotify_url = EXCLUDED.spotify_url,
			apple_music_url = EXCLUDED.apple_music_url,
			tidal_url = EXCLUDED.tidal_url,
			youtube_music_url = EXCLUDED.youtube_music_url,
			youtube_channel_url = EXCLUDED.youtube_channel_url,
			instagram_url = EXCLUDED.instagram_url,
			bio = EXCLUDED.bio,
			genre = EXCLUDED.genre,
			active = TRUE,
			updated_at = EXCLUDED.updated_at
		RETURNING `+profileColumns,
		uuid.NewString(), userID, req.PhotoURL, req.Phone, req.Website, req.PortfolioURL,
		req.SpotifyURL, req.AppleMusicURL, req.TidalURL, req.YoutubeMusicURL,
		req.YoutubeChannelURL, req.InstagramURL, req.Bio, req.Genre, now))

	if err != nil {
		return profile.Profile{}, false, err
	}

	// created when the row's timestamps still match this write
	created = p.CreatedAt.Equal(p.UpdatedAt)

	return p, created, nil
}

// Deactivate soft-deletes: the row stays for audit joins, the listing
// queries filter it out.
func (r *ProfilesRepo) Deactivate(ctx context.Context, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE artist_profiles SET active = FALSE, updated_at = NOW()
		 WHERE user_id = $1 AND active = TRUE`,
		userID)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return profile.ErrNotFound
	}

	return nil
}

func (r *ProfilesRepo) ListActive(ctx context.Context, genre *string) ([]profile.Profile, error) {
	query := `SELECT p.id, p.user_id, p.photo_url, p.phone, p.website, p.portfolio_url,
		p.spotify_url, p.apple_music_url, p.tidal_url, p.youtube_music_url,
		p.youtube_channel_url, p.instagram_url, p.bio, p.genre, p.active,
		p.created_at, p.updated_at, u.name AS artist_name
	FROM artist_profiles p
	JOIN users u ON p.user_id = u.id
	WHERE p.active = TRUE`

	var args []interface{}

	if genre != nil {
		query += ` AND p.genre ILIKE '%' || $1 || '%'`
		args = append(args, *genre)
	}

	query += ` ORDER BY u.name ASC`

	rows, err := r.pool.Query(ctx, query, args...)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	output := make([]profile.Profile, 0)

	for rows.Next() {
		var p profile.Profile

		err = rows.Scan(
			&p.ID, &p.UserID, &p.PhotoURL, &p.Phone, &p.Website, &p.PortfolioURL,
			&p.SpotifyURL, &p.AppleMusicURL, &p.TidalURL, &p.YoutubeMusicURL,
			&p.YoutubeChannelURL, &p.InstagramURL, &p.Bio, &p.Genre, &p.Active,
			&p.CreatedAt, &p.UpdatedAt, &p.ArtistName,
		)

		if err != nil {
			return nil, err
		}

		output = append(output, p)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return output, nil
}
