package db

import (
	"context"
	"errors"
	"time"

	"github.com/cartelera/billboard/internal/config"
	"github.com/cartelera/billboard/internal/domain/user"
	"github.com/cartelera/billboard/internal/security"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdminUser bootstraps the first admin account from configuration.
// Registration only ever produces artists, so without this there is no way
// to reach the admin surface on a fresh deployment.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the user exists

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hasher := security.NewHasher(cfg.BcryptCost)

	hash, err := hasher.Hash(cfg.AdminPassword)

	if err != nil {
		return err
	}

	u := user.User{
		ID:           uuid.NewString(),
		Name:         cfg.AdminName,
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Role:         user.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.CreatedAt,
	)

	return err
}
