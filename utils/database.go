package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"projectboard/models"
)

func OpenDB(dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database DSN: %w", err)
	}

	config.MaxConns = 50
	config.MinConns = 2
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err = pool.Ping(context.Background()); err != nil {
		return nil, err
	}

	return pool, nil
}

// CredentialStore is the read-only view of the users table the auth flow
// needs. A found-but-absent user is (nil, nil), not an error.
type CredentialStore interface {
	FindByIdentifier(ctx context.Context, identifier string) (*models.User, error)
}

type UserStore struct {
	DB *pgxpool.Pool
}

func (s *UserStore) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stmt := "SELECT id, iduser, password_hash, name, surname, role, admitted FROM users WHERE iduser = $1;"
	row := s.DB.QueryRow(ctx, stmt, identifier)

	var u models.User
	var role string
	if err := row.Scan(&u.ID, &u.Identifier, &u.PasswordHash, &u.Name, &u.Surname, &role, &u.Admitted); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: user lookup: %v", ErrPersistence, err)
	}
	u.Role = models.ParseRole(role)
	return &u, nil
}
