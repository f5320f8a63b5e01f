package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
)

// UserRepository is the Postgres-backed UserStore. Descriptors live in a
// pgvector column; ids follow insertion order exactly like the file store.
type UserRepository struct {
	pool PgxPool
}

func NewUserRepository(pool PgxPool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) LoadAll(ctx context.Context) ([]domain.User, error) {
	query := `
		SELECT id, name, face_encoding, image_path, registered_at
		FROM users
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, domain.ErrStorage.WithError(fmt.Errorf("load users: %w", err))
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var u domain.User
		var embedding *pgvector.Vector

		if err := rows.Scan(&u.ID, &u.Name, &embedding, &u.ImagePath, &u.RegisteredAt); err != nil {
			return nil, domain.ErrStorage.WithError(fmt.Errorf("scan user: %w", err))
		}

		u.FaceEncoding = fromVector(embedding)
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.ErrStorage.WithError(fmt.Errorf("iterate users: %w", err))
	}

	return users, nil
}

// Append locks the table against concurrent writers, so the count and the
// insert see the same snapshot and ids stay dense.
func (r *UserRepository) Append(ctx context.Context, user *domain.User) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.ErrStorage.WithError(fmt.Errorf("begin append: %w", err))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `LOCK TABLE users IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return domain.ErrStorage.WithError(fmt.Errorf("lock users: %w", err))
	}

	var count int
	if err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return domain.ErrStorage.WithError(fmt.Errorf("count users: %w", err))
	}

	query := `
		INSERT INTO users (id, name, face_encoding, image_path, registered_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING registered_at
	`

	var registeredAt time.Time
	err = tx.QueryRow(ctx, query,
		count+1,
		user.Name,
		toVector(user.FaceEncoding),
		user.ImagePath,
	).Scan(&registeredAt)
	if err != nil {
		return domain.ErrStorage.WithError(fmt.Errorf("insert user: %w", err))
	}

	if err = tx.Commit(ctx); err != nil {
		return domain.ErrStorage.WithError(fmt.Errorf("commit append: %w", err))
	}

	user.ID = count + 1
	user.RegisteredAt = registeredAt
	return nil
}

// FirstWithin returns the lowest-id user whose descriptor is strictly closer
// than threshold, or nil when there is none.
func (r *UserRepository) FirstWithin(ctx context.Context, query []float64, threshold float64) (*domain.Match, error) {
	sql := `
		SELECT id, name, face_encoding, image_path, registered_at, face_encoding <-> $1 AS distance
		FROM users
		WHERE face_encoding <-> $1 < $2
		ORDER BY id
		LIMIT 1
	`

	var match domain.Match
	var embedding *pgvector.Vector

	err := r.pool.QueryRow(ctx, sql, toVector(query), threshold).Scan(
		&match.User.ID,
		&match.User.Name,
		&embedding,
		&match.User.ImagePath,
		&match.User.RegisteredAt,
		&match.Distance,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.ErrStorage.WithError(fmt.Errorf("first within: %w", err))
	}

	match.User.FaceEncoding = fromVector(embedding)
	return &match, nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}
