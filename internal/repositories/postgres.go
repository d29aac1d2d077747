package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/videotube/backend/internal/db"
	"github.com/videotube/backend/internal/models"
)

const userColumns = `id, username, full_name, email, password_hash, avatar_url, avatar_storage_id,
        cover_url, cover_storage_id, refresh_token_hash, watch_history, created_at, updated_at`

// PostgresUserRepository provides PostgreSQL-backed persistence for users.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new user record.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	coverURL, coverID := coverColumns(user.CoverImage)
	history := user.WatchHistory
	if history == nil {
		history = []string{}
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, username, full_name, email, password_hash, avatar_url, avatar_storage_id,
            cover_url, cover_storage_id, refresh_token_hash, watch_history, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `, user.ID, user.Username, user.FullName, user.Email, user.PasswordHash, user.Avatar.URL, user.Avatar.StorageID,
		coverURL, coverID, user.RefreshTokenHash, history, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if mapped := translateWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// FindByID fetches a user by id.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	return r.findOne(ctx, "id", id)
}

// FindByUsername fetches a user by their normalized username.
func (r *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return r.findOne(ctx, "username", models.NormalizeHandle(username))
}

// FindByEmail fetches a user by their email address.
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, "email", models.NormalizeHandle(email))
}

func (r *PostgresUserRepository) findOne(ctx context.Context, column, value string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, value)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user by %s: %w", column, err)
	}

	return user, nil
}

// FindMany fetches every user whose id is in ids.
func (r *PostgresUserRepository) FindMany(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// Update modifies the profile, credential and media columns of an existing user.
func (r *PostgresUserRepository) Update(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	coverURL, coverID := coverColumns(user.CoverImage)

	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET username = $2, full_name = $3, email = $4, password_hash = $5,
            avatar_url = $6, avatar_storage_id = $7, cover_url = $8, cover_storage_id = $9, updated_at = $10
        WHERE id = $1
    `, user.ID, user.Username, user.FullName, user.Email, user.PasswordHash,
		user.Avatar.URL, user.Avatar.StorageID, coverURL, coverID, user.UpdatedAt)
	if err != nil {
		if mapped := translateWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("update user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// SetRefreshTokenHash stores the hash of the user's current refresh token. An empty hash logs the user out.
func (r *PostgresUserRepository) SetRefreshTokenHash(ctx context.Context, userID, hash string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `UPDATE users SET refresh_token_hash = $2 WHERE id = $1`, userID, hash)
	if err != nil {
		return fmt.Errorf("update refresh token: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// PushWatchHistory moves videoID to the front of the user's watch history.
func (r *PostgresUserRepository) PushWatchHistory(ctx context.Context, userID, videoID string, limit int) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET watch_history = ARRAY(
            SELECT h.video_id
            FROM unnest(array_prepend($2::TEXT, array_remove(watch_history, $2::TEXT))) WITH ORDINALITY AS h(video_id, position)
            WHERE h.position <= $3::INT
            ORDER BY h.position
        )
        WHERE id = $1
    `, userID, videoID, limit)
	if err != nil {
		return fmt.Errorf("update watch history: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func coverColumns(cover *models.MediaAsset) (*string, *string) {
	if cover == nil {
		return nil, nil
	}
	return &cover.URL, &cover.StorageID
}

func scanUser(row pgx.Row) (models.User, error) {
	var (
		user     models.User
		coverURL *string
		coverID  *string
	)

	if err := row.Scan(&user.ID, &user.Username, &user.FullName, &user.Email, &user.PasswordHash,
		&user.Avatar.URL, &user.Avatar.StorageID, &coverURL, &coverID, &user.RefreshTokenHash,
		&user.WatchHistory, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return models.User{}, err
	}

	if coverURL != nil {
		cover := models.MediaAsset{URL: *coverURL}
		if coverID != nil {
			cover.StorageID = *coverID
		}
		user.CoverImage = &cover
	}

	return user, nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
