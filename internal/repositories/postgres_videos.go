package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/videotube/backend/internal/db"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/pagination"
)

const videoColumns = `id, owner_id, video_url, video_storage_id, thumbnail_url, thumbnail_storage_id,
        title, description, duration, views, created_at, updated_at`

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, video_url, video_storage_id, thumbnail_url, thumbnail_storage_id,
            title, description, duration, views, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `, video.ID, video.OwnerID, video.Video.URL, video.Video.StorageID, video.Thumbnail.URL, video.Thumbnail.StorageID,
		video.Title, video.Description, video.Duration, video.Views, video.CreatedAt, video.UpdatedAt)
	if err != nil {
		if mapped := translateWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

// FindByID fetches a single video.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	video, err := scanVideo(conn.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video: %w", err)
	}

	return video, nil
}

// FindMany fetches every video whose id is in ids.
func (r *PostgresVideoRepository) FindMany(ctx context.Context, ids []string) ([]models.Video, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.query(ctx, "query videos", `SELECT `+videoColumns+` FROM videos WHERE id = ANY($1)`, ids)
}

// List returns a window of videos matching filter in the requested order.
func (r *PostgresVideoRepository) List(ctx context.Context, filter VideoFilter, order pagination.Order, offset, limit int) ([]models.Video, error) {
	orderBy, err := orderClause(order, VideoSortFields)
	if err != nil {
		return nil, err
	}

	where, args := videoFilterClause(filter)
	args = append(args, offset, limit)
	sql := fmt.Sprintf(`SELECT %s FROM videos %s %s OFFSET $%d LIMIT $%d`,
		videoColumns, where, orderBy, len(args)-1, len(args))

	return r.query(ctx, "list videos", sql, args...)
}

// Count returns the number of videos matching filter.
func (r *PostgresVideoRepository) Count(ctx context.Context, filter VideoFilter) (int, error) {
	where, args := videoFilterClause(filter)
	return r.count(ctx, "count videos", `SELECT count(*) FROM videos `+where, args...)
}

// ListWatchHistory resolves a user's watch history to videos, preserving the stored order.
func (r *PostgresVideoRepository) ListWatchHistory(ctx context.Context, userID string, offset, limit int) ([]models.Video, error) {
	return r.query(ctx, "list watch history", `
        SELECT v.id, v.owner_id, v.video_url, v.video_storage_id, v.thumbnail_url, v.thumbnail_storage_id,
            v.title, v.description, v.duration, v.views, v.created_at, v.updated_at
        FROM users u
        CROSS JOIN LATERAL unnest(u.watch_history) WITH ORDINALITY AS h(video_id, position)
        JOIN videos v ON v.id = h.video_id
        WHERE u.id = $1
        ORDER BY h.position
        OFFSET $2 LIMIT $3
    `, userID, offset, limit)
}

// CountWatchHistory counts history entries that still resolve to a video.
func (r *PostgresVideoRepository) CountWatchHistory(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, "count watch history", `
        SELECT count(*)
        FROM users u
        CROSS JOIN LATERAL unnest(u.watch_history) AS h(video_id)
        JOIN videos v ON v.id = h.video_id
        WHERE u.id = $1
    `, userID)
}

// ListLikedBy returns the videos a user liked, most recently liked first.
func (r *PostgresVideoRepository) ListLikedBy(ctx context.Context, userID string, offset, limit int) ([]models.Video, error) {
	return r.query(ctx, "list liked videos", `
        SELECT v.id, v.owner_id, v.video_url, v.video_storage_id, v.thumbnail_url, v.thumbnail_storage_id,
            v.title, v.description, v.duration, v.views, v.created_at, v.updated_at
        FROM likes l
        JOIN videos v ON v.id = l.target_id
        WHERE l.liked_by = $1 AND l.target_kind = $2
        ORDER BY l.created_at DESC, l.id DESC
        OFFSET $3 LIMIT $4
    `, userID, string(models.LikeKindVideo), offset, limit)
}

// CountLikedBy counts the existing videos a user liked.
func (r *PostgresVideoRepository) CountLikedBy(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, "count liked videos", `
        SELECT count(*)
        FROM likes l
        JOIN videos v ON v.id = l.target_id
        WHERE l.liked_by = $1 AND l.target_kind = $2
    `, userID, string(models.LikeKindVideo))
}

// Update modifies the editable fields of a video.
func (r *PostgresVideoRepository) Update(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET title = $2, description = $3, thumbnail_url = $4, thumbnail_storage_id = $5, updated_at = $6
        WHERE id = $1
    `, video.ID, video.Title, video.Description, video.Thumbnail.URL, video.Thumbnail.StorageID, video.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// IncrementViews adds one to a video's view counter.
func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a video and cleans up the records that reference it. Each
// statement stands alone; a failure part way leaves earlier cleanup in place.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `
        DELETE FROM likes
        WHERE (target_kind = 'video' AND target_id = $1)
           OR (target_kind = 'comment' AND target_id IN (SELECT id FROM comments WHERE video_id = $1))
    `, id); err != nil {
		return fmt.Errorf("delete video likes: %w", err)
	}

	tag, err := conn.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := conn.Exec(ctx, `
        UPDATE users SET watch_history = array_remove(watch_history, $1::TEXT)
        WHERE $1::TEXT = ANY(watch_history)
    `, id); err != nil {
		return fmt.Errorf("remove video from watch history: %w", err)
	}

	if _, err := conn.Exec(ctx, `
        UPDATE playlists SET video_ids = array_remove(video_ids, $1::TEXT)
        WHERE $1::TEXT = ANY(video_ids)
    `, id); err != nil {
		return fmt.Errorf("remove video from playlists: %w", err)
	}

	return nil
}

func (r *PostgresVideoRepository) query(ctx context.Context, op, sql string, args ...any) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}

	return videos, nil
}

func (r *PostgresVideoRepository) count(ctx context.Context, op, sql string, args ...any) (int, error) {
	return countRows(ctx, r.pool, op, sql, args...)
}

func videoFilterClause(filter VideoFilter) (string, []any) {
	var (
		conditions []string
		args       []any
	)

	if owner := strings.TrimSpace(filter.OwnerID); owner != "" {
		args = append(args, owner)
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if query := strings.TrimSpace(filter.Query); query != "" {
		args = append(args, "%"+query+"%")
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func countRows(ctx context.Context, pool db.Pool, op, sql string, args ...any) (int, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var n int
	if err := conn.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func scanVideo(row pgx.Row) (models.Video, error) {
	var video models.Video
	err := row.Scan(&video.ID, &video.OwnerID, &video.Video.URL, &video.Video.StorageID,
		&video.Thumbnail.URL, &video.Thumbnail.StorageID, &video.Title, &video.Description,
		&video.Duration, &video.Views, &video.CreatedAt, &video.UpdatedAt)
	return video, err
}

var _ VideoRepository = (*PostgresVideoRepository)(nil)
