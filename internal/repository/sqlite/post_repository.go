package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"chefin-server/internal/domain"
	"chefin-server/internal/repository"
)

const createPostsTable = `
CREATE TABLE IF NOT EXISTS posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	username TEXT NOT NULL DEFAULT '',
	profile_img_url TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	image_url TEXT NOT NULL DEFAULT '',
	labels TEXT NOT NULL DEFAULT '[]',
	whats_included TEXT NOT NULL DEFAULT '[]',
	overview TEXT NOT NULL DEFAULT '',
	meeting_address TEXT NOT NULL DEFAULT '',
	meeting_lat REAL NOT NULL DEFAULT 0,
	meeting_lng REAL NOT NULL DEFAULT 0,
	reviews TEXT NOT NULL DEFAULT '[]',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts(user_id);
`

type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) repository.PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPostsTable); err != nil {
		return fmt.Errorf("create posts table: %w", err)
	}
	return nil
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) (int64, error) {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	labels, whatsIncluded, reviews, err := packPostLists(post)
	if err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO posts (user_id, username, profile_img_url, title, description, image_url,
	labels, whats_included, overview, meeting_address, meeting_lat, meeting_lng,
	reviews, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.UserID,
		post.Username,
		post.ProfileImageURL,
		post.Title,
		post.Description,
		post.ImageURL,
		labels,
		whatsIncluded,
		post.Overview,
		post.MeetingPoint.Address,
		post.MeetingPoint.Latitude,
		post.MeetingPoint.Longitude,
		reviews,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("post last insert id: %w", err)
	}
	post.ID = id
	return id, nil
}

func (r *PostRepository) Get(ctx context.Context, id int64) (*domain.Post, error) {
	row := r.db.QueryRowContext(ctx, selectPost+` WHERE id = ?`, id)
	return scanPost(row)
}

func (r *PostRepository) List(ctx context.Context, filter repository.PostFilter) ([]domain.Post, error) {
	query := selectPost
	var args []any
	if filter.UserID != nil {
		query += ` WHERE user_id = ?`
		args = append(args, *filter.UserID)
	}
	query += ` ORDER BY id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}

	return posts, rows.Err()
}

func (r *PostRepository) Update(ctx context.Context, post *domain.Post) error {
	post.UpdatedAt = time.Now().UTC()

	labels, whatsIncluded, reviews, err := packPostLists(post)
	if err != nil {
		return err
	}

	// user_id is immutable after creation and deliberately absent here.
	res, err := r.db.ExecContext(ctx, `
UPDATE posts
SET title=?, description=?, image_url=?, labels=?, whats_included=?, overview=?,
	meeting_address=?, meeting_lat=?, meeting_lng=?, reviews=?, updated_at=?
WHERE id=?`,
		post.Title,
		post.Description,
		post.ImageURL,
		labels,
		whatsIncluded,
		post.Overview,
		post.MeetingPoint.Address,
		post.MeetingPoint.Latitude,
		post.MeetingPoint.Longitude,
		reviews,
		post.UpdatedAt,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update post rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("post not found")
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("post not found")
	}
	return nil
}

func (r *PostRepository) AppendReview(ctx context.Context, postID int64, review domain.Review) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // safe no-op on commit

	var raw string
	if err := tx.QueryRowContext(ctx, `SELECT reviews FROM posts WHERE id=?`, postID).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("post not found")
		}
		return fmt.Errorf("select reviews: %w", err)
	}

	var reviews []domain.Review
	if err := json.Unmarshal([]byte(raw), &reviews); err != nil {
		return fmt.Errorf("unmarshal reviews: %w", err)
	}
	reviews = append(reviews, review)

	encoded, err := json.Marshal(reviews)
	if err != nil {
		return fmt.Errorf("marshal reviews: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE posts SET reviews=?, updated_at=? WHERE id=?`,
		string(encoded), time.Now().UTC(), postID); err != nil {
		return fmt.Errorf("update reviews: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const selectPost = `
SELECT id, user_id, username, profile_img_url, title, description, image_url,
	labels, whats_included, overview, meeting_address, meeting_lat, meeting_lng,
	reviews, created_at, updated_at
FROM posts`

func packPostLists(post *domain.Post) (labels, whatsIncluded, reviews string, err error) {
	encode := func(v any) (string, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("marshal post field: %w", err)
		}
		return string(b), nil
	}

	if post.Labels == nil {
		post.Labels = []string{}
	}
	if post.WhatsIncluded == nil {
		post.WhatsIncluded = []string{}
	}
	if post.Reviews == nil {
		post.Reviews = []domain.Review{}
	}

	if labels, err = encode(post.Labels); err != nil {
		return "", "", "", err
	}
	if whatsIncluded, err = encode(post.WhatsIncluded); err != nil {
		return "", "", "", err
	}
	if reviews, err = encode(post.Reviews); err != nil {
		return "", "", "", err
	}
	return labels, whatsIncluded, reviews, nil
}

func scanPost(row interface {
	Scan(dest ...any) error
}) (*domain.Post, error) {
	var (
		post          domain.Post
		labels        string
		whatsIncluded string
		reviews       string
	)
	if err := row.Scan(
		&post.ID,
		&post.UserID,
		&post.Username,
		&post.ProfileImageURL,
		&post.Title,
		&post.Description,
		&post.ImageURL,
		&labels,
		&whatsIncluded,
		&post.Overview,
		&post.MeetingPoint.Address,
		&post.MeetingPoint.Latitude,
		&post.MeetingPoint.Longitude,
		&reviews,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post not found")
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}

	if err := json.Unmarshal([]byte(labels), &post.Labels); err != nil {
		return nil, fmt.Errorf("unmarshal labels: %w", err)
	}
	if err := json.Unmarshal([]byte(whatsIncluded), &post.WhatsIncluded); err != nil {
		return nil, fmt.Errorf("unmarshal whats included: %w", err)
	}
	if err := json.Unmarshal([]byte(reviews), &post.Reviews); err != nil {
		return nil, fmt.Errorf("unmarshal reviews: %w", err)
	}
	return &post, nil
}
