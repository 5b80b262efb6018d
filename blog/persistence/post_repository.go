package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dfryer1193/microblog/blog/domain"
	"github.com/dfryer1193/microblog/shared/db"
)

var _ domain.PostRepository = (*SQLitePostRepository)(nil)

// SQLitePostRepository implements domain.PostRepository using SQL database (SQLite)
type SQLitePostRepository struct {
	db *sql.DB
}

// NewPostRepository creates a new SQLitePostRepository from a standard sql.DB
func NewPostRepository(db *sql.DB) *SQLitePostRepository {
	return &SQLitePostRepository{
		db: db,
	}
}

const insertPostQuery = `
	INSERT INTO posts (posted_on, username, body, image_uuid, avatar_uuid)
	VALUES (?, ?, ?, ?, ?)
`

// SavePost inserts a new post and returns the stored row with its assigned ID
func (r *SQLitePostRepository) SavePost(ctx context.Context, p *domain.InsertPost) (*domain.Post, error) {
	if p == nil {
		return nil, fmt.Errorf("post cannot be nil")
	}

	if p.Username == "" {
		return nil, fmt.Errorf("post username cannot be empty")
	}

	var imageUUID, avatarUUID any
	if p.ImageID != nil {
		imageUUID = p.ImageID.String()
	}
	if p.AvatarID != nil {
		avatarUUID = p.AvatarID.String()
	}

	result, err := r.db.ExecContext(ctx, insertPostQuery,
		p.PostedOn,
		p.Username,
		p.Body,
		imageUUID,
		avatarUUID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted post id: %w", err)
	}

	return &domain.Post{
		ID:       id,
		PostedOn: p.PostedOn,
		Username: p.Username,
		Body:     p.Body,
		ImageID:  p.ImageID,
		AvatarID: p.AvatarID,
	}, nil
}

const listPostsQuery = `
	SELECT id, posted_on, username, body, image_uuid, avatar_uuid
	FROM posts
	ORDER BY id DESC
`

// ListPosts retrieves all posts ordered by ID descending, newest first
func (r *SQLitePostRepository) ListPosts(ctx context.Context) ([]*domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, listPostsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*domain.Post, 0)
	for rows.Next() {
		var row postRow
		err := rows.Scan(
			&row.ID,
			&row.PostedOn,
			&row.Username,
			&row.Body,
			&row.ImageUUID,
			&row.AvatarUUID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, row.toDomain())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}

	return posts, nil
}

const getPostQuery = `
	SELECT id, posted_on, username, body, image_uuid, avatar_uuid
	FROM posts
	WHERE id = ?
`

const deletePostQuery = `
	DELETE FROM posts WHERE id = ?
`

// DeletePost removes a post by ID and returns the deleted row.
// The select and delete run in one transaction so the returned image
// identifiers always describe the row that was actually removed.
func (r *SQLitePostRepository) DeletePost(ctx context.Context, id int64) (*domain.Post, error) {
	var deleted *domain.Post

	err := db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		executor := db.GetExecutor(txCtx, r.db)

		var row postRow
		err := executor.QueryRowContext(txCtx, getPostQuery, id).Scan(
			&row.ID,
			&row.PostedOn,
			&row.Username,
			&row.Body,
			&row.ImageUUID,
			&row.AvatarUUID,
		)
		if err == sql.ErrNoRows {
			return domain.ErrPostNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get post for deletion: %w", err)
		}

		if _, err := executor.ExecContext(txCtx, deletePostQuery, id); err != nil {
			return fmt.Errorf("failed to delete post: %w", err)
		}

		deleted = row.toDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

// postRow is a private struct used to scan database rows
// It uses sql.NullString for the nullable image identifier columns
// and provides a method to convert to the domain.Post model
type postRow struct {
	ID         int64          `db:"id"`
	PostedOn   sql.NullTime   `db:"posted_on"`
	Username   string         `db:"username"`
	Body       string         `db:"body"`
	ImageUUID  sql.NullString `db:"image_uuid"`
	AvatarUUID sql.NullString `db:"avatar_uuid"`
}

// toDomain converts a postRow to a domain.Post, handling nullable columns
func (pr *postRow) toDomain() *domain.Post {
	post := &domain.Post{
		ID:       pr.ID,
		Username: pr.Username,
		Body:     pr.Body,
	}

	if pr.PostedOn.Valid {
		post.PostedOn = pr.PostedOn.Time
	}
	if pr.ImageUUID.Valid {
		imageID := domain.PostImageID(pr.ImageUUID.String)
		post.ImageID = &imageID
	}
	if pr.AvatarUUID.Valid {
		avatarID := domain.AvatarImageID(pr.AvatarUUID.String)
		post.AvatarID = &avatarID
	}

	return post
}
