package domain

import (
	"context"
	"errors"
	"time"
)

// ErrPostNotFound is returned when an operation references a post that does
// not exist in the database.
var ErrPostNotFound = errors.New("post not found")

// Post represents a blog post that has been saved to the database.
type Post struct {
	ID       int64          `json:"id"`
	PostedOn time.Time      `json:"posted_on"`
	Username string         `json:"username"`
	Body     string         `json:"body"`
	ImageID  *PostImageID   `json:"image_uuid,omitempty"`
	AvatarID *AvatarImageID `json:"avatar_uuid,omitempty"`
}

// InsertPost carries the fields of a post that has not yet been assigned an
// ID by the database.
type InsertPost struct {
	PostedOn time.Time
	Username string
	Body     string
	ImageID  *PostImageID
	AvatarID *AvatarImageID
}

type PostRepository interface {
	// SavePost inserts a new post and returns the stored row.
	SavePost(ctx context.Context, p *InsertPost) (*Post, error)

	// ListPosts returns all posts, newest first.
	ListPosts(ctx context.Context) ([]*Post, error)

	// DeletePost removes a post by ID and returns the deleted row so callers
	// can clean up any image files it referenced.
	// Returns ErrPostNotFound if no post has the given ID.
	DeletePost(ctx context.Context, id int64) (*Post, error)
}
