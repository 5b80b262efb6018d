package application

import (
	"context"
	"fmt"
	"time"

	"github.com/dfryer1193/microblog/blog/domain"
	"github.com/rs/zerolog/log"
)

// PostService orchestrates post persistence and image storage.
type PostService struct {
	repo   domain.PostRepository
	images domain.ImageStore
}

func NewPostService(repo domain.PostRepository, images domain.ImageStore) *PostService {
	return &PostService{
		repo:   repo,
		images: images,
	}
}

// CreatePost validates and stores the request's optional images, then
// persists the post with the resulting identifiers. If image processing
// fails, nothing is persisted.
func (s *PostService) CreatePost(ctx context.Context, username, body string, imageBytes []byte, avatarURL string) (*domain.Post, error) {
	imageID, avatarID, err := s.images.ProcessImages(ctx, imageBytes, avatarURL)
	if err != nil {
		return nil, err
	}

	post, err := s.repo.SavePost(ctx, &domain.InsertPost{
		PostedOn: time.Now().UTC(),
		Username: username,
		Body:     body,
		ImageID:  imageID,
		AvatarID: avatarID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save post: %w", err)
	}

	log.Debug().Int64("id", post.ID).Str("username", post.Username).Msg("Created post")
	return post, nil
}

// ListPosts returns all posts, newest first.
func (s *PostService) ListPosts(ctx context.Context) ([]*domain.Post, error) {
	return s.repo.ListPosts(ctx)
}

// DeletePost removes the post row and then best-effort removes its image
// files. A failed file cleanup is logged inside the store and never fails
// the deletion.
func (s *PostService) DeletePost(ctx context.Context, id int64) error {
	deleted, err := s.repo.DeletePost(ctx, id)
	if err != nil {
		return err
	}

	s.images.Cleanup(ctx, deleted.ImageID, deleted.AvatarID)

	log.Debug().Int64("id", id).Msg("Deleted post")
	return nil
}

// LoadPostImage returns the PNG bytes of a stored post image.
func (s *PostService) LoadPostImage(ctx context.Context, id domain.PostImageID) ([]byte, error) {
	return s.images.LoadPostImage(ctx, id)
}

// LoadAvatarImage returns the PNG bytes of a stored avatar.
func (s *PostService) LoadAvatarImage(ctx context.Context, id domain.AvatarImageID) ([]byte, error) {
	return s.images.LoadAvatarImage(ctx, id)
}
