package application

import (
	"context"
	"errors"
	"testing"

	"github.com/dfryer1193/microblog/blog/domain"
)

// fakePostRepository is an in-memory domain.PostRepository.
type fakePostRepository struct {
	posts   map[int64]*domain.Post
	nextID  int64
	saveErr error
}

func newFakePostRepository() *fakePostRepository {
	return &fakePostRepository{posts: make(map[int64]*domain.Post), nextID: 1}
}

func (f *fakePostRepository) SavePost(_ context.Context, p *domain.InsertPost) (*domain.Post, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}

	post := &domain.Post{
		ID:       f.nextID,
		PostedOn: p.PostedOn,
		Username: p.Username,
		Body:     p.Body,
		ImageID:  p.ImageID,
		AvatarID: p.AvatarID,
	}
	f.posts[post.ID] = post
	f.nextID++
	return post, nil
}

func (f *fakePostRepository) ListPosts(_ context.Context) ([]*domain.Post, error) {
	posts := make([]*domain.Post, 0, len(f.posts))
	for id := f.nextID - 1; id >= 1; id-- {
		if p, ok := f.posts[id]; ok {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

func (f *fakePostRepository) DeletePost(_ context.Context, id int64) (*domain.Post, error) {
	post, ok := f.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	delete(f.posts, id)
	return post, nil
}

// fakeImageStore records calls and returns canned identifiers.
type fakeImageStore struct {
	processErr     error
	imageID        *domain.PostImageID
	avatarID       *domain.AvatarImageID
	cleanupImage   *domain.PostImageID
	cleanupAvatar  *domain.AvatarImageID
	cleanupCalled  bool
	processedBytes []byte
	processedURL   string
}

func (f *fakeImageStore) ProcessImages(_ context.Context, imageBytes []byte, avatarURL string) (*domain.PostImageID, *domain.AvatarImageID, error) {
	f.processedBytes = imageBytes
	f.processedURL = avatarURL
	if f.processErr != nil {
		return nil, nil, f.processErr
	}
	return f.imageID, f.avatarID, nil
}

func (f *fakeImageStore) LoadPostImage(_ context.Context, id domain.PostImageID) ([]byte, error) {
	return []byte("png:" + id.String()), nil
}

func (f *fakeImageStore) LoadAvatarImage(_ context.Context, id domain.AvatarImageID) ([]byte, error) {
	return []byte("png:" + id.String()), nil
}

func (f *fakeImageStore) DeletePostImage(_ context.Context, _ *domain.PostImageID) error {
	return nil
}

func (f *fakeImageStore) DeleteAvatarImage(_ context.Context, _ *domain.AvatarImageID) error {
	return nil
}

func (f *fakeImageStore) Cleanup(_ context.Context, imageID *domain.PostImageID, avatarID *domain.AvatarImageID) {
	f.cleanupCalled = true
	f.cleanupImage = imageID
	f.cleanupAvatar = avatarID
}

func TestPostService_CreatePost(t *testing.T) {
	repo := newFakePostRepository()
	imageID := domain.PostImageID("123e4567-e89b-12d3-a456-426614174000")
	store := &fakeImageStore{imageID: &imageID}
	service := NewPostService(repo, store)

	post, err := service.CreatePost(context.Background(), "alice", "first post", []byte("fake png"), "")
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	if post.Username != "alice" {
		t.Errorf("Username = %v, want alice", post.Username)
	}
	if post.ImageID == nil || *post.ImageID != imageID {
		t.Errorf("ImageID = %v, want %v", post.ImageID, imageID)
	}
	if post.PostedOn.IsZero() {
		t.Error("PostedOn not set")
	}
	if string(store.processedBytes) != "fake png" {
		t.Errorf("store received bytes %q", store.processedBytes)
	}
}

func TestPostService_CreatePost_ImageFailureAbortsSave(t *testing.T) {
	repo := newFakePostRepository()
	wantErr := errors.New("not a png")
	store := &fakeImageStore{processErr: wantErr}
	service := NewPostService(repo, store)

	_, err := service.CreatePost(context.Background(), "alice", "bad image", []byte("junk"), "")
	if !errors.Is(err, wantErr) {
		t.Fatalf("CreatePost error = %v, want %v", err, wantErr)
	}

	if len(repo.posts) != 0 {
		t.Error("post was persisted despite image processing failure")
	}
}

func TestPostService_ListPosts(t *testing.T) {
	repo := newFakePostRepository()
	service := NewPostService(repo, &fakeImageStore{})

	if _, err := service.CreatePost(context.Background(), "alice", "one", nil, ""); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if _, err := service.CreatePost(context.Background(), "bob", "two", nil, ""); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	posts, err := service.ListPosts(context.Background())
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("len(posts) = %d, want 2", len(posts))
	}
	if posts[0].Username != "bob" {
		t.Errorf("posts[0].Username = %v, want bob (newest first)", posts[0].Username)
	}
}

func TestPostService_DeletePost_CleansUpImages(t *testing.T) {
	repo := newFakePostRepository()
	imageID := domain.PostImageID("123e4567-e89b-12d3-a456-426614174000")
	avatarID := domain.AvatarImageID("223e4567-e89b-12d3-a456-426614174000")
	store := &fakeImageStore{imageID: &imageID, avatarID: &avatarID}
	service := NewPostService(repo, store)

	post, err := service.CreatePost(context.Background(), "alice", "with images", []byte("png"), "http://example.com/a.png")
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	if err := service.DeletePost(context.Background(), post.ID); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}

	if !store.cleanupCalled {
		t.Fatal("Cleanup was not called")
	}
	if store.cleanupImage == nil || *store.cleanupImage != imageID {
		t.Errorf("cleanup image = %v, want %v", store.cleanupImage, imageID)
	}
	if store.cleanupAvatar == nil || *store.cleanupAvatar != avatarID {
		t.Errorf("cleanup avatar = %v, want %v", store.cleanupAvatar, avatarID)
	}
}

func TestPostService_DeletePost_NotFound(t *testing.T) {
	repo := newFakePostRepository()
	store := &fakeImageStore{}
	service := NewPostService(repo, store)

	err := service.DeletePost(context.Background(), 99)
	if !errors.Is(err, domain.ErrPostNotFound) {
		t.Fatalf("DeletePost error = %v, want ErrPostNotFound", err)
	}
	if store.cleanupCalled {
		t.Error("Cleanup ran for a post that was never deleted")
	}
}
