package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dfryer1193/microblog/blog/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

var _ domain.ImageStore = (*Store)(nil)

const (
	// maxConcurrentFileOps bounds how many filesystem reads/writes/removes
	// may run at once, so a burst of requests cannot saturate the process
	// with blocking file I/O.
	maxConcurrentFileOps = 32

	defaultDownloadTimeout = 30 * time.Second

	dirPerm = 0755
)

// Store persists PNG images on the local filesystem.
//
// Each image is named by a store-generated UUID-v4 and written to a path
// sharded on the first four characters of that UUID, bounding the number of
// files per directory. Post images and avatars live in separate subtrees.
type Store struct {
	baseDir string
	client  *http.Client
	fileOps *semaphore.Weighted
}

// NewStore creates a Store rooted at baseDir. The client is used for avatar
// downloads; pass nil to use a default client with a request timeout.
func NewStore(baseDir string, client *http.Client) *Store {
	if client == nil {
		client = &http.Client{Timeout: defaultDownloadTimeout}
	}

	return &Store{
		baseDir: baseDir,
		client:  client,
		fileOps: semaphore.NewWeighted(maxConcurrentFileOps),
	}
}

// imagePath returns the on-disk location for an image of the given kind.
// For example, a post image with UUID 123e4567-e89b-12d3-a456-426614174000
// stored under base directory "./images" lives at:
//
//	./images/posts/12/3e/123e4567-e89b-12d3-a456-426614174000.png
//
// Panics when id has fewer than four characters. Identifiers are always
// store-generated UUIDs, so a short id means a caller bug, not bad input.
func (s *Store) imagePath(kind domain.ImageKind, id string) string {
	if len(id) < 4 {
		panic(fmt.Sprintf("image id %q is too short for path derivation", id))
	}

	return filepath.Join(s.baseDir, kind.Dir(), id[0:2], id[2:4], id+".png")
}

// ProcessImages validates and stores the optional direct-upload image bytes
// and the optional avatar URL of a post-creation request.
//
// When both inputs are present, the two validations run concurrently, and
// the two saves only start after both validations succeed. An invalid input
// on either side therefore never leaves a stray file on disk for the other.
// If both validations fail, which error is returned is unspecified.
func (s *Store) ProcessImages(ctx context.Context, imageBytes []byte, avatarURL string) (*domain.PostImageID, *domain.AvatarImageID, error) {
	switch {
	case imageBytes == nil && avatarURL == "":
		return nil, nil, nil

	case avatarURL == "":
		log.Debug().Msg("Processing post image")
		img, err := decode(imageBytes)
		if err != nil {
			return nil, nil, err
		}
		id, err := s.save(ctx, domain.KindPost, img)
		if err != nil {
			return nil, nil, err
		}
		imageID := domain.PostImageID(id)
		return &imageID, nil, nil

	case imageBytes == nil:
		log.Debug().Msg("Processing avatar image")
		img, err := s.fetchAvatar(ctx, avatarURL)
		if err != nil {
			return nil, nil, err
		}
		id, err := s.save(ctx, domain.KindAvatar, img)
		if err != nil {
			return nil, nil, err
		}
		avatarID := domain.AvatarImageID(id)
		return nil, &avatarID, nil

	default:
		log.Debug().Msg("Processing post and avatar images")
		var img, avatar image.Image

		// Validate both before writing anything.
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			img, err = decode(imageBytes)
			return err
		})
		g.Go(func() error {
			var err error
			avatar, err = s.fetchAvatar(gctx, avatarURL)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}

		var imageID domain.PostImageID
		var avatarID domain.AvatarImageID

		g, gctx = errgroup.WithContext(ctx)
		g.Go(func() error {
			id, err := s.save(gctx, domain.KindPost, img)
			if err != nil {
				return err
			}
			imageID = domain.PostImageID(id)
			return nil
		})
		g.Go(func() error {
			id, err := s.save(gctx, domain.KindAvatar, avatar)
			if err != nil {
				return err
			}
			avatarID = domain.AvatarImageID(id)
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}

		return &imageID, &avatarID, nil
	}
}

// LoadPostImage reads the PNG bytes of a stored post image.
func (s *Store) LoadPostImage(ctx context.Context, id domain.PostImageID) ([]byte, error) {
	return s.load(ctx, domain.KindPost, id.String())
}

// LoadAvatarImage reads the PNG bytes of a stored avatar.
func (s *Store) LoadAvatarImage(ctx context.Context, id domain.AvatarImageID) ([]byte, error) {
	return s.load(ctx, domain.KindAvatar, id.String())
}

// DeletePostImage removes a stored post image. A nil ID is a no-op success,
// so call sites for posts without an image stay simple.
func (s *Store) DeletePostImage(ctx context.Context, id *domain.PostImageID) error {
	if id == nil {
		return nil
	}
	return s.remove(ctx, domain.KindPost, id.String())
}

// DeleteAvatarImage removes a stored avatar. A nil ID is a no-op success.
func (s *Store) DeleteAvatarImage(ctx context.Context, id *domain.AvatarImageID) error {
	if id == nil {
		return nil
	}
	return s.remove(ctx, domain.KindAvatar, id.String())
}

// Cleanup removes the files behind a deleted post's identifiers. The two
// deletions run concurrently and failures are logged and discarded: a
// leftover file must never fail a post deletion.
func (s *Store) Cleanup(ctx context.Context, imageID *domain.PostImageID, avatarID *domain.AvatarImageID) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := s.DeletePostImage(ctx, imageID); err != nil {
			log.Warn().Err(err).Msg("Failed to remove post image during cleanup")
		}
	}()
	go func() {
		defer wg.Done()
		if err := s.DeleteAvatarImage(ctx, avatarID); err != nil {
			log.Warn().Err(err).Msg("Failed to remove avatar during cleanup")
		}
	}()

	wg.Wait()
}

// fetchAvatar downloads the bytes at url and validates them as PNG.
func (s *Store) fetchAvatar(ctx context.Context, url string) (image.Image, error) {
	data, err := s.download(ctx, url)
	if err != nil {
		return nil, err
	}
	return decode(data)
}

func (s *Store) download(ctx context.Context, url string) ([]byte, error) {
	log.Debug().Str("url", url).Msg("Downloading avatar")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &DownloadError{URL: url, Err: err}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &DownloadError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &DownloadError{URL: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &DownloadError{URL: url, Err: err}
	}

	return data, nil
}

// decode validates that data is a PNG image. The format is pinned to PNG;
// other image formats are rejected.
func decode(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return img, nil
}

// save assigns img a fresh UUID, creates the shard directories and writes the
// PNG-encoded bytes. It returns the new identifier as a plain string; callers
// wrap it in the kind-specific type.
func (s *Store) save(ctx context.Context, kind domain.ImageKind, img image.Image) (string, error) {
	id := uuid.NewString()
	path := s.imagePath(kind, id)

	if err := s.fileOps.Acquire(ctx, 1); err != nil {
		return "", &IOError{Op: "save", Err: err}
	}
	defer s.fileOps.Release(1)

	// MkdirAll is idempotent, so concurrent saves into sibling shards are safe.
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return "", &IOError{Op: "save", Err: err}
	}

	f, err := os.Create(path)
	if err != nil {
		return "", &IOError{Op: "save", Err: err}
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", &IOError{Op: "save", Err: err}
	}

	if err := f.Close(); err != nil {
		return "", &IOError{Op: "save", Err: err}
	}

	log.Debug().Str("path", path).Msg("Saved image")
	return id, nil
}

func (s *Store) load(ctx context.Context, kind domain.ImageKind, id string) ([]byte, error) {
	path := s.imagePath(kind, id)

	if err := s.fileOps.Acquire(ctx, 1); err != nil {
		return nil, &IOError{Op: "load", Err: err}
	}
	defer s.fileOps.Release(1)

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to load image")
		return nil, &IOError{Op: "load", Err: err}
	}

	return data, nil
}

func (s *Store) remove(ctx context.Context, kind domain.ImageKind, id string) error {
	path := s.imagePath(kind, id)

	if err := s.fileOps.Acquire(ctx, 1); err != nil {
		return &IOError{Op: "delete", Err: err}
	}
	defer s.fileOps.Release(1)

	if err := os.Remove(path); err != nil {
		return &IOError{Op: "delete", Err: err}
	}

	log.Debug().Str("path", path).Msg("Deleted image")
	return nil
}
