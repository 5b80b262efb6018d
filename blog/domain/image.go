package domain

import "context"

// ImageKind is the category of a stored image. It determines both the typed
// identifier used to reference the image and the subdirectory it lives in.
type ImageKind string

const (
	KindPost   ImageKind = "posts"
	KindAvatar ImageKind = "avatars"
)

// Dir returns the directory name for this kind under the image root.
func (k ImageKind) Dir() string {
	return string(k)
}

// PostImageID names an image attached to a post. The wrapped string is always
// a UUID-v4 generated by the image store, never client input.
type PostImageID string

// AvatarImageID names a stored avatar image. Keeping this distinct from
// PostImageID prevents a post image from being loaded or deleted as an avatar,
// or vice versa.
type AvatarImageID string

func (id PostImageID) String() string {
	return string(id)
}

func (id AvatarImageID) String() string {
	return string(id)
}

func (PostImageID) Kind() ImageKind {
	return KindPost
}

func (AvatarImageID) Kind() ImageKind {
	return KindAvatar
}

// ImageStore validates, persists, loads and removes PNG image files.
type ImageStore interface {
	// ProcessImages validates and stores an optional direct-upload image and
	// an optional avatar fetched from a URL. A nil byte slice and an empty URL
	// mean "absent". When both inputs are present they are validated
	// concurrently, and nothing is written unless both validate.
	ProcessImages(ctx context.Context, imageBytes []byte, avatarURL string) (*PostImageID, *AvatarImageID, error)

	// LoadPostImage returns the PNG bytes of a stored post image.
	LoadPostImage(ctx context.Context, id PostImageID) ([]byte, error)

	// LoadAvatarImage returns the PNG bytes of a stored avatar.
	LoadAvatarImage(ctx context.Context, id AvatarImageID) ([]byte, error)

	// DeletePostImage removes a stored post image. A nil ID is a no-op.
	DeletePostImage(ctx context.Context, id *PostImageID) error

	// DeleteAvatarImage removes a stored avatar. A nil ID is a no-op.
	DeleteAvatarImage(ctx context.Context, id *AvatarImageID) error

	// Cleanup removes the files behind a deleted post's identifiers,
	// concurrently and best-effort. Failures are logged, never returned.
	Cleanup(ctx context.Context, imageID *PostImageID, avatarID *AvatarImageID)
}
