package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/alumnet/apiserver/internal/storage"
	"github.com/alumnet/apiserver/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxAvatarSize is the largest accepted profile picture.
const MaxAvatarSize = 5 << 20

var avatarExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ObjectStore is the subset of object storage used for avatars.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (storage.Object, error)
	Delete(ctx context.Context, key string) error
}

// AvatarService stores profile pictures in object storage.
type AvatarService struct {
	users   UserRepository
	objects ObjectStore
	logger  *zap.Logger
}

// NewAvatarService constructs an AvatarService. objects may be nil, in which
// case every call reports the feature as unavailable.
func NewAvatarService(users UserRepository, objects ObjectStore, logger *zap.Logger) *AvatarService {
	return &AvatarService{users: users, objects: objects, logger: logger}
}

func (s *AvatarService) available() error {
	if s.objects == nil {
		return newError(ErrUnavailable, "Avatar storage is not configured")
	}
	return nil
}

// Upload replaces the user's profile picture. The content type is sniffed
// from the data, never taken from the client.
func (s *AvatarService) Upload(ctx context.Context, userID int64, data []byte) (types.User, error) {
	if err := s.available(); err != nil {
		return types.User{}, err
	}
	if len(data) == 0 {
		return types.User{}, validationError("avatar is required")
	}
	if len(data) > MaxAvatarSize {
		return types.User{}, validationError("avatar must be at most 5 MiB")
	}
	contentType := http.DetectContentType(data)
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return types.User{}, validationError("avatar must be a PNG, JPEG, GIF or WebP image")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return types.User{}, translate(err, "User")
	}

	key := fmt.Sprintf("avatars/%d/%s%s", userID, uuid.NewString(), ext)
	if err := s.objects.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return types.User{}, fmt.Errorf("store avatar: %w", err)
	}

	previous := user.AvatarKey
	user.AvatarKey = key
	updated, err := s.users.Update(ctx, user)
	if err != nil {
		s.removeObject(ctx, key)
		return types.User{}, translate(err, "User")
	}
	if previous != "" {
		s.removeObject(ctx, previous)
	}
	return updated, nil
}

// Open returns the user's profile picture. The caller closes the body.
func (s *AvatarService) Open(ctx context.Context, userID int64) (storage.Object, error) {
	if err := s.available(); err != nil {
		return storage.Object{}, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return storage.Object{}, translate(err, "User")
	}
	if user.AvatarKey == "" {
		return storage.Object{}, notFoundError("Avatar not found")
	}
	obj, err := s.objects.Get(ctx, user.AvatarKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return storage.Object{}, notFoundError("Avatar not found")
		}
		return storage.Object{}, err
	}
	return obj, nil
}

func (s *AvatarService) removeObject(ctx context.Context, key string) {
	if err := s.objects.Delete(ctx, key); err != nil {
		s.logger.Warn("avatar cleanup failed", zap.String("key", key), zap.Error(err))
	}
}
