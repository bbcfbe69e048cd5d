package services

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/alumnet/apiserver/internal/storage"
	"github.com/alumnet/apiserver/internal/store/memory"
	"go.uber.org/zap"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeObjects) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	f.types[key] = contentType
	return nil
}

func (f *fakeObjects) Get(_ context.Context, key string) (storage.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return storage.Object{}, storage.ErrObjectNotFound
	}
	return storage.Object{
		Body:        io.NopCloser(bytes.NewReader(data)),
		ContentType: f.types[key],
		Size:        int64(len(data)),
	}, nil
}

func (f *fakeObjects) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func TestAvatarUploadAndOpen(t *testing.T) {
	f := newFixture(t)
	objects := newFakeObjects()
	svc := NewAvatarService(memory.NewUserRepository(f.db), objects, zap.NewNop())
	ctx := context.Background()
	ann := f.register(t, "Ann", "ann@example.com", 2010)

	_, err := svc.Open(ctx, ann.ID)
	assertKind(t, err, ErrNotFound)

	user, err := svc.Upload(ctx, ann.ID, pngHeader)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !user.HasAvatar || !strings.HasPrefix(user.AvatarKey, "avatars/") || !strings.HasSuffix(user.AvatarKey, ".png") {
		t.Fatalf("avatar key = %q hasAvatar = %v", user.AvatarKey, user.HasAvatar)
	}
	first := user.AvatarKey

	user, err = svc.Upload(ctx, ann.ID, pngHeader)
	if err != nil {
		t.Fatalf("second Upload: %v", err)
	}
	if _, ok := objects.objects[first]; ok {
		t.Fatal("previous avatar was not removed")
	}

	obj, err := svc.Open(ctx, ann.ID)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer obj.Body.Close()
	if obj.ContentType != "image/png" {
		t.Fatalf("content type = %q", obj.ContentType)
	}
	if user.AvatarKey == first {
		t.Fatal("avatar key was reused")
	}
}

func TestAvatarRejectsInvalidUploads(t *testing.T) {
	f := newFixture(t)
	svc := NewAvatarService(memory.NewUserRepository(f.db), newFakeObjects(), zap.NewNop())
	ctx := context.Background()
	ann := f.register(t, "Ann", "ann@example.com", 2010)

	tests := map[string][]byte{
		"empty":     nil,
		"text":      []byte("hello world"),
		"too large": append(append([]byte{}, pngHeader...), make([]byte, MaxAvatarSize)...),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Upload(ctx, ann.ID, data)
			assertKind(t, err, ErrValidation)
		})
	}

	_, err := svc.Upload(ctx, 999, pngHeader)
	assertKind(t, err, ErrNotFound)
}

func TestAvatarWithoutStorage(t *testing.T) {
	f := newFixture(t)
	svc := NewAvatarService(memory.NewUserRepository(f.db), nil, zap.NewNop())
	ann := f.register(t, "Ann", "ann@example.com", 2010)

	_, err := svc.Upload(context.Background(), ann.ID, pngHeader)
	assertKind(t, err, ErrUnavailable)
	_, err = svc.Open(context.Background(), ann.ID)
	assertKind(t, err, ErrUnavailable)
}
