package mocks

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"classifieds-backend/internal/infrastructure/storage"
	"classifieds-backend/internal/shared"
)

// ImageStore is an in-memory object store.
type ImageStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	modified map[string]time.Time

	BaseURL   string
	UploadErr error
	DeleteErr error
}

func NewImageStore() *ImageStore {
	return &ImageStore{
		objects:  make(map[string][]byte),
		modified: make(map[string]time.Time),
		BaseURL:  "/media",
	}
}

func (s *ImageStore) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	if s.UploadErr != nil {
		return "", s.UploadErr
	}
	s.Put(key, data, time.Now())
	return s.URL(key), nil
}

// Put stores an object with an explicit modification time.
func (s *ImageStore) Put(key string, data []byte, modified time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	s.modified[key] = modified
}

func (s *ImageStore) Delete(_ context.Context, key string) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	delete(s.modified, key)
	return nil
}

func (s *ImageStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	for _, key := range s.Keys() {
		if strings.HasPrefix(key, prefix) {
			_ = s.Delete(ctx, key)
		}
	}
	return nil
}

func (s *ImageStore) ListKeys(_ context.Context, prefix string, olderThan time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []string
	for key, mod := range s.modified {
		if strings.HasPrefix(key, prefix) && mod.Before(olderThan) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *ImageStore) URL(key string) string {
	return storage.PublicURL(s.BaseURL, key)
}

func (s *ImageStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

func (s *ImageStore) Get(key string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[key]
}

func (s *ImageStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.objects))
	for key := range s.objects {
		keys = append(keys, key)
	}
	return keys
}

// Queue records enqueued cleanup payloads.
type Queue struct {
	mu       sync.Mutex
	Payloads []shared.DeleteAdImagePayload
	Err      error
}

var ErrQueueDown = errors.New("queue unavailable")

func (q *Queue) EnqueueDeleteAdImage(_ context.Context, payload shared.DeleteAdImagePayload) error {
	if q.Err != nil {
		return q.Err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Payloads = append(q.Payloads, payload)
	return nil
}

func (q *Queue) Enqueued() []shared.DeleteAdImagePayload {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]shared.DeleteAdImagePayload(nil), q.Payloads...)
}
