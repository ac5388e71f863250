package storage

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/harryzhoudev/portfolio-api/internal/content"
)

var ErrObjectNotFound = errors.New("object not found")

type memObject struct {
	data         []byte
	contentType  string
	lastModified time.Time
}

// MemoryStorage is an in-process asset store for tests and local development.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]*memObject
	baseURL string

	// UploadErr / DeleteErr, when set, make the matching call fail.
	UploadErr error
	DeleteErr error
	// Now is the clock stamped on uploads; defaults to time.Now.
	Now func() time.Time
}

func NewMemoryStorage(baseURL string) *MemoryStorage {
	if baseURL == "" {
		baseURL = "http://assets.local"
	}
	return &MemoryStorage{objects: make(map[string]*memObject), baseURL: strings.TrimRight(baseURL, "/")}
}

func (m *MemoryStorage) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (content.AssetRef, error) {
	if m.UploadErr != nil {
		return content.AssetRef{}, m.UploadErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return content.AssetRef{}, err
	}
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	m.mu.Lock()
	m.objects[key] = &memObject{data: b, contentType: contentType, lastModified: now().UTC()}
	m.mu.Unlock()
	return content.AssetRef{AssetID: key, URL: ObjectURL(m.baseURL, "memory", key)}, nil
}

func (m *MemoryStorage) Delete(ctx context.Context, assetID string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	delete(m.objects, assetID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []ObjectInfo{}
	for k, o := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, ObjectInfo{Key: k, Size: int64(len(o.data)), LastModified: o.lastModified})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MemoryStorage) PresignDownload(ctx context.Context, assetID, filename string, expires time.Duration) (string, error) {
	if !m.Has(assetID) {
		return "", ErrObjectNotFound
	}
	return ObjectURL(m.baseURL, "memory", assetID) + "?download=1", nil
}

func (m *MemoryStorage) Ping(ctx context.Context) error { return nil }

// Has reports whether key is stored.
func (m *MemoryStorage) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok
}

// Get returns the stored bytes of key.
func (m *MemoryStorage) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[key]
	if !ok {
		return nil, false
	}
	return o.data, true
}

// Len returns the number of stored objects.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
