package objectstore

import (
	"context"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"
)

type object struct {
	data        []byte
	contentType string
}

type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]object
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]object)}
}

func (m *MemoryStore) Put(_ context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = object{data: slices.Clone(data), contentType: contentTypeOf(data, contentType)}
	return nil
}

// SignedURL returns memory://<key>; there is nothing to sign.
func (m *MemoryStore) SignedURL(_ context.Context, key, downloadName string, _ time.Duration) (string, error) {
	u := "memory://" + key
	if downloadName != "" {
		u += "?" + url.Values{"name": {downloadName}}.Encode()
	}
	return u, nil
}

func (m *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p := folder(prefix)
	keys := []string{}
	for k := range m.objects {
		if strings.HasPrefix(k, p) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

func (m *MemoryStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	keys, _ := m.List(ctx, prefix)

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.objects, k)
	}
	return len(keys), nil
}

// Get returns a stored object.
func (m *MemoryStore) Get(key string) (data []byte, contentType string, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[key]
	return slices.Clone(o.data), o.contentType, ok
}
