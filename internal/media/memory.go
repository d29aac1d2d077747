package media

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/videotube/backend/internal/models"
)

// MemoryStore keeps uploaded objects in process memory. It backs local runs
// without an object store and the test suites.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	baseURL string
}

// NewMemoryStore returns an empty store whose URLs are rooted at baseURL.
func NewMemoryStore(baseURL string) *MemoryStore {
	if baseURL == "" {
		baseURL = "memory://videotube"
	}
	return &MemoryStore{objects: make(map[string][]byte), baseURL: baseURL}
}

func (m *MemoryStore) Store(ctx context.Context, localPath string, category Category) (models.MediaAsset, error) {
	if err := ctx.Err(); err != nil {
		return models.MediaAsset{}, err
	}
	key, err := objectKey(localPath, category)
	if err != nil {
		return models.MediaAsset{}, err
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return models.MediaAsset{}, fmt.Errorf("memory store read %s: %w", localPath, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return models.MediaAsset{URL: publicURL(m.baseURL, key), StorageID: key}, nil
}

func (m *MemoryStore) Delete(ctx context.Context, storageID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, storageID)
	m.deleted = append(m.deleted, storageID)
	return nil
}

// Has reports whether an object with the key is currently stored.
func (m *MemoryStore) Has(storageID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[storageID]
	return ok
}

// Len returns the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// Deleted returns the keys passed to Delete, in call order.
func (m *MemoryStore) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}
