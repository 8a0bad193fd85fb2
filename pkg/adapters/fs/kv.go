package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/aretw0/alttag/pkg/core"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// KV implements core.KVStore with one file per key, written atomically.
type KV struct {
	dir string
	mu  sync.RWMutex
}

// NewKV stores values under dir, creating it on first write.
func NewKV(dir string) *KV {
	return &KV{dir: dir}
}

// Get reads a value.
func (k *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path, err := k.path(key)
	if err != nil {
		return nil, false, err
	}

	k.mu.RLock()
	defer k.mu.RUnlock()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, true, nil
}

// Set writes a value.
func (k *KV) Set(ctx context.Context, key string, value []byte) error {
	path, err := k.path(key)
	if err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if err := os.MkdirAll(k.dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", k.dir, err)
	}
	return writeFileAtomic(path, value, 0644)
}

// Delete removes a value. Deleting a missing key is not an error.
func (k *KV) Delete(ctx context.Context, key string) error {
	path, err := k.path(key)
	if err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (k *KV) path(key string) (string, error) {
	if !validKey.MatchString(key) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(k.dir, key+".json"), nil
}

var _ core.KVStore = (*KV)(nil)
