// Package caching stores generated answers so repeated prompts do not reach
// the language model again.
package caching

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Cache is a byte store keyed by prompt.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte) error
	Purge(ctx context.Context) error
}

// Key hashes a prompt into a fixed-length cache key.
func Key(prompt string) string {
	hash := sha256.Sum256([]byte(prompt))
	return fmt.Sprintf("%x", hash)
}

// FileCache provides a simple file-based cache with a TTL.
type FileCache struct {
	path string
	ttl  time.Duration
}

// NewFileCache creates a new FileCache.
// The cache path will be created if it doesn't exist.
func NewFileCache(path string, ttl time.Duration) (*FileCache, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &FileCache{
		path: path,
		ttl:  ttl,
	}, nil
}

func (c *FileCache) file(key string) string {
	return filepath.Join(c.path, Key(key)+".cache")
}

// Get returns the data and true if the item is found and not expired.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool) {
	filePath := c.file(key)

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, false
	}

	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return nil, false // expired
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set adds an item to the cache.
func (c *FileCache) Set(_ context.Context, key string, data []byte) error {
	if err := os.WriteFile(c.file(key), data, 0644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

// Purge removes every cached entry. Files not written by the cache are left alone.
func (c *FileCache) Purge(_ context.Context) error {
	entries, err := os.ReadDir(c.path)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".cache") {
			continue
		}
		if err := os.Remove(filepath.Join(c.path, e.Name())); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove cache entry: %w", err)
		}
	}
	return nil
}
