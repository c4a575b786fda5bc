package caching

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/school-assistant/pkg/llm"
)

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(filepath.Join(dir, "answers"), time.Hour)
	require.NoError(t, err)

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "prompt one", []byte("answer one")))
	data, ok := c.Get(ctx, "prompt one")
	require.True(t, ok)
	assert.Equal(t, "answer one", string(data))
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir(), time.Minute)
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "p", []byte("a")))
	old := time.Now().Add(-2 * time.Minute)
	require.NoError(t, os.Chtimes(c.file("p"), old, old))

	_, ok := c.Get(ctx, "p")
	assert.False(t, ok)
}

func TestFileCachePurge(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir, time.Hour)
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "a", []byte("1")))
	require.NoError(t, c.Set(ctx, "b", []byte("2")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("x"), 0644))

	require.NoError(t, c.Purge(ctx))

	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)
	_, err = os.Stat(filepath.Join(dir, "keep.txt"))
	assert.NoError(t, err)
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[key]
	return d, ok
}

func (m *memCache) Set(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	return nil
}

func (m *memCache) Purge(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = map[string][]byte{}
	return nil
}

func TestGeneratorCachesUsableResults(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	long := strings.Repeat("useful answer ", 3)
	next := llm.Func(func(_ context.Context, prompt string) llm.Result {
		calls.Add(1)
		if prompt == "bad" {
			return llm.Result{Status: llm.StatusFailed}
		}
		return llm.Result{Text: long, Status: llm.StatusOK}
	})
	g := NewGenerator(next, newMemCache(), nil)

	first := g.Generate(ctx, "good")
	second := g.Generate(ctx, "good")
	assert.Equal(t, long, first.Text)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, calls.Load())

	g.Generate(ctx, "bad")
	g.Generate(ctx, "bad")
	assert.EqualValues(t, 3, calls.Load(), "failed results are not cached")

	require.NoError(t, g.Purge(ctx))
	g.Generate(ctx, "good")
	assert.EqualValues(t, 4, calls.Load())
}

func TestGeneratorCoalescesConcurrentPrompts(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	release := make(chan struct{})
	next := llm.Func(func(context.Context, string) llm.Result {
		calls.Add(1)
		<-release
		return llm.Result{Text: strings.Repeat("x", 30), Status: llm.StatusOK}
	})
	g := NewGenerator(next, newMemCache(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := g.Generate(ctx, "same prompt")
			assert.True(t, res.Usable())
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("SCHOOLBOT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SCHOOLBOT_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisOptions{Addr: addr, TTL: time.Minute}, nil)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(ctx, "prompt", []byte("answer")))
	data, ok := c.Get(ctx, "prompt")
	require.True(t, ok)
	assert.Equal(t, "answer", string(data))

	require.NoError(t, c.Purge(ctx))
	_, ok = c.Get(ctx, "prompt")
	assert.False(t, ok)
}
