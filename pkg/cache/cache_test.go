package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	if _, hit, _ := c.Get(ctx, "missing"); hit {
		t.Error("missing key should miss")
	}

	if err := c.Set(ctx, "k", []byte("sheet bytes"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "sheet bytes" {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("deleted key should miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of missing key error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}

	if err := c.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("zero ttl should never expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry Get = %v, %v; want clean miss", hit, err)
	}
}

func TestFileCacheConcurrent(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			val := []byte(strings.Repeat("x", 1000+i))
			for range 20 {
				_ = c.Set(ctx, "shared", val, time.Hour)
				if data, hit, err := c.Get(ctx, "shared"); err != nil || (hit && len(data) < 1000) {
					t.Errorf("torn read: %d bytes, err %v", len(data), err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("cleared entry should miss")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	p1 := k.PhotoKey("src", PhotoKeyOpts{Width: 600, Height: 600, DPI: 300, Policy: "cover"})
	p2 := k.PhotoKey("src", PhotoKeyOpts{Width: 600, Height: 600, DPI: 600, Policy: "cover"})
	if p1 == p2 {
		t.Error("different DPI should produce different photo keys")
	}
	if !strings.HasPrefix(p1, "photo:") {
		t.Errorf("photo key = %q, want photo: prefix", p1)
	}
	if p1 != k.PhotoKey("src", PhotoKeyOpts{Width: 600, Height: 600, DPI: 300, Policy: "cover"}) {
		t.Error("PhotoKey should be deterministic")
	}

	base := ArtifactKeyOpts{Format: "png", Standard: "US-2x2", Paper: "A4", DPI: 300, Copies: 12}
	other := base
	other.Copies = 6
	if k.ArtifactKey("src", base) == k.ArtifactKey("src", other) {
		t.Error("different copies should produce different artifact keys")
	}
	if k.ArtifactKey("src", base) == k.ArtifactKey("other-src", base) {
		t.Error("different sources should produce different artifact keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "tenant:42:")
	key := scoped.ArtifactKey("src", ArtifactKeyOpts{Format: "pdf"})
	if !strings.HasPrefix(key, "tenant:42:artifact:") {
		t.Errorf("scoped key = %q", key)
	}
	if got, want := key, "tenant:42:"+NewDefaultKeyer().ArtifactKey("src", ArtifactKeyOpts{Format: "pdf"}); got != want {
		t.Errorf("scoped key = %q, want %q", got, want)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	c, err := Open(ctx, Config{Backend: "file", Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open(file) error: %v", err)
	}
	if _, ok := c.(*FileCache); !ok {
		t.Errorf("Open(file) = %T", c)
	}

	c, err = Open(ctx, Config{Backend: "none"})
	if err != nil {
		t.Fatalf("Open(none) error: %v", err)
	}
	if _, ok := c.(NullCache); !ok {
		t.Errorf("Open(none) = %T", c)
	}

	if _, err := Open(ctx, Config{Backend: "memcached"}); err == nil {
		t.Error("Open(memcached) should fail")
	}
}

func TestOpenRedisUnreachable(t *testing.T) {
	defer func(d time.Duration) { retryDelay = d }(retryDelay)
	retryDelay = time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := Open(ctx, Config{Backend: "redis", RedisURL: "redis://127.0.0.1:1/0"})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Open(redis) error = %v, want ErrUnavailable", err)
	}

	if _, err := NewRedisCache(ctx, "http://not-redis"); err == nil {
		t.Error("invalid redis url should fail")
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(ErrUnavailable)
	if !IsRetryable(err) {
		t.Error("IsRetryable should be true for wrapped error")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Error("wrapped error should unwrap to ErrUnavailable")
	}
	if IsRetryable(ErrUnavailable) {
		t.Error("unwrapped error is not retryable")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	defer func(d time.Duration) { retryDelay = d }(retryDelay)
	retryDelay = time.Millisecond
	ctx := context.Background()

	calls := 0
	if err := RetryWithBackoff(ctx, func() error { calls++; return nil }); err != nil || calls != 1 {
		t.Errorf("success: err %v, calls %d", err, calls)
	}

	calls = 0
	plain := errors.New("boom")
	if err := RetryWithBackoff(ctx, func() error { calls++; return plain }); err != plain || calls != 1 {
		t.Errorf("non-retryable: err %v, calls %d", err, calls)
	}

	calls = 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrUnavailable)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry then succeed: err %v, calls %d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error { calls++; return Retryable(ErrUnavailable) })
	if !IsRetryable(err) || calls != 3 {
		t.Errorf("exhausted: err %v, calls %d", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RetryWithBackoff(ctx, func() error { return Retryable(ErrUnavailable) })
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
