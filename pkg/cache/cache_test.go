package cache

import (
	"context"
	"testing"
	"time"
)

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	// Miss before set
	_, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("expected miss before Set")
	}

	// Round trip
	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit || string(data) != "value" {
		t.Errorf("Get = %q %v", data, hit)
	}

	// Delete
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("expected miss after Delete")
	}

	// Deleting a missing key is not an error
	if err := c.Delete(ctx, "ghost"); err != nil {
		t.Errorf("Delete missing: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	// Already-expired entry reads as a miss
	if err := c.Set(ctx, "key", []byte("value"), -time.Second); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("expired entry should be a miss")
	}
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// LayoutKey should include options in hash
	lk1 := k.LayoutKey("hash123", LayoutKeyOpts{Engine: "dot", Collapsed: []string{"loc0"}})
	lk2 := k.LayoutKey("hash123", LayoutKeyOpts{Engine: "dot", Collapsed: []string{"loc1"}})
	if lk1 == lk2 {
		t.Error("Different collapsed sets should produce different keys")
	}
	lk3 := k.LayoutKey("hash123", LayoutKeyOpts{Engine: "neato", Collapsed: []string{"loc0"}})
	if lk1 == lk3 {
		t.Error("Different engines should produce different keys")
	}

	// Determinism
	if lk1 != k.LayoutKey("hash123", LayoutKeyOpts{Engine: "dot", Collapsed: []string{"loc0"}}) {
		t.Error("LayoutKey should be deterministic")
	}

	// ArtifactKey
	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "png"})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "doc:123:")

	key := scoped.LayoutKey("hash", LayoutKeyOpts{Engine: "dot"})
	if len(key) < 8 || key[:8] != "doc:123:" {
		t.Errorf("ScopedKeyer LayoutKey should be prefixed: %s", key)
	}
	if key[8:] != inner.LayoutKey("hash", LayoutKeyOpts{Engine: "dot"}) {
		t.Errorf("ScopedKeyer should delegate to inner keyer: %s", key)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.ArtifactKey("hash", ArtifactKeyOpts{Format: "svg"})
	if len(key) < 7 || key[:7] != "prefix:" {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestRetryableError(t *testing.T) {
	// Retryable(nil) returns nil
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	// Non-nil error is wrapped
	err := Retryable(ErrBackend)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}

	// Error message is preserved
	if err.Error() != ErrBackend.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}

	// Non-wrapped errors are not retryable
	if IsRetryable(ErrNotFound) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	// Success on first try
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should call once: %d", calls)
	}

	// Non-retryable error stops immediately
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return ErrNotFound
	})
	if err != ErrNotFound {
		t.Errorf("Should return non-retryable error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should not retry non-retryable error: %d", calls)
	}

	// Retryable error triggers retries
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrBackend)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("Should retry once: %d", calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrBackend)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
