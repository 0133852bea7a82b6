package di

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/paperleaf/storefront-go/internal/cacheinfra"
	"github.com/paperleaf/storefront-go/rest"
)

func TestNewContainer(t *testing.T) {
	container, err := NewContainer(Config{
		BaseURL: "https://api.paperleaf.example",
	})
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	defer container.Close()

	if container.CacheService() == nil {
		t.Error("expected a cache service")
	}
	if container.KeySerializer() == nil {
		t.Error("expected a key serializer")
	}
	if container.KeyIndex() == nil {
		t.Error("expected a key index")
	}
	if container.RestClient() == nil {
		t.Error("expected a REST client")
	}
	if container.Cart() == nil {
		t.Error("expected a cart store")
	}
	if container.Selection() == nil {
		t.Error("expected a selection store")
	}
}

func TestNewContainer_RequiresBaseURL(t *testing.T) {
	container, err := NewContainer(Config{})
	if err == nil {
		t.Error("expected error for missing BaseURL but got none")
	}
	if container != nil {
		t.Error("expected container to be nil when error occurs")
	}
}

func TestNewContainer_InvalidCacheConfig(t *testing.T) {
	_, err := NewContainer(Config{
		BaseURL: "https://api.paperleaf.example",
		Cache: cacheinfra.Config{
			Capacity:           -1,
			NumShards:          64,
			EvictionPercentage: 10,
		},
	})
	if err == nil {
		t.Error("expected error for invalid cache config but got none")
	}
}

func TestNewContainer_CustomConfigPropagates(t *testing.T) {
	container, err := NewContainer(Config{
		BaseURL: "https://api.paperleaf.example",
		Token:   func() string { return "session-token" },
		Retry:   rest.RetryPolicy{MaxAttempts: 2, BaseDelay: 10 * time.Millisecond},
		Cache: cacheinfra.Config{
			Capacity:           100,
			NumShards:          2,
			EvictionPercentage: 5,
		},
	})
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	defer container.Close()

	if got := container.RestClient().Token(); got != "session-token" {
		t.Errorf("expected the token source wired through, got %q", got)
	}
}

func TestNewContainer_DurableState(t *testing.T) {
	container, err := NewContainer(Config{
		BaseURL:   "https://api.paperleaf.example",
		StatePath: filepath.Join(t.TempDir(), "state.db"),
	})
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}

	if container.Cart() == nil {
		t.Fatal("expected a cart store backed by durable state")
	}
	if err := container.Close(); err != nil {
		t.Errorf("expected clean close, got: %v", err)
	}
}

func TestContainer_ServiceFactories(t *testing.T) {
	container, err := NewContainer(Config{BaseURL: "https://api.paperleaf.example"})
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	defer container.Close()

	if container.Reviews() == nil {
		t.Error("expected a reviews service")
	}
	if container.Books() == nil {
		t.Error("expected a books service")
	}
	if container.Authors() == nil {
		t.Error("expected an authors service")
	}
	if container.Categories() == nil {
		t.Error("expected a categories service")
	}
	if container.Profile() == nil {
		t.Error("expected a profile service")
	}

	// Every service built from one container shares the same key index, so
	// one service's invalidations reach another's keys.
	deps := container.Deps()
	if deps.Keys != container.KeyIndex() {
		t.Error("expected services to share the container's key index")
	}
}
