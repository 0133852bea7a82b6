// Package di wires the storefront SDK together: one container owns the
// cache service, key serializer and index, REST client, notifier, logger,
// and the cart and selection stores, and hands out resource services built
// on them. Nothing in the SDK is a package-level singleton; the container
// is the injected context object every operation hangs off.
package di

import (
	"log/slog"
	"net/http"

	"github.com/paperleaf/storefront-go/cache"
	"github.com/paperleaf/storefront-go/cart"
	"github.com/paperleaf/storefront-go/internal/cacheinfra"
	"github.com/paperleaf/storefront-go/internal/localstate"
	"github.com/paperleaf/storefront-go/notify"
	"github.com/paperleaf/storefront-go/rest"
	"github.com/paperleaf/storefront-go/selection"
	"github.com/paperleaf/storefront-go/storefront"
)

// cartStateKey is the single storage key the serialized cart lives under.
const cartStateKey = "cart"

// Config configures a Container.
type Config struct {
	// BaseURL is the storefront API root. Required.
	BaseURL string

	// Token supplies bearer tokens; nil means anonymous.
	Token rest.TokenSource

	// HTTPClient overrides the transport.
	HTTPClient *http.Client

	// Retry is the read retry policy; zero selects the rest default.
	Retry rest.RetryPolicy

	// Cache configures the backend cache pools; zero selects
	// cacheinfra.DefaultConfig.
	Cache cacheinfra.Config

	// StatePath is the SQLite file durable local state lives in. Empty
	// keeps the cart in memory only.
	StatePath string

	// Notifier receives user-facing notifications; nil discards them.
	Notifier notify.Notifier

	// Logger receives structured SDK logging; nil selects slog.Default.
	Logger *slog.Logger
}

// Container provides dependency injection for the SDK components. It
// manages the shared singleton instances and provides factory methods for
// the resource services.
type Container struct {
	cfg Config

	cacheService  cache.Service
	keySerializer cache.KeySerializer
	keyIndex      *cache.KeyIndex
	restClient    *rest.Client
	notifier      notify.Notifier
	logger        *slog.Logger

	state     *localstate.Store
	cartStore *cart.Store
	selection *selection.Store
}

// NewContainer creates a container from cfg.
func NewContainer(cfg Config) (*Container, error) {
	cacheCfg := cfg.Cache
	if cacheCfg == (cacheinfra.Config{}) {
		cacheCfg = cacheinfra.DefaultConfig()
	}
	cacheService, err := cacheinfra.NewSturdycService(cacheCfg)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	restClient, err := rest.New(rest.Config{
		BaseURL:    cfg.BaseURL,
		Token:      cfg.Token,
		HTTPClient: cfg.HTTPClient,
		Retry:      cfg.Retry,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	c := &Container{
		cfg:           cfg,
		cacheService:  cacheService,
		keySerializer: cache.NewDefaultKeySerializer(),
		keyIndex:      cache.NewKeyIndex(),
		restClient:    restClient,
		notifier:      notify.OrNop(cfg.Notifier),
		logger:        logger,
		selection:     selection.NewStore(),
	}

	var cartStorage cart.Storage
	if cfg.StatePath != "" {
		state, err := localstate.Open(cfg.StatePath)
		if err != nil {
			return nil, err
		}
		c.state = state
		cartStorage = state.Slot(cartStateKey)
	}
	c.cartStore = cart.NewStore(cartStorage, cart.WithLogger(logger))

	return c, nil
}

// Close releases the durable state handle. The container is unusable for
// cart persistence afterwards.
func (c *Container) Close() error {
	if c.state == nil {
		return nil
	}
	return c.state.Close()
}

// Deps returns the shared dependency bundle the resource services are
// built from.
func (c *Container) Deps() storefront.Deps {
	return storefront.Deps{
		Rest:       c.restClient,
		Cache:      c.cacheService,
		Keys:       c.keyIndex,
		Serializer: c.keySerializer,
		Notifier:   c.notifier,
		Logger:     c.logger,
	}
}

// CacheService returns the singleton cache service instance.
func (c *Container) CacheService() cache.Service {
	return c.cacheService
}

// KeySerializer returns the singleton key serializer instance.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// KeyIndex returns the shared live-key index.
func (c *Container) KeyIndex() *cache.KeyIndex {
	return c.keyIndex
}

// RestClient returns the shared REST client.
func (c *Container) RestClient() *rest.Client {
	return c.restClient
}

// Cart returns the shared cart store.
func (c *Container) Cart() *cart.Store {
	return c.cartStore
}

// Selection returns the shared category/rating selection store.
func (c *Container) Selection() *selection.Store {
	return c.selection
}

// Reviews constructs a reviews service on the shared dependencies.
func (c *Container) Reviews() *storefront.ReviewsService {
	return storefront.NewReviewsService(c.Deps(), storefront.ReviewPolicies{})
}

// Books constructs a books service on the shared dependencies.
func (c *Container) Books() *storefront.BooksService {
	return storefront.NewBooksService(c.Deps(), storefront.BookPolicies{})
}

// Authors constructs an authors service on the shared dependencies.
func (c *Container) Authors() *storefront.AuthorsService {
	return storefront.NewAuthorsService(c.Deps())
}

// Categories constructs a categories service on the shared dependencies.
func (c *Container) Categories() *storefront.CategoriesService {
	return storefront.NewCategoriesService(c.Deps())
}

// Profile constructs a profile service on the shared dependencies.
func (c *Container) Profile() *storefront.ProfileService {
	return storefront.NewProfileService(c.Deps())
}
