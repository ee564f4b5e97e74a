package identity

import (
	"net/http"
	"time"
)

// Config configures NewResolver. Zero fields take the defaults below.
type Config struct {
	HTTPClient *http.Client
	PLCURL     string
	CacheSize  int
	CacheTTL   time.Duration
}

const (
	defaultPLCURL    = "https://plc.directory"
	defaultCacheSize = 1000
	defaultCacheTTL  = time.Hour
)

// NewResolver returns a Resolver backed by the public directory with an
// in-memory LRU in front of it.
func NewResolver(cfg Config) Resolver {
	if cfg.PLCURL == "" {
		cfg.PLCURL = defaultPLCURL
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &cachedResolver{
		base:  newDirectoryResolver(cfg.PLCURL, cfg.HTTPClient),
		cache: NewMemoryCache(cfg.CacheSize, cfg.CacheTTL),
	}
}
