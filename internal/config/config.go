// Package config loads Skywrite settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	PDS      PDSConfig      `yaml:"pds"`
	Identity IdentityConfig `yaml:"identity"`
	Images   ImagesConfig   `yaml:"images"`
	Unfurl   UnfurlConfig   `yaml:"unfurl"`
	Video    VideoConfig    `yaml:"video"`
}

// PDSConfig holds the account and host to post as. Either Handle and
// AppPassword or DID and AccessToken must be set.
type PDSConfig struct {
	Host        string `yaml:"host" envconfig:"BLUESKY_PDS" validate:"required,url"`
	Handle      string `yaml:"handle" envconfig:"BLUESKY_HANDLE" validate:"required_without=AccessToken"`
	AppPassword string `yaml:"app_password" envconfig:"BLUESKY_APP_PASSWORD" validate:"required_without=AccessToken"`
	DID         string `yaml:"did" envconfig:"BLUESKY_DID" validate:"required_with=AccessToken"`
	AccessToken string `yaml:"access_token" envconfig:"BLUESKY_ACCESS_TOKEN"`
}

// IdentityConfig holds handle resolution settings.
type IdentityConfig struct {
	PLCURL    string        `yaml:"plc_url" envconfig:"PLC_URL" validate:"required,url"`
	CacheSize int           `yaml:"cache_size" envconfig:"IDENTITY_CACHE_SIZE" validate:"gt=0"`
	CacheTTL  time.Duration `yaml:"cache_ttl" envconfig:"IDENTITY_CACHE_TTL" validate:"gt=0"`
}

// ImagesConfig holds image loading and reduction settings.
type ImagesConfig struct {
	MaxBytes       int           `yaml:"max_bytes" envconfig:"IMAGE_MAX_BYTES" validate:"gt=0"`
	Quality        int           `yaml:"jpeg_quality" envconfig:"IMAGE_JPEG_QUALITY" validate:"min=1,max=100"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout" envconfig:"IMAGE_FETCH_TIMEOUT" validate:"gt=0"`
	MaxSourceBytes int64         `yaml:"max_source_bytes" envconfig:"IMAGE_MAX_SOURCE_BYTES" validate:"gt=0"`
}

// UnfurlConfig holds link card page fetch settings.
type UnfurlConfig struct {
	Timeout   time.Duration `yaml:"timeout" envconfig:"UNFURL_TIMEOUT" validate:"gt=0"`
	UserAgent string        `yaml:"user_agent" envconfig:"UNFURL_USER_AGENT" validate:"required"`
}

// VideoConfig holds video service settings.
type VideoConfig struct {
	ServiceURL   string        `yaml:"service_url" envconfig:"VIDEO_SERVICE_URL" validate:"required,url"`
	PollInterval time.Duration `yaml:"poll_interval" envconfig:"VIDEO_POLL_INTERVAL" validate:"gt=0"`
	Timeout      time.Duration `yaml:"timeout" envconfig:"VIDEO_TIMEOUT" validate:"gtfield=PollInterval"`
}

// Default returns the configuration used before the file and environment
// are applied.
func Default() *Config {
	return &Config{
		PDS: PDSConfig{
			Host: "https://bsky.social",
		},
		Identity: IdentityConfig{
			PLCURL:    "https://plc.directory",
			CacheSize: 1000,
			CacheTTL:  time.Hour,
		},
		Images: ImagesConfig{
			MaxBytes:       1_000_000,
			Quality:        85,
			FetchTimeout:   30 * time.Second,
			MaxSourceBytes: 20 * 1024 * 1024,
		},
		Unfurl: UnfurlConfig{
			Timeout:   10 * time.Second,
			UserAgent: "SkywriteBot/1.0",
		},
		Video: VideoConfig{
			ServiceURL:   "https://video.bsky.app",
			PollInterval: 5 * time.Second,
			Timeout:      300 * time.Second,
		},
	}
}

// Load reads configuration from file and environment variables.
// Environment variables override file values, which override defaults.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables. Defaults live in Default rather
	// than default tags so that file values are not reset.
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks the struct constraints and reports every violation.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	err := v.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// UsesAccessToken reports whether the session comes from a stored access
// token rather than an app password login.
func (c *PDSConfig) UsesAccessToken() bool {
	return c.AccessToken != ""
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required", "required_without", "required_with":
		return fmt.Sprintf("%s is required", field)
	case "url":
		return fmt.Sprintf("%s must be a URL", field)
	case "gt", "min", "max":
		return fmt.Sprintf("%s is out of range (%s %s)", field, fe.Tag(), fe.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
