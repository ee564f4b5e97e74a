package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := Default()
	cfg.PDS.Handle = "alice.bsky.social"
	cfg.PDS.AppPassword = "abcd-efgh-ijkl-mnop"
	return cfg
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skywrite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "https://bsky.social", cfg.PDS.Host)
	assert.Equal(t, "https://plc.directory", cfg.Identity.PLCURL)
	assert.Equal(t, 1000, cfg.Identity.CacheSize)
	assert.Equal(t, time.Hour, cfg.Identity.CacheTTL)
	assert.Equal(t, 1_000_000, cfg.Images.MaxBytes)
	assert.Equal(t, 85, cfg.Images.Quality)
	assert.Equal(t, 10*time.Second, cfg.Unfurl.Timeout)
	assert.Equal(t, "SkywriteBot/1.0", cfg.Unfurl.UserAgent)
	assert.Equal(t, "https://video.bsky.app", cfg.Video.ServiceURL)
	assert.Equal(t, 5*time.Second, cfg.Video.PollInterval)
	assert.Equal(t, 300*time.Second, cfg.Video.Timeout)
}

func TestConfig_Validate_Success(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_AccessTokenInsteadOfPassword(t *testing.T) {
	cfg := Default()
	cfg.PDS.DID = "did:plc:abc123"
	cfg.PDS.AccessToken = "token"

	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.PDS.UsesAccessToken())
}

func TestConfig_Validate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:    "missing credentials",
			mutate:  func(c *Config) { c.PDS.Handle = ""; c.PDS.AppPassword = "" },
			wantMsg: "PDS.Handle is required",
		},
		{
			name:    "access token without did",
			mutate:  func(c *Config) { c.PDS.AccessToken = "token" },
			wantMsg: "PDS.DID is required",
		},
		{
			name:    "bad host",
			mutate:  func(c *Config) { c.PDS.Host = "not a url" },
			wantMsg: "PDS.Host must be a URL",
		},
		{
			name:    "quality out of range",
			mutate:  func(c *Config) { c.Images.Quality = 101 },
			wantMsg: "Images.Quality",
		},
		{
			name:    "zero image budget",
			mutate:  func(c *Config) { c.Images.MaxBytes = 0 },
			wantMsg: "Images.MaxBytes",
		},
		{
			name:    "video timeout shorter than poll interval",
			mutate:  func(c *Config) { c.Video.Timeout = time.Second },
			wantMsg: "Video.Timeout must be greater than PollInterval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	path := writeConfigFile(t, `
pds:
  host: https://pds.example.com
  handle: file.example.com
  app_password: from-file
images:
  jpeg_quality: 70
video:
  poll_interval: 2s
`)

	t.Setenv("BLUESKY_HANDLE", "env.example.com")
	t.Setenv("VIDEO_TIMEOUT", "90s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://pds.example.com", cfg.PDS.Host)
	assert.Equal(t, "env.example.com", cfg.PDS.Handle, "environment overrides file")
	assert.Equal(t, "from-file", cfg.PDS.AppPassword)
	assert.Equal(t, 70, cfg.Images.Quality)
	assert.Equal(t, 2*time.Second, cfg.Video.PollInterval, "file value survives env processing")
	assert.Equal(t, 90*time.Second, cfg.Video.Timeout)
	assert.Equal(t, 1_000_000, cfg.Images.MaxBytes, "unset values keep defaults")
}

func TestLoad_EnvironmentOnly(t *testing.T) {
	t.Setenv("BLUESKY_HANDLE", "alice.test")
	t.Setenv("BLUESKY_APP_PASSWORD", "secret")
	t.Setenv("IMAGE_MAX_BYTES", "500000")
	t.Setenv("IDENTITY_CACHE_TTL", "10m")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "alice.test", cfg.PDS.Handle)
	assert.Equal(t, 500000, cfg.Images.MaxBytes)
	assert.Equal(t, 10*time.Minute, cfg.Identity.CacheTTL)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Load(writeConfigFile(t, "pds: [unclosed"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config file")
	})

	t.Run("invalid env value", func(t *testing.T) {
		t.Setenv("IMAGE_MAX_BYTES", "lots")
		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "process environment")
	})

	t.Run("validation", func(t *testing.T) {
		t.Setenv("BLUESKY_HANDLE", "")
		t.Setenv("BLUESKY_APP_PASSWORD", "")
		t.Setenv("BLUESKY_ACCESS_TOKEN", "")
		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validate config")
	})
}
