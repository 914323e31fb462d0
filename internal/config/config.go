package config

import (
	"errors"
	"log/slog"
	"os"
	"time"
	"voxwave-backend/internal/portal"
	"voxwave-backend/lib/configutil"
)

type PortalConfig struct {
	Origin   string `json:"origin"`
	Email    string `json:"email"`
	Password string `json:"password"`

	UserAgent         string  `json:"user_agent"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	BypassCloudflare  bool    `json:"bypass_cloudflare"`
	// DumpDirectory receives every http message when running verbose.
	DumpDirectory string `json:"dump_directory"`
}

type BrowserConfig struct {
	// Headless is a pointer so that an explicit false survives defaults.
	Headless       *bool    `json:"headless"`
	Args           []string `json:"args"`
	TimeoutSeconds int      `json:"timeout_seconds"`
}

type ServerConfig struct {
	Port int `json:"port"`
	// AllowedOrigins is the CORS allow list, empty allows every origin.
	AllowedOrigins []string `json:"allowed_origins"`
}

type ArchiveConfig struct {
	Disabled  bool   `json:"disabled"`
	Directory string `json:"directory"`
	Database  string `json:"database"`
}

type Config struct {
	Portal  PortalConfig  `json:"portal"`
	Browser BrowserConfig `json:"browser"`
	Server  ServerConfig  `json:"server"`
	Archive ArchiveConfig `json:"archive"`
	// Schema only needs the selectors that differ from the defaults.
	Schema portal.Schema `json:"schema"`
}

// Default is the config used when there is no config file.
func Default() Config {
	cfg := Config{}
	cfg.InitDefaults()
	cfg.ApplyDefaults()
	return cfg
}

// InitDefaults runs before the config files are decoded, the schema is
// overridden key by key so a column index of 0 can be set explicitly.
func (c *Config) InitDefaults() {
	c.Schema = portal.DefaultSchema()
}

func (c *Config) ApplyDefaults() {
	if c.Portal.Origin == "" {
		c.Portal.Origin = portal.DefaultOrigin
	}
	if c.Portal.UserAgent == "" {
		c.Portal.UserAgent = portal.DefaultUserAgent
	}
	if c.Portal.TimeoutSeconds <= 0 {
		c.Portal.TimeoutSeconds = 30
	}
	if c.Portal.DumpDirectory == "" {
		c.Portal.DumpDirectory = ".dev/http"
	}

	if c.Browser.Headless == nil {
		headless := true
		c.Browser.Headless = &headless
	}
	if len(c.Browser.Args) == 0 {
		c.Browser.Args = portal.DefaultBrowserArgs
	}
	if c.Browser.TimeoutSeconds <= 0 {
		c.Browser.TimeoutSeconds = 30
	}

	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}

	if c.Archive.Directory == "" {
		c.Archive.Directory = "vouchers"
	}
	if c.Archive.Database == "" {
		c.Archive.Database = "vouchers.db"
	}
}

func (c Config) PortalTimeout() time.Duration {
	return time.Duration(c.Portal.TimeoutSeconds) * time.Second
}

func (c Config) BrowserTimeout() time.Duration {
	return time.Duration(c.Browser.TimeoutSeconds) * time.Second
}

// Read reads the config file at path (and its .local override). A missing
// file is not an error, every field has a default except the credentials.
func Read(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("config file not found, using defaults", "path", path)
		return Default(), nil
	}
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}
