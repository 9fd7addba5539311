package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names. Each has a compatibility alias that is consulted
// only when the primary name is unset.
const (
	EnvCalendarClientID     = "CALENDAR_CLIENT_ID"
	EnvCalendarClientSecret = "CALENDAR_CLIENT_SECRET"
	EnvCalendarRedirectURI  = "CALENDAR_REDIRECT_URI"
	EnvCalendarRefreshToken = "CALENDAR_REFRESH_TOKEN"
	EnvCalendarID           = "CALENDAR_ID"
	EnvRoutingAPIKey        = "ROUTING_API_KEY"
	EnvRoutingBaseURL       = "ROUTING_BASE_URL"
	EnvRoutingTimeout       = "ROUTING_TIMEOUT"
)

var envAliases = map[string]string{
	EnvCalendarClientID:     "GOOGLE_CLIENT_ID",
	EnvCalendarClientSecret: "GOOGLE_CLIENT_SECRET",
	EnvCalendarRedirectURI:  "GOOGLE_REDIRECT_URI",
	EnvCalendarRefreshToken: "GOOGLE_REFRESH_TOKEN",
	EnvRoutingAPIKey:        "OPENROUTESERVICE_API_KEY",
}

// Defaults applied after the file and environment layers.
const (
	DefaultCalendarID     = "primary"
	DefaultRoutingBaseURL = "https://api.openrouteservice.org"
	DefaultRoutingTimeout = 30 * time.Second
)

// DefaultFileNames are looked up, in order, in the working directory when no
// explicit config path is given.
var DefaultFileNames = []string{"mcp-calendar.yaml", "mcp-calendar.yml"}

// Config is built once at startup and handed to every consumer.
type Config struct {
	Calendar   CalendarCredentials
	CalendarID string
	Routing    RoutingConfig

	// Source is the file the configuration was read from, empty when none.
	Source string
}

// CalendarCredentials are the OAuth2 client values plus the long-lived refresh token.
type CalendarCredentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	RefreshToken string
}

// RoutingConfig configures the openrouteservice client.
type RoutingConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type fileConfig struct {
	Calendar struct {
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
		RedirectURI  string `yaml:"redirect_uri"`
		RefreshToken string `yaml:"refresh_token"`
		CalendarID   string `yaml:"calendar_id"`
	} `yaml:"calendar"`
	Routing struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"routing"`
}

// Validate reports every missing credential value at once.
func (c CalendarCredentials) Validate() error {
	missing := c.missingClient()
	if c.RefreshToken == "" {
		missing = append(missing, EnvCalendarRefreshToken)
	}
	if len(missing) > 0 {
		return &ConfigurationError{Keys: missing, Reason: "calendar credentials are not configured"}
	}
	return nil
}

// ValidateClient checks the values needed to run the consent flow, which
// happens before a refresh token exists.
func (c CalendarCredentials) ValidateClient() error {
	if missing := c.missingClient(); len(missing) > 0 {
		return &ConfigurationError{Keys: missing, Reason: "OAuth client is not configured"}
	}
	return nil
}

func (c CalendarCredentials) missingClient() []string {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, EnvCalendarClientID)
	}
	if c.ClientSecret == "" {
		missing = append(missing, EnvCalendarClientSecret)
	}
	if c.RedirectURI == "" {
		missing = append(missing, EnvCalendarRedirectURI)
	}
	return missing
}

// Load builds the configuration. An empty path means discovery in the working
// directory; a missing discovered file is not an error, a missing explicit one is.
func Load(path string) (*Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}
	return load(path, dir, os.Getenv)
}

func load(path, dir string, getenv func(string) string) (*Config, error) {
	var fc fileConfig
	source := path

	if source == "" {
		source = discover(dir)
	}
	if source != "" {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("cannot read config file %s", source), Err: err}
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("cannot parse config file %s", source), Err: err}
		}
	}

	lookup := func(key, fromFile string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		if alias, ok := envAliases[key]; ok {
			if v := strings.TrimSpace(getenv(alias)); v != "" {
				return v
			}
		}
		return strings.TrimSpace(fromFile)
	}

	cfg := &Config{
		Calendar: CalendarCredentials{
			ClientID:     lookup(EnvCalendarClientID, fc.Calendar.ClientID),
			ClientSecret: lookup(EnvCalendarClientSecret, fc.Calendar.ClientSecret),
			RedirectURI:  lookup(EnvCalendarRedirectURI, fc.Calendar.RedirectURI),
			RefreshToken: lookup(EnvCalendarRefreshToken, fc.Calendar.RefreshToken),
		},
		CalendarID: lookup(EnvCalendarID, fc.Calendar.CalendarID),
		Routing: RoutingConfig{
			APIKey:  lookup(EnvRoutingAPIKey, fc.Routing.APIKey),
			BaseURL: lookup(EnvRoutingBaseURL, fc.Routing.BaseURL),
			Timeout: DefaultRoutingTimeout,
		},
		Source: source,
	}

	if cfg.CalendarID == "" {
		cfg.CalendarID = DefaultCalendarID
	}
	if cfg.Routing.BaseURL == "" {
		cfg.Routing.BaseURL = DefaultRoutingBaseURL
	}
	cfg.Routing.BaseURL = strings.TrimRight(cfg.Routing.BaseURL, "/")

	if raw := lookup(EnvRoutingTimeout, fc.Routing.Timeout); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return nil, &ConfigurationError{
				Keys:   []string{EnvRoutingTimeout},
				Reason: fmt.Sprintf("invalid routing timeout %q", raw),
				Err:    err,
			}
		}
		cfg.Routing.Timeout = d
	}

	return cfg, nil
}

func discover(dir string) string {
	for _, name := range DefaultFileNames {
		candidate := filepath.Join(dir, name)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			// Unreadable candidates surface as a read error in load.
			return candidate
		}
	}
	return ""
}
