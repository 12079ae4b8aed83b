package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DefaultAPIKeyFile is read when OWM_API_KEY is not set.
const DefaultAPIKeyFile = "~/.openweathermap_api_key"

// Timezone support modes.
const (
	TimezoneAuto = "auto"
	TimezoneOn   = "on"
	TimezoneOff  = "off"
)

type AppConfig struct {
	AppEnv   string     `validate:"oneof=dev prod"`
	LogLevel slog.Level `validate:"-"`

	OpenWeatherAPIKey  string
	OpenWeatherAPIFile string
	OpenWeatherBaseURL string `validate:"omitempty,url"`

	// Geocoding: Google when a key is configured, Nominatim otherwise.
	GoogleGeocoderAPIKey string
	NominatimBaseURL     string `validate:"omitempty,url"`

	// GeocodeCachePath is the SQLite file for cached geocoding results ("" disables the cache).
	GeocodeCachePath string
	GeocodeCacheTTL  time.Duration `validate:"gte=0"`

	TimezoneSupport string `validate:"oneof=auto on off"`

	HTTPTimeout time.Duration `validate:"gt=0"`

	// WindowHours is the number of hourly records charted.
	WindowHours int `validate:"min=1,max=48"`

	// Service mode.
	Port            string        `validate:"required,numeric"`
	Locations       []string      `validate:"dive,required"`
	RefreshInterval time.Duration `validate:"gte=1m"`
	OutputDir       string
	ReportMaxAge    time.Duration `validate:"gte=0"`
}

var validate = validator.New()

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	cfg := &AppConfig{}

	cfg.AppEnv = getenvDefault("APP_ENV", "dev")

	level, err := ParseLogLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	cfg.OpenWeatherAPIKey = strings.TrimSpace(os.Getenv("OWM_API_KEY"))
	cfg.OpenWeatherAPIFile = getenvDefault("OWM_API_KEY_FILE", DefaultAPIKeyFile)
	cfg.OpenWeatherBaseURL = os.Getenv("OWM_BASE_URL")

	cfg.GoogleGeocoderAPIKey = strings.TrimSpace(os.Getenv("GOOGLE_GEOCODER_API_KEY"))
	cfg.NominatimBaseURL = os.Getenv("NOMINATIM_BASE_URL")
	cfg.GeocodeCachePath = os.Getenv("GEOCODE_CACHE_PATH")

	if cfg.GeocodeCacheTTL, err = getenvDuration("GEOCODE_CACHE_TTL", "720h"); err != nil {
		return nil, err
	}

	cfg.TimezoneSupport = strings.ToLower(getenvDefault("TIMEZONE_SUPPORT", TimezoneAuto))

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "15s"); err != nil {
		return nil, err
	}

	cfg.WindowHours = getenvInt("WINDOW_HOURS", 24)
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.Locations = splitLocations(os.Getenv("LOCATIONS"))

	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "30m"); err != nil {
		return nil, err
	}
	cfg.OutputDir = os.Getenv("OUTPUT_DIR")
	if cfg.ReportMaxAge, err = getenvDuration("REPORT_MAX_AGE", "2h"); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ResolveAPIKey returns the OpenWeatherMap key from the environment or, when
// unset, from the key file. override replaces the configured file path.
func (c *AppConfig) ResolveAPIKey(override string) (string, error) {
	if c.OpenWeatherAPIKey != "" {
		return c.OpenWeatherAPIKey, nil
	}

	path := c.OpenWeatherAPIFile
	if override != "" {
		path = override
	}
	path, err := expandHome(path)
	if err != nil {
		return "", err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read api key file: %w", err)
	}
	key := strings.TrimSpace(string(b))
	if key == "" {
		return "", fmt.Errorf("api key file %s is empty", path)
	}
	return key, nil
}

// TimezoneEnabled resolves the timezone support mode, probing the runtime
// in auto mode.
func (c *AppConfig) TimezoneEnabled(probe func() bool) bool {
	switch c.TimezoneSupport {
	case TimezoneOn:
		return true
	case TimezoneOff:
		return false
	default:
		return probe()
	}
}

// ParseLogLevel maps debug|info|warn|error onto slog levels.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func splitLocations(v string) []string {
	var locs []string
	for _, part := range strings.Split(v, ";") {
		if part = strings.TrimSpace(part); part != "" {
			locs = append(locs, part)
		}
	}
	return locs
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
