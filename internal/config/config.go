package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string `validate:"required"`
	Region      string
	Schema      string `validate:"omitempty,max=63,excludesall= ;"`

	SearchWorkers int           `validate:"gte=1,lte=256"`
	NearestStops  int           `validate:"gte=1,lte=100"`
	SearchTimeout time.Duration `validate:"gte=0"`

	GeocoderURL       string        `validate:"required,url"`
	GeocoderUserAgent string        `validate:"required"`
	GeocoderTimeout   time.Duration `validate:"gt=0"`
	GeocodeCacheSize  int           `validate:"gte=0"`
	GeocodeCacheTTL   time.Duration `validate:"gte=0"`

	HolidaysFile string `validate:"omitempty,file"`

	NATSURL         string `validate:"omitempty,url"`
	NATSSubject     string
	LogNATSSubjects bool

	MetricsAddr string `validate:"omitempty,hostname_port"`
	HTTPAddr    string `validate:"required,hostname_port"`
	Debug       bool
}

func Load() (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{}

	// Database URL: prefer DATABASE_URL / PG_DSN, else build from PG* vars
	dsn := firstNonEmpty(
		os.Getenv("DATABASE_URL"),
		os.Getenv("PG_DSN"),
	)
	if dsn == "" {
		host := getenvDefault("PGHOST", "127.0.0.1")
		port := getenvDefault("PGPORT", "5432")
		user := getenvDefault("PGUSER", "postgres")
		pass := os.Getenv("PGPASSWORD")
		db := os.Getenv("PGDATABASE")
		// With REGION the base DB only serves the import registry.
		if db == "" && os.Getenv("REGION") != "" {
			db = "postgres"
		}
		if db == "" {
			return nil, errors.New("PGDATABASE or DATABASE_URL must be set (set PGDATABASE=postgres when using REGION)")
		}
		sslmode := getenvDefault("PGSSLMODE", "disable")
		if pass != "" {
			cfg.DatabaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", urlEscape(user), urlEscape(pass), host, port, db, sslmode)
		} else {
			cfg.DatabaseURL = fmt.Sprintf("postgres://%s@%s:%s/%s?sslmode=%s", urlEscape(user), host, port, db, sslmode)
		}
	} else {
		cfg.DatabaseURL = dsn
	}
	cfg.Region = strings.TrimSpace(os.Getenv("REGION"))
	// Schema holding the route_search_* tables; empty keeps the server default
	cfg.Schema = strings.TrimSpace(os.Getenv("DB_SCHEMA"))

	var err error
	if cfg.SearchWorkers, err = getenvInt("SEARCH_WORKERS", 8); err != nil {
		return nil, err
	}
	if cfg.NearestStops, err = getenvInt("NEAREST_STOPS", 10); err != nil {
		return nil, err
	}
	if cfg.SearchTimeout, err = getenvDuration("SEARCH_TIMEOUT_MS", time.Millisecond, 0); err != nil {
		return nil, err
	}

	cfg.GeocoderURL = getenvDefault("GEOCODER_URL", "https://nominatim.openstreetmap.org")
	cfg.GeocoderUserAgent = getenvDefault("GEOCODER_USER_AGENT", "transit-journeys/1.0")
	if cfg.GeocoderTimeout, err = getenvDuration("GEOCODER_TIMEOUT_MS", time.Millisecond, 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.GeocodeCacheSize, err = getenvInt("GEOCODE_CACHE_SIZE", 1024); err != nil {
		return nil, err
	}
	if cfg.GeocodeCacheTTL, err = getenvDuration("GEOCODE_CACHE_TTL_MIN", time.Minute, 24*time.Hour); err != nil {
		return nil, err
	}

	cfg.HolidaysFile = os.Getenv("HOLIDAYS_FILE")

	// Empty NATS_SUBJECT disables publishing
	cfg.NATSURL = getenvDefault("NATS_URL", "nats://127.0.0.1:4222")
	cfg.NATSSubject = os.Getenv("NATS_SUBJECT")
	cfg.LogNATSSubjects = getenvBool("LOG_NATS_SUBJECTS")

	// Metrics listen address (e.g., ":9102"). Empty disables the metrics server.
	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")
	cfg.HTTPAddr = getenvDefault("HTTP_ADDR", ":8080")
	cfg.Debug = getenvBool("DEBUG")

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", k, v)
	}
	return n, nil
}

func getenvDuration(k string, unit, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %q", k, v)
	}
	return time.Duration(n) * unit, nil
}

func getenvBool(k string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(k))) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func urlEscape(s string) string {
	// Minimal escape for DSN user/pass with special chars
	r := strings.NewReplacer("@", "%40", ":", "%3A", "/", "%2F", "?", "%3F", "#", "%23")
	return r.Replace(s)
}
