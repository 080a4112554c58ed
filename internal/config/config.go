package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Source selects which upstream feeds a fetch run reads.
type Source string

const (
	// SourceDirect reads the Taipei and New Taipei city feeds.
	SourceDirect Source = "direct"
	// SourceTDX reads the TDX transport data platform.
	SourceTDX Source = "tdx"
)

// TDX city names accepted in TDX_CITIES.
const (
	TDXCityTaipei    = "Taipei"
	TDXCityNewTaipei = "NewTaipei"
)

// ErrInvalid wraps every configuration error so callers can tell them apart
// from network and I/O failures.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all settings, populated from environment variables.
type Config struct {
	Source Source

	TaipeiURL            string
	TaipeiInsecureTLS    bool
	NewTaipeiURL         string
	NewTaipeiInsecureTLS bool

	// TDX platform configuration.
	TDXAuthURL      string
	TDXBaseURL      string
	TDXCities       []string
	TDXClientID     string
	TDXClientSecret string

	RequestTimeout  time.Duration
	OutputPath      string
	MetricsTextfile string

	HTTPAddr        string
	ServeDir        string
	ShutdownTimeout time.Duration

	LogLevel  string
	LogFormat string

	// Optional Kafka snapshot publishing; disabled when no brokers are set.
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables (optionally .env),
// applying defaults where unset, and validates the result.
func Load() (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv reads configuration like Load but skips Validate, so callers can
// apply command-line overrides first.
func FromEnv() (*Config, error) {
	_ = godotenv.Load() // missing .env is fine

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	requestTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("REQUEST_TIMEOUT", "30s"))
	if err != nil || requestTimeout <= 0 {
		return nil, fmt.Errorf("%w: invalid REQUEST_TIMEOUT", ErrInvalid)
	}

	taipeiInsecure, err := parseBool("TAIPEI_INSECURE_TLS", false)
	if err != nil {
		return nil, err
	}
	newTaipeiInsecure, err := parseBool("NEW_TAIPEI_INSECURE_TLS", true)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Source: Source(strings.ToLower(sharedcfg.EnvOrDefault("DATA_SOURCE", string(SourceDirect)))),

		TaipeiURL:            sharedcfg.EnvOrDefault("TAIPEI_API_URL", "https://tcgbusfs.blob.core.windows.net/dotapp/youbike/v2/youbike_immediate.json"),
		TaipeiInsecureTLS:    taipeiInsecure,
		NewTaipeiURL:         sharedcfg.EnvOrDefault("NEW_TAIPEI_API_URL", "https://data.ntpc.gov.tw/api/datasets/010e5b15-3823-4b20-b401-b1cf000550c5/json?size=2000"),
		NewTaipeiInsecureTLS: newTaipeiInsecure,

		TDXAuthURL:      sharedcfg.EnvOrDefault("TDX_AUTH_URL", "https://tdx.transportdata.tw/auth/realms/TDXConnect/protocol/openid-connect/token"),
		TDXBaseURL:      strings.TrimRight(sharedcfg.EnvOrDefault("TDX_API_BASE_URL", "https://tdx.transportdata.tw/api/basic"), "/"),
		TDXCities:       splitList(sharedcfg.EnvOrDefault("TDX_CITIES", TDXCityTaipei+","+TDXCityNewTaipei)),
		TDXClientID:     StripQuotes(os.Getenv("TDX_CLIENT_ID")),
		TDXClientSecret: StripQuotes(os.Getenv("TDX_CLIENT_SECRET")),

		RequestTimeout:  requestTimeout,
		OutputPath:      sharedcfg.EnvOrDefault("OUTPUT_PATH", "src/stations.json"),
		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8000"),
		ServeDir:        sharedcfg.EnvOrDefault("SERVE_DIR", "."),
		ShutdownTimeout: shutdownTimeout,

		LogLevel:  sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "youbike-stations"),
	}

	return cfg, nil
}

// Validate checks cross-field constraints. It is called by Load and again
// after command-line overrides are applied.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceDirect:
		if c.TaipeiURL == "" || c.NewTaipeiURL == "" {
			return fmt.Errorf("%w: TAIPEI_API_URL and NEW_TAIPEI_API_URL are required", ErrInvalid)
		}
	case SourceTDX:
		if c.TDXClientID == "" || c.TDXClientSecret == "" {
			return fmt.Errorf("%w: TDX_CLIENT_ID and TDX_CLIENT_SECRET must be set for DATA_SOURCE=tdx", ErrInvalid)
		}
		if len(c.TDXCities) == 0 {
			return fmt.Errorf("%w: TDX_CITIES is empty", ErrInvalid)
		}
		for _, city := range c.TDXCities {
			if city != TDXCityTaipei && city != TDXCityNewTaipei {
				return fmt.Errorf("%w: unsupported TDX_CITIES entry %q", ErrInvalid, city)
			}
		}
	default:
		return fmt.Errorf("%w: DATA_SOURCE must be %q or %q, got %q", ErrInvalid, SourceDirect, SourceTDX, c.Source)
	}

	if c.OutputPath == "" {
		return fmt.Errorf("%w: OUTPUT_PATH is required", ErrInvalid)
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return fmt.Errorf("%w: KAFKA_TOPIC is required when KAFKA_BROKERS is set", ErrInvalid)
	}
	return nil
}

// StripQuotes trims whitespace and surrounding quote characters, which
// commonly leak into secrets pasted into .env files.
func StripQuotes(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'`)
}

func parseBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: invalid %s", ErrInvalid, key)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
