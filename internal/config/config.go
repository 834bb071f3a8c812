package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Log       LogConfig
	Inventory InventoryConfig
	Search    SearchConfig
}

type ServerConfig struct {
	Port int
}

// DatabaseConfig drives the optional search-history store. History is
// disabled entirely when Host is empty.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

type LogConfig struct {
	Level string
}

// InventoryConfig configures the outbound inventory API client.
type InventoryConfig struct {
	BaseURL                    string
	RequestsPerSecond          float64
	Burst                      int
	BreakerConsecutiveFailures uint32
	BreakerOpenTimeout         time.Duration
}

// SearchConfig holds every tuning knob of the bulk search pipeline. Tests
// shrink the delays to exercise boundary behavior without real timers.
type SearchConfig struct {
	PageLimit               int
	PageTimeout             time.Duration
	MaxPages                int
	DetailMaxPages          int
	MaxConsecutiveErrors    int
	BaseInterPageDelay      time.Duration
	InterPageDelayStep      time.Duration
	MaxInterPageDelay       time.Duration
	PageErrorDelay          time.Duration
	MaxLocationRetries      int
	RetryBackoffUnit        time.Duration
	InterLocationDelay      time.Duration
	InterLocationErrorDelay time.Duration
	MaxSearchKeys           int
	ProgressResetDelay      time.Duration
}

// DefaultSearchConfig returns the production thresholds.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		PageLimit:               250,
		PageTimeout:             45 * time.Second,
		MaxPages:                100,
		DetailMaxPages:          50,
		MaxConsecutiveErrors:    3,
		BaseInterPageDelay:      200 * time.Millisecond,
		InterPageDelayStep:      50 * time.Millisecond,
		MaxInterPageDelay:       time.Second,
		PageErrorDelay:          2 * time.Second,
		MaxLocationRetries:      2,
		RetryBackoffUnit:        time.Second,
		InterLocationDelay:      300 * time.Millisecond,
		InterLocationErrorDelay: 500 * time.Millisecond,
		MaxSearchKeys:           1000,
		ProgressResetDelay:      3 * time.Second,
	}
}

func Load() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("DB_HOST", "")
	viper.SetDefault("DB_PORT", 3306)
	viper.SetDefault("DB_USER", "palantir")
	viper.SetDefault("DB_PASSWORD", "secret")
	viper.SetDefault("DB_NAME", "palantir")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("INVENTORY_BASE_URL", "http://localhost:3000/api/shopify")
	viper.SetDefault("INVENTORY_REQUESTS_PER_SECOND", 2.0)
	viper.SetDefault("INVENTORY_BURST", 4)
	viper.SetDefault("INVENTORY_BREAKER_CONSECUTIVE_FAILURES", 5)
	viper.SetDefault("INVENTORY_BREAKER_OPEN_TIMEOUT", "30s")
	viper.SetDefault("SEARCH_PAGE_LIMIT", 250)
	viper.SetDefault("SEARCH_PAGE_TIMEOUT", "45s")
	viper.SetDefault("SEARCH_MAX_PAGES", 100)
	viper.SetDefault("SEARCH_DETAIL_MAX_PAGES", 50)
	viper.SetDefault("SEARCH_MAX_CONSECUTIVE_ERRORS", 3)
	viper.SetDefault("SEARCH_BASE_INTER_PAGE_DELAY", "200ms")
	viper.SetDefault("SEARCH_INTER_PAGE_DELAY_STEP", "50ms")
	viper.SetDefault("SEARCH_MAX_INTER_PAGE_DELAY", "1s")
	viper.SetDefault("SEARCH_PAGE_ERROR_DELAY", "2s")
	viper.SetDefault("SEARCH_MAX_LOCATION_RETRIES", 2)
	viper.SetDefault("SEARCH_RETRY_BACKOFF_UNIT", "1s")
	viper.SetDefault("SEARCH_INTER_LOCATION_DELAY", "300ms")
	viper.SetDefault("SEARCH_INTER_LOCATION_ERROR_DELAY", "500ms")
	viper.SetDefault("SEARCH_MAX_KEYS", 1000)
	viper.SetDefault("SEARCH_PROGRESS_RESET_DELAY", "3s")

	durations := map[string]*time.Duration{}
	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:         viper.GetString("DB_HOST"),
			Port:         viper.GetInt("DB_PORT"),
			User:         viper.GetString("DB_USER"),
			Password:     viper.GetString("DB_PASSWORD"),
			Name:         viper.GetString("DB_NAME"),
			MaxOpenConns: viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: viper.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Inventory: InventoryConfig{
			BaseURL:                    viper.GetString("INVENTORY_BASE_URL"),
			RequestsPerSecond:          viper.GetFloat64("INVENTORY_REQUESTS_PER_SECOND"),
			Burst:                      viper.GetInt("INVENTORY_BURST"),
			BreakerConsecutiveFailures: uint32(viper.GetInt("INVENTORY_BREAKER_CONSECUTIVE_FAILURES")),
		},
		Search: SearchConfig{
			PageLimit:            viper.GetInt("SEARCH_PAGE_LIMIT"),
			MaxPages:             viper.GetInt("SEARCH_MAX_PAGES"),
			DetailMaxPages:       viper.GetInt("SEARCH_DETAIL_MAX_PAGES"),
			MaxConsecutiveErrors: viper.GetInt("SEARCH_MAX_CONSECUTIVE_ERRORS"),
			MaxLocationRetries:   viper.GetInt("SEARCH_MAX_LOCATION_RETRIES"),
			MaxSearchKeys:        viper.GetInt("SEARCH_MAX_KEYS"),
		},
	}

	durations["DB_CONN_MAX_LIFETIME"] = &cfg.Database.ConnMaxLifetime
	durations["INVENTORY_BREAKER_OPEN_TIMEOUT"] = &cfg.Inventory.BreakerOpenTimeout
	durations["SEARCH_PAGE_TIMEOUT"] = &cfg.Search.PageTimeout
	durations["SEARCH_BASE_INTER_PAGE_DELAY"] = &cfg.Search.BaseInterPageDelay
	durations["SEARCH_INTER_PAGE_DELAY_STEP"] = &cfg.Search.InterPageDelayStep
	durations["SEARCH_MAX_INTER_PAGE_DELAY"] = &cfg.Search.MaxInterPageDelay
	durations["SEARCH_PAGE_ERROR_DELAY"] = &cfg.Search.PageErrorDelay
	durations["SEARCH_RETRY_BACKOFF_UNIT"] = &cfg.Search.RetryBackoffUnit
	durations["SEARCH_INTER_LOCATION_DELAY"] = &cfg.Search.InterLocationDelay
	durations["SEARCH_INTER_LOCATION_ERROR_DELAY"] = &cfg.Search.InterLocationErrorDelay
	durations["SEARCH_PROGRESS_RESET_DELAY"] = &cfg.Search.ProgressResetDelay

	for key, dst := range durations {
		d, err := time.ParseDuration(viper.GetString(key))
		if err != nil {
			return nil, err
		}
		*dst = d
	}

	return cfg, nil
}
