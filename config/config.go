package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Venue     VenueConfig     `mapstructure:"venue"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Backup    BackupConfig    `mapstructure:"backup"`
	Collector CollectorConfig `mapstructure:"collector"`
	API       APIConfig       `mapstructure:"api"`
	Log       LogConfig       `mapstructure:"log"`
}

// VenueConfig describes the exchange REST endpoint the collector polls.
// APIKey/APISecret may be left empty here and resolved from SSM Parameter
// Store in prod (see secrets.go).
type VenueConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	APIKey    string        `mapstructure:"api_key"`
	APISecret string        `mapstructure:"api_secret"`
}

// RedisConfig covers the fast tier: per-trade hashes plus the per-symbol
// sorted-set time index. TTL applies to the trade hashes only.
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

func (cfg *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// BackupConfig points at the durable SQLite append log.
type BackupConfig struct {
	Path string `mapstructure:"path"`
}

type CollectorConfig struct {
	Symbols              []string      `mapstructure:"symbols"`
	Interval             time.Duration `mapstructure:"interval"`
	LargeVolumeThreshold float64       `mapstructure:"large_volume_threshold"`

	// Storage-level retry: fixed backoff between attempts of a single write.
	WriteRetryBackoff time.Duration `mapstructure:"write_retry_backoff"`
	MaxWriteAttempts  int           `mapstructure:"max_write_attempts"`

	// Cycle-level retry: re-run a whole fetch cycle after a venue outage.
	CycleRetryDelay time.Duration `mapstructure:"cycle_retry_delay"`
	MaxCycleRetries int           `mapstructure:"max_cycle_retries"`
}

type APIConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

// Load loads application configuration using Viper.
// It reads from config.yaml and overrides with environment variables.
func Load() *Config {
	v := viper.New()

	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath("config")
	v.AddConfigPath(".")

	setDefaults(v)

	// Support environment variables with dot notation (e.g., REDIS_HOST)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("failed to read config: %v", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}

	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("venue.timeout", 10*time.Second)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("backup.path", "crypto_backup.db")

	v.SetDefault("collector.symbols", []string{"BTC/USDT"})
	v.SetDefault("collector.interval", 10*time.Second)
	v.SetDefault("collector.large_volume_threshold", 10.0)
	v.SetDefault("collector.write_retry_backoff", 5*time.Second)
	v.SetDefault("collector.max_write_attempts", 5)
	v.SetDefault("collector.cycle_retry_delay", 5*time.Second)
	v.SetDefault("collector.max_cycle_retries", 3)

	v.SetDefault("api.addr", ":8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.environment", "dev")
}
