package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"logLevel"`
	Server      struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`
	Database struct {
		PostgresDSN         string `mapstructure:"postgresDSN"`
		PostgresAutoMigrate bool   `mapstructure:"postgresAutoMigrate"`
	} `mapstructure:"database"`
	Encryption struct {
		CallKey       string `mapstructure:"callKey"`       // Fernet key for voice provider credentials
		BotCallingKey string `mapstructure:"botCallingKey"` // Fernet key for bot provider credentials
	} `mapstructure:"encryption"`
	Vendors struct {
		HealthCheckTimeout time.Duration `mapstructure:"healthCheckTimeout"`
	} `mapstructure:"vendors"`
	NATS NATSConfig `mapstructure:"nats"`
	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`
	WorkerPools struct {
		HealthCheck HealthCheckWorkerPoolConfig `mapstructure:"healthCheck"`
	} `mapstructure:"workerPools"`
}

// NATSConfig holds JetStream connection and stream settings
type NATSConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	URL           string `mapstructure:"url"`
	Stream        string `mapstructure:"stream"`
	SubjectPrefix string `mapstructure:"subjectPrefix"`
	MaxAge        int64  `mapstructure:"maxAge"` // stream retention in days
}

// HealthCheckWorkerPoolConfig holds configuration for the bulk health check pool
type HealthCheckWorkerPoolConfig struct {
	PoolSize   int           `mapstructure:"poolSize"`   // Number of workers
	QueueSize  int           `mapstructure:"queueSize"`  // Max tasks blocked waiting for a worker
	ExpiryTime time.Duration `mapstructure:"expiryTime"` // Idle worker expiry time
}

// LoadConfig reads configuration from file or environment variables
func LoadConfig(path string) (*Config, error) {
	// Create new viper instance
	v := viper.New()

	// Set defaults
	v.SetDefault("environment", "development")
	v.SetDefault("logLevel", "info")
	v.SetDefault("server.port", 8080)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 2112)
	v.SetDefault("vendors.healthCheckTimeout", 10*time.Second)

	// NATS Defaults
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.stream", "provider_events")
	v.SetDefault("nats.subjectPrefix", "v1.providers")
	v.SetDefault("nats.maxAge", 7)

	// WorkerPools Defaults
	v.SetDefault("workerPools.healthCheck.poolSize", 10)
	v.SetDefault("workerPools.healthCheck.queueSize", 100)
	v.SetDefault("workerPools.healthCheck.expiryTime", time.Minute)

	// Config file settings
	v.SetConfigName("default") // name of config file (without extension)
	v.SetConfigType("yaml")    // REQUIRED if the config file does not have the extension in the name

	// Add lookup paths
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath("$HOME/.call-provider-service")
	v.AddConfigPath("/etc/call-provider-service")

	// Try to read from config file
	if err := v.ReadInConfig(); err != nil {
		// It's ok if config file is not found, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Override with environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Map environment variables to config fields
	bindEnvs(v, Config{})

	// Read directly from ENV for critical values
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		v.Set("database.postgresDSN", dsn)
	}
	if lgLevel := os.Getenv("LOG_LEVEL"); lgLevel != "" {
		v.Set("logLevel", lgLevel)
	}
	if url := os.Getenv("NATS_URL"); url != "" {
		v.Set("nats.url", url)
	}
	if key := os.Getenv("CALL_PROVIDER_ENCRYPTION_KEY"); key != "" {
		v.Set("encryption.callKey", key)
	}
	if key := os.Getenv("BOT_CALLING_ENCRYPTION_KEY"); key != "" {
		v.Set("encryption.botCallingKey", key)
	}

	// Unmarshal config
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &config, nil
}

// bindEnvs recursively binds environment variables to config struct fields
func bindEnvs(v *viper.Viper, cfg interface{}, parts ...string) {
	ifv := reflect.ValueOf(cfg)
	ift := reflect.TypeOf(cfg)
	for i := 0; i < ift.NumField(); i++ {
		fieldVal := ifv.Field(i)
		fieldType := ift.Field(i)

		// Get the field tag value (mapstructure)
		tag := fieldType.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}

		// Build the env var path
		path := append(parts, tag)
		key := strings.Join(path, ".")

		// If it's a struct, recursively bind its fields
		if fieldType.Type.Kind() == reflect.Struct {
			bindEnvs(v, fieldVal.Interface(), path...)
			continue
		}

		// Bind the env var
		_ = v.BindEnv(key)
	}
}
