package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// EnvPrefix prefixes every environment override, e.g. PGW_DATABASE_HOST
const EnvPrefix = "PGW"

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
	"../../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"./configs/.env",
	"../configs/.env",
}

// envBindings lists keys that can be set from the environment even when the
// YAML file leaves them out. Nested keys map to PGW_SECTION_KEY.
var envBindings = []string{
	"server.host",
	"server.port",
	"database.host",
	"database.port",
	"database.username",
	"database.password",
	"database.database",
	"database.sslMode",
	"logger.level",
	"link.secretKey",
	"link.publicBaseUrl",
	"smtp.host",
	"smtp.username",
	"smtp.password",
	"kafka.enabled",
	"kafka.brokers",
	"redis.enabled",
	"redis.addr",
	"redis.password",
	"qris.apiUrl",
	"qris.cdnUploadUrl",
	"lookup.apiUrl",
	"lookup.apiKey",
	"seed.demoApiKey",
}

// LoadConfig loads configuration for the environment named by PGW_ENV
func LoadConfig() (*Config, error) {
	// a missing .env is normal outside local development
	_ = loadDotEnvFile()

	env := getEnvironment()

	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")
	for _, path := range ConfigPaths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v, env)
}

// LoadFromFile loads configuration from an explicit YAML file
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v, getEnvironment())
}

func decode(v *viper.Viper, env string) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envBindings {
		envName := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envName); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", envName, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.Environment = env

	return &config, nil
}

// loadDotEnvFile loads the first .env file found in the search paths
func loadDotEnvFile() error {
	var lastError error
	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			lastError = err
			continue
		}
		return nil
	}
	if lastError != nil {
		return fmt.Errorf("could not load any .env file: %w", lastError)
	}
	return fmt.Errorf("no .env file found in search paths")
}

// setDefaults sets default values for non-critical configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", "15s")
	v.SetDefault("server.writeTimeout", "30s")
	v.SetDefault("server.idleTimeout", "60s")
	v.SetDefault("server.readHeaderTimeout", "10s")
	v.SetDefault("server.shutdownTimeout", "15s")
	v.SetDefault("server.allowedOrigins", []string{"*"})

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.timeZone", "Asia/Jakarta")
	v.SetDefault("database.maxOpenConns", 50)
	v.SetDefault("database.maxIdleConns", 25)
	v.SetDefault("database.connMaxLifetime", "30m")
	v.SetDefault("database.connMaxIdleTime", "15m")
	v.SetDefault("database.queryTimeout", "5s")
	v.SetDefault("database.slowThreshold", "200ms")
	v.SetDefault("database.retryAttempts", 3)
	v.SetDefault("database.retryDelay", "50ms")
	v.SetDefault("database.isolationLevel", "read committed")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.callerInfo", true)

	v.SetDefault("transaction.ttl", "15m")
	v.SetDefault("transaction.timeZone", "Asia/Jakarta")
	v.SetDefault("transaction.uniqueMin", 1)
	v.SetDefault("transaction.uniqueMax", 499)
	v.SetDefault("transaction.maxAttempts", 50)
	v.SetDefault("transaction.queueSize", 100)
	v.SetDefault("transaction.createTimeout", "20s")
	v.SetDefault("transaction.notifyTimeout", "10s")
	v.SetDefault("transaction.dailyRequestLimit", 0)

	v.SetDefault("reaper.enabled", true)
	v.SetDefault("reaper.interval", "30s")
	v.SetDefault("reaper.batchSize", 200)
	v.SetDefault("reaper.leaseTtl", "2m")

	v.SetDefault("reconciler.enabled", true)
	v.SetDefault("reconciler.interval", "1h")
	v.SetDefault("reconciler.autoFix", false)

	v.SetDefault("link.publicBaseUrl", "http://localhost:8080")

	v.SetDefault("telegram.apiBase", "https://api.telegram.org")
	v.SetDefault("telegram.timeout", "10s")

	v.SetDefault("smtp.port", 587)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.topic", "payment-gateway.transactions")
	v.SetDefault("kafka.clientId", "payment-gateway")
	v.SetDefault("kafka.timeout", "5s")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("qris.timeout", "15s")
	v.SetDefault("lookup.timeout", "10s")

	v.SetDefault("seed.enabled", false)
}

// getEnvironment reads PGW_ENV, defaulting to development
func getEnvironment() string {
	env := os.Getenv(EnvPrefix + "_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}
