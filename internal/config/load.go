package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables use the
// ACCOUNTS_ prefix with underscores for nesting (e.g. ACCOUNTS_SERVER_PORT)
// and take precedence over file values.
// Returns a populated, validated Config or an error.
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadNotifier reads the same sources as Load but validates only the
// sections the notifier process uses. The notifier holds no database
// connection and signs no tokens, so database and auth settings may be
// absent from its environment.
func LoadNotifier() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	v := validator.New()
	if err := v.Struct(&cfg.Server); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := v.Struct(&cfg.Kafka); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Kafka.GroupID == "" {
		return nil, errors.New("invalid configuration: kafka.group_id is required for the notifier")
	}

	return cfg, nil
}

// read resolves the configuration sources without validating.
func read() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ACCOUNTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; env vars carry the configuration.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	// Empty defaults register the keys with viper so AutomaticEnv can bind
	// them during Unmarshal; validation rejects them if left unset.
	v.SetDefault("database.url", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("auth.bootstrap_admin_email", "")
	v.SetDefault("auth.bootstrap_admin_password", "")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.issuer", "accounts")
	v.SetDefault("auth.audience", "accounts")
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.default_role", "user")
	v.SetDefault("auth.confirmation_ttl_minutes", 24*60)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.notification_topic", "account-notifications")
	v.SetDefault("kafka.group_id", "account-notifier")
	v.SetDefault("kafka.queue_size", 256)
	v.SetDefault("kafka.worker_count", 2)
}
