package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"    validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Kafka    KafkaConfig    `mapstructure:"kafka"    validate:"required"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database related settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// RedisConfig contains the connection settings for the confirmation
// token store.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"required"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// AuthConfig contains authentication and provisioning policy settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	Issuer               string `mapstructure:"issuer"                 validate:"required"`
	Audience             string `mapstructure:"audience"               validate:"required"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`

	// DefaultRole is assigned when account creation omits a role name.
	// Must not name an elevated role.
	DefaultRole string `mapstructure:"default_role" validate:"required"`

	// ConfirmationTTLMinutes bounds the lifetime of email confirmation tokens.
	ConfirmationTTLMinutes int `mapstructure:"confirmation_ttl_minutes" validate:"required,gt=0"`

	// BootstrapAdminEmail and BootstrapAdminPassword provision the first
	// admin account at startup. Leaving the email empty disables the
	// bootstrap; without it no account can reach the role-granting
	// endpoints.
	BootstrapAdminEmail    string `mapstructure:"bootstrap_admin_email"    validate:"omitempty,email"`
	BootstrapAdminPassword string `mapstructure:"bootstrap_admin_password" validate:"required_with=BootstrapAdminEmail"`
}

// KafkaConfig contains the notification channel settings.
type KafkaConfig struct {
	Brokers           []string `mapstructure:"brokers"            validate:"required,min=1"`
	NotificationTopic string   `mapstructure:"notification_topic" validate:"required"`

	// GroupID is used by the notifier consumer; it is not required for the
	// API server process.
	GroupID string `mapstructure:"group_id"`

	// QueueSize and WorkerCount tune the in-process publish dispatcher.
	QueueSize   int `mapstructure:"queue_size"   validate:"gte=0"`
	WorkerCount int `mapstructure:"worker_count" validate:"gte=0"`
}
