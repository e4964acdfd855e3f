package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// App configuration
type AppConfig struct {
	Name string `validate:"required"`
	Mode string `validate:"oneof=debug release test"`
}

// Server configuration
type ServerConfig struct {
	Port string `validate:"required,numeric"`
	Host string
}

// MongoDB configuration
type MongoConfig struct {
	URI        string `validate:"required"`
	Database   string `validate:"required"`
	Collection string `validate:"required"`
}

// Redis configuration
type RedisConfig struct {
	Host     string `validate:"required"`
	Port     int    `validate:"min=1,max=65535"`
	Password string
	DB       int `validate:"min=0"`
	// LockTTL bounds per-user command locks. Zero disables locking.
	LockTTL time.Duration `validate:"min=0"`
}

// Channels names the pub/sub channels events are published on
type ChannelsConfig struct {
	Created                 string `validate:"required"`
	Updated                 string `validate:"required"`
	AddedToOrganisation     string `validate:"required"`
	RemovedFromOrganisation string `validate:"required"`
	Deleted                 string `validate:"required"`
	DeadLetter              string `validate:"required"`
}

// System user configuration. The system user is seeded at startup and acts
// as the bootstrap actor for the first user creations.
type SystemUserConfig struct {
	Reference string `validate:"required,uuid"`
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
	Email     string `validate:"required,email"`
}

// Auth configuration
type AuthConfig struct {
	// APIKeyHash is the bcrypt hash of the service API key. Empty disables the check.
	APIKeyHash string
}

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Server     ServerConfig
	Mongo      MongoConfig
	Redis      RedisConfig
	Channels   ChannelsConfig
	SystemUser SystemUserConfig
	Auth       AuthConfig
	Consent    ConsentTemplate
	PageSize   int `validate:"min=1,max=100"`
}

// Default configuration values
const (
	DefaultAppName          = "user-service"
	DefaultMode             = "debug"
	DefaultServerPort       = "5000"
	DefaultServerHost       = ""
	DefaultMongoURI         = "mongodb://localhost:27017"
	DefaultMongoDB          = "users"
	DefaultMongoCollection  = "users"
	DefaultRedisHost        = "localhost"
	DefaultRedisPort        = 6379
	DefaultRedisDB          = 0
	DefaultLockTTL          = 5 * time.Second
	DefaultSystemUserRef    = "00000000-0000-4000-8000-000000000001"
	DefaultSystemUserFirst  = "System"
	DefaultSystemUserLast   = "User"
	DefaultSystemUserEmail  = "system@userhub.local"
	DefaultChannelCreated   = "user_created"
	DefaultChannelUpdated   = "user_updated"
	DefaultChannelAdded     = "user_added_to_organisation"
	DefaultChannelRemoved   = "user_removed_from_organisation"
	DefaultChannelDeleted   = "user_deleted"
	DefaultChannelDeadLetter = "user_events_dead_letter"
	// Pagination defaults
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var validate = validator.New()

// New returns a new Config from the environment with default values
func New() *Config {
	return &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", DefaultAppName),
			Mode: strings.ToLower(getEnv("MODE", DefaultMode)),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", DefaultServerPort),
			Host: getEnv("HOST", DefaultServerHost),
		},
		Mongo: MongoConfig{
			URI:        getEnv("DB_URL", DefaultMongoURI),
			Database:   getEnv("DB", DefaultMongoDB),
			Collection: getEnv("DB_COLLECTION", DefaultMongoCollection),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", DefaultRedisHost),
			Port:     getEnvInt("REDIS_PORT", DefaultRedisPort),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", DefaultRedisDB),
			LockTTL:  getEnvDuration("REDIS_LOCK_TTL", DefaultLockTTL),
		},
		Channels: ChannelsConfig{
			Created:                 getEnv("CHANNEL_USER_CREATED", DefaultChannelCreated),
			Updated:                 getEnv("CHANNEL_USER_UPDATED", DefaultChannelUpdated),
			AddedToOrganisation:     getEnv("CHANNEL_USER_ADDED_TO_ORGANISATION", DefaultChannelAdded),
			RemovedFromOrganisation: getEnv("CHANNEL_USER_REMOVED_FROM_ORGANISATION", DefaultChannelRemoved),
			Deleted:                 getEnv("CHANNEL_USER_DELETED", DefaultChannelDeleted),
			DeadLetter:              getEnv("CHANNEL_DEAD_LETTER", DefaultChannelDeadLetter),
		},
		SystemUser: SystemUserConfig{
			Reference: getEnv("SYSTEM_USER_REFERENCE", DefaultSystemUserRef),
			FirstName: getEnv("SYSTEM_USER_FIRST_NAME", DefaultSystemUserFirst),
			LastName:  getEnv("SYSTEM_USER_LAST_NAME", DefaultSystemUserLast),
			Email:     getEnv("SYSTEM_USER_EMAIL", DefaultSystemUserEmail),
		},
		Auth: AuthConfig{
			APIKeyHash: getEnv("API_KEY_HASH", ""),
		},
		Consent:  DefaultConsentTemplate(),
		PageSize: getEnvInt("PAGE_SIZE", DefaultPageSize),
	}
}

// Load reads an optional .env file, builds the config from the environment,
// applies the consent template file named by CONSENT_TEMPLATE_FILE and
// validates the result.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && len(envFiles) > 0 {
		return nil, fmt.Errorf("load env files: %w", err)
	}

	cfg := New()
	if path := getEnv("CONSENT_TEMPLATE_FILE", ""); path != "" {
		tmpl, err := LoadConsentTemplate(path)
		if err != nil {
			return nil, err
		}
		cfg.Consent = *tmpl
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags of the whole configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if len(c.Consent.Preferences) == 0 {
		return fmt.Errorf("invalid configuration: consent template has no preferences")
	}
	return nil
}

// Address returns the server address string
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Address returns host:port for the Redis client
func (c *RedisConfig) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
