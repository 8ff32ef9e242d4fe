package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every process-wide option. It is loaded once in main and
// handed to the component constructors; nothing reads the environment after
// startup.
type Config struct {
	Port     int    `envconfig:"PORT" default:"8080"`
	LogDir   string `envconfig:"LOG_DIR" default:"./logs"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// DBType is "sqlite" or "mysql". DBDSN is the sqlite file path or the
	// MySQL DSN ("user:pass@tcp(host:port)/dbname?parseTime=true").
	DBType string `envconfig:"DB_TYPE" default:"sqlite"`
	DBDSN  string `envconfig:"DB_DSN" default:"./fulltech.db"`

	// Seed credentials for the first admin account.
	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@fulltech.local"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"admin12345"`

	// AuthJWTSecret signs backoffice access tokens, ActivationJWTSecret
	// signs activation tokens. They must differ so a leaked activation
	// token can never reach the admin surface.
	AuthJWTSecret       string `envconfig:"AUTH_JWT_SECRET" default:"change-this-auth-secret-before-production!"`
	ActivationJWTSecret string `envconfig:"ACTIVATION_JWT_SECRET" default:"change-this-activation-secret-before-prod"`
	AccessTokenTTLMin   int    `envconfig:"AUTH_ACCESS_TTL_MIN" default:"30"`

	// OfflineEd25519PrivateKeyB64 is the base64 seed (32 bytes) or full
	// private key (64 bytes) used to sign offline license files.
	OfflineEd25519PrivateKeyB64 string `envconfig:"OFFLINE_ED25519_PRIVATE_KEY_B64"`

	// OfflineDays is the fallback revalidation window when neither the
	// license nor the "revalidation" setting provides one.
	OfflineDays int `envconfig:"OFFLINE_DAYS" default:"7"`
}

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
