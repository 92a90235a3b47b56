package config

import (
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	FirebaseProjectID       string `env:"FIREBASE_PROJECT_ID,required,notEmpty"`
	FirebaseCredentialsFile string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseWebAPIKey       string `env:"FIREBASE_WEB_API_KEY"` // Identity Toolkit key used for password sign-in

	StorageBucket string        `env:"STORAGE_BUCKET"`
	SignedURLTTL  time.Duration `env:"SIGNED_URL_TTL" envDefault:"15m"`

	RedisURL   string        `env:"REDIS_URL"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"12h"`

	// Activity log; left empty the service runs without it.
	DBUser                 string `env:"DB_USER"`
	DBPassword             string `env:"DB_PASSWORD"`
	DBHost                 string `env:"DB_HOST"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName                 string `env:"DB_NAME"`
	DBPort                 string `env:"DB_PORT" envDefault:"3306"`
	InstanceConnectionName string `env:"INSTANCE_CONNECTION_NAME"`

	AllowedOriginSuffix string `env:"ALLOWED_ORIGIN_SUFFIX" envDefault:"vercel.app"`

	GitSHA    string `env:"GIT_SHA"`
	BuildTime string `env:"BUILD_TIME"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ActivityLogEnabled reports whether enough MySQL settings are present to
// open the activity log database.
func (c *Config) ActivityLogEnabled() bool {
	return c.DBName != "" && c.DBUser != "" && (c.DBHost != "" || c.InstanceConnectionName != "")
}
