package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config is the whole application configuration, parsed from environment
// variables (a .env file is loaded by main in dev).
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	PostgresURI string `env:"POSTGRES_URI,required"`
	RedisAddr   string `env:"REDIS_ADDR"` // optional; empty disables the feed cache

	JWTSecret string        `env:"JWT_SECRET,required"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	// Dev login escape hatch: a single user granted ADMIN+DEV, for local use.
	DevUsername string `env:"DEV_USERNAME"`
	DevPassword string `env:"DEV_PASSWORD"`

	AIBaseURL string        `env:"AI_BASE_URL" envDefault:"http://localhost:8000"`
	AITimeout time.Duration `env:"AI_TIMEOUT" envDefault:"60s"`

	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"local"` // local | gcs
	StorageRootDir string `env:"STORAGE_ROOT_DIR" envDefault:"./data/cv"`
	GCSBucket      string `env:"GCS_BUCKET"`
	GCSPrefix      string `env:"GCS_PREFIX" envDefault:"cv"`

	CvMaxSizeBytes        int64    `env:"CV_MAX_SIZE_BYTES" envDefault:"10485760"`
	CvAllowedContentTypes []string `env:"CV_ALLOWED_CONTENT_TYPES" envSeparator:"," envDefault:"application/pdf,application/vnd.openxmlformats-officedocument.wordprocessingml.document"`

	FeedCacheTTL time.Duration `env:"FEED_CACHE_TTL" envDefault:"30s"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
