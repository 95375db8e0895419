// backend-go/internal/config/config.go
package config

import (
	"os"
	"sync"

	"github.com/andresuchdata/doccover/backend-go/internal/coverage"
	"github.com/andresuchdata/doccover/backend-go/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	App      AppConfig
	Coverage CoverageConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Drive    DriveConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
	MaxUploadMB    int64
}

type AppConfig struct {
	UploadDir string
	DataDir   string
	LogLevel  string
	LogFormat string // console or json
}

// CoverageConfig holds the default calculator settings. Requests and CLI
// flags may override them per run.
type CoverageConfig struct {
	SiteMarker       string
	UnitMultiplier   float64
	LocationColumn   string
	CategoryColumn   string
	AssumeSiteDemand bool
}

type CacheConfig struct {
	Enabled       bool
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	TTLSeconds    int
}

// StorageConfig configures the S3-compatible bucket summary workbooks are
// published to.
type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

type DriveConfig struct {
	CredentialsJSON string
	FolderID        string
}

var (
	once     sync.Once
	instance *Config
)

// Load reads the process configuration once from the environment and an
// optional .env file.
func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		instance = newConfig(viper.GetViper())

		// Ensure upload and data directories exist
		ensureDir(instance.App.UploadDir)
		ensureDir(instance.App.DataDir)
	})

	return instance
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 60)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER_MAX_UPLOAD_MB", 32)
	v.SetDefault("APP_UPLOAD_DIR", "./data/uploads")
	v.SetDefault("APP_DATA_DIR", "./data/output")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("DOC_SITE_MARKER", coverage.DefaultSiteMarker)
	v.SetDefault("DOC_UNIT_MULTIPLIER", 1.0)
	v.SetDefault("DOC_LOCATION_COLUMN", coverage.DefaultLocationColumn)
	v.SetDefault("DOC_CATEGORY_COLUMN", coverage.DefaultCategoryColumn)
	v.SetDefault("DOC_ASSUME_SITE_DEMAND", false)
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL_SECONDS", 3600)
	v.SetDefault("STORAGE_ENABLED", false)
	v.SetDefault("S3_ENDPOINT", "localhost:9000")
	v.SetDefault("S3_BUCKET", "doc-summaries")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_USE_SSL", false)
	v.SetDefault("S3_PREFIX", "doc")
}

// newConfig builds a Config from v. Exposed to tests through a private viper.
func newConfig(v *viper.Viper) *Config {
	setDefaults(v)

	// Read from environment variables
	v.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			MaxUploadMB:    v.GetInt64("SERVER_MAX_UPLOAD_MB"),
		},
		App: AppConfig{
			UploadDir: v.GetString("APP_UPLOAD_DIR"),
			DataDir:   v.GetString("APP_DATA_DIR"),
			LogLevel:  v.GetString("LOG_LEVEL"),
			LogFormat: v.GetString("LOG_FORMAT"),
		},
		Coverage: CoverageConfig{
			SiteMarker:       v.GetString("DOC_SITE_MARKER"),
			UnitMultiplier:   v.GetFloat64("DOC_UNIT_MULTIPLIER"),
			LocationColumn:   v.GetString("DOC_LOCATION_COLUMN"),
			CategoryColumn:   v.GetString("DOC_CATEGORY_COLUMN"),
			AssumeSiteDemand: v.GetBool("DOC_ASSUME_SITE_DEMAND"),
		},
		Cache: CacheConfig{
			Enabled:       v.GetBool("CACHE_ENABLED"),
			RedisURL:      v.GetString("REDIS_URL"),
			RedisHost:     v.GetString("REDIS_HOST"),
			RedisPort:     v.GetString("REDIS_PORT"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
			TTLSeconds:    v.GetInt("CACHE_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Enabled:   v.GetBool("STORAGE_ENABLED"),
			Endpoint:  v.GetString("S3_ENDPOINT"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			Bucket:    v.GetString("S3_BUCKET"),
			Region:    v.GetString("S3_REGION"),
			UseSSL:    v.GetBool("S3_USE_SSL"),
			Prefix:    v.GetString("S3_PREFIX"),
		},
		Drive: DriveConfig{
			CredentialsJSON: v.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
			FolderID:        v.GetString("DRIVE_FOLDER_ID"),
		},
	}
}

// CoverageOptions maps the coverage section onto calculator options.
func (c *Config) CoverageOptions() coverage.Options {
	return coverage.Options{
		SiteMarker:       c.Coverage.SiteMarker,
		UnitMultiplier:   c.Coverage.UnitMultiplier,
		LocationColumn:   c.Coverage.LocationColumn,
		CategoryColumn:   c.Coverage.CategoryColumn,
		AssumeSiteDemand: c.Coverage.AssumeSiteDemand,
	}.WithDefaults()
}

func ensureDir(dir string) {
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Log.Fatal().Err(err).Str("dir", dir).Msg("failed to create directory")
		}
	}
}
