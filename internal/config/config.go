// Package config reads process configuration from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvStorageDriver  = "SIGCO_STORAGE_DRIVER"
	EnvDBPath         = "SIGCO_DB_PATH"
	EnvSQLitePath     = "SIGCO_SQLITE_PATH"
	EnvPostgresDSN    = "SIGCO_POSTGRES_DSN"
	EnvS3Bucket       = "SIGCO_S3_BUCKET"
	EnvS3Region       = "SIGCO_S3_REGION"
	EnvS3Endpoint     = "SIGCO_S3_ENDPOINT"
	EnvS3PathStyle    = "SIGCO_S3_PATH_STYLE"
	EnvS3Key          = "SIGCO_S3_KEY"
	EnvRedisAddr      = "SIGCO_REDIS_ADDR"
	EnvRedisPassword  = "SIGCO_REDIS_PASSWORD"
	EnvRedisDB        = "SIGCO_REDIS_DB"
	EnvRedisKey       = "SIGCO_REDIS_KEY"
	EnvLogLevel       = "SIGCO_LOG_LEVEL"
	EnvLogFormat      = "SIGCO_LOG_FORMAT"
	defaultDriver     = "file"
	defaultDBPath     = "db.json"
	defaultSQLitePath = "sigco.db"
	defaultDSN        = "postgres://localhost/sigco?sslmode=disable"
	defaultS3Region   = "us-east-1"
	defaultS3Key      = "sigco/db.json"
	defaultRedisAddr  = "localhost:6379"
	defaultRedisKey   = "sigco:db"
)

// S3 groups the object storage settings.
type S3 struct {
	Bucket    string
	Region    string
	Endpoint  string
	PathStyle bool
	Key       string
}

// Redis groups the key/value backend settings.
type Redis struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// Config is the resolved process configuration.
type Config struct {
	StorageDriver string
	DBPath        string
	SQLitePath    string
	PostgresDSN   string
	S3            S3
	Redis         Redis
	LogLevel      string
	LogFormat     string
	// Warnings lists values that could not be parsed and were replaced by defaults.
	Warnings []string
}

// Load reads an optional .env file from the working directory and then the
// environment. Real environment variables always win over .env entries.
func Load() (Config, error) {
	return LoadFiles(".env")
}

// LoadFiles is Load with explicit dotenv paths. Missing files are ignored.
func LoadFiles(paths ...string) (Config, error) {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", p, err)
		}
	}
	return FromEnv(os.LookupEnv), nil
}

// FromEnv builds a Config from a lookup function such as os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) Config {
	var cfg Config
	str := func(name, def string) string {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}
	cfg.StorageDriver = strings.ToLower(str(EnvStorageDriver, defaultDriver))
	cfg.DBPath = str(EnvDBPath, defaultDBPath)
	cfg.SQLitePath = str(EnvSQLitePath, defaultSQLitePath)
	cfg.PostgresDSN = str(EnvPostgresDSN, defaultDSN)
	cfg.S3 = S3{
		Bucket:   str(EnvS3Bucket, ""),
		Region:   str(EnvS3Region, defaultS3Region),
		Endpoint: str(EnvS3Endpoint, ""),
		Key:      str(EnvS3Key, defaultS3Key),
	}
	if raw := str(EnvS3PathStyle, ""); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("%s=%q is not a boolean, using false", EnvS3PathStyle, raw))
		}
		cfg.S3.PathStyle = v
	}
	cfg.Redis = Redis{
		Addr:     str(EnvRedisAddr, defaultRedisAddr),
		Password: str(EnvRedisPassword, ""),
		Key:      str(EnvRedisKey, defaultRedisKey),
	}
	if raw := str(EnvRedisDB, ""); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("%s=%q is not a database index, using 0", EnvRedisDB, raw))
			v = 0
		}
		cfg.Redis.DB = v
	}
	cfg.LogLevel = strings.ToLower(str(EnvLogLevel, "info"))
	cfg.LogFormat = strings.ToLower(str(EnvLogFormat, "json"))
	return cfg
}
