package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/repository"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/storage/objectstore"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultEnvFile    = "configs/.env"
	DefaultConfigFile = "configs/portal.yaml"
	devJWTSecret      = "default_super_secret_key"
)

// Config is the resolved runtime configuration. Values come from built-in
// defaults, then the YAML file, then environment variables.
type Config struct {
	Port      string
	GinMode   string
	JWTSecret string
	TokenTTL  time.Duration
	LogLevel  string
	LogFormat string

	// AutoMigrate runs schema migration when the API starts.
	AutoMigrate bool

	Database Database
	CORS     CORS
	Schema   Schema
	Storage  Storage
}

type Database struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN builds the Postgres connection URL.
func (d Database) DSN() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.Name + "?sslmode=" + d.SSLMode
}

type CORS struct {
	AllowOrigins []string `yaml:"allow_origins"`
}

// Schema pins capabilities of the deployed projects table. "auto" leaves the
// answer to catalog detection.
type Schema struct {
	AuditColumns    string `yaml:"audit_columns"`
	CancelledStatus string `yaml:"cancelled_status"`
}

// Capabilities parses the overrides. Unset values stay unknown.
func (s Schema) Capabilities() (repository.SchemaCapabilities, error) {
	audit, err := repository.ParseCapability(s.AuditColumns)
	if err != nil {
		return repository.SchemaCapabilities{}, fmt.Errorf("schema.audit_columns: %w", err)
	}
	cancelled, err := repository.ParseCapability(s.CancelledStatus)
	if err != nil {
		return repository.SchemaCapabilities{}, fmt.Errorf("schema.cancelled_status: %w", err)
	}
	return repository.SchemaCapabilities{AuditColumns: audit, CancelledStatus: cancelled}, nil
}

type Storage struct {
	Endpoint   string        `yaml:"endpoint"`
	AccessKey  string        `yaml:"access_key"`
	SecretKey  string        `yaml:"secret_key"`
	Region     string        `yaml:"region"`
	UseSSL     bool          `yaml:"use_ssl"`
	Bucket     string        `yaml:"bucket"`
	PresignTTL time.Duration `yaml:"presign_ttl"`
}

// Enabled reports whether deliverable file links should be generated.
func (s Storage) Enabled() bool { return strings.TrimSpace(s.Endpoint) != "" }

func (s Storage) ObjectStore() objectstore.Config {
	return objectstore.Config{
		Endpoint:   s.Endpoint,
		AccessKey:  s.AccessKey,
		SecretKey:  s.SecretKey,
		Region:     s.Region,
		UseSSL:     s.UseSSL,
		Bucket:     s.Bucket,
		PresignTTL: s.PresignTTL,
	}
}

// fileConfig is the YAML layout of configs/portal.yaml.
type fileConfig struct {
	Port     string   `yaml:"port"`
	LogLevel string   `yaml:"log_level"`
	Database Database `yaml:"database"`
	CORS     CORS     `yaml:"cors"`
	Schema   Schema   `yaml:"schema"`
	Storage  Storage  `yaml:"storage"`
}

func defaults() Config {
	return Config{
		Port:        "8080",
		GinMode:     "debug",
		TokenTTL:    24 * time.Hour,
		LogLevel:    "info",
		LogFormat:   "text",
		AutoMigrate: true,
		Database: Database{
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "postgres",
			Name:     "postgres",
			SSLMode:  "disable",
		},
		CORS: CORS{AllowOrigins: []string{"http://localhost:5173", "http://127.0.0.1:5173"}},
		Schema: Schema{
			AuditColumns:    "auto",
			CancelledStatus: "auto",
		},
		Storage: Storage{
			Region:     "us-east-1",
			Bucket:     "deliverables",
			PresignTTL: 15 * time.Minute,
		},
	}
}

// Load reads envFile (if present), then the YAML file named by PORTAL_CONFIG,
// then the environment.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}

	cfg := defaults()

	path := os.Getenv("PORTAL_CONFIG")
	if path == "" {
		path = DefaultConfigFile
	}
	if err := cfg.applyFile(path); err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	return c.applyYAML(data)
}

func (c *Config) applyYAML(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("config: decode yaml: %w", err)
	}

	setString(&c.Port, fc.Port)
	setString(&c.LogLevel, fc.LogLevel)

	setString(&c.Database.Host, fc.Database.Host)
	setString(&c.Database.Port, fc.Database.Port)
	setString(&c.Database.User, fc.Database.User)
	setString(&c.Database.Password, fc.Database.Password)
	setString(&c.Database.Name, fc.Database.Name)
	setString(&c.Database.SSLMode, fc.Database.SSLMode)

	if len(fc.CORS.AllowOrigins) > 0 {
		c.CORS.AllowOrigins = fc.CORS.AllowOrigins
	}

	setString(&c.Schema.AuditColumns, fc.Schema.AuditColumns)
	setString(&c.Schema.CancelledStatus, fc.Schema.CancelledStatus)

	setString(&c.Storage.Endpoint, fc.Storage.Endpoint)
	setString(&c.Storage.AccessKey, fc.Storage.AccessKey)
	setString(&c.Storage.SecretKey, fc.Storage.SecretKey)
	setString(&c.Storage.Region, fc.Storage.Region)
	setString(&c.Storage.Bucket, fc.Storage.Bucket)
	if fc.Storage.UseSSL {
		c.Storage.UseSSL = true
	}
	if fc.Storage.PresignTTL > 0 {
		c.Storage.PresignTTL = fc.Storage.PresignTTL
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, os.Getenv("PORT"))
	setString(&c.GinMode, os.Getenv("GIN_MODE"))
	setString(&c.JWTSecret, os.Getenv("JWT_SECRET"))
	setString(&c.LogLevel, os.Getenv("LOG_LEVEL"))
	setString(&c.LogFormat, os.Getenv("LOG_FORMAT"))

	if v := os.Getenv("AUTO_MIGRATE"); v != "" {
		autoMigrate, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: AUTO_MIGRATE: %w", err)
		}
		c.AutoMigrate = autoMigrate
	}
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: TOKEN_TTL: %w", err)
		}
		c.TokenTTL = ttl
	}

	setString(&c.Database.Host, os.Getenv("DB_HOST"))
	setString(&c.Database.Port, os.Getenv("DB_PORT"))
	setString(&c.Database.User, os.Getenv("DB_USER"))
	setString(&c.Database.Password, os.Getenv("DB_PASSWORD"))
	setString(&c.Database.Name, os.Getenv("DB_NAME"))
	setString(&c.Database.SSLMode, os.Getenv("DB_SSLMODE"))

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORS.AllowOrigins = splitList(v)
	}

	setString(&c.Schema.AuditColumns, os.Getenv("SCHEMA_AUDIT_COLUMNS"))
	setString(&c.Schema.CancelledStatus, os.Getenv("SCHEMA_CANCELLED_STATUS"))

	setString(&c.Storage.Endpoint, os.Getenv("MINIO_ENDPOINT"))
	setString(&c.Storage.AccessKey, os.Getenv("MINIO_ACCESS_KEY"))
	setString(&c.Storage.SecretKey, os.Getenv("MINIO_SECRET_KEY"))
	setString(&c.Storage.Region, os.Getenv("MINIO_REGION"))
	setString(&c.Storage.Bucket, os.Getenv("MINIO_BUCKET"))
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		useSSL, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: MINIO_USE_SSL: %w", err)
		}
		c.Storage.UseSSL = useSSL
	}
	return nil
}

// Validate fills the development JWT secret outside release mode and rejects
// settings that cannot work.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		if c.GinMode == "release" {
			return errors.New("config: JWT_SECRET is required in release mode")
		}
		c.JWTSecret = devJWTSecret
	}
	if _, err := c.Schema.Capabilities(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Storage.Enabled() {
		if err := c.Storage.ObjectStore().Validate(); err != nil {
			return fmt.Errorf("config: storage: %w", err)
		}
	}
	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
