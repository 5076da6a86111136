package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv = "NOTPAZAR_APP_ENV"
)

type Config struct {
	App      AppConfig
	JWT      JWTConfig
	Password PasswordConfig
	Storage  StorageConfig
	Media    MediaConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"NOTPAZAR_APP_ENV" required:"true"`
	Port         string `envconfig:"NOTPAZAR_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"NOTPAZAR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"NOTPAZAR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type JWTConfig struct {
	Secret            string `envconfig:"NOTPAZAR_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"NOTPAZAR_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"NOTPAZAR_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"NOTPAZAR_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"NOTPAZAR_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"NOTPAZAR_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"NOTPAZAR_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"NOTPAZAR_ARGON_KEY_LEN" default:"32"`
}

// StorageConfig locates the flat-file database and uploaded assets.
type StorageConfig struct {
	DatabaseDir string `envconfig:"NOTPAZAR_DATABASE_DIR" default:"database"`
	UploadRoot  string `envconfig:"NOTPAZAR_UPLOAD_ROOT" default:"uploads"`
}

// MediaConfig carries the upload allow-lists. Extensions are matched
// case-insensitively, without the leading dot.
type MediaConfig struct {
	DocumentExtensions []string `envconfig:"NOTPAZAR_DOCUMENT_EXTENSIONS" default:"pdf,docx,pptx"`
	ImageExtensions    []string `envconfig:"NOTPAZAR_IMAGE_EXTENSIONS" default:"png,jpg,jpeg,gif"`
	MaxUploadBytes     int64    `envconfig:"NOTPAZAR_MAX_UPLOAD_BYTES" default:"33554432"`
}
