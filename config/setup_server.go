package config

import (
	"airunote/internal/model"
	"airunote/internal/util"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	DatabaseConfig DatabaseConfig `yaml:"databaseConfig"`
	RedisConfig    RedisConfig    `yaml:"redisConfig"`
	ServerAddr     string         `yaml:"serverAddr" validate:"required"`
	S3Config       S3Config       `yaml:"s3Config"`
	JWT            JWTConfig      `yaml:"jwt"`
	TTL            TTL            `yaml:"TTL"`
	Logging        LoggingConfig  `yaml:"logging"`
	Vault          VaultConfig    `yaml:"vault"`
}

func LoadConfig(path string) (*AppConfig, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return ParseConfig(file)
}

// ParseConfig : разбор yaml, значения по умолчанию и проверка тегами validate
func ParseConfig(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := util.Validator().Struct(&cfg); err != nil {
		return nil, formatValidationError(err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Vault.MaxTreeDepth == 0 {
		cfg.Vault.MaxTreeDepth = model.DefaultMaxTreeDepth
	}
	if cfg.Vault.MaxBatchSize == 0 {
		cfg.Vault.MaxBatchSize = 500
	}
	if cfg.TTL.S3AndRedis == 0 {
		cfg.TTL.S3AndRedis = 900
	}
	if cfg.TTL.LinkCache == 0 {
		cfg.TTL.LinkCache = 300
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "airunote"
	}
}

func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("конфигурация: %s не прошло проверку '%s' (значение: %v)", e.Namespace(), e.Tag(), e.Value())
	}
	return fmt.Errorf("конфигурация: %w", err)
}

func SetupServer(serverAddress string) (*http.Server, *chi.Mux) {
	router := chi.NewRouter()
	server := &http.Server{
		Addr:    serverAddress,
		Handler: router,
	}

	return server, router
}

func SetupDatabase(cfg *DatabaseConfig) (*Database, error) {
	return NewDatabaseConnection("postgres", cfg)
}

func SetupRedis(cfg *RedisConfig) (*RedisClient, error) {
	return NewRedisClient(cfg)
}
