package config

import "github.com/aws/aws-sdk-go-v2/service/s3"

type DatabaseConfig struct {
	DSN             string `yaml:"dsn" validate:"required"`
	MaxOpenConns    int    `yaml:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int    `yaml:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" validate:"required"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
}

// S3Config : хранилище вложений. Local включает minio с path-style адресацией
type S3Config struct {
	Bucket          string     `yaml:"bucket" validate:"required"`
	Client          *s3.Client `yaml:"-"`
	Region          string     `yaml:"region" validate:"required"`
	Endpoint        string     `yaml:"endpoint" validate:"required_if=Local true"`
	Local           bool       `yaml:"local"`
	AccessKeyID     string     `yaml:"access_key_id"`
	SecretAccessKey string     `yaml:"secret_access_key"`
}

type JWTConfig struct {
	SecretKey      string `yaml:"secret_key" validate:"required,min=16"`
	AccessTokenTTL string `yaml:"access_token_ttl" validate:"required"`
	Issuer         string `yaml:"issuer"`
}

// TTL : время жизни в секундах
type TTL struct {
	S3AndRedis int `yaml:"s3_and_redis" validate:"gt=0"`
	LinkCache  int `yaml:"link_cache" validate:"gt=0"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Format string `yaml:"format" validate:"omitempty,oneof=json console"`
}

// VaultConfig : ограничения ядра
type VaultConfig struct {
	ConfirmationToken string `yaml:"confirmation_token" validate:"required"`
	MaxTreeDepth      int    `yaml:"max_tree_depth" validate:"gte=0,lte=100"`
	MaxBatchSize      int    `yaml:"max_batch_size" validate:"gte=0,lte=5000"`
}
