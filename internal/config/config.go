package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Log       LogConfig     `mapstructure:"log"`
	Records   RecordsConfig `mapstructure:"records"`
	Access    AccessConfig  `mapstructure:"access"`
	Session   SessionConfig `mapstructure:"session"`
	Storage   StorageConfig
	Tracing   TracingConfig `mapstructure:"tracing"`
	Redis     RedisConfig
	AI        AIConfig
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type AIConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	// 0 表示不设置超时，与课堂版行为一致
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// RecordsConfig CSV 记录文件目录
type RecordsConfig struct {
	Dir string `mapstructure:"dir"`
}

// AccessConfig 课堂访问控制：班级口令、教师口令、开放时段
type AccessConfig struct {
	Password           string `mapstructure:"password"`
	InstructorPassword string `mapstructure:"instructor_password"`
	OpenStart          string `mapstructure:"open_start"`
	OpenEnd            string `mapstructure:"open_end"`
	TokenSecret        string `mapstructure:"token_secret"`
	TokenExpireHours   int    `mapstructure:"token_expire_hours"`
}

type SessionConfig struct {
	Store      string `mapstructure:"store"`
	TTLMinutes int    `mapstructure:"ttl_minutes"`
	BoltPath   string `mapstructure:"bolt_path"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	OSSEndpoint   string `mapstructure:"oss_endpoint"`
	OSSAccessKey  string `mapstructure:"oss_access_key"`
	OSSSecretKey  string `mapstructure:"oss_secret_key"`
	OSSBucket     string `mapstructure:"oss_bucket"`
	B2KeyID       string `mapstructure:"b2_key_id"`
	B2AppKey      string `mapstructure:"b2_app_key"`
	B2Bucket      string `mapstructure:"b2_bucket"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TokenTTL 会话令牌有效期
func (c AccessConfig) TokenTTL() time.Duration {
	if c.TokenExpireHours <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(c.TokenExpireHours) * time.Hour
}

// IdleTTL 会话空闲过期时间
func (c SessionConfig) IdleTTL() time.Duration {
	if c.TTLMinutes <= 0 {
		return 3 * time.Hour
	}
	return time.Duration(c.TTLMinutes) * time.Minute
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("records.dir", "logs")
	v.SetDefault("access.open_start", "00:00")
	v.SetDefault("access.open_end", "23:59")
	v.SetDefault("access.token_expire_hours", 12)
	v.SetDefault("session.store", "memory")
	v.SetDefault("session.ttl_minutes", 180)
	v.SetDefault("session.bolt_path", "logs/sessions.db")
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "uploads")
	v.SetDefault("ai.base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.temperature", 0.3)
	v.SetDefault("rate_limit.max_requests", 600)
	v.SetDefault("rate_limit.window_minutes", 1)
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("EDU_TRANSLATOR")
	v.AutomaticEnv()
	setDefaults(v)

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.port", "PORT")

	// AI
	v.BindEnv("ai.base_url", "AI_BASE_URL")
	v.BindEnv("ai.api_key", "AI_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("ai.model", "AI_MODEL")

	// Access
	v.BindEnv("access.password", "CLASS_PASSWORD")
	v.BindEnv("access.instructor_password", "INSTRUCTOR_PASSWORD")
	v.BindEnv("access.token_secret", "TOKEN_SECRET")

	// Records
	v.BindEnv("records.dir", "RECORDS_DIR")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Storage / OSS
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.oss_endpoint", "OSS_ENDPOINT")
	v.BindEnv("storage.oss_access_key", "OSS_ACCESS_KEY")
	v.BindEnv("storage.oss_secret_key", "OSS_SECRET_KEY")
	v.BindEnv("storage.oss_bucket", "OSS_BUCKET")
	v.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.minio_bucket", "MINIO_BUCKET")
	v.BindEnv("storage.b2_key_id", "B2_KEY_ID")
	v.BindEnv("storage.b2_app_key", "B2_APP_KEY")
	v.BindEnv("storage.b2_bucket", "B2_BUCKET")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.AI.APIKey == "" {
		return nil, fmt.Errorf("AI API key not found: set ai.api_key in config.yaml or AI_API_KEY / OPENAI_API_KEY")
	}

	// 生产环境校验令牌密钥强度
	if cfg.Server.Mode == "release" && len(cfg.Access.TokenSecret) < 32 {
		return nil, fmt.Errorf("token secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.Access.TokenSecret))
	}

	if err := os.MkdirAll(cfg.Records.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create records dir: %w", err)
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}
