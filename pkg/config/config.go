package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Postback PostbackConfig
	Mailjet  MailjetConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
	// BaseURL is the public origin short links are issued under, e.g.
	// https://biotoolsdirectory.com
	BaseURL string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

type PostbackConfig struct {
	// AllowUnsigned controls whether partners without an API secret may send
	// unsigned postbacks at all. Partners that do have a secret must always sign.
	AllowUnsigned   bool
	RateLimitPerMin int
	MaxPayloadBytes int
	// LifecycleIntervalMin is the minutes between campaign lifecycle sweeps.
	LifecycleIntervalMin int
}

type MailjetConfig struct {
	MailjetBaseUrl           string
	MailjetBasicAuthUsername string
	MailjetBasicAuthPassword string
	MailjetSenderEmail       string
	MailjetSenderName        string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	rateLimit, err := strconv.Atoi(getEnv("POSTBACK_RATE_LIMIT_PER_MIN", "120"))
	if err != nil {
		return nil, errors.New("invalid postback rate limit")
	}

	lifecycleInterval, err := strconv.Atoi(getEnv("CAMPAIGN_LIFECYCLE_INTERVAL_MIN", "10"))
	if err != nil {
		return nil, errors.New("invalid campaign lifecycle interval")
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "BioTools Affiliate API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			BaseURL:     getEnv("APP_BASE_URL", "http://localhost:8080"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "bio_affiliate"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		Postback: PostbackConfig{
			AllowUnsigned:        getEnv("POSTBACK_ALLOW_UNSIGNED", "true") == "true",
			RateLimitPerMin:      rateLimit,
			MaxPayloadBytes:      5000,
			LifecycleIntervalMin: lifecycleInterval,
		},
		Mailjet: MailjetConfig{
			MailjetBaseUrl:           getEnv("MAILJET_BASE_URL", ""),
			MailjetBasicAuthUsername: getEnv("MAILJET_BASIC_AUTH_USERNAME", ""),
			MailjetBasicAuthPassword: getEnv("MAILJET_BASIC_AUTH_PASSWORD", ""),
			MailjetSenderEmail:       getEnv("MAILJET_SENDER_EMAIL", ""),
			MailjetSenderName:        getEnv("MAILJET_SENDER_NAME", ""),
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}
