package config

import (
	"strings"
	"time"

	"github.com/SeakMengs/Signfy/internal/env"
)

type Config struct {
	Port        string
	ENV         string
	DB          DatabaseConfig
	RateLimiter RateLimiterConfig
	Mail        MailConfig
	Auth        AuthConfig
	Signer      SignerConfig
	Minio       MinioConfig
	Signfy      SignfyConfig
}

type RateLimiterConfig struct {
	RequestsPerTimeFrame int
	TimeFrame            time.Duration
	Enabled              bool
}

type AuthConfig struct {
	JWT_SECRET string
}

type DatabaseConfig struct {
	DB_HOST      string
	DB_PORT      string
	DB_DATABASE  string
	DB_USERNAME  string
	DB_PASSWORD  string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  string
}

// SignerConfig points at the external signing backend that owns documents and burns signatures into PDFs.
type SignerConfig struct {
	// e.g. http://localhost:5000/api
	API_BASE_URL string
	// Base that relative file paths returned by the backend are resolved against.
	// Empty means API_BASE_URL without its /api suffix.
	FILE_BASE_URL string
	Timeout       time.Duration
	// Largest document the service downloads to read page geometry
	MaxDocumentBytes int64
}

type MinioConfig struct {
	ENDPOINT   string
	ACCESS_KEY string
	SECRET_KEY string
	BUCKET     string
	USE_SSL    bool
	// Archive signed copies and share presigned links to them
	Enabled bool
}

type MailConfig struct {
	// "sendgrid" or "gmail"
	DRIVER     string
	SEND_GRID  SendGridConfig
	GMAIL      GmailConfig
	FROM_EMAIL string
}

type SendGridConfig struct {
	API_KEY string
}

type GmailConfig struct {
	USERNAME string
	PASSWORD string
}

type SignfyConfig struct {
	FontMetadataPath string
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.ENV, "production")
}

func GetConfig() Config {
	rateLimiteTimeFrame, err := time.ParseDuration(env.GetString("RATE_LIMIT_TIME_FRAME", "1m"))
	if err != nil {
		rateLimiteTimeFrame = 60 * time.Second
	}

	signerTimeout, err := time.ParseDuration(env.GetString("SIGNER_TIMEOUT", "30s"))
	if err != nil {
		signerTimeout = 30 * time.Second
	}

	return Config{
		Port: env.GetString("PORT", "8080"),
		ENV:  env.GetString("ENV", "development"),
		DB: DatabaseConfig{
			DB_HOST:      env.GetString("DB_HOST", "127.0.0.1"),
			DB_PORT:      env.GetString("DB_PORT", "5432"),
			DB_USERNAME:  env.GetString("DB_USERNAME", "root"),
			DB_PASSWORD:  env.GetString("DB_PASSWORD", ""),
			DB_DATABASE:  env.GetString("DB_DATABASE", "signfy"),
			MaxOpenConns: env.GetInt("DB_MAX_OPEN_CONNS", 30),
			MaxIdleConns: env.GetInt("DB_MAX_IDLE_CONNS", 30),
			MaxIdleTime:  env.GetString("DB_MAX_IDLE_TIME", "15m"),
		},
		// By default if not specified, we allow 5000 requests per minute on all routes
		RateLimiter: RateLimiterConfig{
			RequestsPerTimeFrame: env.GetInt("RATE_LIMIT_REQUESTS_PER_TIME_FRAME", 5000),
			TimeFrame:            rateLimiteTimeFrame,
			Enabled:              env.GetBool("RATE_LIMIT_ENABLED", true),
		},
		Mail: MailConfig{
			DRIVER:     env.GetString("MAIL_DRIVER", "sendgrid"),
			FROM_EMAIL: env.GetString("MAIL_FROM_MAIL", ""),
			SEND_GRID: SendGridConfig{
				API_KEY: env.GetString("MAIL_SEND_GRID_API_KEY", ""),
			},
			GMAIL: GmailConfig{
				USERNAME: env.GetString("MAIL_GMAIL_USERNAME", ""),
				PASSWORD: env.GetString("MAIL_GMAIL_APP_PASSWORD", ""),
			},
		},
		Auth: AuthConfig{
			JWT_SECRET: env.GetString("AUTH_JWT_SECRET", ""),
		},
		Signer: SignerConfig{
			API_BASE_URL:     env.GetString("SIGNER_API_BASE_URL", "http://localhost:5000/api"),
			FILE_BASE_URL:    env.GetString("SIGNER_FILE_BASE_URL", ""),
			Timeout:          signerTimeout,
			MaxDocumentBytes: int64(env.GetInt("SIGNER_MAX_DOCUMENT_MB", 50)) << 20,
		},
		Minio: MinioConfig{
			ENDPOINT:   env.GetString("MINIO_ENDPOINT", "127.0.0.1:9000"),
			ACCESS_KEY: env.GetString("MINIO_ACCESS_KEY", ""),
			SECRET_KEY: env.GetString("MINIO_SECRET_KEY", ""),
			BUCKET:     env.GetString("MINIO_BUCKET", "signfy"),
			USE_SSL:    env.GetBool("MINIO_USE_SSL", false),
			Enabled:    env.GetBool("MINIO_ENABLED", false),
		},
		Signfy: SignfyConfig{
			FontMetadataPath: env.GetString("FONT_METADATA_PATH", "font_metadata.json"),
		},
	}
}
