// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Scheduler modes accepted by SCHEDULER_MODE.
const (
	SchedulerModeTicker = "ticker"
	SchedulerModeAsynq  = "asynq"
	SchedulerModeOff    = "off"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the follow-up scheduler and its Redis queue.
type SchedulerConfig interface {
	GetSchedulerMode() string
	GetFollowUpPollInterval() time.Duration
	GetFollowUpBatchSize() int
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketLeadMedia() string
	IsMinIOEnabled() bool
}

// WhatsAppConfig provides settings for the WhatsApp gateway used to deliver follow-ups.
type WhatsAppConfig interface {
	GetWhatsAppURL() string
	GetWhatsAppKey() string
	GetWhatsAppDeviceID() string
}

// SMTPConfig provides settings for broker notification emails.
type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetSMTPFromAddress() string
	GetSMTPFromName() string
	IsSMTPEnabled() bool
}

// GeminiConfig provides settings for the Gemini conversation model.
type GeminiConfig interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
	IsGeminiEnabled() bool
}

// WhisperConfig provides settings for local speech-to-text.
type WhisperConfig interface {
	GetWhisperModelPath() string
	GetWhisperLanguage() string
	IsWhisperEnabled() bool
}

// SpeechConfig provides settings for the ElevenLabs text-to-speech API.
type SpeechConfig interface {
	GetElevenLabsAPIKey() string
	GetElevenLabsVoiceID() string
	IsSpeechEnabled() bool
}

// PhoneConfig provides the default region used when parsing contact numbers.
type PhoneConfig interface {
	GetPhoneDefaultRegion() string
}

// BrokerSeedConfig provides the optional broker directory seed file.
type BrokerSeedConfig interface {
	GetBrokerSeedFile() string
}

// ConversationConfig provides settings for prompt construction.
type ConversationConfig interface {
	GetConversationHistoryLimit() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                      string
	HTTPAddr                 string
	DatabaseURL              string
	JWTAccessSecret          string
	CORSAllowAll             bool
	CORSOrigins              []string
	CORSAllowCreds           bool
	SchedulerMode            string
	FollowUpPollInterval     time.Duration
	FollowUpBatchSize        int
	RedisURL                 string
	RedisTLSInsecure         bool
	AsynqQueueName           string
	AsynqConcurrency         int
	MinIOEndpoint            string
	MinIOAccessKey           string
	MinIOSecretKey           string
	MinIOUseSSL              bool
	MinIOMaxFileSize         int64
	MinioBucketLeadMedia     string
	WhatsAppURL              string
	WhatsAppKey              string
	WhatsAppDeviceID         string
	SMTPHost                 string
	SMTPPort                 int
	SMTPUsername             string
	SMTPPassword             string
	SMTPFromAddress          string
	SMTPFromName             string
	GeminiAPIKey             string
	GeminiModel              string
	WhisperModelPath         string
	WhisperLanguage          string
	ElevenLabsAPIKey         string
	ElevenLabsVoiceID        string
	PhoneDefaultRegion       string
	BrokerSeedFile           string
	ConversationHistoryLimit int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// SchedulerConfig implementation
func (c *Config) GetSchedulerMode() string               { return c.SchedulerMode }
func (c *Config) GetFollowUpPollInterval() time.Duration { return c.FollowUpPollInterval }
func (c *Config) GetFollowUpBatchSize() int              { return c.FollowUpBatchSize }
func (c *Config) GetRedisURL() string                    { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool              { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string              { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int               { return c.AsynqConcurrency }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string        { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string       { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string       { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool            { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64      { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketLeadMedia() string { return c.MinioBucketLeadMedia }
func (c *Config) IsMinIOEnabled() bool            { return c.MinIOEndpoint != "" }

// WhatsAppConfig implementation
func (c *Config) GetWhatsAppURL() string      { return c.WhatsAppURL }
func (c *Config) GetWhatsAppKey() string      { return c.WhatsAppKey }
func (c *Config) GetWhatsAppDeviceID() string { return c.WhatsAppDeviceID }

// SMTPConfig implementation
func (c *Config) GetSMTPHost() string        { return c.SMTPHost }
func (c *Config) GetSMTPPort() int           { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string    { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string    { return c.SMTPPassword }
func (c *Config) GetSMTPFromAddress() string { return c.SMTPFromAddress }
func (c *Config) GetSMTPFromName() string    { return c.SMTPFromName }
func (c *Config) IsSMTPEnabled() bool        { return c.SMTPHost != "" }

// GeminiConfig implementation
func (c *Config) GetGeminiAPIKey() string { return c.GeminiAPIKey }
func (c *Config) GetGeminiModel() string  { return c.GeminiModel }
func (c *Config) IsGeminiEnabled() bool   { return c.GeminiAPIKey != "" }

// WhisperConfig implementation
func (c *Config) GetWhisperModelPath() string { return c.WhisperModelPath }
func (c *Config) GetWhisperLanguage() string  { return c.WhisperLanguage }
func (c *Config) IsWhisperEnabled() bool      { return c.WhisperModelPath != "" }

// SpeechConfig implementation
func (c *Config) GetElevenLabsAPIKey() string  { return c.ElevenLabsAPIKey }
func (c *Config) GetElevenLabsVoiceID() string { return c.ElevenLabsVoiceID }
func (c *Config) IsSpeechEnabled() bool        { return c.ElevenLabsAPIKey != "" }

// PhoneConfig implementation
func (c *Config) GetPhoneDefaultRegion() string { return c.PhoneDefaultRegion }

// BrokerSeedConfig implementation
func (c *Config) GetBrokerSeedFile() string { return c.BrokerSeedFile }

// ConversationConfig implementation
func (c *Config) GetConversationHistoryLimit() int { return c.ConversationHistoryLimit }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                      getEnv("APP_ENV", "development"),
		HTTPAddr:                 getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		JWTAccessSecret:          getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:             corsAllowAll,
		CORSOrigins:              corsOrigins,
		CORSAllowCreds:           strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		SchedulerMode:            strings.ToLower(getEnv("SCHEDULER_MODE", SchedulerModeTicker)),
		FollowUpPollInterval:     mustDuration(getEnv("FOLLOWUP_POLL_INTERVAL", "60s")),
		FollowUpBatchSize:        mustInt(getEnv("FOLLOWUP_BATCH_SIZE", "100")),
		RedisURL:                 getEnv("REDIS_URL", ""),
		RedisTLSInsecure:         strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:           getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:         mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		MinIOEndpoint:            getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:           getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:           getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:              strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:         mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "26214400")),
		MinioBucketLeadMedia:     getEnv("MINIO_BUCKET_LEAD_MEDIA", "lead-media"),
		WhatsAppURL:              getEnv("WHATSAPP_URL", ""),
		WhatsAppKey:              getEnv("WHATSAPP_KEY", ""),
		WhatsAppDeviceID:         getEnv("WHATSAPP_DEVICE_ID", ""),
		SMTPHost:                 getEnv("SMTP_HOST", ""),
		SMTPPort:                 mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:             getEnv("SMTP_USERNAME", ""),
		SMTPPassword:             getEnv("SMTP_PASSWORD", ""),
		SMTPFromAddress:          getEnv("SMTP_FROM_ADDRESS", ""),
		SMTPFromName:             getEnv("SMTP_FROM_NAME", "Aurora Prime"),
		GeminiAPIKey:             getEnv("GEMINI_API_KEY", ""),
		GeminiModel:              getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		WhisperModelPath:         getEnv("WHISPER_MODEL_PATH", ""),
		WhisperLanguage:          getEnv("WHISPER_LANGUAGE", "pt"),
		ElevenLabsAPIKey:         getEnv("ELEVENLABS_API_KEY", ""),
		ElevenLabsVoiceID:        getEnv("ELEVENLABS_VOICE_ID", "21m00Tcm4TlvDq8ikWAM"),
		PhoneDefaultRegion:       strings.ToUpper(getEnv("PHONE_DEFAULT_REGION", "BR")),
		BrokerSeedFile:           getEnv("BROKER_SEED_FILE", ""),
		ConversationHistoryLimit: mustInt(getEnv("CONVERSATION_HISTORY_LIMIT", "10")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.FollowUpPollInterval <= 0 {
		return nil, fmt.Errorf("FOLLOWUP_POLL_INTERVAL must be a positive duration")
	}
	switch cfg.SchedulerMode {
	case SchedulerModeTicker, SchedulerModeOff:
	case SchedulerModeAsynq:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when SCHEDULER_MODE is asynq")
		}
	default:
		return nil, fmt.Errorf("SCHEDULER_MODE must be one of ticker, asynq, off")
	}
	if cfg.IsSMTPEnabled() && cfg.SMTPFromAddress == "" {
		return nil, fmt.Errorf("SMTP_FROM_ADDRESS is required when SMTP_HOST is set")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

// RequireJWT reports an error when the protected API has no signing secret.
func (c *Config) RequireJWT() error {
	if c.JWTAccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
