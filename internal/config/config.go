// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"
	_ "time/tzdata" // NOTIFY_TIMEZONE must resolve in minimal images

	"github.com/spf13/viper"
)

// Notifier kinds accepted by NOTIFIER.
const (
	NotifierTelegram = "telegram"
	NotifierSMS      = "sms"
	NotifierDev      = "dev"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP API listens on (e.g. :8000).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// GRPCAddr is the address of the gRPC health/identity server. Empty disables it.
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// OTPTTL is the OTP validity window (e.g. "5m").
	OTPTTL string `mapstructure:"OTP_TTL"`
	// NotifyTimeout bounds a single notifier dispatch (e.g. "10s").
	NotifyTimeout string `mapstructure:"NOTIFY_TIMEOUT"`
	// Notifier selects the OTP delivery channel: telegram, sms or dev.
	Notifier string `mapstructure:"NOTIFIER"`
	// OTPReturnToClient enables dev OTP mode: codes are captured in memory and served at
	// GET /dev/company-auth/otp. Must not be true when Env is production.
	OTPReturnToClient bool `mapstructure:"OTP_RETURN_TO_CLIENT"`
	// OTPSweepInterval enables periodic purge of expired OTP rows when > 0 (e.g. "1m").
	OTPSweepInterval string `mapstructure:"OTP_SWEEP_INTERVAL"`

	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string `mapstructure:"TELEGRAM_CHAT_ID"`
	TelegramThreadID int    `mapstructure:"TELEGRAM_THREAD_ID"`
	TelegramBaseURL  string `mapstructure:"TELEGRAM_BASE_URL"`
	// NotifyTimezone is the IANA zone used to render the expiry clock time in OTP messages.
	NotifyTimezone string `mapstructure:"NOTIFY_TIMEZONE"`

	// SMSLocalAPIKey is the API key for SMS Local. Required when NOTIFIER=sms.
	SMSLocalAPIKey string `mapstructure:"SMS_LOCAL_API_KEY"`
	// SMSLocalSender is the optional sender ID for SMS Local.
	SMSLocalSender string `mapstructure:"SMS_LOCAL_SENDER"`
	// SMSLocalBaseURL is the SMS Local API base URL.
	SMSLocalBaseURL string `mapstructure:"SMS_LOCAL_BASE_URL"`

	// RedisAddr enables OTP issuance rate limiting when set (e.g. "localhost:6379").
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	// OTPRateLimit is the max number of OTP issuances per company per OTPRateWindow.
	OTPRateLimit  int    `mapstructure:"OTP_RATE_LIMIT"`
	OTPRateWindow string `mapstructure:"OTP_RATE_WINDOW"`

	// StaffJWTPublicKey is the PEM public key (or path) used to verify staff access tokens.
	// Empty disables staff identity resolution.
	StaffJWTPublicKey string `mapstructure:"STAFF_JWT_PUBLIC_KEY"`
	StaffJWTIssuer    string `mapstructure:"STAFF_JWT_ISSUER"`
	StaffJWTAudience  string `mapstructure:"STAFF_JWT_AUDIENCE"`

	OTLPEndpoint   string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure   bool   `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	ServiceName    string `mapstructure:"OTEL_SERVICE_NAME"`
	ServiceVersion string `mapstructure:"OTEL_SERVICE_VERSION"`

	// TelemetryKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	TelemetryKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// TelemetryKafkaTopic is the Kafka topic for company-auth events.
	TelemetryKafkaTopic string `mapstructure:"TELEMETRY_KAFKA_TOPIC"`
	// KafkaGroupID is the consumer group ID for the event worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
	// LokiURL is where the worker pushes events (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8000")
	v.SetDefault("GRPC_ADDR", ":8081")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("OTP_TTL", "5m")
	v.SetDefault("NOTIFY_TIMEOUT", "10s")
	v.SetDefault("NOTIFIER", NotifierTelegram)
	v.SetDefault("OTP_RETURN_TO_CLIENT", false)
	v.SetDefault("OTP_SWEEP_INTERVAL", "0")
	v.SetDefault("TELEGRAM_BOT_TOKEN", "")
	v.SetDefault("TELEGRAM_CHAT_ID", "")
	v.SetDefault("TELEGRAM_THREAD_ID", 0)
	v.SetDefault("TELEGRAM_BASE_URL", "https://api.telegram.org")
	v.SetDefault("NOTIFY_TIMEZONE", "Asia/Tashkent")
	v.SetDefault("SMS_LOCAL_API_KEY", "")
	v.SetDefault("SMS_LOCAL_SENDER", "")
	v.SetDefault("SMS_LOCAL_BASE_URL", "https://app.smslocal.in/api/smsapi")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("OTP_RATE_LIMIT", 5)
	v.SetDefault("OTP_RATE_WINDOW", "10m")
	v.SetDefault("STAFF_JWT_PUBLIC_KEY", "")
	v.SetDefault("STAFF_JWT_ISSUER", "staffflow-auth")
	v.SetDefault("STAFF_JWT_AUDIENCE", "staffflow-api")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "staffflow-backend")
	v.SetDefault("OTEL_SERVICE_VERSION", "dev")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("TELEMETRY_KAFKA_TOPIC", "staffflow-company-auth")
	v.SetDefault("KAFKA_GROUP_ID", "staffflow-auth-worker")
	v.SetDefault("LOKI_URL", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.OTPReturnToClient && cfg.Env == "production" {
		return nil, errors.New("config: OTP_RETURN_TO_CLIENT must not be true when APP_ENV=production")
	}
	cfg.Notifier = strings.ToLower(strings.TrimSpace(cfg.Notifier))
	switch cfg.Notifier {
	case NotifierTelegram, NotifierSMS, NotifierDev:
	default:
		return nil, errors.New("config: NOTIFIER must be one of telegram, sms, dev")
	}
	if cfg.Notifier == NotifierDev && cfg.Env == "production" {
		return nil, errors.New("config: NOTIFIER=dev must not be used when APP_ENV=production")
	}
	if d, err := time.ParseDuration(cfg.OTPTTL); err != nil || d <= 0 {
		return nil, errors.New("config: OTP_TTL must be a positive duration")
	}
	if _, err := time.LoadLocation(cfg.NotifyTimezone); err != nil {
		return nil, errors.New("config: NOTIFY_TIMEZONE must be a valid IANA time zone")
	}
	if cfg.OTPRateLimit < 0 {
		return nil, errors.New("config: OTP_RATE_LIMIT must not be negative")
	}

	return &cfg, nil
}

// OTPTTLDuration parses OTPTTL. Returns 5m if unset or invalid.
func (c *Config) OTPTTLDuration() time.Duration {
	return parseDuration(c.OTPTTL, 5*time.Minute)
}

// NotifyTimeoutDuration parses NotifyTimeout. Returns 10s if unset or invalid.
func (c *Config) NotifyTimeoutDuration() time.Duration {
	return parseDuration(c.NotifyTimeout, 10*time.Second)
}

// SweepIntervalDuration parses OTPSweepInterval. Returns 0 (disabled) if unset or invalid.
func (c *Config) SweepIntervalDuration() time.Duration {
	return parseDuration(c.OTPSweepInterval, 0)
}

// OTPRateWindowDuration parses OTPRateWindow. Returns 10m if unset or invalid.
func (c *Config) OTPRateWindowDuration() time.Duration {
	return parseDuration(c.OTPRateWindow, 10*time.Minute)
}

// TelemetryKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if event publishing is enabled (non-empty list) and to create the producer.
func (c *Config) TelemetryKafkaBrokersList() []string {
	if c == nil || c.TelemetryKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.TelemetryKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// NotifyLocation returns the location for NotifyTimezone, or UTC if it cannot be loaded.
func (c *Config) NotifyLocation() *time.Location {
	loc, err := time.LoadLocation(c.NotifyTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
