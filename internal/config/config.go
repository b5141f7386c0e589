package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type AppCfg struct {
	Env         string
	Port        string
	LogLevel    string
	Institution string
}

type DBCfg struct{ DSN string }

type RedisCfg struct {
	Addr     string
	Password string
	DB       int
}

type SecurityCfg struct {
	JWTSecret       string
	TokenTTL        time.Duration
	AdminSecretKey  string // required in body of POST /admin/register
	RateLimitPerMin int
	AllowedOrigins  []string
}

// GatewayCfg holds the payment gateway credentials.
type GatewayCfg struct {
	KeyID      string
	KeySecret  string
	BaseURL    string
	Currency   string
	TimeoutSec int
}

type MailCfg struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	Workers    int
	QueueSize  int
	MaxRetries uint64
}

type Cfg struct {
	App     AppCfg
	DB      DBCfg
	Redis   RedisCfg
	Sec     SecurityCfg
	Gateway GatewayCfg
	Mail    MailCfg
}

// Load reads .env (if present) and the process environment. It exits the
// process when a required setting is missing.
func Load() Cfg {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("could not parse .env")
	}

	viper.AutomaticEnv()
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("APP_PORT", "5000")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("INSTITUTION_NAME", "Educate Me")
	viper.SetDefault("TZ", "Asia/Kolkata")
	viper.SetDefault("JWT_TTL", "720h")
	viper.SetDefault("RATE_LIMIT_PER_MIN", 300)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173,https://educate-me.in")
	viper.SetDefault("RAZORPAY_BASE_URL", "https://api.razorpay.com")
	viper.SetDefault("PAYMENT_CURRENCY", "INR")
	viper.SetDefault("RAZORPAY_TIMEOUT_SEC", 20)
	viper.SetDefault("SMTP_HOST", "smtp-relay.brevo.com")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("MAIL_WORKERS", 2)
	viper.SetDefault("MAIL_QUEUE_SIZE", 100)
	viper.SetDefault("MAIL_MAX_RETRIES", 3)

	if tz := viper.GetString("TZ"); tz != "" {
		os.Setenv("TZ", tz)
	}

	cfg := Cfg{
		App: AppCfg{
			Env:         viper.GetString("APP_ENV"),
			Port:        viper.GetString("APP_PORT"),
			LogLevel:    viper.GetString("LOG_LEVEL"),
			Institution: viper.GetString("INSTITUTION_NAME"),
		},
		DB: DBCfg{DSN: viper.GetString("DB_DSN")},
		Redis: RedisCfg{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Sec: SecurityCfg{
			JWTSecret:       viper.GetString("JWT_SECRET"),
			TokenTTL:        viper.GetDuration("JWT_TTL"),
			AdminSecretKey:  strings.TrimSpace(viper.GetString("ADMIN_REGISTRATION_KEY")),
			RateLimitPerMin: viper.GetInt("RATE_LIMIT_PER_MIN"),
			AllowedOrigins:  splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Gateway: GatewayCfg{
			KeyID:      viper.GetString("RAZORPAY_KEY_ID"),
			KeySecret:  viper.GetString("RAZORPAY_KEY_SECRET"),
			BaseURL:    viper.GetString("RAZORPAY_BASE_URL"),
			Currency:   strings.ToUpper(viper.GetString("PAYMENT_CURRENCY")),
			TimeoutSec: viper.GetInt("RAZORPAY_TIMEOUT_SEC"),
		},
		Mail: MailCfg{
			Host:       viper.GetString("SMTP_HOST"),
			Port:       viper.GetInt("SMTP_PORT"),
			Username:   viper.GetString("BREVO_SMTP_USER"),
			Password:   viper.GetString("BREVO_SMTP_KEY"),
			From:       viper.GetString("MAIL_FROM"),
			Workers:    viper.GetInt("MAIL_WORKERS"),
			QueueSize:  viper.GetInt("MAIL_QUEUE_SIZE"),
			MaxRetries: uint64(viper.GetInt("MAIL_MAX_RETRIES")),
		},
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	return cfg
}

// Validate checks the settings the server cannot start without.
func (c Cfg) Validate() error {
	var missing []string
	if c.DB.DSN == "" {
		missing = append(missing, "DB_DSN")
	}
	if c.Sec.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.Gateway.KeyID == "" {
		missing = append(missing, "RAZORPAY_KEY_ID")
	}
	if c.Gateway.KeySecret == "" {
		missing = append(missing, "RAZORPAY_KEY_SECRET")
	}
	if len(missing) > 0 {
		return errors.New("missing required settings: " + strings.Join(missing, ", "))
	}
	if c.Sec.TokenTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.Mail.Workers <= 0 || c.Mail.QueueSize <= 0 {
		return errors.New("MAIL_WORKERS and MAIL_QUEUE_SIZE must be positive")
	}
	return nil
}

// MailEnabled reports whether SMTP credentials were provided.
func (c Cfg) MailEnabled() bool {
	return c.Mail.Username != "" && c.Mail.Password != ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
