package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	Twilio   TwilioConfig
	Booking  BookingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	AutoMigrate bool
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	Issuer        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// SMTPConfig configures the notification mailer. An empty Host disables it.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// Enabled reports whether outbound mail is configured
func (c SMTPConfig) Enabled() bool { return c.Host != "" }

// TwilioConfig configures guest SMS. Empty credentials disable it.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

// Enabled reports whether SMS sending is configured
func (c TwilioConfig) Enabled() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.FromNumber != ""
}

// BookingConfig is the booking policy block. It can come from a TOML file
// (CONFIG_FILE) and is then overridden by BOOKING_* variables.
type BookingConfig struct {
	Timezone           string  `toml:"timezone"`
	NearbyRadiusKm     float64 `toml:"nearby_radius_km"`
	TurnResetSchedule  string  `toml:"turn_reset_schedule"`
	ChatPreviewLength  int     `toml:"chat_preview_length"`
	QueueRetryAttempts int     `toml:"queue_retry_attempts"`

	location *time.Location
}

// Location returns the timezone used to decide what "today" is
func (c BookingConfig) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

type fileConfig struct {
	Booking BookingConfig `toml:"booking"`
}

var decodeFile = func(path string, v interface{}) error {
	_, err := toml.DecodeFile(path, v)
	return err
}

// DefaultBooking returns the built-in booking policy
func DefaultBooking() BookingConfig {
	return BookingConfig{
		Timezone:           "UTC",
		NearbyRadiusKm:     50,
		TurnResetSchedule:  "0 0 * * *",
		ChatPreviewLength:  100,
		QueueRetryAttempts: 5,
		location:           time.UTC,
	}
}

// Load loads configuration from the optional TOML file and the environment
func Load() (*Config, error) {
	booking := DefaultBooking()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fc := fileConfig{Booking: booking}
		if err := decodeFile(path, &fc); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		booking = fc.Booking
	}

	booking.Timezone = getEnv("BOOKING_TIMEZONE", booking.Timezone)
	booking.NearbyRadiusKm = getEnvAsFloat("BOOKING_NEARBY_RADIUS_KM", booking.NearbyRadiusKm)
	booking.TurnResetSchedule = getEnv("BOOKING_TURN_RESET_SCHEDULE", booking.TurnResetSchedule)
	booking.ChatPreviewLength = getEnvAsInt("BOOKING_CHAT_PREVIEW_LENGTH", booking.ChatPreviewLength)
	booking.QueueRetryAttempts = getEnvAsInt("BOOKING_QUEUE_RETRY_ATTEMPTS", booking.QueueRetryAttempts)

	loc, err := time.LoadLocation(booking.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid booking timezone %q: %w", booking.Timezone, err)
	}
	booking.location = loc
	if booking.QueueRetryAttempts < 1 {
		booking.QueueRetryAttempts = 1
	}

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Env:            getEnv("SERVER_ENV", "development"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnvAsInt("DB_PORT", 5432),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "barberq"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			Issuer:        getEnv("JWT_ISSUER", "barberq"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@barberq.local"),
			FromName: getEnv("SMTP_FROM_NAME", "BarberQ"),
		},
		Twilio: TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
		},
		Booking: booking,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
