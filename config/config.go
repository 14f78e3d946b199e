package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	Database Database
	Auth     Auth
	Business Business
	Broker   Broker
	SMTP     SMTP
	Logging  Logging
	Uploads  Uploads
	Firebase Firebase
	Telr     Telr
}

type Database struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// DSN prefers DATABASE_URL and falls back to the discrete DB_* settings.
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		d.Host, d.User, d.Password, d.Name, d.Port,
	)
}

type Auth struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// MaxReservationMinutes caps how long one booking may hold a table.
const MaxReservationMinutes = 6 * 60

// Business holds the knobs that change how orders and reservations are priced and booked.
type Business struct {
	Location           *time.Location
	ServiceFeeRate     float64
	StrictZoneFees     bool
	ReservationMinutes int
}

type Broker struct {
	URL      string
	Exchange string
	Queue    string
}

type SMTP struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

func (s SMTP) Enabled() bool { return s.Host != "" && s.From != "" }

type Logging struct {
	Level string
	File  string
}

type Uploads struct {
	Dir        string
	BackupDir  string
	PublicBase string
}

type Firebase struct {
	CredentialsJSON string
	ProjectID       string
}

func (f Firebase) Enabled() bool { return f.CredentialsJSON != "" && f.ProjectID != "" }

type Telr struct {
	StoreID       int
	AuthKey       string
	APIURL        string
	Mode          string
	WebhookSecret string
	SuccessURL    string
	FailureURL    string
	CancelURL     string
	Currency      string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	loc, err := time.LoadLocation(getEnv("RESTAURANT_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("RESTAURANT_TIMEZONE: %w", err)
	}

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Database: Database{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
		Auth: Auth{
			JWTSecret: os.Getenv("JWT_SECRET"),
			TokenTTL:  time.Duration(getInt("JWT_TTL_HOURS", 24)) * time.Hour,
		},
		Business: Business{
			Location:           loc,
			ServiceFeeRate:     getFloat("SERVICE_FEE_RATE", 0.05),
			StrictZoneFees:     getBool("STRICT_ZONE_FEES", false),
			ReservationMinutes: getInt("DEFAULT_RESERVATION_MINUTES", 90),
		},
		Broker: Broker{
			URL:      os.Getenv("AMQP_URL"),
			Exchange: getEnv("NOTIFICATION_EXCHANGE", "notifications_fanout"),
			Queue:    getEnv("NOTIFICATION_QUEUE", "notifications_queue"),
		},
		SMTP: SMTP{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnv("SMTP_PORT", "587"),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
		Logging: Logging{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  os.Getenv("LOG_FILE"),
		},
		Uploads: Uploads{
			Dir:        getEnv("UPLOADS_DIR", "./uploads"),
			BackupDir:  getEnv("BACKUP_DIR", "./backup/uploads"),
			PublicBase: getEnv("PUBLIC_BASE_URL", ""),
		},
		Firebase: Firebase{
			CredentialsJSON: os.Getenv("FIREBASE_CREDENTIALS_JSON"),
			ProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		},
		Telr: Telr{
			StoreID:       getInt("TELR_STORE_ID", 0),
			AuthKey:       os.Getenv("TELR_AUTH_KEY"),
			APIURL:        getEnv("TELR_API_URL", "https://secure.telr.com/gateway/order.json"),
			Mode:          strings.ToLower(os.Getenv("TELR_MODE")),
			WebhookSecret: os.Getenv("TELR_WEBHOOK_SECRET"),
			SuccessURL:    os.Getenv("TELR_SUCCESS_URL"),
			FailureURL:    os.Getenv("TELR_FAILURE_URL"),
			CancelURL:     os.Getenv("TELR_CANCEL_URL"),
			Currency:      getEnv("TELR_CURRENCY", "LKR"),
		},
	}
	return cfg, nil
}

// Validate checks the settings the API server cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL_HOURS must be > 0"))
	}
	if c.Business.ServiceFeeRate < 0 || c.Business.ServiceFeeRate > 1 {
		errs = append(errs, errors.New("SERVICE_FEE_RATE must be within [0, 1]"))
	}
	if c.Business.ReservationMinutes <= 0 || c.Business.ReservationMinutes > MaxReservationMinutes {
		errs = append(errs, fmt.Errorf("DEFAULT_RESERVATION_MINUTES must be within [1, %d]", MaxReservationMinutes))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}
