package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Store backends selectable via STORE_BACKEND.
const (
	StoreBackendSheets   = "sheets"
	StoreBackendPostgres = "postgres"
	StoreBackendMemory   = "memory"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Sheets   SheetsConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	AWS      AWSConfig
	Email    EmailConfig
	Staff    StaffConfig
	Checkin  CheckinConfig
	OTP      OTPConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// StoreConfig selects the registration row store backend.
type StoreConfig struct {
	Backend string // sheets | postgres | memory
}

// SheetsConfig identifies the spreadsheet acting as the system of record.
// Tab names must match the deployed sheet; the column layout is positional.
type SheetsConfig struct {
	SpreadsheetID   string
	CredentialsFile string // Google service account JSON key path
	RegistrationTab string
	ControlTab      string
	TemplateTab     string
	FailLogTab      string
}

// DatabaseConfig holds PostgreSQL connection settings for the alternative store.
type DatabaseConfig struct {
	URL      string // if set, used as-is; otherwise built from components
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings. An empty Addr disables Redis:
// the OTP ledger falls back to process memory and confirmation emails are
// dispatched without the job queue.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds signing settings for staff session tokens.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// AWSConfig holds credentials for the optional S3 QR image store and SES.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	QRBucket             string
	PresignExpireMinutes int
}

// EmailConfig selects and configures the mail transport.
// Transport "smtp" uses SMTPHost and friends; "ses" uses the AWS section.
type EmailConfig struct {
	Transport   string
	FromAddress string
	FromName    string
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
}

// StaffConfig holds the shared staff credential. If PasswordHash is set it is
// compared with bcrypt; otherwise Password is compared directly.
type StaffConfig struct {
	Password     string
	PasswordHash string
}

// CheckinConfig holds the symmetric secret behind the check-in token codec.
type CheckinConfig struct {
	TokenSecret string
}

// OTPConfig controls one-time code lifetime. TTLMinutes 0 keeps codes live
// until consumed or replaced.
type OTPConfig struct {
	TTLMinutes int
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	readTimeout, _ := strconv.Atoi(getEnv("READ_TIMEOUT_SEC", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT_SEC", "30"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	jwtExpire, _ := strconv.Atoi(getEnv("JWT_EXPIRE_HOURS", "12"))

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", StoreBackendSheets),
		},
		Sheets: SheetsConfig{
			SpreadsheetID:   getEnv("SHEETS_SPREADSHEET_ID", ""),
			CredentialsFile: getEnv("SHEETS_CREDENTIALS_FILE", ""),
			RegistrationTab: getEnv("SHEETS_REGISTRATION_TAB", "Registrations"),
			ControlTab:      getEnv("SHEETS_CONTROL_TAB", "SystemControl"),
			TemplateTab:     getEnv("SHEETS_TEMPLATE_TAB", "EmailTemplate"),
			FailLogTab:      getEnv("SHEETS_FAILLOG_TAB", "EmailFailures"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "registrations"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: jwtExpire,
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			QRBucket:             getEnv("AWS_S3_QR_BUCKET", ""),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 10080),
		},
		Email: EmailConfig{
			Transport:   getEnv("EMAIL_TRANSPORT", "smtp"),
			FromAddress: getEnv("EMAIL_FROM_ADDRESS", "cornerstone.backend@gmail.com"),
			FromName:    getEnv("EMAIL_FROM_NAME", "Do not reply - Automatic email of Cornerstone Fellowship"),
			SMTPHost:    getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:    getEnvInt("SMTP_PORT", 465),
			SMTPUser:    getEnv("SMTP_USER", ""),
			SMTPPass:    getEnv("SMTP_PASS", ""),
		},
		Staff: StaffConfig{
			Password:     getEnv("STAFF_PASSWORD", ""),
			PasswordHash: getEnv("STAFF_PASSWORD_HASH", ""),
		},
		Checkin: CheckinConfig{
			TokenSecret: getEnv("CHECKIN_TOKEN_SECRET", ""),
		},
		OTP: OTPConfig{
			TTLMinutes: getEnvInt("OTP_TTL_MINUTES", 10),
		},
	}

	if cfg.Checkin.TokenSecret == "" {
		return nil, fmt.Errorf("CHECKIN_TOKEN_SECRET is required")
	}
	if cfg.Staff.Password == "" && cfg.Staff.PasswordHash == "" {
		return nil, fmt.Errorf("STAFF_PASSWORD or STAFF_PASSWORD_HASH is required")
	}
	if cfg.Store.Backend == StoreBackendSheets && cfg.Sheets.SpreadsheetID == "" {
		return nil, fmt.Errorf("SHEETS_SPREADSHEET_ID is required for the sheets store")
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
