package environments

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Valkey   ValkeyConfig
	Provider ProviderConfig
	Notify   NotifyConfig
	LLM      LLMConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port string
}

type StoreConfig struct {
	Driver  string `validate:"required,oneof=fs mysql"`
	DataDir string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type ValkeyConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type ProviderConfig struct {
	AccountSID     string
	AuthToken      string   `validate:"required"`
	WebhookURL     string   `validate:"required,url"`
	AllowedNumbers []string `validate:"required,min=1"`
	MediaTimeout   time.Duration
}

type NotifyConfig struct {
	Email         string `validate:"omitempty,email"`
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	AttachLogFile bool
}

type LLMConfig struct {
	APIURL    string `validate:"required,url"`
	APIKey    string
	Model     string `validate:"required"`
	MaxTokens int    `validate:"gt=0"`
	Timeout   time.Duration
}

type AuthConfig struct {
	APIKey string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: GetEnv("SERVER_PORT", "8080"),
		},
		Store: StoreConfig{
			Driver:  GetEnv("STORE_DRIVER", "fs"),
			DataDir: GetEnv("FS_DATA_DIR", "data"),
		},
		Database: DatabaseConfig{
			Host:     GetEnv("DB_HOST", "localhost"),
			Port:     GetEnv("DB_PORT", "3306"),
			User:     GetEnv("DB_USER", "smsnotes"),
			Password: GetEnv("DB_PASSWORD", ""),
			DBName:   GetEnv("DB_NAME", "sms_notes"),
		},
		Valkey: ValkeyConfig{
			Host:     GetEnv("VALKEY_HOST", "localhost"),
			Port:     GetEnv("VALKEY_PORT", "6379"),
			Password: GetEnv("VALKEY_PASSWORD", ""),
			DB:       GetEnvAsInt("VALKEY_DB", 0),
		},
		Provider: ProviderConfig{
			AccountSID:     GetEnv("PROVIDER_ACCOUNT_SID", ""),
			AuthToken:      GetEnv("PROVIDER_AUTH_TOKEN", ""),
			WebhookURL:     GetEnv("WEBHOOK_URL", ""),
			AllowedNumbers: splitList(GetEnv("ALLOWED_PHONE_NUMBERS", "")),
			MediaTimeout:   time.Duration(GetEnvAsInt("MEDIA_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Notify: NotifyConfig{
			Email:         GetEnv("NOTIFY_EMAIL", ""),
			SMTPHost:      GetEnv("SMTP_HOST", ""),
			SMTPPort:      GetEnvAsInt("SMTP_PORT", 587),
			SMTPUsername:  GetEnv("SMTP_USERNAME", ""),
			SMTPPassword:  GetEnv("SMTP_PASSWORD", ""),
			AttachLogFile: GetEnvAsBool("ATTACH_LOG_FILE", false),
		},
		LLM: LLMConfig{
			APIURL:    GetEnv("LLM_API_URL", "https://api.anthropic.com/v1/messages"),
			APIKey:    GetEnv("LLM_API_KEY", ""),
			Model:     GetEnv("LLM_MODEL", "claude-3-haiku-20240307"),
			MaxTokens: GetEnvAsInt("LLM_MAX_TOKENS", 1024),
			Timeout:   time.Duration(GetEnvAsInt("LLM_TIMEOUT_SECONDS", 60)) * time.Second,
		},
		Auth: AuthConfig{
			APIKey: GetEnv("API_KEY", ""),
		},
	}
}

// Validate enforces the required settings once, at startup. A deployment with
// missing config refuses to boot instead of failing every request.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
