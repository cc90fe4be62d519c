package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Jobs      JobsConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

// JobsConfig holds the cron schedules and log sinks of the batch jobs
type JobsConfig struct {
	HeartbeatSchedule string
	ReminderSchedule  string
	ReportSchedule    string
	RestockSchedule   string

	RestockAmount  int
	ReminderWindow time.Duration

	HeartbeatLog string
	ReminderLog  string
	ReportLog    string
	RestockLog   string
}

func Load() *Config {
	// Populate the process environment from .env so goose and friends see it too
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env into environment: %v", err)
	}

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("SERVER_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("RATE_LIMIT_ENABLED", false)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_WINDOW", "1m")
	viper.SetDefault("JOB_HEARTBEAT_SCHEDULE", "*/5 * * * *")
	viper.SetDefault("JOB_REMINDER_SCHEDULE", "0 8 * * *")
	viper.SetDefault("JOB_REPORT_SCHEDULE", "0 6 * * 1")
	viper.SetDefault("JOB_RESTOCK_SCHEDULE", "0 */12 * * *")
	viper.SetDefault("JOB_RESTOCK_AMOUNT", 10)
	viper.SetDefault("JOB_REMINDER_WINDOW", "168h")
	viper.SetDefault("JOB_HEARTBEAT_LOG", "/tmp/crm_heartbeat_log.txt")
	viper.SetDefault("JOB_REMINDER_LOG", "/tmp/order_reminders_log.txt")
	viper.SetDefault("JOB_REPORT_LOG", "/tmp/crm_report_log.txt")
	viper.SetDefault("JOB_RESTOCK_LOG", "/tmp/low_stock_updates_log.txt")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			AllowedOrigins: splitList(viper.GetString("SERVER_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Enabled:  viper.GetBool("RATE_LIMIT_ENABLED"),
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   viper.GetDuration("RATE_LIMIT_WINDOW"),
		},
		Jobs: JobsConfig{
			HeartbeatSchedule: viper.GetString("JOB_HEARTBEAT_SCHEDULE"),
			ReminderSchedule:  viper.GetString("JOB_REMINDER_SCHEDULE"),
			ReportSchedule:    viper.GetString("JOB_REPORT_SCHEDULE"),
			RestockSchedule:   viper.GetString("JOB_RESTOCK_SCHEDULE"),
			RestockAmount:     viper.GetInt("JOB_RESTOCK_AMOUNT"),
			ReminderWindow:    viper.GetDuration("JOB_REMINDER_WINDOW"),
			HeartbeatLog:      viper.GetString("JOB_HEARTBEAT_LOG"),
			ReminderLog:       viper.GetString("JOB_REMINDER_LOG"),
			ReportLog:         viper.GetString("JOB_REPORT_LOG"),
			RestockLog:        viper.GetString("JOB_RESTOCK_LOG"),
		},
	}
}

// IsDevelopment reports whether the server runs outside production
func (s ServerConfig) IsDevelopment() bool {
	return s.Env != "production"
}

// DSN builds the pgx connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.Schema)
}

// Addr returns the host:port of the Redis server
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
