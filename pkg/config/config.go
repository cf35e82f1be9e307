// Package config provides configuration management for the bot.
// It loads environment variables and makes them available throughout the application.
package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	str2duration "github.com/xhit/go-str2duration/v2"
)

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	BotToken string
	GuildID  int64

	// MongoDB
	MongoDBURL string
	DBName     string
	DBPoolSize int

	// Behavior
	DebugMode bool
	LogLevel  string

	// Economy
	StartingCoins       int64
	MaxBankBalance      int64
	MaxSavingsBalance   int64
	TransferCap         int64
	SavingsInterestRate float64
	WorkCooldown        time.Duration
	DailyCooldown       time.Duration
	XPCooldown          time.Duration
	CacheTTL            time.Duration

	// Backups
	BackupDir      string
	BackupInterval time.Duration
	MaxBackups     int

	// Tickets
	TicketCategoryID int64
	AdminRoleID      int64
	StaffRoleNames   []string

	// Feature flags
	EnableEconomy      bool
	EnablePets         bool
	EnableStocks       bool
	EnableAIFeatures   bool
	EnableBetaFeatures bool
	EnableWeb          bool
	EnableMQTT         bool

	// MQTT
	MQTTHost     string
	MQTTPort     string
	MQTTUser     string
	MQTTPassword string

	// Web Server
	Port string

	// Environment
	Environment string

	// Webhooks
	ErrorWebhook string
	LogsWebhook  string
}

var (
	Version   = "Dev-Local"
	BuildTime = "Today"
)

// cfg holds the global configuration instance
var (
	cfg     *Config
	cfgOnce sync.Once
)

// resetForTesting resets the configuration for testing purposes.
// This function should only be called from test code.
func resetForTesting() {
	cfg = nil
	cfgOnce = sync.Once{}
}

// loadConfig performs the actual configuration loading
func loadConfig() {
	// Load .env file if it exists (ignoring error if it doesn't)
	_ = godotenv.Load()

	cfg = &Config{
		BotToken: getEnv("botToken", ""),
		GuildID:  getEnvInt64("guildId", 0),

		MongoDBURL: getEnv("mongodbUrl", "mongodb://localhost:27017"),
		DBName:     getEnv("dbName", "CoalBot"),
		DBPoolSize: int(getEnvInt64("dbPoolSize", 100)),

		DebugMode: getEnvBool("debugMode", false),
		LogLevel:  getEnv("logLevel", "info"),

		StartingCoins:       getEnvInt64("startingCoins", 100),
		MaxBankBalance:      getEnvInt64("maxBankBalance", 1_000_000),
		MaxSavingsBalance:   getEnvInt64("maxSavingsBalance", 500_000),
		TransferCap:         getEnvInt64("transferCap", 50_000),
		SavingsInterestRate: getEnvFloat("savingsInterestRate", 0.02),
		WorkCooldown:        getEnvDuration("workCooldown", time.Hour),
		DailyCooldown:       getEnvDuration("dailyCooldown", 22*time.Hour),
		XPCooldown:          getEnvDuration("xpCooldown", time.Minute),
		CacheTTL:            getEnvDuration("cacheTTL", 5*time.Minute),

		BackupDir:      getEnv("backupDir", "./backups"),
		BackupInterval: getEnvDuration("backupInterval", time.Hour),
		MaxBackups:     int(getEnvInt64("maxBackups", 24)),

		TicketCategoryID: getEnvInt64("ticketCategoryId", 0),
		AdminRoleID:      getEnvInt64("adminRoleId", 0),
		StaffRoleNames:   getEnvList("staffRoleNames", "admin,moderator,mod,staff,support,helper,lead moderator,overseer,forgotten one"),

		EnableEconomy:      getEnvBool("enableEconomy", true),
		EnablePets:         getEnvBool("enablePets", true),
		EnableStocks:       getEnvBool("enableStocks", true),
		EnableAIFeatures:   getEnvBool("enableAIFeatures", false),
		EnableBetaFeatures: getEnvBool("enableBetaFeatures", false),
		EnableWeb:          getEnvBool("enableWeb", true),
		EnableMQTT:         getEnvBool("enableMQTT", false),

		MQTTHost:     getEnv("MQTT_Host", "localhost"),
		MQTTPort:     getEnv("MQTT_Port", "1883"),
		MQTTUser:     getEnv("MQTT_User", ""),
		MQTTPassword: getEnv("MQTT_Password", ""),

		Port: getEnv("PORT", "3000"),

		Environment: getEnv("environment", "dev"),

		ErrorWebhook: getEnv("errorWebhook", ""),
		LogsWebhook:  getEnv("logsWebhook", ""),
	}
}

// Load initializes the configuration from environment variables
func Load() (*Config, error) {
	cfgOnce.Do(loadConfig)
	return cfg, nil
}

// Get returns the current configuration
func Get() *Config {
	// Use sync.Once to ensure thread-safe initialization if Load wasn't called
	cfgOnce.Do(loadConfig)
	return cfg
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration parses human-friendly durations like "22h" or "1d12h".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := str2duration.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// IsProd returns true if the environment is production
func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}
