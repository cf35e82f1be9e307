package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	os.Setenv("botToken", "test-token")
	os.Setenv("PORT", "3001")
	os.Setenv("environment", "test")
	defer func() {
		os.Unsetenv("botToken")
		os.Unsetenv("PORT")
		os.Unsetenv("environment")
	}()

	resetForTesting()

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if config.BotToken != "test-token" {
		t.Errorf("BotToken = %v, want %v", config.BotToken, "test-token")
	}

	if config.Port != "3001" {
		t.Errorf("Port = %v, want %v", config.Port, "3001")
	}

	if config.Environment != "test" {
		t.Errorf("Environment = %v, want %v", config.Environment, "test")
	}
}

func TestDefaultValues(t *testing.T) {
	os.Unsetenv("botToken")
	os.Unsetenv("mongodbUrl")
	os.Unsetenv("dbName")
	os.Unsetenv("startingCoins")
	os.Unsetenv("dailyCooldown")
	os.Unsetenv("maxBackups")
	os.Unsetenv("PORT")
	os.Unsetenv("environment")

	resetForTesting()
	config, _ := Load()

	if config.MongoDBURL != "mongodb://localhost:27017" {
		t.Errorf("MongoDBURL default = %v", config.MongoDBURL)
	}

	if config.DBName != "CoalBot" {
		t.Errorf("DBName default = %v", config.DBName)
	}

	if config.StartingCoins != 100 {
		t.Errorf("StartingCoins default = %v, want 100", config.StartingCoins)
	}

	if config.DailyCooldown != 22*time.Hour {
		t.Errorf("DailyCooldown default = %v, want 22h", config.DailyCooldown)
	}

	if config.MaxBackups != 24 {
		t.Errorf("MaxBackups default = %v, want 24", config.MaxBackups)
	}

	if config.SavingsInterestRate != 0.02 {
		t.Errorf("SavingsInterestRate default = %v, want 0.02", config.SavingsInterestRate)
	}

	if len(config.StaffRoleNames) == 0 {
		t.Error("StaffRoleNames default should not be empty")
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"22h", 22 * time.Hour},
		{"1d", 24 * time.Hour},
		{"90s", 90 * time.Second},
		{"garbage", 5 * time.Minute}, // falls back to default
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			os.Setenv("TEST_DURATION", tt.value)
			defer os.Unsetenv("TEST_DURATION")

			if got := getEnvDuration("TEST_DURATION", 5*time.Minute); got != tt.want {
				t.Errorf("getEnvDuration(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestGetEnvList(t *testing.T) {
	os.Setenv("TEST_LIST", "admin, mod ,staff")
	defer os.Unsetenv("TEST_LIST")

	got := getEnvList("TEST_LIST", "")
	if len(got) != 3 || got[0] != "admin" || got[1] != "mod" || got[2] != "staff" {
		t.Errorf("getEnvList() = %v", got)
	}
}

func TestIsProd(t *testing.T) {
	resetForTesting()
	os.Setenv("environment", "prod")
	config, _ := Load()

	if !config.IsProd() {
		t.Error("IsProd() should return true when environment is 'prod'")
	}

	resetForTesting()
	os.Setenv("environment", "dev")
	config, _ = Load()

	if config.IsProd() {
		t.Error("IsProd() should return false when environment is not 'prod'")
	}

	os.Unsetenv("environment")
}
