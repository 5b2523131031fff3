package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	MatchContractID    = "id-substring"
	MatchContractParty = "party"
)

const (
	ActivateWhenSigned = "signed"
	ActivateDraftOnly  = "draft-only"
)

type Config struct {
	AppEnv            string
	Port              string
	AllowedOrigins    string
	LogLevel          string
	LogFormat         string
	DemoUserID        string
	ContractMatchMode string
	ActivationMode    string
	KafkaBrokers      []string
	KafkaTopicPrefix  string
	ShutdownTimeout   time.Duration
}

// Load reads the process environment. A .env file in the working directory is
// applied first; variables already set in the environment take precedence.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "*"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
		DemoUserID:        getEnv("DEMO_USER_ID", "user123"),
		ContractMatchMode: getMatchMode("CONTRACT_MATCH_MODE"),
		ActivationMode:    getActivationMode("CONTRACT_ACTIVATION_MODE"),
		KafkaBrokers:      getList("KAFKA_BROKERS"),
		KafkaTopicPrefix:  getEnv("KAFKA_TOPIC_PREFIX", "peerlend"),
		ShutdownTimeout:   getSeconds("SHUTDOWN_TIMEOUT_SECONDS", 10),
	}
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getSeconds(key string, fallbackSeconds int) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return time.Duration(fallbackSeconds) * time.Second
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return time.Duration(fallbackSeconds) * time.Second
	}
	return time.Duration(parsed) * time.Second
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getMatchMode(key string) string {
	switch strings.ToLower(getEnv(key, MatchContractID)) {
	case MatchContractParty:
		return MatchContractParty
	default:
		return MatchContractID
	}
}

func getActivationMode(key string) string {
	if strings.EqualFold(getEnv(key, ActivateWhenSigned), ActivateDraftOnly) {
		return ActivateDraftOnly
	}
	return ActivateWhenSigned
}
