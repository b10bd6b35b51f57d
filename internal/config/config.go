package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string

	// Agent identity
	AgentID   string
	AgentName string

	// Workstation behavior
	ACWDuration     time.Duration
	QueueGraceDelay time.Duration
	BackendBaseURL  string // empty runs the workstation in local-only mode

	// Call recording
	RecordingEnabled        bool
	RecordingRequireConsent bool
	RecordingAutoStart      bool

	// WebSocket
	WSReadTimeout  time.Duration
	WSWriteTimeout time.Duration
	PingPeriod     time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AgentID:        getEnv("AGENT_ID", "agent-1"),
		AgentName:      getEnv("AGENT_NAME", "Agent"),
		BackendBaseURL: getEnv("CALL_BACKEND_URL", ""),

		RecordingEnabled:        getEnvBool("RECORDING_ENABLED", true),
		RecordingRequireConsent: getEnvBool("RECORDING_REQUIRE_CONSENT", true),
		RecordingAutoStart:      getEnvBool("RECORDING_AUTO_START", true),
	}

	acwSeconds, err := strconv.Atoi(getEnv("ACW_DURATION_SECONDS", "120"))
	if err != nil {
		return nil, fmt.Errorf("invalid ACW_DURATION_SECONDS: %w", err)
	}
	config.ACWDuration = time.Duration(acwSeconds) * time.Second

	graceMillis, err := strconv.Atoi(getEnv("QUEUE_GRACE_DELAY_MS", "1000"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUEUE_GRACE_DELAY_MS: %w", err)
	}
	config.QueueGraceDelay = time.Duration(graceMillis) * time.Millisecond

	// Parse WebSocket timeouts
	wsReadTimeout, err := strconv.Atoi(getEnv("WS_READ_TIMEOUT", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_READ_TIMEOUT: %w", err)
	}
	config.WSReadTimeout = time.Duration(wsReadTimeout) * time.Second

	wsWriteTimeout, err := strconv.Atoi(getEnv("WS_WRITE_TIMEOUT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_WRITE_TIMEOUT: %w", err)
	}
	config.WSWriteTimeout = time.Duration(wsWriteTimeout) * time.Second

	// Calculate WebSocket constants
	config.PongWait = config.WSReadTimeout
	config.PingPeriod = (config.PongWait * 9) / 10 // Must be less than pongWait
	config.WriteWait = config.WSWriteTimeout
	config.MaxMessageSize = 512

	// Trim spaces from allowed origins
	for i, origin := range config.AllowedOrigins {
		config.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	return config, nil
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool parses a boolean environment variable with a fallback default
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
