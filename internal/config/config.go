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

	// Manager interface connection.
	AMIHost      string
	AMIPort      string
	AMIUsername  string
	AMISecret    string
	AMIKeepalive time.Duration

	// Notification bus. NotifyMode selects the transport: "mqtt" or "log".
	NotifyMode   string
	MQTTBroker   string
	MQTTClientID string
	MQTTQoS      byte
	PublisherID  string

	// Event translation.
	VarPrefix   string
	RosterQueue string

	// WebSocket fan-out tuning.
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
		AMIHost:        getEnv("AMI_HOST", "localhost"),
		AMIPort:        getEnv("AMI_PORT", "5038"),
		AMIUsername:    getEnv("AMI_USERNAME", "queuebridge"),
		AMISecret:      getEnv("AMI_SECRET", ""),
		NotifyMode:     getEnv("NOTIFY_MODE", "mqtt"),
		MQTTBroker:     getEnv("MQTT_BROKER", "tcp://localhost:1883"),
		MQTTClientID:   getEnv("MQTT_CLIENT_ID", "queuebridge"),
		PublisherID:    getEnv("PUBLISHER_ID", "queuebridge"),
		VarPrefix:      getEnv("VAR_PREFIX", "QB_"),
		RosterQueue:    getEnv("ROSTER_QUEUE", "_CSRs"),
	}

	keepalive, err := strconv.Atoi(getEnv("AMI_KEEPALIVE", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid AMI_KEEPALIVE: %w", err)
	}
	config.AMIKeepalive = time.Duration(keepalive) * time.Second

	qos, err := strconv.Atoi(getEnv("MQTT_QOS", "1"))
	if err != nil || qos < 0 || qos > 2 {
		return nil, fmt.Errorf("invalid MQTT_QOS: %q", getEnv("MQTT_QOS", "1"))
	}
	config.MQTTQoS = byte(qos)

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
