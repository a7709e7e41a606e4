package storage

import "os"

// Mode selects the store backend.
type Mode string

const (
	ModeLocal  Mode = "local"  // DynamoDB local endpoint, tables auto-created
	ModeAWS    Mode = "aws"    // DynamoDB via the default AWS credential chain
	ModeMemory Mode = "memory" // in-process, state lost on restart
)

// Config holds store configuration.
type Config struct {
	Mode         Mode
	Endpoint     string // for local mode
	Region       string
	CallersTable string
	MembersTable string
}

// LoadConfig reads store configuration from the environment.
func LoadConfig() Config {
	mode := Mode(getEnv("STORE_MODE", "memory"))
	if mode != ModeLocal && mode != ModeAWS {
		mode = ModeMemory
	}

	return Config{
		Mode:         mode,
		Endpoint:     getEnv("STORE_ENDPOINT", "http://localhost:8000"),
		Region:       getEnv("STORE_REGION", "eu-central-1"),
		CallersTable: getEnv("STORE_CALLERS_TABLE", "queuebridge-callers"),
		MembersTable: getEnv("STORE_MEMBERS_TABLE", "queuebridge-members"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
