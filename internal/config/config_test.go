package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name: "default values",
			env:  map[string]string{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != "8080" {
					t.Errorf("expected port 8080, got %s", cfg.Port)
				}
				if cfg.LogLevel != "info" {
					t.Errorf("expected log level info, got %s", cfg.LogLevel)
				}
				if cfg.AMIHost != "localhost" || cfg.AMIPort != "5038" {
					t.Errorf("unexpected manager address %s:%s", cfg.AMIHost, cfg.AMIPort)
				}
				if cfg.AMIKeepalive != 30*time.Second {
					t.Errorf("expected keepalive 30s, got %v", cfg.AMIKeepalive)
				}
				if cfg.NotifyMode != "mqtt" {
					t.Errorf("expected notify mode mqtt, got %s", cfg.NotifyMode)
				}
				if cfg.MQTTQoS != 1 {
					t.Errorf("expected QoS 1, got %d", cfg.MQTTQoS)
				}
				if cfg.PublisherID != "queuebridge" {
					t.Errorf("expected publisher queuebridge, got %s", cfg.PublisherID)
				}
				if cfg.VarPrefix != "QB_" {
					t.Errorf("expected var prefix QB_, got %s", cfg.VarPrefix)
				}
				if cfg.RosterQueue != "_CSRs" {
					t.Errorf("expected roster queue _CSRs, got %s", cfg.RosterQueue)
				}
				if cfg.WSReadTimeout != 60*time.Second {
					t.Errorf("expected WSReadTimeout 60s, got %v", cfg.WSReadTimeout)
				}
			},
		},
		{
			name: "custom values",
			env: map[string]string{
				"PORT":             "9000",
				"LOG_LEVEL":        "debug",
				"AMI_HOST":         "pbx.internal",
				"AMI_KEEPALIVE":    "10",
				"NOTIFY_MODE":      "log",
				"MQTT_QOS":         "2",
				"ROSTER_QUEUE":     "_Staff",
				"WS_READ_TIMEOUT":  "30",
				"WS_WRITE_TIMEOUT": "5",
				"ALLOWED_ORIGINS":  "http://example.com, http://test.com",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != "9000" {
					t.Errorf("expected port 9000, got %s", cfg.Port)
				}
				if cfg.AMIHost != "pbx.internal" {
					t.Errorf("expected AMI host pbx.internal, got %s", cfg.AMIHost)
				}
				if cfg.AMIKeepalive != 10*time.Second {
					t.Errorf("expected keepalive 10s, got %v", cfg.AMIKeepalive)
				}
				if cfg.NotifyMode != "log" {
					t.Errorf("expected notify mode log, got %s", cfg.NotifyMode)
				}
				if cfg.MQTTQoS != 2 {
					t.Errorf("expected QoS 2, got %d", cfg.MQTTQoS)
				}
				if cfg.RosterQueue != "_Staff" {
					t.Errorf("expected roster queue _Staff, got %s", cfg.RosterQueue)
				}
				if cfg.WSReadTimeout != 30*time.Second {
					t.Errorf("expected WSReadTimeout 30s, got %v", cfg.WSReadTimeout)
				}
				if cfg.WSWriteTimeout != 5*time.Second {
					t.Errorf("expected WSWriteTimeout 5s, got %v", cfg.WSWriteTimeout)
				}
				if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://test.com" {
					t.Errorf("unexpected allowed origins: %v", cfg.AllowedOrigins)
				}
			},
		},
		{
			name: "invalid AMI_KEEPALIVE",
			env: map[string]string{
				"AMI_KEEPALIVE": "invalid",
			},
			wantErr: true,
		},
		{
			name: "invalid MQTT_QOS",
			env: map[string]string{
				"MQTT_QOS": "7",
			},
			wantErr: true,
		},
		{
			name: "invalid WS_READ_TIMEOUT",
			env: map[string]string{
				"WS_READ_TIMEOUT": "invalid",
			},
			wantErr: true,
		},
		{
			name: "invalid WS_WRITE_TIMEOUT",
			env: map[string]string{
				"WS_WRITE_TIMEOUT": "invalid",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			// Set test environment variables
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			// Load config
			cfg, err := Load()

			// Check error
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			// Run custom checks
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestWebSocketConstants(t *testing.T) {
	// Clear environment and set clean defaults
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// PongWait should equal WSReadTimeout
	if cfg.PongWait != cfg.WSReadTimeout {
		t.Errorf("PongWait (%v) should equal WSReadTimeout (%v)", cfg.PongWait, cfg.WSReadTimeout)
	}

	// PingPeriod should be less than PongWait
	if cfg.PingPeriod >= cfg.PongWait {
		t.Errorf("PingPeriod (%v) should be less than PongWait (%v)", cfg.PingPeriod, cfg.PongWait)
	}

	// WriteWait should equal WSWriteTimeout
	if cfg.WriteWait != cfg.WSWriteTimeout {
		t.Errorf("WriteWait (%v) should equal WSWriteTimeout (%v)", cfg.WriteWait, cfg.WSWriteTimeout)
	}

	// MaxMessageSize should be set
	if cfg.MaxMessageSize <= 0 {
		t.Errorf("MaxMessageSize should be positive, got %d", cfg.MaxMessageSize)
	}
}
