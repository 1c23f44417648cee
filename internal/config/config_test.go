package config

import "testing"

// TestDefaults tests that the default configuration is valid
func TestDefaults(t *testing.T) {
	cfg := GetDefaults()
	if err := validateConfig(cfg); err != nil {
		t.Errorf("Default configuration should validate: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
}

// TestValidateConfig tests configuration validation rules
func TestValidateConfig(t *testing.T) {
	t.Run("InvalidPort", func(t *testing.T) {
		cfg := GetDefaults()
		cfg.Server.Port = 0
		if err := validateConfig(cfg); err == nil {
			t.Error("Port 0 should fail validation")
		}
	})

	t.Run("InvalidLogLevel", func(t *testing.T) {
		cfg := GetDefaults()
		cfg.Logging.Level = "verbose"
		if err := validateConfig(cfg); err == nil {
			t.Error("Unknown log level should fail validation")
		}
	})

	t.Run("InvalidLogFormat", func(t *testing.T) {
		cfg := GetDefaults()
		cfg.Logging.Format = "xml"
		if err := validateConfig(cfg); err == nil {
			t.Error("Unknown log format should fail validation")
		}
	})

	t.Run("RateLimitZeroRequests", func(t *testing.T) {
		cfg := GetDefaults()
		cfg.RateLimit.RequestsPerMin = 0
		if err := validateConfig(cfg); err == nil {
			t.Error("Enabled rate limit with zero requests should fail validation")
		}
	})

	t.Run("CacheWithoutURL", func(t *testing.T) {
		cfg := GetDefaults()
		cfg.Cache.Enabled = true
		cfg.Cache.RedisURL = ""
		if err := validateConfig(cfg); err == nil {
			t.Error("Enabled cache without redis_url should fail validation")
		}
	})
}
