package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		filePath  string
		wantErr   bool
		errString string
	}{
		{
			name:     "valid config file",
			filePath: "testdata/valid_config.yaml",
			wantErr:  false,
		},
		{
			name:      "non-existent file",
			filePath:  "testdata/nonexistent.yaml",
			wantErr:   true,
			errString: "failed to read config file",
		},
		{
			name:      "malformed yaml",
			filePath:  "testdata/malformed.yaml",
			wantErr:   true,
			errString: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.filePath)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)

				// Verify some key fields are populated
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "risk_assessment_db", cfg.Database.Database)
				assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
				assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
				assert.Equal(t, 2, cfg.Extraction.MaxRetries)
				assert.Equal(t, 4, cfg.Extraction.MaxConcurrent)
				assert.True(t, cfg.RabbitMQ.Enabled)
				assert.Equal(t, "risk_events_exchange", cfg.RabbitMQ.Exchange.Name)
				assert.Equal(t, "risk-assessment-service", cfg.App.Name)
			}
		})
	}
}

func TestLoadAPIKeyFromEnv(t *testing.T) {
	t.Setenv("LLM_API_KEY", "env-key")

	cfg, err := Load("testdata/missing_llm.yaml")
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.LLM.APIKey)
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "risk_assessment_db",
		},
		LLM: LLMConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
		Extraction: ExtractionConfig{
			MaxRetries:    2,
			MaxConcurrent: 4,
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantErr   bool
		errString string
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:      "invalid server port - too low",
			mutate:    func(c *Config) { c.Server.Port = 0 },
			wantErr:   true,
			errString: "invalid server port",
		},
		{
			name:      "invalid server port - too high",
			mutate:    func(c *Config) { c.Server.Port = 70000 },
			wantErr:   true,
			errString: "invalid server port",
		},
		{
			name:      "empty database host",
			mutate:    func(c *Config) { c.Database.Host = "" },
			wantErr:   true,
			errString: "database host is required",
		},
		{
			name:      "empty database name",
			mutate:    func(c *Config) { c.Database.Database = "" },
			wantErr:   true,
			errString: "database name is required",
		},
		{
			name:      "empty llm base_url",
			mutate:    func(c *Config) { c.LLM.BaseURL = "" },
			wantErr:   true,
			errString: "llm base_url is required",
		},
		{
			name:      "empty llm model",
			mutate:    func(c *Config) { c.LLM.Model = "" },
			wantErr:   true,
			errString: "llm model is required",
		},
		{
			name:      "negative max_retries",
			mutate:    func(c *Config) { c.Extraction.MaxRetries = -1 },
			wantErr:   true,
			errString: "max_retries must not be negative",
		},
		{
			name: "rabbitmq enabled without host",
			mutate: func(c *Config) {
				c.RabbitMQ.Enabled = true
				c.RabbitMQ.Port = 5672
				c.RabbitMQ.Exchange.Name = "risk_events_exchange"
			},
			wantErr:   true,
			errString: "rabbitmq host is required",
		},
		{
			name: "rabbitmq enabled without exchange name",
			mutate: func(c *Config) {
				c.RabbitMQ.Enabled = true
				c.RabbitMQ.Host = "localhost"
				c.RabbitMQ.Port = 5672
			},
			wantErr:   true,
			errString: "rabbitmq exchange name is required",
		},
		{
			name: "rabbitmq disabled skips broker checks",
			mutate: func(c *Config) {
				c.RabbitMQ.Enabled = false
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLoad_ValidateIntegration(t *testing.T) {
	t.Run("load and validate valid config", func(t *testing.T) {
		cfg, err := Load("testdata/valid_config.yaml")
		require.NoError(t, err)
		require.NotNil(t, cfg)

		err = cfg.Validate()
		require.NoError(t, err)
	})

	t.Run("load config with invalid port", func(t *testing.T) {
		cfg, err := Load("testdata/invalid_port.yaml")
		require.NoError(t, err)
		require.NotNil(t, cfg)

		err = cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid server port")
	})

	t.Run("load config with missing llm base_url", func(t *testing.T) {
		cfg, err := Load("testdata/missing_llm.yaml")
		require.NoError(t, err)
		require.NotNil(t, cfg)

		err = cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "llm base_url is required")
	})
}
