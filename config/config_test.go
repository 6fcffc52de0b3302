package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adityapatel143/GenAi-Prompt-Engineering/config"
	"github.com/adityapatel143/GenAi-Prompt-Engineering/utils"
)

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("LLM_MODEL", "claude-3-5-haiku-latest")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("LLM_LOG_LEVEL", "debug")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("CONSENSUS_SAMPLES", "7")
	t.Setenv("CONSENSUS_TIMEOUT", "90s")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "claude-3-5-haiku-latest", cfg.Model)
	assert.Equal(t, 0.2, cfg.Temperature)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, utils.LogLevelDebug, cfg.LogLevel)
	assert.Equal(t, "sk-ant-test", cfg.APIKey())
	assert.Equal(t, 7, cfg.Consensus.Samples)
	assert.Equal(t, 90*time.Second, cfg.Consensus.Timeout)
	assert.Equal(t, 4, cfg.Consensus.Concurrency)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigRejectsBadLogLevel(t *testing.T) {
	t.Setenv("LLM_LOG_LEVEL", "chatty")
	_, err := config.LoadConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    []config.ConfigOption
		wantErr string
	}{
		{
			name: "valid openai",
			opts: []config.ConfigOption{config.SetAPIKey("sk-test")},
		},
		{
			name: "ollama needs no key",
			opts: []config.ConfigOption{config.SetProvider("ollama")},
		},
		{
			name:    "missing key",
			opts:    nil,
			wantErr: "OPENAI_API_KEY",
		},
		{
			name:    "temperature out of range",
			opts:    []config.ConfigOption{config.SetAPIKey("sk-test"), config.SetTemperature(3)},
			wantErr: "Temperature",
		},
		{
			name:    "zero consensus samples",
			opts:    []config.ConfigOption{config.SetAPIKey("sk-test"), config.SetConsensusSamples(0)},
			wantErr: "Samples",
		},
		{
			name:    "bad endpoint",
			opts:    []config.ConfigOption{config.SetAPIKey("sk-test"), config.SetEndpoint("not a url")},
			wantErr: "Endpoint",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewConfig()
			config.ApplyOptions(cfg, tt.opts...)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOptions(t *testing.T) {
	cfg := config.NewConfig()
	config.ApplyOptions(cfg,
		config.SetProvider("anthropic"),
		config.SetAPIKey("sk-ant-x"),
		config.SetMaxTokens(0),
		config.SetRateLimit(2.5, 0),
		config.SetSeed(42),
		config.SetExtraHeaders(map[string]string{"X-Trace": "1"}),
		config.SetConsensusConcurrency(2),
	)

	assert.Equal(t, "sk-ant-x", cfg.APIKeys["anthropic"])
	assert.Equal(t, 1, cfg.MaxTokens)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Equal(t, 1, cfg.RateBurst)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, 42, *cfg.Seed)
	assert.Equal(t, "1", cfg.ExtraHeaders["X-Trace"])
	assert.Equal(t, 2, cfg.Consensus.Concurrency)
}

func TestGetLoggerPrefersCustomLogger(t *testing.T) {
	custom := utils.NewNopLogger()
	cfg := config.NewConfig()
	config.ApplyOptions(cfg, config.SetLogger(custom))
	assert.Same(t, custom, cfg.GetLogger())
}
