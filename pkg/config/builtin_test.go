package config

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBuiltinConfig(t *testing.T) {
	// Test singleton pattern - should return same instance
	cfg1 := GetBuiltinConfig()
	cfg2 := GetBuiltinConfig()

	assert.Same(t, cfg1, cfg2, "GetBuiltinConfig should return same instance")
	assert.NotNil(t, cfg1, "Built-in config should not be nil")
}

func TestBuiltinConfigThreadSafety(t *testing.T) {
	const goroutines = 100

	var wg sync.WaitGroup
	configs := make([]*BuiltinConfig, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			configs[index] = GetBuiltinConfig()
		}(i)
	}

	wg.Wait()

	for i := 1; i < goroutines; i++ {
		assert.Same(t, configs[0], configs[i], "All goroutines should get same instance")
	}
}

func TestBuiltinLLMProviders(t *testing.T) {
	cfg := GetBuiltinConfig()

	tests := []struct {
		name          string
		providerID    string
		wantType      LLMProviderType
		wantMinTokens int
		checkAPIKey   bool // VertexAI uses ProjectEnv/LocationEnv instead
	}{
		{"google-default", "google-default", LLMProviderTypeGoogle, 900000, true},
		{"openai-default", "openai-default", LLMProviderTypeOpenAI, 200000, true},
		{"anthropic-default", "anthropic-default", LLMProviderTypeAnthropic, 100000, true},
		{"xai-default", "xai-default", LLMProviderTypeXAI, 150000, true},
		{"vertexai-default", "vertexai-default", LLMProviderTypeVertexAI, 100000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, exists := cfg.LLMProviders[tt.providerID]
			require.True(t, exists, "Provider %s should exist", tt.providerID)
			assert.Equal(t, tt.wantType, provider.Type)
			assert.NotEmpty(t, provider.Model)
			if tt.checkAPIKey {
				assert.NotEmpty(t, provider.APIKeyEnv)
			}
			assert.GreaterOrEqual(t, provider.MaxToolResultTokens, tt.wantMinTokens)
		})
	}
}

func TestBuiltinConfigCompleteness(t *testing.T) {
	cfg := GetBuiltinConfig()
	assert.NotEmpty(t, cfg.LLMProviders, "LLM providers should be populated")
}
