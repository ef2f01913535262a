package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(providers map[string]LLMProviderConfig) *Config {
	ptrs := make(map[string]*LLMProviderConfig, len(providers))
	for name, p := range providers {
		p := p
		ptrs[name] = &p
	}
	return &Config{LLMProviderRegistry: NewLLMProviderRegistry(ptrs)}
}

func TestValidateLLMProviders(t *testing.T) {
	tests := []struct {
		name      string
		providers map[string]LLMProviderConfig
		wantErr   bool
		errMsg    string
	}{
		{
			name: "valid provider",
			providers: map[string]LLMProviderConfig{
				"google-default": {
					Type:                LLMProviderTypeGoogle,
					Model:               "gemini-2.0-flash",
					APIKeyEnv:           "GOOGLE_API_KEY",
					MaxToolResultTokens: 900000,
				},
			},
			wantErr: false,
		},
		{
			name: "invalid provider type",
			providers: map[string]LLMProviderConfig{
				"broken": {
					Type:                "not-a-real-provider",
					Model:               "some-model",
					MaxToolResultTokens: 10000,
				},
			},
			wantErr: true,
			errMsg:  "invalid provider type",
		},
		{
			name: "empty model",
			providers: map[string]LLMProviderConfig{
				"broken": {
					Type:                LLMProviderTypeOpenAI,
					Model:               "",
					MaxToolResultTokens: 10000,
				},
			},
			wantErr: true,
			errMsg:  "model required",
		},
		{
			name: "max_tool_result_tokens below floor",
			providers: map[string]LLMProviderConfig{
				"broken": {
					Type:                LLMProviderTypeAnthropic,
					Model:               "claude-3",
					MaxToolResultTokens: 999,
				},
			},
			wantErr: true,
			errMsg:  "must be at least 1000",
		},
		{
			name: "max_tool_result_tokens at floor is valid",
			providers: map[string]LLMProviderConfig{
				"fine": {
					Type:                LLMProviderTypeAnthropic,
					Model:               "claude-3",
					MaxToolResultTokens: 1000,
				},
			},
			wantErr: false,
		},
		{
			name: "invalid native tool on google provider",
			providers: map[string]LLMProviderConfig{
				"google-default": {
					Type:                LLMProviderTypeGoogle,
					Model:               "gemini-2.0-flash",
					MaxToolResultTokens: 900000,
					NativeTools:         map[GoogleNativeTool]bool{"not-a-real-tool": true},
				},
			},
			wantErr: true,
			errMsg:  "invalid native tool",
		},
		{
			name: "valid native tool on google provider",
			providers: map[string]LLMProviderConfig{
				"google-default": {
					Type:                LLMProviderTypeGoogle,
					Model:               "gemini-2.0-flash",
					MaxToolResultTokens: 900000,
					NativeTools:         map[GoogleNativeTool]bool{GoogleNativeToolGoogleSearch: true},
				},
			},
			wantErr: false,
		},
		{
			name:      "empty registry is valid",
			providers: map[string]LLMProviderConfig{},
			wantErr:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig(tt.providers)
			err := NewValidator(cfg).validateLLMProviders()

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateLLMProvidersMissingAPIKeyEnvIsWarningNotError(t *testing.T) {
	// Unlike a bad type/model/token-floor, a missing API key env var is only
	// a hard failure for the provider actually selected at runtime, which
	// this registry has no visibility into - so it must not fail ValidateAll.
	cfg := newTestConfig(map[string]LLMProviderConfig{
		"openai-default": {
			Type:                LLMProviderTypeOpenAI,
			Model:               "gpt-4",
			APIKeyEnv:           "SOME_ENV_VAR_THAT_IS_DEFINITELY_NOT_SET",
			MaxToolResultTokens: 200000,
		},
	})

	err := NewValidator(cfg).validateLLMProviders()
	assert.NoError(t, err)
}

func TestValidateLLMProvidersVertexAIMissingCredentialsIsWarningNotError(t *testing.T) {
	cfg := newTestConfig(map[string]LLMProviderConfig{
		"vertexai-default": {
			Type:                LLMProviderTypeVertexAI,
			Model:               "gemini-2.0-flash",
			CredentialsEnv:      "SOME_ENV_VAR_THAT_IS_DEFINITELY_NOT_SET",
			ProjectEnv:          "SOME_OTHER_ENV_VAR_THAT_IS_DEFINITELY_NOT_SET",
			LocationEnv:         "YET_ANOTHER_ENV_VAR_THAT_IS_DEFINITELY_NOT_SET",
			MaxToolResultTokens: 100000,
		},
	})

	err := NewValidator(cfg).validateLLMProviders()
	assert.NoError(t, err)
}

func TestValidateAllWrapsLLMProviderError(t *testing.T) {
	cfg := newTestConfig(map[string]LLMProviderConfig{
		"broken": {
			Type:                LLMProviderTypeOpenAI,
			Model:               "",
			MaxToolResultTokens: 10000,
		},
	})

	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM provider validation failed")
	assert.Contains(t, err.Error(), "model required")
}

func TestValidateAllSucceedsOnBuiltinConfig(t *testing.T) {
	builtin := GetBuiltinConfig()
	cfg := newTestConfig(builtin.LLMProviders)

	err := NewValidator(cfg).ValidateAll()
	assert.NoError(t, err)
}
