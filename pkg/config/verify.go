package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

// VerifyAgainstSchema checks the config against the schema reflected from Config.
// Only required fields and enum constraints are checked.
func VerifyAgainstSchema(cfg *Config) error {
	schema := GenerateSchema()

	// convert config to JSON for validation
	configData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	var configMap map[string]any
	if err := json.Unmarshal(configData, &configMap); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	llmDef, ok := schema.Definitions["LLMConfig"]
	if ok && llmDef.Properties != nil {
		if prop, found := llmDef.Properties.Get("provider"); found && len(prop.Enum) > 0 {
			llm, _ := configMap["llm"].(map[string]any)
			provider, _ := llm["provider"].(string)
			if !enumContains(prop.Enum, provider) {
				return fmt.Errorf("llm.provider %q is not one of %v", provider, prop.Enum)
			}
		}
	}

	// basic validation - check required fields match
	if err := validateRequiredFields(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return nil
}

func enumContains(enum []any, val string) bool {
	for _, e := range enum {
		if s, ok := e.(string); ok && strings.EqualFold(s, val) {
			return true
		}
	}
	return false
}

// validateRequiredFields performs basic validation of required fields
func validateRequiredFields(cfg *Config) error {
	// check server config
	if cfg.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}
	if cfg.Server.Timeout == 0 {
		return fmt.Errorf("server.timeout is required")
	}
	if cfg.Sources.HackerNews.ListURL == "" || cfg.Sources.DevTo.ListURL == "" {
		return fmt.Errorf("sources listing urls are required")
	}

	// check extraction config if enabled
	if cfg.Extraction.Enabled && cfg.Extraction.Timeout == 0 {
		return fmt.Errorf("extraction.timeout is required when extraction is enabled")
	}

	return nil
}

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() *jsonschema.Schema {
	return jsonschema.Reflect(&Config{})
}
