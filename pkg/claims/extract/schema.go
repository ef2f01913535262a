package extract

import "github.com/codeready-toolchain/verifyd/pkg/llm"

// resultSchema is ClaimProcessingResult's strict JSON schema, sanitized at
// package-init time via llm.SanitizeForStrict (spec.md §3/§6).
var resultSchema = llm.SanitizeForStrict(map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"steps": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"claim":                     map[string]interface{}{"type": "string"},
					"verbatim_claim":            map[string]interface{}{"type": "string"},
					"type":                      map[string]interface{}{"type": "string", "enum": []interface{}{"goal", "promise", "statement"}},
					"completion_condition":      map[string]interface{}{"type": "string"},
					"completion_condition_date": map[string]interface{}{"type": []interface{}{"string", "null"}},
					"event_date":                map[string]interface{}{"type": []interface{}{"string", "null"}},
					"follow_up_worthy":          map[string]interface{}{"type": "boolean"},
					"priority":                  map[string]interface{}{"type": "string", "enum": []interface{}{"high", "medium", "low"}},
					"mechanism":                 map[string]interface{}{"type": "string"},
				},
			},
		},
	},
})
