package enrich

import "github.com/codeready-toolchain/verifyd/pkg/llm"

// enrichmentSchema is ArticleEnrichment's strict JSON schema, sanitized at
// package-init time via llm.SanitizeForStrict (spec.md §4.C6/§4.C4).
var enrichmentSchema = llm.SanitizeForStrict(map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"clean_markdown":    map[string]interface{}{"type": "string"},
		"summary_paragraph": map[string]interface{}{"type": "string"},
		"key_takeaways":     map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
		"priority":          map[string]interface{}{"type": "integer", "minimum": 1, "maximum": 5},
		"follow_up_questions": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"follow_up_question_groups": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "integer"},
			},
		},
	},
})
