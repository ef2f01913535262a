package lifecycle

import "github.com/codeready-toolchain/verifyd/pkg/llm"

// modelResponseSchema and factCheckResponseSchema are the strict JSON
// schemas bound to ModelResponseOutput/FactCheckResponseOutput requests,
// sanitized via llm.SanitizeForStrict before submission (spec.md §4.C4/§6:
// "statements bind FactCheckResponseOutput; all others bind
// ModelResponseOutput").
var modelResponseSchema = llm.SanitizeForStrict(map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"verdict":        map[string]interface{}{"type": "string", "enum": []interface{}{"complete", "in_progress", "failed"}},
		"text":           map[string]interface{}{"type": "string"},
		"sources":        map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
		"follow_up_date": map[string]interface{}{"type": "string"},
	},
})

var factCheckResponseSchema = llm.SanitizeForStrict(map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"verdict": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"True", "False", "Tech Error", "Close", "Misleading", "Unverifiable", "Unclear"},
		},
		"text":           map[string]interface{}{"type": "string"},
		"sources":        map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
		"follow_up_date": map[string]interface{}{"type": "string"},
	},
})

// SchemaFor selects the strict schema for a claim context, per the
// statement/non-statement split named above.
func SchemaFor(isStatement bool) map[string]interface{} {
	if isStatement {
		return factCheckResponseSchema
	}
	return modelResponseSchema
}
