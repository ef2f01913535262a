package llm

// SanitizeForStrict walks a JSON Schema document and rewrites every object
// node so it is acceptable to providers that require "strict" structured
// output: additionalProperties is forced to false and required is forced to
// list every key in properties. This is a direct port of the recursive walk
// confirmed in
// _examples/original_source/service/util/openai_batch.py
// (sanitize_schema_for_strict), which descends into properties, $defs,
// definitions, items, additionalItems, contains, anyOf, oneOf and allOf.
func SanitizeForStrict(schema map[string]interface{}) map[string]interface{} {
	sanitizeNode(schema)
	return schema
}

func sanitizeNode(node interface{}) {
	switch v := node.(type) {
	case map[string]interface{}:
		sanitizeObject(v)
	case []interface{}:
		for _, item := range v {
			sanitizeNode(item)
		}
	}
}

func sanitizeObject(obj map[string]interface{}) {
	if properties, ok := obj["properties"].(map[string]interface{}); ok {
		obj["additionalProperties"] = false

		required := make([]interface{}, 0, len(properties))
		for key := range properties {
			required = append(required, key)
		}
		obj["required"] = required

		for _, propSchema := range properties {
			sanitizeNode(propSchema)
		}
	}

	for _, key := range []string{"$defs", "definitions"} {
		if defs, ok := obj[key].(map[string]interface{}); ok {
			for _, defSchema := range defs {
				sanitizeNode(defSchema)
			}
		}
	}

	if items, ok := obj["items"]; ok {
		sanitizeNode(items)
	}
	if additionalItems, ok := obj["additionalItems"]; ok {
		sanitizeNode(additionalItems)
	}
	if contains, ok := obj["contains"]; ok {
		sanitizeNode(contains)
	}

	for _, key := range []string{"anyOf", "oneOf", "allOf"} {
		if branches, ok := obj[key].([]interface{}); ok {
			for _, branch := range branches {
				sanitizeNode(branch)
			}
		}
	}
}
