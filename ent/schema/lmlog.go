package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// LMLog holds the schema definition for the LMLog entity: call-level
// provenance for every LLM invocation the pipeline makes.
type LMLog struct {
	ent.Schema
}

// Fields of the LMLog.
func (LMLog) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("api_type").
			Comment(`"batch" (Mode A) or "sync" (Mode B)`),
		field.String("call_id").
			Comment("Provider batch_id or per-call request id"),
		field.String("model"),
		field.Int("prompt_tokens").
			Default(0),
		field.Int("completion_tokens").
			Default(0),
		field.String("calling_site").
			Comment("Component that issued the call, e.g. \"enrich\", \"claims.extract\", \"lifecycle.schedule\", \"roundup\""),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Indexes of the LMLog.
func (LMLog) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("created_at"),
		index.Fields("calling_site", "created_at"),
	}
}
