package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// PipelineLock holds the schema definition for the PipelineLock entity: a
// named compare-and-set lock (one row per pipeline stage) that keeps two
// pods from running the same daily stage concurrently, the stage-level
// analogue of Article's per-row enrich/claimproc/followup_answer lock
// columns.
type PipelineLock struct {
	ent.Schema
}

// Fields of the PipelineLock.
func (PipelineLock) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable().
			Comment("stage name, e.g. \"enrich\", \"extract\", \"lifecycle\", \"roundup\""),
		field.Time("locked_at").
			Optional().
			Nillable(),
		field.String("lock_owner").
			Optional().
			Nillable(),
	}
}
