package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Followup holds the schema definition for the Followup entity: a scheduled
// future verification check for a Claim.
type Followup struct {
	ent.Schema
}

// Fields of the Followup.
func (Followup) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("claim_id").
			Immutable(),
		field.Time("follow_up_date").
			Comment("Date in the fixed -05:00 pipeline offset"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("processed_at").
			Optional().
			Nillable(),
		field.String("processed_update_id").
			Optional().
			Nillable(),
		field.Text("model_output_note").
			Optional().
			Nillable().
			Comment(`Freeform placeholder, e.g. "Scheduled proactively on {date} for next planned update"`),
	}
}

// Edges of the Followup.
func (Followup) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("claim", Claim.Type).
			Ref("follow_ups").
			Field("claim_id").
			Unique().
			Required().
			Immutable(),
	}
}

// Indexes of the Followup.
func (Followup) Indexes() []ent.Index {
	return []ent.Index{
		// Uniqueness invariant: at most one Follow-up per (claim_id, follow_up_date).
		index.Fields("claim_id", "follow_up_date").
			Unique(),
		index.Fields("follow_up_date").
			Annotations(entsql.IndexWhere("processed_at IS NULL")),
	}
}
