package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Update holds the schema definition for the Update entity: one row per
// verification outcome for a Claim.
type Update struct {
	ent.Schema
}

// Fields of the Update.
func (Update) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("claim_id").
			Immutable(),
		field.String("article_id").
			Immutable(),
		field.String("verdict").
			Comment("complete|in_progress|failed, or a FactCheckResponseOutput verdict for statements"),
		field.Text("text").
			Optional().
			Nillable(),
		field.Strings("sources").
			Optional(),
		field.JSON("model_output", map[string]interface{}{}).
			Optional().
			Comment("Structured ModelResponseOutput/FactCheckResponseOutput, or {\"raw\": string} when unparsed"),
		field.String("lm_log_id").
			Optional().
			Nillable(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Edges of the Update.
func (Update) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("claim", Claim.Type).
			Ref("updates").
			Field("claim_id").
			Unique().
			Required().
			Immutable(),
	}
}

// Indexes of the Update.
func (Update) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("claim_id", "created_at"),
	}
}
