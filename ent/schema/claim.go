package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Claim holds the schema definition for the Claim entity.
type Claim struct {
	ent.Schema
}

// Fields of the Claim.
func (Claim) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("article_id").
			Immutable(),
		field.String("article_link").
			Comment("Denormalized from Article.link at extraction time"),
		field.Time("article_date").
			Comment("Denormalized from Article.date at extraction time"),
		field.Text("claim"),
		field.Text("verbatim_claim"),
		field.Enum("type").
			Values("goal", "promise", "statement"),
		field.Text("completion_condition"),
		field.Time("completion_condition_date").
			Optional().
			Nillable().
			Comment("Promise-only deadline"),
		field.Time("event_date").
			Optional().
			Nillable().
			Comment("Statement-only"),
		field.Bool("follow_up_worthy"),
		field.Enum("priority").
			Values("high", "medium", "low"),
		field.String("mechanism").
			Optional().
			Nillable().
			Comment("Routing hint"),
		field.Bool("date_past").
			Default(false),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Edges of the Claim.
func (Claim) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("article", Article.Type).
			Ref("claims").
			Field("article_id").
			Unique().
			Required().
			Immutable(),
		edge.To("updates", Update.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("follow_ups", Followup.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

// Indexes of the Claim.
func (Claim) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("article_id"),
		index.Fields("type"),
		index.Fields("date_past"),
		index.Fields("type", "date_past", "follow_up_worthy"),
		index.Fields("completion_condition_date"),
	}
}
