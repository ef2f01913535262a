package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Article holds the schema definition for the Article entity.
type Article struct {
	ent.Schema
}

// Fields of the Article.
func (Article) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("title"),
		field.Time("date").
			Comment("Publication date of the source article"),
		field.Time("ingested_at").
			Default(time.Now),
		field.String("link").
			Unique(),
		field.Strings("tags").
			Optional(),
		field.Text("raw_content"),
		field.Text("clean_markdown").
			Optional().
			Nillable(),
		field.Text("summary_paragraph").
			Optional().
			Nillable(),
		field.Strings("key_takeaways").
			Optional(),
		field.Int("priority").
			Optional().
			Nillable().
			Comment("1=Active Emergency .. 5=Operational Updates"),
		field.Strings("follow_up_questions").
			Optional(),
		field.JSON("follow_up_question_groups", []interface{}{}).
			Optional().
			Comment(`"single" | "individual" | [][]int, stored as raw JSON`),
		field.JSON("follow_up_answers", map[string]interface{}{}).
			Optional().
			Comment("Indexed answers with citations"),
		field.Bool("claim_processed").
			Optional().
			Nillable().
			Comment("Tri-state: nil=unset, false, true"),
		// Lease embeds. Spec.md models each as {locked_at, owner} nested under
		// one field; flattened here into paired (locked_at, owner) columns
		// per lock name so the C2 compare-and-set can be expressed as a plain
		// ent predicate instead of a JSON-path comparison.
		field.Time("enrich_locked_at").
			Optional().
			Nillable(),
		field.String("enrich_lock_owner").
			Optional().
			Nillable(),
		field.Time("claimproc_locked_at").
			Optional().
			Nillable(),
		field.String("claimproc_lock_owner").
			Optional().
			Nillable(),
		field.Time("followup_answer_locked_at").
			Optional().
			Nillable(),
		field.String("followup_answer_lock_owner").
			Optional().
			Nillable(),
	}
}

// Edges of the Article.
func (Article) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("claims", Claim.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

// Indexes of the Article.
func (Article) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("date"),
		index.Fields("claim_processed"),
		// Partial index: quickly find articles still missing enrichment.
		index.Fields("clean_markdown").
			Annotations(entsql.IndexWhere("clean_markdown IS NULL")),
	}
}
