package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Roundup holds the schema definition for the Roundup entity.
type Roundup struct {
	ent.Schema
}

// Fields of the Roundup.
func (Roundup) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.Enum("kind").
			Values("daily", "weekly", "monthly", "yearly"),
		field.Time("period_start").
			Immutable(),
		field.Time("period_end").
			Immutable(),
		field.String("title"),
		field.Text("body"),
		field.Strings("sources").
			Optional(),
		field.JSON("seed_articles", []interface{}{}).
			Comment("Ordered list of {article_id|roundup_id, title, link, score, key_takeaways, claims}"),
		field.Int("omitted_count").
			Default(0),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Indexes of the Roundup.
func (Roundup) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("kind", "period_start", "period_end").
			Unique(),
	}
}
