package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// LocaleSubscription holds the schema definition for the LocaleSubscription
// entity. Roundup distribution plumbing only — no core operation mutates it
// beyond the find_many_ordered fan-out described in SPEC_FULL.md §3.
type LocaleSubscription struct {
	ent.Schema
}

// Fields of the LocaleSubscription.
func (LocaleSubscription) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("locale"),
		field.String("channel"),
		field.String("webhook_url"),
		field.Bool("active").
			Default(true),
	}
}

// Indexes of the LocaleSubscription.
func (LocaleSubscription) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("locale", "channel").
			Unique(),
		index.Fields("active"),
	}
}
