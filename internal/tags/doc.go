// Package tags implements the tag graph of the media library: tags with a
// category, aliases and an optional parent, and the boolean tag-group
// query compiler that selects content by them.
//
// The package has no connection of its own. Every operation receives a
// [database.Querier] (reads) or [database.Session] (writes that need a
// transaction), so callers choose the pool or an open transaction.
//
// # Registration
//
// [Register] is create-or-find and safe under concurrent registrars. It
// inserts with ON CONFLICT DO NOTHING and, when another writer already owns
// (title, category), rolls back and re-reads the winner's id. The outcome is
// reported as a [RegisterResult].
//
// # Queries
//
// A [Query] is a list of [Group] values AND-ed together. Each group is an
// OR over its references, optionally negated. References are either a
// label ([Label]) matched against tag titles and aliases, or a tag id
// ([ID]) standing for the tag and its whole subtree:
//
//	q := tags.Query{
//		Groups: []*tags.Group{
//			{References: []tags.Reference{tags.Label("artist:rarity")}},
//			{References: []tags.Reference{tags.ID(42)}, Negate: true},
//		},
//		OrderBy: tags.OrderDateDesc,
//		Limit:   50,
//	}
//	items, err := tags.QueryContent(ctx, db, q)
//
// Only placeholder counts vary between compiled statements; every tag id is
// a bound parameter.
package tags
