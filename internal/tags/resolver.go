package tags

import (
	"context"
	"fmt"

	"media-tags/internal/database"
	"media-tags/internal/logging"
)

// Both expansions use UNION, so a parent cycle left in legacy data still
// terminates.
const (
	resolveLabelSQL = `
		WITH RECURSIVE expanded(id) AS (
			SELECT id FROM tag
			WHERE title = ? OR id IN (SELECT tag_id FROM tag_alias WHERE title = ?)
			UNION
			SELECT t.id FROM tag t INNER JOIN expanded e ON t.parent = e.id
		)
		SELECT id FROM expanded ORDER BY id`

	resolveIDSQL = `
		WITH RECURSIVE expanded(id) AS (
			SELECT id FROM tag WHERE id = ?
			UNION
			SELECT t.id FROM tag t INNER JOIN expanded e ON t.parent = e.id
		)
		SELECT id FROM expanded ORDER BY id`

	ancestorsSQL = `
		WITH RECURSIVE chain(id) AS (
			SELECT parent FROM tag WHERE id = ? AND parent IS NOT NULL
			UNION
			SELECT t.parent FROM tag t INNER JOIN chain c ON t.id = c.id
			WHERE t.parent IS NOT NULL
		)
		SELECT id FROM chain ORDER BY id`
)

// Resolve expands one reference into the ids of the tags it names and all
// of their descendants, sorted and without duplicates. A label matches tag
// titles and aliases exactly. An unknown label or id resolves to an empty
// slice.
func Resolve(ctx context.Context, q database.Querier, ref Reference) (ids []int64, err error) {
	if err := ref.validate(); err != nil {
		return nil, err
	}

	done := database.ObserveQuery("resolve_reference")
	defer func() { done(err) }()

	if ref.IsLabel() {
		ids, err = database.QueryIDs(ctx, q, resolveLabelSQL, ref.label, ref.label)
	} else {
		ids, err = database.QueryIDs(ctx, q, resolveIDSQL, ref.id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", ref, err)
	}

	if len(ids) == 0 {
		logging.Debug("Tag reference %s matched no tags", ref)
	}
	return ids, nil
}

// ResolveGroup resolves every reference of g and returns the union of the
// results in first-seen order.
func ResolveGroup(ctx context.Context, q database.Querier, g *Group) ([]int64, error) {
	if g == nil {
		return nil, ErrNilGroup
	}

	seen := make(map[int64]struct{})
	var ids []int64
	for _, ref := range g.References {
		resolved, err := Resolve(ctx, q, ref)
		if err != nil {
			return nil, err
		}
		for _, id := range resolved {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Descendants returns the tag and its whole subtree.
func Descendants(ctx context.Context, q database.Querier, tagID int64) ([]int64, error) {
	return Resolve(ctx, q, ID(tagID))
}

// Ancestors returns the ids of every tag above tagID in the hierarchy.
func Ancestors(ctx context.Context, q database.Querier, tagID int64) ([]int64, error) {
	ids, err := database.QueryIDs(ctx, q, ancestorsSQL, tagID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ancestors of tag %d: %w", tagID, err)
	}
	return ids, nil
}
