package tags

import (
	"context"
	"fmt"
	"slices"

	"media-tags/internal/database"
	"media-tags/internal/logging"
)

// SetParent makes parentID the parent of childID. It fails with
// ErrParentCycle when childID is parentID or one of its ancestors, so the
// hierarchy stays a forest.
func SetParent(ctx context.Context, s database.Session, childID, parentID int64) error {
	return database.WithTx(ctx, s, "set_parent", func(tx *database.Tx) error {
		if _, err := parentOf(ctx, tx, childID); err != nil {
			return err
		}
		if _, err := parentOf(ctx, tx, parentID); err != nil {
			return err
		}

		if childID == parentID {
			return fmt.Errorf("%w: tag %d cannot be its own parent", ErrParentCycle, childID)
		}
		ancestors, err := Ancestors(ctx, tx, parentID)
		if err != nil {
			return err
		}
		if slices.Contains(ancestors, childID) {
			return fmt.Errorf("%w: tag %d is an ancestor of %d", ErrParentCycle, childID, parentID)
		}

		if _, err := tx.ExecContext(ctx, "UPDATE tag SET parent = ? WHERE id = ?", parentID, childID); err != nil {
			return fmt.Errorf("failed to set parent of tag %d: %w", childID, err)
		}
		logging.Debug("Tag %d is now a child of %d", childID, parentID)
		return nil
	})
}

// ClearParent makes the tag a root.
func ClearParent(ctx context.Context, q database.Querier, tagID int64) error {
	if _, err := parentOf(ctx, q, tagID); err != nil {
		return err
	}
	return clearParent(ctx, q, tagID)
}

// Children lists the direct children of a tag.
func Children(ctx context.Context, q database.Querier, tagID int64) ([]int64, error) {
	return database.QueryIDs(ctx, q, "SELECT id FROM tag WHERE parent = ? ORDER BY id", tagID)
}
