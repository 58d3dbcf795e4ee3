package tags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"media-tags/internal/database"
	"media-tags/internal/logging"
	"media-tags/internal/metrics"
)

// MergeReport summarizes what Merge changed.
type MergeReport struct {
	// Relinked counts content moved from the loser to the winner.
	Relinked int
	// Dropped counts loser links removed because the content already
	// carried the winner.
	Dropped int
	// AliasesMoved counts aliases reassigned to the winner.
	AliasesMoved int
	// OrphanedChildren counts tags whose parent was the loser; they become
	// roots.
	OrphanedChildren int
}

// Merge folds the loser tag into the winner in one transaction: content
// links and aliases move to the winner, a direct parent link between the
// two is cleared, and the loser is deleted. Nothing changes on error.
func Merge(ctx context.Context, s database.Session, loserID, winnerID int64) (report MergeReport, err error) {
	if loserID == winnerID {
		return MergeReport{}, fmt.Errorf("%w: tag %d", ErrSelfMerge, loserID)
	}

	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.TagMergesTotal.WithLabelValues(status).Inc()
	}()

	err = database.WithTx(ctx, s, "merge_tags", func(tx *database.Tx) error {
		loserParent, err := parentOf(ctx, tx, loserID)
		if err != nil {
			return err
		}
		winnerParent, err := parentOf(ctx, tx, winnerID)
		if err != nil {
			return err
		}

		loserContent, err := database.ContentIDsForTag(ctx, tx, loserID)
		if err != nil {
			return fmt.Errorf("failed to list content of tag %d: %w", loserID, err)
		}
		winnerContent, err := database.ContentIDsForTag(ctx, tx, winnerID)
		if err != nil {
			return fmt.Errorf("failed to list content of tag %d: %w", winnerID, err)
		}

		relink, drop := partition(loserContent, winnerContent)

		logging.Info("replace %d tag ids", len(relink))
		for _, contentID := range relink {
			if err := database.RelinkTag(ctx, tx, contentID, loserID, winnerID); err != nil {
				return fmt.Errorf("failed to relink content %d: %w", contentID, err)
			}
		}

		logging.Info("delete %d tag ids", len(drop))
		for _, contentID := range drop {
			if err := database.UnlinkTag(ctx, tx, contentID, loserID); err != nil {
				return fmt.Errorf("failed to unlink content %d: %w", contentID, err)
			}
		}

		result, err := tx.ExecContext(ctx, "UPDATE tag_alias SET tag_id = ? WHERE tag_id = ?", winnerID, loserID)
		if err != nil {
			return fmt.Errorf("failed to move aliases: %w", err)
		}
		moved, err := result.RowsAffected()
		if err != nil {
			return err
		}

		if winnerParent.Valid && winnerParent.Int64 == loserID {
			logging.Info("tag %d was parented to merged tag %d, clearing parent", winnerID, loserID)
			if err := clearParent(ctx, tx, winnerID); err != nil {
				return err
			}
		}
		if loserParent.Valid && loserParent.Int64 == winnerID {
			if err := clearParent(ctx, tx, loserID); err != nil {
				return err
			}
		}

		result, err = tx.ExecContext(ctx, "UPDATE tag SET parent = NULL WHERE parent = ?", loserID)
		if err != nil {
			return fmt.Errorf("failed to detach children of tag %d: %w", loserID, err)
		}
		orphaned, err := result.RowsAffected()
		if err != nil {
			return err
		}

		if err := deleteTag(ctx, tx, loserID); err != nil {
			return err
		}

		report = MergeReport{
			Relinked:         len(relink),
			Dropped:          len(drop),
			AliasesMoved:     int(moved),
			OrphanedChildren: int(orphaned),
		}
		return nil
	})
	if err != nil {
		return MergeReport{}, err
	}

	metrics.TagMergeLinksTotal.WithLabelValues("relinked").Add(float64(report.Relinked))
	metrics.TagMergeLinksTotal.WithLabelValues("dropped").Add(float64(report.Dropped))
	logging.Info("Merged tag %d into %d: %d relinked, %d dropped, %d aliases moved",
		loserID, winnerID, report.Relinked, report.Dropped, report.AliasesMoved)
	return report, nil
}

// partition splits the loser's content into ids only the loser carries and
// ids both tags carry.
func partition(loser, winner []int64) (relink, drop []int64) {
	has := make(map[int64]struct{}, len(winner))
	for _, id := range winner {
		has[id] = struct{}{}
	}
	for _, id := range loser {
		if _, ok := has[id]; ok {
			drop = append(drop, id)
		} else {
			relink = append(relink, id)
		}
	}
	return relink, drop
}

// parentOf returns the parent column of a tag, or ErrTagNotFound.
func parentOf(ctx context.Context, q database.Querier, id int64) (sql.NullInt64, error) {
	var parent sql.NullInt64
	err := q.QueryRowContext(ctx, "SELECT parent FROM tag WHERE id = ?", id).Scan(&parent)
	if errors.Is(err, sql.ErrNoRows) {
		return parent, fmt.Errorf("%w: %d", ErrTagNotFound, id)
	}
	if err != nil {
		return parent, fmt.Errorf("failed to read tag %d: %w", id, err)
	}
	return parent, nil
}

func clearParent(ctx context.Context, q database.Querier, id int64) error {
	if _, err := q.ExecContext(ctx, "UPDATE tag SET parent = NULL WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to clear parent of tag %d: %w", id, err)
	}
	return nil
}
