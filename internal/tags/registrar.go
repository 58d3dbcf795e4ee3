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

// Outcome says how Register arrived at the id it returned.
type Outcome int

const (
	// Inserted means a new tag and its aliases were created.
	Inserted Outcome = iota
	// AlreadyExists means (title, category) was already registered.
	AlreadyExists
	// CategoryUpgraded means the alias belonged to a "content" placeholder
	// tag, which took the requested category.
	CategoryUpgraded
	// MergedIntoExisting means a "content" registration collided with an
	// alias of a real tag and returned that tag instead.
	MergedIntoExisting
)

func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case AlreadyExists:
		return "already_exists"
	case CategoryUpgraded:
		return "category_upgraded"
	case MergedIntoExisting:
		return "merged_into_existing"
	default:
		return fmt.Sprintf("unknown(%d)", int(o))
	}
}

// RegisterResult is the id Register settled on and how it got there.
type RegisterResult struct {
	ID      int64
	Outcome Outcome
}

// registerAttempts bounds the retries when a conflicting row disappears
// between the insert and the re-read.
const registerAttempts = 3

// CheckExists looks up a tag by (title, category), falling back to a tag of
// that category carrying the title as an alias. The title is normalized the
// same way Register stores it.
func CheckExists(ctx context.Context, q database.Querier, title, category string) (id int64, found bool, err error) {
	done := database.ObserveQuery("check_tag_exists")
	defer func() { done(err) }()

	title = ShortenTitle(NormalizeTitle(title), TitleMaxSize)
	logging.Debug("Looking up tag title=%q category=%q", title, category)

	err = q.QueryRowContext(ctx,
		"SELECT id FROM tag WHERE title = ? AND category = ?",
		title, category,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		err = q.QueryRowContext(ctx, `
			SELECT t.id FROM tag t
			INNER JOIN tag_alias a ON a.tag_id = t.id
			WHERE a.title = ? AND t.category = ?
		`, title, category).Scan(&id)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up tag (%q, %q): %w", title, category, err)
	}
	return id, true, nil
}

// Register creates the tag (title, category) with its alias, or finds the
// tag that already holds them. Underscores in the title are stored as
// spaces. An empty alias defaults to DefaultAlias(title, category). The
// alias is also registered with spaces and underscores swapped when that
// spelling is free.
//
// Concurrent calls for the same pair all return the same id; exactly one of
// them reports Inserted.
func Register(ctx context.Context, s database.Session, title, category, alias string) (res RegisterResult, err error) {
	if title == "" {
		return RegisterResult{}, ErrEmptyTitle
	}

	normalized := ShortenTitle(NormalizeTitle(title), TitleMaxSize)
	if alias == "" {
		alias = DefaultAlias(title, category)
	}
	alias = ShortenTitle(alias, AliasMaxSize)

	done := database.ObserveQuery("register_tag")
	defer func() {
		done(err)
		outcome := "error"
		if err == nil {
			outcome = res.Outcome.String()
		}
		metrics.TagRegistrationsTotal.WithLabelValues(outcome).Inc()
	}()

	for attempt := 1; attempt <= registerAttempts; attempt++ {
		res, retry, err := register(ctx, s, normalized, category, alias)
		if err != nil || !retry {
			return res, err
		}
		logging.Debug("Tag (%q, %q) vanished after conflicting, retrying (attempt %d)", normalized, category, attempt)
	}
	return RegisterResult{}, fmt.Errorf("%w: (%q, %q) kept conflicting without becoming visible", ErrTagNotFound, normalized, category)
}

// register runs one attempt. retry is set when the insert conflicted but
// the conflicting row was gone by the time it was re-read.
func register(ctx context.Context, s database.Session, title, category, alias string) (res RegisterResult, retry bool, err error) {
	tx, err := s.Begin(ctx)
	if err != nil {
		return RegisterResult{}, false, err
	}

	id, inserted, err := insertTag(ctx, tx, title, category)
	if err != nil {
		return RegisterResult{}, false, tx.End(err)
	}

	if !inserted {
		if err := tx.Rollback(); err != nil {
			return RegisterResult{}, false, fmt.Errorf("failed to roll back conflicting insert: %w", err)
		}
		existing, found, err := CheckExists(ctx, s, title, category)
		if err != nil {
			return RegisterResult{}, false, err
		}
		if !found {
			return RegisterResult{}, true, nil
		}
		return RegisterResult{ID: existing, Outcome: AlreadyExists}, false, nil
	}

	added, err := insertAlias(ctx, tx, id, alias)
	if err != nil {
		return RegisterResult{}, false, tx.End(err)
	}
	if !added {
		res, err := resolveAliasConflict(ctx, tx, id, alias, category)
		return res, false, tx.End(err)
	}

	if secondary := SwapSeparators(alias); secondary != alias {
		if _, err := insertAlias(ctx, tx, id, secondary); err != nil {
			return RegisterResult{}, false, tx.End(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return RegisterResult{}, false, fmt.Errorf("failed to commit tag (%q, %q): %w", title, category, err)
	}

	logging.Debug("Registered tag %d (%q, %q) with alias %q", id, title, category, alias)
	return RegisterResult{ID: id, Outcome: Inserted}, false, nil
}

// insertTag inserts (title, category), reporting inserted=false when the
// pair already exists.
func insertTag(ctx context.Context, q database.Querier, title, category string) (id int64, inserted bool, err error) {
	err = q.QueryRowContext(ctx, `
		INSERT INTO tag (title, category) VALUES (?, ?)
		ON CONFLICT (title, category) DO NOTHING
		RETURNING id
	`, title, category).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to insert tag (%q, %q): %w", title, category, err)
	}
	return id, true, nil
}

// insertAlias binds alias to tagID, reporting added=false when the alias is
// already taken.
func insertAlias(ctx context.Context, q database.Querier, tagID int64, alias string) (added bool, err error) {
	result, err := q.ExecContext(ctx,
		"INSERT INTO tag_alias (tag_id, title) VALUES (?, ?) ON CONFLICT (title) DO NOTHING",
		tagID, alias,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert alias %q: %w", alias, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// resolveAliasConflict handles a fresh tag whose alias is owned by another
// tag. The fresh tag is discarded. A "content" owner is a placeholder and
// takes the requested category; a "content" request defers to the owner.
// Anything else is a genuine conflict and the caller rolls back.
func resolveAliasConflict(ctx context.Context, tx *database.Tx, newID int64, alias, category string) (RegisterResult, error) {
	var ownerID int64
	var ownerCategory string
	err := tx.QueryRowContext(ctx, `
		SELECT t.id, t.category FROM tag t
		INNER JOIN tag_alias a ON a.tag_id = t.id
		WHERE a.title = ?
	`, alias).Scan(&ownerID, &ownerCategory)
	if errors.Is(err, sql.ErrNoRows) {
		return RegisterResult{}, fmt.Errorf("%w: alias %q conflicted but has no owner", ErrAliasConflict, alias)
	}
	if err != nil {
		return RegisterResult{}, fmt.Errorf("failed to look up owner of alias %q: %w", alias, err)
	}

	switch {
	case ownerCategory == CategoryContent:
		if err := deleteTag(ctx, tx, newID); err != nil {
			return RegisterResult{}, err
		}
		if _, err := tx.ExecContext(ctx, "UPDATE tag SET category = ? WHERE id = ?", category, ownerID); err != nil {
			return RegisterResult{}, fmt.Errorf("failed to upgrade tag %d to %q: %w", ownerID, category, err)
		}
		logging.Info("Upgraded placeholder tag %d to category %q via alias %q", ownerID, category, alias)
		return RegisterResult{ID: ownerID, Outcome: CategoryUpgraded}, nil

	case category == CategoryContent:
		if err := deleteTag(ctx, tx, newID); err != nil {
			return RegisterResult{}, err
		}
		logging.Debug("Content tag for alias %q resolved to existing %s tag %d", alias, ownerCategory, ownerID)
		return RegisterResult{ID: ownerID, Outcome: MergedIntoExisting}, nil

	default:
		return RegisterResult{}, fmt.Errorf("%w: alias %q belongs to tag %d (%s), requested category %q",
			ErrAliasConflict, alias, ownerID, ownerCategory, category)
	}
}

func deleteTag(ctx context.Context, q database.Querier, id int64) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM tag WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete tag %d: %w", id, err)
	}
	return nil
}
