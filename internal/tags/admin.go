package tags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"media-tags/internal/database"
	"media-tags/internal/logging"
)

// GetTag returns a tag by id, or ErrTagNotFound.
func GetTag(ctx context.Context, q database.Querier, id int64) (Tag, error) {
	var t Tag
	var parent sql.NullInt64
	err := q.QueryRowContext(ctx,
		"SELECT id, title, category, parent FROM tag WHERE id = ?", id,
	).Scan(&t.ID, &t.Title, &t.Category, &parent)
	if errors.Is(err, sql.ErrNoRows) {
		return Tag{}, fmt.Errorf("%w: %d", ErrTagNotFound, id)
	}
	if err != nil {
		return Tag{}, fmt.Errorf("failed to get tag %d: %w", id, err)
	}
	if parent.Valid {
		t.Parent = &parent.Int64
	}
	return t, nil
}

// ListTags returns every tag ordered by id.
func ListTags(ctx context.Context, q database.Querier) ([]Tag, error) {
	rows, err := q.QueryContext(ctx, "SELECT id, title, category, parent FROM tag ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.Error("error closing rows: %v", err)
		}
	}()

	var out []Tag
	for rows.Next() {
		var t Tag
		var parent sql.NullInt64
		if err := rows.Scan(&t.ID, &t.Title, &t.Category, &parent); err != nil {
			return nil, err
		}
		if parent.Valid {
			t.Parent = &parent.Int64
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Aliases lists the alias titles of a tag in insertion order.
func Aliases(ctx context.Context, q database.Querier, tagID int64) ([]string, error) {
	rows, err := q.QueryContext(ctx, "SELECT title FROM tag_alias WHERE tag_id = ? ORDER BY id", tagID)
	if err != nil {
		return nil, fmt.Errorf("failed to list aliases of tag %d: %w", tagID, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.Error("error closing rows: %v", err)
		}
	}()

	var aliases []string
	for rows.Next() {
		var alias string
		if err := rows.Scan(&alias); err != nil {
			return nil, err
		}
		aliases = append(aliases, alias)
	}
	return aliases, rows.Err()
}

// AddAlias binds a new alias to a tag. It fails with ErrAliasExists when
// the alias is taken.
func AddAlias(ctx context.Context, q database.Querier, tagID int64, alias string) error {
	if alias == "" {
		return ErrEmptyTitle
	}
	_, err := q.ExecContext(ctx, "INSERT INTO tag_alias (tag_id, title) VALUES (?, ?)", tagID, alias)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %q", ErrAliasExists, alias)
	}
	if err != nil {
		return fmt.Errorf("failed to add alias %q to tag %d: %w", alias, tagID, err)
	}
	return nil
}

// DeleteAlias removes one alias of a tag. Removing an alias the tag does
// not have is not an error.
func DeleteAlias(ctx context.Context, q database.Querier, tagID int64, alias string) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM tag_alias WHERE tag_id = ? AND title = ?", tagID, alias); err != nil {
		return fmt.Errorf("failed to delete alias %q of tag %d: %w", alias, tagID, err)
	}
	return nil
}

// SetTagProperties renames and recategorizes a tag.
func SetTagProperties(ctx context.Context, q database.Querier, id int64, title, category string) error {
	if title == "" {
		return ErrEmptyTitle
	}
	result, err := q.ExecContext(ctx, "UPDATE tag SET title = ?, category = ? WHERE id = ?", title, category, id)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%w: (%q, %q)", ErrDuplicateTag, title, category)
	}
	if err != nil {
		return fmt.Errorf("failed to update tag %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrTagNotFound, id)
	}
	return nil
}

// DeleteTag removes a tag with its aliases and content links. Its children
// become roots.
func DeleteTag(ctx context.Context, s database.Session, id int64) error {
	return database.WithTx(ctx, s, "delete_tag", func(tx *database.Tx) error {
		if _, err := parentOf(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "UPDATE tag SET parent = NULL WHERE parent = ?", id); err != nil {
			return fmt.Errorf("failed to detach children of tag %d: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM content_tags_list WHERE tag_id = ?", id); err != nil {
			return fmt.Errorf("failed to unlink tag %d: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM tag_alias WHERE tag_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete aliases of tag %d: %w", id, err)
		}
		return deleteTag(ctx, tx, id)
	})
}

// CategoriesOf returns the sorted categories of tags titled title, or of
// the tag carrying it as an alias when no title matches. It returns nil
// when the label is unknown.
func CategoriesOf(ctx context.Context, q database.Querier, title string) ([]string, error) {
	title = NormalizeTitle(title)

	categories, err := queryStrings(ctx, q, "SELECT DISTINCT category FROM tag WHERE title = ?", title)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		categories, err = queryStrings(ctx, q, `
			SELECT DISTINCT t.category FROM tag t
			INNER JOIN tag_alias a ON a.tag_id = t.id
			WHERE a.title = ?
		`, title)
		if err != nil {
			return nil, err
		}
	}
	if len(categories) == 0 {
		return nil, nil
	}
	sort.Strings(categories)
	return categories, nil
}

// SearchAliases matches aliases against a pattern in which '*' is a
// wildcard. Matching follows the engine's LIKE semantics.
func SearchAliases(ctx context.Context, q database.Querier, pattern string) ([]Alias, error) {
	like := strings.ReplaceAll(pattern, "*", "%")

	rows, err := q.QueryContext(ctx,
		"SELECT tag_id, title FROM tag_alias WHERE title LIKE ? ORDER BY title", like)
	if err != nil {
		return nil, fmt.Errorf("failed to search aliases for %q: %w", pattern, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.Error("error closing rows: %v", err)
		}
	}()

	var aliases []Alias
	for rows.Next() {
		var a Alias
		if err := rows.Scan(&a.TagID, &a.Title); err != nil {
			return nil, err
		}
		aliases = append(aliases, a)
	}
	return aliases, rows.Err()
}

// TagIDByAlias returns the id of the tag carrying alias.
func TagIDByAlias(ctx context.Context, q database.Querier, alias string) (int64, bool, error) {
	var id int64
	err := q.QueryRowContext(ctx, "SELECT tag_id FROM tag_alias WHERE title = ?", alias).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		logging.Info("not found tag by alias: %s", alias)
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up alias %q: %w", alias, err)
	}
	return id, true, nil
}

// TitleByAlias returns the title of the tag carrying alias.
func TitleByAlias(ctx context.Context, q database.Querier, alias string) (string, bool, error) {
	var title string
	err := q.QueryRowContext(ctx, `
		SELECT t.title FROM tag t
		INNER JOIN tag_alias a ON a.tag_id = t.id
		WHERE a.title = ?
	`, alias).Scan(&title)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to look up alias %q: %w", alias, err)
	}
	return title, true, nil
}

// ContentIDsByTag lists the content ids linked directly to a tag.
func ContentIDsByTag(ctx context.Context, q database.Querier, tagID int64) ([]int64, error) {
	ids, err := database.ContentIDsForTag(ctx, q, tagID)
	if err != nil {
		return nil, fmt.Errorf("failed to list content of tag %d: %w", tagID, err)
	}
	return ids, nil
}

func queryStrings(ctx context.Context, q database.Querier, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.Error("error closing rows: %v", err)
		}
	}()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
