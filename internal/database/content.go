package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"media-tags/internal/logging"
	"media-tags/internal/metrics"
)

// ContentColumns is the select list scanned by ScanContent.
const ContentColumns = "id, file_path, title, content_type, description, addition_date, hidden"

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// ScanContent scans one row selected with ContentColumns.
func ScanContent(row RowScanner) (Content, error) {
	var c Content
	var title, description sql.NullString

	if err := row.Scan(&c.ID, &c.FilePath, &title, &c.ContentType, &description, &c.AdditionDate, &c.Hidden); err != nil {
		return Content{}, err
	}
	c.Title = title.String
	c.Description = description.String
	return c, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// InsertContent stores a content row and returns its id. A zero
// AdditionDate is replaced with the current time.
func InsertContent(ctx context.Context, q Querier, c Content) (int64, error) {
	if c.AdditionDate.IsZero() {
		c.AdditionDate = time.Now()
	}

	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO content (file_path, title, content_type, description, addition_date, hidden)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`, c.FilePath, nullString(c.Title), c.ContentType, nullString(c.Description), c.AdditionDate.UTC(), c.Hidden).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert content %q: %w", c.FilePath, err)
	}
	return id, nil
}

// GetContent returns a content row by id, or sql.ErrNoRows.
func GetContent(ctx context.Context, q Querier, id int64) (Content, error) {
	return ScanContent(q.QueryRowContext(ctx, "SELECT "+ContentColumns+" FROM content WHERE id = ?", id))
}

// SetContentHidden updates the visibility flag of a content row.
func SetContentHidden(ctx context.Context, q Querier, id int64, hidden bool) error {
	_, err := q.ExecContext(ctx, "UPDATE content SET hidden = ? WHERE id = ?", hidden, id)
	return err
}

// LinkTag attaches a tag to content. Attaching twice is a no-op.
func LinkTag(ctx context.Context, q Querier, contentID, tagID int64) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO content_tags_list (content_id, tag_id) VALUES (?, ?)
		ON CONFLICT (content_id, tag_id) DO NOTHING
	`, contentID, tagID)
	return err
}

// UnlinkTag removes one content-tag edge.
func UnlinkTag(ctx context.Context, q Querier, contentID, tagID int64) error {
	_, err := q.ExecContext(ctx,
		"DELETE FROM content_tags_list WHERE content_id = ? AND tag_id = ?",
		contentID, tagID,
	)
	return err
}

// RelinkTag rewrites the tag of one content-tag edge.
func RelinkTag(ctx context.Context, q Querier, contentID, fromTagID, toTagID int64) error {
	_, err := q.ExecContext(ctx,
		"UPDATE content_tags_list SET tag_id = ? WHERE content_id = ? AND tag_id = ?",
		toTagID, contentID, fromTagID,
	)
	return err
}

// ContentIDsForTag lists the content ids linked to a tag.
func ContentIDsForTag(ctx context.Context, q Querier, tagID int64) ([]int64, error) {
	return queryIDs(ctx, q, "SELECT content_id FROM content_tags_list WHERE tag_id = ? ORDER BY content_id", tagID)
}

// TagIDsForContent lists the tag ids linked to a content row.
func TagIDsForContent(ctx context.Context, q Querier, contentID int64) ([]int64, error) {
	return queryIDs(ctx, q, "SELECT tag_id FROM content_tags_list WHERE content_id = ? ORDER BY tag_id", contentID)
}

// QueryIDs runs a query returning a single integer column.
func QueryIDs(ctx context.Context, q Querier, query string, args ...any) ([]int64, error) {
	return queryIDs(ctx, q, query, args...)
}

func queryIDs(ctx context.Context, q Querier, query string, args ...any) ([]int64, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.Error("error closing rows: %v", err)
		}
	}()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Stats counts tags, aliases, links and content rows.
func Stats(ctx context.Context, q Querier) (GraphStats, error) {
	var s GraphStats
	err := q.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM tag),
			(SELECT COUNT(*) FROM tag_alias),
			(SELECT COUNT(*) FROM content_tags_list),
			(SELECT COUNT(*) FROM content)
	`).Scan(&s.TotalTags, &s.TotalAliases, &s.TotalLinks, &s.TotalContent)
	return s, err
}

// GraphStats implements metrics.StatsProvider.
func (d *Database) GraphStats(ctx context.Context) (metrics.Stats, error) {
	s, err := Stats(ctx, d)
	if err != nil {
		return metrics.Stats{}, err
	}
	return metrics.Stats{
		TotalTags:    s.TotalTags,
		TotalAliases: s.TotalAliases,
		TotalLinks:   s.TotalLinks,
		TotalContent: s.TotalContent,
	}, nil
}
