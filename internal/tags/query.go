package tags

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"media-tags/internal/database"
	"media-tags/internal/logging"
	"media-tags/internal/metrics"
)

const (
	positiveGroupSQL = "id IN (SELECT content_id FROM content_tags_list WHERE tag_id IN (%s))"
	negatedGroupSQL  = "id NOT IN (SELECT content_id FROM content_tags_list WHERE tag_id IN (%s))"

	// Clauses for groups that resolved to no tag ids.
	emptyPositiveSQL = "1 = 0"
	emptyNegatedSQL  = "1 = 1"
)

// Query selects content by tag groups. The zero Query matches every visible
// content row in engine order.
type Query struct {
	// Groups are AND-ed in order. An empty list applies no tag filter.
	Groups []*Group
	// Limit caps the result; zero means no limit.
	Limit int
	// Offset skips rows and only applies together with Limit.
	Offset  int
	OrderBy Ordering
	Hidden  HiddenFilter
	// Random selects how OrderRandom is realised.
	Random RandomStrategy
	// Shuffle permutes fetched rows for client-side random ordering.
	// Nil uses math/rand/v2.
	Shuffle func(n int, swap func(i, j int))
}

// Statement is a compiled content query. SQL uses '?' placeholders, which
// the executing Querier rebinds for its engine.
type Statement struct {
	SQL  string
	Args []any
	// GroupSizes holds the number of tag ids bound for each group.
	GroupSizes []int
	// ClientShuffle is set when rows must be shuffled after fetching.
	ClientShuffle bool
}

func (qr Query) validate() error {
	for i, g := range qr.Groups {
		if g == nil {
			return fmt.Errorf("%w: group %d", ErrNilGroup, i)
		}
		for j, ref := range g.References {
			if err := ref.validate(); err != nil {
				return fmt.Errorf("group %d reference %d: %w", i, j, err)
			}
		}
	}

	switch qr.OrderBy {
	case OrderNone, OrderDateDesc, OrderDateAsc, OrderRandom:
	default:
		return fmt.Errorf("%w: %d", ErrInvalidOrdering, int(qr.OrderBy))
	}

	switch qr.Hidden {
	case FilterHidden, ShowAll, OnlyHidden:
	default:
		return fmt.Errorf("%w: %d", ErrInvalidHiddenFilter, int(qr.Hidden))
	}

	switch qr.Random {
	case RandomSQL, RandomClient:
	default:
		return fmt.Errorf("%w: %d", ErrInvalidStrategy, int(qr.Random))
	}

	if qr.Limit < 0 || qr.Offset < 0 {
		return fmt.Errorf("%w: limit=%d offset=%d", ErrNegativePagination, qr.Limit, qr.Offset)
	}
	return nil
}

// Compile resolves the query's groups and builds the statement selecting
// database.ContentColumns. The whole query is validated before any SQL runs.
func Compile(ctx context.Context, q database.Querier, qr Query) (Statement, error) {
	return compile(ctx, q, "SELECT "+database.ContentColumns+" FROM content", qr)
}

// CompileCount builds the COUNT(*) form of the query. Ordering and
// pagination are ignored.
func CompileCount(ctx context.Context, q database.Querier, groups []*Group, hidden HiddenFilter) (Statement, error) {
	return compile(ctx, q, "SELECT COUNT(*) FROM content", Query{Groups: groups, Hidden: hidden})
}

func compile(ctx context.Context, q database.Querier, base string, qr Query) (Statement, error) {
	if err := qr.validate(); err != nil {
		return Statement{}, err
	}

	var stmt Statement
	var where []string

	for _, g := range qr.Groups {
		ids, err := ResolveGroup(ctx, q, g)
		if err != nil {
			return Statement{}, err
		}
		stmt.GroupSizes = append(stmt.GroupSizes, len(ids))

		if len(ids) == 0 {
			if g.Negate {
				where = append(where, emptyNegatedSQL)
			} else {
				where = append(where, emptyPositiveSQL)
			}
			continue
		}

		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
		if g.Negate {
			where = append(where, fmt.Sprintf(negatedGroupSQL, placeholders))
		} else {
			where = append(where, fmt.Sprintf(positiveGroupSQL, placeholders))
		}
		for _, id := range ids {
			stmt.Args = append(stmt.Args, id)
		}
	}

	switch qr.Hidden {
	case FilterHidden:
		where = append(where, "hidden = FALSE")
	case OnlyHidden:
		where = append(where, "hidden = TRUE")
	}

	var b strings.Builder
	b.WriteString(base)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}

	switch qr.OrderBy {
	case OrderDateDesc:
		b.WriteString(" ORDER BY addition_date DESC")
	case OrderDateAsc:
		b.WriteString(" ORDER BY addition_date")
	case OrderRandom:
		fn, ok := q.Dialect().RandomFunc()
		if qr.Random == RandomClient || !ok {
			stmt.ClientShuffle = true
		} else {
			b.WriteString(" ORDER BY ")
			b.WriteString(fn)
		}
	}

	if qr.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(qr.Limit))
		if qr.Offset > 0 {
			b.WriteString(" OFFSET ")
			b.WriteString(strconv.Itoa(qr.Offset))
		}
	}

	stmt.SQL = b.String()

	metrics.QueryGroups.Observe(float64(len(qr.Groups)))
	metrics.QueryPlaceholders.Observe(float64(len(stmt.Args)))
	logging.Debug("Resulting SQL: %s, tag_ids = %v", stmt.SQL, stmt.Args)
	return stmt, nil
}

// QueryContent compiles and runs the query, returning the matching rows.
func QueryContent(ctx context.Context, q database.Querier, qr Query) (items []database.Content, err error) {
	done := database.ObserveQuery("query_content")
	defer func() { done(err) }()

	stmt, err := Compile(ctx, q, qr)
	if err != nil {
		return nil, err
	}

	err = scanContent(ctx, q, stmt, func(c database.Content) error {
		items = append(items, c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if stmt.ClientShuffle {
		shuffle := qr.Shuffle
		if shuffle == nil {
			shuffle = rand.Shuffle
		}
		shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
	}

	metrics.QueryRowsReturned.WithLabelValues(qr.OrderBy.String()).Observe(float64(len(items)))
	return items, nil
}

// EachContent runs the query and calls fn for every row as it is read.
// Client-side random ordering has to see every row first, so those results
// are materialized before fn is called. Iteration stops at the first error
// from fn.
func EachContent(ctx context.Context, q database.Querier, qr Query, fn func(database.Content) error) error {
	if qr.OrderBy == OrderRandom {
		items, err := QueryContent(ctx, q, qr)
		if err != nil {
			return err
		}
		for _, c := range items {
			if err := fn(c); err != nil {
				return err
			}
		}
		return nil
	}

	stmt, err := Compile(ctx, q, qr)
	if err != nil {
		return err
	}
	return scanContent(ctx, q, stmt, fn)
}

func scanContent(ctx context.Context, q database.Querier, stmt Statement, fn func(database.Content) error) error {
	rows, err := q.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return fmt.Errorf("failed to query content: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.Error("error closing rows: %v", err)
		}
	}()

	for rows.Next() {
		c, err := database.ScanContent(rows)
		if err != nil {
			return fmt.Errorf("failed to scan content: %w", err)
		}
		if err := fn(c); err != nil {
			return err
		}
	}
	return rows.Err()
}

// QueryAll returns content without a tag filter.
func QueryAll(ctx context.Context, q database.Querier, limit, offset int, order Ordering, hidden HiddenFilter) ([]database.Content, error) {
	return QueryContent(ctx, q, Query{Limit: limit, Offset: offset, OrderBy: order, Hidden: hidden})
}

// CountContent counts the content matched by groups under the hidden filter.
func CountContent(ctx context.Context, q database.Querier, groups []*Group, hidden HiddenFilter) (count int64, err error) {
	done := database.ObserveQuery("count_content")
	defer func() { done(err) }()

	stmt, err := CompileCount(ctx, q, groups, hidden)
	if err != nil {
		return 0, err
	}
	if err := q.QueryRowContext(ctx, stmt.SQL, stmt.Args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count content: %w", err)
	}
	return count, nil
}

// TotalCount counts all content under the hidden filter.
func TotalCount(ctx context.Context, q database.Querier, hidden HiddenFilter) (int64, error) {
	return CountContent(ctx, q, nil, hidden)
}
