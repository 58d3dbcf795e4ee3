// Package database provides the relational session used by the tag graph.
//
// It handles:
//   - Opening SQLite (mattn/go-sqlite3) or PostgreSQL (lib/pq) pools
//   - Schema creation for tags, aliases, content and content-tag links
//   - Dialect differences: placeholder rebinding, random ordering and
//     uniqueness-violation classification
//   - Transactions with commit/rollback metrics
//   - The content and content-tag link surface consumed by tag merges
//
// Every operation takes a [Querier] explicitly; there is no package-level
// connection. [Database] and [Tx] both satisfy it, so callers decide
// whether work runs on the pool or inside a transaction.
package database
