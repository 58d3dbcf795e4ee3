// Package main provides tagctl, the administrative CLI for the media tag graph.
//
// tagctl is a thin layer over internal/tags: each command parses its flags,
// opens one database session, runs one core operation and prints the result.
//
// # Configuration
//
// Settings come from the YAML file named by --config, overridden by
// environment variables (TAGS_DB_DRIVER, TAGS_DB_PATH, TAGS_DB_DSN,
// TAGS_RANDOM_STRATEGY, LOG_LEVEL, ...). Without a file the defaults open
// ./tags.db with SQLite.
//
// # Commands
//
//   - register: idempotent tag registration with an alias
//   - tag: get, set, delete, categories, children, descendants, ancestors, content
//   - alias: add, delete, list, search, lookup
//   - parent: set (cycle-checked) and clear
//   - merge: fold one tag into another, confirmed interactively unless --yes
//   - resolve: expand references to tag ids
//   - query, count: content selection by tag groups
//   - stats: tag, alias, link and content totals
//   - export, import: tag graph backup as YAML tag documents
//   - serve-metrics: Prometheus exporter with health endpoints
//   - version: build information
//
// # References and Groups
//
// On the command line a reference is "#42" for a tag id or any other string
// for a label. A --group flag holds comma separated references; a leading
// '!' negates the group:
//
//	tagctl query -g 'cat,#12' -g '!sketch' --order date_desc --limit 50
//
// Groups can also be read from YAML with --groups-file, where unquoted
// integers are tag ids.
//
// # Output
//
// --output selects text (default), json or yaml.
package main
