// Package config loads tagctl settings from an optional YAML file and the
// environment.
//
// Values resolve in three layers, later ones winning:
//
//  1. Built-in defaults (SQLite at ./tags.db, SQL-side random ordering,
//     one-minute metrics collection).
//  2. The YAML file passed to [Load], when it exists.
//  3. Environment variables:
//
//     TAGS_DB_DRIVER         sqlite3 | postgres
//     TAGS_DB_DSN            PostgreSQL connection string
//     TAGS_DB_PATH           SQLite database file
//     TAGS_DB_MAX_OPEN_CONNS connection pool cap
//     TAGS_RANDOM_STRATEGY   sql | client
//     TAGS_DEFAULT_LIMIT     page size for queries without --limit
//     TAGS_COLLECT_INTERVAL  metrics collection interval (Go duration)
//     LOG_LEVEL, LOG_FORMAT  logging, see package logging
//
// A YAML file looks like:
//
//	database:
//	  driver: postgres
//	  dsn: postgres://tags@localhost/tags?sslmode=disable
//	query:
//	  random_strategy: client
//	  default_limit: 50
//	metrics:
//	  collect_interval: 30s
//	log:
//	  level: debug
//	  format: json
package config
