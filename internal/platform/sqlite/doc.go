// Package sqlite provides a store.ItemStore backed by a single sqlite file,
// for local use and tests. Queries are built with squirrel; the schema is
// applied with embedded goose migrations.
package sqlite
