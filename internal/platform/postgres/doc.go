// Package postgres provides the PostgreSQL implementation of store.ItemStore
// together with its embedded goose migrations. Queries are hand-written SQL
// executed through the pgx stdlib driver; errors are mapped onto the store
// package's sentinels with MapError.
package postgres
