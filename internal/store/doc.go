// Package store defines the ItemStore contract shared by the Postgres and
// sqlite backends, the sentinel errors they map driver failures onto, and
// the transaction helper used by the review service.
package store
