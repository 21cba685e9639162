// Package domain contains the core entities of the review engine: items,
// their review state, ratings and calendar dates. It has no knowledge of
// storage or transport.
package domain
