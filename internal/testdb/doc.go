// Package testdb provides database helpers for tests.
//
// Postgres helpers are used by tests built with the integration tag and skip
// themselves when no database URL is configured:
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        // changes are rolled back when fn returns
//	    })
//	}
//
// NewSQLiteDB gives every test its own migrated sqlite file and needs no
// external services.
package testdb
