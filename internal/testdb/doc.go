//go:build integration

// Package testdb provides helpers for tests that need a real PostgreSQL
// database.
//
// Each test runs its statements inside a transaction that is rolled back
// when the test finishes, so tests can share one database and run in
// parallel without cleanup:
//
//	func TestRunStore(t *testing.T) {
//	    db := testdb.Open(t, migrate)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        runs := postgres.NewPostgresRunStore(tx, nil)
//	        ...
//	    })
//	}
//
// The connection string is read from FORGE_TEST_DATABASE_URL, falling back
// to FORGE_DATABASE_URL. Tests are skipped when neither is set.
package testdb
