// Package postgres implements the run, artifact, client, trace and task
// stores on PostgreSQL through database/sql and the pgx driver. Schema
// migrations are embedded in the binary and applied with goose.
//
// Driver errors are translated into the sentinel errors of the store
// package by MapError so callers never depend on PostgreSQL error codes.
package postgres
