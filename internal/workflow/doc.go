// Package workflow runs a directed graph of named nodes over a shared
// State. Each node returns the name of its successor; the run ends when a
// node routes to End, or to ErrorHandler after a failure.
package workflow
