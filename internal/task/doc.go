// Package task manages background job queuing, processing, and lifecycle.
// Pipeline runs take minutes, so the API stores them as tasks and a worker
// pool executes them outside the request. Tasks are persisted before they
// are queued and recovered after a restart.
package task
