// Package events carries the events that decouple run submission from run
// execution.
//
// The service layer emits a RunRequested event after a run is persisted. The
// task package registers a handler that turns the event into a pipeline task
// and hands it to the task runner, so the service never imports the task
// package.
package events
