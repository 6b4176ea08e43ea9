// Package tracing records the nested steps of a pipeline run.
//
// A Recorder opens a domain.TraceRun for each traced step and closes it with
// the step's outputs and error. Trace runs nest through the context: a run
// started from a context that already carries one becomes its child.
// Recorders persist trace runs to the database (StoreRecorder), export them as
// OpenTelemetry spans (OTelRecorder), or both (Multi). Recording failures are
// logged and never returned to the caller.
package tracing
