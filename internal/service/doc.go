// Package service contains the application use cases behind the HTTP API
// and the forge CLI: accepting SRS documents as pipeline runs, reporting
// run progress and artifacts, and registering API clients.
//
// Services receive their repositories through constructor injection and
// apply transactional boundaries with store.RunInTransaction. Expected
// conditions are reported with the sentinel errors in errors.go so the API
// layer can map them to status codes with errors.Is.
package service
