// Package api exposes the HTTP surface of the service: client token
// issuance, SRS submission, run and artifact queries, and manifest
// validation. Handlers translate HTTP concerns into service calls and map
// service errors to status codes through MapErrorToStatusCode.
package api
