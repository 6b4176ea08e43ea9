// Package domain contains the core entities of srsforge: the requirements
// extracted from an SRS document, pipeline runs, the artifacts they produce
// and the API clients that submit them. It is independent of any storage or
// delivery mechanism.
package domain
