// Package gemini implements llm.Client on top of Google's Gemini API using
// the google.golang.org/genai SDK.
//
// The client performs a single request per call and translates SDK results
// into the llm package errors: safety blocks become llm.ErrContentBlocked,
// empty candidates become llm.ErrInvalidResponse, and rate limiting or
// server failures become llm.ErrTransientFailure so that llm.Resilient can
// retry them.
package gemini
