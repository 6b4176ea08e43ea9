// Package llm abstracts the language models used by the generation
// pipeline. Providers (Groq, Gemini) live under internal/platform and
// implement Client; this package holds the shared errors, call options,
// the retrying and rate-limited Resilient wrapper, and the prompt templates.
package llm
