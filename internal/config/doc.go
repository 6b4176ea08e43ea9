// Package config loads srsforge settings from config.yaml, a .env file and
// FORGE_* environment variables, and validates them section by section.
package config
