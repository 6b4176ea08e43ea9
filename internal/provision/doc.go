// Package provision prepares the environment a generated project runs in:
// a PostgreSQL container, a Python virtual environment with the project's
// requirements, and pytest runs against the generated tests.
//
// External commands go through the Runner interface so callers can be tested
// without a Python toolchain.
package provision
