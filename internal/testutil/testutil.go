// Package testutil provides test utilities for CIR, currently the
// miniredis helpers used by every Redis-backed package. No helper
// requires Docker.
package testutil
