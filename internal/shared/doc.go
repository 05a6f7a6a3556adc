// Package shared holds cross-cutting helpers that belong to no single
// analysis or transport layer.
//
// The testutil subpackage provides slog capture utilities used by tests
// across the codebase to assert on structured log output without pulling
// a real handler into the test binary.
//
// Code here must stay free of business logic and of imports from other
// internal packages, so it can be used from anywhere without cycles.
package shared
