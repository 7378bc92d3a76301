// Package shared holds cross-cutting helpers that belong to no single
// domain package. Currently this is the testutil subpackage with slog
// capture helpers for tests.
package shared
