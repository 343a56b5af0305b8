// Package shared holds code used across packages that belongs to no single
// layer. Its testutil subpackage provides the player table fixtures, an
// in-memory workbook builder and a buffered slog handler for log assertions.
package shared
