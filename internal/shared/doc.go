// Package shared holds code used across packages that belongs to no single
// layer. Test helpers live in the testutil subpackage: option chain
// fixtures, multipart upload builders and a buffered slog handler for
// asserting on log output.
package shared
