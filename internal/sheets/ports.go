// Package sheets defines the statement export port shared by the Google
// Sheets adapter and the in-memory adapter used in development and tests.
package sheets

import (
	"context"

	"cardspend/internal/core"
)

// StatementExporter writes a statement detail into a spreadsheet and returns a
// reference to the written range.
type StatementExporter interface {
	ExportStatement(ctx context.Context, d core.StatementDetail) (string, error)
}
