// Package sheets defines the outbound port for exporting monthly
// financial summaries to a spreadsheet.
package sheets

import (
	"context"

	"karkhana/internal/finance"
)

// SummaryWriter appends one month's financial summary as a spreadsheet
// row and returns a reference to where it landed.
type SummaryWriter interface {
	AppendSummary(ctx context.Context, s finance.Summary) (rowRef string, err error)
}
