// Package google exports monthly summaries to a Google Sheet using a
// service account.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"karkhana/internal/finance"
	ports "karkhana/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.SummaryWriter = (*Client)(nil)

// New creates a Sheets client from explicit configuration. Exactly one of
// credentialsFile or credentialsJSON must be set.
func New(ctx context.Context, spreadsheetID, sheetName, credentialsFile, credentialsJSON string) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if sheetName == "" {
		sheetName = "Summary"
	}

	var creds []byte
	switch {
	case credentialsJSON != "":
		creds = []byte(credentialsJSON)
	case credentialsFile != "":
		data, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		creds = data
	default:
		return nil, errors.New("missing service account credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// AppendSummary writes one summary row under the sheet's header.
func (c *Client) AppendSummary(ctx context.Context, s finance.Summary) (string, error) {
	row := summaryRow(s)

	vr := &gsheet.ValueRange{Values: [][]any{row}}
	resp, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, c.sheetName+"!A:K", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("append summary row: %w", err)
	}

	ref := ""
	if resp.Updates != nil {
		ref = resp.Updates.UpdatedRange
	}
	slog.InfoContext(ctx, "Exported monthly summary",
		"month", s.Month.String(),
		"sheet", c.sheetName,
		"range", ref)
	return ref, nil
}

// summaryRow flattens a summary into spreadsheet cells: month, income,
// expense, balance, budget limit and used, spending pct, solvency gap,
// savings rate, runway, top category.
func summaryRow(s finance.Summary) []any {
	return []any{
		s.Month.String(),
		s.Income.String(),
		s.Expense.String(),
		s.Balance.String(),
		s.BudgetLimit.String(),
		s.BudgetUsed.String(),
		s.SpendingPct,
		s.Solvency.Gap.String(),
		s.SavingsRatePct,
		s.Runway,
		s.TopCategory,
	}
}
