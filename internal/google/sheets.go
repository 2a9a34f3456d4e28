package google

import (
	"context"
	"fmt"

	"google.golang.org/api/sheets/v4"

	"go.uber.org/zap"
)

const (
	// recordRange is the candidate log: name, email, schedule, label, summary.
	recordRange = "Sheet1!A:E"
	probeRange  = "Sheet1!A1:E1"
)

// Sheets wraps the Sheets client behind the append-only candidate log.
type Sheets struct {
	srv           *sheets.Service
	spreadsheetID string
	logger        *zap.Logger
}

// CanConnect probes the spreadsheet header row. It is the hard precondition
// of every screening run.
func (s *Sheets) CanConnect(ctx context.Context) bool {
	_, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, probeRange).Context(ctx).Do()
	if err != nil {
		s.logger.Warn("spreadsheet probe failed",
			zap.String("spreadsheet_id", s.spreadsheetID),
			zap.Error(err),
		)
		return false
	}

	return true
}

// Append adds one candidate record below the existing rows.
func (s *Sheets) Append(ctx context.Context, row []string) error {
	values := make([]interface{}, len(row))
	for i, cell := range row {
		values[i] = cell
	}

	body := &sheets.ValueRange{Values: [][]interface{}{values}}
	_, err := s.srv.Spreadsheets.Values.Append(s.spreadsheetID, recordRange, body).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("appending candidate record: %w", err)
	}

	return nil
}

// ReadAll returns every recorded row as strings, header included.
func (s *Sheets) ReadAll(ctx context.Context) ([][]string, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, recordRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading candidate records: %w", err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, fmt.Sprint(cell))
		}
		rows = append(rows, row)
	}

	return rows, nil
}
