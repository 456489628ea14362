package caselog

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Worksheet sizes used when a table is provisioned for the first time.
const (
	casesSheetRows  = 1000
	imagesSheetRows = 5000
	sheetColumns    = 30
)

// SheetsLog appends rows to a Google Sheets spreadsheet, one worksheet per
// table.
type SheetsLog struct {
	service       *sheets.Service
	spreadsheetID string

	mu      sync.Mutex
	ensured bool
}

// NewSheetsLog creates a Sheets-backed tabular log.
func NewSheetsLog(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*SheetsLog, error) {
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsLog{
		service:       service,
		spreadsheetID: spreadsheetID,
	}, nil
}

// EnsureSchema creates the Cases and Images worksheets with their header rows
// when absent. Existing worksheets are left untouched, whatever their shape.
// The successful outcome is remembered so later submissions skip the read.
func (l *SheetsLog) EnsureSchema(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ensured {
		return nil
	}

	spreadsheet, err := l.service.Spreadsheets.Get(l.spreadsheetID).
		Fields("sheets(properties(title))").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("fetch spreadsheet: %w", err)
	}

	existing := make(map[string]bool, len(spreadsheet.Sheets))
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil {
			existing[sheet.Properties.Title] = true
		}
	}

	if !existing[CasesTable] {
		if err := l.createWorksheet(ctx, CasesTable, casesSheetRows, CaseColumns); err != nil {
			return err
		}
	}
	if !existing[ImagesTable] {
		if err := l.createWorksheet(ctx, ImagesTable, imagesSheetRows, ImageColumns); err != nil {
			return err
		}
	}

	l.ensured = true
	return nil
}

func (l *SheetsLog) createWorksheet(ctx context.Context, title string, rows int64, columns []string) error {
	_, err := l.service.Spreadsheets.BatchUpdate(l.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: title,
					GridProperties: &sheets.GridProperties{
						RowCount:    rows,
						ColumnCount: sheetColumns,
					},
				},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("create worksheet %q: %w", title, err)
	}

	header := make([]interface{}, len(columns))
	for i, column := range columns {
		header[i] = column
	}
	if err := l.appendRow(ctx, title, header); err != nil {
		return fmt.Errorf("write header of %q: %w", title, err)
	}

	return nil
}

// AppendImageRow appends one row to the Images worksheet.
func (l *SheetsLog) AppendImageRow(ctx context.Context, row ImageRow) error {
	if err := l.appendRow(ctx, ImagesTable, row.values()); err != nil {
		return fmt.Errorf("append image row: %w", err)
	}
	return nil
}

// AppendCaseRow appends one row to the Cases worksheet.
func (l *SheetsLog) AppendCaseRow(ctx context.Context, row CaseRow) error {
	if err := l.appendRow(ctx, CasesTable, row.values()); err != nil {
		return fmt.Errorf("append case row: %w", err)
	}
	return nil
}

func (l *SheetsLog) appendRow(ctx context.Context, table string, values []interface{}) error {
	_, err := l.service.Spreadsheets.Values.Append(l.spreadsheetID, table+"!A1", &sheets.ValueRange{
		Values: [][]interface{}{values},
	}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

var _ Log = (*SheetsLog)(nil)
