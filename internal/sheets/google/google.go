package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"nivasa/internal/core"
	"nivasa/internal/export"
	"nivasa/internal/log"
	"nivasa/internal/sheets"
)

// Config selects the spreadsheet tab and the service account used to
// write to it. CredentialsJSON wins over CredentialsFile.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

var _ sheets.ExpenseExporter = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	creds, err := credentials(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithOptions(ctx, cfg, logger,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
}

// NewWithOptions builds the client from raw client options; tests point it
// at a local endpoint.
func NewWithOptions(ctx context.Context, cfg Config, logger *log.Logger, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "Expenses"
	}
	if logger == nil {
		logger = log.Discard()
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
		logger:        logger.WithComponent(log.ComponentSheets),
	}, nil
}

func credentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// AppendExpenses appends one row per expense below the existing data,
// writing the header first when the tab is empty.
func (c *Client) AppendExpenses(ctx context.Context, expenses []core.Expense) (sheets.AppendResult, error) {
	if len(expenses) == 0 {
		return sheets.AppendResult{}, &core.EmptyExportError{}
	}
	if c.svc == nil {
		return sheets.AppendResult{}, errors.New("sheets service not initialized")
	}

	hasHeader, err := c.hasHeader(ctx)
	if err != nil {
		return sheets.AppendResult{}, err
	}

	values := make([][]any, 0, len(expenses)+1)
	if !hasHeader {
		values = append(values, toRow(export.Header))
	}
	for _, rec := range export.Records(expenses) {
		values = append(values, toRow(rec))
	}

	rng := fmt.Sprintf("%s!A:E", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return sheets.AppendResult{}, fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}

	res := sheets.AppendResult{Rows: len(expenses)}
	if resp.Updates != nil {
		res.Range = resp.Updates.UpdatedRange
	}
	c.logger.InfoContext(ctx, "Expenses appended to sheet",
		"sheet", c.sheetName,
		"range", res.Range,
		log.FieldRows, res.Rows)
	return res, nil
}

func (c *Client) hasHeader(ctx context.Context) (bool, error) {
	rng := fmt.Sprintf("%s!A1:E1", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("read %s: %w", rng, err)
	}
	return len(resp.Values) > 0 && len(resp.Values[0]) > 0, nil
}

func toRow(cols []string) []any {
	row := make([]any, len(cols))
	for i, v := range cols {
		row[i] = v
	}
	return row
}
