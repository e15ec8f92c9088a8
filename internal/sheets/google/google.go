// Package google exports statements to a Google Sheets spreadsheet, one tab
// per statement.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"cardspend/internal/cache"
	"cardspend/internal/core"
	"cardspend/internal/log"
	"cardspend/internal/sheets"
)

type Config struct {
	SpreadsheetID   string
	CredentialsFile string
	CredentialsJSON string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	logger        zerolog.Logger

	// mu serializes tab creation; tabs remembers titles known to exist.
	// Entries expire so a tab removed by hand is recreated.
	mu   sync.Mutex
	tabs *cache.LRU[struct{}]
}

const (
	tabCacheSize = 256
	tabCacheTTL  = 10 * time.Minute
)

var _ sheets.StatementExporter = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config, logger zerolog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	creds, err := credentials(cfg)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return newClient(svc, cfg.SpreadsheetID, logger), nil
}

func newClient(svc *gsheet.Service, spreadsheetID string, logger zerolog.Logger) *Client {
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		logger:        log.WithComponent(logger, log.ComponentSheets),
		tabs:          cache.NewLRU[struct{}](tabCacheSize, tabCacheTTL),
	}
}

// credentials prefers inline JSON over a file path.
func credentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// ExportStatement overwrites the statement's tab with its current content.
// Re-exporting the same statement is idempotent.
func (c *Client) ExportStatement(ctx context.Context, d core.StatementDetail) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	title := sheets.TabTitle(d)
	if err := c.ensureTab(ctx, title); err != nil {
		return "", err
	}

	quoted := sheets.QuoteTitle(title)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, quoted, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("clear sheet %s: %w", title, err)
	}

	rows := sheets.Rows(d)
	rng := fmt.Sprintf("%s!A1", quoted)
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("write sheet %s: %w", title, err)
	}

	ref := fmt.Sprintf("%s!A1:%c%d", quoted, 'A'+sheets.Columns-1, len(rows))
	c.logger.Info().
		Int64(log.FieldStatementID, d.Statement.ID).
		Str(log.FieldPeriod, d.Statement.Period.String()).
		Int("lines", len(d.Lines)).
		Str("range", ref).
		Msg("Statement exported")
	return ref, nil
}

func (c *Client) ensureTab(ctx context.Context, title string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.tabs.Get(title); ok {
		return nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet %s: %w", c.spreadsheetID, err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			c.tabs.Set(s.Properties.Title, struct{}{})
		}
	}
	if _, ok := c.tabs.Get(title); ok {
		return nil
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", title, err)
	}
	c.tabs.Set(title, struct{}{})
	c.logger.Debug().Str("sheet", title).Msg("Created sheet")
	return nil
}
