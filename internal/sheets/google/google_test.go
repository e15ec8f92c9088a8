package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"cardspend/internal/core"
	"cardspend/internal/log"
)

type fakeSheets struct {
	mu       sync.Mutex
	existing []string
	calls    []string
	written  [][]any
	failPut  bool
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/spreadsheets/sheet-id"):
		f.calls = append(f.calls, "get")
		var sheets []map[string]any
		for _, title := range f.existing {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": title}})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"sheets": sheets})
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		f.calls = append(f.calls, "add")
		_, _ = io.WriteString(w, `{}`)
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		f.calls = append(f.calls, "clear")
		_, _ = io.WriteString(w, `{}`)
	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		f.calls = append(f.calls, "update")
		if f.failPut {
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, `{"error":{"code":403,"message":"denied"}}`)
			return
		}
		var vr struct {
			Values [][]any `json:"values"`
		}
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.written = vr.Values
		_, _ = io.WriteString(w, `{}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newFakeClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return newClient(svc, "sheet-id", log.Nop())
}

func detail() core.StatementDetail {
	return core.StatementDetail{
		Statement: core.MonthlyStatement{
			ID:          9,
			Period:      core.NewPeriod(2025, 3),
			StartDate:   core.NewDate(2025, 2, 16),
			ClosingDate: core.NewDate(2025, 3, 15),
			DueDate:     core.NewDate(2025, 3, 25),
		},
		Card: core.CreditCard{ID: 1, Name: "Visa"},
		Lines: []core.StatementLine{
			{PurchaseDate: core.NewDate(2025, 3, 1), Description: "Coffee", Number: 1, Count: 1, Amount: core.Money{Cents: 1550}, Currency: core.CurrencyARS},
		},
		Total: core.Money{Cents: 1550},
	}
}

func TestExportStatement_CreatesMissingTab(t *testing.T) {
	fake := &fakeSheets{existing: []string{"Summary"}}
	c := newFakeClient(t, fake)

	ref, err := c.ExportStatement(context.Background(), detail())
	require.NoError(t, err)
	assert.Equal(t, "'Visa 202503'!A1:G10", ref)
	assert.Equal(t, []string{"get", "add", "clear", "update"}, fake.calls)
	require.Len(t, fake.written, 10)
	assert.Equal(t, "Coffee", fake.written[7][1])
	assert.Equal(t, "15.50", fake.written[9][4])

	// The tab is cached after the first export
	_, err = c.ExportStatement(context.Background(), detail())
	require.NoError(t, err)
	assert.Equal(t, []string{"get", "add", "clear", "update", "clear", "update"}, fake.calls)
}

func TestExportStatement_ExistingTab(t *testing.T) {
	fake := &fakeSheets{existing: []string{"Visa 202503"}}
	c := newFakeClient(t, fake)

	_, err := c.ExportStatement(context.Background(), detail())
	require.NoError(t, err)
	assert.Equal(t, []string{"get", "clear", "update"}, fake.calls)
}

func TestExportStatement_WriteFailure(t *testing.T) {
	fake := &fakeSheets{existing: []string{"Visa 202503"}, failPut: true}
	c := newFakeClient(t, fake)

	_, err := c.ExportStatement(context.Background(), detail())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write sheet Visa 202503")
}

func TestExportStatement_NilService(t *testing.T) {
	c := &Client{spreadsheetID: "test"}
	_, err := c.ExportStatement(context.Background(), detail())
	assert.EqualError(t, err, "sheets service not initialized")
}

func TestNew_Validation(t *testing.T) {
	_, err := New(context.Background(), Config{}, log.Nop())
	assert.EqualError(t, err, "missing GOOGLE_SPREADSHEET_ID")

	_, err = New(context.Background(), Config{SpreadsheetID: "id"}, log.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")

	_, err = New(context.Background(), Config{SpreadsheetID: "id", CredentialsFile: "/nonexistent/sa.json"}, log.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read service account file")
}

func TestCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"file"}`), 0600))

	got, err := credentials(Config{CredentialsFile: path})
	require.NoError(t, err)
	assert.Equal(t, `{"type":"file"}`, string(got))

	got, err = credentials(Config{CredentialsFile: path, CredentialsJSON: `{"type":"inline"}`})
	require.NoError(t, err)
	assert.Equal(t, `{"type":"inline"}`, string(got))
}
