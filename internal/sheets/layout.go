package sheets

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"cardspend/internal/core"
)

// MaxTitleLength is the longest tab title Google Sheets accepts.
const MaxTitleLength = 100

// Columns is the number of columns written per row.
const Columns = 7

var header = []any{"Purchase date", "Description", "Category", "Installment", "Amount", "Currency", "Manual"}

// TabTitle names the tab holding one statement: "<card name> <YYYYMM>".
func TabTitle(d core.StatementDetail) string {
	period := d.Statement.Period.String()
	name := strings.Join(strings.Fields(d.Card.Name), " ")
	if name == "" {
		name = fmt.Sprintf("Card %d", d.Card.ID)
	}
	// Leave room for the separator and the period
	limit := MaxTitleLength - len(period) - 1
	for len(name) > limit {
		_, size := utf8.DecodeLastRuneInString(name)
		name = name[:len(name)-size]
	}
	return strings.TrimSpace(name) + " " + period
}

// QuoteTitle quotes a tab title for use in an A1 range.
func QuoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// Rows lays out a statement: a summary block, the header, one row per
// installment and the total.
func Rows(d core.StatementDetail) [][]any {
	st := d.Statement
	rows := [][]any{
		{"Card", d.Card.Name, d.Card.Bank},
		{"Period", st.Period.String()},
		{"Start", st.StartDate.String()},
		{"Closing", st.ClosingDate.String()},
		{"Due", st.DueDate.String()},
		{},
		header,
	}
	for _, l := range d.Lines {
		manual := ""
		if l.Manual {
			manual = "yes"
		}
		rows = append(rows, []any{
			l.PurchaseDate.String(),
			l.Description,
			l.CategoryID,
			fmt.Sprintf("%d/%d", l.Number, l.Count),
			l.Amount.String(),
			string(l.Currency),
			manual,
		})
	}
	rows = append(rows, []any{}, []any{"Total", "", "", "", d.Total.String()})
	return rows
}
