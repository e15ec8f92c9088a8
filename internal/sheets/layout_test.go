package sheets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardspend/internal/core"
)

func sampleDetail() core.StatementDetail {
	return core.StatementDetail{
		Statement: core.MonthlyStatement{
			ID:           7,
			CreditCardID: 3,
			Period:       core.NewPeriod(2025, 3),
			StartDate:    core.NewDate(2025, 2, 16),
			ClosingDate:  core.NewDate(2025, 3, 15),
			DueDate:      core.NewDate(2025, 3, 25),
		},
		Card: core.CreditCard{ID: 3, Name: "Visa  Gold", Bank: "Galicia"},
		Lines: []core.StatementLine{
			{InstallmentID: 1, PurchaseDate: core.NewDate(2025, 3, 2), Description: "TV", CategoryID: 4, Number: 2, Count: 3, Amount: core.Money{Cents: 3333}, Currency: core.CurrencyARS},
			{InstallmentID: 2, PurchaseDate: core.NewDate(2025, 3, 10), Description: "Refund", Number: 1, Count: 1, Amount: core.Money{Cents: -500}, Currency: core.CurrencyARS, Manual: true},
		},
		Total: core.Money{Cents: 2833},
	}
}

func TestTabTitle(t *testing.T) {
	d := sampleDetail()
	assert.Equal(t, "Visa Gold 202503", TabTitle(d))

	d.Card.Name = "   "
	assert.Equal(t, "Card 3 202503", TabTitle(d))

	d.Card.Name = strings.Repeat("ñ", 120)
	title := TabTitle(d)
	assert.LessOrEqual(t, len(title), MaxTitleLength)
	assert.True(t, strings.HasSuffix(title, " 202503"))
}

func TestQuoteTitle(t *testing.T) {
	assert.Equal(t, "'Visa 202503'", QuoteTitle("Visa 202503"))
	assert.Equal(t, "'Ana''s card 202503'", QuoteTitle("Ana's card 202503"))
}

func TestRows(t *testing.T) {
	rows := Rows(sampleDetail())

	require.Len(t, rows, 11)
	assert.Equal(t, []any{"Card", "Visa  Gold", "Galicia"}, rows[0])
	assert.Equal(t, []any{"Closing", "2025-03-15"}, rows[3])
	assert.Equal(t, header, rows[6])
	assert.Equal(t, []any{"2025-03-02", "TV", int64(4), "2/3", "33.33", "ARS", ""}, rows[7])
	assert.Equal(t, "-5.00", rows[8][4])
	assert.Equal(t, "yes", rows[8][6])
	assert.Equal(t, []any{"Total", "", "", "", "28.33"}, rows[10])
	for _, r := range rows {
		assert.LessOrEqual(t, len(r), Columns)
	}
}
