package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	PaymentCreditCard    PaymentMethodType = "credit_card"
	PaymentCash          PaymentMethodType = "cash"
	PaymentBankAccount   PaymentMethodType = "bank_account"
	PaymentDigitalWallet PaymentMethodType = "digital_wallet"
)

const (
	CurrencyARS Currency = "ARS"
	CurrencyUSD Currency = "USD"
)

const (
	DateLayout           = "2006-01-02"
	MaxDescriptionLength = 500
	MaxInstallments      = 72
)

type (
	PaymentMethodType string

	Currency string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Principal identifies the user on whose behalf an operation runs.
	Principal struct {
		UserID int64
	}

	PaymentMethod struct {
		ID        int64
		UserID    int64
		Name      string
		Type      PaymentMethodType
		CreatedAt time.Time
	}

	CreditCard struct {
		ID              int64
		UserID          int64
		PaymentMethodID int64
		Name            string
		Bank            string
		CloseDay        int
		DueDay          int
		CreditLimit     *Money
		CreatedAt       time.Time
	}

	Purchase struct {
		ID               int64
		UserID           int64
		PaymentMethodID  int64
		CategoryID       int64
		Date             Date
		Description      string
		Amount           Money
		Currency         Currency
		InstallmentCount int
		// Display-only dual currency data, never used for installment math.
		OriginalAmount   *Money
		OriginalCurrency Currency
		ExchangeRateID   *int64
		CreatedAt        time.Time
	}

	Installment struct {
		ID                  int64
		PurchaseID          int64
		Number              int
		Count               int
		Amount              Money
		Currency            Currency
		Period              Period
		DueDate             Date
		ComputedStatementID int64
		ManualStatementID   *int64
	}

	MonthlyStatement struct {
		ID           int64
		CreditCardID int64
		Period       Period
		StartDate    Date
		ClosingDate  Date
		DueDate      Date
	}

	StatementLine struct {
		InstallmentID int64
		PurchaseID    int64
		PurchaseDate  Date
		Description   string
		CategoryID    int64
		Number        int
		Count         int
		Amount        Money
		Currency      Currency
		Manual        bool
	}

	StatementDetail struct {
		Statement MonthlyStatement
		Card      CreditCard
		Lines     []StatementLine
		Total     Money
	}

	// BudgetExpense is a shared-budget snapshot that references either a
	// purchase or a single installment.
	BudgetExpense struct {
		ID            int64
		BudgetID      int64
		PurchaseID    *int64
		InstallmentID *int64
		Description   string
		Amount        Money
		Currency      Currency
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrEmptyDescription = errors.New("empty description")
)

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, s)
	}
	return Date{Time: t}, nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidInput)
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: date must be a string", ErrInvalidInput)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate rejects zero amounts. Negative amounts represent credits.
func (m Money) Validate() error {
	if m.Cents == 0 {
		return fmt.Errorf("%w: amount cannot be zero", ErrInvalidAmount)
	}
	return nil
}

func (c Currency) Validate() error {
	switch c {
	case CurrencyARS, CurrencyUSD:
		return nil
	}
	return fmt.Errorf("%w: unsupported currency %q", ErrInvalidInput, string(c))
}

func (t PaymentMethodType) Validate() error {
	switch t {
	case PaymentCreditCard, PaymentCash, PaymentBankAccount, PaymentDigitalWallet:
		return nil
	}
	return fmt.Errorf("%w: unknown payment method type %q", ErrInvalidInput, string(t))
}

func (p Principal) Validate() error {
	if p.UserID <= 0 {
		return fmt.Errorf("%w: missing user", ErrUnauthorized)
	}
	return nil
}

// ValidateBillingDays checks that both card days fall in [1,31].
func ValidateBillingDays(closeDay, dueDay int) error {
	if closeDay < 1 || closeDay > 31 {
		return fmt.Errorf("%w: billing close day %d outside [1,31]", ErrInvalidConfiguration, closeDay)
	}
	if dueDay < 1 || dueDay > 31 {
		return fmt.Errorf("%w: payment due day %d outside [1,31]", ErrInvalidConfiguration, dueDay)
	}
	return nil
}

func (c CreditCard) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: credit card name is required", ErrInvalidInput)
	}
	if c.CreditLimit != nil && c.CreditLimit.Cents < 0 {
		return fmt.Errorf("%w: credit limit cannot be negative", ErrInvalidInput)
	}
	return ValidateBillingDays(c.CloseDay, c.DueDay)
}

func (p Purchase) Validate() error {
	if err := p.Date.Validate(); err != nil {
		return err
	}
	if err := validateDescription(p.Description); err != nil {
		return err
	}
	if err := p.Amount.Validate(); err != nil {
		return err
	}
	if err := p.Currency.Validate(); err != nil {
		return err
	}
	if p.InstallmentCount < 1 || p.InstallmentCount > MaxInstallments {
		return fmt.Errorf("%w: installments count must be between 1 and %d", ErrInvalidInput, MaxInstallments)
	}
	if p.PaymentMethodID <= 0 {
		return fmt.Errorf("%w: payment method is required", ErrInvalidInput)
	}
	if p.OriginalAmount != nil {
		if err := p.OriginalCurrency.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func validateDescription(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrEmptyDescription)
	}
	if len(s) > MaxDescriptionLength {
		return fmt.Errorf("%w: description too long (max %d characters)", ErrInvalidInput, MaxDescriptionLength)
	}
	return nil
}

// StatementID returns the effective statement assignment: the manual
// override when present, the computed assignment otherwise.
func (i Installment) StatementID() int64 {
	if i.ManualStatementID != nil {
		return *i.ManualStatementID
	}
	return i.ComputedStatementID
}

// IsManual reports whether the installment carries a manual override.
func (i Installment) IsManual() bool {
	return i.ManualStatementID != nil
}

// NewStatementDetail assembles a statement with its effective lines and
// their total.
func NewStatementDetail(st MonthlyStatement, card CreditCard, lines []StatementLine) StatementDetail {
	d := StatementDetail{Statement: st, Card: card, Lines: lines}
	for _, l := range lines {
		d.Total = d.Total.Add(l.Amount)
	}
	return d
}

// ValidateDates checks start <= closing <= due.
func (s MonthlyStatement) ValidateDates() error {
	if s.StartDate.IsZero() || s.ClosingDate.IsZero() || s.DueDate.IsZero() {
		return fmt.Errorf("%w: statement dates are required", ErrInvalidInput)
	}
	if s.ClosingDate.Before(s.StartDate.Time) {
		return fmt.Errorf("%w: closing date %s before start date %s", ErrInvalidInput, s.ClosingDate, s.StartDate)
	}
	if s.DueDate.Before(s.ClosingDate.Time) {
		return fmt.Errorf("%w: due date %s before closing date %s", ErrInvalidInput, s.DueDate, s.ClosingDate)
	}
	return nil
}
