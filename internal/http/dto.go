package http

import (
	"time"

	"cardspend/internal/core"
)

type purchaseResponse struct {
	ID                int64         `json:"id"`
	UserID            int64         `json:"user_id"`
	PaymentMethodID   int64         `json:"payment_method_id"`
	CategoryID        int64         `json:"category_id"`
	PurchaseDate      core.Date     `json:"purchase_date"`
	Description       string        `json:"description"`
	TotalAmount       string        `json:"total_amount"`
	Currency          core.Currency `json:"currency"`
	InstallmentsCount int           `json:"installments_count"`
	OriginalAmount    *string       `json:"original_amount,omitempty"`
	OriginalCurrency  core.Currency `json:"original_currency,omitempty"`
	ExchangeRateID    *int64        `json:"exchange_rate_id,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
}

type installmentResponse struct {
	ID                          int64         `json:"id"`
	PurchaseID                  int64         `json:"purchase_id"`
	InstallmentNumber           int           `json:"installment_number"`
	TotalInstallments           int           `json:"total_installments"`
	Amount                      string        `json:"amount"`
	Currency                    core.Currency `json:"currency"`
	BillingPeriod               core.Period   `json:"billing_period"`
	DueDate                     core.Date     `json:"due_date"`
	MonthlyStatementID          int64         `json:"monthly_statement_id"`
	ManuallyAssignedStatementID *int64        `json:"manually_assigned_statement_id"`
}

type createPurchaseResponse struct {
	purchaseResponse
	Installments []installmentResponse `json:"installments"`
}

type deletePurchaseResponse struct {
	DeletedInstallments   int64 `json:"deleted_installments"`
	DeletedBudgetExpenses int64 `json:"deleted_budget_expenses"`
}

type statementResponse struct {
	ID           int64       `json:"id"`
	CreditCardID int64       `json:"credit_card_id"`
	Period       core.Period `json:"period"`
	StartDate    core.Date   `json:"start_date"`
	ClosingDate  core.Date   `json:"closing_date"`
	DueDate      core.Date   `json:"due_date"`
}

type statementLineResponse struct {
	InstallmentID     int64         `json:"installment_id"`
	PurchaseID        int64         `json:"purchase_id"`
	PurchaseDate      core.Date     `json:"purchase_date"`
	Description       string        `json:"description"`
	CategoryID        int64         `json:"category_id"`
	InstallmentNumber int           `json:"installment_number"`
	TotalInstallments int           `json:"total_installments"`
	Amount            string        `json:"amount"`
	Currency          core.Currency `json:"currency"`
	ManuallyAssigned  bool          `json:"manually_assigned"`
}

type statementDetailResponse struct {
	statementResponse
	CreditCard   cardSummary             `json:"credit_card"`
	Installments []statementLineResponse `json:"installments"`
	Total        string                  `json:"total"`
}

type cardSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Bank string `json:"bank,omitempty"`
}

type creditCardResponse struct {
	ID              int64     `json:"id"`
	PaymentMethodID int64     `json:"payment_method_id"`
	Name            string    `json:"name"`
	Bank            string    `json:"bank,omitempty"`
	BillingCloseDay int       `json:"billing_close_day"`
	PaymentDueDay   int       `json:"payment_due_day"`
	CreditLimit     *string   `json:"credit_limit,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type paymentMethodResponse struct {
	ID        int64                  `json:"id"`
	Name      string                 `json:"name"`
	Type      core.PaymentMethodType `json:"type"`
	CreatedAt time.Time              `json:"created_at"`
}

func moneyString(m *core.Money) *string {
	if m == nil {
		return nil
	}
	s := m.String()
	return &s
}

func toPurchaseResponse(p core.Purchase) purchaseResponse {
	return purchaseResponse{
		ID:                p.ID,
		UserID:            p.UserID,
		PaymentMethodID:   p.PaymentMethodID,
		CategoryID:        p.CategoryID,
		PurchaseDate:      p.Date,
		Description:       p.Description,
		TotalAmount:       p.Amount.String(),
		Currency:          p.Currency,
		InstallmentsCount: p.InstallmentCount,
		OriginalAmount:    moneyString(p.OriginalAmount),
		OriginalCurrency:  p.OriginalCurrency,
		ExchangeRateID:    p.ExchangeRateID,
		CreatedAt:         p.CreatedAt,
	}
}

func toInstallmentResponse(i core.Installment) installmentResponse {
	return installmentResponse{
		ID:                          i.ID,
		PurchaseID:                  i.PurchaseID,
		InstallmentNumber:           i.Number,
		TotalInstallments:           i.Count,
		Amount:                      i.Amount.String(),
		Currency:                    i.Currency,
		BillingPeriod:               i.Period,
		DueDate:                     i.DueDate,
		MonthlyStatementID:          i.StatementID(),
		ManuallyAssignedStatementID: i.ManualStatementID,
	}
}

func toInstallmentResponses(list []core.Installment) []installmentResponse {
	out := make([]installmentResponse, len(list))
	for i, inst := range list {
		out[i] = toInstallmentResponse(inst)
	}
	return out
}

func toStatementResponse(s core.MonthlyStatement) statementResponse {
	return statementResponse{
		ID:           s.ID,
		CreditCardID: s.CreditCardID,
		Period:       s.Period,
		StartDate:    s.StartDate,
		ClosingDate:  s.ClosingDate,
		DueDate:      s.DueDate,
	}
}

func toStatementResponses(list []core.MonthlyStatement) []statementResponse {
	out := make([]statementResponse, len(list))
	for i, s := range list {
		out[i] = toStatementResponse(s)
	}
	return out
}

func toStatementDetailResponse(d core.StatementDetail) statementDetailResponse {
	lines := make([]statementLineResponse, len(d.Lines))
	for i, l := range d.Lines {
		lines[i] = statementLineResponse{
			InstallmentID:     l.InstallmentID,
			PurchaseID:        l.PurchaseID,
			PurchaseDate:      l.PurchaseDate,
			Description:       l.Description,
			CategoryID:        l.CategoryID,
			InstallmentNumber: l.Number,
			TotalInstallments: l.Count,
			Amount:            l.Amount.String(),
			Currency:          l.Currency,
			ManuallyAssigned:  l.Manual,
		}
	}
	return statementDetailResponse{
		statementResponse: toStatementResponse(d.Statement),
		CreditCard:        cardSummary{ID: d.Card.ID, Name: d.Card.Name, Bank: d.Card.Bank},
		Installments:      lines,
		Total:             d.Total.String(),
	}
}

func toCreditCardResponse(c core.CreditCard) creditCardResponse {
	return creditCardResponse{
		ID:              c.ID,
		PaymentMethodID: c.PaymentMethodID,
		Name:            c.Name,
		Bank:            c.Bank,
		BillingCloseDay: c.CloseDay,
		PaymentDueDay:   c.DueDay,
		CreditLimit:     moneyString(c.CreditLimit),
		CreatedAt:       c.CreatedAt,
	}
}
