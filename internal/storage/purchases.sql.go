package storage

import (
	"context"
	"database/sql"
	"fmt"

	"cardspend/internal/core"
)

const createPurchase = `
INSERT INTO purchases (
    user_id, payment_method_id, category_id, purchase_date, description,
    total_amount_cents, currency, installments_count,
    original_amount_cents, original_currency, exchange_rate_id, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id
`

func (q *Queries) CreatePurchase(ctx context.Context, p core.Purchase) (core.Purchase, error) {
	err := q.db.QueryRowContext(ctx, createPurchase,
		p.UserID, p.PaymentMethodID, p.CategoryID, formatDate(p.Date), p.Description,
		p.Amount.Cents, string(p.Currency), p.InstallmentCount,
		nullMoney(p.OriginalAmount), string(p.OriginalCurrency), nullInt64(p.ExchangeRateID),
		p.CreatedAt.UTC().Format(timestampLayout),
	).Scan(&p.ID)
	if err != nil {
		return core.Purchase{}, fmt.Errorf("insert purchase: %w", err)
	}
	return p, nil
}

const purchaseColumns = `id, user_id, payment_method_id, category_id, purchase_date, description,
    total_amount_cents, currency, installments_count,
    original_amount_cents, original_currency, exchange_rate_id, created_at`

func scanPurchase(row interface{ Scan(...any) error }) (core.Purchase, error) {
	var (
		p              core.Purchase
		date           string
		currency       string
		originalAmount sql.NullInt64
		originalCur    string
		rateID         sql.NullInt64
		createdAt      string
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.PaymentMethodID, &p.CategoryID, &date, &p.Description,
		&p.Amount.Cents, &currency, &p.InstallmentCount,
		&originalAmount, &originalCur, &rateID, &createdAt); err != nil {
		return core.Purchase{}, err
	}
	var err error
	if p.Date, err = parseDate(date); err != nil {
		return core.Purchase{}, err
	}
	if p.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return core.Purchase{}, err
	}
	p.Currency = core.Currency(currency)
	p.OriginalAmount = moneyPtr(originalAmount)
	p.OriginalCurrency = core.Currency(originalCur)
	p.ExchangeRateID = int64Ptr(rateID)
	return p, nil
}

const getPurchase = `SELECT ` + purchaseColumns + ` FROM purchases WHERE id = ?`

func (q *Queries) GetPurchase(ctx context.Context, id int64) (core.Purchase, error) {
	p, err := scanPurchase(q.db.QueryRowContext(ctx, getPurchase, id))
	if err != nil {
		return core.Purchase{}, notFound(err, "purchase", id)
	}
	return p, nil
}

const listPurchases = `SELECT ` + purchaseColumns + `
FROM purchases WHERE user_id = ?
ORDER BY purchase_date DESC, id DESC`

func (q *Queries) ListPurchases(ctx context.Context, userID int64) ([]core.Purchase, error) {
	rows, err := q.db.QueryContext(ctx, listPurchases, userID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var out []core.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const updatePurchase = `
UPDATE purchases
SET category_id = ?, purchase_date = ?, description = ?, total_amount_cents = ?
WHERE id = ?
`

func (q *Queries) UpdatePurchase(ctx context.Context, p core.Purchase) error {
	_, err := q.db.ExecContext(ctx, updatePurchase,
		p.CategoryID, formatDate(p.Date), p.Description, p.Amount.Cents, p.ID)
	if err != nil {
		return fmt.Errorf("update purchase %d: %w", p.ID, err)
	}
	return nil
}

const deletePurchase = `DELETE FROM purchases WHERE id = ?`

func (q *Queries) DeletePurchase(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deletePurchase, id)
	if err != nil {
		return 0, fmt.Errorf("delete purchase %d: %w", id, err)
	}
	return res.RowsAffected()
}
