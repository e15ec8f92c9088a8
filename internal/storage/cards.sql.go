package storage

import (
	"context"
	"database/sql"
	"fmt"

	"cardspend/internal/core"
)

const createPaymentMethod = `
INSERT INTO payment_methods (user_id, name, type, created_at)
VALUES (?, ?, ?, ?)
RETURNING id
`

func (q *Queries) CreatePaymentMethod(ctx context.Context, pm core.PaymentMethod) (core.PaymentMethod, error) {
	err := q.db.QueryRowContext(ctx, createPaymentMethod,
		pm.UserID, pm.Name, string(pm.Type), pm.CreatedAt.UTC().Format(timestampLayout),
	).Scan(&pm.ID)
	if err != nil {
		return core.PaymentMethod{}, fmt.Errorf("insert payment method: %w", err)
	}
	return pm, nil
}

const getPaymentMethod = `
SELECT id, user_id, name, type, created_at FROM payment_methods WHERE id = ?
`

func (q *Queries) GetPaymentMethod(ctx context.Context, id int64) (core.PaymentMethod, error) {
	var (
		pm        core.PaymentMethod
		typ       string
		createdAt string
	)
	err := q.db.QueryRowContext(ctx, getPaymentMethod, id).
		Scan(&pm.ID, &pm.UserID, &pm.Name, &typ, &createdAt)
	if err != nil {
		return core.PaymentMethod{}, notFound(err, "payment method", id)
	}
	pm.Type = core.PaymentMethodType(typ)
	if pm.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return core.PaymentMethod{}, err
	}
	return pm, nil
}

const createCreditCard = `
INSERT INTO credit_cards (user_id, payment_method_id, name, bank, billing_close_day, payment_due_day, credit_limit_cents, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id
`

func (q *Queries) CreateCreditCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error) {
	err := q.db.QueryRowContext(ctx, createCreditCard,
		c.UserID, c.PaymentMethodID, c.Name, c.Bank, c.CloseDay, c.DueDay,
		nullMoney(c.CreditLimit), c.CreatedAt.UTC().Format(timestampLayout),
	).Scan(&c.ID)
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("insert credit card: %w", err)
	}
	return c, nil
}

const creditCardColumns = `id, user_id, payment_method_id, name, bank, billing_close_day, payment_due_day, credit_limit_cents, created_at`

func scanCreditCard(row interface{ Scan(...any) error }) (core.CreditCard, error) {
	var (
		c         core.CreditCard
		limit     sql.NullInt64
		createdAt string
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.PaymentMethodID, &c.Name, &c.Bank,
		&c.CloseDay, &c.DueDay, &limit, &createdAt); err != nil {
		return core.CreditCard{}, err
	}
	c.CreditLimit = moneyPtr(limit)
	t, err := parseTimestamp(createdAt)
	if err != nil {
		return core.CreditCard{}, err
	}
	c.CreatedAt = t
	return c, nil
}

const getCreditCard = `SELECT ` + creditCardColumns + ` FROM credit_cards WHERE id = ?`

func (q *Queries) GetCreditCard(ctx context.Context, id int64) (core.CreditCard, error) {
	c, err := scanCreditCard(q.db.QueryRowContext(ctx, getCreditCard, id))
	if err != nil {
		return core.CreditCard{}, notFound(err, "credit card", id)
	}
	return c, nil
}

const getCreditCardByPaymentMethod = `SELECT ` + creditCardColumns + ` FROM credit_cards WHERE payment_method_id = ?`

func (q *Queries) GetCreditCardByPaymentMethod(ctx context.Context, paymentMethodID int64) (core.CreditCard, error) {
	c, err := scanCreditCard(q.db.QueryRowContext(ctx, getCreditCardByPaymentMethod, paymentMethodID))
	if err != nil {
		return core.CreditCard{}, notFound(err, "credit card for payment method", paymentMethodID)
	}
	return c, nil
}

const listCreditCards = `SELECT ` + creditCardColumns + ` FROM credit_cards WHERE user_id = ? ORDER BY name, id`

func (q *Queries) ListCreditCards(ctx context.Context, userID int64) ([]core.CreditCard, error) {
	rows, err := q.db.QueryContext(ctx, listCreditCards, userID)
	if err != nil {
		return nil, fmt.Errorf("list credit cards: %w", err)
	}
	defer rows.Close()

	var cards []core.CreditCard
	for rows.Next() {
		c, err := scanCreditCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credit card: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

const updateCreditCard = `
UPDATE credit_cards
SET name = ?, bank = ?, billing_close_day = ?, payment_due_day = ?, credit_limit_cents = ?
WHERE id = ?
`

func (q *Queries) UpdateCreditCard(ctx context.Context, c core.CreditCard) error {
	_, err := q.db.ExecContext(ctx, updateCreditCard,
		c.Name, c.Bank, c.CloseDay, c.DueDay, nullMoney(c.CreditLimit), c.ID)
	if err != nil {
		return fmt.Errorf("update credit card %d: %w", c.ID, err)
	}
	return nil
}
