package storage

import (
	"context"
	"database/sql"
	"fmt"

	"cardspend/internal/core"
)

const createInstallment = `
INSERT INTO installments (
    purchase_id, installment_number, total_installments, amount_cents, currency,
    billing_period, due_date, monthly_statement_id, manually_assigned_statement_id
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id
`

func (q *Queries) CreateInstallment(ctx context.Context, i core.Installment) (core.Installment, error) {
	err := q.db.QueryRowContext(ctx, createInstallment,
		i.PurchaseID, i.Number, i.Count, i.Amount.Cents, string(i.Currency),
		i.Period.String(), formatDate(i.DueDate), i.ComputedStatementID, nullInt64(i.ManualStatementID),
	).Scan(&i.ID)
	if err != nil {
		return core.Installment{}, fmt.Errorf("insert installment %d of purchase %d: %w", i.Number, i.PurchaseID, err)
	}
	return i, nil
}

const installmentColumns = `id, purchase_id, installment_number, total_installments, amount_cents, currency,
    billing_period, due_date, monthly_statement_id, manually_assigned_statement_id`

func scanInstallment(row interface{ Scan(...any) error }) (core.Installment, error) {
	var (
		i        core.Installment
		currency string
		period   string
		due      string
		manual   sql.NullInt64
	)
	if err := row.Scan(&i.ID, &i.PurchaseID, &i.Number, &i.Count, &i.Amount.Cents, &currency,
		&period, &due, &i.ComputedStatementID, &manual); err != nil {
		return core.Installment{}, err
	}
	var err error
	if i.Period, err = core.ParsePeriod(period); err != nil {
		return core.Installment{}, err
	}
	if i.DueDate, err = parseDate(due); err != nil {
		return core.Installment{}, err
	}
	i.Currency = core.Currency(currency)
	i.ManualStatementID = int64Ptr(manual)
	return i, nil
}

const getInstallment = `SELECT ` + installmentColumns + ` FROM installments WHERE id = ?`

func (q *Queries) GetInstallment(ctx context.Context, id int64) (core.Installment, error) {
	i, err := scanInstallment(q.db.QueryRowContext(ctx, getInstallment, id))
	if err != nil {
		return core.Installment{}, notFound(err, "installment", id)
	}
	return i, nil
}

const listInstallmentsByPurchase = `SELECT ` + installmentColumns + `
FROM installments WHERE purchase_id = ?
ORDER BY installment_number ASC`

func (q *Queries) ListInstallmentsByPurchase(ctx context.Context, purchaseID int64) ([]core.Installment, error) {
	rows, err := q.db.QueryContext(ctx, listInstallmentsByPurchase, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("list installments of purchase %d: %w", purchaseID, err)
	}
	defer rows.Close()

	var out []core.Installment
	for rows.Next() {
		i, err := scanInstallment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan installment: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

const updateInstallmentAmount = `UPDATE installments SET amount_cents = ? WHERE id = ?`

func (q *Queries) UpdateInstallmentAmount(ctx context.Context, id int64, cents int64) error {
	if _, err := q.db.ExecContext(ctx, updateInstallmentAmount, cents, id); err != nil {
		return fmt.Errorf("update amount of installment %d: %w", id, err)
	}
	return nil
}

const setManualStatement = `UPDATE installments SET manually_assigned_statement_id = ? WHERE id = ?`

// SetManualStatement sets or clears (nil) the manual override. The computed
// assignment column is left untouched.
func (q *Queries) SetManualStatement(ctx context.Context, id int64, statementID *int64) error {
	if _, err := q.db.ExecContext(ctx, setManualStatement, nullInt64(statementID), id); err != nil {
		return fmt.Errorf("set manual statement of installment %d: %w", id, err)
	}
	return nil
}

const updateInstallmentSchedule = `
UPDATE installments
SET billing_period = ?, due_date = ?, monthly_statement_id = ?
WHERE id = ?
`

func (q *Queries) UpdateInstallmentSchedule(ctx context.Context, id int64, period core.Period, due core.Date, computedStatementID int64) error {
	_, err := q.db.ExecContext(ctx, updateInstallmentSchedule,
		period.String(), formatDate(due), computedStatementID, id)
	if err != nil {
		return fmt.Errorf("reschedule installment %d: %w", id, err)
	}
	return nil
}

const deleteInstallmentsByPurchase = `DELETE FROM installments WHERE purchase_id = ?`

func (q *Queries) DeleteInstallmentsByPurchase(ctx context.Context, purchaseID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteInstallmentsByPurchase, purchaseID)
	if err != nil {
		return 0, fmt.Errorf("delete installments of purchase %d: %w", purchaseID, err)
	}
	return res.RowsAffected()
}

const countInstallmentsReferencingStatement = `
SELECT COUNT(*) FROM installments
WHERE monthly_statement_id = ? OR manually_assigned_statement_id = ?
`

// CountInstallmentsReferencingStatement counts computed and manual references.
func (q *Queries) CountInstallmentsReferencingStatement(ctx context.Context, statementID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countInstallmentsReferencingStatement, statementID, statementID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count installments of statement %d: %w", statementID, err)
	}
	return n, nil
}

const listStatementLines = `
SELECT i.id, i.purchase_id, p.purchase_date, p.description, p.category_id,
       i.installment_number, i.total_installments, i.amount_cents, i.currency,
       i.manually_assigned_statement_id IS NOT NULL
FROM installments i
JOIN purchases p ON p.id = i.purchase_id
WHERE COALESCE(i.manually_assigned_statement_id, i.monthly_statement_id) = ?
ORDER BY p.purchase_date ASC, i.id ASC
`

// ListStatementLines returns the installments whose effective assignment is
// the given statement, joined with their purchase.
func (q *Queries) ListStatementLines(ctx context.Context, statementID int64) ([]core.StatementLine, error) {
	rows, err := q.db.QueryContext(ctx, listStatementLines, statementID)
	if err != nil {
		return nil, fmt.Errorf("list lines of statement %d: %w", statementID, err)
	}
	defer rows.Close()

	var out []core.StatementLine
	for rows.Next() {
		var (
			l        core.StatementLine
			date     string
			currency string
		)
		if err := rows.Scan(&l.InstallmentID, &l.PurchaseID, &date, &l.Description, &l.CategoryID,
			&l.Number, &l.Count, &l.Amount.Cents, &currency, &l.Manual); err != nil {
			return nil, fmt.Errorf("scan statement line: %w", err)
		}
		if l.PurchaseDate, err = parseDate(date); err != nil {
			return nil, err
		}
		l.Currency = core.Currency(currency)
		out = append(out, l)
	}
	return out, rows.Err()
}
