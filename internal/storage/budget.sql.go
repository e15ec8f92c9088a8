package storage

import (
	"context"
	"database/sql"
	"fmt"

	"cardspend/internal/core"
)

const createBudgetExpense = `
INSERT INTO budget_expenses (budget_id, purchase_id, installment_id, description, amount_cents, currency)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id
`

func (q *Queries) CreateBudgetExpense(ctx context.Context, b core.BudgetExpense) (core.BudgetExpense, error) {
	err := q.db.QueryRowContext(ctx, createBudgetExpense,
		b.BudgetID, nullInt64(b.PurchaseID), nullInt64(b.InstallmentID),
		b.Description, b.Amount.Cents, string(b.Currency),
	).Scan(&b.ID)
	if err != nil {
		return core.BudgetExpense{}, fmt.Errorf("insert budget expense: %w", err)
	}
	return b, nil
}

const deleteBudgetExpensesByInstallmentsOfPurchase = `
DELETE FROM budget_expenses
WHERE installment_id IN (SELECT id FROM installments WHERE purchase_id = ?)
`

func (q *Queries) DeleteBudgetExpensesByInstallmentsOfPurchase(ctx context.Context, purchaseID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteBudgetExpensesByInstallmentsOfPurchase, purchaseID)
	if err != nil {
		return 0, fmt.Errorf("delete installment budget expenses of purchase %d: %w", purchaseID, err)
	}
	return res.RowsAffected()
}

const deleteBudgetExpensesByPurchase = `DELETE FROM budget_expenses WHERE purchase_id = ?`

func (q *Queries) DeleteBudgetExpensesByPurchase(ctx context.Context, purchaseID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteBudgetExpensesByPurchase, purchaseID)
	if err != nil {
		return 0, fmt.Errorf("delete budget expenses of purchase %d: %w", purchaseID, err)
	}
	return res.RowsAffected()
}

const refreshBudgetExpensesOfInstallment = `
UPDATE budget_expenses SET amount_cents = ? WHERE installment_id = ? AND amount_cents <> ?
`

// RefreshBudgetExpensesOfInstallment copies the installment amount into every
// snapshot that references it and reports how many rows changed.
func (q *Queries) RefreshBudgetExpensesOfInstallment(ctx context.Context, installmentID, cents int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, refreshBudgetExpensesOfInstallment, cents, installmentID, cents)
	if err != nil {
		return 0, fmt.Errorf("refresh budget expenses of installment %d: %w", installmentID, err)
	}
	return res.RowsAffected()
}

const countBudgetExpensesOfPurchase = `
SELECT COUNT(*) FROM budget_expenses
WHERE purchase_id = ?
   OR installment_id IN (SELECT id FROM installments WHERE purchase_id = ?)
`

// CountBudgetExpensesOfPurchase counts snapshots referencing the purchase
// directly or through one of its installments.
func (q *Queries) CountBudgetExpensesOfPurchase(ctx context.Context, purchaseID int64) (int64, error) {
	var n int64
	if err := q.db.QueryRowContext(ctx, countBudgetExpensesOfPurchase, purchaseID, purchaseID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count budget expenses of purchase %d: %w", purchaseID, err)
	}
	return n, nil
}

const listBudgetExpensesOfInstallment = `
SELECT id, budget_id, purchase_id, installment_id, description, amount_cents, currency
FROM budget_expenses WHERE installment_id = ? ORDER BY id
`

func (q *Queries) ListBudgetExpensesOfInstallment(ctx context.Context, installmentID int64) ([]core.BudgetExpense, error) {
	rows, err := q.db.QueryContext(ctx, listBudgetExpensesOfInstallment, installmentID)
	if err != nil {
		return nil, fmt.Errorf("list budget expenses of installment %d: %w", installmentID, err)
	}
	defer rows.Close()

	var out []core.BudgetExpense
	for rows.Next() {
		var (
			b                 core.BudgetExpense
			purchase, install sql.NullInt64
			currency          string
		)
		if err := rows.Scan(&b.ID, &b.BudgetID, &purchase, &install, &b.Description, &b.Amount.Cents, &currency); err != nil {
			return nil, fmt.Errorf("scan budget expense: %w", err)
		}
		b.PurchaseID = int64Ptr(purchase)
		b.InstallmentID = int64Ptr(install)
		b.Currency = core.Currency(currency)
		out = append(out, b)
	}
	return out, rows.Err()
}
