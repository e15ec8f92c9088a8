package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardspend/internal/amqp"
	"cardspend/internal/core"
)

func TestCreatePurchaseEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	card := env.card(t, alice, "Visa", 15, 10)

	p, inst := env.purchase(t, alice, card.PaymentMethodID, core.NewDate(2025, 3, 20), 10000, 3)

	require.Len(t, inst, 3)
	want := []struct {
		period string
		due    string
		amount int64
	}{
		{"202504", "2025-05-10", 3334},
		{"202505", "2025-06-10", 3333},
		{"202506", "2025-07-10", 3333},
	}
	statementIDs := map[int64]bool{}
	for i, w := range want {
		assert.Equal(t, i+1, inst[i].Number)
		assert.Equal(t, 3, inst[i].Count)
		assert.Equal(t, w.period, inst[i].Period.String())
		assert.Equal(t, w.due, inst[i].DueDate.String())
		assert.Equal(t, w.amount, inst[i].Amount.Cents)
		assert.Nil(t, inst[i].ManualStatementID)
		statementIDs[inst[i].StatementID()] = true
	}
	assert.Len(t, statementIDs, 3, "each installment settles into its own statement")
	assert.Equal(t, 3, env.count(t, "monthly_statements"))

	for id := range statementIDs {
		detail, err := env.svc.Statements.Detail(ctx, alice, id)
		require.NoError(t, err)
		require.Len(t, detail.Lines, 1)
		assert.Equal(t, p.ID, detail.Lines[0].PurchaseID)
		assert.Equal(t, detail.Lines[0].Amount, detail.Total)
	}

	assert.Equal(t, []amqp.EventType{amqp.EventPurchaseCreated}, env.pub.types())
}

func TestCreatePurchaseSumMatchesTotal(t *testing.T) {
	env := newTestEnv(t)
	card := env.card(t, alice, "Visa", 15, 10)

	for _, tc := range []struct {
		total int64
		n     int
	}{{10, 4}, {-10000, 3}, {99999, 12}, {1, 1}} {
		_, inst := env.purchase(t, alice, card.PaymentMethodID, core.NewDate(2025, 1, 5), tc.total, tc.n)
		var sum int64
		for _, i := range inst {
			sum += i.Amount.Cents
		}
		assert.Equal(t, tc.total, sum)
		assert.Len(t, inst, tc.n)
	}
}

func TestCreatePurchaseRejectsZeroAmount(t *testing.T) {
	env := newTestEnv(t)
	card := env.card(t, alice, "Visa", 15, 10)

	_, _, err := env.svc.Purchases.Create(context.Background(), alice, core.Purchase{
		PaymentMethodID:  card.PaymentMethodID,
		Date:             core.NewDate(2025, 3, 20),
		Description:      "nothing",
		Amount:           core.Money{},
		InstallmentCount: 3,
	})
	require.ErrorIs(t, err, core.ErrInvalidAmount)

	assert.Equal(t, 0, env.count(t, "purchases"))
	assert.Equal(t, 0, env.count(t, "installments"))
	assert.Equal(t, 0, env.count(t, "monthly_statements"))
	assert.Empty(t, env.pub.types())
}

func TestCreatePurchaseWithCashForcesSingleCount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cash, err := env.svc.Cards.CreatePaymentMethod(ctx, alice, "Wallet", core.PaymentCash)
	require.NoError(t, err)

	p, inst := env.purchase(t, alice, cash.ID, core.NewDate(2025, 3, 20), 5000, 6)

	assert.Equal(t, 1, p.InstallmentCount)
	assert.Empty(t, inst)
	assert.Equal(t, 0, env.count(t, "monthly_statements"))
}

func TestCreatePurchaseWithForeignCard(t *testing.T) {
	env := newTestEnv(t)
	card := env.card(t, bob, "Bob's Visa", 15, 10)

	_, _, err := env.svc.Purchases.Create(context.Background(), alice, core.Purchase{
		PaymentMethodID:  card.PaymentMethodID,
		Date:             core.NewDate(2025, 3, 20),
		Description:      "not mine",
		Amount:           core.Money{Cents: 100},
		InstallmentCount: 1,
	})
	require.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, 0, env.count(t, "purchases"))
}

func TestUpdateSingleInstallmentAmountSyncs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	card := env.card(t, alice, "Visa", 15, 10)
	p, _ := env.purchase(t, alice, card.PaymentMethodID, core.NewDate(2025, 3, 20), 10000, 1)

	amount := core.Money{Cents: 12345}
	updated, err := env.svc.Purchases.Update(ctx, alice, p.ID, PurchaseUpdate{Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, amount, updated.Amount)

	inst, err := env.svc.Purchases.ListInstallments(ctx, alice, p.ID)
	require.NoError(t, err)
	require.Len(t, inst, 1)
	assert.Equal(t, int64(12345), inst[0].Amount.Cents)
}

func TestUpdateMultiInstallmentAmountLeavesInstallmentsUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	card := env.card(t, alice, "Visa", 15, 10)
	p, before := env.purchase(t, alice, card.PaymentMethodID, core.NewDate(2025, 3, 20), 10000, 3)

	amount := core.Money{Cents: 20000}
	_, err := env.svc.Purchases.Update(ctx, alice, p.ID, PurchaseUpdate{Amount: &amount})
	require.NoError(t, err)

	after, err := env.svc.Purchases.ListInstallments(ctx, alice, p.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after, "no automatic re-split of existing installments")

	got, err := env.svc.Purchases.Get(ctx, alice, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), got.Amount.Cents)
}

func TestUpdatePurchaseRejectsZeroAmount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	card := env.card(t, alice, "Visa", 15, 10)
	p, _ := env.purchase(t, alice, card.PaymentMethodID, core.NewDate(2025, 3, 20), 10000, 1)

	zero := core.Money{}
	_, err := env.svc.Purchases.Update(ctx, alice, p.ID, PurchaseUpdate{Amount: &zero})
	require.ErrorIs(t, err, core.ErrInvalidAmount)

	got, err := env.svc.Purchases.Get(ctx, alice, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), got.Amount.Cents)
}

func TestUpdatePurchaseDateReschedulesAndKeepsOverrides(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	card := env.card(t, alice, "Visa", 15, 10)
	p, inst := env.purchase(t, alice, card.PaymentMethodID, core.NewDate(2025, 3, 20), 9000, 2)

	manual, err := env.svc.Statements.Create(ctx, alice, card.ID, core.NewPeriod(2025, 12))
	require.NoError(t, err)
	_, err = env.svc.Installments.UpdateInstallment(ctx, alice, inst[1].ID, InstallmentUpdate{
		ManualStatementID: core.NullableID{Set: true, Value: &manual.ID},
	})
	require.NoError(t, err)

	date := core.NewDate(2025, 3, 10)
	_, err = env.svc.Purchases.Update(ctx, alice, p.ID, PurchaseUpdate{Date: &date})
	require.NoError(t, err)

	after, err := env.svc.Purchases.ListInstallments(ctx, alice, p.ID)
	require.NoError(t, err)
	require.Len(t, after, 2)
	assert.Equal(t, "202503", after[0].Period.String())
	assert.Equal(t, "202504", after[1].Period.String())
	assert.Equal(t, "2025-04-10", after[0].DueDate.String())
	assert.Equal(t, inst[0].Amount, after[0].Amount)
	assert.Equal(t, manual.ID, after[1].StatementID(), "manual override survives a date edit")

	march, err := env.repo.Queries().GetStatementByCardPeriod(ctx, card.ID, core.NewPeriod(2025, 3))
	require.NoError(t, err)
	assert.Equal(t, march.ID, after[0].StatementID())
}

func TestUpdatePurchaseNoChangeDoesNotPublish(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	card := env.card(t, alice, "Visa", 15, 10)
	p, _ := env.purchase(t, alice, card.PaymentMethodID, core.NewDate(2025, 3, 20), 100, 1)

	desc := p.Description
	_, err := env.svc.Purchases.Update(ctx, alice, p.ID, PurchaseUpdate{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, []amqp.EventType{amqp.EventPurchaseCreated}, env.pub.types())
}

func TestDeletePurchaseCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	card := env.card(t, alice, "Visa", 15, 10)
	p, inst := env.purchase(t, alice, card.PaymentMethodID, core.NewDate(2025, 3, 20), 10000, 3)
	keep, _ := env.purchase(t, alice, card.PaymentMethodID, core.NewDate(2025, 3, 21), 500, 1)

	q := env.repo.Queries()
	pid := p.ID
	for _, i := range inst[:2] {
		iid := i.ID
		_, err := q.CreateBudgetExpense(ctx, core.BudgetExpense{BudgetID: 1, InstallmentID: &iid, Description: "split", Amount: i.Amount, Currency: core.CurrencyARS})
		require.NoError(t, err)
	}
	_, err := q.CreateBudgetExpense(ctx, core.BudgetExpense{BudgetID: 1, PurchaseID: &pid, Description: "split", Amount: p.Amount, Currency: core.CurrencyARS})
	require.NoError(t, err)

	purchasesBefore := env.count(t, "purchases")
	installmentsBefore := env.count(t, "installments")
	statementsBefore := env.count(t, "monthly_statements")

	res, err := env.svc.Purchases.Delete(ctx, alice, p.ID)
	require.NoError(t, err)

	// N installments + M references + the purchase itself
	assert.EqualValues(t, 3, res.Installments)
	assert.EqualValues(t, 3, res.BudgetExpenses)
	assert.Equal(t, purchasesBefore-1, env.count(t, "purchases"))
	assert.Equal(t, installmentsBefore-3, env.count(t, "installments"))
	assert.Equal(t, 0, env.count(t, "budget_expenses"))
	assert.Equal(t, statementsBefore, env.count(t, "monthly_statements"), "statements are never deleted with a purchase")

	_, err = env.svc.Purchases.Get(ctx, alice, p.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = env.svc.Purchases.Get(ctx, alice, keep.ID)
	assert.NoError(t, err)

	var orphans int
	require.NoError(t, env.repo.DB().QueryRow(
		`SELECT COUNT(*) FROM installments WHERE purchase_id NOT IN (SELECT id FROM purchases)`).Scan(&orphans))
	assert.Zero(t, orphans)

	assert.Contains(t, env.pub.types(), amqp.EventPurchaseDeleted)
}

func TestDeletePurchaseOfAnotherUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	card := env.card(t, alice, "Visa", 15, 10)
	p, _ := env.purchase(t, alice, card.PaymentMethodID, core.NewDate(2025, 3, 20), 100, 1)

	_, err := env.svc.Purchases.Delete(ctx, bob, p.ID)
	require.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, 1, env.count(t, "purchases"))
}

func TestPurchaseOperationsRequirePrincipal(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Purchases.List(context.Background(), core.Principal{})
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}
