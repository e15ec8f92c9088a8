package services

import (
	"context"
	"fmt"

	"cardspend/internal/billing"
	"cardspend/internal/core"
	"cardspend/internal/storage"
)

// InstallmentAssigner materializes every installment of a new purchase,
// creating the statements they settle into on the way.
type InstallmentAssigner struct {
	registry *StatementRegistry
}

func NewInstallmentAssigner(registry *StatementRegistry) *InstallmentAssigner {
	return &InstallmentAssigner{registry: registry}
}

// Assign must run on a transaction bound q so the whole installment set
// commits or rolls back together.
func (a *InstallmentAssigner) Assign(ctx context.Context, q *storage.Queries, p core.Purchase, card core.CreditCard) ([]core.Installment, error) {
	plan, err := billing.Plan(p.Date, billing.CycleOf(card), p.Amount, p.InstallmentCount)
	if err != nil {
		return nil, err
	}

	installments := make([]core.Installment, 0, len(plan))
	for _, sched := range plan {
		st, err := a.registry.FindOrCreate(ctx, q, card, sched.Period)
		if err != nil {
			return nil, fmt.Errorf("statement for installment %d: %w", sched.Number, err)
		}
		inst, err := q.CreateInstallment(ctx, core.Installment{
			PurchaseID:          p.ID,
			Number:              sched.Number,
			Count:               len(plan),
			Amount:              sched.Amount,
			Currency:            p.Currency,
			Period:              sched.Period,
			DueDate:             sched.DueDate,
			ComputedStatementID: st.ID,
		})
		if err != nil {
			return nil, err
		}
		installments = append(installments, inst)
	}
	return installments, nil
}

// Reschedule moves existing installments to the periods implied by a new
// purchase date. Amounts and manual overrides are kept.
func (a *InstallmentAssigner) Reschedule(ctx context.Context, q *storage.Queries, date core.Date, card core.CreditCard, installments []core.Installment) error {
	cycle := billing.CycleOf(card)
	first, _, err := billing.Resolve(date, cycle)
	if err != nil {
		return err
	}
	for _, inst := range installments {
		period := billing.PeriodForInstallment(first, inst.Number)
		st, err := a.registry.FindOrCreate(ctx, q, card, period)
		if err != nil {
			return fmt.Errorf("statement for installment %d: %w", inst.Number, err)
		}
		if err := q.UpdateInstallmentSchedule(ctx, inst.ID, period, billing.DueDate(period, cycle), st.ID); err != nil {
			return err
		}
	}
	return nil
}
