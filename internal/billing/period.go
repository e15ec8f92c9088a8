// Package billing holds the storage-free parts of the billing engine.
//
// This file maps purchase dates to billing periods and derives the closing
// and due dates of a period from a card's billing cycle.
package billing

import (
	"fmt"

	"cardspend/internal/core"
)

// Cycle is the pair of days that define a credit card's billing cycle.
type Cycle struct {
	CloseDay int
	DueDay   int
}

// CycleOf extracts the billing cycle of a card.
func CycleOf(card core.CreditCard) Cycle {
	return Cycle{CloseDay: card.CloseDay, DueDay: card.DueDay}
}

func (c Cycle) Validate() error {
	return core.ValidateBillingDays(c.CloseDay, c.DueDay)
}

// Resolve returns the billing period of the first installment of a purchase
// made on date, and the due date of that period.
//
// A purchase on or before the close day belongs to the cycle closing this
// month; a later purchase rolls forward to the next month.
func Resolve(date core.Date, cycle Cycle) (core.Period, core.Date, error) {
	if err := cycle.Validate(); err != nil {
		return core.Period{}, core.Date{}, err
	}
	if err := date.Validate(); err != nil {
		return core.Period{}, core.Date{}, err
	}
	period := core.PeriodOf(date)
	if date.Day() > cycle.CloseDay {
		period = period.AddMonths(1)
	}
	return period, DueDate(period, cycle), nil
}

// PeriodForInstallment returns the period of installment number k (1-indexed)
// given the period of the first installment.
func PeriodForInstallment(first core.Period, k int) core.Period {
	return first.AddMonths(k - 1)
}

// ClosingDate is the close day applied to the period's month, clamped to the
// month's last day.
func ClosingDate(p core.Period, cycle Cycle) core.Date {
	return p.Day(cycle.CloseDay)
}

// DueDate falls in the closing month when the due day is not before the
// close day, and in the following month otherwise.
func DueDate(p core.Period, cycle Cycle) core.Date {
	if cycle.DueDay >= cycle.CloseDay {
		return p.Day(cycle.DueDay)
	}
	return p.AddMonths(1).Day(cycle.DueDay)
}

// StartDate is the day after the previous period's closing date.
func StartDate(p core.Period, cycle Cycle) core.Date {
	return ClosingDate(p.AddMonths(-1), cycle).AddDays(1)
}

// Schedule is the planned placement of a single installment.
type Schedule struct {
	Number  int
	Period  core.Period
	DueDate core.Date
	Amount  core.Money
}

// Plan computes the period, due date and amount of every installment of a
// purchase without touching storage.
func Plan(date core.Date, cycle Cycle, total core.Money, n int) ([]Schedule, error) {
	first, _, err := Resolve(date, cycle)
	if err != nil {
		return nil, err
	}
	amounts, err := Split(total.Cents, n)
	if err != nil {
		return nil, fmt.Errorf("split %s in %d: %w", total, n, err)
	}
	plan := make([]Schedule, n)
	for i := range plan {
		period := PeriodForInstallment(first, i+1)
		plan[i] = Schedule{
			Number:  i + 1,
			Period:  period,
			DueDate: DueDate(period, cycle),
			Amount:  core.Money{Cents: amounts[i]},
		}
	}
	return plan, nil
}
