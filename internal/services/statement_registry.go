package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"cardspend/internal/billing"
	"cardspend/internal/core"
	"cardspend/internal/log"
	"cardspend/internal/storage"
)

// DefaultStatementAttempts is one insert plus one retry after a lost race.
const DefaultStatementAttempts = 2

// StatementRegistry materializes at most one MonthlyStatement per card and
// period. Uniqueness is enforced by the database; a lost race re-reads the
// winner's row.
type StatementRegistry struct {
	attempts int
	logger   zerolog.Logger
}

func NewStatementRegistry(attempts int, logger zerolog.Logger) *StatementRegistry {
	if attempts < 1 {
		attempts = DefaultStatementAttempts
	}
	return &StatementRegistry{
		attempts: attempts,
		logger:   log.WithComponent(logger, log.ComponentStatement),
	}
}

// FindOrCreate returns the statement of card for period, creating it when
// absent. q may be bound to a transaction.
func (r *StatementRegistry) FindOrCreate(ctx context.Context, q *storage.Queries, card core.CreditCard, period core.Period) (core.MonthlyStatement, error) {
	cycle := billing.CycleOf(card)
	if err := cycle.Validate(); err != nil {
		return core.MonthlyStatement{}, err
	}

	for attempt := 1; attempt <= r.attempts; attempt++ {
		existing, err := q.GetStatementByCardPeriod(ctx, card.ID, period)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, core.ErrNotFound) {
			return core.MonthlyStatement{}, err
		}

		draft, err := r.draft(ctx, q, card, period)
		if err != nil {
			return core.MonthlyStatement{}, err
		}

		created, ok, err := q.InsertStatementIfAbsent(ctx, draft)
		if err != nil && !errors.Is(err, core.ErrConcurrencyConflict) {
			return core.MonthlyStatement{}, err
		}
		if ok {
			r.logger.Info().
				Int64(log.FieldStatementID, created.ID).
				Int64(log.FieldCreditCardID, card.ID).
				Str(log.FieldPeriod, period.String()).
				Msg("Statement created")
			return created, nil
		}

		r.logger.Warn().
			Int64(log.FieldCreditCardID, card.ID).
			Str(log.FieldPeriod, period.String()).
			Int(log.FieldAttempt, attempt).
			Msg("Statement created concurrently, re-reading")
	}

	// Last chance: the winner may have committed after our final insert
	if existing, err := q.GetStatementByCardPeriod(ctx, card.ID, period); err == nil {
		return existing, nil
	}
	return core.MonthlyStatement{}, fmt.Errorf("%w: statement for card %d period %s", core.ErrConcurrencyConflict, card.ID, period)
}

// draft computes the dates of a new statement. The start date follows the
// closing date of the immediately preceding statement when it exists. For a
// card's first statement it is the card's creation date, bounded to the
// computed cycle.
func (r *StatementRegistry) draft(ctx context.Context, q *storage.Queries, card core.CreditCard, period core.Period) (core.MonthlyStatement, error) {
	cycle := billing.CycleOf(card)
	s := core.MonthlyStatement{
		CreditCardID: card.ID,
		Period:       period,
		StartDate:    billing.StartDate(period, cycle),
		ClosingDate:  billing.ClosingDate(period, cycle),
		DueDate:      billing.DueDate(period, cycle),
	}

	prev, err := q.GetPreviousStatement(ctx, card.ID, period)
	switch {
	case err == nil:
		if prev.Period == period.AddMonths(-1) && prev.ClosingDate.Before(s.ClosingDate.Time) {
			s.StartDate = prev.ClosingDate.AddDays(1)
		}
	case errors.Is(err, core.ErrNotFound):
		created := core.DateOf(card.CreatedAt)
		if !card.CreatedAt.IsZero() && created.After(s.StartDate.Time) && !created.After(s.ClosingDate.Time) {
			s.StartDate = created
		}
	default:
		return core.MonthlyStatement{}, err
	}
	return s, nil
}
