package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"cardspend/internal/amqp"
	"cardspend/internal/core"
	"cardspend/internal/log"
	"cardspend/internal/storage"
)

// StatementDatesUpdate carries closing/due date corrections. Nil means
// unchanged.
type StatementDatesUpdate struct {
	StartDate   *core.Date
	ClosingDate *core.Date
	DueDate     *core.Date
}

// StatementService reads statements and applies administrative edits.
type StatementService struct {
	repo     *storage.SQLiteRepository
	registry *StatementRegistry
	events   notifier
	logger   zerolog.Logger
	now      func() time.Time
}

func NewStatementService(repo *storage.SQLiteRepository, registry *StatementRegistry, publisher EventPublisher, logger zerolog.Logger) *StatementService {
	logger = log.WithComponent(logger, log.ComponentStatement)
	return &StatementService{
		repo:     repo,
		registry: registry,
		events:   notifier{publisher: publisher, logger: logger},
		logger:   logger,
		now:      time.Now,
	}
}

// List returns the user's statements by due date, newest first. Without
// includeFuture, statements that close after today are omitted.
func (s *StatementService) List(ctx context.Context, principal core.Principal, includeFuture bool) ([]core.MonthlyStatement, error) {
	if err := principal.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Queries().ListStatementsByUser(ctx, principal.UserID, includeFuture, core.DateOf(s.now()))
}

// ListByCard returns every statement of one card, newest first.
func (s *StatementService) ListByCard(ctx context.Context, principal core.Principal, cardID int64) ([]core.MonthlyStatement, error) {
	if err := principal.Validate(); err != nil {
		return nil, err
	}
	q := s.repo.Queries()
	if _, err := ownedCard(ctx, q, principal, cardID); err != nil {
		return nil, err
	}
	return q.ListStatementsByCard(ctx, cardID)
}

// Detail returns a statement with the installments effectively assigned to it.
func (s *StatementService) Detail(ctx context.Context, principal core.Principal, id int64) (core.StatementDetail, error) {
	if err := principal.Validate(); err != nil {
		return core.StatementDetail{}, err
	}
	q := s.repo.Queries()
	st, card, err := ownedStatement(ctx, q, principal, id)
	if err != nil {
		return core.StatementDetail{}, err
	}
	lines, err := q.ListStatementLines(ctx, id)
	if err != nil {
		return core.StatementDetail{}, err
	}
	return core.NewStatementDetail(st, card, lines), nil
}

// Create materializes the statement for a card and period through the same
// find-or-create path used by purchase creation.
func (s *StatementService) Create(ctx context.Context, principal core.Principal, cardID int64, period core.Period) (core.MonthlyStatement, error) {
	if err := principal.Validate(); err != nil {
		return core.MonthlyStatement{}, err
	}
	if period.IsZero() {
		return core.MonthlyStatement{}, fmt.Errorf("%w: period is required", core.ErrInvalidInput)
	}

	var st core.MonthlyStatement
	err := s.repo.WithTx(ctx, func(q *storage.Queries) error {
		card, err := ownedCard(ctx, q, principal, cardID)
		if err != nil {
			return err
		}
		st, err = s.registry.FindOrCreate(ctx, q, card, period)
		return err
	})
	if err != nil {
		return core.MonthlyStatement{}, err
	}
	return st, nil
}

// UpdateDates corrects a statement's dates. The chronologically next
// statement of the card then starts the day after the new closing date.
// Installment periods are never rewritten.
func (s *StatementService) UpdateDates(ctx context.Context, principal core.Principal, id int64, upd StatementDatesUpdate) (core.MonthlyStatement, error) {
	if err := principal.Validate(); err != nil {
		return core.MonthlyStatement{}, err
	}

	var (
		result  core.MonthlyStatement
		changed bool
	)
	err := s.repo.WithTx(ctx, func(q *storage.Queries) error {
		current, _, err := ownedStatement(ctx, q, principal, id)
		if err != nil {
			return err
		}

		next := current
		if upd.StartDate != nil {
			next.StartDate = *upd.StartDate
		}
		if upd.ClosingDate != nil {
			next.ClosingDate = *upd.ClosingDate
		}
		if upd.DueDate != nil {
			next.DueDate = *upd.DueDate
		}
		if err := next.ValidateDates(); err != nil {
			return err
		}
		result = next
		if sameDates(next, current) {
			return nil
		}
		changed = true

		if err := q.UpdateStatementDates(ctx, next); err != nil {
			return err
		}
		if next.ClosingDate.Equal(current.ClosingDate.Time) {
			return nil
		}

		following, err := q.GetNextStatement(ctx, next.CreditCardID, next.Period)
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		following.StartDate = next.ClosingDate.AddDays(1)
		if err := following.ValidateDates(); err != nil {
			return fmt.Errorf("following statement %s: %w", following.Period, err)
		}
		return q.UpdateStatementDates(ctx, following)
	})
	if err != nil {
		return core.MonthlyStatement{}, err
	}

	if changed {
		s.logger.Info().
			Int64(log.FieldStatementID, id).
			Str("closing_date", result.ClosingDate.String()).
			Str("due_date", result.DueDate.String()).
			Msg("Statement dates updated")
		ev := amqp.NewEvent(amqp.EventStatementUpdated, principal.UserID)
		ev.StatementID = id
		s.events.notify(ctx, ev)
	}
	return result, nil
}

// Delete removes a statement nothing references.
func (s *StatementService) Delete(ctx context.Context, principal core.Principal, id int64) error {
	if err := principal.Validate(); err != nil {
		return err
	}
	return s.repo.WithTx(ctx, func(q *storage.Queries) error {
		if _, _, err := ownedStatement(ctx, q, principal, id); err != nil {
			return err
		}
		n, err := q.CountInstallmentsReferencingStatement(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: statement %d has %d installments", core.ErrStatementInUse, id, n)
		}
		return q.DeleteStatement(ctx, id)
	})
}

func sameDates(a, b core.MonthlyStatement) bool {
	return a.StartDate.Equal(b.StartDate.Time) &&
		a.ClosingDate.Equal(b.ClosingDate.Time) &&
		a.DueDate.Equal(b.DueDate.Time)
}
