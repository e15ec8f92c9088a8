package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"cardspend/internal/amqp"
	"cardspend/internal/core"
	"cardspend/internal/log"
	"cardspend/internal/storage"
)

// InstallmentUpdate carries the supplied fields of a PATCH. Absent fields are
// left alone; ManualStatementID set to null clears the override.
type InstallmentUpdate struct {
	Amount            *core.Money
	ManualStatementID core.NullableID
}

// ReassignmentService applies amount edits and manual statement overrides to
// a single installment.
type ReassignmentService struct {
	repo   *storage.SQLiteRepository
	events notifier
	logger zerolog.Logger
}

func NewReassignmentService(repo *storage.SQLiteRepository, publisher EventPublisher, logger zerolog.Logger) *ReassignmentService {
	logger = log.WithComponent(logger, log.ComponentPurchase)
	return &ReassignmentService{
		repo:   repo,
		events: notifier{publisher: publisher, logger: logger},
		logger: logger,
	}
}

// UpdateInstallment validates every supplied field before writing. An amount
// edit does not rebalance sibling installments. A call whose supplied values
// all equal the current ones performs no write.
func (s *ReassignmentService) UpdateInstallment(ctx context.Context, principal core.Principal, id int64, upd InstallmentUpdate) (core.Installment, error) {
	if err := principal.Validate(); err != nil {
		return core.Installment{}, err
	}
	if upd.Amount != nil {
		if err := upd.Amount.Validate(); err != nil {
			return core.Installment{}, err
		}
	}

	var (
		result  core.Installment
		changed bool
	)
	err := s.repo.WithTx(ctx, func(q *storage.Queries) error {
		inst, err := q.GetInstallment(ctx, id)
		if err != nil {
			return err
		}
		p, err := ownedPurchase(ctx, q, principal, inst.PurchaseID)
		if err != nil {
			return err
		}

		amountChanged := upd.Amount != nil && upd.Amount.Cents != inst.Amount.Cents
		manualChanged := upd.ManualStatementID.Set && !upd.ManualStatementID.Equal(inst.ManualStatementID)

		if manualChanged && upd.ManualStatementID.Value != nil {
			if err := s.checkSameCard(ctx, q, p, *upd.ManualStatementID.Value); err != nil {
				return err
			}
		}

		if amountChanged {
			if err := q.UpdateInstallmentAmount(ctx, inst.ID, upd.Amount.Cents); err != nil {
				return err
			}
			inst.Amount = *upd.Amount
		}
		if manualChanged {
			if err := q.SetManualStatement(ctx, inst.ID, upd.ManualStatementID.Value); err != nil {
				return err
			}
			inst.ManualStatementID = upd.ManualStatementID.Value
		}

		result = inst
		changed = amountChanged || manualChanged
		return nil
	})
	if err != nil {
		return core.Installment{}, err
	}

	if changed {
		s.logger.Info().
			Int64(log.FieldInstallmentID, result.ID).
			Int64(log.FieldStatementID, result.StatementID()).
			Bool("manual", result.IsManual()).
			Int64(log.FieldAmountCents, result.Amount.Cents).
			Msg("Installment updated")

		ev := amqp.NewEvent(amqp.EventInstallmentUpdated, principal.UserID)
		ev.PurchaseID = result.PurchaseID
		ev.InstallmentID = result.ID
		ev.StatementID = result.StatementID()
		s.events.notify(ctx, ev)
	}
	return result, nil
}

func (s *ReassignmentService) checkSameCard(ctx context.Context, q *storage.Queries, p core.Purchase, statementID int64) error {
	target, err := q.GetStatement(ctx, statementID)
	if err != nil {
		return err
	}
	card, isCard, err := cardOfPurchase(ctx, q, p)
	if err != nil {
		return err
	}
	if !isCard || target.CreditCardID != card.ID {
		return fmt.Errorf("%w: statement %d belongs to card %d, purchase %d is paid with card %d",
			core.ErrCrossCardReassignment, statementID, target.CreditCardID, p.ID, card.ID)
	}
	return nil
}
