package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"cardspend/internal/amqp"
	"cardspend/internal/core"
	"cardspend/internal/log"
	"cardspend/internal/storage"
)

// PurchaseUpdate carries the mutable fields of a purchase. Nil means
// unchanged.
type PurchaseUpdate struct {
	Description *string
	CategoryID  *int64
	Date        *core.Date
	Amount      *core.Money
}

// DeleteResult counts the rows removed by a purchase deletion.
type DeleteResult struct {
	BudgetExpenses int64
	Installments   int64
}

// PurchaseService is the transaction boundary for creating, editing and
// deleting purchases together with their installments.
type PurchaseService struct {
	repo     *storage.SQLiteRepository
	assigner *InstallmentAssigner
	events   notifier
	logger   zerolog.Logger
	now      func() time.Time
}

func NewPurchaseService(repo *storage.SQLiteRepository, assigner *InstallmentAssigner, publisher EventPublisher, logger zerolog.Logger) *PurchaseService {
	logger = log.WithComponent(logger, log.ComponentPurchase)
	return &PurchaseService{
		repo:     repo,
		assigner: assigner,
		events:   notifier{publisher: publisher, logger: logger},
		logger:   logger,
		now:      time.Now,
	}
}

// Create persists the purchase and, for credit card purchases, all of its
// installments in one transaction. Other payment methods always get a
// single installment count and no installments.
func (s *PurchaseService) Create(ctx context.Context, principal core.Principal, p core.Purchase) (core.Purchase, []core.Installment, error) {
	if err := principal.Validate(); err != nil {
		return core.Purchase{}, nil, err
	}
	p.UserID = principal.UserID
	p.Description = strings.TrimSpace(p.Description)
	if p.Currency == "" {
		p.Currency = core.CurrencyARS
	}
	if err := p.Validate(); err != nil {
		return core.Purchase{}, nil, err
	}
	p.CreatedAt = s.now().UTC()

	var installments []core.Installment
	err := s.repo.WithTx(ctx, func(q *storage.Queries) error {
		pm, err := q.GetPaymentMethod(ctx, p.PaymentMethodID)
		if err != nil {
			return err
		}
		if pm.UserID != principal.UserID {
			return fmt.Errorf("%w: payment method %d", core.ErrNotFound, pm.ID)
		}

		var card core.CreditCard
		if pm.Type == core.PaymentCreditCard {
			card, err = q.GetCreditCardByPaymentMethod(ctx, pm.ID)
			if err != nil {
				return fmt.Errorf("%w: payment method %d has no card", core.ErrInvalidCreditCard, pm.ID)
			}
			if card.UserID != principal.UserID {
				return fmt.Errorf("%w: card %d", core.ErrInvalidCreditCard, card.ID)
			}
		} else {
			p.InstallmentCount = 1
		}

		created, err := q.CreatePurchase(ctx, p)
		if err != nil {
			return err
		}
		p = created

		if pm.Type != core.PaymentCreditCard {
			return nil
		}
		installments, err = s.assigner.Assign(ctx, q, p, card)
		return err
	})
	if err != nil {
		return core.Purchase{}, nil, err
	}

	s.logger.Info().
		Int64(log.FieldPurchaseID, p.ID).
		Int64(log.FieldUserID, p.UserID).
		Int64(log.FieldAmountCents, p.Amount.Cents).
		Int(log.FieldInstallments, len(installments)).
		Msg("Purchase created")

	ev := amqp.NewEvent(amqp.EventPurchaseCreated, principal.UserID)
	ev.PurchaseID = p.ID
	s.events.notify(ctx, ev)

	return p, installments, nil
}

// Update edits a purchase. On a single installment purchase an amount change
// is mirrored to the installment; multi installment purchases keep their
// installments untouched. A date change moves installments to the periods
// of the new date, keeping amounts and manual overrides.
func (s *PurchaseService) Update(ctx context.Context, principal core.Principal, id int64, upd PurchaseUpdate) (core.Purchase, error) {
	if err := principal.Validate(); err != nil {
		return core.Purchase{}, err
	}

	var (
		result  core.Purchase
		changed bool
	)
	err := s.repo.WithTx(ctx, func(q *storage.Queries) error {
		current, err := ownedPurchase(ctx, q, principal, id)
		if err != nil {
			return err
		}

		next := current
		if upd.Description != nil {
			next.Description = strings.TrimSpace(*upd.Description)
		}
		if upd.CategoryID != nil {
			next.CategoryID = *upd.CategoryID
		}
		if upd.Date != nil {
			next.Date = *upd.Date
		}
		if upd.Amount != nil {
			next.Amount = *upd.Amount
		}
		if err := next.Validate(); err != nil {
			return err
		}

		amountChanged := next.Amount != current.Amount
		dateChanged := !next.Date.Equal(current.Date.Time)
		changed = amountChanged || dateChanged ||
			next.Description != current.Description || next.CategoryID != current.CategoryID
		result = next
		if !changed {
			return nil
		}

		if err := q.UpdatePurchase(ctx, next); err != nil {
			return err
		}

		if !amountChanged && !dateChanged {
			return nil
		}
		installments, err := q.ListInstallmentsByPurchase(ctx, id)
		if err != nil {
			return err
		}
		if amountChanged && next.InstallmentCount == 1 && len(installments) == 1 {
			if err := q.UpdateInstallmentAmount(ctx, installments[0].ID, next.Amount.Cents); err != nil {
				return err
			}
		}
		if dateChanged && len(installments) > 0 {
			card, isCard, err := cardOfPurchase(ctx, q, next)
			if err != nil {
				return err
			}
			if isCard {
				return s.assigner.Reschedule(ctx, q, next.Date, card, installments)
			}
		}
		return nil
	})
	if err != nil {
		return core.Purchase{}, err
	}

	if changed {
		s.logger.Info().Int64(log.FieldPurchaseID, id).Msg("Purchase updated")
		ev := amqp.NewEvent(amqp.EventPurchaseUpdated, principal.UserID)
		ev.PurchaseID = id
		s.events.notify(ctx, ev)
	}
	return result, nil
}

// Delete removes, in one transaction and in dependency order, the budget
// snapshots of the purchase's installments, the snapshots of the purchase,
// the installments and finally the purchase. Statements are kept.
func (s *PurchaseService) Delete(ctx context.Context, principal core.Principal, id int64) (DeleteResult, error) {
	if err := principal.Validate(); err != nil {
		return DeleteResult{}, err
	}

	var res DeleteResult
	err := s.repo.WithTx(ctx, func(q *storage.Queries) error {
		if _, err := ownedPurchase(ctx, q, principal, id); err != nil {
			return err
		}

		byInstallment, err := q.DeleteBudgetExpensesByInstallmentsOfPurchase(ctx, id)
		if err != nil {
			return err
		}
		byPurchase, err := q.DeleteBudgetExpensesByPurchase(ctx, id)
		if err != nil {
			return err
		}
		installments, err := q.DeleteInstallmentsByPurchase(ctx, id)
		if err != nil {
			return err
		}
		n, err := q.DeletePurchase(ctx, id)
		if err != nil {
			return err
		}
		if n != 1 {
			return fmt.Errorf("%w: purchase %d", core.ErrNotFound, id)
		}

		res = DeleteResult{BudgetExpenses: byInstallment + byPurchase, Installments: installments}
		return nil
	})
	if err != nil {
		return DeleteResult{}, err
	}

	s.logger.Info().
		Int64(log.FieldPurchaseID, id).
		Int64("installments_deleted", res.Installments).
		Int64("budget_expenses_deleted", res.BudgetExpenses).
		Msg("Purchase deleted")

	ev := amqp.NewEvent(amqp.EventPurchaseDeleted, principal.UserID)
	ev.PurchaseID = id
	s.events.notify(ctx, ev)

	return res, nil
}

func (s *PurchaseService) Get(ctx context.Context, principal core.Principal, id int64) (core.Purchase, error) {
	if err := principal.Validate(); err != nil {
		return core.Purchase{}, err
	}
	return ownedPurchase(ctx, s.repo.Queries(), principal, id)
}

func (s *PurchaseService) List(ctx context.Context, principal core.Principal) ([]core.Purchase, error) {
	if err := principal.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Queries().ListPurchases(ctx, principal.UserID)
}

// ListInstallments returns the purchase's installments by number.
func (s *PurchaseService) ListInstallments(ctx context.Context, principal core.Principal, purchaseID int64) ([]core.Installment, error) {
	if err := principal.Validate(); err != nil {
		return nil, err
	}
	q := s.repo.Queries()
	if _, err := ownedPurchase(ctx, q, principal, purchaseID); err != nil {
		return nil, err
	}
	return q.ListInstallmentsByPurchase(ctx, purchaseID)
}

func (s *PurchaseService) GetInstallment(ctx context.Context, principal core.Principal, id int64) (core.Installment, error) {
	if err := principal.Validate(); err != nil {
		return core.Installment{}, err
	}
	q := s.repo.Queries()
	inst, err := q.GetInstallment(ctx, id)
	if err != nil {
		return core.Installment{}, err
	}
	if _, err := ownedPurchase(ctx, q, principal, inst.PurchaseID); err != nil {
		return core.Installment{}, fmt.Errorf("%w: installment %d", core.ErrNotFound, id)
	}
	return inst, nil
}
