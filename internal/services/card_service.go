package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"cardspend/internal/core"
	"cardspend/internal/log"
	"cardspend/internal/storage"
)

// CreditCardUpdate carries administrative card edits. Nil means unchanged.
type CreditCardUpdate struct {
	Name        *string
	Bank        *string
	CloseDay    *int
	DueDay      *int
	CreditLimit *core.Money
}

// CardService manages payment methods and credit cards. Day validation here
// keeps invalid billing cycles from ever reaching the engine.
type CardService struct {
	repo   *storage.SQLiteRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewCardService(repo *storage.SQLiteRepository, logger zerolog.Logger) *CardService {
	return &CardService{
		repo:   repo,
		logger: log.WithComponent(logger, log.ComponentCard),
		now:    time.Now,
	}
}

// CreateCreditCard creates the card and its credit_card payment method.
func (s *CardService) CreateCreditCard(ctx context.Context, principal core.Principal, card core.CreditCard) (core.CreditCard, error) {
	if err := principal.Validate(); err != nil {
		return core.CreditCard{}, err
	}
	card.UserID = principal.UserID
	card.Name = strings.TrimSpace(card.Name)
	if err := card.Validate(); err != nil {
		return core.CreditCard{}, err
	}
	card.CreatedAt = s.now().UTC()

	err := s.repo.WithTx(ctx, func(q *storage.Queries) error {
		pm, err := q.CreatePaymentMethod(ctx, core.PaymentMethod{
			UserID:    card.UserID,
			Name:      card.Name,
			Type:      core.PaymentCreditCard,
			CreatedAt: card.CreatedAt,
		})
		if err != nil {
			return err
		}
		card.PaymentMethodID = pm.ID
		card, err = q.CreateCreditCard(ctx, card)
		return err
	})
	if err != nil {
		return core.CreditCard{}, err
	}

	s.logger.Info().
		Int64(log.FieldCreditCardID, card.ID).
		Int("close_day", card.CloseDay).
		Int("due_day", card.DueDay).
		Msg("Credit card created")
	return card, nil
}

// UpdateCreditCard applies administrative edits. Existing statements keep
// their dates.
func (s *CardService) UpdateCreditCard(ctx context.Context, principal core.Principal, id int64, upd CreditCardUpdate) (core.CreditCard, error) {
	if err := principal.Validate(); err != nil {
		return core.CreditCard{}, err
	}

	var result core.CreditCard
	err := s.repo.WithTx(ctx, func(q *storage.Queries) error {
		card, err := ownedCard(ctx, q, principal, id)
		if err != nil {
			return err
		}
		if upd.Name != nil {
			card.Name = strings.TrimSpace(*upd.Name)
		}
		if upd.Bank != nil {
			card.Bank = *upd.Bank
		}
		if upd.CloseDay != nil {
			card.CloseDay = *upd.CloseDay
		}
		if upd.DueDay != nil {
			card.DueDay = *upd.DueDay
		}
		if upd.CreditLimit != nil {
			card.CreditLimit = upd.CreditLimit
		}
		if err := card.Validate(); err != nil {
			return err
		}
		result = card
		return q.UpdateCreditCard(ctx, card)
	})
	if err != nil {
		return core.CreditCard{}, err
	}
	return result, nil
}

func (s *CardService) ListCreditCards(ctx context.Context, principal core.Principal) ([]core.CreditCard, error) {
	if err := principal.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Queries().ListCreditCards(ctx, principal.UserID)
}

// CreatePaymentMethod registers a non card payment method. Credit cards go
// through CreateCreditCard so they always carry a billing cycle.
func (s *CardService) CreatePaymentMethod(ctx context.Context, principal core.Principal, name string, typ core.PaymentMethodType) (core.PaymentMethod, error) {
	if err := principal.Validate(); err != nil {
		return core.PaymentMethod{}, err
	}
	if err := typ.Validate(); err != nil {
		return core.PaymentMethod{}, err
	}
	if typ == core.PaymentCreditCard {
		return core.PaymentMethod{}, fmt.Errorf("%w: create credit cards through the credit card endpoint", core.ErrInvalidInput)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return core.PaymentMethod{}, fmt.Errorf("%w: payment method name is required", core.ErrInvalidInput)
	}
	return s.repo.Queries().CreatePaymentMethod(ctx, core.PaymentMethod{
		UserID:    principal.UserID,
		Name:      name,
		Type:      typ,
		CreatedAt: s.now().UTC(),
	})
}
