package services

import (
	"context"
	"errors"
	"fmt"

	"cardspend/internal/core"
	"cardspend/internal/storage"
)

// Records owned by another user are reported as missing.

func ownedPurchase(ctx context.Context, q *storage.Queries, principal core.Principal, id int64) (core.Purchase, error) {
	p, err := q.GetPurchase(ctx, id)
	if err != nil {
		return core.Purchase{}, err
	}
	if p.UserID != principal.UserID {
		return core.Purchase{}, fmt.Errorf("%w: purchase %d", core.ErrNotFound, id)
	}
	return p, nil
}

func ownedCard(ctx context.Context, q *storage.Queries, principal core.Principal, id int64) (core.CreditCard, error) {
	card, err := q.GetCreditCard(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return core.CreditCard{}, fmt.Errorf("%w: card %d", core.ErrInvalidCreditCard, id)
	}
	if err != nil {
		return core.CreditCard{}, err
	}
	if card.UserID != principal.UserID {
		return core.CreditCard{}, fmt.Errorf("%w: card %d", core.ErrInvalidCreditCard, id)
	}
	return card, nil
}

func ownedStatement(ctx context.Context, q *storage.Queries, principal core.Principal, id int64) (core.MonthlyStatement, core.CreditCard, error) {
	st, err := q.GetStatement(ctx, id)
	if err != nil {
		return core.MonthlyStatement{}, core.CreditCard{}, err
	}
	card, err := q.GetCreditCard(ctx, st.CreditCardID)
	if err != nil {
		return core.MonthlyStatement{}, core.CreditCard{}, err
	}
	if card.UserID != principal.UserID {
		return core.MonthlyStatement{}, core.CreditCard{}, fmt.Errorf("%w: statement %d", core.ErrNotFound, id)
	}
	return st, card, nil
}

// cardOfPurchase returns the credit card behind the purchase's payment
// method. ok is false for purchases paid by other means.
func cardOfPurchase(ctx context.Context, q *storage.Queries, p core.Purchase) (core.CreditCard, bool, error) {
	pm, err := q.GetPaymentMethod(ctx, p.PaymentMethodID)
	if err != nil {
		return core.CreditCard{}, false, err
	}
	if pm.Type != core.PaymentCreditCard {
		return core.CreditCard{}, false, nil
	}
	card, err := q.GetCreditCardByPaymentMethod(ctx, pm.ID)
	if err != nil {
		return core.CreditCard{}, false, err
	}
	return card, true, nil
}
