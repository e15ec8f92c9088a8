package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardspend/internal/core"
)

func TestCreateCreditCardValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		card    core.CreditCard
		wantErr error
	}{
		{"close day zero", core.CreditCard{Name: "Visa", CloseDay: 0, DueDay: 10}, core.ErrInvalidConfiguration},
		{"close day 32", core.CreditCard{Name: "Visa", CloseDay: 32, DueDay: 10}, core.ErrInvalidConfiguration},
		{"due day 40", core.CreditCard{Name: "Visa", CloseDay: 15, DueDay: 40}, core.ErrInvalidConfiguration},
		{"missing name", core.CreditCard{Name: "  ", CloseDay: 15, DueDay: 10}, core.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Cards.CreateCreditCard(ctx, alice, tt.card)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Equal(t, 0, env.count(t, "credit_cards"))
	assert.Equal(t, 0, env.count(t, "payment_methods"))
}

func TestCreateCreditCardCreatesPaymentMethod(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	card := env.card(t, alice, " Visa ", 31, 5)
	assert.Equal(t, "Visa", card.Name)
	assert.Equal(t, alice.UserID, card.UserID)
	assert.NotZero(t, card.PaymentMethodID)

	list, err := env.svc.Cards.ListCreditCards(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, card.ID, list[0].ID)

	list, err = env.svc.Cards.ListCreditCards(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateCreditCard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	card := env.card(t, alice, "Visa", 15, 10)

	closeDay := 20
	bank := "Galicia"
	updated, err := env.svc.Cards.UpdateCreditCard(ctx, alice, card.ID, CreditCardUpdate{CloseDay: &closeDay, Bank: &bank})
	require.NoError(t, err)
	assert.Equal(t, 20, updated.CloseDay)
	assert.Equal(t, "Galicia", updated.Bank)

	bad := 0
	_, err = env.svc.Cards.UpdateCreditCard(ctx, alice, card.ID, CreditCardUpdate{DueDay: &bad})
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)

	_, err = env.svc.Cards.UpdateCreditCard(ctx, bob, card.ID, CreditCardUpdate{Bank: &bank})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCreatePaymentMethod(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pm, err := env.svc.Cards.CreatePaymentMethod(ctx, alice, "Wallet", core.PaymentCash)
	require.NoError(t, err)
	assert.Equal(t, core.PaymentCash, pm.Type)

	_, err = env.svc.Cards.CreatePaymentMethod(ctx, alice, "Visa", core.PaymentCreditCard)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = env.svc.Cards.CreatePaymentMethod(ctx, alice, "Crypto", core.PaymentMethodType("crypto"))
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = env.svc.Cards.CreatePaymentMethod(ctx, alice, "", core.PaymentBankAccount)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}
