package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"cardspend/internal/core"
	"cardspend/internal/log"
	"cardspend/internal/storage"
)

func TestFindOrCreateIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	card := env.card(t, alice, "Visa", 15, 10)
	reg := NewStatementRegistry(DefaultStatementAttempts, log.Nop())
	period := core.NewPeriod(2025, time.April)

	first, err := reg.FindOrCreate(ctx, env.repo.Queries(), card, period)
	require.NoError(t, err)
	second, err := reg.FindOrCreate(ctx, env.repo.Queries(), card, period)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "2025-04-15", first.ClosingDate.String())
	assert.Equal(t, "2025-05-10", first.DueDate.String())
	assert.Equal(t, 1, env.count(t, "monthly_statements"))
}

func TestFindOrCreateConcurrentCallersShareOneRow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	card := env.card(t, alice, "Visa", 15, 10)
	reg := NewStatementRegistry(DefaultStatementAttempts, log.Nop())
	period := core.NewPeriod(2025, time.June)

	const workers = 8
	ids := make([]int64, workers)
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		i := i
		g.Go(func() error {
			st, err := reg.FindOrCreate(ctx, env.repo.Queries(), card, period)
			ids[i] = st.ID
			return err
		})
	}
	require.NoError(t, g.Wait())

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	n, err := env.repo.Queries().CountStatementsByCardPeriod(ctx, card.ID, period)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestConcurrentPurchasesMaterializeOneStatementPerPeriod(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	card := env.card(t, alice, "Visa", 15, 10)

	var g errgroup.Group
	for i := 0; i < 6; i++ {
		g.Go(func() error {
			_, _, err := env.svc.Purchases.Create(ctx, alice, core.Purchase{
				PaymentMethodID:  card.PaymentMethodID,
				Date:             core.NewDate(2025, 3, 20),
				Description:      "concurrent",
				Amount:           core.Money{Cents: 3000},
				Currency:         core.CurrencyARS,
				InstallmentCount: 3,
			})
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, 3, env.count(t, "monthly_statements"))
	assert.Equal(t, 18, env.count(t, "installments"))
}

func TestStatementStartDates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := NewStatementRegistry(DefaultStatementAttempts, log.Nop())
	q := env.repo.Queries()

	// Card created on 2025-03-01 (the env clock), closing on the 15th.
	card := env.card(t, alice, "Visa", 15, 10)

	t.Run("first statement starts at card creation when inside the cycle", func(t *testing.T) {
		st, err := reg.FindOrCreate(ctx, q, card, core.NewPeriod(2025, time.March))
		require.NoError(t, err)
		assert.Equal(t, "2025-03-01", st.StartDate.String())
		assert.Equal(t, "2025-03-15", st.ClosingDate.String())
	})

	t.Run("next statement starts after the previous closing", func(t *testing.T) {
		prev, err := q.GetStatementByCardPeriod(ctx, card.ID, core.NewPeriod(2025, time.March))
		require.NoError(t, err)
		prev.ClosingDate = core.NewDate(2025, 3, 17)
		require.NoError(t, q.UpdateStatementDates(ctx, prev))

		st, err := reg.FindOrCreate(ctx, q, card, core.NewPeriod(2025, time.April))
		require.NoError(t, err)
		assert.Equal(t, "2025-03-18", st.StartDate.String())
	})

	t.Run("statement after a gap uses the computed cycle start", func(t *testing.T) {
		st, err := reg.FindOrCreate(ctx, q, card, core.NewPeriod(2025, time.August))
		require.NoError(t, err)
		assert.Equal(t, "2025-07-16", st.StartDate.String())
	})

	t.Run("first statement before card creation uses the computed cycle start", func(t *testing.T) {
		other := env.card(t, alice, "Master", 31, 10)
		st, err := reg.FindOrCreate(ctx, q, other, core.NewPeriod(2025, time.February))
		require.NoError(t, err)
		assert.Equal(t, "2025-02-01", st.StartDate.String())
		assert.Equal(t, "2025-02-28", st.ClosingDate.String())
		assert.Equal(t, "2025-03-10", st.DueDate.String())
	})
}

func TestFindOrCreateRollsBackWithTransaction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	card := env.card(t, alice, "Visa", 15, 10)
	reg := NewStatementRegistry(DefaultStatementAttempts, log.Nop())

	err := env.repo.WithTx(ctx, func(q *storage.Queries) error {
		if _, err := reg.FindOrCreate(ctx, q, card, core.NewPeriod(2025, time.May)); err != nil {
			return err
		}
		return core.ErrInvalidAmount
	})
	require.ErrorIs(t, err, core.ErrInvalidAmount)
	assert.Equal(t, 0, env.count(t, "monthly_statements"))
}
