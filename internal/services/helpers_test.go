package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cardspend/internal/amqp"
	"cardspend/internal/core"
	"cardspend/internal/log"
	"cardspend/internal/storage"
)

var (
	alice = core.Principal{UserID: 1}
	bob   = core.Principal{UserID: 2}
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []amqp.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev amqp.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []amqp.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.EventType, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type testEnv struct {
	repo *storage.SQLiteRepository
	svc  *Services
	pub  *recordingPublisher
	now  time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"), log.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	env := &testEnv{
		repo: repo,
		pub:  &recordingPublisher{},
		now:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	env.svc = New(repo, env.pub, log.Nop(), Options{Now: func() time.Time { return env.now }})
	return env
}

func (e *testEnv) card(t *testing.T, who core.Principal, name string, closeDay, dueDay int) core.CreditCard {
	t.Helper()
	card, err := e.svc.Cards.CreateCreditCard(context.Background(), who, core.CreditCard{Name: name, CloseDay: closeDay, DueDay: dueDay})
	require.NoError(t, err)
	return card
}

func (e *testEnv) purchase(t *testing.T, who core.Principal, pmID int64, date core.Date, cents int64, n int) (core.Purchase, []core.Installment) {
	t.Helper()
	p, inst, err := e.svc.Purchases.Create(context.Background(), who, core.Purchase{
		PaymentMethodID:  pmID,
		CategoryID:       1,
		Date:             date,
		Description:      "purchase",
		Amount:           core.Money{Cents: cents},
		Currency:         core.CurrencyARS,
		InstallmentCount: n,
	})
	require.NoError(t, err)
	return p, inst
}

func (e *testEnv) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, e.repo.DB().QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}
