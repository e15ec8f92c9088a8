// Package services implements the billing engine on top of storage: the
// statement registry, installment assignment, manual reassignment and the
// purchase lifecycle.
package services

import (
	"time"

	"github.com/rs/zerolog"

	"cardspend/internal/storage"
)

// Services bundles every service sharing one repository and publisher.
type Services struct {
	Purchases    *PurchaseService
	Installments *ReassignmentService
	Statements   *StatementService
	Cards        *CardService
}

type Options struct {
	// StatementAttempts bounds find-or-create retries after a lost race.
	StatementAttempts int
	// Now overrides the clock, mainly in tests.
	Now func() time.Time
}

func New(repo *storage.SQLiteRepository, publisher EventPublisher, logger zerolog.Logger, opts Options) *Services {
	registry := NewStatementRegistry(opts.StatementAttempts, logger)
	svc := &Services{
		Purchases:    NewPurchaseService(repo, NewInstallmentAssigner(registry), publisher, logger),
		Installments: NewReassignmentService(repo, publisher, logger),
		Statements:   NewStatementService(repo, registry, publisher, logger),
		Cards:        NewCardService(repo, logger),
	}
	if opts.Now != nil {
		svc.Purchases.now = opts.Now
		svc.Statements.now = opts.Now
		svc.Cards.now = opts.Now
	}
	return svc
}
