// Package worker reacts to lifecycle events published by the API and runs the
// scheduled statement export.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"cardspend/internal/amqp"
	"cardspend/internal/core"
	"cardspend/internal/log"
	"cardspend/internal/sheets"
	"cardspend/internal/storage"
)

// EventWorker keeps budget snapshots in line with installment amounts and
// exports statements to a spreadsheet.
type EventWorker struct {
	repo     *storage.SQLiteRepository
	exporter sheets.StatementExporter
	logger   zerolog.Logger
}

// NewEventWorker creates a worker. A nil exporter disables statement export.
func NewEventWorker(repo *storage.SQLiteRepository, exporter sheets.StatementExporter, logger zerolog.Logger) *EventWorker {
	return &EventWorker{
		repo:     repo,
		exporter: exporter,
		logger:   log.WithComponent(logger, log.ComponentWorker),
	}
}

// HandleEvent processes one event. Events about records that no longer exist
// and event types the worker does not know are acknowledged and dropped; any
// other error asks the broker to redeliver.
func (w *EventWorker) HandleEvent(ctx context.Context, ev amqp.Event) error {
	logger := w.logger.With().
		Str(log.FieldEventType, string(ev.Type)).
		Str(log.FieldEventID, ev.ID.String()).
		Logger()

	var err error
	switch ev.Type {
	case amqp.EventInstallmentUpdated:
		err = w.refreshInstallment(ctx, ev.InstallmentID)
	case amqp.EventPurchaseUpdated:
		err = w.refreshPurchase(ctx, ev.PurchaseID)
	case amqp.EventStatementUpdated:
		_, err = w.exportStatement(ctx, ev.StatementID)
	case amqp.EventPurchaseCreated, amqp.EventPurchaseDeleted:
		logger.Debug().Msg("No work for event")
		return nil
	default:
		logger.Warn().Msg("Dropping unknown event")
		return nil
	}

	if errors.Is(err, core.ErrNotFound) {
		logger.Warn().Err(err).Msg("Event refers to a missing record, skipping")
		return nil
	}
	return err
}

func (w *EventWorker) refreshInstallment(ctx context.Context, id int64) error {
	inst, err := w.repo.Queries().GetInstallment(ctx, id)
	if err != nil {
		return err
	}
	return w.refresh(ctx, inst)
}

func (w *EventWorker) refreshPurchase(ctx context.Context, purchaseID int64) error {
	installments, err := w.repo.Queries().ListInstallmentsByPurchase(ctx, purchaseID)
	if err != nil {
		return err
	}
	for _, inst := range installments {
		if err := w.refresh(ctx, inst); err != nil {
			return err
		}
	}
	return nil
}

func (w *EventWorker) refresh(ctx context.Context, inst core.Installment) error {
	n, err := w.repo.Queries().RefreshBudgetExpensesOfInstallment(ctx, inst.ID, inst.Amount.Cents)
	if err != nil {
		return err
	}
	if n > 0 {
		w.logger.Info().
			Int64(log.FieldInstallmentID, inst.ID).
			Int64(log.FieldAmountCents, inst.Amount.Cents).
			Int64("rows", n).
			Msg("Budget expenses refreshed")
	}
	return nil
}

func (w *EventWorker) exportStatement(ctx context.Context, id int64) (string, error) {
	if w.exporter == nil {
		w.logger.Debug().Int64(log.FieldStatementID, id).Msg("Statement export disabled, skipping")
		return "", nil
	}

	q := w.repo.Queries()
	st, err := q.GetStatement(ctx, id)
	if err != nil {
		return "", err
	}
	card, err := q.GetCreditCard(ctx, st.CreditCardID)
	if err != nil {
		return "", err
	}
	lines, err := q.ListStatementLines(ctx, id)
	if err != nil {
		return "", err
	}

	ref, err := w.exporter.ExportStatement(ctx, core.NewStatementDetail(st, card, lines))
	if err != nil {
		return "", fmt.Errorf("export statement %d: %w", id, err)
	}
	w.logger.Debug().Int64(log.FieldStatementID, id).Str("ref", ref).Msg("Statement exported")
	return ref, nil
}

// ExportClosedStatements exports every statement that closed the day before
// now. A failing statement does not stop the others; all failures are
// returned together.
func (w *EventWorker) ExportClosedStatements(ctx context.Context, now time.Time) (int, error) {
	if w.exporter == nil {
		return 0, nil
	}

	day := core.DateOf(now).AddDays(-1)
	statements, err := w.repo.Queries().ListStatementsClosedOn(ctx, day)
	if err != nil {
		return 0, err
	}

	var (
		exported int
		errs     []error
	)
	for _, st := range statements {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := w.exportStatement(ctx, st.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		exported++
	}

	w.logger.Info().
		Str("closing_date", day.String()).
		Int("exported", exported).
		Int("failed", len(errs)).
		Msg("Closed statements exported")
	return exported, errors.Join(errs...)
}
