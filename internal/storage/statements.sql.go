package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cardspend/internal/core"
)

const insertStatementIfAbsent = `
INSERT INTO monthly_statements (credit_card_id, period, start_date, closing_date, due_date)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (credit_card_id, period) DO NOTHING
RETURNING id
`

// InsertStatementIfAbsent inserts s unless a statement already exists for
// its (card, period). created is false when another writer got there first.
func (q *Queries) InsertStatementIfAbsent(ctx context.Context, s core.MonthlyStatement) (core.MonthlyStatement, bool, error) {
	err := q.db.QueryRowContext(ctx, insertStatementIfAbsent,
		s.CreditCardID, s.Period.String(), formatDate(s.StartDate), formatDate(s.ClosingDate), formatDate(s.DueDate),
	).Scan(&s.ID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return core.MonthlyStatement{}, false, nil
	case IsUniqueViolation(err):
		return core.MonthlyStatement{}, false, fmt.Errorf("%w: statement %d/%s: %v", core.ErrConcurrencyConflict, s.CreditCardID, s.Period, err)
	case err != nil:
		return core.MonthlyStatement{}, false, fmt.Errorf("insert statement %d/%s: %w", s.CreditCardID, s.Period, err)
	}
	return s, true, nil
}

const statementColumns = `id, credit_card_id, period, start_date, closing_date, due_date`

func scanStatement(row interface{ Scan(...any) error }) (core.MonthlyStatement, error) {
	var (
		s                   core.MonthlyStatement
		period              string
		start, closing, due string
	)
	if err := row.Scan(&s.ID, &s.CreditCardID, &period, &start, &closing, &due); err != nil {
		return core.MonthlyStatement{}, err
	}
	var err error
	if s.Period, err = core.ParsePeriod(period); err != nil {
		return core.MonthlyStatement{}, err
	}
	if s.StartDate, err = parseDate(start); err != nil {
		return core.MonthlyStatement{}, err
	}
	if s.ClosingDate, err = parseDate(closing); err != nil {
		return core.MonthlyStatement{}, err
	}
	if s.DueDate, err = parseDate(due); err != nil {
		return core.MonthlyStatement{}, err
	}
	return s, nil
}

func (q *Queries) queryStatements(ctx context.Context, query string, args ...any) ([]core.MonthlyStatement, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list statements: %w", err)
	}
	defer rows.Close()

	var out []core.MonthlyStatement
	for rows.Next() {
		s, err := scanStatement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan statement: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

const getStatement = `SELECT ` + statementColumns + ` FROM monthly_statements WHERE id = ?`

func (q *Queries) GetStatement(ctx context.Context, id int64) (core.MonthlyStatement, error) {
	s, err := scanStatement(q.db.QueryRowContext(ctx, getStatement, id))
	if err != nil {
		return core.MonthlyStatement{}, notFound(err, "statement", id)
	}
	return s, nil
}

const getStatementByCardPeriod = `SELECT ` + statementColumns + `
FROM monthly_statements WHERE credit_card_id = ? AND period = ?`

// GetStatementByCardPeriod returns core.ErrNotFound when no statement exists.
func (q *Queries) GetStatementByCardPeriod(ctx context.Context, cardID int64, period core.Period) (core.MonthlyStatement, error) {
	s, err := scanStatement(q.db.QueryRowContext(ctx, getStatementByCardPeriod, cardID, period.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return core.MonthlyStatement{}, fmt.Errorf("%w: statement %d/%s", core.ErrNotFound, cardID, period)
	}
	if err != nil {
		return core.MonthlyStatement{}, fmt.Errorf("get statement %d/%s: %w", cardID, period, err)
	}
	return s, nil
}

const getPreviousStatement = `SELECT ` + statementColumns + `
FROM monthly_statements WHERE credit_card_id = ? AND period < ?
ORDER BY period DESC LIMIT 1`

// GetPreviousStatement returns the latest statement of the card strictly
// before period, or core.ErrNotFound.
func (q *Queries) GetPreviousStatement(ctx context.Context, cardID int64, period core.Period) (core.MonthlyStatement, error) {
	s, err := scanStatement(q.db.QueryRowContext(ctx, getPreviousStatement, cardID, period.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return core.MonthlyStatement{}, fmt.Errorf("%w: no statement before %s", core.ErrNotFound, period)
	}
	if err != nil {
		return core.MonthlyStatement{}, fmt.Errorf("get statement before %s: %w", period, err)
	}
	return s, nil
}

const getNextStatement = `SELECT ` + statementColumns + `
FROM monthly_statements WHERE credit_card_id = ? AND period > ?
ORDER BY period ASC LIMIT 1`

// GetNextStatement returns the earliest statement of the card strictly
// after period, or core.ErrNotFound.
func (q *Queries) GetNextStatement(ctx context.Context, cardID int64, period core.Period) (core.MonthlyStatement, error) {
	s, err := scanStatement(q.db.QueryRowContext(ctx, getNextStatement, cardID, period.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return core.MonthlyStatement{}, fmt.Errorf("%w: no statement after %s", core.ErrNotFound, period)
	}
	if err != nil {
		return core.MonthlyStatement{}, fmt.Errorf("get statement after %s: %w", period, err)
	}
	return s, nil
}

const listStatementsByUser = `SELECT s.id, s.credit_card_id, s.period, s.start_date, s.closing_date, s.due_date
FROM monthly_statements s
JOIN credit_cards c ON c.id = s.credit_card_id
WHERE c.user_id = ? AND (? = 1 OR s.closing_date <= ?)
ORDER BY s.due_date DESC, s.id DESC`

// ListStatementsByUser lists the user's statements by due date, newest
// first. Unless includeFuture is set, statements closing after today are
// left out.
func (q *Queries) ListStatementsByUser(ctx context.Context, userID int64, includeFuture bool, today core.Date) ([]core.MonthlyStatement, error) {
	return q.queryStatements(ctx, listStatementsByUser, userID, includeFuture, formatDate(today))
}

const listStatementsByCard = `SELECT ` + statementColumns + `
FROM monthly_statements WHERE credit_card_id = ?
ORDER BY due_date DESC, id DESC`

func (q *Queries) ListStatementsByCard(ctx context.Context, cardID int64) ([]core.MonthlyStatement, error) {
	return q.queryStatements(ctx, listStatementsByCard, cardID)
}

const listStatementsClosedOn = `SELECT ` + statementColumns + `
FROM monthly_statements WHERE closing_date = ?
ORDER BY credit_card_id, id`

func (q *Queries) ListStatementsClosedOn(ctx context.Context, day core.Date) ([]core.MonthlyStatement, error) {
	return q.queryStatements(ctx, listStatementsClosedOn, formatDate(day))
}

const updateStatementDates = `
UPDATE monthly_statements SET start_date = ?, closing_date = ?, due_date = ? WHERE id = ?
`

func (q *Queries) UpdateStatementDates(ctx context.Context, s core.MonthlyStatement) error {
	_, err := q.db.ExecContext(ctx, updateStatementDates,
		formatDate(s.StartDate), formatDate(s.ClosingDate), formatDate(s.DueDate), s.ID)
	if err != nil {
		return fmt.Errorf("update dates of statement %d: %w", s.ID, err)
	}
	return nil
}

const deleteStatement = `DELETE FROM monthly_statements WHERE id = ?`

func (q *Queries) DeleteStatement(ctx context.Context, id int64) error {
	if _, err := q.db.ExecContext(ctx, deleteStatement, id); err != nil {
		return fmt.Errorf("delete statement %d: %w", id, err)
	}
	return nil
}

const countStatementsByCardPeriod = `SELECT COUNT(*) FROM monthly_statements WHERE credit_card_id = ? AND period = ?`

func (q *Queries) CountStatementsByCardPeriod(ctx context.Context, cardID int64, period core.Period) (int64, error) {
	var n int64
	if err := q.db.QueryRowContext(ctx, countStatementsByCardPeriod, cardID, period.String()).Scan(&n); err != nil {
		return 0, fmt.Errorf("count statements: %w", err)
	}
	return n, nil
}
