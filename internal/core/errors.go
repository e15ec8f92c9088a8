package core

import (
	"errors"
	"fmt"
)

// Kind is the stable, client facing name of an error category.
type Kind string

const (
	KindNotFound              Kind = "not_found"
	KindInvalidAmount         Kind = "invalid_amount"
	KindInvalidConfiguration  Kind = "invalid_configuration"
	KindInvalidInput          Kind = "invalid_input"
	KindCrossCardReassignment Kind = "cross_card_reassignment"
	KindConcurrencyConflict   Kind = "concurrency_conflict"
	KindStatementInUse        Kind = "statement_in_use"
	KindUnauthorized          Kind = "unauthorized"
	KindInternal              Kind = "internal"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInvalidConfiguration  = errors.New("invalid configuration")
	ErrInvalidInput          = errors.New("invalid input")
	ErrCrossCardReassignment = errors.New("cross-card reassignment")
	ErrConcurrencyConflict   = errors.New("concurrency conflict")
	ErrStatementInUse        = errors.New("statement in use")
	ErrUnauthorized          = errors.New("unauthorized")

	ErrInvalidCreditCard = fmt.Errorf("%w: invalid credit card", ErrNotFound)
)

// KindOf classifies err. Unknown errors are internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidAmount):
		return KindInvalidAmount
	case errors.Is(err, ErrInvalidConfiguration):
		return KindInvalidConfiguration
	case errors.Is(err, ErrCrossCardReassignment):
		return KindCrossCardReassignment
	case errors.Is(err, ErrConcurrencyConflict):
		return KindConcurrencyConflict
	case errors.Is(err, ErrStatementInUse):
		return KindStatementInUse
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidDay), errors.Is(err, ErrInvalidMonth):
		return KindInvalidInput
	}
	return KindInternal
}
