// Package http exposes the billing engine as a JSON API.
//
// This file holds the request side helpers: body decoding, path and query
// parsing, and the decimal amount type used by every money field.
package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"cardspend/internal/core"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// decimalAmount accepts a money value either as a JSON string ("12.34",
// "12,34") or as a bare JSON number, and keeps it in cents.
type decimalAmount int64

func (a *decimalAmount) UnmarshalJSON(b []byte) error {
	raw := bytes.TrimSpace(b)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("%w: amount must be a decimal", core.ErrInvalidAmount)
		}
		raw = []byte(s)
	}
	cents, err := core.ParseDecimalToCents(string(raw))
	if err != nil {
		return fmt.Errorf("%w: %q is not a valid non zero amount", core.ErrInvalidAmount, string(raw))
	}
	*a = decimalAmount(cents)
	return nil
}

func (a decimalAmount) money() core.Money {
	return core.Money{Cents: int64(a)}
}

func (a *decimalAmount) moneyPtr() *core.Money {
	if a == nil {
		return nil
	}
	m := a.money()
	return &m
}

// decodeJSON reads a single JSON object into dst. Unknown fields are
// rejected so a misspelled key does not silently become a no-op.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", core.ErrInvalidInput)
		}
		if core.KindOf(err) != core.KindInternal {
			return err
		}
		return fmt.Errorf("%w: malformed JSON: %v", core.ErrInvalidInput, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: request body must contain a single JSON object", core.ErrInvalidInput)
	}
	return nil
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s %q is not a valid id", core.ErrInvalidInput, name, raw)
	}
	return id, nil
}

// queryBool parses an optional boolean query parameter.
func queryBool(r *http.Request, name string, def bool) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be true or false", core.ErrInvalidInput, name)
	}
	return b, nil
}
