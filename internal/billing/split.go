package billing

import (
	"fmt"

	"cardspend/internal/core"
)

// Split divides total cents into n installments whose sum is exactly total.
//
// Every installment gets total/n (truncated toward zero, so credits split
// symmetrically) and the whole remainder is added to the first one:
// 10000 in 3 is 3334, 3333, 3333 and 10 in 4 is 4, 2, 2, 2.
func Split(total int64, n int) ([]int64, error) {
	if total == 0 {
		return nil, fmt.Errorf("%w: cannot split a zero amount", core.ErrInvalidAmount)
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: installments count must be at least 1, got %d", core.ErrInvalidInput, n)
	}
	base := total / int64(n)
	remainder := total - base*int64(n)

	out := make([]int64, n)
	for i := range out {
		out[i] = base
	}
	out[0] += remainder
	return out, nil
}
