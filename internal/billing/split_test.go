package billing

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardspend/internal/core"
)

func TestSplitDocumentedCases(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		n     int
		want  []int64
	}{
		{"single installment", 10000, 1, []int64{10000}},
		{"remainder of one goes first", 10000, 3, []int64{3334, 3333, 3333}},
		{"remainder larger than one goes entirely first", 10, 4, []int64{4, 2, 2, 2}},
		{"even split", 9000, 3, []int64{3000, 3000, 3000}},
		{"credit splits symmetrically", -10000, 3, []int64{-3334, -3333, -3333}},
		{"more installments than cents", 2, 5, []int64{2, 0, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.total, tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitSumInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		total := rng.Int63n(2_000_000_000) - 1_000_000_000
		if total == 0 {
			continue
		}
		n := rng.Intn(60) + 1
		parts, err := Split(total, n)
		require.NoError(t, err, "Split(%d, %d)", total, n)
		require.Len(t, parts, n)

		var sum int64
		for _, p := range parts {
			sum += p
		}
		require.Equal(t, total, sum, "Split(%d, %d) = %v", total, n, parts)

		// Remainder always has magnitude below n, and installments 2..n are equal.
		for _, p := range parts[1:] {
			require.Equal(t, parts[len(parts)-1], p, "Split(%d, %d) = %v", total, n, parts)
		}
		diff := parts[0] - parts[len(parts)-1]
		if diff < 0 {
			diff = -diff
		}
		require.Less(t, diff, int64(n), "Split(%d, %d) = %v", total, n, parts)
	}
}

func TestSplitRejectsInvalidInput(t *testing.T) {
	_, err := Split(0, 3)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = Split(100, 0)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}
