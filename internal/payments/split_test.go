package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name         string
		total        int64
		commissionBP int64
		wantOperator int64
		wantFee      int64
	}{
		{"eleven percent of 15000", 15000, 1100, 13350, 1650},
		{"zero commission", 15000, 0, 15000, 0},
		{"full commission", 15000, 10000, 0, 15000},
		{"remainder goes to fee", 9999, 1100, 8899, 1100},
		{"one minor unit", 1, 1100, 0, 1},
		{"zero total", 0, 1100, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			operator, fee := Split(tt.total, tt.commissionBP)
			assert.Equal(t, tt.wantOperator, operator)
			assert.Equal(t, tt.wantFee, fee)
		})
	}
}

// The split must add up exactly and never go negative for any valid input.
func TestSplitInvariants(t *testing.T) {
	totals := []int64{1, 2, 7, 99, 100, 101, 14999, 15000, 15001, 1_000_000_001}
	rates := []int64{0, 1, 99, 100, 1100, 2500, 3333, 9999, 10000}

	for _, total := range totals {
		for _, bp := range rates {
			operator, fee := Split(total, bp)
			assert.Equal(t, total, operator+fee,
				"total=%d bp=%d: split must sum to total", total, bp)
			assert.GreaterOrEqual(t, operator, int64(0))
			assert.GreaterOrEqual(t, fee, int64(0))
		}
	}
}

// The operator amount must be deterministic: same inputs, same payout,
// independent of how often or when the split is computed.
func TestSplitDeterministic(t *testing.T) {
	for i := 0; i < 100; i++ {
		operator, fee := Split(15000, 1100)
		assert.Equal(t, int64(13350), operator)
		assert.Equal(t, int64(1650), fee)
	}
}

func TestSplitClampsRate(t *testing.T) {
	operator, fee := Split(1000, -50)
	assert.Equal(t, int64(1000), operator)
	assert.Equal(t, int64(0), fee)

	operator, fee = Split(1000, 20000)
	assert.Equal(t, int64(0), operator)
	assert.Equal(t, int64(1000), fee)
}
