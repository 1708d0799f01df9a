package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeSettlement_Scenario(t *testing.T) {
	s, err := ComputeSettlement(5000, 0.1)
	assert.NoError(t, err)
	assert.Equal(t, int64(500), s.PlatformFee)
	assert.Equal(t, int64(4500), s.ReviewerPayout)
}

func TestComputeSettlement_ZeroRate(t *testing.T) {
	s, err := ComputeSettlement(10000, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), s.PlatformFee)
	assert.Equal(t, int64(10000), s.ReviewerPayout)
}

func TestComputeSettlement_FullRate(t *testing.T) {
	s, err := ComputeSettlement(3000, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(3000), s.PlatformFee)
	assert.Equal(t, int64(0), s.ReviewerPayout)
}

func TestComputeSettlement_Rounding(t *testing.T) {
	// 1000 * 0.1234 = 123.4 -> комиссия 123, выплата 877
	s, err := ComputeSettlement(1000, 0.1234)
	assert.NoError(t, err)
	assert.Equal(t, int64(123), s.PlatformFee)
	assert.Equal(t, int64(877), s.ReviewerPayout)

	// 1000 * 0.1235 = 123.5 -> округление вверх
	s, err = ComputeSettlement(1000, 0.1235)
	assert.NoError(t, err)
	assert.Equal(t, int64(124), s.PlatformFee)
	assert.Equal(t, int64(876), s.ReviewerPayout)
}

func TestComputeSettlement_Conservation(t *testing.T) {
	budgets := []int64{1000, 3000, 5000, 10000, 30000, 50000}
	rates := []float64{0, 0.03, 0.1, 0.15, 0.333, 0.5, 0.777, 1}

	for _, budget := range budgets {
		for _, rate := range rates {
			s, err := ComputeSettlement(budget, rate)
			assert.NoError(t, err)
			assert.Equal(t, budget, s.PlatformFee+s.ReviewerPayout,
				"budget=%d rate=%g", budget, rate)
			assert.GreaterOrEqual(t, s.PlatformFee, int64(0))
			assert.GreaterOrEqual(t, s.ReviewerPayout, int64(0))
		}
	}
}

func TestComputeSettlement_InvalidInput(t *testing.T) {
	_, err := ComputeSettlement(0, 0.1)
	assert.Error(t, err)

	_, err = ComputeSettlement(-5000, 0.1)
	assert.Error(t, err)

	_, err = ComputeSettlement(5000, -0.1)
	assert.Error(t, err)

	_, err = ComputeSettlement(5000, 1.1)
	assert.Error(t, err)
}
