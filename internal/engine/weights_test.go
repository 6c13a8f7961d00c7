package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestDefaultWeightsValid(t *testing.T) {
	require.NoError(t, DefaultWeights.Validate())
}

func TestApply_NoOverrides(t *testing.T) {
	w, err := DefaultWeights.Apply(WeightOverrides{})
	require.NoError(t, err)
	assert.Equal(t, DefaultWeights, w)
}

func TestApply_Renormalizes(t *testing.T) {
	w, err := DefaultWeights.Apply(WeightOverrides{Urgency: ptr(0.85)})
	require.NoError(t, err)
	require.NoError(t, w.Validate())

	// 0.85 + 0.65 = 1.5
	assert.InDelta(t, 0.85/1.5, w.Urgency, 1e-9)
	assert.InDelta(t, 0.25/1.5, w.Priority, 1e-9)
}

func TestApply_FullSetKeptAsIs(t *testing.T) {
	w, err := DefaultWeights.Apply(WeightOverrides{
		Urgency: ptr(0.2), Priority: ptr(0.2), Momentum: ptr(0.2), Context: ptr(0.2), Freshness: ptr(0.2),
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.2, w.Freshness, 1e-12)
}

func TestApply_Rejects(t *testing.T) {
	_, err := DefaultWeights.Apply(WeightOverrides{Momentum: ptr(-0.1)})
	assert.ErrorIs(t, err, ErrInvalidWeights)

	_, err = DefaultWeights.Apply(WeightOverrides{
		Urgency: ptr(0), Priority: ptr(0), Momentum: ptr(0), Context: ptr(0), Freshness: ptr(0),
	})
	assert.ErrorIs(t, err, ErrInvalidWeights)
}

func TestValidate_Sum(t *testing.T) {
	w := DefaultWeights
	w.Urgency = 0.5
	assert.ErrorIs(t, w.Validate(), ErrInvalidWeights)
}

func TestWeightOverridesIsZero(t *testing.T) {
	assert.True(t, WeightOverrides{}.IsZero())
	assert.False(t, WeightOverrides{Context: ptr(0.1)}.IsZero())
}
