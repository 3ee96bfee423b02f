package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateOfCharge(t *testing.T) {
	tests := []struct {
		name    string
		voltage float64
		minV    float64
		maxV    float64
		want    float64
	}{
		{
			name:    "empty at min voltage",
			voltage: 11.8,
			minV:    11.8,
			maxV:    12.6,
			want:    0.0,
		},
		{
			name:    "full at max voltage",
			voltage: 12.6,
			minV:    11.8,
			maxV:    12.6,
			want:    1.0,
		},
		{
			name:    "linear in between",
			voltage: 12.4,
			minV:    11.8,
			maxV:    12.6,
			want:    0.75,
		},
		{
			name:    "midpoint",
			voltage: 12.2,
			minV:    11.8,
			maxV:    12.6,
			want:    0.5,
		},
		{
			name:    "clamped below zero",
			voltage: 10.0,
			minV:    11.8,
			maxV:    12.6,
			want:    0.0,
		},
		{
			name:    "clamped above one",
			voltage: 14.4,
			minV:    11.8,
			maxV:    12.6,
			want:    1.0,
		},
		{
			name:    "24V bank",
			voltage: 24.4,
			minV:    23.6,
			maxV:    25.2,
			want:    0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StateOfCharge(tt.voltage, tt.minV, tt.maxV)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestStateOfCharge_AlwaysClamped(t *testing.T) {
	for v := -5.0; v <= 30.0; v += 0.5 {
		soc := StateOfCharge(v, 11.8, 12.6)
		assert.GreaterOrEqual(t, soc, 0.0, "voltage %g", v)
		assert.LessOrEqual(t, soc, 1.0, "voltage %g", v)
	}
}

func TestRemainingCapacity(t *testing.T) {
	// 100 Ah at 50% = 50 Ah = 180000 coulombs
	assert.InDelta(t, 180000.0, RemainingCapacity(0.5, 100), 1e-9)
	assert.InDelta(t, 0.0, RemainingCapacity(0, 100), 1e-9)
	assert.InDelta(t, 720000.0, RemainingCapacity(1.0, 200), 1e-9)
}

func TestGasLeak(t *testing.T) {
	assert.False(t, GasLeak(0.49, 0.5))
	assert.False(t, GasLeak(0.5, 0.5), "threshold itself is not a leak")
	assert.True(t, GasLeak(0.51, 0.5))
}

func TestWaterCritical(t *testing.T) {
	assert.True(t, WaterCritical(0.29, 0.3))
	assert.False(t, WaterCritical(0.3, 0.3), "threshold itself is not critical")
	assert.False(t, WaterCritical(0.8, 0.3))
}
