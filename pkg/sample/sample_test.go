package sample

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boatmon/pkg/board"
	"boatmon/pkg/config"
)

func TestVoltageFromSample(t *testing.T) {
	tests := []struct {
		name        string
		sample      float64
		vref        float64
		r1, r2      float64
		calibration float64
		want        float64
	}{
		{
			name:        "zero sample",
			sample:      0.0,
			vref:        5.0,
			r1:          47000,
			r2:          10000,
			calibration: 1.0,
			want:        0.0,
		},
		{
			name:        "equal resistors double the pin voltage",
			sample:      0.33,
			vref:        5.0,
			r1:          10000,
			r2:          10000,
			calibration: 1.0,
			want:        3.3, // 1.65V at the pin, divider ratio 2
		},
		{
			name:        "47k/10k divider",
			sample:      0.4351,
			vref:        5.0,
			r1:          47000,
			r2:          10000,
			calibration: 1.0,
			want:        12.4, // 2.1755V * 5.7
		},
		{
			name:        "calibration applied last",
			sample:      0.4,
			vref:        5.0,
			r1:          10000,
			r2:          10000,
			calibration: 1.05,
			want:        4.2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VoltageFromSample(tt.sample, tt.vref, tt.r1, tt.r2, tt.calibration)
			assert.InDelta(t, tt.want, got, 0.01)
		})
	}
}

func TestVoltageFromSample_LinearInCalibration(t *testing.T) {
	base := VoltageFromSample(0.42, 5.0, 47000, 10000, 1.0)
	doubled := VoltageFromSample(0.42, 5.0, 47000, 10000, 2.0)
	assert.InDelta(t, 2*base, doubled, 1e-9, "doubling calibration must double the reported voltage")
}

func TestCurrentFromSample(t *testing.T) {
	tests := []struct {
		name        string
		sample      float64
		vref        float64
		resistance  float64
		calibration float64
		want        float64
	}{
		{
			name:        "no drop means no current",
			sample:      0.0,
			vref:        5.0,
			resistance:  0.001,
			calibration: 1.0,
			want:        0.0,
		},
		{
			name:        "ohms law inversion",
			sample:      0.01, // 50mV across 1mOhm
			vref:        5.0,
			resistance:  0.001,
			calibration: 1.0,
			want:        50.0,
		},
		{
			name:        "negative calibration flips to charging",
			sample:      0.01,
			vref:        5.0,
			resistance:  0.001,
			calibration: -1.0,
			want:        -50.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CurrentFromSample(tt.sample, tt.vref, tt.resistance, tt.calibration)
			assert.InDelta(t, tt.want, got, 0.01)
		})
	}
}

func TestLevelFromSample(t *testing.T) {
	assert.InDelta(t, 0.65, LevelFromSample(0.65), 1e-9)
	assert.InDelta(t, 0.0, LevelFromSample(-0.1), 1e-9)
	assert.InDelta(t, 1.0, LevelFromSample(1.2), 1e-9)
	assert.True(t, math.IsNaN(LevelFromSample(math.NaN())))
}

func TestCelsiusToKelvin(t *testing.T) {
	assert.InDelta(t, 298.15, CelsiusToKelvin(25.0), 1e-9)
	assert.InDelta(t, 273.15, CelsiusToKelvin(0.0), 1e-9)
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Divider = config.DividerConfig{R1: 47000, R2: 10000, VRef: 5.0}
	return cfg
}

func TestCollect_AllChannelsValid(t *testing.T) {
	cfg := testConfig()
	b := board.NewMock()
	// Battery 0 at 12.4V behind the divider: 12.4 / 5.7 / 5.0
	b.SetSample(0, 12.4/5.7/5.0)
	b.SetSample(1, 12.2/5.7/5.0)
	b.SetSample(2, 0.002) // 10mV across the shunt
	b.SetSample(3, 0.65)
	b.SetSample(4, 0.1)
	b.SetEnvironment(25.0, 55.0)

	snap := NewCollector(cfg, b).Collect()

	require.Len(t, snap.Batteries, 2)
	assert.InDelta(t, 12.4, snap.Batteries[0].Voltage, 0.01)
	assert.InDelta(t, 0.75, snap.Batteries[0].StateOfCharge, 0.01)
	assert.InDelta(t, 12.2, snap.Batteries[1].Voltage, 0.01)
	// Only battery 0 carries the shunt
	assert.True(t, Valid(snap.Batteries[0].Current))
	assert.False(t, Valid(snap.Batteries[1].Current))
	// Only battery 0 has a rated capacity in the default config
	assert.True(t, Valid(snap.Batteries[0].RemainingC))
	assert.False(t, Valid(snap.Batteries[1].RemainingC))

	assert.InDelta(t, 0.65, snap.WaterLevel, 1e-9)
	assert.InDelta(t, 298.15, snap.Temperature, 1e-9)
	assert.InDelta(t, 0.55, snap.Humidity, 1e-9)
	assert.False(t, snap.GasLeak)
}

func TestCollect_RemainingCapacity(t *testing.T) {
	cfg := testConfig()
	cfg.Batteries = cfg.Batteries[:1]
	cfg.Batteries[0].CapacityAh = 100

	b := board.NewMock()
	b.SetSample(0, 12.6/5.7/5.0) // Full

	snap := NewCollector(cfg, b).Collect()
	require.Len(t, snap.Batteries, 1)
	assert.InDelta(t, 1.0, snap.Batteries[0].StateOfCharge, 0.01)
	assert.InDelta(t, 360000.0, snap.Batteries[0].RemainingC, 5000)
}

func TestCollect_InvalidSensorsReadAsNaN(t *testing.T) {
	cfg := testConfig()
	b := board.NewMock()
	// Nothing configured: every channel reads NaN and the environment fails.

	snap := NewCollector(cfg, b).Collect()

	for _, bat := range snap.Batteries {
		assert.False(t, Valid(bat.Voltage))
		assert.False(t, Valid(bat.StateOfCharge))
		assert.False(t, Valid(bat.Current))
		assert.False(t, Valid(bat.RemainingC))
	}
	assert.False(t, Valid(snap.WaterLevel))
	assert.False(t, Valid(snap.Temperature))
	assert.False(t, Valid(snap.Humidity))
	assert.False(t, Valid(snap.GasSample))
	assert.False(t, snap.GasLeak)
}

func TestCollect_GasLeakAboveThreshold(t *testing.T) {
	cfg := testConfig()
	cfg.Gas.Threshold = 0.5

	b := board.NewMock()
	b.SetSample(cfg.Gas.Channel, 0.8)

	snap := NewCollector(cfg, b).Collect()
	assert.True(t, snap.GasLeak)
	assert.InDelta(t, 0.8, snap.GasSample, 1e-9)
}

func TestCollect_EnvFailureLeavesOtherFields(t *testing.T) {
	cfg := testConfig()
	b := board.NewMock()
	b.SetSample(0, 12.4/5.7/5.0)
	b.FailEnvironment()

	snap := NewCollector(cfg, b).Collect()
	assert.False(t, Valid(snap.Temperature))
	assert.False(t, Valid(snap.Humidity))
	assert.True(t, Valid(snap.Batteries[0].Voltage))
}
