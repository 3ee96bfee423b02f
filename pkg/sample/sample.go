package sample

import (
	"math"

	"boatmon/pkg/board"
	"boatmon/pkg/config"
	"boatmon/pkg/metrics"
)

// BatteryReading holds the derived values for one battery bank within a
// snapshot. RemainingC is NaN when the bank has no rated capacity.
type BatteryReading struct {
	Voltage       float64 // Volts
	StateOfCharge float64 // Fraction 0..1
	Current       float64 // Amps, positive = discharging (battery 0 only)
	RemainingC    float64 // Coulombs
}

// Snapshot is the set of readings taken in a single reporting cycle. Any
// value may be NaN when the underlying sensor read was invalid; NaN values
// are omitted from telemetry rather than reported as zero.
type Snapshot struct {
	Batteries   []BatteryReading
	WaterLevel  float64 // Fraction 0..1
	Temperature float64 // Kelvin
	Humidity    float64 // Fraction 0..1
	GasSample   float64 // Normalized 0..1
	GasLeak     bool    // False when GasSample is NaN
}

// Valid reports whether a reading holds a usable value.
func Valid(v float64) bool {
	return !math.IsNaN(v)
}

// VoltageFromSample converts a normalized analog sample into the battery
// terminal voltage: sample -> pin volts via vref, undo the resistive divider
// with (R1+R2)/R2, then apply the per-channel calibration multiplier.
// Deterministic and linear in calibration; out-of-range samples pass through.
func VoltageFromSample(sample, vref, r1, r2, calibration float64) float64 {
	vpin := sample * vref
	return vpin * ((r1 + r2) / r2) * calibration
}

// CurrentFromSample converts a normalized shunt sample into amps via Ohm's
// law (V / R) followed by the shunt calibration multiplier.
//
// Sign convention: positive = discharging, negative = charging. A shunt
// wired backwards is corrected with a negative calibration.
func CurrentFromSample(sample, vref, shuntResistance, calibration float64) float64 {
	vshunt := sample * vref
	return vshunt / shuntResistance * calibration
}

// LevelFromSample converts a normalized tank sample into a level fraction,
// clamped to [0,1]. NaN passes through as NaN.
func LevelFromSample(sample float64) float64 {
	if math.IsNaN(sample) {
		return sample
	}
	return math.Min(math.Max(sample, 0), 1)
}

// CelsiusToKelvin converts a sensor temperature to the kelvin value SignalK
// expects on environment paths.
func CelsiusToKelvin(tempC float64) float64 {
	return tempC + 273.15
}

// Collector reads every configured channel off a board and assembles one
// Snapshot per reporting cycle.
type Collector struct {
	cfg   *config.Config
	board board.Board
}

// NewCollector creates a collector bound to a board and configuration.
func NewCollector(cfg *config.Config, b board.Board) *Collector {
	return &Collector{cfg: cfg, board: b}
}

// Collect takes one sample from every channel and derives the cycle's
// readings. All acquisition happens here, before anything is transmitted, so
// a snapshot never mixes stale and fresh values.
func (c *Collector) Collect() Snapshot {
	snap := Snapshot{
		Batteries:   make([]BatteryReading, len(c.cfg.Batteries)),
		WaterLevel:  math.NaN(),
		Temperature: math.NaN(),
		Humidity:    math.NaN(),
		GasSample:   math.NaN(),
	}

	div := c.cfg.Divider
	for i, bat := range c.cfg.Batteries {
		r := BatteryReading{
			Voltage:       math.NaN(),
			StateOfCharge: math.NaN(),
			Current:       math.NaN(),
			RemainingC:    math.NaN(),
		}

		s := c.board.ReadChannel(bat.Channel)
		if Valid(s) {
			r.Voltage = VoltageFromSample(s, div.VRef, div.R1, div.R2, bat.Calibration)
			r.StateOfCharge = metrics.StateOfCharge(r.Voltage, bat.MinVoltage, bat.MaxVoltage)
			if bat.CapacityAh > 0 {
				r.RemainingC = metrics.RemainingCapacity(r.StateOfCharge, bat.CapacityAh)
			}
		}

		// The shunt sits on battery 0 only.
		if i == 0 {
			ss := c.board.ReadChannel(c.cfg.Shunt.Channel)
			if Valid(ss) {
				r.Current = CurrentFromSample(ss, div.VRef, c.cfg.Shunt.Resistance, c.cfg.Shunt.Calibration)
			}
		}

		snap.Batteries[i] = r
	}

	snap.WaterLevel = LevelFromSample(c.board.ReadChannel(c.cfg.Tank.Channel))

	if tempC, humidity, ok := c.board.Environment(); ok {
		snap.Temperature = CelsiusToKelvin(tempC)
		snap.Humidity = humidity / 100.0
	}

	gs := c.board.ReadChannel(c.cfg.Gas.Channel)
	if Valid(gs) {
		snap.GasSample = gs
		snap.GasLeak = metrics.GasLeak(gs, c.cfg.Gas.Threshold)
	}

	return snap
}
