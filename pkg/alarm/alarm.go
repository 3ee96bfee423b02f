package alarm

import (
	"boatmon/pkg/config"
	"boatmon/pkg/metrics"
	"boatmon/pkg/sample"
)

// Level is the aggregate system alarm level derived each cycle.
type Level int

const (
	LevelNormal Level = iota
	LevelWarning
	LevelCritical
)

// String returns a human-readable level name for the status log line.
func (l Level) String() string {
	switch l {
	case LevelNormal:
		return "normal"
	case LevelWarning:
		return "warning"
	case LevelCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// DisplayMode selects which subsystem the indicators track.
type DisplayMode int

const (
	ModeBatteries DisplayMode = iota
	ModeWater
)

func (m DisplayMode) String() string {
	if m == ModeWater {
		return "water"
	}
	return "batteries"
}

// Cause identifies which condition produced a Critical level. Gas leaks are
// the non-silenceable class: the reset gesture never mutes them.
type Cause int

const (
	CauseNone Cause = iota
	CauseBatteryLow
	CauseWaterLow
	CauseGasLeak
)

// Outputs is the state of the three mutually-exclusive indicator lines and
// the buzzer for one loop iteration.
type Outputs struct {
	Green  bool
	Yellow bool
	Red    bool
	Buzzer bool
}

// blinkPeriodMs is the full on/off period of the blinking critical
// indicator in water mode.
const blinkPeriodMs = 500

// Machine aggregates per-channel status into one alarm level and runs the
// push-button protocol. It carries the only mutable state in the process
// besides the scheduler's last-cycle timestamp; the scheduler loop is its
// sole caller, so no locking is needed.
type Machine struct {
	cfg         *config.Config
	longPressMs uint32

	mode        DisplayMode
	level       Level
	cause       Cause
	alarmActive bool

	// Button bookkeeping. The mode toggle is level-triggered: it fires
	// exactly once when the held duration crosses the threshold, before
	// release.
	pressed      bool
	pressStartMs uint32
	toggled      bool
}

// NewMachine creates a machine in Batteries mode with no active alarm.
func NewMachine(cfg *config.Config) *Machine {
	return &Machine{
		cfg:         cfg,
		longPressMs: uint32(cfg.Monitor.LongPress.Milliseconds()),
	}
}

// Mode returns the current display mode.
func (m *Machine) Mode() DisplayMode { return m.mode }

// Level returns the level derived by the last Evaluate.
func (m *Machine) Level() Level { return m.level }

// AlarmActive reports whether a silenceable alarm is currently sounding.
func (m *Machine) AlarmActive() bool { return m.alarmActive }

// Evaluate derives the alarm level from a snapshot and arms the audible
// alarm on the transition into Critical. Called once per reporting cycle.
func (m *Machine) Evaluate(snap sample.Snapshot) Level {
	level, cause := m.derive(snap)
	if level == LevelCritical && m.level != LevelCritical {
		m.alarmActive = true
	}
	m.level = level
	m.cause = cause
	return level
}

// derive maps the snapshot to a level and cause. A gas leak overrides all
// else; a battery below its configured minimum is critical in either display
// mode. The remaining tiers depend on what the display tracks.
func (m *Machine) derive(snap sample.Snapshot) (Level, Cause) {
	if snap.GasLeak {
		return LevelCritical, CauseGasLeak
	}

	for i, bat := range m.cfg.Batteries {
		if i >= len(snap.Batteries) {
			break
		}
		v := snap.Batteries[i].Voltage
		if sample.Valid(v) && v < bat.MinVoltage {
			return LevelCritical, CauseBatteryLow
		}
	}

	if m.mode == ModeWater {
		level := snap.WaterLevel
		if sample.Valid(level) {
			if metrics.WaterCritical(level, m.cfg.Tank.CriticalLevel) {
				return LevelCritical, CauseWaterLow
			}
			if level <= m.cfg.Tank.WarningLevel {
				return LevelWarning, CauseNone
			}
		}
		return LevelNormal, CauseNone
	}

	for _, bat := range snap.Batteries {
		if sample.Valid(bat.Current) && bat.Current > 0 {
			return LevelWarning, CauseNone
		}
	}
	return LevelNormal, CauseNone
}

// Outputs maps the current level to indicator and buzzer states. The water
// critical tier blinks the red indicator instead of holding it solid; the
// buzzer sounds only while Critical, and only for the non-silenceable class
// or a silenceable alarm the operator has not yet reset.
func (m *Machine) Outputs(nowMs uint32) Outputs {
	var o Outputs
	switch m.level {
	case LevelWarning:
		o.Yellow = true
	case LevelCritical:
		if m.cause == CauseWaterLow {
			o.Red = (nowMs/blinkPeriodMs)%2 == 0
		} else {
			o.Red = true
		}
		o.Buzzer = m.cause == CauseGasLeak || m.alarmActive
	default:
		o.Green = true
	}
	return o
}

// UpdateButton feeds the machine one debounced button poll. Press-and-hold
// past the long-press threshold toggles the display mode exactly once; a
// release before the threshold is the alarm reset gesture. A release with no
// press in progress does nothing.
func (m *Machine) UpdateButton(pressed bool, nowMs uint32) {
	switch {
	case pressed && !m.pressed:
		m.pressed = true
		m.pressStartMs = nowMs
		m.toggled = false

	case pressed && m.pressed:
		// uint32 subtraction stays correct across timer wraparound.
		if !m.toggled && nowMs-m.pressStartMs >= m.longPressMs {
			if m.mode == ModeBatteries {
				m.mode = ModeWater
			} else {
				m.mode = ModeBatteries
			}
			m.toggled = true
		}

	case !pressed && m.pressed:
		if !m.toggled && nowMs-m.pressStartMs < m.longPressMs {
			m.alarmActive = false
		}
		m.pressed = false
	}
}
