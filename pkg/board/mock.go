package board

import (
	"math"
	"sync"
)

// Mock simulates the instrument board for tests and development runs.
type Mock struct {
	mu sync.RWMutex

	samples  map[int]float64
	tempC    float64
	humidity float64
	envOK    bool
	pressed  bool

	// Last written output states.
	Green, Yellow, Red bool
	Buzzer             bool

	closed bool
}

// NewMock creates a mock board. Channels without a configured sample read as
// NaN, same as a disconnected sensor.
func NewMock() *Mock {
	return &Mock{
		samples: make(map[int]float64),
		envOK:   false,
	}
}

// SetSample sets the normalized sample reported for a channel.
func (m *Mock) SetSample(channel int, sample float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples[channel] = sample
}

// ClearSample makes a channel read as invalid (NaN).
func (m *Mock) ClearSample(channel int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.samples, channel)
}

// SetEnvironment sets the simulated temperature/humidity reading.
func (m *Mock) SetEnvironment(tempC, humidity float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tempC = tempC
	m.humidity = humidity
	m.envOK = true
}

// FailEnvironment makes subsequent environment reads report a sensor failure.
func (m *Mock) FailEnvironment() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.envOK = false
}

// SetPressed sets the simulated button state.
func (m *Mock) SetPressed(pressed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pressed = pressed
}

// ReadChannel returns the configured sample for the channel, or NaN.
func (m *Mock) ReadChannel(channel int) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.samples[channel]; ok {
		return s
	}
	return math.NaN()
}

// Environment returns the simulated temperature/humidity reading.
func (m *Mock) Environment() (float64, float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.envOK {
		return 0, 0, false
	}
	return m.tempC, m.humidity, true
}

// SetLEDs records the indicator states.
func (m *Mock) SetLEDs(green, yellow, red bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Green, m.Yellow, m.Red = green, yellow, red
}

// SetBuzzer records the buzzer state.
func (m *Mock) SetBuzzer(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Buzzer = on
}

// ButtonPressed returns the simulated button state.
func (m *Mock) ButtonPressed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pressed
}

// Outputs returns the last written LED and buzzer states.
func (m *Mock) Outputs() (green, yellow, red, buzzer bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Green, m.Yellow, m.Red, m.Buzzer
}

// Close marks the board as closed.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
