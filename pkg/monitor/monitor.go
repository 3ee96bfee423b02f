package monitor

import (
	"context"
	"log"
	"time"

	"boatmon/pkg/alarm"
	"boatmon/pkg/board"
	"boatmon/pkg/config"
	"boatmon/pkg/sample"
	"boatmon/pkg/signalk"
)

// Clock returns monotonic milliseconds since system start. The value wraps
// after ~49.7 days; all elapsed-time checks use uint32 subtraction, which
// stays correct across the wrap.
type Clock func() uint32

// defaultClock measures milliseconds since the monitor was created.
func defaultClock() Clock {
	start := time.Now()
	return func() uint32 {
		return uint32(time.Since(start).Milliseconds())
	}
}

// pollInterval is how often the loop polls the button and refreshes the
// indicator outputs between reporting cycles.
const pollInterval = 10 * time.Millisecond

// Monitor is the top-level polling loop: it triggers a reporting cycle every
// update interval and processes the button on every iteration. Everything
// runs on a single goroutine, so at most one cycle is ever in flight.
type Monitor struct {
	cfg       *config.Config
	board     board.Board
	collector *sample.Collector
	machine   *alarm.Machine
	builder   *signalk.Builder
	sink      signalk.Sink

	clock      Clock
	intervalMs uint32
	lastUpdate uint32
}

// New wires a monitor from its configuration, board, and telemetry sink.
func New(cfg *config.Config, b board.Board, sink signalk.Sink) *Monitor {
	return &Monitor{
		cfg:        cfg,
		board:      b,
		collector:  sample.NewCollector(cfg, b),
		machine:    alarm.NewMachine(cfg),
		builder:    signalk.NewBuilder(cfg.Monitor.SourceLabel),
		sink:       sink,
		clock:      defaultClock(),
		intervalMs: uint32(cfg.Monitor.UpdateInterval.Milliseconds()),
	}
}

// Run executes the polling loop until the context is cancelled. The first
// reporting cycle runs immediately; subsequent cycles follow the configured
// interval. On shutdown all outputs are driven low.
func (m *Monitor) Run(ctx context.Context) error {
	// Backdate the last cycle so the loop's own elapsed check fires the
	// first cycle on the first iteration.
	m.lastUpdate = m.clock() - m.intervalMs

	log.Printf("monitor started: %d battery channel(s), update interval %v", len(m.cfg.Batteries), m.cfg.Monitor.UpdateInterval)

	for {
		select {
		case <-ctx.Done():
			m.board.SetLEDs(false, false, false)
			m.board.SetBuzzer(false)
			log.Printf("monitor stopped")
			return nil
		default:
		}

		m.step(m.clock())

		select {
		case <-ctx.Done():
		case <-time.After(pollInterval):
		}
	}
}

// step is one loop iteration: process the button, run a cycle when due, and
// refresh the outputs. Outputs are refreshed every iteration so the water
// critical blink keeps its period between cycles.
func (m *Monitor) step(now uint32) {
	m.machine.UpdateButton(m.board.ButtonPressed(), now)

	if now-m.lastUpdate >= m.intervalMs {
		m.runCycle(now)
		m.lastUpdate = now
	}

	out := m.machine.Outputs(now)
	m.board.SetLEDs(out.Green, out.Yellow, out.Red)
	m.board.SetBuzzer(out.Buzzer)
}

// runCycle performs one sample -> derive -> report pass. All samples are
// acquired before anything is transmitted so one document never mixes stale
// and fresh readings. A failed transmission is dropped; the next cycle sends
// a fresh document anyway.
func (m *Monitor) runCycle(now uint32) {
	snap := m.collector.Collect()
	level := m.machine.Evaluate(snap)

	delta := m.builder.Build(snap, now)
	payload, err := signalk.Encode(delta)
	if err != nil {
		log.Printf("failed to encode telemetry: %v", err)
		return
	}

	if err := m.sink.Send(payload); err != nil {
		log.Printf("failed to send telemetry: %v", err)
	}

	log.Printf("cycle at %dms: mode=%s level=%s values=%d", now, m.machine.Mode(), level, len(delta.Updates[0].Values))
}
