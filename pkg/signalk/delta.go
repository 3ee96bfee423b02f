package signalk

import (
	"encoding/json"
	"fmt"

	"boatmon/pkg/sample"
)

// Source identifies the instrument in every update.
type Source struct {
	Label string `json:"label"`
	Type  string `json:"type"`
}

// PathValue is one path/value pair inside an update. Values are native JSON
// types: floats for readings, booleans for flags.
type PathValue struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// Update carries the readings of one reporting cycle. Timestamp is
// milliseconds since system start (monotonic, not wall clock).
type Update struct {
	Source    Source      `json:"source"`
	Timestamp uint32      `json:"timestamp"`
	Values    []PathValue `json:"values"`
}

// Delta is one SignalK delta document.
type Delta struct {
	Updates []Update `json:"updates"`
}

// Builder assembles one delta document per reporting cycle. It owns the
// in-progress document; nothing else touches it between Build and
// serialization.
type Builder struct {
	source Source
}

// NewBuilder creates a builder emitting the given source label.
func NewBuilder(label string) *Builder {
	return &Builder{source: Source{Label: label, Type: "sensor"}}
}

// Build converts a snapshot into a delta document. Metrics whose reading was
// invalid are omitted from the value list; the reporter never emits null or
// zero placeholders for unavailable data.
func (b *Builder) Build(snap sample.Snapshot, timestampMs uint32) Delta {
	values := make([]PathValue, 0, 4*len(snap.Batteries)+4)

	for i, bat := range snap.Batteries {
		prefix := fmt.Sprintf("electrical.batteries.%d", i)
		if sample.Valid(bat.Voltage) {
			values = append(values, PathValue{Path: prefix + ".voltage", Value: bat.Voltage})
		}
		if sample.Valid(bat.StateOfCharge) {
			values = append(values, PathValue{Path: prefix + ".stateOfCharge", Value: bat.StateOfCharge})
		}
		if sample.Valid(bat.Current) {
			values = append(values, PathValue{Path: prefix + ".current", Value: bat.Current})
		}
		if sample.Valid(bat.RemainingC) {
			values = append(values, PathValue{Path: prefix + ".capacity.remaining", Value: bat.RemainingC})
		}
	}

	if sample.Valid(snap.WaterLevel) {
		values = append(values, PathValue{Path: "tanks.freshWater.0.currentLevel", Value: snap.WaterLevel})
	}
	if sample.Valid(snap.Temperature) {
		values = append(values, PathValue{Path: "environment.inside.temperature", Value: snap.Temperature})
	}
	if sample.Valid(snap.Humidity) {
		values = append(values, PathValue{Path: "environment.inside.relativeHumidity", Value: snap.Humidity})
	}
	if sample.Valid(snap.GasSample) {
		values = append(values, PathValue{Path: "safety.gasLeak", Value: snap.GasLeak})
	}

	return Delta{Updates: []Update{{
		Source:    b.source,
		Timestamp: timestampMs,
		Values:    values,
	}}}
}

// Encode serializes a delta as one newline-terminated JSON document, the
// framing the serial consumer splits the stream on.
func Encode(d Delta) ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal delta: %w", err)
	}
	return append(data, '\n'), nil
}
