package board

// Board defines the hardware surface the monitor polls and drives. Analog
// conversion, the environment sensor driver, and the GPIO lines live behind
// this interface so the monitor core stays host-testable.
type Board interface {
	// ReadChannel returns the normalized sample in [0,1] for an analog
	// channel. An invalid conversion is reported as NaN.
	ReadChannel(channel int) float64

	// Environment returns the cabin temperature in degrees Celsius and the
	// relative humidity in percent. ok is false when the sensor read failed;
	// the values are meaningless in that case.
	Environment() (tempC, humidity float64, ok bool)

	// SetLEDs drives the three status indicator lines. Callers keep them
	// mutually exclusive.
	SetLEDs(green, yellow, red bool)

	// SetBuzzer switches the alarm tone on or off.
	SetBuzzer(on bool)

	// ButtonPressed reports the debounced logical state of the push button
	// (true = pressed; the line itself is active-low with a pull-up).
	ButtonPressed() bool

	Close() error
}

// Ensure Mock implements Board.
var _ Board = (*Mock)(nil)
