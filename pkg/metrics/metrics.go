package metrics

// StateOfCharge estimates the fractional charge of a battery by linear
// interpolation between its configured empty and full voltages, clamped to
// [0,1]. minV < maxV is enforced at configuration load time, not here.
func StateOfCharge(voltage, minV, maxV float64) float64 {
	soc := (voltage - minV) / (maxV - minV)
	if soc < 0 {
		return 0
	}
	if soc > 1 {
		return 1
	}
	return soc
}

// RemainingCapacity converts a state of charge and a rated capacity in
// amp-hours into the remaining charge in coulombs (1 Ah = 3600 C).
func RemainingCapacity(soc, capacityAh float64) float64 {
	return soc * capacityAh * 3600
}

// GasLeak reports whether a normalized gas sensor sample exceeds the
// configured leak threshold.
func GasLeak(sample, threshold float64) bool {
	return sample > threshold
}

// WaterCritical reports whether a tank level fraction is below the
// configured critical threshold.
func WaterCritical(level, threshold float64) bool {
	return level < threshold
}
