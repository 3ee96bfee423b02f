package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the monitor configuration.
type Config struct {
	Serial    SerialConfig    `yaml:"serial"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Divider   DividerConfig   `yaml:"divider"`
	Batteries []BatteryConfig `yaml:"batteries"`
	Shunt     ShuntConfig     `yaml:"shunt"`
	Tank      TankConfig      `yaml:"tank"`
	Gas       GasConfig       `yaml:"gas"`
	Monitor   MonitorConfig   `yaml:"monitor"`
}

// SerialConfig contains the telemetry serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// MQTTConfig contains the optional MQTT telemetry sink configuration.
// The MQTT sink is used instead of the serial port when Broker is set.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
}

// DividerConfig describes the resistive divider in front of every
// voltage-sensing analog input.
type DividerConfig struct {
	R1   float64 `yaml:"r1"`
	R2   float64 `yaml:"r2"`
	VRef float64 `yaml:"vref"`
}

// BatteryConfig describes one monitored battery bank.
type BatteryConfig struct {
	Channel     int     `yaml:"channel"`
	MinVoltage  float64 `yaml:"min_voltage"` // Volts at 0% state of charge
	MaxVoltage  float64 `yaml:"max_voltage"` // Volts at 100% state of charge
	Calibration float64 `yaml:"calibration"` // Multiplicative correction, 1.0 = none
	CapacityAh  float64 `yaml:"capacity_ah"` // Rated capacity in amp-hours, 0 = not reported
}

// ShuntConfig describes the current shunt on battery 0.
type ShuntConfig struct {
	Channel     int     `yaml:"channel"`
	Resistance  float64 `yaml:"resistance"` // Ohms
	Calibration float64 `yaml:"calibration"`
}

// TankConfig describes the fresh water tank level sensor.
type TankConfig struct {
	Channel       int     `yaml:"channel"`
	CriticalLevel float64 `yaml:"critical_level"` // Fraction 0..1
	WarningLevel  float64 `yaml:"warning_level"`  // Fraction 0..1
}

// GasConfig describes the gas sensor.
type GasConfig struct {
	Channel   int     `yaml:"channel"`
	Threshold float64 `yaml:"threshold"` // Normalized sample above this = leak
}

// MonitorConfig contains scheduler loop parameters.
type MonitorConfig struct {
	UpdateInterval time.Duration `yaml:"update_interval"` // Time between reporting cycles
	LongPress      time.Duration `yaml:"long_press"`      // Button hold time to toggle display mode
	SourceLabel    string        `yaml:"source_label"`    // SignalK source label
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "/dev/ttyUSB0",
			BaudRate: 115200,
		},
		MQTT: MQTTConfig{
			Topic: "signalk/delta",
		},
		Divider: DividerConfig{
			R1:   47000,
			R2:   10000,
			VRef: 5.0,
		},
		Batteries: []BatteryConfig{
			{Channel: 0, MinVoltage: 11.8, MaxVoltage: 12.6, Calibration: 1.0, CapacityAh: 100},
			{Channel: 1, MinVoltage: 11.8, MaxVoltage: 12.6, Calibration: 1.0},
		},
		Shunt: ShuntConfig{
			Channel:     2,
			Resistance:  0.00075, // 100A / 75mV shunt
			Calibration: 1.0,
		},
		Tank: TankConfig{
			Channel:       3,
			CriticalLevel: 0.3,
			WarningLevel:  0.7,
		},
		Gas: GasConfig{
			Channel:   4,
			Threshold: 0.5,
		},
		Monitor: MonitorConfig{
			UpdateInterval: 5 * time.Second,
			LongPress:      2 * time.Second,
			SourceLabel:    "arduino-mini",
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values. The result is not validated;
// callers must call Validate before using it.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the configuration for values that would make readings
// meaningless. A state of charge derived from min_voltage >= max_voltage
// divides by zero (or inverts), so misconfiguration is fatal at load time
// rather than surfacing as garbage telemetry at read time.
func (c *Config) Validate() error {
	if len(c.Batteries) == 0 {
		return fmt.Errorf("at least one battery channel must be configured")
	}
	for i, b := range c.Batteries {
		if b.MinVoltage >= b.MaxVoltage {
			return fmt.Errorf("battery %d: min_voltage (%g) must be below max_voltage (%g)", i, b.MinVoltage, b.MaxVoltage)
		}
		if b.Calibration == 0 {
			return fmt.Errorf("battery %d: calibration must be non-zero", i)
		}
		if b.CapacityAh < 0 {
			return fmt.Errorf("battery %d: capacity_ah must not be negative, got %g", i, b.CapacityAh)
		}
	}
	if c.Shunt.Resistance <= 0 {
		return fmt.Errorf("shunt resistance must be positive, got %g", c.Shunt.Resistance)
	}
	if c.Divider.R1 < 0 || c.Divider.R2 <= 0 {
		return fmt.Errorf("divider resistors must be positive (r1=%g, r2=%g)", c.Divider.R1, c.Divider.R2)
	}
	if c.Divider.VRef <= 0 {
		return fmt.Errorf("divider vref must be positive, got %g", c.Divider.VRef)
	}
	if c.Tank.CriticalLevel < 0 || c.Tank.CriticalLevel > 1 {
		return fmt.Errorf("tank critical_level must be within [0,1], got %g", c.Tank.CriticalLevel)
	}
	if c.Tank.WarningLevel < c.Tank.CriticalLevel || c.Tank.WarningLevel > 1 {
		return fmt.Errorf("tank warning_level must be within [critical_level,1], got %g", c.Tank.WarningLevel)
	}
	if c.Gas.Threshold < 0 || c.Gas.Threshold > 1 {
		return fmt.Errorf("gas threshold must be within [0,1], got %g", c.Gas.Threshold)
	}
	if c.Monitor.UpdateInterval <= 0 {
		return fmt.Errorf("update_interval must be positive, got %v", c.Monitor.UpdateInterval)
	}
	if c.Monitor.LongPress <= 0 {
		return fmt.Errorf("long_press must be positive, got %v", c.Monitor.LongPress)
	}
	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.MQTT.Topic == "" {
		c.MQTT.Topic = def.MQTT.Topic
	}

	if c.Divider.R1 == 0 {
		c.Divider.R1 = def.Divider.R1
	}
	if c.Divider.R2 == 0 {
		c.Divider.R2 = def.Divider.R2
	}
	if c.Divider.VRef == 0 {
		c.Divider.VRef = def.Divider.VRef
	}

	if len(c.Batteries) == 0 {
		c.Batteries = def.Batteries
	}
	for i := range c.Batteries {
		if c.Batteries[i].Calibration == 0 {
			c.Batteries[i].Calibration = 1.0
		}
	}

	if c.Shunt.Resistance == 0 {
		c.Shunt.Resistance = def.Shunt.Resistance
	}
	if c.Shunt.Calibration == 0 {
		c.Shunt.Calibration = 1.0
	}

	if c.Tank.CriticalLevel == 0 {
		c.Tank.CriticalLevel = def.Tank.CriticalLevel
	}
	if c.Tank.WarningLevel == 0 {
		c.Tank.WarningLevel = def.Tank.WarningLevel
	}

	if c.Gas.Threshold == 0 {
		c.Gas.Threshold = def.Gas.Threshold
	}

	if c.Monitor.UpdateInterval == 0 {
		c.Monitor.UpdateInterval = def.Monitor.UpdateInterval
	}
	if c.Monitor.LongPress == 0 {
		c.Monitor.LongPress = def.Monitor.LongPress
	}
	if c.Monitor.SourceLabel == "" {
		c.Monitor.SourceLabel = def.Monitor.SourceLabel
	}
}
