package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"boatmon/pkg/board"
	"boatmon/pkg/config"
	"boatmon/pkg/monitor"
	"boatmon/pkg/signalk"
)

func main() {
	var (
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		portFlag   = flag.String("p", "", "Serial port override (e.g., /dev/ttyUSB0)")
		mockFlag   = flag.Bool("mock", false, "Use a mocked board instead of real hardware")
		stdoutFlag = flag.Bool("stdout", false, "Write telemetry to stdout instead of the configured sink")
	)
	flag.Parse()

	// Optional .env for deployment overrides; absence is fine.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if port := os.Getenv("BOATMON_SERIAL_PORT"); port != "" {
		cfg.Serial.Port = port
	}
	if broker := os.Getenv("BOATMON_MQTT_BROKER"); broker != "" {
		cfg.MQTT.Broker = broker
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	b := newBoard(*mockFlag)
	defer b.Close()

	sink, err := newSink(cfg, *stdoutFlag)
	if err != nil {
		log.Fatalf("Failed to open telemetry sink: %v", err)
	}
	defer sink.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := monitor.New(cfg, b, sink).Run(ctx); err != nil {
		log.Fatalf("Monitor failed: %v", err)
	}
}

// newBoard selects the hardware surface. The mock board reports healthy
// fixed readings, useful for exercising the telemetry pipeline off the boat.
func newBoard(mock bool) board.Board {
	if !mock {
		log.Fatalf("No hardware board driver built in; run with -mock")
	}

	m := board.NewMock()
	m.SetSample(0, 0.43) // ~12.3V behind a 47k/10k divider at 5V vref
	m.SetSample(1, 0.43)
	m.SetSample(2, 0.0)  // No shunt current
	m.SetSample(3, 0.65) // Tank at 65%
	m.SetSample(4, 0.1)  // Gas well below threshold
	m.SetEnvironment(25.0, 55.0)
	return m
}

// newSink picks the telemetry sink: stdout when forced, MQTT when a broker
// is configured, the serial port otherwise.
func newSink(cfg *config.Config, stdout bool) (signalk.Sink, error) {
	if stdout {
		return signalk.NewWriterSink(os.Stdout), nil
	}
	if cfg.MQTT.Broker != "" {
		clientID := cfg.MQTT.ClientID
		if clientID == "" {
			clientID = "boatmon"
		}
		log.Printf("Publishing telemetry to %s (%s)", cfg.MQTT.Broker, cfg.MQTT.Topic)
		return signalk.NewMQTTSink(cfg.MQTT.Broker, clientID, cfg.MQTT.Topic)
	}
	log.Printf("Writing telemetry to %s @ %d baud", cfg.Serial.Port, cfg.Serial.BaudRate)
	return signalk.NewSerialSink(cfg.Serial.Port, cfg.Serial.BaudRate)
}
