package signalk

import (
	"fmt"
	"io"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.bug.st/serial"
)

// Sink is the transmit-only byte sink delta documents are written to. There
// is no acknowledgment channel; delivery is best effort and a failed send is
// simply retried by the next cycle's document.
type Sink interface {
	Send(payload []byte) error
	Close() error
}

// Ensure implementations satisfy Sink.
var (
	_ Sink = (*SerialSink)(nil)
	_ Sink = (*MQTTSink)(nil)
	_ Sink = (*WriterSink)(nil)
)

// SerialSink writes delta documents to a serial port.
type SerialSink struct {
	port     string
	baudRate int

	mu   sync.Mutex
	conn serial.Port
}

// NewSerialSink opens the serial port for transmission.
func NewSerialSink(port string, baudRate int) (*SerialSink, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
	}

	conn, err := serial.Open(port, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", port, err)
	}

	return &SerialSink{
		port:     port,
		baudRate: baudRate,
		conn:     conn,
	}, nil
}

// Send writes one document to the port.
func (s *SerialSink) Send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return fmt.Errorf("serial port %s is closed", s.port)
	}

	if _, err := s.conn.Write(payload); err != nil {
		return fmt.Errorf("failed to write to serial port %s: %w", s.port, err)
	}
	return nil
}

// Close closes the serial port.
func (s *SerialSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// MQTTSink publishes delta documents to a broker topic, for aggregators fed
// over the network instead of a wire. Publishes are QoS 0 fire-and-forget to
// match the serial link's delivery model.
type MQTTSink struct {
	client mqtt.Client
	topic  string
}

// NewMQTTSink connects to the broker and returns a sink publishing to topic.
func NewMQTTSink(broker, clientID, topic string) (*MQTTSink, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", broker, err)
	}

	return &MQTTSink{client: client, topic: topic}, nil
}

// Send publishes one document.
func (s *MQTTSink) Send(payload []byte) error {
	token := s.client.Publish(s.topic, 0, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", s.topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (s *MQTTSink) Close() error {
	s.client.Disconnect(250)
	return nil
}

// WriterSink writes documents to any io.Writer. Used for stdout runs and
// tests.
type WriterSink struct {
	w io.Writer
}

// NewWriterSink wraps a writer.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Send writes one document.
func (s *WriterSink) Send(payload []byte) error {
	_, err := s.w.Write(payload)
	return err
}

// Close is a no-op.
func (s *WriterSink) Close() error { return nil }
