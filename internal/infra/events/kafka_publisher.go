// Package events publishes reservation lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
	"go.uber.org/zap"

	"hotel-booking-service/internal/domain"
)

// Header keys set on every message.
const (
	HeaderEventType = "event-type"
	HeaderSource    = "source"
)

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// Config holds the Kafka writer settings.
type Config struct {
	Brokers      []string
	Topic        string
	Source       string
	Compression  string // gzip, snappy, lz4, zstd
	MaxAttempts  int
	BatchTimeout time.Duration
	WriteTimeout time.Duration
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher implements domain.EventPublisher.
// Messages are keyed by room ID so every event of a room lands on the same partition in order.
type KafkaPublisher struct {
	writer       messageWriter
	source       string
	writeTimeout time.Duration
	logger       *zap.Logger

	mu     sync.RWMutex
	closed bool
}

// NewKafkaPublisher creates a publisher writing to cfg.Topic.
func NewKafkaPublisher(cfg Config, logger *zap.Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  compression(cfg.Compression),
		MaxAttempts:  cfg.MaxAttempts,
		BatchTimeout: cfg.BatchTimeout,
		Logger: kafka.LoggerFunc(func(msg string, args ...any) {
			logger.Debug(fmt.Sprintf(msg, args...), zap.String("component", "kafka"))
		}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			logger.Warn(fmt.Sprintf(msg, args...), zap.String("component", "kafka"))
		}),
	}

	return newKafkaPublisher(writer, cfg, logger), nil
}

func newKafkaPublisher(w messageWriter, cfg Config, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer:       w,
		source:       cfg.Source,
		writeTimeout: cfg.WriteTimeout,
		logger:       logger,
	}
}

// Publish writes one event. The caller treats failures as non-fatal.
func (p *KafkaPublisher) Publish(ctx context.Context, event domain.ReservationEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPublisherClosed
	}

	msg, err := p.buildMessage(event)
	if err != nil {
		return err
	}

	if p.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.writeTimeout)
		defer cancel()
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing %s event: %w", event.Type, err)
	}

	p.logger.Debug("reservation event published",
		zap.String("type", string(event.Type)),
		zap.String("reservation_id", event.Reservation.ID),
	)

	return nil
}

// Close flushes pending messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	return p.writer.Close()
}

func (p *KafkaPublisher) buildMessage(event domain.ReservationEvent) (kafka.Message, error) {
	if event.Reservation == nil {
		return kafka.Message{}, fmt.Errorf("event %s has no reservation", event.Type)
	}

	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encoding %s event: %w", event.Type, err)
	}

	headers := []kafka.Header{{Key: HeaderEventType, Value: []byte(event.Type)}}
	if p.source != "" {
		headers = append(headers, kafka.Header{Key: HeaderSource, Value: []byte(p.source)})
	}

	return kafka.Message{
		Key:     []byte(event.Reservation.RoomID),
		Value:   value,
		Time:    event.OccurredAt,
		Headers: headers,
	}, nil
}

func compression(name string) compress.Compression {
	switch strings.ToLower(name) {
	case "gzip":
		return compress.Gzip
	case "lz4":
		return compress.Lz4
	case "zstd":
		return compress.Zstd
	default:
		return compress.Snappy
	}
}
