package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// ErrNoBrokers is returned when no Kafka broker address is configured
var ErrNoBrokers = errors.New("no kafka brokers configured")

// KafkaPublisher appends events to a topic keyed by event type
type KafkaPublisher struct {
	writer *kafka.Writer
}

// splitBrokers parses a comma separated broker list
func splitBrokers(csv string) []string {
	brokers := []string{}
	for _, b := range strings.Split(csv, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// NewKafkaPublisher creates a writer for topic on the given brokers
func NewKafkaPublisher(brokersCSV, topic string) (*KafkaPublisher, error) {
	brokers := splitBrokers(brokersCSV)
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}
	// events go out one at a time from request handlers, so each write
	// flushes immediately instead of waiting for a batch to fill
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchSize:              1,
		BatchTimeout:           5 * time.Millisecond,
		WriteTimeout:           publishTimeout,
	}}, nil
}

// Publish writes the event as JSON
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := kafka.Message{Key: []byte(event.Type), Value: data, Time: time.Now().UTC()}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write %s to kafka: %w", event.Type, err)
	}
	return nil
}

// Close flushes and closes the writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
