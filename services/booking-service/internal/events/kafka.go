package events

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/md-rashed-zaman/salonbook/libs/kafkax"
)

// KafkaPublisher writes events keyed by booking id, so one booking's events
// stay ordered within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	msg, err := kafkaMessage(ctx, ev)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka publish %s: %w", ev.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func kafkaMessage(ctx context.Context, ev Event) (kafka.Message, error) {
	value, err := ev.Marshal()
	if err != nil {
		return kafka.Message{}, err
	}
	meta := kafkax.EventMeta{EventID: ev.ID, EventType: string(ev.Type)}
	return kafka.Message{
		Key:     []byte(ev.Booking.ID),
		Value:   value,
		Headers: kafkax.InjectTraceHeaders(ctx, meta.Headers()),
		Time:    ev.OccurredAt,
	}, nil
}
