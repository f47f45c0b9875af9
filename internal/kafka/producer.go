package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kalpovskii/taskboard/internal/app/models"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the producer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes task events as JSON, keyed by task id so every event
// of one task lands on the same partition.
type Producer struct {
	writer messageWriter
}

// Events are written one at a time on the request path, so a batch is
// flushed as soon as it holds a single message.
const (
	batchSize    = 1
	batchTimeout = 10 * time.Millisecond
)

func NewProducer(broker, topic string) *Producer {
	return &Producer{writer: newWriter(broker, topic)}
}

func newWriter(broker, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchSize:              batchSize,
		BatchTimeout:           batchTimeout,
		WriteTimeout:           5 * time.Second,
	}
}

// Publish writes the event. The write is not cut short when ctx is canceled;
// WriteTimeout bounds it instead.
func (p *Producer) Publish(ctx context.Context, event models.TaskEvent) error {
	ctx = context.WithoutCancel(ctx)

	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.TaskID.String()),
		Value: value,
		Time:  event.At,
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
