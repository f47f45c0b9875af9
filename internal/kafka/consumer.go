package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/kalpovskii/taskboard/internal/app/models"
	"github.com/segmentio/kafka-go"
)

const retryDelay = time.Second

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// EventLogger reads task events and writes one log record per event.
type EventLogger struct {
	reader messageReader
	log    *slog.Logger
}

func NewEventLogger(broker, topic, groupID string, log *slog.Logger) *EventLogger {
	return &EventLogger{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: []string{broker},
			Topic:   topic,
			GroupID: groupID,
		}),
		log: log,
	}
}

// Run consumes until ctx is cancelled.
func (l *EventLogger) Run(ctx context.Context) error {
	for {
		m, err := l.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			l.log.Error("error reading message", slog.Any("error", err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(retryDelay):
			}
			continue
		}
		l.handle(ctx, m)
	}
}

func (l *EventLogger) handle(ctx context.Context, m kafka.Message) {
	var event models.TaskEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		l.log.WarnContext(ctx, "undecodable task event",
			slog.Int64("offset", m.Offset),
			slog.String("value", string(m.Value)),
		)
		return
	}

	l.log.InfoContext(ctx, "task event",
		slog.String("action", string(event.Action)),
		slog.String("task_id", event.TaskID.String()),
		slog.String("title", event.Title),
		slog.Time("at", event.At),
		slog.Int("partition", m.Partition),
		slog.Int64("offset", m.Offset),
	)
}

func (l *EventLogger) Close() error {
	return l.reader.Close()
}
