package feed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/umairaslam2/Kits-Backend/pkg/models"
)

// Journal produces every tick's delta set to a Kafka topic so downstream
// systems (analytics, archival) can follow the feed without holding a
// websocket connection. It is a tick sink; a write error is logged and the
// tick loop moves on.
type Journal struct {
	writer KafkaWriter
	logger *zap.Logger
}

func NewJournal(writer KafkaWriter, logger *zap.Logger) *Journal {
	return &Journal{writer: writer, logger: logger}
}

func (j *Journal) PublishDeltas(ctx context.Context, deltas []models.Quote) {
	msgs := make([]kafka.Message, 0, len(deltas))
	for _, q := range deltas {
		payload, err := json.Marshal(q)
		if err != nil {
			j.logger.Error("Quote marshal error", zap.String("symbol", q.Symbol), zap.Error(err))
			continue
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(q.Symbol), // Key ensures partition ordering per symbol
			Value: payload,
		})
	}
	if len(msgs) == 0 {
		return
	}

	if err := j.writer.WriteMessages(ctx, msgs...); err != nil {
		j.logger.Error("Kafka Write Error", zap.Error(err))
	}
}

func (j *Journal) Close() error {
	return j.writer.Close()
}

// NewWriter builds the production Kafka writer for the tick journal.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
		// Batches reduce network IO; the journal is fire-and-forget.
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
	}
}
