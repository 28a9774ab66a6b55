// Package kafka publishes outbound notifications for the chat transport to
// consume and deliver.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Alhassan777/Quraan-Wird-Bot/internal/config"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/entity"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/service"
)

// Producer publishes notification events to the outbound topic. Messages are
// keyed by chat id so per-recipient ordering is preserved.
type Producer struct {
	writer *kafka.Writer
	logger *zap.SugaredLogger
}

// NewProducer creates a new Kafka notification producer.
func NewProducer(cfg *config.KafkaConfig, logger *zap.SugaredLogger) *Producer {
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    10,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: writeTimeout,
		RequiredAcks: kafka.RequireOne,
	}

	return &Producer{
		writer: writer,
		logger: logger,
	}
}

var _ service.NotificationDispatcher = (*Producer)(nil)

// Send publishes one notification event.
func (p *Producer) Send(ctx context.Context, chatID int64, text string, kind entity.NotificationKind) error {
	event := entity.Notification{
		EventID:   uuid.New().String(),
		ChatID:    chatID,
		Text:      text,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(strconv.FormatInt(chatID, 10)),
		Value: data,
		Time:  event.CreatedAt,
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	p.logger.Debugw("notification published", "event_id", event.EventID, "chat_id", chatID, "kind", kind)
	return nil
}

// Close closes the Kafka producer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
