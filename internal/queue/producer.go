package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

type ExtractionMessage struct {
	RawItemID  int64
	SourceType string
	TraceID    *string
	Attempt    int
}

// Producer submits raw items for extraction. Enqueue returns the stream message ID.
type Producer interface {
	Enqueue(ctx context.Context, msg ExtractionMessage) (string, error)
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Enqueue(ctx context.Context, msg ExtractionMessage) (string, error) {
	attempt := msg.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	fields := map[string]any{
		"task_type":   string(TaskTypeExtraction),
		"raw_item_id": msg.RawItemID,
		"attempt":     attempt,
	}
	if msg.SourceType != "" {
		fields["source_type"] = msg.SourceType
	}
	if msg.TraceID != nil && *msg.TraceID != "" {
		fields["trace_id"] = *msg.TraceID
	}

	messageID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Result()
	if err != nil {
		return "", fmt.Errorf("enqueue raw item: %w", err)
	}

	p.logger.InfoContext(ctx, "enqueued raw item for extraction",
		"raw_item_id", msg.RawItemID,
		"message_id", messageID,
		"attempt", attempt)
	return messageID, nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
