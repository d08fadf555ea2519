package worker

import (
	"context"

	"github.com/QuackbackIO/quackback-sub007/internal/pipeline"
	"github.com/QuackbackIO/quackback-sub007/internal/queue"
)

// Consumer abstracts the message queue for testability.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	Requeue(ctx context.Context, msg queue.Message, errMsg string) error
	SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error
}

// Processor runs one raw item through the extraction pipeline.
type Processor interface {
	Process(ctx context.Context, rawItemID int64, retry bool) (*pipeline.Result, error)
}

// MessageHandler processes one message end to end, including ack or retry.
type MessageHandler func(ctx context.Context, msg queue.Message)
