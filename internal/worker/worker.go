package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/QuackbackIO/quackback-sub007/common/logger"
	"github.com/QuackbackIO/quackback-sub007/common/metrics"
	"github.com/QuackbackIO/quackback-sub007/internal/pipeline"
	"github.com/QuackbackIO/quackback-sub007/internal/queue"
)

type Config struct {
	MaxAttempts int
	Concurrency int
	// IsRetryable decides between requeue and DLQ. Defaults to pipeline.IsRetryable.
	IsRetryable func(error) bool
	// ErrorBackoff is the pause after a failed read.
	ErrorBackoff time.Duration
}

type Worker struct {
	consumer  Consumer
	processor Processor
	cfg       Config

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(consumer Consumer, processor Processor, cfg Config) *Worker {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.IsRetryable == nil {
		cfg.IsRetryable = pipeline.IsRetryable
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = time.Second
	}
	return &Worker{
		consumer:  consumer,
		processor: processor,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "intake.worker",
	})
	slog.InfoContext(ctx, "worker started",
		"concurrency", w.cfg.Concurrency,
		"max_attempts", w.cfg.MaxAttempts)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "worker stopping")
			return nil
		default:
			if err := w.processOneBatch(ctx); err != nil {
				slog.ErrorContext(ctx, "batch processing error", "error", err)
				select {
				case <-time.After(w.cfg.ErrorBackoff):
				case <-ctx.Done():
				case <-w.stopCh:
				}
			}
		}
	}
}

// Stop waits for the in-flight batch to finish.
func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *Worker) processOneBatch(ctx context.Context) error {
	messages, err := w.consumer.Read(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("reading from stream: %w", err)
	}

	g := new(errgroup.Group)
	g.SetLimit(w.cfg.Concurrency)
	for _, msg := range messages {
		g.Go(func() error {
			w.HandleMessage(ctx, msg)
			return nil
		})
	}
	return g.Wait()
}

// HandleMessage is shared with the reclaimer so reclaimed deliveries follow
// the same ack, requeue and DLQ rules.
func (w *Worker) HandleMessage(ctx context.Context, msg queue.Message) {
	msgID := msg.ID
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		MessageID: &msgID,
		RawItemID: &msg.RawItemID,
	})

	err := w.processMessageSafe(ctx, msg)
	if err == nil {
		return
	}

	if ctx.Err() != nil {
		// Left pending; the reclaimer redelivers it after shutdown.
		slog.WarnContext(ctx, "message interrupted by shutdown, leaving unacked", "error", err)
		return
	}

	slog.ErrorContext(ctx, "message processing failed",
		"error", err,
		"attempt", msg.Attempt)
	w.handleFailedMessage(ctx, msg, err)
}

func (w *Worker) processMessageSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in message processing", "panic", r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.ProcessMessage(ctx, msg)
}

// ProcessMessage runs the pipeline for msg and acks it unless processing failed.
func (w *Worker) ProcessMessage(ctx context.Context, msg queue.Message) error {
	sc := logger.StartSpanFromTraceID(ctx, msg.TraceID, "worker.process_message")
	defer sc.End()
	ctx = sc.Context()
	sc.SetAttributes(
		attribute.Int64("raw_item.id", msg.RawItemID),
		attribute.Int("message.attempt", msg.Attempt),
	)

	slog.InfoContext(ctx, "processing message", "attempt", msg.Attempt)

	res, err := w.processor.Process(ctx, msg.RawItemID, msg.IsRetry())
	switch {
	case errors.Is(err, pipeline.ErrNotClaimed):
		metrics.ExtractionJobs.WithLabelValues("skipped").Inc()
		w.ack(ctx, msg)
		return nil
	case err != nil:
		sc.RecordError(err)
		if ctx.Err() == nil {
			metrics.ExtractionJobs.WithLabelValues(string(pipeline.OutcomeFailed)).Inc()
		}
		return err
	}

	metrics.ExtractionJobs.WithLabelValues(string(res.Outcome)).Inc()
	w.ack(ctx, msg)
	return nil
}

func (w *Worker) ack(ctx context.Context, msg queue.Message) {
	if err := w.consumer.Ack(ctx, msg); err != nil {
		// The reclaimer redelivers it and the claim skips the finished item.
		slog.WarnContext(ctx, "failed to ACK message", "error", err)
	}
}

func (w *Worker) handleFailedMessage(ctx context.Context, msg queue.Message, err error) {
	retryable := w.cfg.IsRetryable(err)
	if !retryable || msg.Attempt >= w.cfg.MaxAttempts {
		slog.ErrorContext(ctx, "sending message to DLQ",
			"attempts", msg.Attempt,
			"retryable", retryable)
		if dlqErr := w.consumer.SendDLQ(ctx, msg, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr)
			return
		}
		metrics.ExtractionJobs.WithLabelValues("dead_lettered").Inc()
		return
	}

	slog.WarnContext(ctx, "requeuing failed message", "attempt", msg.Attempt)
	if requeueErr := w.consumer.Requeue(ctx, msg, err.Error()); requeueErr != nil {
		slog.ErrorContext(ctx, "failed to requeue message", "error", requeueErr)
		return
	}
	metrics.ExtractionJobs.WithLabelValues("requeued").Inc()
}
