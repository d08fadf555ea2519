package worker_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"github.com/QuackbackIO/quackback-sub007/internal/queue"
	"github.com/QuackbackIO/quackback-sub007/internal/worker"
)

type fakeClaimer struct {
	mu        sync.Mutex
	pending   []redis.XPendingExt
	messages  map[string]redis.XMessage
	pendErr   error
	claimArgs []*redis.XClaimArgs
}

func (f *fakeClaimer) XPendingExt(ctx context.Context, _ *redis.XPendingExtArgs) *redis.XPendingExtCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewXPendingExtCmd(ctx)
	if f.pendErr != nil {
		cmd.SetErr(f.pendErr)
		return cmd
	}
	cmd.SetVal(f.pending)
	f.pending = nil
	return cmd
}

func (f *fakeClaimer) XClaim(ctx context.Context, a *redis.XClaimArgs) *redis.XMessageSliceCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.claimArgs = append(f.claimArgs, a)
	cmd := redis.NewXMessageSliceCmd(ctx)
	var out []redis.XMessage
	for _, id := range a.Messages {
		if m, ok := f.messages[id]; ok {
			out = append(out, m)
			delete(f.messages, id)
		}
	}
	cmd.SetVal(out)
	return cmd
}

var _ = Describe("RedisReclaimer", func() {
	var (
		claimer  *fakeClaimer
		consumer *fakeConsumer
		mu       sync.Mutex
		handled  []queue.Message
		r        *worker.RedisReclaimer
	)

	handler := func(_ context.Context, msg queue.Message) {
		mu.Lock()
		defer mu.Unlock()
		handled = append(handled, msg)
	}
	handledMessages := func() []queue.Message {
		mu.Lock()
		defer mu.Unlock()
		return append([]queue.Message(nil), handled...)
	}

	BeforeEach(func() {
		handled = nil
		claimer = &fakeClaimer{messages: map[string]redis.XMessage{}}
		consumer = &fakeConsumer{}
		r = worker.NewRedisReclaimer(claimer, worker.RedisReclaimerConfig{
			Stream:    "feedback_extraction",
			Group:     "extraction_workers",
			Consumer:  "worker-b",
			MinIdle:   time.Minute,
			Interval:  5 * time.Millisecond,
			BatchSize: 10,
		}, consumer, handler)
	})

	run := func() {
		ctx, cancel := context.WithCancel(context.Background())
		DeferCleanup(cancel)
		go r.Run(ctx)
		DeferCleanup(r.Stop)
	}

	It("claims stale messages and hands them over as retries", func() {
		claimer.pending = []redis.XPendingExt{{ID: "1-0", Consumer: "worker-a", Idle: 2 * time.Minute, RetryCount: 1}}
		claimer.messages["1-0"] = redis.XMessage{ID: "1-0", Values: map[string]any{"raw_item_id": "42", "attempt": "1"}}

		run()

		Eventually(handledMessages).Should(HaveLen(1))
		msg := handledMessages()[0]
		Expect(msg.RawItemID).To(Equal(int64(42)))
		Expect(msg.Attempt).To(Equal(2))
		Expect(msg.IsRetry()).To(BeTrue())
		Expect(claimer.claimArgs[0].Consumer).To(Equal("worker-b"))
		Expect(claimer.claimArgs[0].MinIdle).To(Equal(time.Minute))
	})

	It("keeps a higher attempt from the message", func() {
		claimer.pending = []redis.XPendingExt{{ID: "1-0", RetryCount: 1}}
		claimer.messages["1-0"] = redis.XMessage{ID: "1-0", Values: map[string]any{"raw_item_id": "42", "attempt": "3"}}

		run()

		Eventually(handledMessages).Should(HaveLen(1))
		Expect(handledMessages()[0].Attempt).To(Equal(3))
	})

	It("acks messages that cannot be parsed", func() {
		claimer.pending = []redis.XPendingExt{{ID: "1-0", RetryCount: 1}}
		claimer.messages["1-0"] = redis.XMessage{ID: "1-0", Values: map[string]any{"raw_item_id": "not-a-number"}}

		run()

		Eventually(consumer.Acked).Should(ConsistOf("1-0"))
		Consistently(handledMessages, 30*time.Millisecond).Should(BeEmpty())
	})

	It("skips messages another worker claimed first", func() {
		claimer.pending = []redis.XPendingExt{{ID: "1-0", RetryCount: 1}}

		run()

		Eventually(func() int {
			claimer.mu.Lock()
			defer claimer.mu.Unlock()
			return len(claimer.claimArgs)
		}).Should(Equal(1))
		Consistently(handledMessages, 30*time.Millisecond).Should(BeEmpty())
	})

	It("survives XPENDING errors", func() {
		claimer.pendErr = errors.New("NOGROUP")

		run()

		Consistently(handledMessages, 30*time.Millisecond).Should(BeEmpty())
	})
})
