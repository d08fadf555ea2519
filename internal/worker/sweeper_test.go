package worker_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/QuackbackIO/quackback-sub007/internal/worker"
)

type requeueCall struct {
	staleBefore time.Time
	limit       int32
}

type fakeRequeuer struct {
	mu    sync.Mutex
	calls []requeueCall
	n     int
	err   error
}

func (f *fakeRequeuer) RequeueStale(_ context.Context, staleBefore time.Time, limit int32) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, requeueCall{staleBefore: staleBefore, limit: limit})
	return f.n, f.err
}

func (f *fakeRequeuer) Calls() []requeueCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]requeueCall(nil), f.calls...)
}

var _ = Describe("Sweeper", func() {
	var (
		requeuer *fakeRequeuer
		now      time.Time
		s        *worker.Sweeper
	)

	BeforeEach(func() {
		requeuer = &fakeRequeuer{n: 2}
		now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		s = worker.NewSweeper(requeuer, worker.SweeperConfig{
			Interval:   5 * time.Millisecond,
			StaleAfter: 10 * time.Minute,
			BatchSize:  100,
			Now:        func() time.Time { return now },
		})
	})

	It("asks for items older than the stale window", func() {
		Expect(s.SweepOnce(context.Background())).To(Equal(2))

		calls := requeuer.Calls()
		Expect(calls).To(HaveLen(1))
		Expect(calls[0].staleBefore).To(Equal(now.Add(-10 * time.Minute)))
		Expect(calls[0].limit).To(Equal(int32(100)))
	})

	It("reports nothing requeued when the pass fails", func() {
		requeuer.err = errors.New("connection refused")
		Expect(s.SweepOnce(context.Background())).To(BeZero())
	})

	It("sweeps on every tick until stopped", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go s.Run(ctx)

		Eventually(func() int { return len(requeuer.Calls()) }).Should(BeNumerically(">=", 2))
		s.Stop()

		seen := len(requeuer.Calls())
		Consistently(func() int { return len(requeuer.Calls()) }, 30*time.Millisecond).Should(Equal(seen))
	})
})
