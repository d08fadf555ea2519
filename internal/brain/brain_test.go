package brain_test

import (
	"context"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/QuackbackIO/quackback-sub007/common/llm"
	"github.com/QuackbackIO/quackback-sub007/internal/brain"
	"github.com/QuackbackIO/quackback-sub007/internal/model"
	"github.com/QuackbackIO/quackback-sub007/internal/pipeline"
)

var _ = Describe("Classifier", func() {
	var (
		ctx    context.Context
		client *mockLLMClient
	)

	BeforeEach(func() {
		ctx = context.Background()
		client = &mockLLMClient{}
	})

	It("returns the model verdict", func() {
		client.chatFn = respondWith(`{"actionable": true, "rationale": "  asks for CSV export "}`)

		verdict, err := brain.NewClassifier(client).Classify(ctx, "Please add CSV export")
		Expect(err).NotTo(HaveOccurred())
		Expect(verdict.Actionable).To(BeTrue())
		Expect(verdict.Rationale).To(Equal("asks for CSV export"))
		Expect(client.lastReq.SchemaName).To(Equal("actionability_response"))
		Expect(client.lastReq.UserPrompt).To(ContainSubstring("Please add CSV export"))
		Expect(*client.lastReq.Temperature).To(Equal(0.0))
	})

	It("wraps client errors", func() {
		cause := errors.New("429 too many requests")
		client.chatFn = func(context.Context, llm.Request, any) (*llm.Response, error) { return nil, cause }

		_, err := brain.NewClassifier(client).Classify(ctx, "Please add CSV export")
		Expect(err).To(MatchError(cause))
	})

	It("truncates very long feedback", func() {
		client.chatFn = respondWith(`{"actionable": false, "rationale": "spam"}`)

		_, err := brain.NewClassifier(client).Classify(ctx, strings.Repeat("a", 20000))
		Expect(err).NotTo(HaveOccurred())
		Expect(client.lastReq.UserPrompt).To(HaveSuffix("[truncated]"))
		Expect(len(client.lastReq.UserPrompt)).To(BeNumerically("<", 9000))
	})
})

var _ = Describe("Summarizer", func() {
	var (
		ctx    context.Context
		client *mockLLMClient
	)

	BeforeEach(func() {
		ctx = context.Background()
		client = &mockLLMClient{}
	})

	It("maps model signals to extracted signals", func() {
		client.chatFn = respondWith(`{"signals": [
			{"type": "feature_request", "summary": "Weekly CSV export of reports.", "title": "Weekly CSV export"},
			{"type": "bug_report", "summary": "Save button does nothing on Safari.", "title": "Save broken on Safari"}
		]}`)

		signals, err := brain.NewSummarizer(client).Summarize(ctx, "content")
		Expect(err).NotTo(HaveOccurred())
		Expect(signals).To(HaveLen(2))
		Expect(signals[0]).To(Equal(pipeline.ExtractedSignal{
			Type:    model.SignalTypeFeatureRequest,
			Summary: "Weekly CSV export of reports.",
			Title:   "Weekly CSV export",
		}))
		Expect(signals[1].Type).To(Equal(model.SignalTypeBugReport))
		Expect(client.lastReq.SchemaName).To(Equal("signals_response"))
	})

	It("returns an empty slice when the model finds nothing", func() {
		client.chatFn = respondWith(`{"signals": []}`)

		signals, err := brain.NewSummarizer(client).Summarize(ctx, "content")
		Expect(err).NotTo(HaveOccurred())
		Expect(signals).To(BeEmpty())
	})

	It("wraps client errors", func() {
		client.chatFn = func(context.Context, llm.Request, any) (*llm.Response, error) {
			return nil, context.DeadlineExceeded
		}

		_, err := brain.NewSummarizer(client).Summarize(ctx, "content")
		Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
	})
})

var _ = Describe("Embedder", func() {
	It("trims input and delegates", func() {
		client := &mockEmbeddingClient{vec: []float32{0.1, 0.2}}

		vec, err := brain.NewEmbedder(client).Embed(context.Background(), "  dark mode \n")
		Expect(err).NotTo(HaveOccurred())
		Expect(vec).To(Equal([]float32{0.1, 0.2}))
		Expect(client.lastText).To(Equal("dark mode"))
	})

	It("rejects empty text without calling the client", func() {
		client := &mockEmbeddingClient{vec: []float32{0.1}}

		_, err := brain.NewEmbedder(client).Embed(context.Background(), "   ")
		Expect(err).To(HaveOccurred())
		Expect(client.lastText).To(BeEmpty())
	})

	It("wraps client errors", func() {
		cause := errors.New("connection refused")
		client := &mockEmbeddingClient{err: cause}

		_, err := brain.NewEmbedder(client).Embed(context.Background(), "dark mode")
		Expect(err).To(MatchError(cause))
	})
})

var _ = Describe("rate limited capabilities", func() {
	It("passes calls through an unlimited limiter", func() {
		client := &mockLLMClient{chatFn: respondWith(`{"actionable": true, "rationale": "ok"}`)}
		limited := brain.NewLimitedClassifier(brain.NewClassifier(client), brain.NewLimiter(0, 0))

		for i := 0; i < 20; i++ {
			_, err := limited.Classify(context.Background(), "Please add CSV export")
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(client.callCount).To(Equal(20))
	})

	It("returns the context error when the caller gives up waiting", func() {
		emb := &mockEmbeddingClient{vec: []float32{1}}
		limiter := brain.NewLimiter(0.001, 1)
		limited := brain.NewLimitedEmbedder(brain.NewEmbedder(emb), limiter)

		_, err := limited.Embed(context.Background(), "first")
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = limited.Embed(ctx, "second")
		Expect(err).To(MatchError(context.Canceled))
		Expect(emb.lastText).To(Equal("first"))
	})

	It("fails fast when the wait would outlast the deadline", func() {
		client := &mockLLMClient{chatFn: respondWith(`{"signals": []}`)}
		limited := brain.NewLimitedSummarizer(brain.NewSummarizer(client), brain.NewLimiter(0.001, 1))

		_, err := limited.Summarize(context.Background(), "first")
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_, err = limited.Summarize(ctx, "second")
		Expect(err).To(HaveOccurred())
		Expect(client.callCount).To(Equal(1))
	})
})
