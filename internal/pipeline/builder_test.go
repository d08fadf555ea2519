package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/QuackbackIO/quackback-sub007/internal/model"
	"github.com/QuackbackIO/quackback-sub007/internal/pipeline"
	"github.com/QuackbackIO/quackback-sub007/internal/store/storetest"
)

var _ = Describe("Builder", func() {
	var (
		ctx     context.Context
		mem     *storetest.Store
		builder *pipeline.Builder
		item    *model.RawFeedbackItem
		signal  model.FeedbackSignal
	)

	BeforeEach(func() {
		ctx = context.Background()
		mem = storetest.New()
		builder = pipeline.NewBuilder()
		item = &model.RawFeedbackItem{ID: 10, WorkspaceID: 1, Body: "We would love a dark mode for late night work"}
		signal = model.FeedbackSignal{
			ID:                100,
			RawFeedbackItemID: 10,
			SignalType:        model.SignalTypeFeatureRequest,
			Summary:           "Add a dark mode. It helps at night.",
			Embedding:         []float32{1, 0, 0},
		}
	})

	Context("with a match", func() {
		It("proposes merging into the matched post", func() {
			sug, created, err := builder.Build(ctx, mem, item, signal, &pipeline.Match{PostID: 7, Title: "Dark mode", Score: 0.91})
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())
			Expect(sug.SuggestionType).To(Equal(model.SuggestionTypeMergePost))
			Expect(*sug.TargetPostID).To(Equal(int64(7)))
			Expect(*sug.SimilarityScore).To(Equal(0.91))
			Expect(*sug.FeedbackSignalID).To(Equal(int64(100)))
			Expect(*sug.Reasoning).To(Equal(`Matches existing post "Dark mode" with similarity 0.91`))
			Expect(sug.BoardID).To(BeNil())
			Expect(sug.Status).To(Equal(model.SuggestionStatusPending))
		})

		It("returns the existing pending suggestion instead of creating another", func() {
			first, _, err := builder.Build(ctx, mem, item, signal, &pipeline.Match{PostID: 7, Score: 0.9})
			Expect(err).NotTo(HaveOccurred())

			second, created, err := builder.Build(ctx, mem, item, signal, &pipeline.Match{PostID: 8, Score: 0.95})
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeFalse())
			Expect(second.ID).To(Equal(first.ID))
			Expect(mem.SuggestionsFor(item.ID)).To(HaveLen(1))
		})
	})

	Context("without a match", func() {
		BeforeEach(func() {
			mem.AddBoard(model.Board{ID: 1, WorkspaceID: 1, Slug: "general", IsDefault: true})
		})

		It("proposes a new post on the default board", func() {
			sug, created, err := builder.Build(ctx, mem, item, signal, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())
			Expect(sug.SuggestionType).To(Equal(model.SuggestionTypeCreatePost))
			Expect(*sug.BoardID).To(Equal(int64(1)))
			Expect(*sug.SuggestedTitle).To(Equal("Add a dark mode"))
			Expect(*sug.SuggestedBody).To(ContainSubstring("Original feedback:\n" + item.Body))
			Expect(*sug.Reasoning).To(Equal("No existing post reached the similarity threshold"))
			Expect(sug.TargetPostID).To(BeNil())
		})

		It("explains a missing embedding", func() {
			signal.Embedding = nil
			sug, _, err := builder.Build(ctx, mem, item, signal, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(*sug.Reasoning).To(ContainSubstring("no embedding"))
		})

		It("prefers the signal title", func() {
			signal.Title = strPtr("Dark theme")
			sug, _, err := builder.Build(ctx, mem, item, signal, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(*sug.SuggestedTitle).To(Equal("Dark theme"))
		})

		It("prefers the board configured for the signal type", func() {
			bugs := model.SignalTypeBugReport
			features := model.SignalTypeFeatureRequest
			mem.AddBoard(model.Board{ID: 2, WorkspaceID: 1, Slug: "bugs", SignalType: &bugs})
			mem.AddBoard(model.Board{ID: 3, WorkspaceID: 1, Slug: "ideas", SignalType: &features})

			sug, _, err := builder.Build(ctx, mem, item, signal, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(*sug.BoardID).To(Equal(int64(3)))
		})

		It("prefers the envelope board hint over everything else", func() {
			features := model.SignalTypeFeatureRequest
			mem.AddBoard(model.Board{ID: 3, WorkspaceID: 1, Slug: "ideas", SignalType: &features})
			mem.AddBoard(model.Board{ID: 4, WorkspaceID: 1, Slug: "mobile"})
			item.ContextEnvelope = json.RawMessage(`{"boardHint":"Mobile"}`)

			sug, _, err := builder.Build(ctx, mem, item, signal, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(*sug.BoardID).To(Equal(int64(4)))
		})

		It("ignores a hint naming another workspace's board", func() {
			mem.AddBoard(model.Board{ID: 5, WorkspaceID: 2, Slug: "mobile"})
			item.ContextEnvelope = json.RawMessage(`{"boardHint":"mobile"}`)

			sug, _, err := builder.Build(ctx, mem, item, signal, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(*sug.BoardID).To(Equal(int64(1)))
		})
	})

	It("fails with ErrNoBoard when the workspace has no board", func() {
		_, _, err := builder.Build(ctx, mem, item, signal, nil)
		Expect(errors.Is(err, pipeline.ErrNoBoard)).To(BeTrue())
		Expect(pipeline.IsRetryable(err)).To(BeFalse())
	})
})
