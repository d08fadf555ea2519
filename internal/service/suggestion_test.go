package service_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/QuackbackIO/quackback-sub007/internal/model"
	"github.com/QuackbackIO/quackback-sub007/internal/service"
	"github.com/QuackbackIO/quackback-sub007/internal/store/storetest"
)

var _ = Describe("SuggestionService", func() {
	const (
		workspaceID int64 = 10
		itemID      int64 = 100
		postID      int64 = 200
		boardID     int64 = 300
		reviewer    int64 = 900
	)

	var (
		ctx context.Context
		mem *storetest.Store
		svc service.SuggestionService
	)

	BeforeEach(func() {
		ctx = context.Background()
		mem = storetest.New()
		svc = service.NewSuggestionService(mem, memTxRunner{s: mem})

		mem.AddItem(model.RawFeedbackItem{ID: itemID, WorkspaceID: workspaceID, ProcessingState: model.ProcessingStateCompleted})
		mem.AddPost(model.Post{ID: postID, WorkspaceID: workspaceID, BoardID: boardID, Title: "Dark mode", VoteCount: 4})
		mem.AddBoard(model.Board{ID: boardID, WorkspaceID: workspaceID, Slug: "features", IsDefault: true})
	})

	mergeSuggestion := func(id int64) model.FeedbackSuggestion {
		return mem.AddSuggestion(model.FeedbackSuggestion{
			ID:                id,
			RawFeedbackItemID: itemID,
			WorkspaceID:       workspaceID,
			SuggestionType:    model.SuggestionTypeMergePost,
			TargetPostID:      int64Ptr(postID),
			SimilarityScore:   func() *float64 { v := 0.91; return &v }(),
		})
	}

	createSuggestion := func(id int64) model.FeedbackSuggestion {
		return mem.AddSuggestion(model.FeedbackSuggestion{
			ID:                id,
			RawFeedbackItemID: itemID,
			WorkspaceID:       workspaceID,
			SuggestionType:    model.SuggestionTypeCreatePost,
			SuggestedTitle:    strPtr("Export to CSV"),
			SuggestedBody:     strPtr("Customers want CSV exports of reports."),
			BoardID:           int64Ptr(boardID),
		})
	}

	Describe("Accept merge_post", func() {
		It("casts one vote and links the target post", func() {
			mergeSuggestion(1)

			post, err := svc.Accept(ctx, 1, reviewer)
			Expect(err).NotTo(HaveOccurred())
			Expect(post.ID).To(Equal(postID))
			Expect(post.VoteCount).To(Equal(int32(5)))

			Expect(mem.Post(postID).VoteCount).To(Equal(int32(5)))
			Expect(mem.HasVote(postID, reviewer)).To(BeTrue())

			sug := mem.Suggestion(1)
			Expect(sug.Status).To(Equal(model.SuggestionStatusAccepted))
			Expect(sug.ResultPostID).To(HaveValue(Equal(postID)))
			Expect(sug.ResolvedAt).NotTo(BeNil())
			Expect(sug.ResolvedByPrincipalID).To(HaveValue(Equal(reviewer)))
		})

		It("does not change the count when the reviewer already voted", func() {
			mergeSuggestion(1)
			mem.AddVote(postID, reviewer)

			post, err := svc.Accept(ctx, 1, reviewer)
			Expect(err).NotTo(HaveOccurred())
			Expect(post.VoteCount).To(Equal(int32(4)))
			Expect(mem.Post(postID).VoteCount).To(Equal(int32(4)))
			Expect(mem.Suggestion(1).Status).To(Equal(model.SuggestionStatusAccepted))
		})

		It("rejects a second accept", func() {
			mergeSuggestion(1)
			_, err := svc.Accept(ctx, 1, reviewer)
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Accept(ctx, 1, reviewer+1)
			Expect(err).To(MatchError(service.ErrSuggestionResolved))
			Expect(mem.Post(postID).VoteCount).To(Equal(int32(5)))
		})

		It("rolls the vote back when resolving fails", func() {
			mergeSuggestion(1)
			mem.Fail("suggestions.Resolve", errBoom)

			_, err := svc.Accept(ctx, 1, reviewer)
			Expect(err).To(MatchError(errBoom))

			Expect(mem.Rollback).To(Equal(1))
			Expect(mem.HasVote(postID, reviewer)).To(BeFalse())
			Expect(mem.Post(postID).VoteCount).To(Equal(int32(4)))
			Expect(mem.Suggestion(1).IsPending()).To(BeTrue())

			By("succeeding on retry")
			_, err = svc.Accept(ctx, 1, reviewer)
			Expect(err).NotTo(HaveOccurred())
			Expect(mem.Post(postID).VoteCount).To(Equal(int32(5)))
		})

		It("leaves the suggestion pending when the vote insert fails", func() {
			mergeSuggestion(1)
			mem.Fail("posts.AddVote", errBoom)

			_, err := svc.Accept(ctx, 1, reviewer)
			Expect(err).To(MatchError(errBoom))
			Expect(mem.Suggestion(1).IsPending()).To(BeTrue())
			Expect(mem.Post(postID).VoteCount).To(Equal(int32(4)))
		})

		It("reports a missing target post", func() {
			mem.AddSuggestion(model.FeedbackSuggestion{
				ID:                2,
				RawFeedbackItemID: itemID,
				WorkspaceID:       workspaceID,
				SuggestionType:    model.SuggestionTypeMergePost,
				TargetPostID:      int64Ptr(404),
			})

			_, err := svc.Accept(ctx, 2, reviewer)
			Expect(err).To(MatchError(service.ErrPostNotFound))
			Expect(mem.Suggestion(2).IsPending()).To(BeTrue())
		})
	})

	Describe("Accept create_post", func() {
		It("creates exactly one post with a single vote", func() {
			createSuggestion(1)
			before := mem.PostCount()

			post, err := svc.Accept(ctx, 1, reviewer)
			Expect(err).NotTo(HaveOccurred())
			Expect(mem.PostCount()).To(Equal(before + 1))

			stored := mem.Post(post.ID)
			Expect(stored.Title).To(Equal("Export to CSV"))
			Expect(stored.Body).To(Equal("Customers want CSV exports of reports."))
			Expect(stored.BoardID).To(Equal(boardID))
			Expect(stored.WorkspaceID).To(Equal(workspaceID))
			Expect(stored.VoteCount).To(Equal(int32(1)))
			Expect(mem.HasVote(post.ID, reviewer)).To(BeTrue())

			Expect(mem.Suggestion(1).ResultPostID).To(HaveValue(Equal(post.ID)))
		})

		It("copies the signal embedding onto the new post", func() {
			sig, err := mem.Signals().Create(ctx, &model.FeedbackSignal{
				ID:                55,
				RawFeedbackItemID: itemID,
				SignalType:        model.SignalTypeFeatureRequest,
				Summary:           "CSV export",
				Embedding:         []float32{0.6, 0.8, 0},
			})
			Expect(err).NotTo(HaveOccurred())

			sug := createSuggestion(1)
			sug.FeedbackSignalID = &sig.ID
			mem.AddSuggestion(sug)

			post, err := svc.Accept(ctx, 1, reviewer)
			Expect(err).NotTo(HaveOccurred())
			Expect(mem.Post(post.ID).Embedding).To(Equal([]float32{0.6, 0.8, 0}))
		})

		It("creates nothing when the vote fails", func() {
			createSuggestion(1)
			before := mem.PostCount()
			mem.Fail("posts.AddVote", errBoom)

			_, err := svc.Accept(ctx, 1, reviewer)
			Expect(err).To(MatchError(errBoom))
			Expect(mem.PostCount()).To(Equal(before))
			Expect(mem.Suggestion(1).IsPending()).To(BeTrue())
		})
	})

	Describe("Accept guards", func() {
		It("returns not found for an unknown suggestion", func() {
			_, err := svc.Accept(ctx, 999, reviewer)
			Expect(err).To(MatchError(service.ErrSuggestionNotFound))
		})

		It("rejects accepting a dismissed suggestion", func() {
			mergeSuggestion(1)
			_, err := svc.Dismiss(ctx, 1, reviewer)
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Accept(ctx, 1, reviewer)
			Expect(err).To(MatchError(service.ErrSuggestionResolved))
			Expect(mem.Post(postID).VoteCount).To(Equal(int32(4)))
		})

		It("requires a principal", func() {
			mergeSuggestion(1)
			_, err := svc.Accept(ctx, 1, 0)
			Expect(err).To(MatchError(service.ErrInvalidInput))
		})
	})

	Describe("Dismiss", func() {
		It("closes a pending suggestion without side effects", func() {
			mergeSuggestion(1)

			sug, err := svc.Dismiss(ctx, 1, reviewer)
			Expect(err).NotTo(HaveOccurred())
			Expect(sug.Status).To(Equal(model.SuggestionStatusDismissed))
			Expect(sug.ResolvedAt).NotTo(BeNil())
			Expect(sug.ResolvedByPrincipalID).To(HaveValue(Equal(reviewer)))
			Expect(sug.ResultPostID).To(BeNil())
			Expect(mem.Post(postID).VoteCount).To(Equal(int32(4)))
		})

		It("is a no-op the second time", func() {
			mergeSuggestion(1)
			first, err := svc.Dismiss(ctx, 1, reviewer)
			Expect(err).NotTo(HaveOccurred())

			second, err := svc.Dismiss(ctx, 1, reviewer+1)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Status).To(Equal(model.SuggestionStatusDismissed))
			Expect(second.ResolvedByPrincipalID).To(HaveValue(Equal(reviewer)))
			Expect(second.ResolvedAt).To(Equal(first.ResolvedAt))
		})

		It("leaves an accepted suggestion accepted", func() {
			mergeSuggestion(1)
			_, err := svc.Accept(ctx, 1, reviewer)
			Expect(err).NotTo(HaveOccurred())

			sug, err := svc.Dismiss(ctx, 1, reviewer)
			Expect(err).NotTo(HaveOccurred())
			Expect(sug.Status).To(Equal(model.SuggestionStatusAccepted))
		})

		It("returns not found for an unknown suggestion", func() {
			_, err := svc.Dismiss(ctx, 999, reviewer)
			Expect(err).To(MatchError(service.ErrSuggestionNotFound))
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			mergeSuggestion(1)
			createSuggestion(2)
			mem.AddSuggestion(model.FeedbackSuggestion{
				ID:                3,
				RawFeedbackItemID: itemID + 1,
				WorkspaceID:       workspaceID + 1,
				SuggestionType:    model.SuggestionTypeCreatePost,
			})
		})

		It("filters by workspace and type", func() {
			wantType := model.SuggestionTypeCreatePost
			got, err := svc.List(ctx, model.SuggestionFilter{WorkspaceID: int64Ptr(workspaceID), Type: &wantType})
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(1))
			Expect(got[0].ID).To(Equal(int64(2)))
		})

		It("returns newest first", func() {
			got, err := svc.List(ctx, model.SuggestionFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(3))
			Expect(got[0].ID).To(Equal(int64(3)))
		})

		It("rejects an unknown status", func() {
			status := model.SuggestionStatus("archived")
			_, err := svc.List(ctx, model.SuggestionFilter{Status: &status})
			Expect(err).To(MatchError(service.ErrInvalidInput))
		})
	})

	Describe("Get", func() {
		It("maps a missing row to ErrSuggestionNotFound", func() {
			_, err := svc.Get(ctx, 42)
			Expect(err).To(MatchError(service.ErrSuggestionNotFound))
		})
	})
})

var _ = Describe("VoteService", func() {
	var (
		ctx context.Context
		mem *storetest.Store
		svc service.VoteService
	)

	BeforeEach(func() {
		ctx = context.Background()
		mem = storetest.New()
		svc = service.NewVoteService(memTxRunner{s: mem})
		mem.AddPost(model.Post{ID: 1, WorkspaceID: 1, BoardID: 1, Title: "SSO", VoteCount: 2})
	})

	It("counts a principal once", func() {
		first, err := svc.Cast(ctx, 1, 7)
		Expect(err).NotTo(HaveOccurred())
		Expect(*first).To(Equal(service.VoteResult{Inserted: true, VoteCount: 3}))

		second, err := svc.Cast(ctx, 1, 7)
		Expect(err).NotTo(HaveOccurred())
		Expect(*second).To(Equal(service.VoteResult{Inserted: false, VoteCount: 3}))
	})

	It("rolls back the vote row when the increment fails", func() {
		mem.Fail("posts.IncrementVoteCount", errBoom)

		_, err := svc.Cast(ctx, 1, 7)
		Expect(err).To(MatchError(errBoom))
		Expect(mem.HasVote(1, 7)).To(BeFalse())
	})

	It("reports a missing post", func() {
		_, err := svc.Cast(ctx, 404, 7)
		Expect(err).To(MatchError(service.ErrPostNotFound))
	})
})
