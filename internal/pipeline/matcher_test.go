package pipeline_test

import (
	"context"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/QuackbackIO/quackback-sub007/internal/model"
	"github.com/QuackbackIO/quackback-sub007/internal/pipeline"
	"github.com/QuackbackIO/quackback-sub007/internal/store/storetest"
)

// unitAt returns a unit vector whose cosine with [1,0,0] is score.
func unitAt(score float64) []float32 {
	return []float32{float32(score), float32(math.Sqrt(1 - score*score)), 0}
}

var _ = Describe("CosineSimilarity", func() {
	It("is 1 for identical vectors", func() {
		v := []float32{0.12, -0.5, 0.33, 0.9}
		Expect(pipeline.CosineSimilarity(v, v)).To(BeNumerically("~", 1.0, 1e-12))
	})

	It("is 0 for orthogonal vectors", func() {
		Expect(pipeline.CosineSimilarity([]float32{1, 0}, []float32{0, 1})).To(Equal(0.0))
	})

	It("is 0 for empty, zero or mismatched vectors", func() {
		Expect(pipeline.CosineSimilarity(nil, nil)).To(Equal(0.0))
		Expect(pipeline.CosineSimilarity([]float32{0, 0}, []float32{1, 0})).To(Equal(0.0))
		Expect(pipeline.CosineSimilarity([]float32{1, 0}, []float32{1, 0, 0})).To(Equal(0.0))
	})
})

var _ = Describe("SelectBest", func() {
	query := []float32{1, 0, 0}
	now := time.Now()

	It("never selects a candidate below the threshold", func() {
		candidates := []model.PostCandidate{
			{ID: 1, Embedding: unitAt(0.79), CreatedAt: now},
			{ID: 2, Embedding: unitAt(0.5), CreatedAt: now},
		}
		best, seen := pipeline.SelectBest(candidates, query, 0.80)
		Expect(best).To(BeNil())
		Expect(seen).To(BeNumerically("~", 0.79, 1e-6))
	})

	It("includes a candidate exactly at the threshold", func() {
		candidates := []model.PostCandidate{{ID: 1, Embedding: []float32{1, 1, 0}, CreatedAt: now}}
		threshold := pipeline.CosineSimilarity(query, []float32{1, 1, 0})
		best, _ := pipeline.SelectBest(candidates, query, threshold)
		Expect(best).NotTo(BeNil())
		Expect(best.PostID).To(Equal(int64(1)))
	})

	It("picks the strictly highest score", func() {
		candidates := []model.PostCandidate{
			{ID: 1, Title: "Dark mode", Embedding: unitAt(0.85), CreatedAt: now.Add(time.Hour)},
			{ID: 2, Title: "Night theme", Embedding: unitAt(0.95), CreatedAt: now},
			{ID: 3, Title: "Themes", Embedding: unitAt(0.9), CreatedAt: now},
		}
		best, _ := pipeline.SelectBest(candidates, query, 0.80)
		Expect(best.PostID).To(Equal(int64(2)))
		Expect(best.Title).To(Equal("Night theme"))
		Expect(best.Score).To(BeNumerically("~", 0.95, 1e-6))
	})

	It("breaks exact ties by most recent creation", func() {
		same := unitAt(0.9)
		candidates := []model.PostCandidate{
			{ID: 1, Embedding: same, CreatedAt: now.Add(-time.Hour)},
			{ID: 2, Embedding: same, CreatedAt: now},
			{ID: 3, Embedding: same, CreatedAt: now.Add(-2 * time.Hour)},
		}
		best, _ := pipeline.SelectBest(candidates, query, 0.80)
		Expect(best.PostID).To(Equal(int64(2)))
	})

	It("excludes candidates without an embedding instead of scoring them", func() {
		candidates := []model.PostCandidate{
			{ID: 1, Embedding: nil, CreatedAt: now.Add(time.Hour)},
			{ID: 2, Embedding: []float32{1, 0}, CreatedAt: now.Add(time.Hour)},
			{ID: 3, Embedding: unitAt(0.81), CreatedAt: now},
		}
		best, _ := pipeline.SelectBest(candidates, query, 0.80)
		Expect(best.PostID).To(Equal(int64(3)))
	})

	It("scores an identical embedding as 1.0 over any lower candidate", func() {
		candidates := []model.PostCandidate{
			{ID: 1, Embedding: unitAt(0.99), CreatedAt: now.Add(time.Hour)},
			{ID: 2, Embedding: []float32{1, 0, 0}, CreatedAt: now},
		}
		best, _ := pipeline.SelectBest(candidates, query, 0.80)
		Expect(best.PostID).To(Equal(int64(2)))
		Expect(best.Score).To(BeNumerically("~", 1.0, 1e-12))
	})
})

var _ = Describe("Matcher", func() {
	var (
		ctx     context.Context
		mem     *storetest.Store
		matcher *pipeline.Matcher
	)

	BeforeEach(func() {
		ctx = context.Background()
		mem = storetest.New()
		matcher = pipeline.NewMatcher(pipeline.MatcherConfig{SimilarityThreshold: 0.80, CandidateLimit: 10})
	})

	It("only considers posts in the same workspace", func() {
		mem.AddPost(model.Post{ID: 1, WorkspaceID: 2, Title: "Other tenant", Embedding: []float32{1, 0, 0}})
		mem.AddPost(model.Post{ID: 2, WorkspaceID: 1, Title: "Ours", Embedding: unitAt(0.9)})

		match, err := matcher.Match(ctx, mem.Posts(), 1, []float32{1, 0, 0})
		Expect(err).NotTo(HaveOccurred())
		Expect(match.PostID).To(Equal(int64(2)))
	})

	It("returns no match for a nil embedding", func() {
		mem.AddPost(model.Post{ID: 1, WorkspaceID: 1, Embedding: []float32{1, 0, 0}})
		match, err := matcher.Match(ctx, mem.Posts(), 1, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(match).To(BeNil())
	})

	It("returns no match when nothing reaches the threshold", func() {
		mem.AddPost(model.Post{ID: 1, WorkspaceID: 1, Embedding: unitAt(0.6)})
		match, err := matcher.Match(ctx, mem.Posts(), 1, []float32{1, 0, 0})
		Expect(err).NotTo(HaveOccurred())
		Expect(match).To(BeNil())
	})

	It("finds the nearest workspace post when other workspaces hold closer posts", func() {
		m := pipeline.NewMatcher(pipeline.MatcherConfig{SimilarityThreshold: 0.80, CandidateLimit: 1})
		for i := int64(1); i <= 5; i++ {
			mem.AddPost(model.Post{ID: i, WorkspaceID: 2, Embedding: []float32{1, 0, 0}})
		}
		mem.AddPost(model.Post{ID: 10, WorkspaceID: 1, Title: "Ours", Embedding: unitAt(0.85)})

		match, err := m.Match(ctx, mem.Posts(), 1, []float32{1, 0, 0})
		Expect(err).NotTo(HaveOccurred())
		Expect(match).NotTo(BeNil())
		Expect(match.PostID).To(Equal(int64(10)))
	})

	It("defaults the candidate limit instead of selecting nothing", func() {
		m := pipeline.NewMatcher(pipeline.MatcherConfig{})
		mem.AddPost(model.Post{ID: 1, WorkspaceID: 1, Title: "Dark mode", Embedding: unitAt(0.95)})

		match, err := m.Match(ctx, mem.Posts(), 1, []float32{1, 0, 0})
		Expect(err).NotTo(HaveOccurred())
		Expect(match).NotTo(BeNil())
		Expect(match.PostID).To(Equal(int64(1)))
	})

	It("defaults the threshold to 0.80", func() {
		m := pipeline.NewMatcher(pipeline.MatcherConfig{})
		mem.AddPost(model.Post{ID: 1, WorkspaceID: 1, Embedding: unitAt(0.79)})
		match, err := m.Match(ctx, mem.Posts(), 1, []float32{1, 0, 0})
		Expect(err).NotTo(HaveOccurred())
		Expect(match).To(BeNil())
	})
})
