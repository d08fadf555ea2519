package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/QuackbackIO/quackback-sub007/common/metrics"
	"github.com/QuackbackIO/quackback-sub007/internal/model"
	"github.com/QuackbackIO/quackback-sub007/internal/store"
)

const (
	DefaultSimilarityThreshold = 0.80
	DefaultCandidateLimit      = 50
)

// Match is the post a signal should be merged into.
type Match struct {
	Title  string
	PostID int64
	Score  float64
}

type MatcherConfig struct {
	// SimilarityThreshold is inclusive: a candidate scoring exactly the threshold qualifies.
	SimilarityThreshold float64
	// CandidateLimit is how many of the nearest workspace posts are scored.
	// Values below 1 fall back to DefaultCandidateLimit.
	CandidateLimit int32
}

// Matcher finds the existing post most similar to a signal embedding.
type Matcher struct {
	cfg MatcherConfig
}

func NewMatcher(cfg MatcherConfig) *Matcher {
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if cfg.CandidateLimit < 1 {
		cfg.CandidateLimit = DefaultCandidateLimit
	}
	return &Matcher{cfg: cfg}
}

// Match returns nil when no candidate in the workspace reaches the threshold.
// A signal without an embedding never matches.
func (m *Matcher) Match(ctx context.Context, posts store.PostStore, workspaceID int64, embedding []float32) (*Match, error) {
	if len(embedding) == 0 {
		return nil, nil
	}

	candidates, err := posts.ListCandidates(ctx, workspaceID, embedding, m.cfg.CandidateLimit)
	if err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}

	best, bestScore := SelectBest(candidates, embedding, m.cfg.SimilarityThreshold)
	if len(candidates) > 0 {
		metrics.MatchScores.Observe(bestScore)
	}

	slog.DebugContext(ctx, "similarity match evaluated",
		"candidates", len(candidates),
		"best_score", bestScore,
		"threshold", m.cfg.SimilarityThreshold,
		"matched", best != nil)

	return best, nil
}

// SelectBest scores every candidate that has an embedding of the query's
// dimension. Among those at or above threshold it picks the strictly highest
// score; exact ties go to the most recently created post. The returned float
// is the best score seen regardless of threshold.
func SelectBest(candidates []model.PostCandidate, query []float32, threshold float64) (*Match, float64) {
	var best *Match
	var bestCreated model.PostCandidate
	bestSeen := 0.0

	for _, c := range candidates {
		if len(c.Embedding) == 0 || len(c.Embedding) != len(query) {
			continue
		}
		score := CosineSimilarity(query, c.Embedding)
		if score > bestSeen {
			bestSeen = score
		}
		if score < threshold {
			continue
		}
		if best == nil ||
			score > best.Score ||
			(score == best.Score && c.CreatedAt.After(bestCreated.CreatedAt)) {
			best = &Match{PostID: c.ID, Title: c.Title, Score: score}
			bestCreated = c
		}
	}

	return best, bestSeen
}

// CosineSimilarity returns the cosine of the angle between two vectors,
// or 0 when either is empty, zero-length or the dimensions differ.
func CosineSimilarity(vec1, vec2 []float32) float64 {
	if len(vec1) == 0 || len(vec1) != len(vec2) {
		return 0.0
	}

	var dotProduct, magnitude1, magnitude2 float64
	for i := range vec1 {
		v1 := float64(vec1[i])
		v2 := float64(vec2[i])
		dotProduct += v1 * v2
		magnitude1 += v1 * v1
		magnitude2 += v2 * v2
	}

	if magnitude1 == 0.0 || magnitude2 == 0.0 {
		return 0.0
	}

	similarity := dotProduct / math.Sqrt(magnitude1*magnitude2)
	return math.Max(-1, math.Min(1, similarity))
}
