// Package storetest is an in-memory implementation of the store interfaces
// with the same conditional-update semantics as the SQL queries.
package storetest

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/QuackbackIO/quackback-sub007/internal/model"
	"github.com/QuackbackIO/quackback-sub007/internal/store"
)

type voteKey struct {
	postID      int64
	principalID int64
}

type state struct {
	sources     map[int64]model.FeedbackSource
	items       map[int64]model.RawFeedbackItem
	signals     map[int64]model.FeedbackSignal
	suggestions map[int64]model.FeedbackSuggestion
	posts       map[int64]model.Post
	boards      map[int64]model.Board
	votes       map[voteKey]struct{}
}

func (s *state) clone() *state {
	c := &state{
		sources:     make(map[int64]model.FeedbackSource, len(s.sources)),
		items:       make(map[int64]model.RawFeedbackItem, len(s.items)),
		signals:     make(map[int64]model.FeedbackSignal, len(s.signals)),
		suggestions: make(map[int64]model.FeedbackSuggestion, len(s.suggestions)),
		posts:       make(map[int64]model.Post, len(s.posts)),
		boards:      make(map[int64]model.Board, len(s.boards)),
		votes:       make(map[voteKey]struct{}, len(s.votes)),
	}
	for k, v := range s.sources {
		c.sources[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.signals {
		c.signals[k] = v
	}
	for k, v := range s.suggestions {
		c.suggestions[k] = v
	}
	for k, v := range s.posts {
		c.posts[k] = v
	}
	for k, v := range s.boards {
		c.boards[k] = v
	}
	for k := range s.votes {
		c.votes[k] = struct{}{}
	}
	return c
}

// Store holds all entities in memory. The zero value is not usable; call New.
type Store struct {
	txMu     sync.Mutex
	mu       sync.Mutex
	st       *state
	faults   map[string]error
	Now      func() time.Time
	TxCount  int
	Rollback int
}

func New() *Store {
	return &Store{
		st: &state{
			sources:     map[int64]model.FeedbackSource{},
			items:       map[int64]model.RawFeedbackItem{},
			signals:     map[int64]model.FeedbackSignal{},
			suggestions: map[int64]model.FeedbackSuggestion{},
			posts:       map[int64]model.Post{},
			boards:      map[int64]model.Board{},
			votes:       map[voteKey]struct{}{},
		},
		faults: map[string]error{},
		Now:    time.Now,
	}
}

// Fail makes the next call to op (e.g. "suggestions.Resolve") return err.
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

// fault must be called with mu held.
func (s *Store) fault(op string) error {
	if err, ok := s.faults[op]; ok {
		delete(s.faults, op)
		return err
	}
	return nil
}

// Atomically runs fn against the store and restores the prior state if fn fails or panics.
// Transactions are serialized.
func (s *Store) Atomically(fn func() error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.st.clone()
	s.TxCount++
	s.mu.Unlock()

	committed := false
	defer func() {
		if !committed {
			s.mu.Lock()
			s.st = snapshot
			s.Rollback++
			s.mu.Unlock()
		}
	}()

	if err := fn(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Store) Sources() store.FeedbackSourceStore { return sourceStore{s} }
func (s *Store) RawItems() store.RawFeedbackItemStore { return rawItemStore{s} }
func (s *Store) Signals() store.FeedbackSignalStore { return signalStore{s} }
func (s *Store) Suggestions() store.FeedbackSuggestionStore { return suggestionStore{s} }
func (s *Store) Posts() store.PostStore { return postStore{s} }
func (s *Store) Boards() store.BoardStore { return boardStore{s} }

// --- Seeding and inspection -------------------------------------------------

func (s *Store) AddSource(src model.FeedbackSource) model.FeedbackSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	if src.CreatedAt.IsZero() {
		src.CreatedAt = s.Now()
		src.UpdatedAt = src.CreatedAt
	}
	s.st.sources[src.ID] = src
	return src
}

func (s *Store) AddItem(item model.RawFeedbackItem) model.RawFeedbackItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ProcessingState == "" {
		item.ProcessingState = model.ProcessingStateReadyForExtraction
	}
	if item.StateChangedAt.IsZero() {
		item.StateChangedAt = s.Now()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = s.Now()
		item.UpdatedAt = item.CreatedAt
	}
	s.st.items[item.ID] = item
	return item
}

func (s *Store) AddPost(post model.Post) model.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = s.Now()
		post.UpdatedAt = post.CreatedAt
	}
	s.st.posts[post.ID] = post
	return post
}

func (s *Store) AddBoard(board model.Board) model.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	if board.CreatedAt.IsZero() {
		board.CreatedAt = s.Now()
	}
	s.st.boards[board.ID] = board
	return board
}

func (s *Store) AddVote(postID, principalID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.votes[voteKey{postID, principalID}] = struct{}{}
}

func (s *Store) AddSuggestion(sug model.FeedbackSuggestion) model.FeedbackSuggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sug.Status == "" {
		sug.Status = model.SuggestionStatusPending
	}
	if sug.CreatedAt.IsZero() {
		sug.CreatedAt = s.Now()
		sug.UpdatedAt = sug.CreatedAt
	}
	s.st.suggestions[sug.ID] = sug
	return sug
}

func (s *Store) Item(id int64) model.RawFeedbackItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.items[id]
}

func (s *Store) Post(id int64) model.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.posts[id]
}

func (s *Store) Suggestion(id int64) model.FeedbackSuggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.suggestions[id]
}

func (s *Store) PostCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.posts)
}

func (s *Store) VoteCount(postID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.st.votes {
		if k.postID == postID {
			n++
		}
	}
	return n
}

func (s *Store) HasVote(postID, principalID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.st.votes[voteKey{postID, principalID}]
	return ok
}

func (s *Store) SignalsFor(itemID int64) []model.FeedbackSignal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signalsForLocked(itemID)
}

func (s *Store) SuggestionsFor(itemID int64) []model.FeedbackSuggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suggestionsLocked(func(sug model.FeedbackSuggestion) bool {
		return sug.RawFeedbackItemID == itemID
	})
}

func (s *Store) signalsForLocked(itemID int64) []model.FeedbackSignal {
	var out []model.FeedbackSignal
	for _, sig := range s.st.signals {
		if sig.RawFeedbackItemID == itemID {
			out = append(out, sig)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) suggestionsLocked(keep func(model.FeedbackSuggestion) bool) []model.FeedbackSuggestion {
	var out []model.FeedbackSuggestion
	for _, sug := range s.st.suggestions {
		if keep(sug) {
			out = append(out, sug)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- Sources ----------------------------------------------------------------

type sourceStore struct{ s *Store }

func (v sourceStore) GetByID(_ context.Context, id int64) (*model.FeedbackSource, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.fault("sources.GetByID"); err != nil {
		return nil, err
	}
	src, ok := v.s.st.sources[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &src, nil
}

func (v sourceStore) Create(_ context.Context, src *model.FeedbackSource) (*model.FeedbackSource, error) {
	created := v.s.AddSource(*src)
	return &created, nil
}

// --- Raw items --------------------------------------------------------------

type rawItemStore struct{ s *Store }

func (v rawItemStore) CreateOrGet(_ context.Context, item *model.RawFeedbackItem) (*model.RawFeedbackItem, bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.fault("raw_items.CreateOrGet"); err != nil {
		return nil, false, err
	}
	for _, existing := range v.s.st.items {
		if existing.DedupeKey == item.DedupeKey {
			return &existing, false, nil
		}
	}
	now := v.s.Now()
	row := *item
	row.ContextEnvelope = append(json.RawMessage(nil), item.ContextEnvelope...)
	if len(row.ContextEnvelope) == 0 {
		row.ContextEnvelope = json.RawMessage("{}")
	}
	row.ProcessingState = model.ProcessingStateReadyForExtraction
	row.StateChangedAt = now
	row.CreatedAt = now
	row.UpdatedAt = now
	row.AttemptCount = 0
	row.LastError = nil
	v.s.st.items[row.ID] = row
	return &row, true, nil
}

func (v rawItemStore) GetByID(_ context.Context, id int64) (*model.RawFeedbackItem, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.fault("raw_items.GetByID"); err != nil {
		return nil, err
	}
	item, ok := v.s.st.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &item, nil
}

func (v rawItemStore) Claim(_ context.Context, id int64, staleBefore time.Time, allowFailed bool) (*model.RawFeedbackItem, bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.fault("raw_items.Claim"); err != nil {
		return nil, false, err
	}
	item, ok := v.s.st.items[id]
	if !ok {
		return nil, false, nil
	}
	claimable := item.ProcessingState == model.ProcessingStateReadyForExtraction ||
		(item.ProcessingState == model.ProcessingStateExtracting && item.StateChangedAt.Before(staleBefore)) ||
		(item.ProcessingState == model.ProcessingStateFailed && allowFailed)
	if !claimable {
		return nil, false, nil
	}
	now := v.s.Now()
	item.ProcessingState = model.ProcessingStateExtracting
	item.StateChangedAt = now
	item.UpdatedAt = now
	item.AttemptCount++
	v.s.st.items[id] = item
	return &item, true, nil
}

func (v rawItemStore) MarkCompleted(_ context.Context, id int64, attempt int32) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.fault("raw_items.MarkCompleted"); err != nil {
		return false, err
	}
	item, ok := v.s.st.items[id]
	if !ok || item.ProcessingState != model.ProcessingStateExtracting || item.AttemptCount != attempt {
		return false, nil
	}
	now := v.s.Now()
	item.ProcessingState = model.ProcessingStateCompleted
	item.StateChangedAt = now
	item.UpdatedAt = now
	item.LastError = nil
	v.s.st.items[id] = item
	return true, nil
}

func (v rawItemStore) MarkFailed(_ context.Context, id int64, attempt int32, lastError string) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.fault("raw_items.MarkFailed"); err != nil {
		return false, err
	}
	item, ok := v.s.st.items[id]
	if !ok || item.ProcessingState != model.ProcessingStateExtracting || item.AttemptCount != attempt {
		return false, nil
	}
	now := v.s.Now()
	item.ProcessingState = model.ProcessingStateFailed
	item.StateChangedAt = now
	item.UpdatedAt = now
	item.LastError = &lastError
	v.s.st.items[id] = item
	return true, nil
}

func (v rawItemStore) ResetFailed(_ context.Context, id int64) (*model.RawFeedbackItem, bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.fault("raw_items.ResetFailed"); err != nil {
		return nil, false, err
	}
	item, ok := v.s.st.items[id]
	if !ok || item.ProcessingState != model.ProcessingStateFailed {
		return nil, false, nil
	}
	now := v.s.Now()
	item.ProcessingState = model.ProcessingStateReadyForExtraction
	item.StateChangedAt = now
	item.UpdatedAt = now
	item.LastError = nil
	item.AttemptCount = 0
	v.s.st.items[id] = item
	return &item, true, nil
}

func (v rawItemStore) TouchStaleReady(_ context.Context, staleBefore time.Time, limit int32) ([]model.RawFeedbackItem, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.fault("raw_items.TouchStaleReady"); err != nil {
		return nil, err
	}
	var stale []model.RawFeedbackItem
	for _, item := range v.s.st.items {
		if item.ProcessingState == model.ProcessingStateReadyForExtraction && item.StateChangedAt.Before(staleBefore) {
			stale = append(stale, item)
		}
	}
	sort.Slice(stale, func(i, j int) bool {
		if !stale[i].StateChangedAt.Equal(stale[j].StateChangedAt) {
			return stale[i].StateChangedAt.Before(stale[j].StateChangedAt)
		}
		return stale[i].ID < stale[j].ID
	})
	if len(stale) > int(max(limit, 0)) {
		stale = stale[:max(limit, 0)]
	}
	now := v.s.Now()
	for i := range stale {
		stale[i].StateChangedAt = now
		stale[i].UpdatedAt = now
		v.s.st.items[stale[i].ID] = stale[i]
	}
	return stale, nil
}

// --- Signals ----------------------------------------------------------------

type signalStore struct{ s *Store }

func (v signalStore) Create(_ context.Context, sig *model.FeedbackSignal) (*model.FeedbackSignal, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.fault("signals.Create"); err != nil {
		return nil, err
	}
	row := *sig
	row.CreatedAt = v.s.Now()
	v.s.st.signals[row.ID] = row
	return &row, nil
}

func (v signalStore) ListByItem(_ context.Context, rawItemID int64) ([]model.FeedbackSignal, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return v.s.signalsForLocked(rawItemID), nil
}

// --- Suggestions ------------------------------------------------------------

type suggestionStore struct{ s *Store }

func (v suggestionStore) Create(_ context.Context, sug *model.FeedbackSuggestion) (*model.FeedbackSuggestion, bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.fault("suggestions.Create"); err != nil {
		return nil, false, err
	}
	for _, existing := range v.s.st.suggestions {
		if existing.RawFeedbackItemID == sug.RawFeedbackItemID &&
			existing.SuggestionType == sug.SuggestionType &&
			existing.IsPending() {
			return nil, false, nil
		}
	}
	now := v.s.Now()
	row := *sug
	row.Status = model.SuggestionStatusPending
	row.ResultPostID = nil
	row.ResolvedAt = nil
	row.ResolvedByPrincipalID = nil
	row.CreatedAt = now
	row.UpdatedAt = now
	v.s.st.suggestions[row.ID] = row
	return &row, true, nil
}

func (v suggestionStore) GetByID(_ context.Context, id int64) (*model.FeedbackSuggestion, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	sug, ok := v.s.st.suggestions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &sug, nil
}

func (v suggestionStore) GetForUpdate(ctx context.Context, id int64) (*model.FeedbackSuggestion, error) {
	return v.GetByID(ctx, id)
}

func (v suggestionStore) GetPending(_ context.Context, rawItemID int64, suggestionType model.SuggestionType) (*model.FeedbackSuggestion, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, sug := range v.s.st.suggestions {
		if sug.RawFeedbackItemID == rawItemID && sug.SuggestionType == suggestionType && sug.IsPending() {
			return &sug, nil
		}
	}
	return nil, store.ErrNotFound
}

func (v suggestionStore) Resolve(_ context.Context, id int64, status model.SuggestionStatus, resultPostID *int64, principalID int64) (*model.FeedbackSuggestion, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.fault("suggestions.Resolve"); err != nil {
		return nil, err
	}
	sug, ok := v.s.st.suggestions[id]
	if !ok || !sug.IsPending() {
		return nil, store.ErrNotFound
	}
	now := v.s.Now()
	sug.Status = status
	sug.ResultPostID = resultPostID
	sug.ResolvedAt = &now
	sug.ResolvedByPrincipalID = &principalID
	sug.UpdatedAt = now
	v.s.st.suggestions[id] = sug
	return &sug, nil
}

func (v suggestionStore) ListByItem(_ context.Context, rawItemID int64) ([]model.FeedbackSuggestion, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return v.s.suggestionsLocked(func(sug model.FeedbackSuggestion) bool {
		return sug.RawFeedbackItemID == rawItemID
	}), nil
}

func (v suggestionStore) List(_ context.Context, f model.SuggestionFilter) ([]model.FeedbackSuggestion, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	all := v.s.suggestionsLocked(func(sug model.FeedbackSuggestion) bool {
		switch {
		case f.WorkspaceID != nil && sug.WorkspaceID != *f.WorkspaceID:
			return false
		case f.RawItemID != nil && sug.RawFeedbackItemID != *f.RawItemID:
			return false
		case f.Status != nil && sug.Status != *f.Status:
			return false
		case f.Type != nil && sug.SuggestionType != *f.Type:
			return false
		}
		return true
	})
	// Newest first, matching the SQL ordering.
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	limit := int(f.Limit)
	if limit <= 0 {
		limit = 50
	}
	offset := int(max(f.Offset, 0))
	if offset >= len(all) {
		return []model.FeedbackSuggestion{}, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

// --- Posts ------------------------------------------------------------------

type postStore struct{ s *Store }

func (v postStore) GetByID(_ context.Context, id int64) (*model.Post, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	post, ok := v.s.st.posts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &post, nil
}

func (v postStore) Create(_ context.Context, post *model.Post) (*model.Post, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.fault("posts.Create"); err != nil {
		return nil, err
	}
	now := v.s.Now()
	row := *post
	row.VoteCount = 0
	row.CreatedAt = now
	row.UpdatedAt = now
	v.s.st.posts[row.ID] = row
	return &row, nil
}

func (v postStore) ListCandidates(_ context.Context, workspaceID int64, query []float32, limit int32) ([]model.PostCandidate, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.fault("posts.ListCandidates"); err != nil {
		return nil, err
	}
	type scored struct {
		c    model.PostCandidate
		dist float64
	}
	var all []scored
	for _, post := range v.s.st.posts {
		if post.WorkspaceID != workspaceID || len(post.Embedding) == 0 {
			continue
		}
		all = append(all, scored{
			c: model.PostCandidate{
				ID:        post.ID,
				Title:     post.Title,
				Embedding: post.Embedding,
				CreatedAt: post.CreatedAt,
			},
			dist: cosineDistance(query, post.Embedding),
		})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].dist != all[j].dist {
			return all[i].dist < all[j].dist
		}
		if !all[i].c.CreatedAt.Equal(all[j].c.CreatedAt) {
			return all[i].c.CreatedAt.After(all[j].c.CreatedAt)
		}
		return all[i].c.ID > all[j].c.ID
	})
	// Same as SQL LIMIT: zero rows for a zero limit.
	if len(all) > int(max(limit, 0)) {
		all = all[:max(limit, 0)]
	}
	out := make([]model.PostCandidate, len(all))
	for i, a := range all {
		out[i] = a.c
	}
	return out, nil
}

func (v postStore) AddVote(_ context.Context, postID, principalID int64) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.fault("posts.AddVote"); err != nil {
		return false, err
	}
	key := voteKey{postID, principalID}
	if _, ok := v.s.st.votes[key]; ok {
		return false, nil
	}
	v.s.st.votes[key] = struct{}{}
	return true, nil
}

func (v postStore) IncrementVoteCount(_ context.Context, postID int64, delta int32) (int32, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.fault("posts.IncrementVoteCount"); err != nil {
		return 0, err
	}
	post, ok := v.s.st.posts[postID]
	if !ok {
		return 0, store.ErrNotFound
	}
	post.VoteCount += delta
	post.UpdatedAt = v.s.Now()
	v.s.st.posts[postID] = post
	return post.VoteCount, nil
}

// --- Boards -----------------------------------------------------------------

type boardStore struct{ s *Store }

func (v boardStore) GetByID(_ context.Context, id int64) (*model.Board, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	board, ok := v.s.st.boards[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &board, nil
}

func (v boardStore) GetBySlug(_ context.Context, workspaceID int64, slug string) (*model.Board, error) {
	return v.first(func(b model.Board) bool {
		return b.WorkspaceID == workspaceID && b.Slug == slug
	})
}

func (v boardStore) GetForSignalType(_ context.Context, workspaceID int64, signalType model.SignalType) (*model.Board, error) {
	return v.first(func(b model.Board) bool {
		return b.WorkspaceID == workspaceID && b.SignalType != nil && *b.SignalType == signalType
	})
}

func (v boardStore) GetDefault(_ context.Context, workspaceID int64) (*model.Board, error) {
	return v.first(func(b model.Board) bool {
		return b.WorkspaceID == workspaceID && b.IsDefault
	})
}

func (v boardStore) first(keep func(model.Board) bool) (*model.Board, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var found *model.Board
	for _, b := range v.s.st.boards {
		if keep(b) && (found == nil || b.ID < found.ID) {
			b := b
			found = &b
		}
	}
	if found == nil {
		return nil, store.ErrNotFound
	}
	return found, nil
}

func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 2
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
