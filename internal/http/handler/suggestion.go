package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/QuackbackIO/quackback-sub007/internal/http/dto"
	"github.com/QuackbackIO/quackback-sub007/internal/model"
	"github.com/QuackbackIO/quackback-sub007/internal/service"
)

type SuggestionHandler struct {
	service service.SuggestionService
}

func NewSuggestionHandler(service service.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{service: service}
}

func (h *SuggestionHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var q dto.ListSuggestionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := model.SuggestionFilter{
		WorkspaceID: q.WorkspaceID,
		RawItemID:   q.RawItemID,
		Limit:       q.Limit,
		Offset:      q.Offset,
	}
	if q.Status != nil {
		status := model.SuggestionStatus(*q.Status)
		filter.Status = &status
	}
	if q.Type != nil {
		t := model.SuggestionType(*q.Type)
		filter.Type = &t
	}

	suggestions, err := h.service.List(ctx, filter)
	if err != nil {
		respondError(ctx, c, err, "list suggestions")
		return
	}

	resp := dto.ListSuggestionsResponse{Suggestions: make([]dto.SuggestionResponse, 0, len(suggestions))}
	for i := range suggestions {
		resp.Suggestions = append(resp.Suggestions, toSuggestionResponse(&suggestions[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SuggestionHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	sug, err := h.service.Get(ctx, id)
	if err != nil {
		respondError(ctx, c, err, "get suggestion")
		return
	}
	c.JSON(http.StatusOK, toSuggestionResponse(sug))
}

func (h *SuggestionHandler) Accept(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.ResolveSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: principal_id is required"})
		return
	}

	post, err := h.service.Accept(ctx, id, req.PrincipalID)
	if err != nil {
		respondError(ctx, c, err, "accept suggestion")
		return
	}
	c.JSON(http.StatusOK, toPostResponse(post))
}

func (h *SuggestionHandler) Dismiss(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.ResolveSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: principal_id is required"})
		return
	}

	sug, err := h.service.Dismiss(ctx, id, req.PrincipalID)
	if err != nil {
		respondError(ctx, c, err, "dismiss suggestion")
		return
	}
	c.JSON(http.StatusOK, toSuggestionResponse(sug))
}

func toSuggestionResponse(s *model.FeedbackSuggestion) dto.SuggestionResponse {
	return dto.SuggestionResponse{
		ID:                    s.ID,
		RawFeedbackItemID:     s.RawFeedbackItemID,
		WorkspaceID:           s.WorkspaceID,
		FeedbackSignalID:      s.FeedbackSignalID,
		SuggestionType:        string(s.SuggestionType),
		Status:                string(s.Status),
		TargetPostID:          s.TargetPostID,
		SimilarityScore:       s.SimilarityScore,
		SuggestedTitle:        s.SuggestedTitle,
		SuggestedBody:         s.SuggestedBody,
		BoardID:               s.BoardID,
		Reasoning:             s.Reasoning,
		ResultPostID:          s.ResultPostID,
		ResolvedAt:            s.ResolvedAt,
		ResolvedByPrincipalID: s.ResolvedByPrincipalID,
		CreatedAt:             s.CreatedAt,
	}
}

func toPostResponse(p *model.Post) dto.PostResponse {
	return dto.PostResponse{
		ID:          p.ID,
		WorkspaceID: p.WorkspaceID,
		BoardID:     p.BoardID,
		Title:       p.Title,
		Body:        p.Body,
		VoteCount:   p.VoteCount,
		CreatedAt:   p.CreatedAt,
	}
}
