package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/QuackbackIO/quackback-sub007/internal/http/dto"
	"github.com/QuackbackIO/quackback-sub007/internal/service"
)

type VoteHandler struct {
	service service.VoteService
}

func NewVoteHandler(service service.VoteService) *VoteHandler {
	return &VoteHandler{service: service}
}

func (h *VoteHandler) Cast(c *gin.Context) {
	ctx := c.Request.Context()

	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: principal_id is required"})
		return
	}

	result, err := h.service.Cast(ctx, postID, req.PrincipalID)
	if err != nil {
		respondError(ctx, c, err, "cast vote")
		return
	}
	c.JSON(http.StatusOK, dto.CastVoteResponse{Inserted: result.Inserted, VoteCount: result.VoteCount})
}
