package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/QuackbackIO/quackback-sub007/internal/http/dto"
	"github.com/QuackbackIO/quackback-sub007/internal/mapper"
	"github.com/QuackbackIO/quackback-sub007/internal/model"
	"github.com/QuackbackIO/quackback-sub007/internal/service"
)

type FeedbackHandler struct {
	service     service.FeedbackIngestService
	traceHeader string
}

func NewFeedbackHandler(service service.FeedbackIngestService, traceHeader string) *FeedbackHandler {
	return &FeedbackHandler{
		service:     service,
		traceHeader: traceHeader,
	}
}

func (h *FeedbackHandler) Ingest(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.IngestFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid ingest request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := service.IngestParams{
		SourceID:        req.SourceID,
		SourceType:      model.SourceType(req.SourceType),
		ExternalID:      req.ExternalID,
		DedupeKey:       req.DedupeKey,
		Subject:         req.Subject,
		Body:            req.Body,
		Author:          model.Author{Name: req.Author.Name, Email: req.Author.Email},
		PrincipalID:     req.PrincipalID,
		ContextEnvelope: req.ContextEnvelope,
	}

	if len(req.Payload) > 0 {
		if err := h.applyPayload(c, &params, req.Payload); err != nil {
			slog.WarnContext(ctx, "unmappable source payload", "error", err, "source_type", req.SourceType)
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
	}

	if traceID := h.traceID(c); traceID != "" {
		params.TraceID = &traceID
	}

	result, err := h.service.Ingest(ctx, params)
	if err != nil {
		respondError(ctx, c, err, "ingest feedback")
		return
	}

	resp := dto.IngestFeedbackResponse{
		RawItemID:  result.Item.ID,
		DedupeKey:  result.DedupeKey,
		Enqueued:   result.Submission != nil,
		Duplicated: result.Duplicated,
	}
	if result.Submission != nil {
		resp.MessageID = result.Submission.MessageID
	}
	c.JSON(http.StatusAccepted, resp)
}

func (h *FeedbackHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	details, err := h.service.Get(ctx, id)
	if err != nil {
		respondError(ctx, c, err, "get feedback")
		return
	}

	c.JSON(http.StatusOK, toFeedbackItemResponse(details))
}

func (h *FeedbackHandler) Resubmit(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var traceID *string
	if t := h.traceID(c); t != "" {
		traceID = &t
	}

	sub, err := h.service.Resubmit(ctx, id, traceID)
	if err != nil {
		respondError(ctx, c, err, "resubmit feedback")
		return
	}

	c.JSON(http.StatusAccepted, dto.SubmissionResponse{RawItemID: sub.RawItemID, MessageID: sub.MessageID})
}

// applyPayload lets the source's mapper fill in fields the request left empty.
func (h *FeedbackHandler) applyPayload(c *gin.Context, params *service.IngestParams, payload json.RawMessage) error {
	m, err := mapper.For(params.SourceType)
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return err
	}

	headers := make(map[string]string, len(c.Request.Header))
	for k := range c.Request.Header {
		headers[k] = c.GetHeader(k)
	}

	fb, err := m.Map(c.Request.Context(), body, headers)
	if err != nil {
		return err
	}

	if params.ExternalID == "" {
		params.ExternalID = fb.ExternalID
	}
	if params.Subject == nil {
		params.Subject = fb.Subject
	}
	if params.Body == "" {
		params.Body = fb.Body
	}
	if params.Author.Name == nil && params.Author.Email == nil {
		params.Author = fb.Author
	}
	if len(params.ContextEnvelope) == 0 {
		params.ContextEnvelope = fb.ContextEnvelope
	}
	return nil
}

func (h *FeedbackHandler) traceID(c *gin.Context) string {
	if traceID := c.GetHeader(h.traceHeader); traceID != "" {
		return traceID
	}
	if spanCtx := trace.SpanContextFromContext(c.Request.Context()); spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func toFeedbackItemResponse(details *service.ItemDetails) dto.FeedbackItemResponse {
	item := details.Item
	signals := make([]dto.SignalResponse, 0, len(details.Signals))
	for _, sig := range details.Signals {
		signals = append(signals, dto.SignalResponse{
			ID:           sig.ID,
			SignalType:   string(sig.SignalType),
			Summary:      sig.Summary,
			Title:        sig.Title,
			HasEmbedding: sig.HasEmbedding(),
			CreatedAt:    sig.CreatedAt,
		})
	}

	return dto.FeedbackItemResponse{
		ID:              item.ID,
		WorkspaceID:     item.WorkspaceID,
		SourceID:        item.SourceID,
		SourceType:      string(item.SourceType),
		ExternalID:      item.ExternalID,
		DedupeKey:       item.DedupeKey,
		Subject:         item.Subject,
		Body:            item.Body,
		AuthorName:      item.Author.Name,
		AuthorEmail:     item.Author.Email,
		ProcessingState: string(item.ProcessingState),
		StateChangedAt:  item.StateChangedAt,
		LastError:       item.LastError,
		AttemptCount:    item.AttemptCount,
		ContextEnvelope: item.ContextEnvelope,
		Signals:         signals,
		CreatedAt:       item.CreatedAt,
	}
}
