package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/QuackbackIO/quackback-sub007/internal/http/handler"
	"github.com/QuackbackIO/quackback-sub007/internal/model"
	"github.com/QuackbackIO/quackback-sub007/internal/service"
)

var _ = Describe("FeedbackHandler", func() {
	var (
		router *gin.Engine
		svc    *mockFeedbackService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockFeedbackService{}
		h := handler.NewFeedbackHandler(svc, "X-Trace-Id")
		router.POST("/feedback/ingest", h.Ingest)
		router.GET("/feedback/:id", h.Get)
		router.POST("/feedback/:id/resubmit", h.Resubmit)
	})

	post := func(path string, body any, headers map[string]string) *httptest.ResponseRecorder {
		raw, _ := json.Marshal(body)
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(raw))
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	Describe("Ingest", func() {
		It("returns 202 with the submission", func() {
			var captured service.IngestParams
			svc.ingestFn = func(_ context.Context, p service.IngestParams) (*service.IngestResult, error) {
				captured = p
				return &service.IngestResult{
					Item:       &model.RawFeedbackItem{ID: 42},
					DedupeKey:  "api:7:req-1",
					Submission: &service.Submission{RawItemID: 42, MessageID: "1-0"},
				}, nil
			}

			w := post("/feedback/ingest", map[string]any{
				"source_id":   7,
				"source_type": "api",
				"external_id": "req-1",
				"body":        "Please add dark mode",
			}, map[string]string{"X-Trace-Id": "abc123"})

			Expect(w.Code).To(Equal(http.StatusAccepted))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["raw_item_id"]).To(Equal("42"))
			Expect(resp["enqueued"]).To(BeTrue())
			Expect(resp["duplicated"]).To(BeFalse())

			Expect(captured.SourceType).To(Equal(model.SourceTypeAPI))
			Expect(captured.TraceID).To(HaveValue(Equal("abc123")))
		})

		It("reports duplicates as not enqueued", func() {
			svc.ingestFn = func(_ context.Context, _ service.IngestParams) (*service.IngestResult, error) {
				return &service.IngestResult{Item: &model.RawFeedbackItem{ID: 42}, DedupeKey: "k", Duplicated: true}, nil
			}

			w := post("/feedback/ingest", map[string]any{"source_id": 7, "source_type": "api", "external_id": "x", "body": "y"}, nil)

			Expect(w.Code).To(Equal(http.StatusAccepted))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["enqueued"]).To(BeFalse())
			Expect(resp["duplicated"]).To(BeTrue())
		})

		It("maps a raw ticketing payload through its mapper", func() {
			var captured service.IngestParams
			svc.ingestFn = func(_ context.Context, p service.IngestParams) (*service.IngestResult, error) {
				captured = p
				return &service.IngestResult{Item: &model.RawFeedbackItem{ID: 1}, DedupeKey: "k"}, nil
			}

			w := post("/feedback/ingest", map[string]any{
				"source_id":   7,
				"source_type": "ticketing",
				"payload": map[string]any{"ticket": map[string]any{
					"id":          99,
					"subject":     "Bulk edit",
					"description": "Edit many tickets at once",
					"requester":   map[string]any{"email": "grace@example.com"},
				}},
			}, nil)

			Expect(w.Code).To(Equal(http.StatusAccepted))
			Expect(captured.ExternalID).To(Equal("99"))
			Expect(captured.Subject).To(HaveValue(Equal("Bulk edit")))
			Expect(captured.Body).To(Equal("Edit many tickets at once"))
			Expect(captured.Author.Email).To(HaveValue(Equal("grace@example.com")))
		})

		It("returns 422 when the payload cannot be mapped", func() {
			w := post("/feedback/ingest", map[string]any{
				"source_id":   7,
				"source_type": "ticketing",
				"payload":     map[string]any{"nope": true},
			}, nil)

			Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
		})

		It("returns 400 on a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/feedback/ingest", bytes.NewBufferString(`{`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		DescribeTable("maps service errors",
			func(err error, status int) {
				svc.ingestFn = func(_ context.Context, _ service.IngestParams) (*service.IngestResult, error) {
					return nil, err
				}
				w := post("/feedback/ingest", map[string]any{"source_id": 7, "source_type": "api", "external_id": "x", "body": "y"}, nil)
				Expect(w.Code).To(Equal(status))
			},
			Entry("invalid input", service.ErrInvalidInput, http.StatusUnprocessableEntity),
			Entry("unknown source", service.ErrSourceNotFound, http.StatusNotFound),
			Entry("disabled source", service.ErrSourceDisabled, http.StatusConflict),
			Entry("anything else", errors.New("redis down"), http.StatusInternalServerError),
		)
	})

	Describe("Get", func() {
		It("returns the item and its signals", func() {
			svc.getFn = func(_ context.Context, id int64) (*service.ItemDetails, error) {
				return &service.ItemDetails{
					Item: &model.RawFeedbackItem{ID: id, ProcessingState: model.ProcessingStateCompleted},
					Signals: []model.FeedbackSignal{
						{ID: 5, SignalType: model.SignalTypeBugReport, Summary: "Export crashes", Embedding: []float32{1}},
					},
				}, nil
			}

			req := httptest.NewRequest(http.MethodGet, "/feedback/42", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["processing_state"]).To(Equal("completed"))
			Expect(resp["signals"]).To(HaveLen(1))
		})

		It("returns 400 for a non-numeric id", func() {
			req := httptest.NewRequest(http.MethodGet, "/feedback/abc", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 404 for an unknown item", func() {
			svc.getFn = func(_ context.Context, _ int64) (*service.ItemDetails, error) {
				return nil, service.ErrRawItemNotFound
			}
			req := httptest.NewRequest(http.MethodGet, "/feedback/42", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("Resubmit", func() {
		It("returns 202", func() {
			svc.resubmitFn = func(_ context.Context, id int64, _ *string) (*service.Submission, error) {
				return &service.Submission{RawItemID: id, MessageID: "2-0"}, nil
			}

			w := post("/feedback/42/resubmit", nil, nil)
			Expect(w.Code).To(Equal(http.StatusAccepted))
		})

		It("returns 409 when the item is not failed", func() {
			svc.resubmitFn = func(_ context.Context, _ int64, _ *string) (*service.Submission, error) {
				return nil, service.ErrNotResubmittable
			}

			w := post("/feedback/42/resubmit", nil, nil)
			Expect(w.Code).To(Equal(http.StatusConflict))
		})
	})
})
