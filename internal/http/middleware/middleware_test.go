package middleware_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/QuackbackIO/quackback-sub007/internal/http/middleware"
)

var _ = Describe("Middleware", func() {
	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
	})

	serve := func(router *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	Describe("RequireAdminKey", func() {
		It("lets everything through when no key is configured", func() {
			router := gin.New()
			router.GET("/x", middleware.RequireAdminKey(""), ok)

			Expect(serve(router, nil).Code).To(Equal(http.StatusNoContent))
		})

		DescribeTable("checks the configured key",
			func(headers map[string]string, want int) {
				router := gin.New()
				router.GET("/x", middleware.RequireAdminKey("s3cret"), ok)

				Expect(serve(router, headers).Code).To(Equal(want))
			},
			Entry("admin header", map[string]string{"X-Admin-Key": "s3cret"}, http.StatusNoContent),
			Entry("bearer token", map[string]string{"Authorization": "Bearer s3cret"}, http.StatusNoContent),
			Entry("wrong key", map[string]string{"X-Admin-Key": "nope"}, http.StatusUnauthorized),
			Entry("missing key", map[string]string{}, http.StatusUnauthorized),
		)
	})

	Describe("Recovery", func() {
		It("turns a panic into a 500", func() {
			router := gin.New()
			router.Use(middleware.Recovery())
			router.GET("/x", func(*gin.Context) { panic("boom") })

			w := serve(router, nil)
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(w.Body.String()).To(MatchJSON(`{"error": "internal server error"}`))
		})
	})

	Describe("Logger", func() {
		It("echoes an incoming request id", func() {
			router := gin.New()
			router.Use(middleware.Logger())
			router.GET("/x", ok)

			w := serve(router, map[string]string{"X-Request-ID": "req-1"})
			Expect(w.Header().Get("X-Request-ID")).To(Equal("req-1"))
		})

		It("generates a request id when none is sent", func() {
			router := gin.New()
			router.Use(middleware.Logger())
			router.GET("/x", ok)

			w := serve(router, nil)
			Expect(w.Header().Get("X-Request-ID")).To(HaveLen(36))
		})
	})
})
