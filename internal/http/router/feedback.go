package router

import (
	"github.com/gin-gonic/gin"

	"github.com/QuackbackIO/quackback-sub007/internal/http/handler"
)

func FeedbackRouter(router *gin.RouterGroup, handler *handler.FeedbackHandler) {
	router.POST("/ingest", handler.Ingest)
	router.GET("/:id", handler.Get)
	router.POST("/:id/resubmit", handler.Resubmit)
}
