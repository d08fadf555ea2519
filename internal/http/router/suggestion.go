package router

import (
	"github.com/gin-gonic/gin"

	"github.com/QuackbackIO/quackback-sub007/internal/http/handler"
)

func SuggestionRouter(router *gin.RouterGroup, handler *handler.SuggestionHandler) {
	router.GET("", handler.List)
	router.GET("/:id", handler.Get)
	router.POST("/:id/accept", handler.Accept)
	router.POST("/:id/dismiss", handler.Dismiss)
}
