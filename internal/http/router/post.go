package router

import (
	"github.com/gin-gonic/gin"

	"github.com/QuackbackIO/quackback-sub007/internal/http/handler"
)

func PostRouter(router *gin.RouterGroup, handler *handler.VoteHandler) {
	router.POST("/:id/votes", handler.Cast)
}
