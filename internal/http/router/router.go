package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/QuackbackIO/quackback-sub007/common/metrics"
	"github.com/QuackbackIO/quackback-sub007/internal/http/handler"
	"github.com/QuackbackIO/quackback-sub007/internal/http/middleware"
	"github.com/QuackbackIO/quackback-sub007/internal/service"
)

type RouterConfig struct {
	TraceHeaderName string
	AdminAPIKey     string
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RequireAdminKey(cfg.AdminAPIKey))
	{
		feedbackHandler := handler.NewFeedbackHandler(services.FeedbackIngest(), cfg.TraceHeaderName)
		FeedbackRouter(v1.Group("/feedback"), feedbackHandler)

		suggestionHandler := handler.NewSuggestionHandler(services.Suggestions())
		SuggestionRouter(v1.Group("/suggestions"), suggestionHandler)

		voteHandler := handler.NewVoteHandler(services.Votes())
		PostRouter(v1.Group("/posts"), voteHandler)
	}
}
