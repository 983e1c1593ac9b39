package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/glitch-app/glitch/docs"
	"github.com/glitch-app/glitch/internal/config"
	"github.com/glitch-app/glitch/internal/middleware"
	"github.com/glitch-app/glitch/internal/modules/handler"
	"github.com/glitch-app/glitch/internal/modules/serializer"
	"github.com/glitch-app/glitch/internal/telemetry"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	Config        *config.Config
	Log           *zap.Logger
	Auth          middleware.Authenticator
	QuestHandler  *handler.QuestHandler
	ReviewHandler *handler.ReviewHandler
	ChatHandler   *handler.ChatHandler
	UserHandler   *handler.UserHandler
	MediaHandler  *handler.MediaHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	// Initialize logger for serializer package
	serializer.SetLogger(d.Log)

	r := gin.New()
	r.Use(gin.Recovery())

	if telemetry.Enabled(d.Config) {
		r.Use(middleware.OtelTracing(d.Config.App.Name))
		r.Use(middleware.TraceID())
	}

	r.Use(middleware.ZapLogger(d.Log))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })

	// swagger
	r.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		v1.Use(middleware.Auth(d.Auth))

		v1.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "pong"}) })

		quests := v1.Group("/quests")
		{
			quests.POST("", d.QuestHandler.CreateQuest)
			quests.GET("/nearby", d.QuestHandler.NearbyQuests)
			quests.GET("/quota", d.QuestHandler.GetQuota)
			quests.GET("/:quest_id", d.QuestHandler.GetQuest)
			quests.GET("/:quest_id/access", d.QuestHandler.GetAccess)
			quests.POST("/:quest_id/join", d.QuestHandler.JoinQuest)
			quests.DELETE("/:quest_id/leave", d.QuestHandler.LeaveQuest)

			quests.GET("/:quest_id/reviews", d.ReviewHandler.ListReviews)
			quests.POST("/:quest_id/reviews", d.ReviewHandler.AddReview)

			quests.GET("/:quest_id/messages", d.ChatHandler.ListMessages)
			quests.POST("/:quest_id/messages", d.ChatHandler.SendMessage)
		}

		users := v1.Group("/users")
		{
			users.GET("/me", d.UserHandler.GetMe)
			users.PATCH("/me", d.UserHandler.UpdateMe)
			users.POST("/me/push-token", d.UserHandler.SetPushToken)
			users.GET("/:user_id", d.UserHandler.GetUser)
			users.POST("/:user_id/follow", d.UserHandler.Follow)
			users.DELETE("/:user_id/follow", d.UserHandler.Unfollow)
		}

		media := v1.Group("/media")
		{
			media.POST("/videos", d.MediaHandler.UploadVideo)
			media.DELETE("/videos", d.MediaHandler.DeleteVideo)
		}
	}
	return r
}
