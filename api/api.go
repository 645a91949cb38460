package api

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/vigilhq/vigil"
	"github.com/vigilhq/vigil/api/middleware"
	"github.com/vigilhq/vigil/config"
)

type Api struct {
	vigil  *vigil.Vigil
	router *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/messages/validate", a.ValidateMessage)
	router.POST("/webhooks/chat", a.ChatWebhook)

	router.GET("/moderation-logs", a.GetModerationLogs)
	router.GET("/moderation-logs/messages/:message_id", a.GetModerationLogByMessageID)

	return a.router
}

func NewAPI(v *vigil.Vigil) (*Api, error) {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	r := gin.Default()
	r.Use(otelgin.Middleware(conf.ProjectName))
	r.Use(middleware.RateLimitMiddleware(conf))
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{vigil: v, router: r}, nil
}
