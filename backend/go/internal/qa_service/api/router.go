package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRouter 配置并返回一个 Gin 引擎实例。
// CORS、请求 ID 与访问日志由外层的 net/http 中间件负责。
func SetupRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", h.home)

	api := router.Group("/api")
	{
		api.GET("/", h.askGet)
		api.POST("/", h.askPost)
	}

	return router
}
