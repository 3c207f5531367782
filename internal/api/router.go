package api

import (
	"net/http"
	"time"

	"AwardSync/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
)

// NewRouter 注册中间件与路由
func NewRouter(cfg *config.ServerConfig, h *SyncHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 注册ppof 方便调试和监测性能问题
	pprof.Register(r)

	r.GET("/", h.Index)
	r.GET("/healthz", h.Health)

	sync := r.Group("/sync")
	sync.POST("/run", h.RunSync)
	sync.POST("/publish", h.RunPublish)
	sync.GET("/runs", h.ListRuns)
	sync.GET("/duplicates", h.ListDuplicates)

	return r
}
