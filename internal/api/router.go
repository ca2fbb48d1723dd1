package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/your-org/vdl/internal/api/handlers"
	"github.com/your-org/vdl/internal/artifact"
	"github.com/your-org/vdl/internal/auth"
	"github.com/your-org/vdl/internal/download"
	"github.com/your-org/vdl/internal/ingest"
	"github.com/your-org/vdl/internal/web"
)

type RouterConfig struct {
	APIKey    string
	Downloads *download.Service
	YTDLP     *ingest.YTDLP
	Workspace *artifact.Workspace
	// RateLimit is shared by both download routes; 0 disables it.
	RateLimit float64
	RateBurst int
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())
	r.SetHTMLTemplate(web.Templates())

	// System endpoints
	systemH := handlers.NewSystemHandler(cfg.YTDLP, cfg.Workspace)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	limit := RateLimitMiddleware(limiter)

	// Browser form
	pageH := handlers.NewPageHandler("")
	downloadH := handlers.NewDownloadHandler(cfg.Downloads)
	r.GET("/", pageH.Home)
	r.POST("/download", limit, downloadH.Download)

	// API v1 (with auth)
	v1 := r.Group("/v1")
	v1.Use(auth.APIKeyMiddleware(cfg.APIKey))
	v1.POST("/downloads", limit, downloadH.Download)

	return r
}
