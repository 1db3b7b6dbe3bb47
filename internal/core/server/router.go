package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gin-gorm-scaffold/internal/core/logger"
)

type CORS struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	AllowCredentials bool
	MaxAge           time.Duration
}

type Options struct {
	Mode string // gin.DebugMode / gin.ReleaseMode / gin.TestMode
	CORS CORS
	// Recovery is installed first; nil means no recovery.
	Recovery gin.HandlerFunc
}

func corsConfig(o CORS) cors.Config {
	cfg := cors.DefaultConfig()
	if len(o.AllowOrigins) == 0 || (len(o.AllowOrigins) == 1 && o.AllowOrigins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = o.AllowOrigins
	}
	if len(o.AllowMethods) > 0 {
		cfg.AllowMethods = o.AllowMethods
	}
	if len(o.AllowHeaders) > 0 {
		cfg.AllowHeaders = o.AllowHeaders
	}
	cfg.ExposeHeaders = []string{"X-Request-ID"}
	// 通配来源不能携带凭证
	cfg.AllowCredentials = o.AllowCredentials && !cfg.AllowAllOrigins
	if o.MaxAge > 0 {
		cfg.MaxAge = o.MaxAge
	}
	return cfg
}

// NewRouter builds a bare engine with recovery and CORS; gin's own
// debug output goes through l.
func NewRouter(l *zap.Logger, o Options) *gin.Engine {
	if o.Mode != "" {
		gin.SetMode(o.Mode)
	}
	gin.DefaultWriter = logger.ToWriter(l.Named("gin"), zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(l.Named("gin"), zapcore.ErrorLevel)

	r := gin.New()
	if o.Recovery != nil {
		r.Use(o.Recovery)
	}
	r.Use(cors.New(corsConfig(o.CORS)))
	return r
}

func BuildServer(addr string, handler http.Handler, rt, wt, it time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       rt,
		ReadHeaderTimeout: rt,
		WriteTimeout:      wt,
		IdleTimeout:       it,
		MaxHeaderBytes:    1 << 20, // 1MB
	}
}

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }
