package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"gin-gorm-scaffold/internal/core/auth"
	"gin-gorm-scaffold/internal/core/config"
	"gin-gorm-scaffold/internal/core/server"
	"gin-gorm-scaffold/internal/domain"
	"gin-gorm-scaffold/internal/service"
	mdw "gin-gorm-scaffold/internal/transport/http/middleware"
)

// Deps is everything the engines need from main.
type Deps struct {
	Log        *zap.Logger
	RequestLog *zap.Logger // 访问日志，nil 时用 Log
	Cfg        *config.Config
	JWT        *auth.JWTer
	Users      *service.UserService
	UserRepo   domain.UserRepository
	Modules    *Registry
}

func ginMode(env string) string {
	switch env {
	case "prod", "production":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}

func newEngine(d Deps) *gin.Engine {
	c := d.Cfg.CORS
	r := server.NewRouter(d.Log, server.Options{
		Mode:     ginMode(d.Cfg.App.Env),
		Recovery: mdw.Recovery(d.Log),
		CORS: server.CORS{
			AllowOrigins:     c.AllowOrigins,
			AllowMethods:     c.AllowMethods,
			AllowHeaders:     c.AllowHeaders,
			AllowCredentials: c.AllowCredentials,
			MaxAge:           time.Duration(c.MaxAgeSec) * time.Second,
		},
	})
	r.Use(chain(d)...)

	// 健康检查
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "OK"}) }
	r.GET("/health", ok)
	r.GET("/status", ok)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// chain builds the protective middleware from app.http; a zero limit
// leaves that guard off.
func chain(d Deps) []gin.HandlerFunc {
	h := d.Cfg.App.HTTP
	hs := []gin.HandlerFunc{mdw.RequestID(), mdw.Metrics()}
	if d.Cfg.Log.LogRequests {
		reqLog := d.RequestLog
		if reqLog == nil {
			reqLog = d.Log
		}
		hs = append(hs, mdw.AccessLog(reqLog))
	}
	if h.RateLimitRPS > 0 {
		hs = append(hs, mdw.RateLimit(rate.Limit(h.RateLimitRPS), h.RateLimitBurst))
	}
	if h.PerIPRPS > 0 {
		hs = append(hs, mdw.RateLimitPerIP(rate.Limit(h.PerIPRPS), h.PerIPBurst))
	}
	if h.MaxConcurrent > 0 {
		hs = append(hs, mdw.ConcurrencyLimit(h.MaxConcurrent))
	}
	if h.MaxBodyBytes > 0 {
		hs = append(hs, mdw.MaxBodyBytes(h.MaxBodyBytes))
	}
	if h.RequestTimeoutSec > 0 {
		hs = append(hs, mdw.Timeout(time.Duration(h.RequestTimeoutSec)*time.Second))
	}
	return hs
}
