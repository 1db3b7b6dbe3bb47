package healthcheck

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gin-gorm-scaffold/internal/core/cache"
)

const reportKey = "healthcheck:service-status"

// Module mounts /healthcheck under the API group.
type Module struct {
	uc    *UseCase
	cache *cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

// NewModule caches the service report for ttl when c is usable; a nil
// cache or ttl <= 0 probes on every request.
func NewModule(uc *UseCase, c *cache.Cache, ttl time.Duration, l *zap.Logger) *Module {
	if l == nil {
		l = zap.NewNop()
	}
	return &Module{uc: uc, cache: c, ttl: ttl, log: l}
}

func (m *Module) Priority() int { return 10 }

func (m *Module) MountAPI(api *gin.RouterGroup) {
	g := api.Group("/healthcheck")
	g.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": StatusOK})
	})
	g.GET("/service-status", m.serviceStatus)
}

func (m *Module) serviceStatus(c *gin.Context) {
	rep, err := cache.GetOrLoadJSON(m.cache, c.Request.Context(), reportKey, m.ttl, m.uc.Check)
	if err != nil || rep == nil {
		m.log.Warn("service status", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": StatusError})
		return
	}
	c.JSON(http.StatusOK, rep)
}
