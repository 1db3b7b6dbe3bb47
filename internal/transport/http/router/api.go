package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"gin-gorm-scaffold/internal/domain"
	"gin-gorm-scaffold/internal/service"
	"gin-gorm-scaffold/internal/transport/http/ez"
	mdw "gin-gorm-scaffold/internal/transport/http/middleware"
)

func NewAPIEngine(d Deps) *gin.Engine {
	r := newEngine(d)

	// 前缀
	api := r.Group("/api/v1")
	d.Modules.MountAllAPI(api)

	// 鉴权分组（/me 必须挂这里，才能拿到 userId）
	authUser := api.Group("")
	authUser.Use(mdw.AuthJWT(d.JWT, ""))

	mountAuthActions(api, authUser, d.Users)
	return r
}

// /auth/login：查不到就自动注册 + 发 JWT；/me：当前用户
func mountAuthActions(api, authUser *gin.RouterGroup, users *service.UserService) {
	ez.RegisterAction(ez.New(api), ez.Action[service.LoginInput, service.LoginResult]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.LoginInput) (service.LoginResult, error) {
			out, err := users.Login(c.Request.Context(), *in)
			if errors.Is(err, service.ErrInvalidCredentials) {
				return out, ez.Unauthorized("invalid credentials")
			}
			return out, err
		},
	})

	ez.RegisterAction(ez.New(authUser), ez.Action[struct{}, domain.User]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (domain.User, error) {
			uid, err := uuid.Parse(c.GetString(mdw.KeyUserID))
			if err != nil {
				return domain.User{}, ez.Unauthorized("unauthorized")
			}
			return users.Profile(c.Request.Context(), uid)
		},
	})
}
