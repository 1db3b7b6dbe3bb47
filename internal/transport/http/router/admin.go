package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gin-gorm-scaffold/internal/core/auth"
	"gin-gorm-scaffold/internal/domain"
	"gin-gorm-scaffold/internal/service"
	"gin-gorm-scaffold/internal/transport/http/ez"
	mdw "gin-gorm-scaffold/internal/transport/http/middleware"
)

func NewAdminEngine(d Deps) *gin.Engine {
	r := newEngine(d)

	// 管理端 v1（统一要求 admin 角色）
	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(d.JWT, auth.RoleAdmin))

	// ① 自动发现（如有）
	d.Modules.MountAllAdmin(admin)

	// ② 用户表 CRUD + 封禁
	ez.Crud(ez.CrudConfig[domain.User, domain.CreateUser, domain.UpdateUser]{
		Group: admin,
		Path:  "/users",
		Repo:  d.UserRepo,
		SetID: func(u *domain.UpdateUser, id uuid.UUID) { u.ID = id },
	})
	mountAdminActions(admin, d.Users)
	return r
}

type banOut struct {
	ID     uuid.UUID `json:"id"`
	Banned bool      `json:"banned"`
}

func mountAdminActions(admin *gin.RouterGroup, users *service.UserService) {
	ez.RegisterAction(ez.New(admin), ez.Action[struct{}, banOut]{
		Method: http.MethodPost,
		Path:   "/users/:id/ban",
		Binder: ez.BindNone,
		Auth:   true,
		Roles:  []string{auth.RoleAdmin},
		Handler: func(c *gin.Context, _ *struct{}) (banOut, error) {
			id, err := uuid.Parse(c.Param("id"))
			if err != nil {
				return banOut{}, ez.BadRequest("invalid id")
			}
			if err := users.Ban(c.Request.Context(), id); err != nil {
				return banOut{}, err
			}
			return banOut{ID: id, Banned: true}, nil
		},
	})
}
