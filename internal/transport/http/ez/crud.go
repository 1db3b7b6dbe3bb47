package ez

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gin-gorm-scaffold/internal/core/pagination"
	"gin-gorm-scaffold/internal/core/repository"
)

type CrudConfig[R, C, U any] struct {
	Group *gin.RouterGroup
	Path  string
	Repo  repository.CRUD[R, C, U]
	// SetID targets an update at the :id path parameter.
	SetID func(u *U, id uuid.UUID)

	AllowCreate bool
	AllowList   bool
	AllowGet    bool
	AllowUpdate bool
	AllowDelete bool
	AllowBulk   bool

	DefaultPageSize int // 默认 20
	MaxPageSize     int // 默认 100，超出则截断
}

type idsIn struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1,max=500"`
}

type deleteOut struct {
	ID      uuid.UUID `json:"id"`
	Deleted bool      `json:"deleted"`
}

func paramID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, BadRequest("invalid id")
	}
	return id, nil
}

// Crud mounts the repository operations under cfg.Path:
//
//	GET    /path           list (page, page_size)
//	GET    /path/:id       get
//	POST   /path/lookup    get by ids
//	POST   /path           create
//	POST   /path/bulk      bulk create
//	PATCH  /path/:id       partial update
//	PATCH  /path/bulk      bulk partial update
//	DELETE /path/:id       delete
func Crud[R, C, U any](cfg CrudConfig[R, C, U]) {
	// 默认放开所有操作
	if !cfg.AllowCreate && !cfg.AllowGet && !cfg.AllowList && !cfg.AllowUpdate && !cfg.AllowDelete && !cfg.AllowBulk {
		cfg.AllowCreate, cfg.AllowList, cfg.AllowGet, cfg.AllowUpdate, cfg.AllowDelete, cfg.AllowBulk = true, true, true, true, true, true
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	e := New(cfg.Group)
	repo := cfg.Repo

	if cfg.AllowList {
		RegisterAction(e, Action[struct{}, *pagination.Page[R]]{
			Method: "GET",
			Path:   cfg.Path,
			Binder: BindNone,
			Handler: func(c *gin.Context, _ *struct{}) (*pagination.Page[R], error) {
				req := pagination.Request{Page: 1, PageSize: cfg.DefaultPageSize}
				if err := c.ShouldBindQuery(&req); err != nil {
					return nil, BadRequest(err.Error())
				}
				if req.PageSize > cfg.MaxPageSize {
					req.PageSize = cfg.MaxPageSize
				}
				return repo.ListPaginated(c.Request.Context(), req)
			},
		})
	}

	if cfg.AllowGet {
		RegisterAction(e, Action[struct{}, R]{
			Method: "GET",
			Path:   cfg.Path + "/:id",
			Binder: BindNone,
			Handler: func(c *gin.Context, _ *struct{}) (R, error) {
				id, err := paramID(c)
				if err != nil {
					var zero R
					return zero, err
				}
				return repo.Get(c.Request.Context(), id)
			},
		})
		RegisterAction(e, Action[idsIn, []R]{
			Method: "POST",
			Path:   cfg.Path + "/lookup",
			Binder: BindJSON,
			Handler: func(c *gin.Context, in *idsIn) ([]R, error) {
				return repo.GetByIDs(c.Request.Context(), in.IDs)
			},
		})
	}

	if cfg.AllowCreate {
		RegisterAction(e, Action[C, R]{
			Method: "POST",
			Path:   cfg.Path,
			Binder: BindJSON,
			Handler: func(c *gin.Context, in *C) (R, error) {
				return repo.Create(c.Request.Context(), *in)
			},
		})
	}

	if cfg.AllowCreate && cfg.AllowBulk {
		RegisterAction(e, Action[[]C, []R]{
			Method: "POST",
			Path:   cfg.Path + "/bulk",
			Binder: BindJSON,
			Handler: func(c *gin.Context, in *[]C) ([]R, error) {
				return repo.BulkCreate(c.Request.Context(), *in)
			},
		})
	}

	if cfg.AllowUpdate && cfg.SetID != nil {
		RegisterAction(e, Action[U, R]{
			Method: "PATCH",
			Path:   cfg.Path + "/:id",
			Binder: BindJSON,
			Handler: func(c *gin.Context, in *U) (R, error) {
				id, err := paramID(c)
				if err != nil {
					var zero R
					return zero, err
				}
				cfg.SetID(in, id)
				return repo.Update(c.Request.Context(), *in)
			},
		})
	}

	if cfg.AllowUpdate && cfg.AllowBulk {
		RegisterAction(e, Action[[]U, []R]{
			Method: "PATCH",
			Path:   cfg.Path + "/bulk",
			Binder: BindJSON,
			Handler: func(c *gin.Context, in *[]U) ([]R, error) {
				return repo.BulkUpdate(c.Request.Context(), *in)
			},
		})
	}

	if cfg.AllowDelete {
		RegisterAction(e, Action[struct{}, deleteOut]{
			Method: "DELETE",
			Path:   cfg.Path + "/:id",
			Binder: BindNone,
			Handler: func(c *gin.Context, _ *struct{}) (deleteOut, error) {
				id, err := paramID(c)
				if err != nil {
					return deleteOut{}, err
				}
				deleted, err := repo.Delete(c.Request.Context(), id)
				if err != nil {
					return deleteOut{}, err
				}
				return deleteOut{ID: id, Deleted: deleted}, nil
			},
		})
	}
}
