// Package ez registers handlers with the {code,msg,data} envelope:
// one-line actions and repository-backed CRUD.
package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"gin-gorm-scaffold/internal/core/repository"
	mdw "gin-gorm-scaffold/internal/transport/http/middleware"
	resp "gin-gorm-scaffold/internal/transport/http/response"
)

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// AErr is a handler error carrying its envelope code.
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: resp.CodeForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// kindCodes maps repository failures to envelope codes.
var kindCodes = map[repository.Kind]int{
	repository.KindNotFound:    resp.CodeNotFound,
	repository.KindIntegrity:   resp.CodeConflict,
	repository.KindData:        resp.CodeUnprocessable,
	repository.KindTimeout:     resp.CodeTimeout,
	repository.KindConnection:  resp.CodeUnavailable,
	repository.KindOperational: resp.CodeUnavailable,
}

// Resolve returns the envelope code and client-facing message for err.
// Store details are only exposed for client-side kinds.
func Resolve(err error) (int, string) {
	var ae *AErr
	if errors.As(err, &ae) {
		return ae.Code, ae.Error()
	}
	var re *repository.Error
	if errors.As(err, &re) {
		code, ok := kindCodes[re.Kind]
		if !ok {
			code = resp.CodeServerError
		}
		if code < resp.CodeServerError {
			return code, re.Detail
		}
		return code, resp.CodeMsgMap[code]
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return resp.CodeBadRequest, verrs.Error()
	}
	return resp.CodeServerError, resp.CodeMsgMap[resp.CodeServerError]
}

// Fail writes the error envelope and records err on the context for the access log.
// Repository failures also carry their kind in data.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	code, msg := Resolve(err)
	var data any
	var re *repository.Error
	if errors.As(err, &re) {
		data = resp.ErrData{Kind: re.Kind.String()}
	}
	c.JSON(http.StatusOK, resp.Failure(code, msg, data))
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, resp.OK(data))
}

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string   // "GET" | "POST" | "PUT" | "PATCH" | "DELETE"
	Path    string   // 例："/auth/login"、"/users/:id/ban"
	Binder  Binder   // 绑定方式
	Auth    bool     // 是否要求登录（检查 userId）
	Roles   []string // 限定角色（可选）
	Handler func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		// 1) 鉴权/角色
		if a.Auth {
			if c.GetString(mdw.KeyUserID) == "" {
				Fail(c, Unauthorized("unauthorized"))
				return
			}
			if len(a.Roles) > 0 && !hasRole(c.GetString(mdw.KeyRole), a.Roles) {
				Fail(c, Forbidden("forbidden"))
				return
			}
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			Fail(c, BadRequest(bindErr.Error()))
			return
		}

		// 3) 执行 + 统一错误映射
		out, err := a.Handler(c, &in)
		if err != nil {
			Fail(c, err)
			return
		}
		OK(c, out)
	}

	e.g.Handle(strings.ToUpper(methodOr(a.Method, http.MethodPost)), a.Path, h)
}

func methodOr(m, def string) string {
	if m == "" {
		return def
	}
	return m
}

func hasRole(role string, roles []string) bool {
	for _, r := range roles {
		if role == r {
			return true
		}
	}
	return false
}
