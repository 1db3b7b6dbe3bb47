// Package pagination computes offset-based pages over any countable query.
package pagination

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidRequest is returned when page or page_size is below 1.
var ErrInvalidRequest = errors.New("pagination: page and page_size must be >= 1")

// Request 分页请求（page 从 1 开始）
type Request struct {
	Page     int `json:"page"      form:"page"      binding:"required,min=1"`
	PageSize int `json:"page_size" form:"page_size" binding:"required,min=1"`
}

// Validate checks both fields are positive.
func (r Request) Validate() error {
	if r.Page < 1 || r.PageSize < 1 {
		return fmt.Errorf("%w (page=%d, page_size=%d)", ErrInvalidRequest, r.Page, r.PageSize)
	}
	return nil
}

// Page is the normalized envelope returned by every paginated listing.
type Page[T any] struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
	Items      []T   `json:"items"`
}

// Query is a countable, boundable query description.
// Count must use the same predicate as Window, without limit/offset.
type Query[T any] interface {
	Count(ctx context.Context) (int64, error)
	Window(ctx context.Context, offset, limit int) ([]T, error)
}

// Offset returns the number of rows to skip for the given page.
// Callers must first check the page is in range (see Paginate).
func Offset(page, pageSize int) int { return (page - 1) * pageSize }

// TotalPages is ceil(total / pageSize) in integer arithmetic, without
// overflowing for any pageSize.
func TotalPages(total int64, pageSize int) int {
	if pageSize < 1 || total < 1 {
		return 0
	}
	size := int64(pageSize)
	n := total / size
	if total%size != 0 {
		n++
	}
	return int(n)
}

// Paginate counts q, fetches the requested window and projects every row.
// A page past the last one yields empty Items, not an error.
func Paginate[T, R any](ctx context.Context, q Query[T], req Request, project func(T) R) (*Page[R], error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	total, err := q.Count(ctx)
	if err != nil {
		return nil, err
	}

	out := &Page[R]{
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: TotalPages(total, req.PageSize),
		TotalItems: total,
		Items:      make([]R, 0),
	}

	// 越界页直接返回空，避免 (page-1)*page_size 溢出
	if int64(req.Page-1) >= int64(out.TotalPages) {
		return out, nil
	}

	rows, err := q.Window(ctx, Offset(req.Page, req.PageSize), req.PageSize)
	if err != nil {
		return nil, err
	}
	if len(rows) > req.PageSize {
		rows = rows[:req.PageSize]
	}

	out.Items = make([]R, 0, len(rows))
	for _, row := range rows {
		out.Items = append(out.Items, project(row))
	}
	return out, nil
}
