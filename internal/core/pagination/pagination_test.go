package pagination

import (
	"context"
	"errors"
	"math"
	"strconv"
	"testing"
)

type sliceQuery struct {
	rows    []int
	windows int
	err     error
}

func (q *sliceQuery) Count(ctx context.Context) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	return int64(len(q.rows)), nil
}

func (q *sliceQuery) Window(ctx context.Context, offset, limit int) ([]int, error) {
	q.windows++
	if offset >= len(q.rows) {
		return nil, nil
	}
	end := offset + limit
	if end > len(q.rows) {
		end = len(q.rows)
	}
	return q.rows[offset:end], nil
}

func newSliceQuery(n int) *sliceQuery {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return &sliceQuery{rows: rows}
}

func TestPaginateScenarios(t *testing.T) {
	cases := []struct {
		page, size int
		wantItems  int
		wantFirst  int
	}{
		{page: 1, size: 10, wantItems: 10, wantFirst: 0},
		{page: 2, size: 10, wantItems: 10, wantFirst: 10},
		{page: 3, size: 10, wantItems: 5, wantFirst: 20},
		{page: 4, size: 10, wantItems: 0},
	}

	for _, tc := range cases {
		t.Run(strconv.Itoa(tc.page), func(t *testing.T) {
			q := newSliceQuery(25)
			p, err := Paginate(context.Background(), q, Request{Page: tc.page, PageSize: tc.size}, strconv.Itoa)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.TotalItems != 25 {
				t.Errorf("TotalItems: expected 25, got %d", p.TotalItems)
			}
			if p.TotalPages != 3 {
				t.Errorf("TotalPages: expected 3, got %d", p.TotalPages)
			}
			if e, g := tc.wantItems, len(p.Items); e != g {
				t.Fatalf("len(Items): expected %d, got %d", e, g)
			}
			if tc.wantItems > 0 && p.Items[0] != strconv.Itoa(tc.wantFirst) {
				t.Errorf("Items[0]: expected %d, got %s", tc.wantFirst, p.Items[0])
			}
			if p.Items == nil {
				t.Errorf("Items should never be nil")
			}
		})
	}
}

func TestPaginateSkipsWindowPastEnd(t *testing.T) {
	q := newSliceQuery(5)
	p, err := Paginate(context.Background(), q, Request{Page: 9, PageSize: 5}, func(i int) int { return i })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Items) != 0 {
		t.Errorf("expected no items, got %d", len(p.Items))
	}
	if q.windows != 0 {
		t.Errorf("expected no window query, got %d", q.windows)
	}
}

func TestPaginateEmpty(t *testing.T) {
	p, err := Paginate(context.Background(), newSliceQuery(0), Request{Page: 1, PageSize: 3}, func(i int) int { return i })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.TotalPages != 0 || p.TotalItems != 0 || len(p.Items) != 0 {
		t.Errorf("unexpected page: %+v", p)
	}
}

func TestPaginateInvalidRequest(t *testing.T) {
	for _, req := range []Request{{Page: 0, PageSize: 1}, {Page: 1, PageSize: 0}, {Page: -2, PageSize: -2}} {
		_, err := Paginate(context.Background(), newSliceQuery(3), req, func(i int) int { return i })
		if !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("%+v: expected ErrInvalidRequest, got %v", req, err)
		}
	}
}

func TestPaginateCountError(t *testing.T) {
	boom := errors.New("boom")
	q := &sliceQuery{err: boom}
	if _, err := Paginate(context.Background(), q, Request{Page: 1, PageSize: 1}, func(i int) int { return i }); !errors.Is(err, boom) {
		t.Errorf("expected count error to propagate, got %v", err)
	}
}

func TestTotalPagesInvariant(t *testing.T) {
	for total := int64(0); total <= 40; total++ {
		for size := 1; size <= 12; size++ {
			got := TotalPages(total, size)
			want := int(total) / size
			if int(total)%size != 0 {
				want++
			}
			if got != want {
				t.Fatalf("TotalPages(%d, %d): expected %d, got %d", total, size, want, got)
			}
		}
	}
}

func TestPaginateExtremeInputs(t *testing.T) {
	cases := []struct {
		name      string
		req       Request
		wantPages int
		wantItems int
	}{
		{"page overflows offset", Request{Page: math.MaxInt64/4 + 2, PageSize: 4}, 1, 0},
		{"max page", Request{Page: math.MaxInt, PageSize: 1}, 3, 0},
		{"max page size", Request{Page: 1, PageSize: math.MaxInt}, 1, 3},
		{"max page size second page", Request{Page: 2, PageSize: math.MaxInt}, 1, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := newSliceQuery(3)
			p, err := Paginate(context.Background(), q, tc.req, func(i int) int { return i })
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.TotalPages != tc.wantPages {
				t.Errorf("TotalPages: expected %d, got %d", tc.wantPages, p.TotalPages)
			}
			if len(p.Items) != tc.wantItems {
				t.Errorf("len(Items): expected %d, got %d", tc.wantItems, len(p.Items))
			}
			if tc.wantItems == 0 && q.windows != 0 {
				t.Errorf("out-of-range page must not query a window")
			}
		})
	}
}

func TestTotalPagesLargeSize(t *testing.T) {
	if got := TotalPages(2, math.MaxInt); got != 1 {
		t.Fatalf("TotalPages(2, MaxInt): expected 1, got %d", got)
	}
	if got := TotalPages(math.MaxInt64, 1); got != math.MaxInt {
		t.Fatalf("TotalPages(MaxInt64, 1): expected MaxInt, got %d", got)
	}
}
