package ez

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"gin-gorm-scaffold/internal/core/pagination"
	"gin-gorm-scaffold/internal/core/repository"
	mdw "gin-gorm-scaffold/internal/transport/http/middleware"
	resp "gin-gorm-scaffold/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

type envelope[T any] struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data T      `json:"data"`
}

func do[T any](t *testing.T, r http.Handler, method, path string, body any) envelope[T] {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("%+v", errors.WithStack(err))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("%s %s: http status %d", method, path, w.Code)
	}
	var out envelope[T]
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("%s %s: %+v (%s)", method, path, errors.WithStack(err), w.Body.String())
	}
	return out
}

func TestResolve(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"action", BadRequest("bad"), resp.CodeBadRequest, "bad"},
		{"not found", repository.NotFound("Note", uuid.Nil), resp.CodeNotFound, "Note with id: 00000000-0000-0000-0000-000000000000 not found"},
		{"integrity", &repository.Error{Kind: repository.KindIntegrity, Detail: "dup"}, resp.CodeConflict, "dup"},
		{"data", &repository.Error{Kind: repository.KindData, Detail: "bad field"}, resp.CodeUnprocessable, "bad field"},
		{"timeout hides detail", &repository.Error{Kind: repository.KindTimeout, Detail: "secret"}, resp.CodeTimeout, resp.CodeMsgMap[resp.CodeTimeout]},
		{"connection hides detail", &repository.Error{Kind: repository.KindConnection, Detail: "secret"}, resp.CodeUnavailable, resp.CodeMsgMap[resp.CodeUnavailable]},
		{"query is internal", &repository.Error{Kind: repository.KindQuery, Detail: "secret"}, resp.CodeServerError, resp.CodeMsgMap[resp.CodeServerError]},
		{"unknown", errors.New("secret"), resp.CodeServerError, resp.CodeMsgMap[resp.CodeServerError]},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			code, msg := Resolve(errors.Wrap(c.err, "handler"))
			if code != c.code || msg != c.message {
				t.Fatalf("got (%d, %q), want (%d, %q)", code, msg, c.code, c.message)
			}
		})
	}
}

func TestRegisterActionAuthAndRoles(t *testing.T) {
	r := gin.New()
	g := r.Group("", func(c *gin.Context) {
		if uid := c.GetHeader("X-UID"); uid != "" {
			c.Set(mdw.KeyUserID, uid)
			c.Set(mdw.KeyRole, c.GetHeader("X-Role"))
		}
	})
	RegisterAction(New(g), Action[struct{}, string]{
		Method: http.MethodGet,
		Path:   "/secret",
		Binder: BindNone,
		Auth:   true,
		Roles:  []string{"admin"},
		Handler: func(c *gin.Context, _ *struct{}) (string, error) {
			return "ok", nil
		},
	})

	call := func(uid, role string) envelope[string] {
		req := httptest.NewRequest(http.MethodGet, "/secret", nil)
		req.Header.Set("X-UID", uid)
		req.Header.Set("X-Role", role)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		var out envelope[string]
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("%+v", errors.WithStack(err))
		}
		return out
	}
	if got := call("", ""); got.Code != resp.CodeUnauthorized {
		t.Fatalf("anonymous: %+v", got)
	}
	if got := call("u1", "user"); got.Code != resp.CodeForbidden {
		t.Fatalf("user: %+v", got)
	}
	if got := call("u1", "admin"); got.Code != resp.CodeOK || got.Data != "ok" {
		t.Fatalf("admin: %+v", got)
	}
}

func TestRegisterActionBindError(t *testing.T) {
	type in struct {
		Name string `json:"name" binding:"required"`
	}
	r := gin.New()
	RegisterAction(New(r.Group("")), Action[in, string]{
		Path:   "/echo",
		Binder: BindJSON,
		Handler: func(c *gin.Context, in *in) (string, error) {
			return in.Name, nil
		},
	})
	if got := do[any](t, r, http.MethodPost, "/echo", map[string]string{}); got.Code != resp.CodeBadRequest {
		t.Fatalf("got %+v", got)
	}
	if got := do[string](t, r, http.MethodPost, "/echo", map[string]string{"name": "x"}); got.Code != resp.CodeOK || got.Data != "x" {
		t.Fatalf("got %+v", got)
	}
}

// notes is an in-memory repository.CRUD.
type note struct {
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`
}

type noteCreate struct {
	Text string `json:"text" binding:"required"`
}

type noteUpdate struct {
	ID   uuid.UUID `json:"id"`
	Text *string   `json:"text"`
}

type notes struct {
	mu   sync.Mutex
	rows map[uuid.UUID]note
	last pagination.Request
}

var _ repository.CRUD[note, noteCreate, noteUpdate] = (*notes)(nil)

func newNotes() *notes { return &notes{rows: map[uuid.UUID]note{}} }

func (n *notes) Get(_ context.Context, id uuid.UUID) (note, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	v, ok := n.rows[id]
	if !ok {
		return note{}, repository.NotFound("Note", id)
	}
	return v, nil
}

func (n *notes) GetOrNone(ctx context.Context, id uuid.UUID) (*note, error) {
	return repository.Find[note](ctx, n, id)
}

func (n *notes) GetByIDs(_ context.Context, ids []uuid.UUID) ([]note, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := []note{}
	for _, id := range ids {
		if v, ok := n.rows[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (n *notes) Create(_ context.Context, in noteCreate) (note, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	v := note{ID: uuid.New(), Text: in.Text}
	n.rows[v.ID] = v
	return v, nil
}

func (n *notes) BulkCreate(ctx context.Context, in []noteCreate) ([]note, error) {
	out := make([]note, 0, len(in))
	for _, c := range in {
		v, _ := n.Create(ctx, c)
		out = append(out, v)
	}
	return out, nil
}

func (n *notes) Update(_ context.Context, in noteUpdate) (note, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	v, ok := n.rows[in.ID]
	if !ok {
		return note{}, repository.NotFound("Note", in.ID)
	}
	if in.Text != nil {
		v.Text = *in.Text
	}
	n.rows[in.ID] = v
	return v, nil
}

func (n *notes) BulkUpdate(ctx context.Context, in []noteUpdate) ([]note, error) {
	out := make([]note, 0, len(in))
	for _, u := range in {
		v, err := n.Update(ctx, u)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (n *notes) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.rows[id]
	delete(n.rows, id)
	return ok, nil
}

func (n *notes) ListPaginated(_ context.Context, req pagination.Request) (*pagination.Page[note], error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.last = req
	items := make([]note, 0, len(n.rows))
	for _, v := range n.rows {
		items = append(items, v)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Text < items[j].Text })
	return &pagination.Page[note]{
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalItems: int64(len(items)),
		TotalPages: pagination.TotalPages(int64(len(items)), req.PageSize),
		Items:      items,
	}, nil
}

func TestCrudRoutes(t *testing.T) {
	repo := newNotes()
	r := gin.New()
	Crud(CrudConfig[note, noteCreate, noteUpdate]{
		Group:       r.Group("/v1"),
		Path:        "/notes",
		Repo:        repo,
		SetID:       func(u *noteUpdate, id uuid.UUID) { u.ID = id },
		MaxPageSize: 5,
	})

	created := do[note](t, r, http.MethodPost, "/v1/notes", noteCreate{Text: "a"})
	if created.Code != resp.CodeOK || created.Data.Text != "a" {
		t.Fatalf("create: %+v", created)
	}
	if got := do[any](t, r, http.MethodPost, "/v1/notes", map[string]string{}); got.Code != resp.CodeBadRequest {
		t.Fatalf("create without text: %+v", got)
	}

	bulk := do[[]note](t, r, http.MethodPost, "/v1/notes/bulk", []noteCreate{{Text: "b"}, {Text: "c"}})
	if len(bulk.Data) != 2 {
		t.Fatalf("bulk create: %+v", bulk)
	}

	id := created.Data.ID.String()
	if got := do[note](t, r, http.MethodGet, "/v1/notes/"+id, nil); got.Data.ID != created.Data.ID {
		t.Fatalf("get: %+v", got)
	}
	if got := do[any](t, r, http.MethodGet, "/v1/notes/not-a-uuid", nil); got.Code != resp.CodeBadRequest {
		t.Fatalf("bad id: %+v", got)
	}
	missing := do[resp.ErrData](t, r, http.MethodGet, "/v1/notes/"+uuid.NewString(), nil)
	if missing.Code != resp.CodeNotFound || missing.Data.Kind != "not_found" {
		t.Fatalf("missing: %+v", missing)
	}

	lookup := do[[]note](t, r, http.MethodPost, "/v1/notes/lookup", map[string]any{"ids": []uuid.UUID{created.Data.ID, uuid.New()}})
	if len(lookup.Data) != 1 {
		t.Fatalf("lookup: %+v", lookup)
	}

	text := "z"
	upd := do[note](t, r, http.MethodPatch, "/v1/notes/"+id, noteUpdate{Text: &text})
	if upd.Data.Text != "z" || upd.Data.ID != created.Data.ID {
		t.Fatalf("update: %+v", upd)
	}

	list := do[pagination.Page[note]](t, r, http.MethodGet, "/v1/notes?page=1&page_size=50", nil)
	if list.Data.TotalItems != 3 || repo.last.PageSize != 5 {
		t.Fatalf("list: %+v (page size %d)", list, repo.last.PageSize)
	}
	if got := do[any](t, r, http.MethodGet, "/v1/notes?page=0", nil); got.Code != resp.CodeBadRequest {
		t.Fatalf("page 0: %+v", got)
	}

	del := do[deleteOut](t, r, http.MethodDelete, "/v1/notes/"+id, nil)
	if !del.Data.Deleted {
		t.Fatalf("delete: %+v", del)
	}
	del = do[deleteOut](t, r, http.MethodDelete, "/v1/notes/"+id, nil)
	if del.Code != resp.CodeOK || del.Data.Deleted {
		t.Fatalf("second delete: %+v", del)
	}
}
