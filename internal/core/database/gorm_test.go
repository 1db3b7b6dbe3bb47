package database

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type widget struct {
	Base
	Name string
}

func TestNewGormSQLite(t *testing.T) {
	db, err := NewGorm(Opts{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "test.db"), LogLevel: "silent"})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}
	defer func() {
		if err := Close(db); err != nil {
			t.Errorf("%+v", err)
		}
	}()

	if err := db.AutoMigrate(&widget{}); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	supplied := uuid.New()
	w := widget{Base: Base{ID: supplied}, Name: "gear"}
	if err := db.Create(&w).Error; err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}
	if w.ID == uuid.Nil || w.ID == supplied {
		t.Fatalf("expected a generated id, got %s", w.ID)
	}
	if w.CreatedAt.IsZero() || w.UpdatedAt.IsZero() {
		t.Fatalf("timestamps not set: %+v", w.Base)
	}

	var got widget
	if err := db.First(&got, "id = ?", w.ID).Error; err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}
	if got.Name != "gear" {
		t.Fatalf("got %q", got.Name)
	}

	var fk int
	if err := db.Raw("PRAGMA foreign_keys").Scan(&fk).Error; err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}
	if fk != 1 {
		t.Fatalf("foreign_keys pragma = %d", fk)
	}
}

func TestNewGormUnsupportedDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	if !errors.Is(err, ErrUnsupportedDriver) {
		t.Fatalf("expected ErrUnsupportedDriver, got %v", err)
	}
}

func TestCloseNil(t *testing.T) {
	if err := Close(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNormalizeMySQLDSN(t *testing.T) {
	cases := []struct {
		name       string
		in         string
		user, pass string
		want       string
	}{
		{
			name: "native dsn untouched",
			in:   "root:pw@tcp(127.0.0.1:3306)/app?parseTime=true",
			want: "root:pw@tcp(127.0.0.1:3306)/app?parseTime=true",
		},
		{
			name: "url form gets defaults",
			in:   "mysql://root:pw@127.0.0.1:3306/app",
			want: "root:pw@tcp(127.0.0.1:3306)/app?charset=utf8mb4&clientFoundRows=true&parseTime=true",
		},
		{
			name: "jdbc params translated",
			in:   "jdbc:mysql://db:3306/app?useSSL=false&characterEncoding=utf8&serverTimezone=UTC&useUnicode=true",
			user: "svc",
			pass: "secret",
			want: "svc:secret@tcp(db:3306)/app?charset=utf8&clientFoundRows=true&loc=UTC&parseTime=true&tls=false",
		},
		{
			name: "explicit clientFoundRows kept",
			in:   "mysql://root@db/app?clientFoundRows=false",
			want: "root@tcp(db)/app?charset=utf8mb4&clientFoundRows=false&parseTime=true",
		},
		{
			name: "empty",
			in:   "  ",
			want: "",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := normalizeMySQLDSN(c.in, c.user, c.pass); got != c.want {
				t.Errorf("got %q, want %q", got, c.want)
			}
		})
	}
}

func TestMaskDSN(t *testing.T) {
	if got := maskDSN("root:pw@tcp(h:1)/d"); got != "root:****@tcp(h:1)/d" {
		t.Errorf("got %q", got)
	}
	if got := maskDSN("tcp(h:1)/d"); got != "tcp(h:1)/d" {
		t.Errorf("got %q", got)
	}
}
