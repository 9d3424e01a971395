package database

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/gorm"

	"lostfound-api/internal/domain"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	cases := []struct {
		name, in, user, pass string
		wantPrefix           string
		wantQuery            map[string]string
		absent               []string
	}{
		{
			name:       "native dsn untouched",
			in:         "root:pw@tcp(127.0.0.1:3306)/app?parseTime=true",
			wantPrefix: "root:pw@tcp(127.0.0.1:3306)/app?parseTime=true",
		},
		{
			name:       "url with credentials",
			in:         "mysql://bob:secret@db:3306/lost",
			wantPrefix: "bob:secret@tcp(db:3306)/lost?",
			wantQuery:  map[string]string{"parseTime": "true", "charset": "utf8mb4"},
		},
		{
			name:       "jdbc params translated",
			in:         "jdbc:mysql://db:3306/lost?useUnicode=true&characterEncoding=utf8&useSSL=false&serverTimezone=UTC&zeroDateTimeBehavior=convertToNull",
			user:       "app",
			pass:       "pw",
			wantPrefix: "app:pw@tcp(db:3306)/lost?",
			wantQuery:  map[string]string{"charset": "utf8", "tls": "false", "loc": "UTC"},
			absent:     []string{"useUnicode", "useSSL", "serverTimezone", "zeroDateTimeBehavior", "characterEncoding"},
		},
		{
			name:       "credentials from query, override wins",
			in:         "mysql://db/lost?user=q&password=qp&useSSL=skip-verify",
			pass:       "override",
			wantPrefix: "q:override@tcp(db)/lost?",
			wantQuery:  map[string]string{"tls": "skip-verify"},
			absent:     []string{"user", "password"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := normalizeMySQLDSN(tc.in, tc.user, tc.pass)
			if !strings.HasPrefix(got, tc.wantPrefix) {
				t.Fatalf("dsn = %q, want prefix %q", got, tc.wantPrefix)
			}
			if tc.wantQuery == nil && tc.absent == nil {
				return
			}
			q, err := url.ParseQuery(got[strings.Index(got, "?")+1:])
			if err != nil {
				t.Fatal(err)
			}
			for k, v := range tc.wantQuery {
				if q.Get(k) != v {
					t.Errorf("%s = %q, want %q (dsn %q)", k, q.Get(k), v, got)
				}
			}
			for _, k := range tc.absent {
				if q.Has(k) {
					t.Errorf("%s should be dropped (dsn %q)", k, got)
				}
			}
		})
	}
}

func TestMaskDSN(t *testing.T) {
	if got := maskDSN("u:secret@tcp(h)/db"); got != "u:****@tcp(h)/db" {
		t.Fatalf("mask = %q", got)
	}
	if got := maskDSN("tcp(h)/db"); got != "tcp(h)/db" {
		t.Fatalf("mask = %q", got)
	}
}

func TestNewGormUnsupported(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	if !errors.Is(err, ErrUnsupportedDriver) {
		t.Fatalf("err = %v", err)
	}
}

func TestSQLiteMigrateAndDuplicateKey(t *testing.T) {
	db, err := NewGorm(Opts{
		Driver:       "sqlite",
		DSN:          filepath.Join(t.TempDir(), "x.db"),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := Migrate(db); err != nil {
		t.Fatal(err)
	}
	for _, table := range []string{"users", "item", "feed_backs"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("missing table %s", table)
		}
	}

	u := domain.User{Name: "a", Email: "a@x.io", Phone: "1", PasswordHash: "h", Role: domain.RoleUser}
	if err := db.Create(&u).Error; err != nil {
		t.Fatal(err)
	}
	dup := domain.User{Name: "b", Email: "a@x.io", Phone: "2", PasswordHash: "h", Role: domain.RoleUser}
	err = db.Create(&dup).Error
	if !IsDuplicateKey(err) {
		t.Fatalf("want duplicate key, got %v", err)
	}
}

func TestIsDuplicateKey(t *testing.T) {
	if IsDuplicateKey(nil) {
		t.Fatal("nil is not a duplicate")
	}
	if !IsDuplicateKey(fmt.Errorf("wrap: %w", gorm.ErrDuplicatedKey)) {
		t.Fatal("wrapped gorm sentinel")
	}
	if !IsDuplicateKey(errors.New(`ERROR: duplicate key value violates unique constraint "users_email_key"`)) {
		t.Fatal("postgres text")
	}
	if IsDuplicateKey(errors.New("connection refused")) {
		t.Fatal("unrelated error")
	}
}
