package database

import (
	"errors"
	"strings"
	"testing"
)

func TestMigrateURL(t *testing.T) {
	cases := []struct {
		name string
		opts Opts
		want string
	}{
		{
			"postgres url kept",
			Opts{Driver: "postgres", DSN: "postgres://u:p@db:5432/lf?sslmode=disable"},
			"postgres://u:p@db:5432/lf?sslmode=disable",
		},
		{
			"postgres keywords",
			Opts{Driver: "postgres", DSN: "host=db port=5432 user=u password=p dbname=lf sslmode=disable"},
			"postgres://u:p@db:5432/lf?sslmode=disable",
		},
		{
			"postgres override",
			Opts{Driver: "postgres", DSN: "host=db dbname=lf", Username: "admin"},
			"postgres://admin@db/lf",
		},
		{
			"mysql native",
			Opts{Driver: "mysql", DSN: "u:p@tcp(db:3306)/lf?parseTime=true"},
			"mysql://u:p@tcp(db:3306)/lf?parseTime=true&multiStatements=true",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := MigrateURL(tc.opts)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Fatalf("MigrateURL = %q, want %q", got, tc.want)
			}
		})
	}

	got, err := MigrateURL(Opts{Driver: "mysql", DSN: "mysql://u:p@db:3306/lf"})
	if err != nil || !strings.HasPrefix(got, "mysql://u:p@tcp(db:3306)/lf?") || !strings.Contains(got, "multiStatements=true") {
		t.Fatalf("mysql url form = %q, %v", got, err)
	}

	if _, err := MigrateURL(Opts{Driver: "sqlite", DSN: "x.db"}); !errors.Is(err, ErrUnsupportedDriver) {
		t.Fatalf("sqlite err = %v", err)
	}
	if _, err := MigrateURL(Opts{Driver: "postgres", DSN: "host"}); err == nil {
		t.Fatal("malformed keyword dsn accepted")
	}
}
