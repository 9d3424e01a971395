package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := map[string]string{
		"2024-03-09":                "2024-03-09",
		"2024-03-09T22:15:00Z":      "2024-03-09",
		"2024-03-09 08:00:00":       "2024-03-09",
		"2024/03/09":                "2024-03-09",
		"  2024-12-31 ":             "2024-12-31",
		"2024-03-09T10:00:00+02:00": "2024-03-09",
	}
	for in, want := range cases {
		d, err := ParseDate(in)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", in, err)
		}
		if d.String() != want {
			t.Errorf("ParseDate(%q) = %s, want %s", in, d, want)
		}
	}

	for _, bad := range []string{"", "yesterday", "2024-13-01", "09-03-2024"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) expected error", bad)
		}
	}
}

func TestDateJSON(t *testing.T) {
	type wrap struct {
		D *Date `json:"d"`
	}
	d := NewDate(2023, time.July, 4)
	b, err := json.Marshal(wrap{D: &d})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"d":"2023-07-04"}` {
		t.Fatalf("marshal = %s", b)
	}

	var w wrap
	if err := json.Unmarshal(b, &w); err != nil {
		t.Fatal(err)
	}
	if w.D == nil || w.D.String() != "2023-07-04" {
		t.Fatalf("unmarshal = %v", w.D)
	}

	w = wrap{}
	if err := json.Unmarshal([]byte(`{"d":null}`), &w); err != nil {
		t.Fatal(err)
	}
	if w.D != nil {
		t.Fatalf("null should leave pointer nil, got %v", w.D)
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(2022, 1, 2, 15, 4, 5, 0, time.UTC)); err != nil || d.String() != "2022-01-02" {
		t.Fatalf("scan time: %v %s", err, d)
	}
	if err := d.Scan("2021-05-06 00:00:00+00:00"); err != nil || d.String() != "2021-05-06" {
		t.Fatalf("scan string: %v %s", err, d)
	}
	if err := d.Scan([]byte("2020-02-29")); err != nil || d.String() != "2020-02-29" {
		t.Fatalf("scan bytes: %v %s", err, d)
	}
	if err := d.Scan(nil); err != nil || !d.IsZero() {
		t.Fatalf("scan nil: %v %s", err, d)
	}
	if err := d.Scan(42); err == nil {
		t.Fatal("scan int should fail")
	}
}
