package logger

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestJSONLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l, cleanup := buildLogger(Options{Level: "warn", JSON: true, Out: &buf})
	l.Info("dropped")
	l.Warn("kept", zap.String("k", "v"))
	cleanup()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("want 1 line, got %q", buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatal(err)
	}
	if rec["msg"] != "kept" || rec["k"] != "v" || rec["ts"] == nil {
		t.Fatalf("record = %v", rec)
	}
}

func TestRotateWritesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	l, cleanup := buildLogger(Options{
		Level: "info", JSON: true, Out: &bytes.Buffer{},
		Rotate: FileRotate{Enable: true, Filename: file, MaxSizeMB: 1},
	})
	l.Info("to file")
	cleanup()

	b, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "to file") {
		t.Fatalf("file content = %q", b)
	}
}

func TestToWriterAndStdLog(t *testing.T) {
	var buf bytes.Buffer
	l, cleanup := buildLogger(Options{Level: "debug", JSON: true, Out: &buf})
	defer cleanup()

	w := ToWriter(l, zapcore.InfoLevel)
	if _, err := w.Write([]byte("from gin\n")); err != nil {
		t.Fatal(err)
	}

	undo := RedirectStdLog(l, zapcore.WarnLevel)
	log.Print("from std log")
	undo()

	out := buf.String()
	if !strings.Contains(out, "from gin") || !strings.Contains(out, "from std log") {
		t.Fatalf("output = %q", out)
	}
}
