package logger

import (
	"bytes"
	"encoding/json"
	"log"
	"strings"
	"testing"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
		globalLevel.Store(-1)
		jsonFormat.Store(false)
	})
	return &buf
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   DEBUG,
		"INFO":    INFO,
		"warning": WARN,
		"Error":   ERROR,
		"bogus":   INFO,
	}
	for in, want := range cases {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	buf := captureLog(t)

	l := NewLogger(WARN)
	l.Info("hidden")
	l.Warn("shown %d", 1)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("INFO message should be filtered, got %q", out)
	}
	if !strings.Contains(out, "[WARN] shown 1") {
		t.Errorf("expected WARN line, got %q", out)
	}
}

func TestLogger_GlobalLevelOverride(t *testing.T) {
	buf := captureLog(t)

	SetGlobalLevel(ERROR)
	NewLogger(DEBUG).Warn("suppressed")
	if buf.Len() != 0 {
		t.Errorf("global ERROR level should suppress WARN, got %q", buf.String())
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	buf := captureLog(t)
	// 保留 log 包的默认前缀，json 行不应受其影响
	log.SetFlags(log.LstdFlags)

	SetGlobalFormat("json")
	NewLogger(INFO).Info("catalog loaded: %d", 3)
	NewLogger(INFO).Warn("second")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 json lines, got %q", buf.String())
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "{") {
			t.Errorf("json line has a prefix: %q", line)
		}
	}

	var entry map[string]string
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if entry["level"] != "INFO" || entry["msg"] != "catalog loaded: 3" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestLogger_NilSafe(t *testing.T) {
	var l *Logger
	l.Info("no panic")
}
