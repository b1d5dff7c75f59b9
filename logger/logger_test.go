package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func jsonLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: "json"}, "pipelinectl", buf)
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	l := New(&Config{Level: "invalid-level", Format: "json", Output: "stdout"}, "test")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestJSONOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "debug").WithPipeline("p1").WithComponent("problems")
	l.Info("validated", Fields(FieldProblems, 2))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if entry[FieldPipelineID] != "p1" {
		t.Errorf("expected pipeline_id=p1, got %v", entry[FieldPipelineID])
	}
	if entry[FieldComponent] != "problems" {
		t.Errorf("expected component=problems, got %v", entry[FieldComponent])
	}
	if entry[FieldProblems] != float64(2) {
		t.Errorf("expected problems=2, got %v", entry[FieldProblems])
	}
	if entry["service"] != "pipelinectl" {
		t.Errorf("expected service=pipelinectl, got %v", entry["service"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "warn")
	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn message, got %q", buf.String())
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("discarded", Fields("k", "v"))
	l.WithComponent("x").Info("discarded")
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "info")

	if got := l.WithContext(context.Background()); got != l {
		t.Error("expected the same logger when context has no request id")
	}

	ctx := ContextWithRequestID(context.Background(), "req-1")
	if RequestIDFromContext(ctx) != "req-1" {
		t.Fatalf("expected req-1, got %q", RequestIDFromContext(ctx))
	}
	l.WithContext(ctx).Info("handled")
	if !strings.Contains(buf.String(), `"request_id":"req-1"`) {
		t.Errorf("expected request_id in output, got %q", buf.String())
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger(&buf, "info").WithError(errors.New("boom")).Error("failed")
	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("expected error text in output, got %q", buf.String())
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "console", NoColor: true}, "pipelinectl", &buf)
	l.Info("hello")
	if !strings.Contains(buf.String(), "[PIP][INF]") {
		t.Errorf("expected service and level tags, got %q", buf.String())
	}
}

func TestInitAndGlobal(t *testing.T) {
	Init(&Config{Level: "info", Format: "json", Output: "stderr"})
	if GetGlobalLogger() == nil {
		t.Fatal("expected global logger after Init")
	}
	custom := Nop()
	SetGlobalLogger(custom)
	if GetGlobalLogger() != custom {
		t.Error("expected SetGlobalLogger to replace the global logger")
	}
	Debug("d")
	Info("i")
	Warn("w")
	Error("e")
	if WithComponent("x") == nil {
		t.Error("expected component logger")
	}
}

func TestGlobalLogger_ConcurrentDefault(t *testing.T) {
	SetGlobalLogger(nil)
	t.Cleanup(func() { SetGlobalLogger(nil) })

	const workers = 32
	got := make([]*Logger, workers)
	var start, wg sync.WaitGroup
	start.Add(1)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start.Wait()
			got[i] = GetGlobalLogger()
		}(i)
	}
	start.Done()
	wg.Wait()

	for i, l := range got {
		if l == nil {
			t.Fatalf("worker %d got nil logger", i)
		}
		if l != got[0] {
			t.Fatalf("worker %d got a different default logger", i)
		}
	}
	if GetGlobalLogger() != got[0] {
		t.Error("expected later callers to keep the first default")
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" || cfg.Format != "console" || cfg.Output != "stderr" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamp to be enabled")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "debug", Format: "json", Output: "stdout"}, false},
		{"disabled level", Config{Level: "disabled", Format: "json", Output: "stderr"}, false},
		{"bad level", Config{Level: "loud", Format: "json", Output: "stdout"}, true},
		{"bad format", Config{Level: "info", Format: "xml", Output: "stdout"}, true},
		{"bad output", Config{Level: "info", Format: "json", Output: "file"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestRegisterAndGet(t *testing.T) {
	l := NewDefault("custom-component")
	Register("my-component", l)
	if Get("my-component") != l {
		t.Error("expected Get to return the registered logger")
	}
	if Get("unregistered-component") == nil {
		t.Fatal("expected non-nil logger for unregistered component")
	}
}

func TestRegisterDefaults(t *testing.T) {
	SetGlobalLogger(Nop())
	RegisterDefaults()
	for _, name := range defaultComponents {
		l := Get(name)
		if l == nil {
			t.Fatalf("expected non-nil logger for %q", name)
		}
		if Get(name) != l {
			t.Errorf("expected %q to be registered, got a fresh logger", name)
		}
	}
}

func TestFields(t *testing.T) {
	m := Fields(FieldNodeID, "n1", FieldOp, "run", "dangling")
	if len(m) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(m))
	}
	if m[FieldNodeID] != "n1" || m[FieldOp] != "run" {
		t.Errorf("unexpected fields: %v", m)
	}
	if len(Fields(1, "x")) != 0 {
		t.Error("non-string keys should be skipped")
	}
}

func TestErrorAndDurationFields(t *testing.T) {
	ef := ErrorFields("migrate", errors.New("bad"))
	if ef[FieldOperation] != "migrate" || ef[FieldError] != "bad" {
		t.Errorf("unexpected error fields: %v", ef)
	}
	df := DurationFields("validate", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Errorf("expected 1500ms, got %v", df[FieldDuration])
	}
}
