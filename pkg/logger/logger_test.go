package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"wikiassets/pkg/config"
)

func bufferLogger(buf *bytes.Buffer) *zerologLogger {
	zlog := zerolog.New(buf).Level(zerolog.DebugLevel)
	return &zerologLogger{logger: &zlog, fields: make(map[string]interface{})}
}

func TestNew(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{"console only", &config.LoggingConfig{Level: "info", Console: true}, false},
		{"no outputs", &config.LoggingConfig{Level: "debug"}, false},
		{"invalid level", &config.LoggingConfig{Level: "loud"}, true},
		{"file and console", &config.LoggingConfig{Level: "info", Console: true, File: filepath.Join(dir, "logs", "run.log")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && l == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wikiassets.log")

	l, err := New(&config.LoggingConfig{Level: "info", File: path})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	l.WithField("item", "Diamond").Info("Item processed")
	l.Debug("below threshold")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "Item processed") {
		t.Errorf("Expected message in log file, got %q", data)
	}
	if !strings.Contains(string(data), "Diamond") {
		t.Errorf("Expected field in log file, got %q", data)
	}
	if strings.Contains(string(data), "below threshold") {
		t.Error("Debug message should be filtered at info level")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"fatal", zerolog.InfoLevel, true},
		{"", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseLogLevel() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if level != tt.expected {
				t.Errorf("parseLogLevel() = %v, want %v", level, tt.expected)
			}
		})
	}
}

func TestFieldChaining(t *testing.T) {
	var buf bytes.Buffer
	l := bufferLogger(&buf)

	l.WithField("category", "Category:Items").
		WithFields(map[string]interface{}{"page": 2, "complete": false}).
		InfoWithFields("Fetched category page", map[string]interface{}{"members": int64(50)})

	output := buf.String()
	for _, want := range []string{
		"Fetched category page",
		`"category":"Category:Items"`,
		`"page":2`,
		`"complete":false`,
		`"members":50`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %s in output %s", want, output)
		}
	}
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	l := bufferLogger(&buf)

	_ = l.WithField("child", true)
	l.Info("parent")

	if strings.Contains(buf.String(), "child") {
		t.Error("Child fields leaked into parent logger")
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	l := bufferLogger(&buf)

	if got := l.WithError(nil); got != l {
		t.Error("WithError(nil) should return the same logger")
	}

	l.WithError(errors.New("connection reset")).Error("Request failed")

	output := buf.String()
	if !strings.Contains(output, "Request failed") || !strings.Contains(output, "connection reset") {
		t.Errorf("Unexpected output: %s", output)
	}
}

func TestFieldTypes(t *testing.T) {
	var buf bytes.Buffer
	l := bufferLogger(&buf)

	l.WithFields(map[string]interface{}{
		"duration": 1500 * time.Millisecond,
		"time":     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		"strings":  []string{".png", ".gif"},
		"err":      errors.New("boom"),
		"custom":   struct{ Name string }{Name: "Apple"},
	}).Warn("all types")

	output := buf.String()
	for _, want := range []string{`"strings":[".png",".gif"]`, `"err":"boom"`, `"Name":"Apple"`} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %s in output %s", want, output)
		}
	}
}

func TestHelpers(t *testing.T) {
	tl := NewTestLogger()

	LogRequest(tl, "categorymembers", 200, time.Millisecond)
	LogRequest(tl, "imageinfo", 503, time.Millisecond)
	LogItemOutcome(tl, "Apple", "downloaded", true, true)
	LogItemOutcome(tl, "Stick", "unresolved", false, true)
	LogRunSummary(tl, 2, 1, 1, true, time.Second)

	if len(tl.GetMessagesByLevel("DEBUG")) != 1 {
		t.Errorf("Expected one debug request log, got %d", len(tl.GetMessagesByLevel("DEBUG")))
	}
	if !tl.HasError() {
		t.Error("Expected server error to be logged at error level")
	}
	if !tl.HasMessage("Failed to process item") {
		t.Error("Expected failed item warning")
	}

	summary := tl.GetMessages()[len(tl.GetMessages())-1]
	if summary.Fields["downloaded"] != 1 || summary.Fields["failed"] != 1 {
		t.Errorf("Unexpected summary fields: %v", summary.Fields)
	}
}

func TestTestLoggerSharesMessages(t *testing.T) {
	tl := NewTestLogger()
	child := tl.WithField("worker", 3).WithError(errors.New("timeout"))

	child.Warn("slow fetch")

	msgs := tl.GetMessages()
	if len(msgs) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Fields["worker"] != 3 || msgs[0].Error == nil {
		t.Errorf("Unexpected captured message: %+v", msgs[0])
	}

	tl.Clear()
	if len(tl.GetMessages()) != 0 {
		t.Error("Clear() did not remove messages")
	}
}

func TestGlobalLogger(t *testing.T) {
	if err := Initialize(&config.LoggingConfig{Level: "disabled"}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	if GetLogger() == nil {
		t.Fatal("GetLogger() returned nil")
	}

	Info("info message")
	Error("error message")
	WithField("key", "value").Info("with field")
	WithError(errors.New("test")).Error("with error")
}
