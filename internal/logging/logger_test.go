package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "wpp.log")
	logger, err := New(path, "main", Options{Level: "debug"})
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &line); err != nil {
		t.Fatalf("log line is not JSON: %q", data)
	}
	if line["msg"] != "hello" || line["profile"] != "main" || line["level"] != "debug" {
		t.Errorf("log line = %v", line)
	}
	if _, ok := line["ts"]; !ok {
		t.Error("log line has no ts field")
	}
}

func TestLevelFiltersAndConsole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wpp.log")
	var stderr bytes.Buffer
	logger, err := New(path, "main", Options{Level: "warn", Console: true, Stderr: &stderr})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("quiet")
	logger.Warn("loud")
	_ = logger.Sync()

	out := stderr.String()
	if strings.Contains(out, "quiet") || !strings.Contains(out, "loud") {
		t.Errorf("console output = %q", out)
	}
}

func TestInvalidLevel(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "wpp.log"), "main", Options{Level: "loud"}); err == nil {
		t.Error("New() with unknown level should fail")
	}
}
