package logger_test

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"go.trai.ch/press/internal/adapters/logger"
	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/zerr"
)

func newBuffered() (*logger.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	lg := logger.New()
	lg.SetOutput(&buf)
	return lg, &buf
}

func TestLogger_Levels(t *testing.T) {
	lg, buf := newBuffered()

	lg.Debug("hidden detail")
	lg.Info("build finished", "done", 3)
	lg.Warn("cache write failed")

	output := buf.String()
	if strings.Contains(output, "hidden detail") {
		t.Errorf("Expected debug output to be suppressed by default, got: %s", output)
	}
	if !strings.Contains(output, "INFO") || !strings.Contains(output, "done=3") {
		t.Errorf("Expected structured info line, got: %s", output)
	}
	if !strings.Contains(output, "WARN") {
		t.Errorf("Expected output to contain 'WARN', got: %s", output)
	}

	lg.SetVerbose(true)
	lg.Debug("visible detail")
	if !strings.Contains(buf.String(), "visible detail") {
		t.Errorf("Expected debug output when verbose, got: %s", buf.String())
	}
}

func TestLogger_Error(t *testing.T) {
	lg, buf := newBuffered()
	lg.Error(os.ErrPermission)
	lg.Error(nil)

	output := buf.String()
	if !strings.Contains(output, "permission denied") {
		t.Errorf("Expected output to contain 'permission denied', got: %s", output)
	}
	if strings.Count(output, "ERROR") != 1 {
		t.Errorf("Expected exactly one error line, got: %s", output)
	}
}

func TestLogger_ErrorMetadataWhenVerbose(t *testing.T) {
	lg, buf := newBuffered()
	lg.SetVerbose(true)

	lg.Error(zerr.With(zerr.Wrap(domain.ErrTemplate, "render failed"), "node", "posts/a.md"))

	if !strings.Contains(buf.String(), "node=posts/a.md") {
		t.Errorf("Expected metadata field in output, got: %s", buf.String())
	}
}

func TestNew_WritesToStderr(t *testing.T) {
	originalStderr := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stderr = w
	defer func() { os.Stderr = originalStderr }()

	logger.New().Info("test initialization")
	_ = w.Close()

	out, _ := io.ReadAll(r)
	_ = r.Close()
	if !strings.Contains(string(out), "test initialization") {
		t.Errorf("Expected logger to log 'test initialization', got: %s", out)
	}
}
