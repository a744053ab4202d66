package internal

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetLogLevel(t *testing.T) {
	originalLevel := logLevel
	defer SetLogLevel(originalLevel)

	SetLogLevel(LogLevelDebug)
	if logLevel != LogLevelDebug {
		t.Errorf("SetLogLevel() logLevel = %v, want LogLevelDebug", logLevel)
	}

	SetLogLevel(LogLevelError)
	if logLevel != LogLevelError {
		t.Errorf("SetLogLevel() logLevel = %v, want LogLevelError", logLevel)
	}
}

func TestSetVerbose(t *testing.T) {
	originalLevel := logLevel
	defer SetLogLevel(originalLevel)

	SetVerbose(true)
	if logLevel != LogLevelDebug {
		t.Errorf("SetVerbose(true) logLevel = %v, want LogLevelDebug", logLevel)
	}

	SetVerbose(false)
	if logLevel != LogLevelInfo {
		t.Errorf("SetVerbose(false) logLevel = %v, want LogLevelInfo", logLevel)
	}
}

func TestLogFunctions_RespectLevel(t *testing.T) {
	originalLevel := logLevel
	var buf bytes.Buffer
	SetLogOutput(&buf)
	defer func() {
		SetLogOutput(os.Stderr)
		SetLogLevel(originalLevel)
	}()

	SetLogLevel(LogLevelWarn)
	LogError("error %d", 1)
	LogWarn("warn %d", 2)
	LogInfo("info %d", 3)
	LogDebug("debug %d", 4)

	out := buf.String()
	for _, want := range []string{"error 1", "warn 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
	for _, unwanted := range []string{"info 3", "debug 4"} {
		if strings.Contains(out, unwanted) {
			t.Errorf("log output should not contain %q:\n%s", unwanted, out)
		}
	}
}

func TestSetLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kconsole.log")
	SetLogOutput(&bytes.Buffer{})
	SetLogFile(path)
	defer func() {
		SetLogFile("")
		SetLogOutput(os.Stderr)
	}()

	LogWarn("persist failed for %s", "chat")
	SyncLogger()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), `"message":"persist failed for chat"`) {
		t.Errorf("log file should contain JSON message, got: %s", data)
	}
}

func TestLogLevels(t *testing.T) {
	if LogLevelError >= LogLevelWarn {
		t.Error("LogLevelError should be less than LogLevelWarn")
	}
	if LogLevelWarn >= LogLevelInfo {
		t.Error("LogLevelWarn should be less than LogLevelInfo")
	}
	if LogLevelInfo >= LogLevelDebug {
		t.Error("LogLevelInfo should be less than LogLevelDebug")
	}
}
