package crypto

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

// TestNewLogger tests the NewLogger function
func TestNewLogger(t *testing.T) {
	tests := []struct {
		name         string
		function     string
		expectedFunc string
		expectedPkg  string
	}{
		{
			name:         "basic function",
			function:     "TestFunction",
			expectedFunc: "TestFunction",
			expectedPkg:  "crypto",
		},
		{
			name:         "empty function",
			function:     "",
			expectedFunc: "",
			expectedPkg:  "crypto",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogger(tt.function)

			if logger == nil {
				t.Fatal("NewLogger() returned nil")
			}
			if logger.function != tt.expectedFunc {
				t.Errorf("NewLogger() function = %v, want %v", logger.function, tt.expectedFunc)
			}
			if logger.fields["function"] != tt.expectedFunc {
				t.Errorf("NewLogger() fields[function] = %v, want %v", logger.fields["function"], tt.expectedFunc)
			}
			if logger.fields["package"] != tt.expectedPkg {
				t.Errorf("NewLogger() fields[package] = %v, want %v", logger.fields["package"], tt.expectedPkg)
			}
		})
	}
}

// TestLoggerHelper_WithField tests that WithField adds the field and returns
// the same instance for chaining.
func TestLoggerHelper_WithField(t *testing.T) {
	logger := NewLogger("TestFunc")
	chained := logger.WithField("key_size", 32)

	if chained != logger {
		t.Error("WithField() should return same logger instance for chaining")
	}
	if logger.fields["key_size"] != 32 {
		t.Errorf("WithField() fields[key_size] = %v, want 32", logger.fields["key_size"])
	}
}

// TestLoggerHelper_WithFields tests bulk field addition
func TestLoggerHelper_WithFields(t *testing.T) {
	logger := NewLogger("TestFunc")
	logger.WithFields(logrus.Fields{
		"alpha": "a",
		"beta":  2,
	})

	if logger.fields["alpha"] != "a" {
		t.Errorf("WithFields() fields[alpha] = %v, want a", logger.fields["alpha"])
	}
	if logger.fields["beta"] != 2 {
		t.Errorf("WithFields() fields[beta] = %v, want 2", logger.fields["beta"])
	}
	// Base fields survive the merge.
	if logger.fields["function"] != "TestFunc" {
		t.Errorf("WithFields() fields[function] = %v, want TestFunc", logger.fields["function"])
	}
}

// TestLoggerHelper_EntryExit tests that Entry and Exit emit debug records
// carrying the function name.
func TestLoggerHelper_EntryExit(t *testing.T) {
	var buf bytes.Buffer
	origOut := logrus.StandardLogger().Out
	origLevel := logrus.GetLevel()
	logrus.SetOutput(&buf)
	logrus.SetLevel(logrus.DebugLevel)
	defer func() {
		logrus.SetOutput(origOut)
		logrus.SetLevel(origLevel)
	}()

	logger := NewLogger("EntryExitFunc")
	logger.Entry("starting work")
	logger.Exit()

	out := buf.String()
	if !strings.Contains(out, "Function entry: starting work") {
		t.Errorf("Entry() output %q missing entry message", out)
	}
	if !strings.Contains(out, "Function exit: EntryExitFunc") {
		t.Errorf("Exit() output %q missing exit message", out)
	}
}

// TestLoggerHelper_Levels tests the level passthrough methods
func TestLoggerHelper_Levels(t *testing.T) {
	var buf bytes.Buffer
	origOut := logrus.StandardLogger().Out
	origLevel := logrus.GetLevel()
	logrus.SetOutput(&buf)
	logrus.SetLevel(logrus.DebugLevel)
	defer func() {
		logrus.SetOutput(origOut)
		logrus.SetLevel(origLevel)
	}()

	logger := NewLogger("LevelFunc")
	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	out := buf.String()
	for _, want := range []string{"debug message", "info message", "warn message", "error message"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

// TestSecureFieldHash tests the sensitive-data preview helper
func TestSecureFieldHash(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		wantPreview string
		wantSize    int
	}{
		{
			name:        "nil data",
			data:        nil,
			wantPreview: "nil",
			wantSize:    0,
		},
		{
			name:        "short data",
			data:        []byte{0x01, 0x02},
			wantPreview: "0102",
			wantSize:    2,
		},
		{
			name:        "long data truncated",
			data:        []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x11, 0x22, 0x33, 0x44},
			wantPreview: "aabbccddeeff1122...",
			wantSize:    10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := SecureFieldHash(tt.data, "secret")

			if fields["secret_preview"] != tt.wantPreview {
				t.Errorf("SecureFieldHash() preview = %v, want %v", fields["secret_preview"], tt.wantPreview)
			}
			if fields["secret_size"] != tt.wantSize {
				t.Errorf("SecureFieldHash() size = %v, want %v", fields["secret_size"], tt.wantSize)
			}
		})
	}
}
