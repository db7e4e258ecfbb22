package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// TestTruncatingHandler_ClipsLongValues tests that oversized string
// attributes are clipped and short ones pass through.
func TestTruncatingHandler_ClipsLongValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		key      string
		value    string
		wantClip bool
	}{
		{
			name:     "long body is clipped",
			key:      "body",
			value:    strings.Repeat("x", DefaultMaxValueLen+100),
			wantClip: true,
		},
		{
			name:     "value at the limit passes through",
			key:      "url",
			value:    strings.Repeat("y", DefaultMaxValueLen),
			wantClip: false,
		},
		{
			name:     "short value passes through",
			key:      "url",
			value:    "https://www.statmt.org/europarl/v10/",
			wantClip: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := New(&buf, true)

			logger.Info("test message", tt.key, tt.value)

			output := buf.String()

			if tt.wantClip {
				if strings.Contains(output, tt.value) {
					t.Errorf("expected value to be clipped, but found full value in output")
				}
				if !strings.Contains(output, truncationMark) {
					t.Errorf("expected truncation marker in output, got: %s", output)
				}
			} else {
				if !strings.Contains(output, tt.value) {
					t.Errorf("expected value %q in output, got: %s", tt.value, output)
				}
				if strings.Contains(output, truncationMark) {
					t.Errorf("expected no truncation marker, got: %s", output)
				}
			}
		})
	}
}

// TestTruncatingHandler_RuneBoundary tests that clipping counts runes,
// not bytes.
func TestTruncatingHandler_RuneBoundary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, true)

	// Each rune is 3 bytes; byte-based clipping would split a character.
	value := strings.Repeat("日", DefaultMaxValueLen+1)
	logger.Info("test message", "name", value)

	output := buf.String()
	if !strings.Contains(output, truncationMark) {
		t.Fatalf("expected truncation marker in output, got: %s", output)
	}
	if strings.Contains(output, "�") {
		t.Errorf("expected clean rune boundary, found replacement character: %s", output)
	}
}

// TestTruncatingHandler_Groups tests that grouped attributes are clipped too.
func TestTruncatingHandler_Groups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, true)

	long := strings.Repeat("z", DefaultMaxValueLen+1)
	logger.WithGroup("page").Info("test message", "url", "https://example.org/", "body", long)

	output := buf.String()

	if !strings.Contains(output, "https://example.org/") {
		t.Errorf("expected url to be visible, got: %s", output)
	}
	if strings.Contains(output, long) {
		t.Errorf("expected grouped body to be clipped, got full value")
	}
}

// TestTruncatingHandler_WithAttrs tests that WithAttrs clips attributes.
func TestTruncatingHandler_WithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, true)

	long := strings.Repeat("a", DefaultMaxValueLen+1)
	logger.With("body", long).Info("test message")

	output := buf.String()

	if strings.Contains(output, long) {
		t.Errorf("expected WithAttrs value to be clipped, got full value")
	}
	if !strings.Contains(output, truncationMark) {
		t.Errorf("expected truncation marker in output, got: %s", output)
	}
}

// TestLogLevels tests that verbose toggles the level threshold.
func TestLogLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		verbose    bool
		logLevel   slog.Level
		shouldShow bool
	}{
		{"debug shown in verbose mode", true, slog.LevelDebug, true},
		{"debug hidden in non-verbose mode", false, slog.LevelDebug, false},
		{"info shown in verbose mode", true, slog.LevelInfo, true},
		{"info hidden in non-verbose mode", false, slog.LevelInfo, false},
		{"warn shown in non-verbose mode", false, slog.LevelWarn, true},
		{"error shown in non-verbose mode", false, slog.LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := New(&buf, tt.verbose)

			testMsg := "test_unique_message_12345"

			switch tt.logLevel {
			case slog.LevelDebug:
				logger.Debug(testMsg)
			case slog.LevelInfo:
				logger.Info(testMsg)
			case slog.LevelWarn:
				logger.Warn(testMsg)
			case slog.LevelError:
				logger.Error(testMsg)
			}

			output := buf.String()
			hasMessage := strings.Contains(output, testMsg)

			if tt.shouldShow && !hasMessage {
				t.Errorf("expected message to be shown, but not found in output: %s", output)
			}
			if !tt.shouldShow && hasMessage {
				t.Errorf("expected message to be hidden, but found in output: %s", output)
			}
		})
	}
}

// TestNewJSON tests JSON logger creation.
func TestNewJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSON(&buf, true)

	long := strings.Repeat("b", DefaultMaxValueLen+1)
	logger.Info("test message", "body", long)

	output := buf.String()

	if !strings.Contains(output, "{") || !strings.Contains(output, "}") {
		t.Errorf("expected JSON format, but got: %s", output)
	}
	if strings.Contains(output, long) {
		t.Errorf("expected body to be clipped in JSON output")
	}
}

// TestNewTruncatingHandler_NilHandler tests that nil handler is handled gracefully.
func TestNewTruncatingHandler_NilHandler(t *testing.T) {
	t.Parallel()

	handler := NewTruncatingHandler(nil, 0)
	if handler == nil {
		t.Fatal("expected non-nil handler")
	}
	if handler.maxValueLen != DefaultMaxValueLen {
		t.Errorf("expected default limit %d, got %d", DefaultMaxValueLen, handler.maxValueLen)
	}

	logger := slog.New(handler)
	logger.Info("test message") // Should not panic
}
