package log

import (
	"context"
	"io"
	"log/slog"
	"unicode/utf8"
)

// DefaultMaxValueLen is the longest attribute value TruncatingHandler
// passes through unmodified. Listing pages routinely run to hundreds of
// kilobytes, and a warning that quotes one should not flood the terminal.
const DefaultMaxValueLen = 256

// truncationMark is appended to clipped values so truncation is visible.
const truncationMark = "...(truncated)"

// TruncatingHandler wraps an slog.Handler to clip oversized attribute
// values. It intercepts log records and shortens string attributes that
// exceed the configured limit before passing them to the underlying
// handler.
//
// Design decision: We use a handler wrapper rather than call-site
// truncation because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Call sites can log page bodies and errors without worrying about size
type TruncatingHandler struct {
	// handler is the underlying slog handler that receives clipped records.
	handler slog.Handler

	// maxValueLen is the longest string value passed through unmodified.
	maxValueLen int
}

// NewTruncatingHandler creates a new TruncatingHandler wrapping the given
// handler. String attributes longer than maxValueLen runes are clipped.
// If handler is nil, the returned TruncatingHandler uses
// slog.Default().Handler(). If maxValueLen is not positive,
// DefaultMaxValueLen is used.
func NewTruncatingHandler(handler slog.Handler, maxValueLen int) *TruncatingHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	if maxValueLen <= 0 {
		maxValueLen = DefaultMaxValueLen
	}
	return &TruncatingHandler{handler: handler, maxValueLen: maxValueLen}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *TruncatingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle clips the record's attributes and passes it to the underlying handler.
func (h *TruncatingHandler) Handle(ctx context.Context, r slog.Record) error {
	clipped := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		clipped.AddAttrs(h.clipAttr(a))
		return true
	})

	return h.handler.Handle(ctx, clipped)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are clipped before being added.
func (h *TruncatingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clippedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clippedAttrs[i] = h.clipAttr(a)
	}
	return &TruncatingHandler{handler: h.handler.WithAttrs(clippedAttrs), maxValueLen: h.maxValueLen}
}

// WithGroup returns a new handler with the given group name.
func (h *TruncatingHandler) WithGroup(name string) slog.Handler {
	return &TruncatingHandler{handler: h.handler.WithGroup(name), maxValueLen: h.maxValueLen}
}

// clipAttr clips a single attribute, recursively handling groups.
func (h *TruncatingHandler) clipAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		clippedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			clippedAttrs[i] = h.clipAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(clippedAttrs...)}
	}

	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, h.clip(a.Value.String()))
	}

	return a
}

// clip shortens s to at most maxValueLen runes, appending a marker when
// anything was removed. Clipping on rune boundaries keeps multi-byte
// corpus names (Czech, Chinese, etc.) from being cut mid-character.
func (h *TruncatingHandler) clip(s string) string {
	if utf8.RuneCountInString(s) <= h.maxValueLen {
		return s
	}

	runes := []rune(s)
	return string(runes[:h.maxValueLen]) + truncationMark
}

// New creates a new slog.Logger for corpusfind commands.
// Attribute values are clipped to DefaultMaxValueLen.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
//
// Returns a *slog.Logger that can be used with slog.SetDefault() or
// passed to components that accept *slog.Logger.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)

	return slog.New(NewTruncatingHandler(textHandler, DefaultMaxValueLen))
}

// NewJSON creates a new slog.Logger that outputs JSON format with the
// same clipping behavior. Useful for structured log aggregation.
func NewJSON(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	jsonHandler := slog.NewJSONHandler(w, opts)

	return slog.New(NewTruncatingHandler(jsonHandler, DefaultMaxValueLen))
}
