package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	Reset     = "\033[0m"
	Red       = "\033[31m"
	Green     = "\033[32m"
	Yellow    = "\033[33m"
	Magenta   = "\033[35m"
	Cyan      = "\033[36m"
	White     = "\033[37m"
	BoldBlue  = "\033[1;34m"
	BoldWhite = "\033[1;37m"
)

var levelColors = map[slog.Level]string{
	slog.LevelDebug: Cyan,
	slog.LevelInfo:  Green,
	slog.LevelWarn:  Yellow,
	slog.LevelError: Red,
}

type ctxKey string

const (
	flowIDKey    ctxKey = "flowID"
	requestIDKey ctxKey = "requestID"
)

// idAttrs are printed as a bracketed prefix instead of key=value pairs.
var idAttrs = map[string]bool{"flow_id": true, "request_id": true}

// ColoredHandler renders records as a single colored line for terminals.
type ColoredHandler struct {
	h     slog.Handler
	out   io.Writer
	attrs []slog.Attr
}

func NewColoredHandler(w io.Writer, opts *slog.HandlerOptions) *ColoredHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &ColoredHandler{
		h:   slog.NewTextHandler(w, opts),
		out: w,
	}
}

func (h *ColoredHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}

func (h *ColoredHandler) Handle(ctx context.Context, r slog.Record) error {
	levelColor, ok := levelColors[r.Level]
	if !ok {
		levelColor = White
	}

	var line strings.Builder
	line.WriteString(fmt.Sprintf("%s%s%s ", Magenta, r.Time.Format("15:04:05.000"), Reset))
	line.WriteString(fmt.Sprintf("%s%-6s%s ", levelColor, strings.ToUpper(r.Level.String()), Reset))

	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})

	for _, a := range attrs {
		if idAttrs[a.Key] {
			line.WriteString(fmt.Sprintf("%s[%s]%s ", BoldBlue, a.Value.String(), Reset))
		}
	}
	line.WriteString(fmt.Sprintf("%s%s%s ", BoldWhite, r.Message, Reset))
	for _, a := range attrs {
		if idAttrs[a.Key] {
			continue
		}
		val := a.Value.String()
		if a.Value.Kind() == slog.KindString {
			val = fmt.Sprintf("%q", val)
		}
		line.WriteString(fmt.Sprintf("%s%s%s=%s ", Yellow, a.Key, Reset, val))
	}

	_, err := fmt.Fprintln(h.out, line.String())
	return err
}

func (h *ColoredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &ColoredHandler{
		h:     h.h.WithAttrs(attrs),
		out:   h.out,
		attrs: merged,
	}
}

func (h *ColoredHandler) WithGroup(name string) slog.Handler {
	return &ColoredHandler{
		h:     h.h.WithGroup(name),
		out:   h.out,
		attrs: h.attrs,
	}
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Setup(level string) *ColoredHandler {
	handler := NewColoredHandler(os.Stdout, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})

	slog.SetDefault(slog.New(handler))

	return handler
}

func WithFlowID(ctx context.Context, flowID string) context.Context {
	return context.WithValue(ctx, flowIDKey, flowID)
}

func GetFlowID(ctx context.Context) string {
	if id, ok := ctx.Value(flowIDKey).(string); ok {
		return id
	}
	return ""
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// FromContext returns the default logger tagged with whichever IDs ctx carries.
func FromContext(ctx context.Context) *slog.Logger {
	l := slog.Default()
	if id := GetFlowID(ctx); id != "" {
		l = l.With("flow_id", id)
	}
	if id := GetRequestID(ctx); id != "" {
		l = l.With("request_id", id)
	}
	return l
}
