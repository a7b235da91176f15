package common

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// TraceLevel controls how much diagnostic output the tracer emits
type TraceLevel int

const (
	TraceLevelOff TraceLevel = iota
	TraceLevelError
	TraceLevelWarn
	TraceLevelInfo
	TraceLevelDebug
)

// TraceComponent tags trace output with the subsystem that produced it
type TraceComponent string

const (
	TraceComponentFooter     TraceComponent = "FOOTER"
	TraceComponentSchema     TraceComponent = "SCHEMA"
	TraceComponentPruning    TraceComponent = "PRUNING"
	TraceComponentDictionary TraceComponent = "DICTIONARY"
	TraceComponentIO         TraceComponent = "IO"
)

// Tracer provides leveled, component-tagged diagnostic output.
// Configuration is read once from the environment; after that the tracer
// is immutable and safe for concurrent use.
type Tracer struct {
	level TraceLevel
}

var (
	tracerOnce sync.Once
	tracer     *Tracer
)

// GetTracer returns the process-wide tracer, initializing it from the
// PARQUETSCAN_TRACE environment variable on first use
func GetTracer() *Tracer {
	tracerOnce.Do(func() {
		tracer = &Tracer{level: levelFromEnv()}
	})
	return tracer
}

func levelFromEnv() TraceLevel {
	switch strings.ToLower(os.Getenv("PARQUETSCAN_TRACE")) {
	case "debug":
		return TraceLevelDebug
	case "info":
		return TraceLevelInfo
	case "warn", "warning":
		return TraceLevelWarn
	case "error":
		return TraceLevelError
	default:
		return TraceLevelOff
	}
}

// TraceContext builds a key/value context map from alternating keys and values
func TraceContext(kv ...interface{}) map[string]interface{} {
	ctx := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kv[i])
		}
		ctx[key] = kv[i+1]
	}
	return ctx
}

// Debug emits a debug-level trace message
func (t *Tracer) Debug(component TraceComponent, msg string, ctx ...map[string]interface{}) {
	t.emit(TraceLevelDebug, "DEBUG", component, msg, ctx)
}

// Info emits an info-level trace message
func (t *Tracer) Info(component TraceComponent, msg string, ctx ...map[string]interface{}) {
	t.emit(TraceLevelInfo, "INFO", component, msg, ctx)
}

// Warn emits a warn-level trace message
func (t *Tracer) Warn(component TraceComponent, msg string, ctx ...map[string]interface{}) {
	t.emit(TraceLevelWarn, "WARN", component, msg, ctx)
}

// Error emits an error-level trace message
func (t *Tracer) Error(component TraceComponent, msg string, ctx ...map[string]interface{}) {
	t.emit(TraceLevelError, "ERROR", component, msg, ctx)
}

func (t *Tracer) emit(level TraceLevel, label string, component TraceComponent, msg string, ctx []map[string]interface{}) {
	if t.level < level {
		return
	}
	var sb strings.Builder
	sb.WriteString(time.Now().Format("15:04:05.000"))
	sb.WriteString(" [")
	sb.WriteString(label)
	sb.WriteString("] [")
	sb.WriteString(string(component))
	sb.WriteString("] ")
	sb.WriteString(msg)
	for _, c := range ctx {
		keys := make([]string, 0, len(c))
		for k := range c {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, " %s=%v", k, c[k])
		}
	}
	fmt.Fprintln(os.Stderr, sb.String())
}
