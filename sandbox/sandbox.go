package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/skyviz/vizflow/logging"
)

// DangerousPatterns is the substring blocklist applied to candidate code
// before it ever reaches the interpreter. The interpreter namespace exposes
// no host capability either way; the static check exists so hostile code is
// rejected with a clear reason instead of failing mid-run.
var DangerousPatterns = []string{
	"require(",
	"import os",
	"import ",
	"import(",
	"eval(",
	"new Function",
	"process.",
	"child_process",
	"fs.",
	"XMLHttpRequest",
	"fetch(",
	"WebSocket",
	"__proto__",
	"globalThis",
}

// chartVar is the global the executor looks for after running a script.
const chartVar = "chart"

// Result is the outcome of one sandboxed execution. Artifact holds the
// rendered embeddable HTML when Success is true.
type Result struct {
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	Artifact string `json:"artifact,omitempty"`
}

// Options configures the Executor.
type Options struct {
	// Budget is the wall-clock limit for one execution. The interpreter is
	// interrupted when it elapses, bounding runaway loops in generated code.
	Budget time.Duration

	// Logger receives execution diagnostics. Defaults to NoOp.
	Logger logging.Logger
}

// Executor runs visualization scripts inside a fresh, minimal interpreter
// per call. Executors are stateless and safe for concurrent use.
type Executor struct {
	opts Options
}

// NewExecutor constructs an Executor with a 5 second default budget.
func NewExecutor(optFns ...func(o *Options)) *Executor {
	opts := Options{
		Budget: 5 * time.Second,
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Executor{opts: opts}
}

// ValidateCode applies the static blocklist. It returns false and a
// human-readable reason on the first match.
func (e *Executor) ValidateCode(code string) (bool, string) {
	for _, p := range DangerousPatterns {
		if strings.Contains(code, p) {
			return false, fmt.Sprintf("Dangerous pattern detected: %s", p)
		}
	}
	return true, ""
}

// Execute validates and runs code, extracts the resulting chart object and
// renders it. Validation failures never reach the interpreter; runtime
// failures are reported in Result.Error, never raised.
func (e *Executor) Execute(ctx context.Context, code string) Result {
	if ok, reason := e.ValidateCode(code); !ok {
		e.opts.Logger.Warn("sandbox rejected code", "reason", reason)
		return Result{Success: false, Error: reason}
	}

	vm := goja.New()
	vm.SetFieldNameMapper(goja.UncapFieldNameMapper())
	if err := vm.Set("charts", Factory{}); err != nil {
		return Result{Success: false, Error: err.Error()}
	}

	timer := time.AfterFunc(e.opts.Budget, func() {
		vm.Interrupt("execution budget exceeded")
	})
	defer timer.Stop()

	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-watchDone:
		}
	}()

	start := time.Now()
	if _, err := vm.RunString(code); err != nil {
		e.opts.Logger.Warn("sandbox execution failed", "error", err.Error(), "elapsed", time.Since(start))
		return Result{Success: false, Error: err.Error()}
	}

	chart := extractChart(vm)
	if chart == nil {
		return Result{Success: false, Error: "no chart object found in executed code"}
	}

	var buf bytes.Buffer
	if err := chart.render(&buf); err != nil {
		e.opts.Logger.Warn("chart rendering failed", "error", err.Error())
		return Result{Success: false, Error: fmt.Sprintf("chart rendering failed: %s", err)}
	}

	e.opts.Logger.Debug("sandbox execution succeeded",
		"chart_type", chart.Kind(), "elapsed", time.Since(start), "artifact_bytes", buf.Len())

	return Result{Success: true, Artifact: buf.String()}
}

// extractChart looks for the canonical "chart" global first, then falls back
// to scanning every global for a chart builder.
func extractChart(vm *goja.Runtime) *Chart {
	if v := vm.Get(chartVar); v != nil {
		if c, ok := v.Export().(*Chart); ok {
			return c
		}
	}
	global := vm.GlobalObject()
	for _, key := range global.Keys() {
		if c, ok := global.Get(key).Export().(*Chart); ok {
			return c
		}
	}
	return nil
}
