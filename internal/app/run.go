package app

import (
	"context"
	"fmt"
	"time"

	"github.com/vectorlab/vectograph/internal/bridge"
	"github.com/vectorlab/vectograph/internal/ctxlog"
	"github.com/vectorlab/vectograph/internal/runtime"
	"github.com/zclconf/go-cty/cty"
)

// Run loads the configured document, compiles it, evaluates the result,
// and, in watch mode, keeps recompiling incrementally as the file changes.
func (a *App) Run(ctx context.Context) error {
	ctx = a.context(ctx)
	logger := ctxlog.FromContext(ctx)

	if a.config.BridgePort > 0 {
		addr := fmt.Sprintf("127.0.0.1:%d", a.config.BridgePort)
		go func() {
			if err := bridge.New(a.compiler).ListenAndServe(ctx, addr); err != nil {
				logger.Error("Editor bridge stopped.", "error", err)
			}
		}()
	}

	if err := a.compileAndRender(ctx); err != nil {
		if !a.config.Watch {
			return err
		}
		// In watch mode a broken initial document is not fatal; the next
		// valid edit produces the first executor.
		logger.Warn("Initial compilation failed, waiting for edits.", "error", err)
	}

	if !a.config.Watch {
		return nil
	}
	return a.watch(ctx)
}

// compileAndRender performs one full load-compile-evaluate cycle against
// the configured document path.
func (a *App) compileAndRender(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	doc, err := a.loader.LoadFile(ctx, a.config.DocPath)
	if err != nil {
		return err
	}

	executor, delta, err := a.compiler.Compile(ctx, doc)
	if err != nil {
		return fmt.Errorf("compilation failed: %w", err)
	}
	logger.Debug("Document compiled.",
		"compilation_id", delta.CompilationID,
		"rebuilt", delta.Rebuilt,
		"reused", delta.Reused,
	)

	ec := &runtime.EvalContext{Time: time.Now()}
	result, err := executor.Execute(ctx, ec)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	fmt.Fprintln(a.outW, formatValue(result))
	return nil
}

// formatValue renders an evaluation result for the terminal.
func formatValue(v cty.Value) string {
	switch {
	case v == cty.NilVal:
		return "(none)"
	case v.Type().Equals(cty.Number):
		return v.AsBigFloat().Text('g', -1)
	case v.Type().Equals(cty.String):
		return v.AsString()
	case v.Type().Equals(cty.Bool):
		if v.True() {
			return "true"
		}
		return "false"
	default:
		return v.GoString()
	}
}
