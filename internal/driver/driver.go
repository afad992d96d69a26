// Package driver orchestrates a vela compilation: parse, builder transform,
// diagnostic collection, and Go code generation.
package driver

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	semver "github.com/Masterminds/semver/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vela-lang/vela/internal/ast"
	"github.com/vela-lang/vela/internal/builder"
	"github.com/vela-lang/vela/internal/codegen"
	"github.com/vela-lang/vela/internal/config"
	"github.com/vela-lang/vela/internal/diagnostic"
	"github.com/vela-lang/vela/internal/parser"
	"github.com/vela-lang/vela/internal/types"
)

// Diagnostic codes owned by the driver. Transform failures carry their own
// codes (VB0001 through VB0004).
const (
	codeParse     = "VP0001"
	codeType      = "VT0001"
	codeNoBuilder = "VT0002"
	codeDirective = "VD0001"
)

// Output is the result of compiling one source file. Source is empty when
// any error-level diagnostic was produced.
type Output struct {
	Source      string
	Diagnostics []diagnostic.Diagnostic
	// Transformed counts the bodies rewritten by the builder transform.
	Transformed int
}

// HasErrors reports whether compilation failed.
func (o *Output) HasErrors() bool {
	for _, d := range o.Diagnostics {
		if d.Level == diagnostic.LevelError {
			return true
		}
	}
	return false
}

// Compiler compiles vela source files against one protocol configuration.
// Safe for concurrent use; the capability cache is shared across files.
type Compiler struct {
	cfg    *config.Config
	log    *zap.Logger
	cache  *builder.Cache
	target *semver.Version
	// Package is the package name of generated Go files.
	Package string
}

// New creates a compiler for the given protocol configuration.
func New(cfg *config.Config, log *zap.Logger) (*Compiler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Compiler{cfg: cfg, log: log, cache: builder.NewCache(), Package: "main"}
	if cfg.Target != "" {
		v, err := semver.NewVersion(cfg.Target)
		if err != nil {
			return nil, fmt.Errorf("invalid target version %q: %w", cfg.Target, err)
		}
		c.target = v
	}
	return c, nil
}

// CompileFile reads and compiles one source file.
func (c *Compiler) CompileFile(path string) (*Output, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source file: %w", err)
	}
	return c.Compile(path, src)
}

// Compile compiles one source file. The returned error covers internal
// failures only; language errors land in Output.Diagnostics.
func (c *Compiler) Compile(filename string, src []byte) (*Output, error) {
	diags := diagnostic.NewCollector()

	file, arena, err := parser.ParseFile(filename, string(src))
	if err != nil {
		diags.Add(diagnostic.Diagnostic{Code: codeParse, Level: diagnostic.LevelError, Message: err.Error()})
		return &Output{Diagnostics: diags.Diagnostics()}, nil
	}

	c.collectDirectives(arena, file, diags)

	fns := make([]codegen.Function, 0, len(file.Funcs))
	transformed := 0
	for _, fn := range file.Funcs {
		out := codegen.Function{Decl: fn, Body: fn.Body}

		if fn.Builder != "" {
			res, ok := c.transformFunc(arena, fn, diags)
			if ok && res.Transformed {
				out.Body = res.Body
				out.ReturnType = res.ReturnType
				transformed++
			}
		}
		fns = append(fns, out)
	}

	output := &Output{Diagnostics: diags.Diagnostics(), Transformed: transformed}
	if output.HasErrors() {
		c.log.Debug("compilation failed",
			zap.String("file", filename),
			zap.Int("diagnostics", len(output.Diagnostics)))
		return output, nil
	}

	source, err := codegen.Generate(c.Package, arena, fns)
	if err != nil {
		return nil, fmt.Errorf("generating code for %s: %w", filename, err)
	}
	output.Source = source

	c.log.Info("compiled",
		zap.String("file", filename),
		zap.Int("functions", len(file.Funcs)),
		zap.Int("transformed", transformed))
	return output, nil
}

// transformFunc applies the builder transform to one attributed function.
// Returns false when a diagnostic was emitted instead of a result.
func (c *Compiler) transformFunc(arena *ast.Arena, fn *ast.FuncDecl, diags *diagnostic.Collector) (builder.Result, bool) {
	bt, ok := c.cfg.Builders[fn.Builder]
	if !ok {
		diags.Errorf(codeNoBuilder, fn.Span, "unknown builder type %s", fn.Builder)
		return builder.Result{}, false
	}
	caps := c.cache.Resolve(bt)

	res := types.NewResolver()
	for name, sig := range c.cfg.Functions {
		res.DeclareFunc(name, sig)
	}
	for _, p := range fn.Params {
		res.Declare(p.Name, types.FromExpr(p.Type))
	}

	suppressed := builder.HasNonLocalExit(arena, fn.Body)
	if suppressed {
		c.log.Debug("transform suppressed by return statement",
			zap.String("func", fn.Name), zap.String("builder", fn.Builder))
	}

	result, err := builder.Transform(arena, fn.Body, bt, caps, res, builder.Options{
		HasNonLocalReturn: suppressed,
		TargetVersion:     c.target,
	})
	if err != nil {
		if te, ok := err.(*builder.TransformError); ok {
			diags.Errorf(te.Kind.Code(), te.Span, "%s", te.Error())
		} else {
			diags.Errorf(codeType, fn.Span, "%s", err.Error())
		}
		return builder.Result{}, false
	}

	if result.Transformed {
		c.log.Debug("lowered body",
			zap.String("func", fn.Name),
			zap.String("body", arena.RenderBlock(result.Body)))
	}

	if result.Transformed && fn.Return != nil {
		declared := types.FromExpr(fn.Return)
		if !types.AssignableTo(result.ReturnType, declared) {
			diags.Errorf(codeType, fn.Span,
				"%s: builder produces %s, function declares %s", fn.Name, result.ReturnType, declared)
			return builder.Result{}, false
		}
	}
	return result, true
}

// collectDirectives surfaces #warning and #error statements as diagnostics.
// They are compile-time only; #error fails the compilation.
func (c *Compiler) collectDirectives(arena *ast.Arena, file *ast.File, diags *diagnostic.Collector) {
	for _, fn := range file.Funcs {
		ast.InspectBlock(arena, fn.Body, func(s ast.Stmt) bool {
			if d, ok := s.(*ast.DirectiveStmt); ok {
				if d.Level == ast.DirectiveError {
					diags.Errorf(codeDirective, d.Span, "%s", d.Message)
				} else {
					diags.Warnf(codeDirective, d.Span, "%s", d.Message)
				}
			}
			return true
		})
	}
}

// CompileAll compiles multiple files concurrently, one goroutine per file up
// to GOMAXPROCS. Each file owns its arena; only the capability cache is
// shared. Results are keyed by path.
func (c *Compiler) CompileAll(ctx context.Context, paths []string) (map[string]*Output, error) {
	var mu sync.Mutex
	outputs := make(map[string]*Output, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := c.CompileFile(path)
			if err != nil {
				return err
			}
			mu.Lock()
			outputs[path] = out
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}
