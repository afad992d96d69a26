package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vela-lang/vela/internal/config"
	"github.com/vela-lang/vela/internal/driver"
)

const version = "0.3.0"

var (
	verbose      bool
	protocolPath string
	outDir       string
	pkgName      string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "vela",
	Short: "vela - a statement-to-expression builder compiler",
	Long: `vela compiles declarative function bodies into Go source.

Functions marked @builder(Name) have their statement sequences rewritten
into a single value aggregated through the builder type's combinator
operations, as declared in a protocol file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var buildCmd = &cobra.Command{
	Use:   "build [files...]",
	Short: "Compile vela source files to Go",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		comp, err := newCompiler()
		if err != nil {
			return err
		}

		outputs, err := comp.CompileAll(cmd.Context(), args)
		if err != nil {
			return err
		}

		failed := false
		for _, path := range args {
			out := outputs[path]
			for _, d := range out.Diagnostics {
				fmt.Fprintln(os.Stderr, d)
			}
			if out.HasErrors() {
				failed = true
				continue
			}
			if err := writeOutput(path, out.Source); err != nil {
				return err
			}
		}
		if failed {
			return fmt.Errorf("compilation failed")
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the vela version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("vela %s\n", version)
	},
}

func newCompiler() (*driver.Compiler, error) {
	cfg, err := config.Load(protocolPath)
	if err != nil {
		return nil, err
	}
	comp, err := driver.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	comp.Package = pkgName
	return comp, nil
}

// writeOutput writes generated Go next to the source file, or under --out
// when set. foo.vela becomes foo_vela.go.
func writeOutput(srcPath, source string) error {
	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	dir := filepath.Dir(srcPath)
	if outDir != "" {
		dir = outDir
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(filepath.Join(dir, base+"_vela.go"), []byte(source), 0o644)
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&protocolPath, "protocol", "p", "vela.yaml", "builder protocol file")
	rootCmd.PersistentFlags().StringVarP(&outDir, "out", "o", "", "output directory (default: next to source)")
	rootCmd.PersistentFlags().StringVar(&pkgName, "package", "main", "package name of generated Go files")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
