package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/nsis-build/internal/config"
	"github.com/oshokin/nsis-build/internal/logger"
	"github.com/oshokin/nsis-build/internal/service/builder"
	"github.com/oshokin/nsis-build/internal/service/compiler"
	"github.com/oshokin/nsis-build/internal/version"
)

var (
	// configPath to the build configuration file.
	configPath string
	// rootDir overrides the directory every relative path is resolved against.
	rootDir string
	// logLevel is the minimum level written to stderr.
	logLevel string
	// compilerPath is the makensis executable.
	compilerPath string
	// generateOnly skips the compiler run.
	generateOnly bool

	// rootCmd represents the base command for building the installer.
	rootCmd = &cobra.Command{
		Use:   "nsis-build",
		Short: "Generate NSIS fragments for an application tree and build the installer",
		Long: `Validates the build configuration, walks the application files breadth-first,
writes the variable, install and uninstall fragments into NsisInstaller/inc
and runs makensis on NsisInstaller/installer.nsi.

Relative paths are resolved against the directory holding this executable
unless --root is given.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("unknown log level %q", logLevel)
			}

			logger.SetLevel(level)

			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &builder.Options{
				ConfigPath:   configPath,
				RootDir:      rootDir,
				Compiler:     compilerPath,
				GenerateOnly: generateOnly,
				Output:       os.Stdout,
			}

			_, err := builder.Run(ctx, options)

			return err
		},
	}
)

// Execute runs the nsis-build CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.ErrorKV(context.Background(), "Build failed", "error", err)

		_ = logger.Logger().Sync()

		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to build configuration file")
	rootCmd.Flags().StringVar(&rootDir, "root", "", "root directory (defaults to the executable's directory)")
	rootCmd.Flags().StringVar(&compilerPath, "compiler", compiler.DefaultExecutable, "makensis executable")
	rootCmd.Flags().BoolVar(&generateOnly, "generate-only", false, "write the fragments without running makensis")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
}
