package builder

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/oshokin/nsis-build/internal/config"
	"github.com/oshokin/nsis-build/internal/logger"
	"github.com/oshokin/nsis-build/internal/manifest"
	"github.com/oshokin/nsis-build/internal/nsis"
	"github.com/oshokin/nsis-build/internal/service/compiler"
)

const (
	// InstallerDir holds the installer script and everything generated for it.
	InstallerDir = "NsisInstaller"
	// IncludeDir receives the generated fragments.
	IncludeDir = InstallerDir + "/inc"
	// BinDir receives the compiled installer.
	BinDir = InstallerDir + "/bin"
)

// Options contains inputs for the build entry point.
type Options struct {
	// ConfigPath is the build configuration; relative paths are resolved
	// against the root. Defaults to config.DefaultConfigFilename.
	ConfigPath string
	// RootDir anchors every relative path. Defaults to the directory holding
	// the running executable.
	RootDir string
	// Compiler overrides the compiler executable.
	Compiler string
	// GenerateOnly stops after the fragments are written.
	GenerateOnly bool
	// Output receives the compiler output; defaults to os.Stdout.
	Output io.Writer
	// ConfigOptions are passed through to config.Load.
	ConfigOptions []config.Option

	// watched overrides the process names that keep a build marker alive.
	watched []string
}

// Result describes what a run produced.
type Result struct {
	// Root is the resolved root directory.
	Root string
	// Config is the validated build configuration.
	Config *config.BuildConfig
	// Manifest is the walked application tree.
	Manifest *manifest.Manifest
	// Fragments are the paths of the written fragment files.
	Fragments []string
}

// Run executes the build: validate, walk, emit, compile.
func Run(ctx context.Context, opts *Options) (*Result, error) {
	ctx = logger.WithName(ctx, "nsis-build")

	root, err := resolveRoot(opts.RootDir)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithKV(ctx, "root", root)

	watched := opts.watched
	if watched == nil {
		watched = defaultWatched()
	}

	release, err := newMarker(root, watched...).Acquire(ctx)
	if err != nil {
		return nil, err
	}

	defer release()

	result, err := generate(ctx, root, opts)
	if err != nil {
		return nil, err
	}

	if opts.GenerateOnly {
		logger.Info(ctx, "Fragments generated, skipping the installer compiler")

		return result, nil
	}

	logger.Info(ctx, "Building the installer")

	err = compiler.Run(ctx, &compiler.Options{
		Executable: opts.Compiler,
		Script:     compiler.DefaultScript,
		Dir:        root,
		Output:     opts.Output,
	})
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Installer built", "installer", result.Config.InstallerFilename)

	return result, nil
}

// generate runs every step up to and including writing the fragments.
func generate(ctx context.Context, root string, opts *Options) (*Result, error) {
	cfg, err := config.Load(ctx, opts.ConfigPath, root, opts.ConfigOptions...)
	if err != nil {
		return nil, err
	}

	if err = os.MkdirAll(filepath.Join(root, filepath.FromSlash(BinDir)), config.DefaultDirPermissions); err != nil {
		return nil, fmt.Errorf("create bin directory: %w", err)
	}

	m, err := manifest.Build(cfg.AppFilesParent)
	if err != nil {
		return nil, fmt.Errorf("build manifest: %w", err)
	}

	logger.InfoKV(ctx, "Application files collected",
		"app_files_parent", cfg.AppFilesParent,
		"directories", len(m.Directories),
		"files", len(m.Files))

	renderer, err := nsis.NewRenderer()
	if err != nil {
		return nil, err
	}

	fragments, err := renderer.Render(cfg, m)
	if err != nil {
		return nil, err
	}

	paths, err := nsis.WriteAll(ctx, filepath.Join(root, filepath.FromSlash(IncludeDir)), fragments)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Fragments written", "count", len(paths))

	return &Result{
		Root:      root,
		Config:    cfg,
		Manifest:  m,
		Fragments: paths,
	}, nil
}

// resolveRoot returns dir as an absolute path, or the executable's directory.
func resolveRoot(dir string) (string, error) {
	if dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", fmt.Errorf("resolve root directory: %w", err)
		}

		return abs, nil
	}

	executable, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}

	if resolved, err := filepath.EvalSymlinks(executable); err == nil {
		executable = resolved
	}

	return filepath.Dir(executable), nil
}
