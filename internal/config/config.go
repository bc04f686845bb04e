package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oshokin/nsis-build/internal/logger"
)

// BuildConfig holds the validated settings for one installer build.
type BuildConfig struct {
	// InstallerVersion is the version stamped on the installer itself.
	InstallerVersion string
	// AppVersion is the version of the application being installed.
	AppVersion string
	// CopyrightYear defaults to the current year when left blank.
	CopyrightYear string
	// AppName is the display name of the application.
	AppName string
	// CompanyName is the publisher shown in the installer and registry.
	CompanyName string
	// InstallerFilename is the output filename of the compiled installer.
	InstallerFilename string
	// InstallerIconPath is the absolute path to the installer's own icon.
	InstallerIconPath string
	// AppFilesParent is the absolute path to the tree copied to the target machine.
	AppFilesParent string
	// LicenseTxtPath is the absolute path to the license text shown by the installer.
	LicenseTxtPath string
	// MainFile is the executable targeted by shortcuts, relative to AppFilesParent
	// and using Windows separators.
	MainFile string
	// IconPath is the shortcut icon, relative to AppFilesParent and using
	// Windows separators.
	IconPath string
	// CreateDesktopShortcut makes the installer add a desktop shortcut to MainFile.
	CreateDesktopShortcut bool
	// CreateStartMenuShortcut makes the installer add a start menu shortcut to MainFile.
	CreateStartMenuShortcut bool
}

const (
	// DefaultConfigFilename is the configuration file looked up in the root directory.
	DefaultConfigFilename = "build_config.yaml"

	// DefaultFilePermissions is used for generated files.
	DefaultFilePermissions os.FileMode = 0o644

	// DefaultDirPermissions is used for generated directories.
	DefaultDirPermissions os.FileMode = 0o755
)

// Configuration keys, in validation order.
const (
	FieldInstallerVersion        = "installer_version"
	FieldAppVersion              = "app_version"
	FieldCopyrightYear           = "copyright_year"
	FieldAppName                 = "app_name"
	FieldCompanyName             = "company_name"
	FieldInstallerFilename       = "installer_filename"
	FieldInstallerIconPath       = "installer_icon_path"
	FieldAppFilesParent          = "app_files_parent"
	FieldLicenseTxtPath          = "license_txt_path"
	FieldMainFile                = "main_file"
	FieldIconPath                = "icon_path"
	FieldCreateDesktopShortcut   = "create_desktop_shortcut"
	FieldCreateStartMenuShortcut = "create_start_menu_shortcut"
)

// Option tweaks how a configuration is loaded.
type Option func(*validator)

// WithNow overrides the clock used to fill in a blank copyright year.
func WithNow(now func() time.Time) Option {
	return func(v *validator) {
		if now != nil {
			v.now = now
		}
	}
}

// Load reads the configuration at path and validates it.
// A relative path, and every relative path inside the file except the ones
// anchored at app_files_parent, is resolved against baseDir.
func Load(ctx context.Context, path, baseDir string, opts ...Option) (*BuildConfig, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	baseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve base directory: %w", err)
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read build config: %w", err)
	}

	doc, err := decode(path, contents)
	if err != nil {
		return nil, err
	}

	cfg, err := validateDocument(doc, baseDir, opts...)
	if err != nil {
		return nil, err
	}

	warnIfNotICO(ctx, FieldInstallerIconPath, cfg.InstallerIconPath)

	logger.DebugKV(ctx, "Build config validated",
		"path", path,
		"app_name", cfg.AppName,
		"app_version", cfg.AppVersion,
		"app_files_parent", cfg.AppFilesParent)

	return cfg, nil
}
