package nsis

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/oshokin/nsis-build/internal/config"
	"github.com/oshokin/nsis-build/internal/manifest"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	// Generator is written into the header comment of every fragment.
	Generator = "nsis-build"

	// VarsFilename holds the !define directives.
	VarsFilename = "InstallerVars.nsh"
	// InstallFilename holds the CreateDirectory and File directives.
	InstallFilename = "InstallFiles.nsh"
	// UninstallFilename holds the Delete and RMDir directives.
	UninstallFilename = "UninstallFiles.nsh"

	templateSuffix = ".tmpl"
)

// Fragments are the rendered contents keyed by file name.
type Fragments map[string][]byte

// Names returns the fragment file names in a fixed order.
func Names() []string {
	return []string{VarsFilename, InstallFilename, UninstallFilename}
}

// define is a single !define directive.
type define struct {
	Name  string
	Value string
}

// fileEntry maps a source file on the build host to its install destination.
type fileEntry struct {
	// Dest is relative to $INSTDIR, with Windows separators.
	Dest string
	// Source is the absolute path on the build host.
	Source string
}

// templateData is shared by all three templates.
type templateData struct {
	Generator    string
	Defines      []define
	Directories  []string
	RemovalOrder []string
	Files        []fileEntry
}

// escaper makes a value safe inside an NSIS double-quoted string.
//
//nolint:gochecknoglobals // Immutable after init.
var escaper = strings.NewReplacer(
	"$", "$$",
	`"`, `$\"`,
	"\r", `$\r`,
	"\n", `$\n`,
	"\t", `$\t`,
)

// Renderer executes the embedded fragment templates.
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer parses every embedded template.
func NewRenderer() (*Renderer, error) {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read templates directory: %w", err)
	}

	r := &Renderer{
		templates: make(map[string]*template.Template, len(entries)),
	}

	funcs := template.FuncMap{
		"quote": escaper.Replace,
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		content, err := templateFS.ReadFile("templates/" + name)
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", name, err)
		}

		tmpl, err := template.New(name).Option("missingkey=error").Funcs(funcs).Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}

		r.templates[strings.TrimSuffix(name, templateSuffix)] = tmpl
	}

	for _, name := range Names() {
		if _, ok := r.templates[name]; !ok {
			return nil, fmt.Errorf("template not found: %s", name)
		}
	}

	return r, nil
}

// Render produces all fragments for cfg and m. It does not touch the filesystem.
func (r *Renderer) Render(cfg *config.BuildConfig, m *manifest.Manifest) (Fragments, error) {
	data := newTemplateData(cfg, m)
	fragments := make(Fragments, len(r.templates))

	for _, name := range Names() {
		var buf bytes.Buffer
		if err := r.templates[name].Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("execute template %s: %w", name, err)
		}

		fragments[name] = buf.Bytes()
	}

	return fragments, nil
}

func newTemplateData(cfg *config.BuildConfig, m *manifest.Manifest) *templateData {
	files := make([]fileEntry, 0, len(m.Files))
	for _, rel := range m.Files {
		files = append(files, fileEntry{
			Dest:   rel,
			Source: manifest.NativePath(cfg.AppFilesParent, rel),
		})
	}

	return &templateData{
		Generator:    Generator,
		Defines:      defines(cfg),
		Directories:  m.Directories,
		RemovalOrder: m.RemovalOrder(),
		Files:        files,
	}
}

func defines(cfg *config.BuildConfig) []define {
	return []define{
		{"INSTALLER_VERSION", cfg.InstallerVersion},
		{"APP_VERSION", cfg.AppVersion},
		{"COPYRIGHT_YEAR", cfg.CopyrightYear},
		{"APP_NAME", cfg.AppName},
		{"COMPANY_NAME", cfg.CompanyName},
		{"INSTALLER_FILENAME", cfg.InstallerFilename},
		{"INSTALLER_ICON_PATH", cfg.InstallerIconPath},
		{"APP_FILES_PARENT", cfg.AppFilesParent},
		{"LICENSE_TXT_PATH", cfg.LicenseTxtPath},
		{"MAIN_FILE", cfg.MainFile},
		{"ICON_PATH", cfg.IconPath},
		{"CREATE_DESKTOP_SHORTCUT", boolDefine(cfg.CreateDesktopShortcut)},
		{"CREATE_START_MENU_SHORTCUT", boolDefine(cfg.CreateStartMenuShortcut)},
	}
}

func boolDefine(b bool) string {
	if b {
		return "TRUE"
	}

	return "FALSE"
}
