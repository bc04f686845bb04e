package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	hintBool          = "valid values are true or false"
	hintString        = "must be a string"
	hintBaseFile      = "must be a file whose path is absolute or relative to the root directory"
	hintBaseDirectory = "must be a directory whose path is absolute or relative to the root directory"
	hintAppFile       = "must be a file relative to " + FieldAppFilesParent
)

// validator turns a decoded document into a BuildConfig.
type validator struct {
	doc     document
	baseDir string
	now     func() time.Time
}

// validateDocument checks doc field by field and stops at the first violation.
// baseDir must be absolute.
func validateDocument(doc document, baseDir string, opts ...Option) (*BuildConfig, error) {
	v := &validator{
		doc:     doc,
		baseDir: baseDir,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(v)
	}

	return v.validate()
}

//nolint:cyclop,funlen // A flat list of field checks reads better than a table here.
func (v *validator) validate() (*BuildConfig, error) {
	var (
		cfg BuildConfig
		err error
	)

	if cfg.InstallerVersion, err = v.requireString(FieldInstallerVersion); err != nil {
		return nil, err
	}

	if cfg.AppVersion, err = v.requireString(FieldAppVersion); err != nil {
		return nil, err
	}

	if cfg.CopyrightYear, err = v.copyrightYear(); err != nil {
		return nil, err
	}

	if cfg.AppName, err = v.requireString(FieldAppName); err != nil {
		return nil, err
	}

	if cfg.CompanyName, err = v.requireString(FieldCompanyName); err != nil {
		return nil, err
	}

	if cfg.InstallerFilename, err = v.requireString(FieldInstallerFilename); err != nil {
		return nil, err
	}

	if cfg.InstallerIconPath, err = v.requirePath(FieldInstallerIconPath, v.baseDir, false, hintBaseFile); err != nil {
		return nil, err
	}

	if cfg.AppFilesParent, err = v.requirePath(FieldAppFilesParent, v.baseDir, true, hintBaseDirectory); err != nil {
		return nil, err
	}

	if cfg.LicenseTxtPath, err = v.requirePath(FieldLicenseTxtPath, cfg.AppFilesParent, false, hintAppFile); err != nil {
		return nil, err
	}

	if cfg.MainFile, err = v.requireAppFile(FieldMainFile, cfg.AppFilesParent); err != nil {
		return nil, err
	}

	if cfg.IconPath, err = v.requireAppFile(FieldIconPath, cfg.AppFilesParent); err != nil {
		return nil, err
	}

	if cfg.CreateDesktopShortcut, err = v.requireBool(FieldCreateDesktopShortcut); err != nil {
		return nil, err
	}

	if cfg.CreateStartMenuShortcut, err = v.requireBool(FieldCreateStartMenuShortcut); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// optionalString returns the text of field and whether it is non-empty.
func (v *validator) optionalString(field string) (string, bool, error) {
	value, ok := v.doc[field]
	if !ok {
		return "", false, nil
	}

	switch value.kind {
	case kindNull:
		return "", false, nil
	case kindString, kindNumber:
		return value.text, value.text != "", nil
	default:
		return "", false, fieldError(field, ErrFieldType, hintString)
	}
}

func (v *validator) requireString(field string) (string, error) {
	text, ok, err := v.optionalString(field)
	if err != nil {
		return "", err
	}

	if !ok {
		return "", fieldError(field, ErrFieldMissing, "")
	}

	return text, nil
}

func (v *validator) copyrightYear() (string, error) {
	year, ok, err := v.optionalString(FieldCopyrightYear)
	if err != nil {
		return "", err
	}

	if !ok {
		return strconv.Itoa(v.now().Year()), nil
	}

	return year, nil
}

func (v *validator) requireBool(field string) (bool, error) {
	value, ok := v.doc[field]
	if !ok || value.kind == kindNull {
		return false, fieldError(field, ErrFieldMissing, hintBool)
	}

	if value.kind != kindBool {
		return false, fieldError(field, ErrFieldType, hintBool)
	}

	return value.flag, nil
}

// requirePath resolves field against base and returns the absolute path
// after checking it is a directory (wantDir) or a regular file.
func (v *validator) requirePath(field, base string, wantDir bool, hint string) (string, error) {
	raw, err := v.requireString(field)
	if err != nil {
		return "", err
	}

	path := resolve(base, raw)

	info, err := os.Lstat(path)
	if err != nil {
		return "", fieldError(field, ErrInvalidPath, hint)
	}

	mode := info.Mode()

	switch {
	case mode&os.ModeSymlink != 0:
		return "", fieldError(field, ErrInvalidPath, hint+" (symbolic links are not allowed)")
	case wantDir && !mode.IsDir(), !wantDir && !mode.IsRegular():
		return "", fieldError(field, ErrInvalidPath, hint)
	}

	return path, nil
}

// requireAppFile checks a file under appFilesParent and keeps the relative
// form with Windows separators.
func (v *validator) requireAppFile(field, appFilesParent string) (string, error) {
	if _, err := v.requirePath(field, appFilesParent, false, hintAppFile); err != nil {
		return "", err
	}

	// requirePath already proved the field is a non-empty string.
	raw, _, _ := v.optionalString(field)

	return ToWindowsPath(raw), nil
}

// resolve makes p absolute relative to base. Both separator styles are
// accepted in p.
func resolve(base, p string) string {
	p = filepath.FromSlash(strings.ReplaceAll(p, `\`, "/"))
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}

	return filepath.Join(base, p)
}

// ToWindowsPath rewrites forward slashes as backslashes.
func ToWindowsPath(p string) string {
	return strings.ReplaceAll(p, "/", `\`)
}
