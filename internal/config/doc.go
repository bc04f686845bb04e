// Package config loads and validates the installer build configuration.
//
// The file is YAML (JSON is accepted too) or HCL, chosen by extension. It is
// decoded into a typed intermediate document first, then every field is
// checked in a fixed order; the first violation is reported as a
// ValidationError naming the field and the rule.
package config
