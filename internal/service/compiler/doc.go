// Package compiler runs the external NSIS compiler and decides whether the
// build failed by reading its output: makensis reports script errors on
// lines starting with "Error", and that text, not the exit status, is what
// callers rely on.
package compiler
