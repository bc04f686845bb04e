// Package builder wires the installer build together: it loads the build
// configuration, walks the application files, writes the NSIS fragments and
// runs the compiler, all relative to one explicit root directory.
//
// The process working directory is never changed; the compiler is started
// with the root as its working directory instead.
package builder
