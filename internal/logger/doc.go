// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder on stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities,
//   - key-value helpers for each level (InfoKV, WarnKV, etc.).
//
// Stdout is left to the installer compiler's streamed output, so log lines
// never interleave with it on the same stream.
package logger
