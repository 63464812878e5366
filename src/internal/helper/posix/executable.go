// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package posix

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// FallbackName is returned by [GetExecutableName] when os.Args is unusable.
const FallbackName = "tls-cert-policy-verifier"

// ErrNotExecutable is returned by [CheckExecutable].
var ErrNotExecutable = errors.New("posix: not an executable file")

// GetExecutableName returns the executable name without extension for CLI usage strings.
//
// Behavior:
//   - Linux/macOS: "myapp" from "/usr/local/bin/myapp"
//   - Windows: "myapp" from "C:\bin\myapp.exe"
//   - Fallback: [FallbackName] if os.Args[0] is unavailable
func GetExecutableName() string {
	if len(os.Args) == 0 || os.Args[0] == "" {
		return FallbackName
	}
	return baseName(os.Args[0])
}

// baseName strips directories (either separator) and a trailing .exe.
func baseName(arg0 string) string {
	name := filepath.Base(arg0)

	// A Windows path seen on Unix (or the reverse) keeps its separators after filepath.Base.
	if strings.ContainsAny(name, `/\`) {
		parts := strings.FieldsFunc(name, func(r rune) bool {
			return r == '/' || r == '\\'
		})
		if len(parts) > 0 {
			name = parts[len(parts)-1]
		}
	}

	return strings.TrimSuffix(name, ".exe")
}

// CheckExecutable reports whether path names a regular file the current
// user may execute. On Windows only the file's existence is checked.
//
// Returns:
//   - error: nil, the stat error, or [ErrNotExecutable]
func CheckExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNotExecutable, path)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("%w: %s", ErrNotExecutable, path)
	}
	return nil
}
