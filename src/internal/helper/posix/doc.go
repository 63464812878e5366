// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package posix provides [POSIX]-compliant helper functions for cross-platform compatibility.
//
// Key functions:
//   - GetExecutableName: Returns the executable name without extension for CLI usage
//   - CheckExecutable: Verifies that an evaluator script can be run
//
// # Usage Examples
//
//	rootCmd := &cobra.Command{
//	    Use:   posix.GetExecutableName(),
//	    Short: "Certificate policy verifier",
//	}
//
//	if err := posix.CheckExecutable("evaluator/run.sh"); err != nil {
//	    return err
//	}
//
// Cross-Platform Behavior:
//
//   - Linux/macOS: "/usr/bin/myapp" → "myapp"
//   - Windows: "C:\bin\myapp.exe" → "myapp"
//   - Fallback: Empty args → "tls-cert-policy-verifier"
//
// [POSIX]: https://grokipedia.com/page/POSIX
package posix
