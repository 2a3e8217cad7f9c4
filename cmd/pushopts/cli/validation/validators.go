// Package validation provides input validation functions for pushopts.
// This package has no dependencies to avoid import cycles.
package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// pathSafeRegex matches alphanumeric characters, underscores, and hyphens only.
// Used to validate IDs that will be used in file paths.
var pathSafeRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateRunID validates that a run ID contains only safe characters for paths.
func ValidateRunID(id string) error {
	if id == "" {
		return errors.New("run ID cannot be empty")
	}
	if !pathSafeRegex.MatchString(id) {
		return fmt.Errorf("invalid run ID %q: must be alphanumeric with underscores/hyphens only", id)
	}
	return nil
}

// ValidateRepoRelativePath checks that p is a relative path that stays inside
// the repository once joined to its root.
func ValidateRepoRelativePath(p string) error {
	if strings.TrimSpace(p) == "" {
		return errors.New("path cannot be empty")
	}
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`) {
		return fmt.Errorf("invalid path %q: must be relative to the repository root", p)
	}
	clean := filepath.Clean(filepath.FromSlash(p))
	if clean == "." {
		return fmt.Errorf("invalid path %q: must name a file", p)
	}
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("invalid path %q: escapes the repository root", p)
	}
	return nil
}
