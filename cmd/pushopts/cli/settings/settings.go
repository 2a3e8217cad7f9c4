// Package settings provides configuration loading for pushopts.
//
// Settings live in .pushopts/settings.json (shared, committed) and
// .pushopts/settings.local.json (personal, gitignored). Both files are
// optional and accept JSON with comments.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"

	"github.com/pushopts/pushopts/cmd/pushopts/cli/paths"
	"github.com/pushopts/pushopts/cmd/pushopts/cli/validation"
)

// DefaultOptionsFile is the options file name used when none is configured.
// Duplicated from pushoptions to keep this package free of that import.
const DefaultOptionsFile = ".push-options"

const (
	// SettingsFile is the path to the shared settings file
	SettingsFile = paths.PushoptsDir + "/settings.json"
	// SettingsLocalFile is the path to the local settings override file (not committed)
	SettingsLocalFile = paths.PushoptsDir + "/settings.local.json"
)

// Settings represents the .pushopts/settings.json configuration
type Settings struct {
	// OptionsFile is the repository-relative path of the push options file.
	OptionsFile string `json:"options_file,omitempty"`

	// LogLevel sets the logging verbosity (debug, info, warn, error).
	// Can be overridden by PUSHOPTS_LOG_LEVEL environment variable.
	LogLevel string `json:"log_level,omitempty"`

	// Accessible forces plain-text prompts instead of the interactive TUI.
	Accessible bool `json:"accessible,omitempty"`

	// Telemetry controls anonymous usage analytics.
	// nil = not configured (disabled), true = opted in, false = opted out
	Telemetry *bool `json:"telemetry,omitempty"`

	// VersionCheck controls the daily update notice. nil means enabled.
	VersionCheck *bool `json:"version_check,omitempty"`
}

// IsVersionCheckEnabled reports whether the update notice may be shown.
func (s *Settings) IsVersionCheckEnabled() bool {
	return s.VersionCheck == nil || *s.VersionCheck
}

// Default returns settings with every field at its default.
func Default() *Settings {
	return &Settings{OptionsFile: DefaultOptionsFile}
}

// Load loads settings for the current repository.
// Missing files yield defaults. A non-nil error means a file exists but could
// not be read or parsed; the returned settings are still usable defaults
// with whatever could be applied.
func Load() (*Settings, error) {
	root, err := paths.RepoRoot()
	if err != nil {
		return Default(), nil //nolint:nilerr // outside a repository there is nothing to load
	}
	return LoadFrom(root)
}

// LoadFrom loads settings relative to the given repository root,
// then applies any overrides from the local file if it exists.
func LoadFrom(root string) (*Settings, error) {
	s := Default()

	if err := mergeFile(s, filepath.Join(root, SettingsFile)); err != nil {
		return s, fmt.Errorf("reading settings file: %w", err)
	}
	if err := mergeFile(s, filepath.Join(root, SettingsLocalFile)); err != nil {
		return s, fmt.Errorf("reading local settings file: %w", err)
	}

	if err := applyDefaults(s); err != nil {
		return s, err
	}

	return s, nil
}

// mergeFile overlays the fields present in path onto s.
// A missing file is not an error.
func mergeFile(s *Settings, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is built from repo root and a constant
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w", err)
	}
	return mergeJSON(s, data)
}

// mergeJSON merges JSON (or JSONC) data into existing settings.
// Only fields present in data override existing settings.
func mergeJSON(s *Settings, data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return fmt.Errorf("parsing JSON: %w", err)
	}

	if v, ok := raw["options_file"]; ok {
		var f string
		if err := json.Unmarshal(v, &f); err != nil {
			return fmt.Errorf("parsing options_file field: %w", err)
		}
		if f != "" {
			s.OptionsFile = f
		}
	}

	if v, ok := raw["log_level"]; ok {
		var ll string
		if err := json.Unmarshal(v, &ll); err != nil {
			return fmt.Errorf("parsing log_level field: %w", err)
		}
		if ll != "" {
			s.LogLevel = ll
		}
	}

	if v, ok := raw["accessible"]; ok {
		var a bool
		if err := json.Unmarshal(v, &a); err != nil {
			return fmt.Errorf("parsing accessible field: %w", err)
		}
		s.Accessible = a
	}

	if v, ok := raw["telemetry"]; ok {
		var t bool
		if err := json.Unmarshal(v, &t); err != nil {
			return fmt.Errorf("parsing telemetry field: %w", err)
		}
		s.Telemetry = &t
	}

	if v, ok := raw["version_check"]; ok {
		var vc bool
		if err := json.Unmarshal(v, &vc); err != nil {
			return fmt.Errorf("parsing version_check field: %w", err)
		}
		s.VersionCheck = &vc
	}

	return nil
}

// applyDefaults fills empty fields and resets an options_file that would
// resolve outside the repository.
func applyDefaults(s *Settings) error {
	if s.OptionsFile == "" {
		s.OptionsFile = DefaultOptionsFile
		return nil
	}
	if err := validation.ValidateRepoRelativePath(s.OptionsFile); err != nil {
		s.OptionsFile = DefaultOptionsFile
		return fmt.Errorf("ignoring options_file setting: %w", err)
	}
	return nil
}
