// Package pushoptions parses the .push-options file and turns a picked option
// string into the argument list handed to git push.
//
// File format, one entry per line:
//
//	# description for the next flag
//	--push-option=ci.skip
//
//	--force-with-lease
//
// A "#" line becomes the description of the next flag line. Blank lines are
// ignored and do not clear a pending description.
package pushoptions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pushopts/pushopts/cmd/pushopts/cli/logging"
)

// DefaultFileName is the options file looked up at the repository root.
const DefaultFileName = ".push-options"

const (
	// NoVerifyLabel skips the local pre-push hook.
	NoVerifyLabel = "--no-verify"

	// CustomLabel is the sentinel entry. Picking it switches to free-text input.
	CustomLabel = "Custom..."
)

// PushOption is a single selectable entry in the picker.
type PushOption struct {
	// Label is the literal flag text passed to git push.
	Label string `json:"label"`

	// Description comes from the comment line preceding the flag. Empty if none.
	Description string `json:"description,omitempty"`
}

// IsCustom reports whether o is the custom-entry sentinel.
func (o PushOption) IsCustom() bool {
	return o.Label == CustomLabel
}

// Defaults returns the built-in entries that always close the list.
func Defaults() []PushOption {
	return []PushOption{
		{Label: NoVerifyLabel, Description: "Skip pre-push hooks"},
		{Label: CustomLabel, Description: "Enter custom push options"},
	}
}

// Parse reads all of r and returns its options. Each flag line is inserted at
// the front of the result, so entries come back in reverse file order. A read
// error yields no options.
func Parse(r io.Reader) ([]PushOption, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading options: %w", err)
	}
	return ParseString(string(data)), nil
}

// ParseString is Parse over an in-memory string. Lines have no length limit.
func ParseString(content string) []PushOption {
	var (
		options []PushOption
		comment string
	)

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if rest, ok := strings.CutPrefix(line, "#"); ok {
			comment = strings.TrimSpace(rest)
			continue
		}

		options = append([]PushOption{{Label: line, Description: comment}}, options...)
		comment = ""
	}

	return options
}

// Load reads the options file name under root and returns its entries
// followed by Defaults. Read failures of any kind are treated as an absent
// file. The result always holds at least the two defaults.
func Load(ctx context.Context, root, name string) []PushOption {
	if name == "" {
		name = DefaultFileName
	}
	path := filepath.Join(root, name)

	var options []PushOption
	f, err := os.Open(path) //nolint:gosec // name is validated by settings, root comes from git
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.Debug(ctx, "options file unreadable, using defaults",
				"path", path,
				"error", err.Error())
		}
	} else {
		options, err = Parse(f)
		_ = f.Close()
		if err != nil {
			logging.Debug(ctx, "options file unreadable, using defaults",
				"path", path,
				"error", err.Error())
		} else {
			logging.Debug(ctx, "options file loaded",
				"path", path,
				"count", len(options))
		}
	}

	return append(options, Defaults()...)
}
