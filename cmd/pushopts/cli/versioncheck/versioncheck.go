// Package versioncheck prints a one-line notice when a newer pushopts release
// exists. It checks at most once a day and never fails a command.
package versioncheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"

	"github.com/pushopts/pushopts/cmd/pushopts/cli/jsonutil"
	"github.com/pushopts/pushopts/cmd/pushopts/cli/logging"
)

// CheckAndNotify looks up the latest release and writes a notice to the
// command's stderr when currentVersion is older. Errors are logged at debug
// level and otherwise ignored.
func CheckAndNotify(ctx context.Context, cmd *cobra.Command, currentVersion string) {
	if cmd.Hidden {
		return
	}
	if currentVersion == "dev" || currentVersion == "" {
		return
	}

	ctx = logging.WithComponent(ctx, "versioncheck")

	configDir, err := ensureGlobalConfigDir()
	if err != nil {
		logging.Debug(ctx, "version check: no config dir", "error", err.Error())
		return
	}
	cachePath := filepath.Join(configDir, cacheFileName)

	cache, err := loadCache(cachePath)
	if err != nil {
		cache = &VersionCache{}
	}
	if time.Since(cache.LastCheckTime) < checkInterval {
		return
	}

	latest, err := fetchLatestVersion(ctx)

	// Record the attempt even on failure so an offline machine is not
	// retried on every invocation.
	cache.LastCheckTime = time.Now()
	if saveErr := saveCache(cachePath, cache); saveErr != nil {
		logging.Debug(ctx, "version check: failed to save cache", "error", saveErr.Error())
	}

	if err != nil {
		logging.Debug(ctx, "version check: failed to fetch latest version", "error", err.Error())
		return
	}

	if isOutdated(currentVersion, latest) {
		printNotification(cmd.ErrOrStderr(), currentVersion, latest)
	}
}

func ensureGlobalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	dir := filepath.Join(home, globalConfigDirName)
	//nolint:gosec // user config directory
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return dir, nil
}

func loadCache(path string) (*VersionCache, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is under the user config dir
	if err != nil {
		return nil, fmt.Errorf("reading cache file: %w", err)
	}

	var cache VersionCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("parsing cache: %w", err)
	}
	return &cache, nil
}

// saveCache writes through a temp file and rename.
func saveCache(path string, cache *VersionCache) error {
	data, err := jsonutil.MarshalIndentWithNewline(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".version_check_tmp_")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("writing cache: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), path); err != nil {
		return fmt.Errorf("renaming cache file: %w", err)
	}
	return nil
}

func fetchLatestVersion(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, httpTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, githubAPIURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "pushopts-cli")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching release info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	version, err := parseGitHubRelease(body)
	if err != nil {
		return "", fmt.Errorf("parsing release: %w", err)
	}
	return version, nil
}

// parseGitHubRelease returns the tag of a stable release.
func parseGitHubRelease(body []byte) (string, error) {
	var release GitHubRelease
	if err := json.Unmarshal(body, &release); err != nil {
		return "", fmt.Errorf("parsing JSON: %w", err)
	}
	if release.Prerelease {
		return "", errors.New("only prerelease versions available")
	}
	if release.TagName == "" {
		return "", errors.New("empty tag name")
	}
	return release.TagName, nil
}

// isOutdated reports whether current < latest. Both may omit the "v" prefix.
func isOutdated(current, latest string) bool {
	return semver.Compare(canonical(current), canonical(latest)) < 0
}

func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}

func printNotification(w io.Writer, current, latest string) {
	fmt.Fprintf(w, "\nA newer version of pushopts is available: %s (current: %s)\nRun '%s' to update.\n",
		latest, current, installCommand)
}
