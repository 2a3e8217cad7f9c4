package paths

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

// Directory constants
const (
	// PushoptsDir holds repository-level settings for pushopts.
	PushoptsDir = ".pushopts"

	// GitDataDir is the directory inside the git dir where pushopts writes logs.
	GitDataDir = "pushopts"
)

// repoRootCache caches the repository root to avoid repeated git commands.
// The cache is keyed by the current working directory to handle directory changes.
var (
	repoRootMu       sync.RWMutex
	repoRootCache    string
	repoRootCacheDir string
)

// RepoRoot returns the git repository root directory.
// Uses 'git rev-parse --show-toplevel' which works from any subdirectory.
// The result is cached per working directory.
// Returns an error if not inside a git repository.
func RepoRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	}

	repoRootMu.RLock()
	if repoRootCache != "" && repoRootCacheDir == cwd {
		cached := repoRootCache
		repoRootMu.RUnlock()
		return cached, nil
	}
	repoRootMu.RUnlock()

	root, err := gitRevParse("--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("failed to get git repository root: %w", err)
	}

	repoRootMu.Lock()
	repoRootCache = root
	repoRootCacheDir = cwd
	repoRootMu.Unlock()

	return root, nil
}

// ClearRepoRootCache clears the cached repository root.
// This is primarily useful for testing when changing directories.
func ClearRepoRootCache() {
	repoRootMu.Lock()
	repoRootCache = ""
	repoRootCacheDir = ""
	repoRootMu.Unlock()
}

// GitDir returns the absolute path of the git directory for the current
// worktree (".git" in a plain checkout, ".git/worktrees/<name>" in a linked one).
func GitDir() (string, error) {
	dir, err := gitRevParse("--absolute-git-dir")
	if err != nil {
		return "", fmt.Errorf("failed to get git directory: %w", err)
	}
	return dir, nil
}

// DataDir returns <git-dir>/pushopts. The directory is not created.
func DataDir() (string, error) {
	gitDir, err := GitDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(gitDir, GitDataDir), nil
}

func gitRevParse(flag string) (string, error) {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "git", "rev-parse", flag)
	output, err := cmd.Output()
	if err != nil {
		return "", err //nolint:wrapcheck // callers wrap with context
	}
	return strings.TrimSpace(string(output)), nil
}
