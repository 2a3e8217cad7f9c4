package versioncheck

import "time"

// VersionCache records when the latest release was last looked up.
type VersionCache struct {
	LastCheckTime time.Time `json:"last_check_time"`
}

// GitHubRelease is the part of the GitHub release payload we read.
type GitHubRelease struct {
	TagName    string `json:"tag_name"`
	Prerelease bool   `json:"prerelease"`
}

// githubAPIURL is a var so tests can point it at an httptest server.
var githubAPIURL = "https://api.github.com/repos/pushopts/pushopts/releases/latest"

const (
	checkInterval = 24 * time.Hour
	httpTimeout   = 2 * time.Second

	cacheFileName = "version_check.json"

	// globalConfigDirName is relative to the user's home directory.
	globalConfigDirName = ".config/pushopts"

	installCommand = "go install github.com/pushopts/pushopts/cmd/pushopts@latest"
)
