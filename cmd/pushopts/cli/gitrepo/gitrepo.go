// Package gitrepo resolves the repository pushopts works on and pushes it.
//
// Reads (worktree root, current branch) go through go-git. The push itself
// shells out to the git binary so that remotes, credential helpers, SSH agents
// and hooks behave exactly as they do for a plain "git push".
package gitrepo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/pushopts/pushopts/cmd/pushopts/cli/paths"
)

var (
	// ErrGitNotFound is returned when no git executable is on PATH.
	ErrGitNotFound = errors.New("Git executable not found") //nolint:staticcheck // user-facing message

	// ErrNoRepository is returned when the working directory is not inside a repository.
	ErrNoRepository = errors.New("No git repository found") //nolint:staticcheck // user-facing message

	// ErrNoBranch is returned when HEAD does not name a branch (detached HEAD).
	ErrNoBranch = errors.New("Unable to determine current branch") //nolint:staticcheck // user-facing message
)

// Provider locates the repository for the current invocation.
type Provider interface {
	Open(ctx context.Context) (Repository, error)
}

// Repository is the subset of a git repository the push command needs.
type Repository interface {
	// Root is the absolute path of the worktree root.
	Root() string

	// Branch returns the short name of the checked-out branch.
	Branch() (string, error)

	// Push runs git push with options. An empty remote lets git pick the
	// branch's configured remote.
	Push(ctx context.Context, remote string, options []string) error
}

// Local is the Provider backed by the git binary and go-git.
type Local struct {
	// LookPath finds the git executable. Defaults to exec.LookPath.
	LookPath func(file string) (string, error)
}

// NewLocal returns a Provider for the repository containing the working directory.
func NewLocal() *Local {
	return &Local{LookPath: exec.LookPath}
}

// Open implements Provider.
//
//nolint:ireturn // returns the Repository interface so callers can substitute fakes
func (l *Local) Open(_ context.Context) (Repository, error) {
	lookPath := l.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	gitPath, err := lookPath("git")
	if err != nil {
		return nil, ErrGitNotFound
	}

	root, err := paths.RepoRoot()
	if err != nil {
		return nil, ErrNoRepository
	}

	return OpenAt(root, gitPath)
}

// OpenAt opens the repository whose worktree root is root, pushing with the
// git executable at gitPath.
func OpenAt(root, gitPath string) (*LocalRepository, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, ErrNoRepository
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	return &LocalRepository{
		repo:    repo,
		root:    root,
		gitPath: gitPath,
	}, nil
}

// LocalRepository is a Repository on disk.
type LocalRepository struct {
	repo    *git.Repository
	root    string
	gitPath string
}

// Root implements Repository.
func (r *LocalRepository) Root() string {
	return r.root
}

// Branch implements Repository. The symbolic HEAD is read without resolving
// it, so a branch with no commits yet still has a name.
func (r *LocalRepository) Branch() (string, error) {
	head, err := r.repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoBranch, err)
	}
	if head.Type() != plumbing.SymbolicReference || !head.Target().IsBranch() {
		return "", ErrNoBranch
	}
	return head.Target().Short(), nil
}

// Push implements Repository.
func (r *LocalRepository) Push(ctx context.Context, remote string, options []string) error {
	args := make([]string, 0, len(options)+2)
	args = append(args, "push")
	args = append(args, options...)
	if remote != "" {
		args = append(args, remote)
	}

	cmd := exec.CommandContext(ctx, r.gitPath, args...)
	cmd.Dir = r.root

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		return &PushError{Args: args, Output: strings.TrimSpace(output.String()), Err: err}
	}
	return nil
}

// PushError describes a failed git push.
type PushError struct {
	Args   []string
	Output string
	Err    error
}

func (e *PushError) Error() string {
	if e.Output != "" {
		return e.Output
	}
	return e.Err.Error()
}

func (e *PushError) Unwrap() error {
	return e.Err
}
