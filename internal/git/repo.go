package git

import (
	"context"
	"fmt"
	"strings"
)

// Identity is the author and committer recorded on commits.
type Identity struct {
	Name  string
	Email string
}

// NoReplyIdentity returns the GitHub no-reply identity for a user login.
func NoReplyIdentity(login string) Identity {
	return Identity{Name: login, Email: login + "@users.noreply.github.com"}
}

// Clone clones url into dest. The destination must not exist yet.
func Clone(ctx context.Context, url, dest string) error {
	if err := runGit(ctx, "", "clone", url, dest); err != nil {
		return fmt.Errorf("failed to clone repository: %w", err)
	}
	return nil
}

// CreateBranch creates branch from HEAD and checks it out.
func CreateBranch(ctx context.Context, repoPath, branch string) error {
	if err := runGit(ctx, repoPath, "checkout", "-b", branch); err != nil {
		return fmt.Errorf("failed to create branch %q: %w", branch, err)
	}
	return nil
}

// GetCurrentBranch gets the current branch name
func GetCurrentBranch(ctx context.Context, path string) (string, error) {
	output, err := outputGit(ctx, path, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

// Add stages paths relative to the repository root.
func Add(ctx context.Context, repoPath string, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"add", "--"}, paths...)
	if err := runGit(ctx, repoPath, args...); err != nil {
		return fmt.Errorf("failed to stage %s: %w", strings.Join(paths, ", "), err)
	}
	return nil
}

// Commit records the staged changes. A zero Identity leaves the user's git
// configuration in charge.
func Commit(ctx context.Context, repoPath, message string, id Identity) error {
	var args []string
	if id.Name != "" {
		args = append(args, "-c", "user.name="+id.Name)
	}
	if id.Email != "" {
		args = append(args, "-c", "user.email="+id.Email)
	}
	args = append(args, "commit", "-m", message)
	if err := runGit(ctx, repoPath, args...); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Push pushes branch to origin and sets it as upstream.
func Push(ctx context.Context, repoPath, branch string) error {
	if err := runGit(ctx, repoPath, "push", "-u", "origin", branch); err != nil {
		return fmt.Errorf("failed to push %q: %w", branch, err)
	}
	return nil
}

// GetOriginURL gets the URL of the origin remote
func GetOriginURL(ctx context.Context, repoPath string) (string, error) {
	output, err := outputGit(ctx, repoPath, "remote", "get-url", "origin")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

// RemoteBranchExists reports whether origin has branch.
func RemoteBranchExists(ctx context.Context, repoPath, branch string) (bool, error) {
	output, err := outputGit(ctx, repoPath, "ls-remote", "--heads", "origin", branch)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(output)) != "", nil
}
