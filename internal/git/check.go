package git

import (
	"context"
	"errors"
	"os/exec"
	"strings"
)

// ErrGitNotFound is returned by CheckGit when no git binary is on PATH.
var ErrGitNotFound = errors.New("git executable not found in PATH; publishing clones and pushes with git (https://git-scm.com)")

// CheckGit reports ErrGitNotFound if git cannot be run.
func CheckGit() error {
	if _, err := exec.LookPath("git"); err != nil {
		return ErrGitNotFound
	}
	return nil
}

// Version returns the installed git version, e.g. "2.43.0".
func Version(ctx context.Context) (string, error) {
	out, err := outputGit(ctx, "", "version")
	if err != nil {
		return "", err
	}
	return parseVersion(string(out)), nil
}

// parseVersion extracts the version from `git version` output. Unknown
// formats are returned trimmed.
func parseVersion(out string) string {
	out = strings.TrimSpace(out)
	rest, ok := strings.CutPrefix(out, "git version ")
	if !ok {
		return out
	}
	v, _, _ := strings.Cut(rest, " ")
	return v
}
