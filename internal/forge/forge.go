package forge

import "context"

// CreatePRParams contains parameters for opening a pull request against
// the upstream repository.
type CreatePRParams struct {
	Title string
	Body  string
	Base  string // base branch (empty = upstream default)
	Head  string // branch on the fork
	Draft bool
}

// CreatePRResult contains the result of creating a PR
type CreatePRResult struct {
	Number int
	URL    string
}

// Fork describes the authenticated user's fork of the upstream repository.
type Fork struct {
	Owner         string
	Name          string
	CloneURL      string // carries credentials, never log unredacted
	DefaultBranch string
}

// Forge represents the git hosting service holding the catalog repository.
type Forge interface {
	// Name returns the forge name
	Name() string

	// Fork creates (or returns the existing) fork of the upstream repository.
	Fork(ctx context.Context) (*Fork, error)

	// CreatePR opens a pull request from the fork to the upstream repository.
	CreatePR(ctx context.Context, params CreatePRParams) (*CreatePRResult, error)
}
