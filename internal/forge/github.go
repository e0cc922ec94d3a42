package forge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// DefaultAPIURL is the public GitHub REST endpoint.
const DefaultAPIURL = "https://api.github.com"

// GitHubOptions configures a GitHub forge.
type GitHubOptions struct {
	APIURL   string // empty = DefaultAPIURL
	Owner    string // upstream owner
	Repo     string // upstream repository name
	Username string
	Token    string

	// HTTPClient overrides the token-authenticated client. Tests use it.
	HTTPClient *http.Client
}

// GitHub implements Forge using the GitHub REST API.
type GitHub struct {
	client   *github.Client
	owner    string
	repo     string
	username string
	token    string
}

// NewGitHub creates a GitHub forge for the upstream repository owner/repo.
func NewGitHub(opts GitHubOptions) (*GitHub, error) {
	if opts.Owner == "" || opts.Repo == "" {
		return nil, fmt.Errorf("upstream repository owner and name are required")
	}
	if opts.Username == "" || opts.Token == "" {
		return nil, fmt.Errorf("github username and token are required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: opts.Token},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	client := github.NewClient(httpClient)
	if opts.APIURL != "" && opts.APIURL != DefaultAPIURL {
		base, err := url.Parse(strings.TrimSuffix(opts.APIURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", opts.APIURL, err)
		}
		client.BaseURL = base
	}

	return &GitHub{
		client:   client,
		owner:    opts.Owner,
		repo:     opts.Repo,
		username: opts.Username,
		token:    opts.Token,
	}, nil
}

// Name returns "github"
func (g *GitHub) Name() string {
	return "github"
}

// Fork forks the upstream repository into the user's account. GitHub
// answers 202 while the fork is being created and returns the existing
// fork when there already is one; both count as success.
func (g *GitHub) Fork(ctx context.Context) (*Fork, error) {
	repo, _, err := g.client.Repositories.CreateFork(ctx, g.owner, g.repo, &github.RepositoryCreateForkOptions{})
	var accepted *github.AcceptedError
	if err != nil && !errors.As(err, &accepted) {
		return nil, fmt.Errorf("failed to fork %s/%s: %w", g.owner, g.repo, err)
	}

	owner := g.username
	if login := repo.GetOwner().GetLogin(); login != "" {
		owner = login
	}
	name := g.repo
	if repo.GetName() != "" {
		name = repo.GetName()
	}

	cloneURL, err := g.authenticatedURL(repo.GetCloneURL(), owner, name)
	if err != nil {
		return nil, err
	}

	return &Fork{
		Owner:         owner,
		Name:          name,
		CloneURL:      cloneURL,
		DefaultBranch: repo.GetDefaultBranch(),
	}, nil
}

// CreatePR opens a pull request from username:Head into the upstream
// repository. An empty Base targets the upstream default branch.
func (g *GitHub) CreatePR(ctx context.Context, params CreatePRParams) (*CreatePRResult, error) {
	if params.Head == "" {
		return nil, fmt.Errorf("pull request head branch is required")
	}

	base := params.Base
	if base == "" {
		upstream, _, err := g.client.Repositories.Get(ctx, g.owner, g.repo)
		if err != nil {
			return nil, fmt.Errorf("failed to look up default branch of %s/%s: %w", g.owner, g.repo, err)
		}
		base = upstream.GetDefaultBranch()
	}

	head := params.Head
	if !strings.Contains(head, ":") {
		head = g.username + ":" + head
	}

	pr, _, err := g.client.PullRequests.Create(ctx, g.owner, g.repo, &github.NewPullRequest{
		Title: github.String(params.Title),
		Head:  github.String(head),
		Base:  github.String(base),
		Body:  github.String(params.Body),
		Draft: github.Bool(params.Draft),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}

	return &CreatePRResult{
		Number: pr.GetNumber(),
		URL:    pr.GetHTMLURL(),
	}, nil
}

// authenticatedURL embeds the credentials into an https clone URL. When the
// API did not report one, the github.com URL of owner/name is used.
func (g *GitHub) authenticatedURL(raw, owner, name string) (string, error) {
	if raw == "" {
		raw = fmt.Sprintf("https://github.com/%s/%s.git", owner, name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid clone URL %q: %w", raw, err)
	}
	u.User = url.UserPassword(g.username, g.token)
	return u.String(), nil
}
