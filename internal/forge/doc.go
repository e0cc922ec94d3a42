// Package forge talks to the git hosting service that holds the catalog.
//
// Only two calls are needed to publish: forking the upstream catalog
// repository into the user's account and opening a pull request from a
// branch on that fork. [GitHub] implements both against the GitHub REST
// API, authenticated with a personal access token.
//
// # Usage
//
//	f, err := forge.NewGitHub(forge.GitHubOptions{
//		Owner:    "ESA-EarthCODE",
//		Repo:     "open-science-catalog-metadata",
//		Username: creds.Username,
//		Token:    creds.Token,
//	})
//	fork, err := f.Fork(ctx)
//	pr, err := f.CreatePR(ctx, forge.CreatePRParams{Title: t, Head: branch})
//
// Fork clone URLs embed the token. Pass them through [cmd.Redact] before
// printing.
//
// Never call the GitHub API directly outside this package.
package forge
