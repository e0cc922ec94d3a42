// Package cmd runs external programs, in practice git.
//
// Failures carry the program's stderr as the error message, so a rejected
// push reads as git's own explanation. In verbose mode each command line is
// logged through the context logger with its duration. Credentials embedded
// in URLs are masked by [Redact] in both places, since clone and push URLs
// carry the GitHub token.
//
//	out, err := cmd.OutputEnvContext(ctx, workDir, []string{"GIT_TERMINAL_PROMPT=0"},
//		"git", "ls-remote", "--heads", "origin", branch)
package cmd
