package git

import (
	"context"

	"github.com/deepesdl/deep-code/internal/cmd"
)

// env is added to every git invocation. A rejected token in a clone URL
// must fail instead of prompting, and messages are kept untranslated.
var env = []string{"GIT_TERMINAL_PROMPT=0", "LC_ALL=C"}

// runGit runs git in dir. An empty dir means the process working directory.
func runGit(ctx context.Context, dir string, args ...string) error {
	return cmd.RunEnvContext(ctx, dir, env, "git", args...)
}

// outputGit runs git in dir and returns stdout.
func outputGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	return cmd.OutputEnvContext(ctx, dir, env, "git", args...)
}
