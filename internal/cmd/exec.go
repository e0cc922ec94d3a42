package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/deepesdl/deep-code/internal/log"
)

// userinfoPattern matches credentials embedded in http(s) URLs.
var userinfoPattern = regexp.MustCompile(`(https?://)[^/\s@]+@`)

// Redact masks credentials embedded in URLs found in s.
func Redact(s string) string {
	return userinfoPattern.ReplaceAllString(s, "${1}***@")
}

// RunContext executes a command in dir and returns stderr in the error message if it fails.
func RunContext(ctx context.Context, dir, name string, args ...string) error {
	_, err := run(ctx, dir, nil, name, args, false)
	return err
}

// RunEnvContext is RunContext with extra environment variables appended to the
// current process environment.
func RunEnvContext(ctx context.Context, dir string, env []string, name string, args ...string) error {
	_, err := run(ctx, dir, env, name, args, false)
	return err
}

// OutputContext executes a command in dir and returns stdout, with stderr in
// the error if it fails.
func OutputContext(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	return run(ctx, dir, nil, name, args, true)
}

// OutputEnvContext is OutputContext with extra environment variables.
func OutputEnvContext(ctx context.Context, dir string, env []string, name string, args ...string) ([]byte, error) {
	return run(ctx, dir, env, name, args, true)
}

func run(ctx context.Context, dir string, env []string, name string, args []string, capture bool) ([]byte, error) {
	l := log.FromContext(ctx)

	redacted := make([]string, len(args))
	for i, a := range args {
		redacted[i] = Redact(a)
	}
	done := l.Command(dir, name, redacted...)
	start := time.Now()

	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir
	if len(env) > 0 {
		c.Env = append(os.Environ(), env...)
	}
	var stdout, stderr bytes.Buffer
	if capture {
		c.Stdout = &stdout
	}
	c.Stderr = &stderr

	err := c.Run()
	done(time.Since(start))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errMsg := strings.TrimSpace(stderr.String()); errMsg != "" {
			return nil, fmt.Errorf("%s", Redact(errMsg))
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%s %s: %w", name, strings.Join(redacted, " "), err)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}
