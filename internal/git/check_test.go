package git

import (
	"context"
	"testing"
)

func TestCheckGit_Available(t *testing.T) {
	t.Parallel()
	// the publish tests run real git
	if err := CheckGit(); err != nil {
		t.Fatalf("CheckGit() = %v, want nil (git should be in PATH)", err)
	}
}

func TestVersion(t *testing.T) {
	t.Parallel()

	v, err := Version(context.Background())
	if err != nil {
		t.Fatalf("Version() error = %v", err)
	}
	if v == "" || v[0] < '0' || v[0] > '9' {
		t.Errorf("Version() = %q, want a version number", v)
	}
}

func TestParseVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		out  string
		want string
	}{
		{"git version 2.43.0\n", "2.43.0"},
		{"git version 2.39.3 (Apple Git-146)\n", "2.39.3"},
		{"git version 2.45.1.windows.1", "2.45.1.windows.1"},
		{"something else\n", "something else"},
	}

	for _, tt := range tests {
		t.Run(tt.out, func(t *testing.T) {
			t.Parallel()
			if got := parseVersion(tt.out); got != tt.want {
				t.Errorf("parseVersion(%q) = %q, want %q", tt.out, got, tt.want)
			}
		})
	}
}
