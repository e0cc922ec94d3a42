package gitpublish

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/deepesdl/deep-code/internal/forge"
)

// fakeForge hands out a local bare repository as the fork.
type fakeForge struct {
	cloneURL string
	forkErr  error
	prErr    error

	mu  sync.Mutex
	prs []forge.CreatePRParams
}

func (f *fakeForge) Name() string { return "fake" }

func (f *fakeForge) Fork(context.Context) (*forge.Fork, error) {
	if f.forkErr != nil {
		return nil, f.forkErr
	}
	return &forge.Fork{Owner: "octo", Name: "catalog", CloneURL: f.cloneURL, DefaultBranch: "main"}, nil
}

func (f *fakeForge) CreatePR(_ context.Context, params forge.CreatePRParams) (*forge.CreatePRResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prs = append(f.prs, params)
	if f.prErr != nil {
		return nil, f.prErr
	}
	return &forge.CreatePRResult{Number: len(f.prs), URL: "https://github.com/up/catalog/pull/1"}, nil
}

func gitCmd(t *testing.T, dir string, args ...string) string {
	t.Helper()
	if dir != "" {
		args = append([]string{"-C", dir}, args...)
	}
	out, err := exec.Command("git", args...).CombinedOutput()
	if err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

// setupFork creates a bare repository with a products index on main.
func setupFork(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	gitCmd(t, "", "init", "-b", "main", src)
	gitCmd(t, src, "config", "user.email", "test@test.com")
	gitCmd(t, src, "config", "user.name", "Test User")
	gitCmd(t, src, "config", "commit.gpgsign", "false")
	if err := os.MkdirAll(filepath.Join(src, "products"), 0o755); err != nil {
		t.Fatal(err)
	}
	index := `{"type": "Catalog", "id": "products", "links": []}`
	if err := os.WriteFile(filepath.Join(src, "products", "catalog.json"), []byte(index), 0o644); err != nil {
		t.Fatal(err)
	}
	gitCmd(t, src, "add", ".")
	gitCmd(t, src, "commit", "-m", "init")

	bare := filepath.Join(tmp, "fork.git")
	gitCmd(t, "", "clone", "--bare", src, bare)
	return bare
}

func newPublisher(t *testing.T, f *fakeForge) (*Publisher, *[]Step) {
	t.Helper()
	var steps []Step
	return &Publisher{
		Forge:   f,
		WorkDir: filepath.Join(t.TempDir(), "clones"),
		OnStep:  func(s Step) { steps = append(steps, s) },
	}, &steps
}

func assertNoClones(t *testing.T, workDir string) {
	t.Helper()
	entries, err := os.ReadDir(workDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("ReadDir(%s) error = %v", workDir, err)
	}
	if len(entries) != 0 {
		t.Errorf("working copies left behind: %v", entries)
	}
}

func TestPublish_Success(t *testing.T) {
	t.Parallel()

	fork := setupFork(t)
	f := &fakeForge{cloneURL: fork}
	p, steps := newPublisher(t, f)

	var sawIndex bool
	req := Request{
		Branch:        "add-new-collection-hydrology-20240101120000",
		CommitMessage: "Add new dataset collection: hydrology",
		Title:         "Add new dataset collection",
		Body:          "body",
		Files: Files{
			"products/hydrology/collection.json": map[string]any{"id": "hydrology"},
		},
		Prepare: func(_ context.Context, wc *WorkingCopy) (Files, error) {
			sawIndex = wc.Exists("products/catalog.json")
			docs, err := wc.LoadExisting([]string{"products/catalog.json", "variables/catalog.json"})
			if err != nil {
				return nil, err
			}
			index := docs["products/catalog.json"]
			if index == nil {
				return nil, errors.New("products index not loaded")
			}
			if _, ok := docs["variables/catalog.json"]; ok {
				return nil, errors.New("missing document reported as existing")
			}
			return Files{"products/catalog.json": index}, nil
		},
	}

	res, err := p.Publish(context.Background(), req)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if !sawIndex {
		t.Error("Prepare did not see the cloned products index")
	}
	want := &Result{
		URL:    "https://github.com/up/catalog/pull/1",
		Number: 1,
		Branch: req.Branch,
		Fork:   "octo/catalog",
		Files:  []string{"products/catalog.json", "products/hydrology/collection.json"},
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("Publish() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Steps, *steps); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}

	if len(f.prs) != 1 || f.prs[0].Head != "octo:"+req.Branch {
		t.Errorf("CreatePR params = %+v", f.prs)
	}

	files := gitCmd(t, fork, "ls-tree", "-r", "--name-only", req.Branch)
	if !strings.Contains(files, "products/hydrology/collection.json") {
		t.Errorf("pushed branch files = %q", files)
	}
	author := gitCmd(t, fork, "log", "-1", "--format=%an %s", req.Branch)
	if author != "octo Add new dataset collection: hydrology" {
		t.Errorf("commit = %q", author)
	}
	content := gitCmd(t, fork, "show", req.Branch+":products/hydrology/collection.json")
	if content != "{\n  \"id\": \"hydrology\"\n}" {
		t.Errorf("collection.json = %q, want two-space indented JSON", content)
	}

	assertNoClones(t, p.WorkDir)
}

func TestPublish_CommitFailureCleansUp(t *testing.T) {
	t.Parallel()

	f := &fakeForge{cloneURL: setupFork(t)}
	p, steps := newPublisher(t, f)

	req := Request{
		Branch:        "add-new-workflow-wf",
		CommitMessage: "Add new workflow: wf",
		Title:         "Add new workflow",
		Files:         Files{"workflow/wf/record.json": map[string]any{"id": "wf"}},
		Prepare: func(_ context.Context, wc *WorkingCopy) (Files, error) {
			hook := filepath.Join(wc.Dir, ".git", "hooks", "pre-commit")
			if err := os.MkdirAll(filepath.Dir(hook), 0o755); err != nil {
				return nil, err
			}
			return nil, os.WriteFile(hook, []byte("#!/bin/sh\necho rejected >&2\nexit 1\n"), 0o755)
		},
	}

	_, err := p.Publish(context.Background(), req)
	var pubErr *PublishError
	if !errors.As(err, &pubErr) {
		t.Fatalf("Publish() error = %v, want *PublishError", err)
	}
	if pubErr.Step != StepCommitted {
		t.Errorf("Step = %s, want %s", pubErr.Step, StepCommitted)
	}
	if pubErr.Step.OrphansBranch() {
		t.Error("a commit failure leaves no branch on the fork")
	}
	if len(f.prs) != 0 {
		t.Error("CreatePR called after failed commit")
	}
	if last := (*steps)[len(*steps)-1]; last != StepCleanedUp {
		t.Errorf("last step = %s, want %s", last, StepCleanedUp)
	}

	assertNoClones(t, p.WorkDir)
}

func TestPublish_Failures(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	tests := []struct {
		name     string
		forge    func(fork string) *fakeForge
		files    Files
		prepare  PrepareFunc
		wantStep Step
		wantErr  error
	}{
		{
			name:     "fork rejected",
			forge:    func(string) *fakeForge { return &fakeForge{forkErr: boom} },
			files:    Files{"a.json": 1},
			wantStep: StepForked,
			wantErr:  boom,
		},
		{
			name:     "clone fails",
			forge:    func(fork string) *fakeForge { return &fakeForge{cloneURL: fork + "-missing"} },
			files:    Files{"a.json": 1},
			wantStep: StepCloned,
		},
		{
			name:  "prepare fails",
			forge: func(fork string) *fakeForge { return &fakeForge{cloneURL: fork} },
			prepare: func(context.Context, *WorkingCopy) (Files, error) {
				return nil, boom
			},
			files:    Files{"a.json": 1},
			wantStep: StepFilesWritten,
			wantErr:  boom,
		},
		{
			name:     "path escapes repository",
			forge:    func(fork string) *fakeForge { return &fakeForge{cloneURL: fork} },
			files:    Files{"../outside.json": 1},
			wantStep: StepFilesWritten,
		},
		{
			name:     "nothing to write",
			forge:    func(fork string) *fakeForge { return &fakeForge{cloneURL: fork} },
			wantStep: StepFilesWritten,
		},
		{
			name:     "pull request rejected",
			forge:    func(fork string) *fakeForge { return &fakeForge{cloneURL: fork, prErr: boom} },
			files:    Files{"a.json": 1},
			wantStep: StepPROpened,
			wantErr:  boom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, _ := newPublisher(t, tt.forge(setupFork(t)))
			_, err := p.Publish(context.Background(), Request{
				Branch:        "b",
				CommitMessage: "m",
				Title:         "t",
				Files:         tt.files,
				Prepare:       tt.prepare,
			})

			var pubErr *PublishError
			if !errors.As(err, &pubErr) {
				t.Fatalf("Publish() error = %v, want *PublishError", err)
			}
			if pubErr.Step != tt.wantStep {
				t.Errorf("Step = %s, want %s", pubErr.Step, tt.wantStep)
			}
			if pubErr.Branch != "b" {
				t.Errorf("Branch = %q, want %q", pubErr.Branch, "b")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.wantErr)
			}
			assertNoClones(t, p.WorkDir)
		})
	}
}

func TestPublish_PRFailureLeavesBranch(t *testing.T) {
	t.Parallel()

	fork := setupFork(t)
	p, _ := newPublisher(t, &fakeForge{cloneURL: fork, prErr: errors.New("422")})

	_, err := p.Publish(context.Background(), Request{
		Branch:        "add-new-workflow-x",
		CommitMessage: "m",
		Title:         "t",
		Files:         Files{"workflow/x/record.json": map[string]any{"id": "x"}},
	})
	var pubErr *PublishError
	if !errors.As(err, &pubErr) || !pubErr.Step.OrphansBranch() {
		t.Fatalf("Publish() error = %v, want orphaning PublishError", err)
	}
	if heads := gitCmd(t, fork, "branch", "--list", "add-new-workflow-x"); heads == "" {
		t.Error("pushed branch should remain on the fork")
	}
}

func TestPublish_ConcurrentCallsUseSeparateClones(t *testing.T) {
	t.Parallel()

	fork := setupFork(t)
	f := &fakeForge{cloneURL: fork}
	p := &Publisher{Forge: f, WorkDir: filepath.Join(t.TempDir(), "clones")}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, branch := range []string{"add-new-workflow-a", "add-new-workflow-b"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = p.Publish(context.Background(), Request{
				Branch:        branch,
				CommitMessage: "m",
				Title:         "t",
				Files:         Files{"workflow/" + branch + "/record.json": map[string]any{"id": branch}},
			})
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("publish %d error = %v", i, err)
		}
	}
	if len(f.prs) != 2 {
		t.Errorf("opened %d pull requests, want 2", len(f.prs))
	}
	assertNoClones(t, p.WorkDir)
}

func TestPublish_InvalidRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  Request
	}{
		{"no branch", Request{CommitMessage: "m", Title: "t"}},
		{"no message", Request{Branch: "b", Title: "t"}},
		{"no title", Request{Branch: "b", CommitMessage: "m"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := &fakeForge{}
			p := &Publisher{Forge: f, WorkDir: t.TempDir()}
			if _, err := p.Publish(context.Background(), tt.req); err == nil {
				t.Error("Publish() should reject the request")
			}
			if len(f.prs) != 0 {
				t.Error("forge used for invalid request")
			}
		})
	}
}

func TestWorkingCopy_Path(t *testing.T) {
	t.Parallel()

	wc := &WorkingCopy{Dir: "/repo"}
	tests := []struct {
		rel     string
		want    string
		wantErr bool
	}{
		{rel: "products/catalog.json", want: filepath.Join("/repo", "products", "catalog.json")},
		{rel: "../etc/passwd", wantErr: true},
		{rel: "/etc/passwd", wantErr: true},
		{rel: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := wc.Path(tt.rel)
		if (err != nil) != tt.wantErr {
			t.Errorf("Path(%q) error = %v, wantErr %v", tt.rel, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Path(%q) = %q, want %q", tt.rel, got, tt.want)
		}
	}
}
