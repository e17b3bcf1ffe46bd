package gitcfg_test

import (
	"errors"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/ksteinfeldt/gitid/internal/gitcfg"
	"github.com/ksteinfeldt/gitid/internal/identity"
	"github.com/ksteinfeldt/gitid/internal/testutil"
)

func TestGet_UnsetKeyIsEmpty(t *testing.T) {
	repo := testutil.NewRepo(t)

	v, err := repo.Git().Get(t.Context(), gitcfg.ScopeLocal, "gitid.nothing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != "" {
		t.Errorf("value = %q, want empty", v)
	}
}

func TestSetGetUnset(t *testing.T) {
	repo := testutil.NewRepo(t)
	g := repo.Git()
	ctx := t.Context()

	if err := g.Set(ctx, gitcfg.ScopeGlobal, "gitid.test", "on"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := repo.Config(t, gitcfg.ScopeGlobal, "gitid.test"); got != "on" {
		t.Errorf("global value = %q, want %q", got, "on")
	}
	if got := repo.Config(t, gitcfg.ScopeLocal, "gitid.test"); got != "" {
		t.Errorf("local value = %q, want empty", got)
	}

	if err := g.Unset(ctx, gitcfg.ScopeGlobal, "gitid.test"); err != nil {
		t.Fatalf("Unset: %v", err)
	}
	if err := g.Unset(ctx, gitcfg.ScopeGlobal, "gitid.test"); err != nil {
		t.Errorf("second Unset should succeed, got: %v", err)
	}
}

func TestApply_LocalLeavesGlobalUntouched(t *testing.T) {
	repo := testutil.NewRepo(t)
	g := repo.Git()
	ctx := t.Context()

	if err := g.Apply(ctx, identity.Identity{Name: "Global", Email: "g@x.com"}, gitcfg.ScopeGlobal); err != nil {
		t.Fatalf("Apply global: %v", err)
	}

	bob := identity.Identity{Seq: 2, Name: "Bob", Email: "b@x.com", Label: "Personal"}
	if err := g.Apply(ctx, bob, gitcfg.ScopeLocal); err != nil {
		t.Fatalf("Apply local: %v", err)
	}

	if got := repo.Config(t, gitcfg.ScopeLocal, gitcfg.KeyUserName); got != "Bob" {
		t.Errorf("local user.name = %q, want %q", got, "Bob")
	}
	if got := repo.Config(t, gitcfg.ScopeLocal, gitcfg.KeyUserEmail); got != "b@x.com" {
		t.Errorf("local user.email = %q, want %q", got, "b@x.com")
	}
	if got := repo.Config(t, gitcfg.ScopeGlobal, gitcfg.KeyUserName); got != "Global" {
		t.Errorf("global user.name = %q, want %q", got, "Global")
	}
	if got := repo.Config(t, gitcfg.ScopeGlobal, gitcfg.KeyUserEmail); got != "g@x.com" {
		t.Errorf("global user.email = %q, want %q", got, "g@x.com")
	}

	name, email, err := g.Current(ctx)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if name != "Bob" || email != "b@x.com" {
		t.Errorf("Current = %q <%q>, want Bob <b@x.com>", name, email)
	}
}

func TestApply_RejectsEffectiveScope(t *testing.T) {
	g := gitcfg.New(t.TempDir())
	if err := g.Apply(t.Context(), identity.Identity{Name: "A", Email: "a@b.co"}, gitcfg.ScopeEffective); err == nil {
		t.Error("expected error for effective scope")
	}
}

func TestSetLocal_OutsideRepository(t *testing.T) {
	repo := testutil.NewRepo(t)
	g := gitcfg.New(t.TempDir())
	g.Env = repo.Env

	err := g.Set(t.Context(), gitcfg.ScopeLocal, gitcfg.KeyUserName, "Nobody")
	if !errors.Is(err, gitcfg.ErrGitOperationFailed) {
		t.Fatalf("expected ErrGitOperationFailed, got: %v", err)
	}
	var gitErr *gitcfg.GitError
	if !errors.As(err, &gitErr) {
		t.Fatalf("expected *GitError, got %T", err)
	}
	if gitErr.Stderr == "" {
		t.Error("GitError should carry git's stderr")
	}
}

func TestCommonDir(t *testing.T) {
	repo := testutil.NewRepo(t)

	dir, err := repo.Git().CommonDir(t.Context())
	if err != nil {
		t.Fatalf("CommonDir: %v", err)
	}
	want, _ := filepath.EvalSymlinks(filepath.Join(repo.Dir, ".git"))
	got, _ := filepath.EvalSymlinks(dir)
	if got != want {
		t.Errorf("CommonDir = %q, want %q", got, want)
	}

	_, err = gitcfg.New(t.TempDir()).CommonDir(t.Context())
	if !errors.Is(err, gitcfg.ErrNotRepository) {
		t.Errorf("expected ErrNotRepository outside a repo, got: %v", err)
	}
}

type recordingExecutor struct {
	cmds []*exec.Cmd
	out  string
}

func (r *recordingExecutor) Output(cmd *exec.Cmd) (string, error) {
	r.cmds = append(r.cmds, cmd)
	return r.out, nil
}

func TestGet_Args(t *testing.T) {
	rec := &recordingExecutor{out: "Alice\n"}
	g := &gitcfg.Git{Dir: "/repo", Exec: rec}

	v, err := g.Get(t.Context(), gitcfg.ScopeGlobal, gitcfg.KeyUserName)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != "Alice" {
		t.Errorf("value = %q, want %q", v, "Alice")
	}

	if len(rec.cmds) != 1 {
		t.Fatalf("commands = %d, want 1", len(rec.cmds))
	}
	cmd := rec.cmds[0]
	want := []string{"git", "config", "--global", "--get", "user.name"}
	if len(cmd.Args) != len(want) {
		t.Fatalf("args = %v, want %v", cmd.Args, want)
	}
	for i := range want {
		if cmd.Args[i] != want[i] {
			t.Errorf("arg %d = %q, want %q", i, cmd.Args[i], want[i])
		}
	}
	if cmd.Dir != "/repo" {
		t.Errorf("dir = %q, want /repo", cmd.Dir)
	}
}
