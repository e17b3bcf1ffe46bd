// Package testutil holds helpers shared by package tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/ksteinfeldt/gitid/internal/gitcfg"
)

// Repo is a throwaway git repository whose global configuration lives in a
// temp file, so tests never touch the developer's ~/.gitconfig.
type Repo struct {
	Dir          string
	GlobalConfig string
	Env          []string
}

// NewRepo initializes an empty repository in a temp dir. The test is skipped
// when git is not installed.
func NewRepo(t *testing.T) *Repo {
	t.Helper()

	if err := gitcfg.LookGit(); err != nil {
		t.Skip("git not available:", err)
	}

	dir := t.TempDir()
	global := filepath.Join(t.TempDir(), "gitconfig")
	if err := os.WriteFile(global, nil, 0644); err != nil {
		t.Fatalf("creating global config: %v", err)
	}

	r := &Repo{
		Dir:          dir,
		GlobalConfig: global,
		Env: []string{
			"GIT_CONFIG_GLOBAL=" + global,
			"GIT_CONFIG_NOSYSTEM=1",
		},
	}

	cmd := exec.Command("git", "init", "--quiet", dir)
	cmd.Env = append(os.Environ(), r.Env...)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git init: %v: %s", err, out)
	}
	return r
}

// Git returns a gitcfg.Git bound to the repository and its isolated config.
func (r *Repo) Git() *gitcfg.Git {
	g := gitcfg.New(r.Dir)
	g.Env = r.Env
	return g
}

// Config reads key at scope, failing the test on error.
func (r *Repo) Config(t *testing.T, scope gitcfg.Scope, key string) string {
	t.Helper()
	v, err := r.Git().Get(t.Context(), scope, key)
	if err != nil {
		t.Fatalf("reading %s: %v", key, err)
	}
	return v
}
