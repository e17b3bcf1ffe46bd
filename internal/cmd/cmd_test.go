package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ksteinfeldt/gitid/internal/doctor"
	"github.com/ksteinfeldt/gitid/internal/gitcfg"
	"github.com/ksteinfeldt/gitid/internal/hook"
	"github.com/ksteinfeldt/gitid/internal/testutil"
)

type testEnv struct {
	repo     *testutil.Repo
	store    string
	hooksDir string
}

// newTestEnv points gitid and git at temp files and enters a fresh repository.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := testutil.NewRepo(t)
	tmp := t.TempDir()
	env := &testEnv{
		repo:     repo,
		store:    filepath.Join(tmp, ".git-identities"),
		hooksDir: filepath.Join(tmp, "hooks"),
	}

	t.Setenv("GIT_CONFIG_GLOBAL", repo.GlobalConfig)
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("GITID_CONFIG", filepath.Join(tmp, "missing.toml"))
	t.Setenv("GITID_STORE", env.store)
	t.Setenv("GITID_HOOKS_DIR", env.hooksDir)
	t.Setenv("GITID_LOG_ENABLED", "false")
	t.Chdir(repo.Dir)
	return env
}

func runGitid(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	prevName, prevEmail, prevLabel := addName, addEmail, addLabel
	prevGlobal, prevFix, prevConfig := useGlobal, doctorFix, configPath
	t.Cleanup(func() {
		addName, addEmail, addLabel = prevName, prevEmail, prevLabel
		useGlobal, doctorFix, configPath = prevGlobal, prevFix, prevConfig
	})
	addName, addEmail, addLabel = "", "", ""
	useGlobal, doctorFix, configPath = false, false, ""

	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := runRoot()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	newTestEnv(t)

	out, err := runGitid(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "gitid ") {
		t.Errorf("version output = %q", out)
	}
}

func TestAddListUseWhoami(t *testing.T) {
	env := newTestEnv(t)

	if _, err := runGitid(t, "", "add", "--name", "Alice", "--email", "a@x.com", "--label", "Work"); err != nil {
		t.Fatalf("add with flags: %v", err)
	}
	out, err := runGitid(t, "Bob\nb@x.com\nHome\n", "add")
	if err != nil {
		t.Fatalf("interactive add: %v", err)
	}
	if !strings.Contains(out, "Added identity 2") {
		t.Errorf("add output = %q", out)
	}

	data, err := os.ReadFile(env.store)
	if err != nil {
		t.Fatalf("reading store: %v", err)
	}
	if string(data) != "1:Alice:a@x.com:Work\n2:Bob:b@x.com:Home\n" {
		t.Errorf("store = %q", data)
	}

	if _, err := runGitid(t, "", "use", "2"); err != nil {
		t.Fatalf("use: %v", err)
	}
	if got := env.repo.Config(t, gitcfg.ScopeLocal, gitcfg.KeyUserEmail); got != "b@x.com" {
		t.Errorf("local user.email = %q, want b@x.com", got)
	}
	if got := env.repo.Config(t, gitcfg.ScopeGlobal, gitcfg.KeyUserEmail); got != "" {
		t.Errorf("global user.email = %q, want unset", got)
	}

	out, err = runGitid(t, "", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "* 2) Bob <b@x.com>") {
		t.Errorf("list should mark identity 2:\n%s", out)
	}
	if strings.Contains(out, "* 1)") {
		t.Errorf("list should not mark identity 1:\n%s", out)
	}

	out, err = runGitid(t, "", "whoami")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if !strings.Contains(out, "Bob <b@x.com>") || !strings.Contains(out, "Identity: 2") {
		t.Errorf("whoami output:\n%s", out)
	}
}

func TestAdd_InvalidFlag(t *testing.T) {
	newTestEnv(t)

	_, err := runGitid(t, "", "add", "--name", "Alice", "--email", "nope", "--label", "Work")
	if err == nil || !strings.Contains(err.Error(), "invalid email") {
		t.Fatalf("expected invalid email error, got: %v", err)
	}
}

func TestUse_Global(t *testing.T) {
	env := newTestEnv(t)
	if _, err := runGitid(t, "", "add", "--name", "Alice", "--email", "a@x.com", "--label", "Work"); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := runGitid(t, "", "use", "1", "--global"); err != nil {
		t.Fatalf("use --global: %v", err)
	}
	if got := env.repo.Config(t, gitcfg.ScopeGlobal, gitcfg.KeyUserEmail); got != "a@x.com" {
		t.Errorf("global user.email = %q", got)
	}
	if got := env.repo.Config(t, gitcfg.ScopeLocal, gitcfg.KeyUserEmail); got != "" {
		t.Errorf("local user.email = %q, want unset", got)
	}
}

func TestUse_Unknown(t *testing.T) {
	newTestEnv(t)

	for _, arg := range []string{"7", "x", "0"} {
		if _, err := runGitid(t, "", "use", arg); err == nil {
			t.Errorf("use %s: expected error", arg)
		}
	}
}

func TestList_Empty(t *testing.T) {
	newTestEnv(t)

	out, err := runGitid(t, "", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "No identities registered") {
		t.Errorf("list output = %q", out)
	}
}

func TestSetup(t *testing.T) {
	env := newTestEnv(t)

	_, err := runGitid(t, "Alice\na@x.com\nWork\nn\n", "setup")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if got := env.repo.Config(t, gitcfg.ScopeGlobal, gitcfg.KeyUserEmail); got != "a@x.com" {
		t.Errorf("global user.email = %q", got)
	}
	if got := env.repo.Config(t, gitcfg.ScopeGlobal, gitcfg.KeyHooksPath); got != env.hooksDir {
		t.Errorf("core.hooksPath = %q, want %q", got, env.hooksDir)
	}
}

func TestSetup_NoIdentities(t *testing.T) {
	newTestEnv(t)

	if _, err := runGitid(t, "", "setup"); err == nil {
		t.Fatal("setup with no identities should fail")
	}
}

func TestHooksInstallUninstall(t *testing.T) {
	env := newTestEnv(t)

	out, err := runGitid(t, "", "hooks", "install")
	if err != nil {
		t.Fatalf("hooks install: %v", err)
	}
	shim := filepath.Join(env.hooksDir, hook.PreCommit)
	if !strings.Contains(out, shim) {
		t.Errorf("install output = %q", out)
	}
	if got := env.repo.Config(t, gitcfg.ScopeGlobal, gitcfg.KeyHooksPath); got != env.hooksDir {
		t.Errorf("core.hooksPath = %q, want %q", got, env.hooksDir)
	}

	if _, err := runGitid(t, "", "hooks", "uninstall"); err != nil {
		t.Fatalf("hooks uninstall: %v", err)
	}
	if _, err := os.Stat(shim); !os.IsNotExist(err) {
		t.Errorf("shim still present: %v", err)
	}
	if got := env.repo.Config(t, gitcfg.ScopeGlobal, gitcfg.KeyHooksPath); got != "" {
		t.Errorf("core.hooksPath = %q, want unset", got)
	}
}

func TestHooks_RequiresSubcommand(t *testing.T) {
	newTestEnv(t)

	_, err := runGitid(t, "", "hooks")
	if err == nil || !strings.Contains(err.Error(), "requires a subcommand") {
		t.Fatalf("expected subcommand error, got: %v", err)
	}
}

func TestHook_UnhandledNamePasses(t *testing.T) {
	newTestEnv(t)

	if _, err := runGitid(t, "", "hook", "post-merge", "0"); err != nil {
		t.Fatalf("hook post-merge: %v", err)
	}
}

func TestDoctor(t *testing.T) {
	newTestEnv(t)

	out, err := runGitid(t, "", "doctor")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("doctor on a fresh account: err = %v, want exit 1", err)
	}
	if !strings.Contains(out, "No identity store") {
		t.Errorf("doctor output:\n%s", out)
	}

	if _, err := runGitid(t, "", "add", "--name", "Alice", "--email", "a@x.com", "--label", "Work"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := runGitid(t, "", "doctor", "--fix"); err != nil {
		t.Fatalf("doctor --fix: %v", err)
	}
	if _, err := runGitid(t, "", "doctor"); err != nil {
		t.Errorf("doctor after fix: %v", err)
	}
}

func TestDoctorHelp_ListsChecks(t *testing.T) {
	long := doctorLong(doctor.NewDoctor())
	if doctorCmd.Long != long {
		t.Errorf("doctor help is not built from the registered checks")
	}
	for _, want := range []string{
		"store-lines  Report malformed lines in the identity store\n",
		"Verify the pre-commit hook is installed and executable (fixable)",
		"Verify git is installed\n",
	} {
		if !strings.Contains(long, want) {
			t.Errorf("doctor help missing %q:\n%s", want, long)
		}
	}
}

// openFDs counts this process's descriptors that refer to path.
func openFDs(t *testing.T, path string) int {
	t.Helper()
	fds, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		t.Skipf("cannot list open files: %v", err)
	}
	n := 0
	for _, fd := range fds {
		if target, err := os.Readlink(filepath.Join("/proc/self/fd", fd.Name())); err == nil && target == path {
			n++
		}
	}
	return n
}

func TestFailingCommandClosesLog(t *testing.T) {
	newTestEnv(t)
	logDir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logFile := filepath.Join(logDir, "gitid.log")
	t.Setenv("GITID_LOG_ENABLED", "true")
	t.Setenv("GITID_LOG_FILE", logFile)

	if _, err := runGitid(t, "", "use", "7"); err == nil {
		t.Fatal("use 7 with an empty store should fail")
	}
	if _, err := os.Stat(logFile); err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if n := openFDs(t, logFile); n != 0 {
		t.Errorf("log file still open %d times after a failing command", n)
	}
}
