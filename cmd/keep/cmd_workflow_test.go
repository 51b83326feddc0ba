package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestWorkflowInitThroughLog(t *testing.T) {
	dir := t.TempDir()

	out := runKeepCmd(t, dir, newInitCmd)
	if !strings.Contains(out, "initialized empty keep repository in") {
		t.Fatalf("init output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, ".metadata", "HEAD")); err != nil {
		t.Fatalf("HEAD not created: %v", err)
	}

	runKeepCmd(t, dir, newConfigCmd, "user.name", "Test User")
	runKeepCmd(t, dir, newConfigCmd, "user.email", "test@example.com")

	writeCmdFile(t, filepath.Join(dir, "a.txt"), "hello\n")
	writeCmdFile(t, filepath.Join(dir, "docs", "guide.md"), "# guide\n")

	statusOut := runKeepCmd(t, dir, newStatusCmd)
	if !strings.Contains(statusOut, "on main (no commits yet)") {
		t.Fatalf("status header = %q", statusOut)
	}
	if !strings.Contains(statusOut, "? a.txt") {
		t.Fatalf("status missing untracked a.txt:\n%s", statusOut)
	}
	if !strings.Contains(statusOut, "? docs/guide.md") {
		t.Fatalf("status missing untracked docs/guide.md:\n%s", statusOut)
	}

	runKeepCmd(t, dir, newAddCmd, "a.txt", "docs")

	statusOut = runKeepCmd(t, dir, newStatusCmd)
	if !strings.Contains(statusOut, "+ a.txt") {
		t.Fatalf("status missing staged a.txt:\n%s", statusOut)
	}

	commitOut := runKeepCmd(t, dir, newCommitCmd, "-m", "first")
	if !strings.Contains(commitOut, "[main ") || !strings.Contains(commitOut, "] first") {
		t.Fatalf("commit output = %q", commitOut)
	}

	statusOut = runKeepCmd(t, dir, newStatusCmd)
	if !strings.Contains(statusOut, "on main\n") {
		t.Fatalf("status header after commit = %q", statusOut)
	}
	if !strings.Contains(statusOut, "working tree clean") {
		t.Fatalf("status not clean after commit:\n%s", statusOut)
	}

	logOut := runKeepCmd(t, dir, newLogCmd)
	if !strings.Contains(logOut, "(HEAD -> main)") {
		t.Fatalf("log missing decoration:\n%s", logOut)
	}
	if !strings.Contains(logOut, "Author: Test User <test@example.com>") {
		t.Fatalf("log missing author:\n%s", logOut)
	}
	if !strings.Contains(logOut, "    first") {
		t.Fatalf("log missing message:\n%s", logOut)
	}

	onelineOut := runKeepCmd(t, dir, newLogCmd, "--oneline")
	lines := nonEmptyLines(onelineOut)
	if len(lines) != 1 {
		t.Fatalf("oneline log = %d lines, want 1\noutput:\n%s", len(lines), onelineOut)
	}
	if !strings.HasSuffix(lines[0], "first") {
		t.Fatalf("oneline line = %q", lines[0])
	}
}

func TestCommitCmdRequiresMessage(t *testing.T) {
	dir := t.TempDir()
	runKeepCmd(t, dir, newInitCmd)

	_, err := runKeepCmdErr(t, dir, newCommitCmd)
	if err == nil {
		t.Fatal("commit without -m should fail")
	}
	if !strings.Contains(err.Error(), "commit message is required") {
		t.Fatalf("commit error = %q", err.Error())
	}
}

func TestInitCmdCustomBranch(t *testing.T) {
	dir := t.TempDir()
	runKeepCmd(t, dir, newInitCmd, "--initial-branch", "trunk")

	head, err := os.ReadFile(filepath.Join(dir, ".metadata", "HEAD"))
	if err != nil {
		t.Fatalf("read HEAD: %v", err)
	}
	if string(head) != "ref: refs/heads/trunk\n" {
		t.Fatalf("HEAD = %q, want %q", head, "ref: refs/heads/trunk\n")
	}

	statusOut := runKeepCmd(t, dir, newStatusCmd)
	if !strings.Contains(statusOut, "on trunk (no commits yet)") {
		t.Fatalf("status header = %q", statusOut)
	}
}

func TestAddCmdAll(t *testing.T) {
	dir := t.TempDir()
	runKeepCmd(t, dir, newInitCmd)
	runKeepCmd(t, dir, newConfigCmd, "user.name", "Test User")
	runKeepCmd(t, dir, newConfigCmd, "user.email", "test@example.com")

	writeCmdFile(t, filepath.Join(dir, "a.txt"), "a\n")
	writeCmdFile(t, filepath.Join(dir, "b.txt"), "b\n")

	runKeepCmd(t, dir, newAddCmd, "--all")
	runKeepCmd(t, dir, newCommitCmd, "-m", "both files")

	if err := os.Remove(filepath.Join(dir, "b.txt")); err != nil {
		t.Fatalf("Remove(b.txt): %v", err)
	}
	runKeepCmd(t, dir, newAddCmd, "-A")

	statusOut := runKeepCmd(t, dir, newStatusCmd)
	if strings.Contains(statusOut, "b.txt") {
		t.Fatalf("b.txt should be dropped from the index after add --all:\n%s", statusOut)
	}

	_, err := runKeepCmdErr(t, dir, newAddCmd)
	if err == nil {
		t.Fatal("add with no args and no --all should fail")
	}
}

func runKeepCmd(t *testing.T, repoDir string, build func() *cobra.Command, args ...string) string {
	t.Helper()

	out, err := runKeepCmdErr(t, repoDir, build, args...)
	if err != nil {
		t.Fatalf("command failed (%v): %v\noutput:\n%s", args, err, out)
	}
	return out
}

func runKeepCmdErr(t *testing.T, repoDir string, build func() *cobra.Command, args ...string) (string, error) {
	t.Helper()

	restore := chdirForTest(t, repoDir)
	defer restore()

	cmd := build()
	cmd.SetArgs(args)

	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)

	err := cmd.Execute()
	return output.String(), err
}

func chdirForTest(t *testing.T, dir string) func() {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir(%s): %v", dir, err)
	}
	return func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("restore cwd %s: %v", wd, err)
		}
	}
}

func writeCmdFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll(%s): %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
}

func nonEmptyLines(s string) []string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}
