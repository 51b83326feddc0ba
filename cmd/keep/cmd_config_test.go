package main

import (
	"strings"
	"testing"
)

func TestConfigCmdRoundTrip(t *testing.T) {
	dir := t.TempDir()
	runKeepCmd(t, dir, newInitCmd)

	runKeepCmd(t, dir, newConfigCmd, "user.name", "Grace Hopper")
	out := runKeepCmd(t, dir, newConfigCmd, "user.name")
	if strings.TrimSpace(out) != "Grace Hopper" {
		t.Fatalf("config get = %q, want %q", out, "Grace Hopper")
	}

	listOut := runKeepCmd(t, dir, newConfigCmd, "--list")
	if !strings.Contains(listOut, "core.bare=false") {
		t.Fatalf("config --list missing core.bare:\n%s", listOut)
	}
	if !strings.Contains(listOut, "user.name=Grace Hopper") {
		t.Fatalf("config --list missing user.name:\n%s", listOut)
	}

	runKeepCmd(t, dir, newConfigCmd, "--unset", "user.name")
	listOut = runKeepCmd(t, dir, newConfigCmd, "--list")
	if strings.Contains(listOut, "user.name") {
		t.Fatalf("config --list still has user.name after unset:\n%s", listOut)
	}
}

func TestConfigCmdUnknownKey(t *testing.T) {
	dir := t.TempDir()
	runKeepCmd(t, dir, newInitCmd)

	if _, err := runKeepCmdErr(t, dir, newConfigCmd, "nope.key"); err == nil {
		t.Fatal("get of unknown key should fail")
	}
	if _, err := runKeepCmdErr(t, dir, newConfigCmd, "nope.key", "value"); err == nil {
		t.Fatal("set of unknown key should fail")
	}
	if _, err := runKeepCmdErr(t, dir, newConfigCmd, "--unset", "core.bare"); err == nil {
		t.Fatal("unset of a core key should fail")
	}
}
