package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	path := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q

[identity]
user_id = "test-user"
`, filepath.Join(base, "data"), filepath.Join(base, "logs"))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestConfigInitWritesSampleAndRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "cadence", "config.toml")

	out, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v (%s)", err, out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config missing: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected output: %s", out)
	}

	if _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("second init without --overwrite must fail")
	}
	if _, err := runCLI(t, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("init with --overwrite: %v", err)
	}
}

func TestPlanAddShowRemove(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCLI(t, cfgPath, "plan", "add", "monday", "builtin-focus-block", "--at", "09:00")
	if err != nil {
		t.Fatalf("plan add: %v (%s)", err, out)
	}
	match := regexp.MustCompile(`plan id ([0-9a-f-]{36})`).FindStringSubmatch(out)
	if match == nil {
		t.Fatalf("no plan id in output: %s", out)
	}
	planID := match[1]

	out, err = runCLI(t, cfgPath, "plan", "show")
	if err != nil {
		t.Fatalf("plan show: %v", err)
	}
	if !strings.Contains(out, "Focus Block") || !strings.Contains(out, "09:00") {
		t.Fatalf("plan show missing the added item: %s", out)
	}

	out, err = runCLI(t, cfgPath, "plan", "set-time", planID, "none")
	if err != nil {
		t.Fatalf("plan set-time: %v (%s)", err, out)
	}
	if !strings.Contains(out, "Unscheduled") {
		t.Fatalf("unexpected set-time output: %s", out)
	}

	out, err = runCLI(t, cfgPath, "plan", "remove", planID)
	if err != nil {
		t.Fatalf("plan remove: %v (%s)", err, out)
	}

	out, err = runCLI(t, cfgPath, "plan", "show")
	if err != nil {
		t.Fatalf("plan show after remove: %v", err)
	}
	if !strings.Contains(out, "empty") {
		t.Fatalf("expected empty plan, got: %s", out)
	}
}

func TestPlanRemoveUnknownID(t *testing.T) {
	cfgPath := writeTestConfig(t)
	if _, err := runCLI(t, cfgPath, "plan", "remove", "no-such-id"); err == nil {
		t.Fatal("removing an unknown plan id must fail")
	}
}

func TestRoutinesListsBuiltins(t *testing.T) {
	cfgPath := writeTestConfig(t)
	out, err := runCLI(t, cfgPath, "routines")
	if err != nil {
		t.Fatalf("routines: %v", err)
	}
	for _, id := range []string{"builtin-morning-warmup", "builtin-focus-block", "builtin-scale-drills"} {
		if !strings.Contains(out, id) {
			t.Fatalf("routines output missing %s: %s", id, out)
		}
	}
}

func TestSyncWithoutTopicReportsDisabled(t *testing.T) {
	cfgPath := writeTestConfig(t)
	out, err := runCLI(t, cfgPath, "sync")
	if err != nil {
		t.Fatalf("sync: %v (%s)", err, out)
	}
	if !strings.Contains(out, "disabled") {
		t.Fatalf("expected permission-denied message: %s", out)
	}
}

func TestDraftsEmpty(t *testing.T) {
	cfgPath := writeTestConfig(t)
	out, err := runCLI(t, cfgPath, "drafts")
	if err != nil {
		t.Fatalf("drafts: %v", err)
	}
	if !strings.Contains(out, "No recorded sessions") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestMissingUserIDFails(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "config.toml")
	content := fmt.Sprintf("[paths]\ndata_dir = %q\nlog_dir = %q\n",
		filepath.Join(base, "data"), filepath.Join(base, "logs"))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CADENCE_USER_ID", "")
	if _, err := runCLI(t, path, "plan", "show"); err == nil {
		t.Fatal("commands needing a user must fail without one")
	}
}
