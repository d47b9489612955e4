package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir     string
	configPath  string
	projectRoot string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	projectRoot := filepath.Join(base, "projects")
	if err := os.MkdirAll(projectRoot, 0o755); err != nil {
		t.Fatalf("create project root: %v", err)
	}

	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q
project_root = %q

[store]
backend = "toml"

[resolver]
default_studio = "main"
default_group = "default"

[logging]
format = "console"
level = "info"
`, filepath.Join(base, "data"), filepath.Join(base, "logs"), projectRoot)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{
		baseDir:     base,
		configPath:  configPath,
		projectRoot: projectRoot,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = []string{"--config", configPath}
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, output)
	}
}

func mustRunCLI(t *testing.T, env *cliTestEnv, args ...string) string {
	t.Helper()
	out, stderr, err := runCLI(t, args, env.configPath)
	if err != nil {
		t.Fatalf("%v: %v\nstderr: %s", args, err, stderr)
	}
	return out
}

func TestCLIGroupAndTemplateCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out := mustRunCLI(t, env, "group", "create", "default", "--description", "shared templates")
	requireContains(t, out, `Created template group "default"`)

	if _, _, err := runCLI(t, []string{"group", "create", "default"}, env.configPath); err == nil {
		t.Fatal("expected duplicate group create to fail")
	}

	out = mustRunCLI(t, env, "template", "create", "asset_base",
		"--template", "/projects/{PROJECT}/assets/{ASSET_NAME}")
	requireContains(t, out, `Created template "asset_base"`)

	out = mustRunCLI(t, env, "template", "create", "asset_work",
		"--template", "work/{DEPARTMENT}",
		"--parent", "asset_base",
		"--inheritance", "EXTEND")
	requireContains(t, out, `Created template "asset_work"`)

	out = mustRunCLI(t, env, "template", "show", "asset_work")
	requireContains(t, out, "Parent: asset_base (extend)")
	requireContains(t, out, "Effective: /projects/{PROJECT}/assets/{ASSET_NAME}/work/{DEPARTMENT}")

	out = mustRunCLI(t, env, "template", "format", "asset_work",
		"--set", "PROJECT=Alpha", "--set", "ASSET_NAME=hero", "--set", "DEPARTMENT=model")
	requireContains(t, out, "/projects/Alpha/assets/hero/work/model")

	out = mustRunCLI(t, env, "group", "list")
	requireContains(t, out, "default")

	if _, _, err := runCLI(t, []string{"template", "delete", "asset_base"}, env.configPath); err == nil {
		t.Fatal("expected delete of parent template to fail")
	}

	out = mustRunCLI(t, env, "group", "validate", "default")
	requireContains(t, out, "is valid")
}

func TestCLIMappingAndPathCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	mustRunCLI(t, env, "group", "create", "default")
	mustRunCLI(t, env, "template", "create", "asset_work",
		"--template", "/projects/{PROJECT}/assets/{ASSET_NAME}/work")

	out := mustRunCLI(t, env, "mapping", "create", "main", "--description", "primary studio")
	requireContains(t, out, `Created studio mapping "main"`)

	out = mustRunCLI(t, env, "mapping", "set", "main", "asset_work_path",
		"--from-template", "asset_work")
	requireContains(t, out, "Set asset_work_path")

	mustRunCLI(t, env, "mapping", "set", "main", "asset_published_path",
		"--raw", "/projects/{PROJECT}/assets/{ASSET_NAME}/publish")
	mustRunCLI(t, env, "mapping", "set", "main", "shot_work_path",
		"--raw", "/projects/{PROJECT}/shots/{SHOT_NAME}/work")
	mustRunCLI(t, env, "mapping", "set", "main", "shot_published_path",
		"--raw", "/projects/{PROJECT}/shots/{SHOT_NAME}/publish")

	out = mustRunCLI(t, env, "mapping", "validate", "main")
	requireContains(t, out, "is valid")

	out = mustRunCLI(t, env, "mapping", "show", "main")
	requireContains(t, out, "Asset Work Path")
	requireContains(t, out, "/projects/{PROJECT}/assets/{ASSET_NAME}/work")

	out = mustRunCLI(t, env, "path", "resolve",
		"--entity", "asset", "--data", "work",
		"--project", "Alpha", "--name", "hero")
	requireContains(t, out, "/projects/Alpha/assets/hero/work")

	out = mustRunCLI(t, env, "path", "analyze", "/projects/Alpha/assets/hero/publish")
	requireContains(t, out, "Entity: asset")
	requireContains(t, out, "Data: published")
	requireContains(t, out, "hero")

	if _, _, err := runCLI(t, []string{"path", "analyze", "/elsewhere/Alpha"}, env.configPath); err == nil {
		t.Fatal("expected analyze of unmatched path to fail")
	}

	out = mustRunCLI(t, env, "path", "mkdirs",
		"--entity", "asset", "--data", "work",
		"--project", "Alpha", "--name", "hero")
	requireContains(t, out, "Created")

	created := filepath.Join(env.projectRoot, "projects", "Alpha", "assets", "hero", "work")
	if info, err := os.Stat(created); err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %s: %v", created, err)
	}
}

func TestCLIPathConvertBetweenStudios(t *testing.T) {
	env := setupCLITestEnv(t)

	mustRunCLI(t, env, "mapping", "create", "main")
	mustRunCLI(t, env, "mapping", "set", "main", "asset_work_path",
		"--raw", "/projects/{PROJECT}/assets/{ASSET_TYPE}/{ASSET_NAME}/work")

	mustRunCLI(t, env, "mapping", "create", "vendor")
	mustRunCLI(t, env, "mapping", "set", "vendor", "asset_work_path",
		"--raw", "/shows/{PROJECT}/assets/{ASSET_NAME}/{ASSET_TYPE}/work")

	out := mustRunCLI(t, env, "path", "convert",
		"--from", "main", "--to", "vendor",
		"/projects/Alpha/assets/character/hero/work")
	requireContains(t, out, "/shows/Alpha/assets/hero/character/work")

	if _, _, err := runCLI(t, []string{
		"path", "convert", "--from", "main", "--to", "vendor", "/unknown/layout",
	}, env.configPath); err == nil {
		t.Fatal("expected convert of unmatched path to fail")
	}
}
