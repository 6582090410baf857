package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	dataDir    string
	configPath string
}

type testSource struct {
	name string
	path string
}

func setupCLITestEnv(t *testing.T, sources ...testSource) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("FILMLOC_DATABASE_URL", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TMDB_API_KEY", "")

	env := &cliTestEnv{
		baseDir:    base,
		dataDir:    filepath.Join(base, "data"),
		configPath: filepath.Join(base, "filmloc.toml"),
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[paths]\ndata_dir = %q\nlog_dir = %q\n\n", env.dataDir, filepath.Join(base, "logs"))
	fmt.Fprintf(&b, "[database]\ndriver = \"sqlite\"\npath = %q\n\n", filepath.Join(env.dataDir, "filmloc.db"))
	b.WriteString("[geocoding]\nenabled = false\n\n")
	b.WriteString("[pipeline]\nmax_attempts = 2\nretry_backoff_ms = 1\n\n")
	b.WriteString("[logging]\nlevel = \"error\"\n\n")
	for _, src := range sources {
		fmt.Fprintf(&b, "[[sources]]\nname = %q\nkind = \"file\"\npath = %q\npriority = 1\nrequests_per_minute = 0\nenabled = true\n\n", src.name, src.path)
	}
	if err := os.WriteFile(env.configPath, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func mustRunCLI(t *testing.T, env *cliTestEnv, args ...string) string {
	t.Helper()
	out, err := runCLI(t, env, args...)
	if err != nil {
		t.Fatalf("filmloc %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func decodeJSON(t *testing.T, out string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(out), v); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
}

func writeRecords(t *testing.T, path string, lines ...string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write records: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

const (
	verifiedRecord   = `{"production":{"title":"Inception","type":"movie","release_year":2010,"imdb_id":"tt1375666"},"location":{"name":"Château de Chambord","city":"Chambord","country":"France","latitude":47.6161,"longitude":1.5173},"filming_info":{"scene_description":"Dream sequences","verified":true},"confidence":0.9}`
	unverifiedRecord = `{"production":{"title":"Skyfall","type":"movie","release_year":2012},"location":{"name":"Glen Etive","country":"United Kingdom","latitude":56.59,"longitude":-5.0},"filming_info":{"verified":false},"confidence":0.4}`
)

func appendConfig(t *testing.T, env *cliTestEnv, text string) {
	t.Helper()
	f, err := os.OpenFile(env.configPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open config: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString("\n" + text + "\n"); err != nil {
		t.Fatalf("append config: %v", err)
	}
}
