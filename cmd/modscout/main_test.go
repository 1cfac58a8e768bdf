package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"modscout/internal/decision"
	"modscout/internal/testsupport"
)

func runCLI(t *testing.T, args []string, configPath string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTestConfig(t *testing.T, catalogURL string) string {
	t.Helper()

	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	body := fmt.Sprintf(`[paths]
state_dir = %q
log_dir = %q

[catalog]
base_url = %q
api_key = "test-key"

[judge]
api_key = "test-key"

[snapshot]
path = %q

[logging]
level = "error"
`,
		filepath.Join(base, "state"),
		filepath.Join(base, "logs"),
		catalogURL,
		filepath.Join(base, "snapshot.json"),
	)
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func requireContains(t *testing.T, output, needle string) {
	t.Helper()
	if !strings.Contains(output, needle) {
		t.Fatalf("output %q does not contain %q", output, needle)
	}
}

func newCatalogServer(t *testing.T, records string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/records" || r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"records":%s}`, records)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestConfigInitWritesSampleFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	// Second init without --overwrite refuses to clobber the file.
	if _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error for existing config file")
	}
}

func TestConfigPathReportsLocation(t *testing.T) {
	configPath := writeTestConfig(t, "http://127.0.0.1:0")
	out, err := runCLI(t, []string{"config", "path"}, configPath)
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	requireContains(t, out, configPath)
}

func TestConfigShowRedactsSecrets(t *testing.T) {
	configPath := writeTestConfig(t, "http://127.0.0.1:0")
	out, err := runCLI(t, []string{"config", "show"}, configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "<redacted>")
	if strings.Contains(out, "test-key") {
		t.Error("config show leaked an api key")
	}
}

func TestLogShowFindsDecisionByURL(t *testing.T) {
	configPath := writeTestConfig(t, "http://127.0.0.1:0")
	stateDir := filepath.Join(filepath.Dir(configPath), "state")
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		t.Fatalf("create state dir: %v", err)
	}

	log, err := decision.OpenPath(filepath.Join(stateDir, "decisions.db"))
	if err != nil {
		t.Fatalf("open decision log: %v", err)
	}
	url := "https://mods.example/night-market-overhaul"
	testsupport.SeedDecision(t, log, url, "fp-seeded", "rec-1")
	if err := log.Close(); err != nil {
		t.Fatalf("close decision log: %v", err)
	}

	out, err := runCLI(t, []string{"log", "show", url}, configPath)
	if err != nil {
		t.Fatalf("log show: %v", err)
	}
	requireContains(t, out, "FOUND")
	requireContains(t, out, "Matched:       rec-1")
}

func TestLogListEmpty(t *testing.T) {
	configPath := writeTestConfig(t, "http://127.0.0.1:0")
	out, err := runCLI(t, []string{"log", "list"}, configPath)
	if err != nil {
		t.Fatalf("log list: %v", err)
	}
	requireContains(t, out, "No decisions recorded.")
}

func TestCacheStatsEmpty(t *testing.T) {
	configPath := writeTestConfig(t, "http://127.0.0.1:0")
	out, err := runCLI(t, []string{"cache", "stats"}, configPath)
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Match cache:  0 entries")
	requireContains(t, out, "Absent cache: 0 entries")
}

func TestResolveAgainstFakeCatalog(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><head><title>Forest Cabin Kit</title></head><body></body></html>")
	}))
	t.Cleanup(page.Close)

	catalog := newCatalogServer(t, fmt.Sprintf(
		`[{"id":"rec-1","title":"Forest Cabin Kit","url":%q,"status":"pending"}]`, page.URL))
	configPath := writeTestConfig(t, catalog.URL)

	out, err := runCLI(t, []string{"resolve", page.URL}, configPath)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	requireContains(t, out, "FOUND")
	requireContains(t, out, "rec-1")

	// Second invocation answers from cache, persisted across processes.
	out, err = runCLI(t, []string{"resolve", page.URL}, configPath)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	requireContains(t, out, "Cache hit:    yes")

	out, err = runCLI(t, []string{"log", "list"}, configPath)
	if err != nil {
		t.Fatalf("log list: %v", err)
	}
	requireContains(t, out, "FOUND")
}

func TestSnapshotExportFromCLI(t *testing.T) {
	catalog := newCatalogServer(t, `[]`)
	configPath := writeTestConfig(t, catalog.URL)

	out, err := runCLI(t, []string{"snapshot", "export"}, configPath)
	if err != nil {
		t.Fatalf("snapshot export: %v", err)
	}
	requireContains(t, out, "Snapshot written to")
}
