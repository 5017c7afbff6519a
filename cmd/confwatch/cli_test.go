package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"confwatch/internal/config"
	"confwatch/internal/dataset"
	"confwatch/internal/knowledge"
	"confwatch/internal/state"
	"confwatch/internal/testsupport"
)

const aaaiDocument = `
title: AAAI
sub: AI
rank:
  ccf: A
dblp: aaai
confs:
  - year: 2024
    id: aaai24
    timezone: UTC-12
    timeline:
      - deadline: '2024-08-15 23:59:59'
`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	home := filepath.Join(testsupport.BaseDir(cfg), "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	for _, key := range []string{"PUSHPLUS_TOKEN", "SMTP_HOST", "TELEGRAM_BOT_TOKEN"} {
		t.Setenv(key, "")
	}

	configPath := filepath.Join(testsupport.BaseDir(cfg), "confwatch.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
dataset_dir = %q
data_dir = %q

[pipeline]
interested_areas = ["ALL"]
max_papers_per_year = %d

[llm]
api_key = %q

[logging]
level = "warn"
`, cfg.Paths.DatasetDir, cfg.Paths.DataDir, cfg.Pipeline.MaxPapersPerYear, cfg.LLM.APIKey)
	testsupport.WriteFile(t, path, content)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func seedKnowledge(t *testing.T, cfg *config.Config) {
	t.Helper()
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	kb := testsupport.MustLoadKnowledge(t, cfg)
	entries := map[int]knowledge.YearAnalysis{
		2023: {
			TitlesCount: 120,
			Summary: []knowledge.Theme{
				{Name: "Graph Learning", Ratio: "20%", Description: "GNN variants"},
				{Name: "Large Language Models", Ratio: "45%", Description: "LLM reasoning"},
			},
			TokenUsage: knowledge.TokenUsage{TotalTokens: 1234},
			UpdatedAt:  "2024-05-01",
		},
		2022: {
			TitlesCount: 80,
			TokenUsage:  knowledge.TokenUsage{TotalTokens: 1000},
			UpdatedAt:   "2024-05-01",
		},
	}
	for year, analysis := range entries {
		if err := kb.Store("aaai", year, analysis); err != nil {
			t.Fatalf("store %d: %v", year, err)
		}
	}
	if err := kb.Save(); err != nil {
		t.Fatalf("save kb: %v", err)
	}
}

func TestConfigInitWritesSampleAndRefusesOverwrite(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(testsupport.BaseDir(env.cfg), "sample", "config.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration to "+target)
	if !testsupport.FileExists(t, target) {
		t.Fatal("expected sample config to exist")
	}

	_, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected overwrite refusal, got %v", err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigValidateReportsResolvedConfig(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+env.configPath)
	requireContains(t, out, "Interested areas: ALL")
	requireContains(t, out, "Notification channels: none")
	requireContains(t, out, "Configuration valid")
}

func TestConfigValidateRejectsInvalidConfig(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFile(t, env.configPath, "[logging]\nlevel = \"loud\"\n")

	_, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "logging.level") {
		t.Fatalf("expected logging.level error, got %v", err)
	}
}

func TestKnowledgeListAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"kb", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("kb list: %v", err)
	}
	requireContains(t, out, "Knowledge base is empty")

	seedKnowledge(t, env.cfg)

	out, _, err = runCLI(t, []string{"kb", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("kb list: %v", err)
	}
	requireContains(t, out, "aaai")
	requireContains(t, out, "2023")
	requireContains(t, out, "200")
	requireContains(t, out, "2,234")

	out, _, err = runCLI(t, []string{"kb", "show", "aaai"}, env.configPath)
	if err != nil {
		t.Fatalf("kb show: %v", err)
	}
	requireContains(t, out, "1,234 tokens")
	requireContains(t, out, "(no themes)")
	llm := strings.Index(out, "Large Language Models")
	graph := strings.Index(out, "Graph Learning")
	if llm < 0 || graph < 0 || llm > graph {
		t.Fatalf("expected themes sorted by ratio, got:\n%s", out)
	}
	if strings.Index(out, "aaai 2023") > strings.Index(out, "aaai 2022") {
		t.Fatalf("expected newest year first, got:\n%s", out)
	}
}

func TestKnowledgeShowUnknownVenue(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"kb", "show", "nope"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "no analyses stored") {
		t.Fatalf("expected missing venue error, got %v", err)
	}
}

func TestKnowledgeRecomputeRejectsBadYear(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"kb", "recompute", "aaai", "last"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "invalid year") {
		t.Fatalf("expected invalid year error, got %v", err)
	}
}

func TestStateList(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"state", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("state list: %v", err)
	}
	requireContains(t, out, "No editions tracked yet")

	testsupport.SeedState(t, env.cfg, map[string]state.Fingerprint{
		"aaai24": {Year: 2024, Timeline: dataset.TimelineEntry{Deadline: "2024-08-15 23:59:59"}},
	})

	out, _, err = runCLI(t, []string{"state", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("state list: %v", err)
	}
	requireContains(t, out, "aaai24")
	requireContains(t, out, "2024-08-15 23:59:59")
	requireContains(t, out, "1 editions tracked")
}

func TestRunWithoutChangesThenHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteDataset(t, env.cfg, "AI/aaai.yml", aaaiDocument)
	testsupport.SeedState(t, env.cfg, map[string]state.Fingerprint{
		"aaai24": {Year: 2024, Timeline: dataset.TimelineEntry{Deadline: "2024-08-15 23:59:59"}},
	})

	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "(full) ==")
	requireContains(t, out, renderStatusLine("Series tracked", statusInfo, "1", false))
	requireContains(t, out, renderStatusLine("Editions updated", statusInfo, "0", false))
	requireContains(t, out, renderStatusLine("Files written", statusInfo, "no", false))

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "full")
	requireContains(t, out, "succeeded")
}

func TestHistoryEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded")

	_, _, err = runCLI(t, []string{"history", "--run", "missing"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected missing run error, got %v", err)
	}
}

func TestTestNotifyDryRunRendersStoredAnalyses(t *testing.T) {
	env := setupCLITestEnv(t)
	seedKnowledge(t, env.cfg)

	out, _, err := runCLI(t, []string{"test-notify", "--dry-run", "--venue", "aaai"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "AAAI")
	requireContains(t, out, "Large Language Models")
	requireContains(t, out, "LLM Token Cost: 2234")
}

func TestTestNotifyWithoutChannels(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "No notification channels configured")
}
