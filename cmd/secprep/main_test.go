package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/secprep/internal/config"
	"github.com/verte-zerg/secprep/internal/model"
	"github.com/verte-zerg/secprep/internal/progress"
	"github.com/verte-zerg/secprep/internal/selector"
	"github.com/verte-zerg/secprep/internal/store"
)

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("secprep %v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func seedProgress(t *testing.T, path string) {
	t.Helper()
	st, err := store.Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	}()
	tracker := progress.New(st)
	result := model.QuizResult{
		Score:          3,
		TotalQuestions: 5,
		DomainBreakdown: map[string]model.DomainTally{
			"Risk Management":      {Correct: 1, Total: 3},
			"Cryptography and PKI": {Correct: 2, Total: 2},
		},
		Date: time.Now(),
	}
	if err := tracker.SaveQuizResult(context.Background(), result); err != nil {
		t.Fatalf("save result: %v", err)
	}
}

func TestProgressCommandJSONAndReset(t *testing.T) {
	dbFile := filepath.Join(t.TempDir(), "secprep.db")
	seedProgress(t, dbFile)

	out := runCLI(t, "progress", "--db", dbFile, "--json")
	var p model.StudyProgress
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if p.TotalQuizzes != 1 || p.AverageScore != 3 {
		t.Fatalf("unexpected progress: %+v", p)
	}

	out = runCLI(t, "progress", "--db", dbFile)
	if !strings.Contains(out, "Quizzes taken: 1") || !strings.Contains(out, "Last saved: ") {
		t.Fatalf("expected summary with save time: %s", out)
	}

	out = runCLI(t, "progress", "--db", dbFile, "--reset")
	if !strings.Contains(out, "Progress reset.") {
		t.Fatalf("unexpected reset output: %s", out)
	}
	out = runCLI(t, "progress", "--db", dbFile)
	if !strings.Contains(out, "Quizzes taken: 0") || strings.Contains(out, "Last saved") {
		t.Fatalf("expected empty progress after reset: %s", out)
	}
}

func TestWeakCommandListsWeakDomains(t *testing.T) {
	dbFile := filepath.Join(t.TempDir(), "secprep.db")
	seedProgress(t, dbFile)

	out := runCLI(t, "weak", "--db", dbFile)
	if !strings.Contains(out, "1. Risk Management") {
		t.Fatalf("expected risk management to be weak: %s", out)
	}
	if strings.Contains(out, "Cryptography and PKI") {
		t.Fatalf("crypto should not be weak: %s", out)
	}
}

func TestNoStoreIgnoresDatabase(t *testing.T) {
	dbFile := filepath.Join(t.TempDir(), "secprep.db")
	seedProgress(t, dbFile)

	out := runCLI(t, "progress", "--db", dbFile, "--no-store")
	if !strings.Contains(out, "Quizzes taken: 0") || strings.Contains(out, "Last saved") {
		t.Fatalf("expected default progress without storage: %s", out)
	}
}

func TestDomainsCommandListsBank(t *testing.T) {
	out := runCLI(t, "domains", "--no-store")
	for _, dw := range selector.DefaultWeights {
		if !strings.Contains(out, dw.Name) {
			t.Fatalf("domains output missing %q:\n%s", dw.Name, out)
		}
	}
	if !strings.Contains(out, "~In 50") {
		t.Fatalf("expected default quiz size column:\n%s", out)
	}
}

func TestStatsPlainReport(t *testing.T) {
	dbFile := filepath.Join(t.TempDir(), "secprep.db")
	seedProgress(t, dbFile)

	out := runCLI(t, "stats", "--plain", "--db", dbFile)
	for _, want := range []string{"Summary", "Quizzes taken: 1", "Domains", "Needs work", "Score Trends"} {
		if !strings.Contains(out, want) {
			t.Fatalf("stats report missing %q:\n%s", want, out)
		}
	}
}

func TestDefaultConfigTemplateParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("template should parse: %v", err)
	}
	if cfg.Quiz.Questions != nil || cfg.Storage.Path != nil {
		t.Fatalf("template values should be commented out")
	}
	for _, section := range []string{"[quiz]", "[stats]", "[storage]", "[bank]"} {
		if !strings.Contains(defaultConfigTemplate(), section) {
			t.Fatalf("template missing %s", section)
		}
	}
}

func TestValidateConfig(t *testing.T) {
	valid := model.Config{Questions: 10, Domain: selector.AllDomains}
	if err := validateConfig(valid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cases := []model.Config{
		{Questions: 0, Domain: selector.AllDomains},
		{Questions: 10, Domain: " "},
		{Questions: 10, Domain: selector.AllDomains, Timed: true},
	}
	for _, cfg := range cases {
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("expected error for %+v", cfg)
		}
	}
	if err := validateStatsConfig(model.StatsConfig{Window: 0}); err == nil {
		t.Fatalf("expected window error")
	}
	if err := validateStatsConfig(model.StatsConfig{Window: 1, Last: -1}); err == nil {
		t.Fatalf("expected last error")
	}
}

func TestCheckDomain(t *testing.T) {
	questions := []model.Question{{Domain: "Risk Management", Question: "q", Choices: []string{"a", "b"}, Answer: "a"}}
	sel := selector.New(questions, selector.DefaultWeights)
	if err := checkDomain(sel, selector.AllDomains); err != nil {
		t.Fatalf("all should be accepted: %v", err)
	}
	if err := checkDomain(sel, "Risk Management"); err != nil {
		t.Fatalf("known domain should be accepted: %v", err)
	}
	err := checkDomain(sel, "risk management")
	if err == nil {
		t.Fatalf("expected error for unknown domain")
	}
	if !strings.Contains(err.Error(), "  Risk Management") || strings.Contains(err.Error(), "Cryptography") {
		t.Fatalf("expected only populated domains listed: %v", err)
	}
}

func TestConfigFileAppliesUnlessFlagSet(t *testing.T) {
	cfgHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgHome)
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := "[quiz]\nquestions = 12\n[storage]\ndisabled = true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--no-store=false"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	a, err := openApp(cmd)
	if err != nil {
		t.Fatalf("open app: %v", err)
	}
	defer a.Close()
	if a.quizSize() != 12 {
		t.Fatalf("expected quiz size from config, got %d", a.quizSize())
	}
	if noStore {
		t.Fatalf("--no-store flag should override config")
	}
}

func TestUILoggerWritesToLogFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--no-store"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	a, err := openApp(cmd)
	if err != nil {
		t.Fatalf("open app: %v", err)
	}
	log := a.uiLogger()
	if a.uiLogger() != log {
		t.Fatalf("expected the UI logger to be reused")
	}
	log.Error("save quiz result")
	a.Close()

	data, err := os.ReadFile(config.DefaultLogPath())
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "save quiz result") {
		t.Fatalf("expected UI error in log file: %s", data)
	}
}
