// Package main provides the CLI entrypoint for secprep.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/secprep/internal/config"
	"github.com/verte-zerg/secprep/internal/model"
	"github.com/verte-zerg/secprep/internal/progress"
	"github.com/verte-zerg/secprep/internal/selector"
	"github.com/verte-zerg/secprep/internal/stats"
	"github.com/verte-zerg/secprep/internal/statsui"
	"github.com/verte-zerg/secprep/internal/tui"
)

const (
	defaultQuestions = 50
	defaultTimeLimit = 90
	defaultWindow    = 1
)

var (
	bankPath string
	dbPath   string
	noStore  bool
	debug    bool

	quizQuestions int
	quizDomain    string
	quizTimed     bool
	quizTimeLimit int

	cardsDomain string

	statsWindow int
	statsLast   int
	statsPlain  bool

	progressJSON  bool
	progressReset bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "secprep",
		Short:         "CompTIA Security+ practice quizzes and flashcards",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runQuizCmd,
	}

	rootCmd.PersistentFlags().StringVar(&bankPath, "bank", "", "question bank JSON file (default: built-in bank)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "progress database path")
	rootCmd.PersistentFlags().BoolVar(&noStore, "no-store", false, "do not read or write study progress")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "verbose logging to stderr")

	rootCmd.Flags().IntVar(&quizQuestions, "questions", defaultQuestions, "questions per quiz")
	rootCmd.Flags().StringVar(&quizDomain, "domain", selector.AllDomains, "domain to quiz on, or 'all' for a weighted quiz")
	rootCmd.Flags().BoolVar(&quizTimed, "timed", false, "end the quiz when the time limit runs out")
	rootCmd.Flags().IntVar(&quizTimeLimit, "time-limit", defaultTimeLimit, "time limit in minutes for timed quizzes")

	rootCmd.AddCommand(newFlashcardsCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newDomainsCmd())
	rootCmd.AddCommand(newWeakCmd())
	rootCmd.AddCommand(newProgressCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runQuizCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	quiz := a.fileCfg.Quiz
	applyIntConfig(cmd, "questions", &quizQuestions, quiz.Questions)
	applyStringConfig(cmd, "domain", &quizDomain, quiz.Domain)
	applyBoolConfig(cmd, "timed", &quizTimed, quiz.Timed)
	applyIntConfig(cmd, "time-limit", &quizTimeLimit, quiz.TimeLimit)

	cfg := model.Config{
		Questions: quizQuestions,
		Domain:    quizDomain,
		Timed:     quizTimed,
		TimeLimit: time.Duration(quizTimeLimit) * time.Minute,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	if err := checkDomain(a.selector, cfg.Domain); err != nil {
		return err
	}

	m := tui.NewQuizModel(cfg, a.selector, a.tracker, a.uiLogger())
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run quiz TUI: %w", err)
	}
	return nil
}

func newFlashcardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "flashcards",
		Aliases: []string{"cards"},
		Short:   "Study questions as flashcards",
		Args:    cobra.NoArgs,
		RunE:    runFlashcardsCmd,
	}
	cmd.Flags().StringVar(&cardsDomain, "domain", selector.AllDomains, "domain to study, or 'all'")
	return cmd
}

func runFlashcardsCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	applyStringConfig(cmd, "domain", &cardsDomain, a.fileCfg.Quiz.Domain)
	if err := checkDomain(a.selector, cardsDomain); err != nil {
		return err
	}
	deck := a.selector.Deck(cardsDomain)
	m := tui.NewFlashcardModel(deck, a.selector.Shuffle, a.tracker, a.uiLogger())
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run flashcard TUI: %w", err)
	}
	a.log.Debug("flashcard session finished", zap.Int("studied", m.Studied()))
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show study analytics",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVar(&statsWindow, "window", defaultWindow, "moving average window for trends")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit trends to the last N scores per domain")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	applyIntConfig(cmd, "window", &statsWindow, a.fileCfg.Stats.Window)
	applyIntConfig(cmd, "last", &statsLast, a.fileCfg.Stats.Last)
	cfg := model.StatsConfig{Window: statsWindow, Last: statsLast}
	if err := validateStatsConfig(cfg); err != nil {
		return err
	}

	quizSize := a.quizSize()
	if statsPlain {
		return writeStatsReport(context.Background(), cmd.OutOrStdout(), a.tracker, a.selector, cfg)
	}

	m := statsui.NewModel(a.tracker, a.selector.Weights(), a.selector.DomainStats(), quizSize, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func writeStatsReport(ctx context.Context, w io.Writer, src stats.ProgressSource, sel *selector.Selector, cfg model.StatsConfig) error {
	report := stats.BuildReport(ctx, src, sel.Weights(), sel.DomainStats(), nil)
	if err := stats.RenderSummary(w, report.Progress); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderDomainTable(w, report.Averages, report.Progress.DomainScores); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderWeakDomains(w, report.Weak, report.Averages); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderTrends(w, report.Progress, report.TrendDomains, cfg.Last, cfg.Window, 0, 0, false); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newDomainsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "domains",
		Short: "List exam domains, weights, and bank sizes",
		Args:  cobra.NoArgs,
		RunE:  runDomainsCmd,
	}
}

func runDomainsCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := stats.RenderBankTable(cmd.OutOrStdout(), a.selector.DomainStats(), a.quizSize()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newWeakCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weak",
		Short: "List domains averaging below 70%",
		Args:  cobra.NoArgs,
		RunE:  runWeakCmd,
	}
}

func runWeakCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	p := a.tracker.Progress(ctx)
	averages := stats.DomainAverages(p, a.selector.Weights())
	if err := stats.RenderWeakDomains(cmd.OutOrStdout(), a.tracker.WeakDomains(ctx), averages); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newProgressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show or reset the stored study progress",
		Args:  cobra.NoArgs,
		RunE:  runProgressCmd,
	}
	cmd.Flags().BoolVar(&progressJSON, "json", false, "print the stored record as JSON")
	cmd.Flags().BoolVar(&progressReset, "reset", false, "delete all stored progress")
	return cmd
}

func runProgressCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()
	if progressReset {
		if err := a.storage.Delete(ctx, progress.StorageKey); err != nil {
			return fmt.Errorf("failed to reset progress: %w", err)
		}
		if _, err := fmt.Fprintln(out, "Progress reset."); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	p := a.tracker.Progress(ctx)
	if progressJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if err := stats.RenderSummary(out, p); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	saved, ok, err := a.storage.UpdatedAt(ctx, progress.StorageKey)
	if err != nil {
		a.log.Warn("read progress timestamp", zap.Error(err))
		return nil
	}
	if ok {
		if _, err := fmt.Fprintf(out, "Last saved: %s\n", saved.Local().Format("2006-01-02 15:04")); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# secprep configuration
# Uncomment a value to enable it. CLI flags override config values.

[quiz]
# questions = %d          # Questions per quiz
# domain = %q          # Domain name, or "all" for a weighted quiz
# timed = false           # End the quiz when the time limit runs out
# time-limit = %d         # Time limit in minutes

[stats]
# window = %d              # Moving average window for trends
# last = 0                # Limit trends to the last N scores (0 = all)

[storage]
# path = %q
# disabled = false        # Do not read or write study progress

[bank]
# path = ""               # Question bank JSON file (empty = built-in bank)
`,
		defaultQuestions,
		selector.AllDomains,
		defaultTimeLimit,
		defaultWindow,
		config.DefaultDBPath(),
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Questions <= 0 {
		return fmt.Errorf("--questions must be > 0")
	}
	if strings.TrimSpace(cfg.Domain) == "" {
		return fmt.Errorf("--domain must not be empty")
	}
	if cfg.Timed && cfg.TimeLimit <= 0 {
		return fmt.Errorf("--time-limit must be > 0")
	}
	return nil
}

func validateStatsConfig(cfg model.StatsConfig) error {
	if cfg.Window < 1 {
		return fmt.Errorf("--window must be >= 1")
	}
	if cfg.Last < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	return nil
}

// checkDomain rejects a domain with no questions in the bank.
func checkDomain(sel *selector.Selector, domain string) error {
	if domain == "" || domain == selector.AllDomains {
		return nil
	}
	if len(sel.QuestionsByDomain(domain)) > 0 {
		return nil
	}
	names := make([]string, 0, len(sel.Weights()))
	for _, st := range sel.DomainStats() {
		if st.Total > 0 {
			names = append(names, fmt.Sprintf("  %s", st.Domain))
		}
	}
	lines := []string{
		fmt.Sprintf("no questions for domain %q", domain),
		"Available domains:",
	}
	lines = append(lines, names...)
	lines = append(lines, "Run: secprep domains")
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}
