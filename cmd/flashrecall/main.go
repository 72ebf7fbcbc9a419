// Package main provides the CLI entrypoint for flashrecall.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/flashrecall/internal/config"
	"github.com/verte-zerg/flashrecall/internal/generator"
	"github.com/verte-zerg/flashrecall/internal/model"
	"github.com/verte-zerg/flashrecall/internal/notes"
	"github.com/verte-zerg/flashrecall/internal/pool"
	"github.com/verte-zerg/flashrecall/internal/recall"
	"github.com/verte-zerg/flashrecall/internal/speech"
	"github.com/verte-zerg/flashrecall/internal/stats"
	"github.com/verte-zerg/flashrecall/internal/store"
	"github.com/verte-zerg/flashrecall/internal/tui"
)

const (
	defaultDifficulty  = "simple"
	defaultSentences   = 5
	defaultIntervalMs  = 1000
	defaultGranularity = "sentence"
	defaultLastN       = 1
	defaultStrategy    = recall.NamePositional
	defaultWeakTop     = 8
	defaultWeakFactor  = 2.0
	defaultWeakWindow  = 20
	defaultCurveWindow = 20
)

var (
	practiceDifficulty  string
	practiceSentences   int
	practiceIntervalMs  int
	practiceGranularity string
	practiceLastN       int
	practiceStrategy    string
	practicePool        string
	practiceSpeech      bool
	practiceSpeechCmd   string
	practiceFocusWeak   bool
	practiceWeakTop     int
	practiceWeakFactor  float64
	practiceWeakWindow  int
	practicePlain       bool

	dbPath string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "flashrecall",
		Short:         "Terminal sentence memory trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default: XDG data dir)")

	flags := rootCmd.Flags()
	flags.StringVar(&practiceDifficulty, "difficulty", defaultDifficulty, "sentence band: simple, medium or hard")
	flags.IntVar(&practiceSentences, "sentences", defaultSentences, "sentences per session")
	flags.IntVar(&practiceIntervalMs, "interval-ms", defaultIntervalMs, "delay between reveals in milliseconds")
	flags.StringVar(&practiceGranularity, "granularity", defaultGranularity, "reveal unit: sentence or word")
	flags.IntVar(&practiceLastN, "last-n", defaultLastN, "sentences scored by partial recall")
	flags.StringVar(&practiceStrategy, "strategy", defaultStrategy, "scoring strategy: positional or containment")
	flags.StringVar(&practicePool, "pool", "", "sentence pool file, JSON or YAML (default: XDG config dir)")
	flags.BoolVar(&practiceSpeech, "speech", false, "read reveals aloud")
	flags.StringVar(&practiceSpeechCmd, "speech-cmd", speech.DefaultCommand, "text-to-speech command")
	flags.BoolVar(&practiceFocusWeak, "focus-weak", false, "bias practice toward often missed words")
	flags.IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak words to focus on")
	flags.Float64Var(&practiceWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak words")
	flags.IntVar(&practiceWeakWindow, "weak-window", defaultWeakWindow, "number of recent attempts to compute weak words")
	flags.BoolVar(&practicePlain, "plain", false, "run one drill on stdin/stdout without the TUI")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newScoreCmd())
	rootCmd.AddCommand(newPoolCmd())
	rootCmd.AddCommand(newNotesCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolvePracticeConfig(cmd)
	if err != nil {
		return err
	}
	strategy, err := recall.ByName(cfg.Strategy)
	if err != nil {
		return err
	}

	p, err := loadPool(cfg.PoolPath)
	if err != nil {
		return err
	}
	sentences := p.Sentences(cfg.Difficulty)
	if len(sentences) == 0 {
		logErrf("sentence pool has no %s sentences; sessions will be empty\n", cfg.Difficulty)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	book, err := loadBook(ctx, st)
	if err != nil {
		return err
	}

	var speaker *speech.Speaker
	if cfg.Speech {
		speaker, err = speech.New(cfg.SpeechCmd)
		if err != nil {
			logErrf("speech disabled: %v\n", err)
		}
	}

	weakSet := map[string]struct{}{}
	if cfg.FocusWeak {
		aggs, err := st.GetWeakWords(ctx, cfg.WeakWindow, string(cfg.Difficulty))
		if err != nil {
			logErrf("failed to load weak words: %v\n", err)
		} else {
			weakSet = stats.SelectWeakWords(aggs, cfg.WeakTop)
			if len(weakSet) == 0 {
				logErrln("no stats available for weak-word focus yet; using normal generator")
			}
		}
	}

	deps := tui.Deps{
		Recorder: st,
		Notes:    st,
		Gen:      generator.New(),
		Pool:     sentences,
		Book:     book,
		Speaker:  speaker,
		Strategy: strategy,
		WeakSet:  weakSet,
	}
	if practicePlain {
		return runPlainDrill(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), cfg, deps)
	}

	program := tea.NewProgram(tui.NewModel(cfg, deps), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// resolvePracticeConfig merges flags with the config file and clamps numeric
// values.
func resolvePracticeConfig(cmd *cobra.Command) (model.Config, error) {
	difficulty, err := model.ParseDifficulty(practiceDifficulty)
	if err != nil {
		return model.Config{}, fmt.Errorf("invalid --difficulty: %w", err)
	}
	granularity, err := model.ParseGranularity(practiceGranularity)
	if err != nil {
		return model.Config{}, fmt.Errorf("invalid --granularity: %w", err)
	}
	if _, err := recall.ByName(practiceStrategy); err != nil {
		return model.Config{}, fmt.Errorf("invalid --strategy: %w", err)
	}
	cfg := model.Config{
		Difficulty:  difficulty,
		Sentences:   practiceSentences,
		Interval:    time.Duration(practiceIntervalMs) * time.Millisecond,
		Granularity: granularity,
		LastN:       practiceLastN,
		Strategy:    practiceStrategy,
		PoolPath:    practicePool,
		Speech:      practiceSpeech,
		SpeechCmd:   practiceSpeechCmd,
		FocusWeak:   practiceFocusWeak,
		WeakTop:     practiceWeakTop,
		WeakFactor:  practiceWeakFactor,
		WeakWindow:  practiceWeakWindow,
	}

	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	cfg, err = config.ApplyPractice(cfg, fileCfg.Practice, cmd.Flags().Changed)
	if err != nil {
		return model.Config{}, err
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	cfg, notices := config.Clamp(cfg)
	for _, notice := range notices {
		logErrln(notice)
	}
	if cfg.PoolPath == "" {
		cfg.PoolPath = config.DefaultPoolPath()
	}
	return cfg, nil
}

func validateConfig(cfg model.Config) error {
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return nil
}

// loadPool reads the pool at path. A missing file falls back to a composed
// pool so a fresh install can practice right away.
func loadPool(path string) (pool.Pool, error) {
	p, err := pool.Load(path)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load sentence pool %s: %w", path, err)
	}
	logErrf("no sentence pool at %s; using a generated one (save it with: flashrecall pool generate)\n", path)
	return pool.Compose(rand.New(rand.NewSource(time.Now().UnixNano())), pool.DefaultCounts), nil
}

func openStore() (*store.Store, error) {
	path := dbPath
	if path == "" {
		path = config.DefaultDBPath()
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func loadBook(ctx context.Context, st *store.Store) (*notes.Book, error) {
	categories, err := st.LoadNotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}
	return notes.FromCategories(categories), nil
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

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# flashrecall configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# difficulty = %q      # simple, medium or hard
# sentences = %d              # Sentences per session (min 1)
# interval-ms = %d         # Delay between reveals (min %d)
# granularity = %q   # sentence or word
# last-n = %d                 # Sentences scored by partial recall (min 1)
# strategy = %q    # positional or containment
# pool = "/path/to/sentences.json"
# speech = false
# speech-cmd = %q
# focus-weak = false         # Bias practice toward often missed words
# weak-top = %d               # Number of weak words to focus on
# weak-factor = %.1f          # Weight factor for weak words
# weak-window = %d           # Number of recent attempts to compute weak words
`,
		defaultDifficulty,
		defaultSentences,
		defaultIntervalMs,
		config.MinIntervalMs,
		defaultGranularity,
		defaultLastN,
		defaultStrategy,
		speech.DefaultCommand,
		defaultWeakTop,
		defaultWeakFactor,
		defaultWeakWindow,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
