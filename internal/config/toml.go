// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/flashrecall/internal/model"
	"github.com/verte-zerg/flashrecall/internal/recall"
)

// Bounds applied to numeric practice settings.
const (
	MinSentences  = 1
	MinIntervalMs = 50
	MinLastN      = 1
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
}

// PracticeConfig maps practice-related settings. Nil fields were not set in
// the file.
type PracticeConfig struct {
	Difficulty  *string  `toml:"difficulty"`
	Sentences   *int     `toml:"sentences"`
	IntervalMs  *int     `toml:"interval-ms"`
	Granularity *string  `toml:"granularity"`
	LastN       *int     `toml:"last-n"`
	Strategy    *string  `toml:"strategy"`
	Pool        *string  `toml:"pool"`
	Speech      *bool    `toml:"speech"`
	SpeechCmd   *string  `toml:"speech-cmd"`
	FocusWeak   *bool    `toml:"focus-weak"`
	WeakTop     *int     `toml:"weak-top"`
	WeakFactor  *float64 `toml:"weak-factor"`
	WeakWindow  *int     `toml:"weak-window"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// ApplyPractice overlays file values onto cfg for every setting whose flag was
// not explicitly set. flagSet reports whether the named CLI flag was changed.
func ApplyPractice(cfg model.Config, file PracticeConfig, flagSet func(name string) bool) (model.Config, error) {
	if flagSet == nil {
		flagSet = func(string) bool { return false }
	}
	if file.Difficulty != nil && !flagSet("difficulty") {
		d, err := model.ParseDifficulty(*file.Difficulty)
		if err != nil {
			return cfg, fmt.Errorf("invalid practice.difficulty: %w", err)
		}
		cfg.Difficulty = d
	}
	if file.Sentences != nil && !flagSet("sentences") {
		cfg.Sentences = *file.Sentences
	}
	if file.IntervalMs != nil && !flagSet("interval-ms") {
		cfg.Interval = time.Duration(*file.IntervalMs) * time.Millisecond
	}
	if file.Granularity != nil && !flagSet("granularity") {
		g, err := model.ParseGranularity(*file.Granularity)
		if err != nil {
			return cfg, fmt.Errorf("invalid practice.granularity: %w", err)
		}
		cfg.Granularity = g
	}
	if file.LastN != nil && !flagSet("last-n") {
		cfg.LastN = *file.LastN
	}
	if file.Strategy != nil && !flagSet("strategy") {
		if _, err := recall.ByName(*file.Strategy); err != nil {
			return cfg, fmt.Errorf("invalid practice.strategy: %w", err)
		}
		cfg.Strategy = *file.Strategy
	}
	if file.Pool != nil && !flagSet("pool") {
		cfg.PoolPath = *file.Pool
	}
	if file.Speech != nil && !flagSet("speech") {
		cfg.Speech = *file.Speech
	}
	if file.SpeechCmd != nil && !flagSet("speech-cmd") {
		cfg.SpeechCmd = *file.SpeechCmd
	}
	if file.FocusWeak != nil && !flagSet("focus-weak") {
		cfg.FocusWeak = *file.FocusWeak
	}
	if file.WeakTop != nil && !flagSet("weak-top") {
		cfg.WeakTop = *file.WeakTop
	}
	if file.WeakFactor != nil && !flagSet("weak-factor") {
		cfg.WeakFactor = *file.WeakFactor
	}
	if file.WeakWindow != nil && !flagSet("weak-window") {
		cfg.WeakWindow = *file.WeakWindow
	}
	return cfg, nil
}

// Clamp pulls numeric settings back into range and returns a notice per
// adjusted value.
func Clamp(cfg model.Config) (model.Config, []string) {
	var notices []string
	if cfg.Sentences < MinSentences {
		notices = append(notices, fmt.Sprintf("sentences %d raised to %d", cfg.Sentences, MinSentences))
		cfg.Sentences = MinSentences
	}
	if minInterval := MinIntervalMs * time.Millisecond; cfg.Interval < minInterval {
		notices = append(notices, fmt.Sprintf("interval %s raised to %s", cfg.Interval, minInterval))
		cfg.Interval = minInterval
	}
	if cfg.LastN < MinLastN {
		notices = append(notices, fmt.Sprintf("last-n %d raised to %d", cfg.LastN, MinLastN))
		cfg.LastN = MinLastN
	}
	if cfg.WeakFactor < 1 {
		cfg.WeakFactor = 1
	}
	return cfg, notices
}
