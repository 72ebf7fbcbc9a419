package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/flashrecall/internal/model"
	"github.com/verte-zerg/flashrecall/internal/recall"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Practice.Difficulty)
}

func TestLoadConfigDecodesPractice(t *testing.T) {
	path := writeConfig(t, `
[practice]
difficulty = "hard"
sentences = 5
interval-ms = 800
granularity = "word"
last-n = 2
strategy = "containment"
speech = true
speech-cmd = "espeak"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Practice.Sentences)
	assert.Equal(t, 5, *cfg.Practice.Sentences)
	assert.Equal(t, "word", *cfg.Practice.Granularity)
	assert.Equal(t, "espeak", *cfg.Practice.SpeechCmd)
	assert.Nil(t, cfg.Practice.Pool)
}

func TestLoadConfigRejectsUnknownKey(t *testing.T) {
	path := writeConfig(t, "[practice]\nwords = 10\n")
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "practice.words")
}

func TestApplyPracticeRespectsFlags(t *testing.T) {
	base := model.Config{Difficulty: model.DifficultySimple, Sentences: 3, Interval: time.Second}
	sentences, difficulty := 7, "medium"
	file := PracticeConfig{Sentences: &sentences, Difficulty: &difficulty}

	cfg, err := ApplyPractice(base, file, func(name string) bool { return name == "sentences" })
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Sentences)
	assert.Equal(t, model.DifficultyMedium, cfg.Difficulty)
}

func TestApplyPracticeRejectsBadEnums(t *testing.T) {
	bad := "loud"
	_, err := ApplyPractice(model.Config{}, PracticeConfig{Strategy: &bad}, nil)
	assert.True(t, errors.Is(err, recall.ErrUnknownStrategy))

	_, err = ApplyPractice(model.Config{}, PracticeConfig{Granularity: &bad}, nil)
	assert.True(t, errors.Is(err, model.ErrUnknownGranularity))

	_, err = ApplyPractice(model.Config{}, PracticeConfig{Difficulty: &bad}, nil)
	assert.True(t, errors.Is(err, model.ErrUnknownDifficulty))
}

func TestClamp(t *testing.T) {
	cfg, notices := Clamp(model.Config{Sentences: 0, Interval: 10 * time.Millisecond, LastN: -2})
	assert.Equal(t, 1, cfg.Sentences)
	assert.Equal(t, 50*time.Millisecond, cfg.Interval)
	assert.Equal(t, 1, cfg.LastN)
	assert.Len(t, notices, 3)

	cfg, notices = Clamp(model.Config{Sentences: 4, Interval: time.Second, LastN: 2, WeakFactor: 3})
	assert.Empty(t, notices)
	assert.Equal(t, 4, cfg.Sentences)
	assert.Equal(t, 3.0, cfg.WeakFactor)
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	assert.Equal(t, "/cfg/flashrecall/config.toml", DefaultConfigPath())
	assert.Equal(t, "/cfg/flashrecall/sentences.json", DefaultPoolPath())
	assert.Equal(t, "/data/flashrecall/flashrecall.db", DefaultDBPath())
}
