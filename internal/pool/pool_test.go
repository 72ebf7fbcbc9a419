package pool

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/flashrecall/internal/model"
)

func TestToWordSequence(t *testing.T) {
	s, ok := ToWordSequence("Alice  runs a\tbook.")
	require.True(t, ok)
	assert.Equal(t, model.Sentence{"Alice", "runs", "a", "book."}, s)

	s, ok = ToWordSequence([]any{"Bob", "reads", "a", "song."})
	require.True(t, ok)
	assert.Equal(t, model.Sentence{"Bob", "reads", "a", "song."}, s)

	for _, bad := range []any{nil, 42, "   ", []any{}, []any{"ok", 3}, map[string]any{"a": "b"}} {
		_, ok := ToWordSequence(bad)
		assert.False(t, ok, "%#v", bad)
	}
}

func TestParseJSONSkipsMalformedEntries(t *testing.T) {
	data := []byte(`{
		"simple": ["Alice runs a book.", ["Bob", "reads"], 7, "", null],
		"medium": "not a list",
		"hard": [],
		"bonus": ["ignored band"]
	}`)
	p, err := ParseJSON(data)
	require.NoError(t, err)
	assert.Len(t, p.Sentences(model.DifficultySimple), 2)
	assert.Empty(t, p.Sentences(model.DifficultyMedium))
	assert.Empty(t, p.Sentences(model.DifficultyHard))
	assert.Equal(t, 2, p.Size())
}

func TestParseJSONRejectsNonObject(t *testing.T) {
	_, err := ParseJSON([]byte(`["a", "b"]`))
	assert.Error(t, err)
}

func TestParseYAML(t *testing.T) {
	data := []byte("simple:\n  - Alice runs a book.\n  - [Bob, reads, a, song.]\nhard:\n  - 12\n")
	p, err := ParseYAML(data)
	require.NoError(t, err)
	require.Len(t, p.Sentences(model.DifficultySimple), 2)
	assert.Equal(t, model.Sentence{"Bob", "reads", "a", "song."}, p.Sentences(model.DifficultySimple)[1])
	assert.Empty(t, p.Sentences(model.DifficultyHard))
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "sentences.json")
	p := Compose(rand.New(rand.NewSource(3)), map[model.Difficulty]int{
		model.DifficultySimple: 4,
		model.DifficultyMedium: 2,
		model.DifficultyHard:   1,
	})
	require.NoError(t, Save(path, p))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, p, loaded)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestSaveYAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sentences.yaml")
	p := Compose(rand.New(rand.NewSource(5)), map[model.Difficulty]int{
		model.DifficultySimple: 2,
		model.DifficultyMedium: 1,
		model.DifficultyHard:   1,
	})
	require.NoError(t, Save(path, p))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "simple:")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, p, loaded)
}

func TestLoadYAMLByExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.yml")
	require.NoError(t, os.WriteFile(path, []byte("medium:\n  - Emma sings a loud song at school.\n"), 0o644))
	p, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, p.Sentences(model.DifficultyMedium), 1)
}

func TestComposeShapes(t *testing.T) {
	p := Compose(rand.New(rand.NewSource(1)), DefaultCounts)
	assert.Len(t, p.Sentences(model.DifficultySimple), 150)
	assert.Len(t, p.Sentences(model.DifficultyMedium), 150)
	assert.Len(t, p.Sentences(model.DifficultyHard), 100)
	for _, s := range p.Sentences(model.DifficultySimple) {
		assert.Len(t, s, 4)
		assert.Equal(t, "a", s[2])
	}
	for _, s := range p.Sentences(model.DifficultyHard) {
		assert.Equal(t, "Although", s[0])
	}
}

func TestSentencesOnNilPool(t *testing.T) {
	var p Pool
	assert.Empty(t, p.Sentences(model.DifficultySimple))
}
