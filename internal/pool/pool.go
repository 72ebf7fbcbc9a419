// Package pool loads and writes difficulty-banded sentence pools.
package pool

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/flashrecall/internal/model"
)

// Pool maps a difficulty band to its sentences.
type Pool map[model.Difficulty][]model.Sentence

// Sentences returns the band for d. Unknown or missing bands are empty.
func (p Pool) Sentences(d model.Difficulty) []model.Sentence {
	if p == nil {
		return nil
	}
	return p[d]
}

// Size returns the total number of sentences across bands.
func (p Pool) Size() int {
	total := 0
	for _, band := range p {
		total += len(band)
	}
	return total
}

// Load reads a pool from a JSON or YAML file. The format follows the file
// extension; anything that is not .yaml or .yml is read as JSON.
func Load(path string) (Pool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// ParseJSON decodes a pool document.
func ParseJSON(data []byte) (Pool, error) {
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode sentence pool: %w", err)
	}
	return fromRaw(raw), nil
}

// ParseYAML decodes a pool document written as YAML.
func ParseYAML(data []byte) (Pool, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode sentence pool: %w", err)
	}
	return fromRaw(raw), nil
}

func fromRaw(raw map[string]any) Pool {
	p := Pool{}
	for key, value := range raw {
		d, err := model.ParseDifficulty(key)
		if err != nil {
			continue
		}
		entries, ok := value.([]any)
		if !ok {
			continue
		}
		band := make([]model.Sentence, 0, len(entries))
		for _, entry := range entries {
			if sentence, ok := ToWordSequence(entry); ok {
				band = append(band, sentence)
			}
		}
		p[d] = band
	}
	return p
}

// ToWordSequence converts a pool entry into words. Entries are either a
// space-delimited string or a list of strings; anything else, or an entry
// without words, is rejected.
func ToWordSequence(entry any) (model.Sentence, bool) {
	switch v := entry.(type) {
	case string:
		words := strings.Fields(v)
		return words, len(words) > 0
	case []string:
		return wordsFromList(v)
	case []any:
		list := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			list = append(list, s)
		}
		return wordsFromList(list)
	default:
		return nil, false
	}
}

func wordsFromList(list []string) (model.Sentence, bool) {
	out := make(model.Sentence, 0, len(list))
	for _, item := range list {
		out = append(out, strings.Fields(item)...)
	}
	return out, len(out) > 0
}

type document struct {
	Simple []string `json:"simple" yaml:"simple"`
	Medium []string `json:"medium" yaml:"medium"`
	Hard   []string `json:"hard" yaml:"hard"`
}

// Save writes p, replacing path atomically. Like Load, the format follows the
// extension.
func Save(path string, p Pool) error {
	doc := document{
		Simple: texts(p.Sentences(model.DifficultySimple)),
		Medium: texts(p.Sentences(model.DifficultyMedium)),
		Hard:   texts(p.Sentences(model.DifficultyHard)),
	}
	data, err := encode(path, doc)
	if err != nil {
		return fmt.Errorf("failed to encode sentence pool: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create pool dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "pool-*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("failed to create temp pool: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write pool: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close pool: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write pool: %w", err)
	}
	return nil
}

func encode(path string, doc document) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Marshal(doc)
	default:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
}

func texts(sentences []model.Sentence) []string {
	out := make([]string, 0, len(sentences))
	for _, s := range sentences {
		out = append(out, s.Text())
	}
	return out
}
