// Package generator builds session sentence sequences.
package generator

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/flashrecall/internal/model"
	"github.com/verte-zerg/flashrecall/internal/tokens"
)

// Generator draws sentences from a pool.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewWithSource returns a Generator drawing from src.
func NewWithSource(src rand.Source) *Generator {
	return &Generator{rnd: rand.New(src)}
}

// Generate draws count sentences uniformly with replacement. An empty pool
// yields an empty sequence.
func (g *Generator) Generate(pool []model.Sentence, count int) []model.Sentence {
	if count <= 0 || len(pool) == 0 {
		return []model.Sentence{}
	}
	result := make([]model.Sentence, 0, count)
	for i := 0; i < count; i++ {
		result = append(result, clone(pool[g.rnd.Intn(len(pool))]))
	}
	return result
}

// GenerateWeighted draws sentences with a bias toward ones containing weak
// words. Each weak token in a sentence adds factor to its weight.
func (g *Generator) GenerateWeighted(pool []model.Sentence, count int, weakSet map[string]struct{}, factor float64) []model.Sentence {
	if count <= 0 || len(pool) == 0 {
		return []model.Sentence{}
	}
	weights := make([]float64, len(pool))
	total := 0.0
	for i, sentence := range pool {
		weakCount := 0
		for _, tok := range tokens.FromWords(sentence) {
			if _, ok := weakSet[tok]; ok {
				weakCount++
			}
		}
		w := 1.0 + float64(weakCount)*factor
		weights[i] = w
		total += w
	}

	result := make([]model.Sentence, 0, count)
	for i := 0; i < count; i++ {
		r := g.rnd.Float64() * total
		acc := 0.0
		idx := len(pool) - 1
		for j, w := range weights {
			acc += w
			if r <= acc {
				idx = j
				break
			}
		}
		result = append(result, clone(pool[idx]))
	}
	return result
}

func clone(s model.Sentence) model.Sentence {
	out := make(model.Sentence, len(s))
	copy(out, s)
	return out
}
