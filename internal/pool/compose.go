package pool

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/verte-zerg/flashrecall/internal/model"
)

var (
	names = []string{"Alice", "Bob", "Carol", "David", "Emma", "Frank", "Grace", "Henry", "Ivy", "Jack",
		"Kate", "Liam", "Mona", "Noah", "Olivia", "Paul", "Quinn", "Rose", "Sam", "Tina",
		"Uma", "Victor", "Wendy", "Xavier", "Yara", "Zane"}
	verbs = []string{"runs", "jumps", "walks", "writes", "reads", "sings", "plays", "builds", "drives", "eats",
		"drinks", "opens", "closes", "finds", "carries", "throws", "catches", "climbs"}
	objects = []string{"book", "chair", "table", "car", "house", "dog", "cat", "ball", "song", "story",
		"letter", "window", "flower", "tree", "door", "apple", "cake", "river"}
	places = []string{"in the park", "at school", "on the street", "near the river", "in the room",
		"at the market", "on the hill", "under the tree", "at the station"}
	adjectives = []string{"big", "small", "red", "blue", "happy", "sad", "fast", "slow", "quiet", "loud",
		"bright", "dark", "new", "old", "warm", "cold"}
)

// DefaultCounts is the number of sentences composed per band by default.
var DefaultCounts = map[model.Difficulty]int{
	model.DifficultySimple: 150,
	model.DifficultyMedium: 150,
	model.DifficultyHard:   100,
}

// Compose builds a synthetic pool from fixed word lists.
func Compose(rnd *rand.Rand, counts map[model.Difficulty]int) Pool {
	p := Pool{}
	for _, d := range model.Difficulties {
		n := counts[d]
		band := make([]model.Sentence, 0, max(n, 0))
		for i := 0; i < n; i++ {
			band = append(band, strings.Fields(composeSentence(rnd, d)))
		}
		p[d] = band
	}
	return p
}

func composeSentence(rnd *rand.Rand, d model.Difficulty) string {
	switch d {
	case model.DifficultyMedium:
		return fmt.Sprintf("%s %s a %s %s %s.", pick(rnd, names), pick(rnd, verbs), pick(rnd, adjectives), pick(rnd, objects), pick(rnd, places))
	case model.DifficultyHard:
		return fmt.Sprintf("Although %s %s a %s, %s decided to %s %s because it was %s.",
			pick(rnd, names), pick(rnd, verbs), pick(rnd, objects), pick(rnd, names), pick(rnd, verbs), pick(rnd, places), pick(rnd, adjectives))
	default:
		return fmt.Sprintf("%s %s a %s.", pick(rnd, names), pick(rnd, verbs), pick(rnd, objects))
	}
}

func pick(rnd *rand.Rand, list []string) string {
	return list[rnd.Intn(len(list))]
}
