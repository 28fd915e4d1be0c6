package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "blue hat", "blue hat", 1},
		{"case and padding", " Blue Hat ", "blue hat", 1},
		{"both empty", "", "", 0},
		{"left empty", "", "blue hat", 0},
		{"right empty", "blue hat", "", 0},
		{"whitespace only", "   ", "   ", 0},
		{"disjoint", "has laptop", "no description", 0},
		{"one shared of three", "Red Umbrella", "Green Umbrella", 1.0 / 3},
		{"duplicates collapse", "blue blue hat", "blue hat hat", 1},
		{"word order ignored", "hat blue", "blue hat", 1},
		{"inner whitespace", "blue   hat", "blue\that", 1},
		{"no substring credit", "backpack", "pack", 0},
		{"half", "black leather wallet", "black wallet", 2.0 / 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	inputs := []string{"", "keys", "car keys", "Red Umbrella", "green umbrella with handle", "  KEYS  "}
	for _, a := range inputs {
		for _, b := range inputs {
			assert.Equal(t, Similarity(a, b), Similarity(b, a), "Similarity(%q, %q) not symmetric", a, b)
		}
	}
}

func TestSimilaritySelfIsOne(t *testing.T) {
	for _, s := range []string{"x", "Blue Backpack", "a b c d e", " mixed CASE words "} {
		assert.Equal(t, 1.0, Similarity(s, s), "Similarity(%q, %q)", s, s)
	}
}

func TestSimilarityRange(t *testing.T) {
	inputs := []string{"", "a", "a b", "b c", "a b c d", "D C B A"}
	for _, a := range inputs {
		for _, b := range inputs {
			got := Similarity(a, b)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		}
	}
}
