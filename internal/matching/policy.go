package matching

import (
	"errors"
	"fmt"
	"math"
)

// Default scoring policy. The weights intentionally sum to 0.9: the last
// 0.1 is held back for a date term that is not scored.
const (
	DefaultNameWeight        = 0.5
	DefaultLocationWeight    = 0.2
	DefaultDescriptionWeight = 0.2
	DefaultThreshold         = 0.35
)

// ErrInvalidPolicy is returned by Policy.Validate.
var ErrInvalidPolicy = errors.New("invalid match policy")

// Policy holds the per-field weights and the minimum total score a pair
// needs to be reported as a match.
type Policy struct {
	NameWeight        float64 `yaml:"name_weight" json:"name_weight"`
	LocationWeight    float64 `yaml:"location_weight" json:"location_weight"`
	DescriptionWeight float64 `yaml:"description_weight" json:"description_weight"`
	Threshold         float64 `yaml:"threshold" json:"threshold"`
}

// DefaultPolicy returns the stock weights and threshold.
func DefaultPolicy() Policy {
	return Policy{
		NameWeight:        DefaultNameWeight,
		LocationWeight:    DefaultLocationWeight,
		DescriptionWeight: DefaultDescriptionWeight,
		Threshold:         DefaultThreshold,
	}
}

// MaxScore is the highest total a pair can reach under p.
func (p Policy) MaxScore() float64 {
	return p.NameWeight + p.LocationWeight + p.DescriptionWeight
}

// Validate rejects negative or non-finite weights and thresholds outside
// [0, 1], including NaN.
func (p Policy) Validate() error {
	weights := []struct {
		name  string
		value float64
	}{
		{"name_weight", p.NameWeight},
		{"location_weight", p.LocationWeight},
		{"description_weight", p.DescriptionWeight},
	}
	for _, w := range weights {
		if !finite(w.value) || w.value < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number, got %v", ErrInvalidPolicy, w.name, w.value)
		}
	}
	if !(p.Threshold >= 0 && p.Threshold <= 1) {
		return fmt.Errorf("%w: threshold must be within [0, 1], got %v", ErrInvalidPolicy, p.Threshold)
	}
	if total := p.MaxScore(); !finite(total) || total == 0 {
		return fmt.Errorf("%w: weights must sum to a positive number, got %v", ErrInvalidPolicy, total)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
