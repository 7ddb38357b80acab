package core

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// ErrEmptyDistribution is returned when an alias table is built from no usable weight
var ErrEmptyDistribution = errors.New("core: alias table needs at least one positive weight")

// AliasTable samples an index proportionally to a fixed set of weights in O(1)
// using Vose's alias method.
type AliasTable struct {
	threshold []float64 // Probability of keeping the bucket's own index
	alias     []int     // Index used when the bucket is rejected
	weights   []float64 // Original weights for PDF queries
	total     float64
}

// NewAliasTable builds an alias table from non-negative, finite weights.
// Weights are normalized internally; they need not sum to one.
func NewAliasTable(weights []float64) (*AliasTable, error) {
	total := 0.0
	for i, w := range weights {
		if w < 0 || !IsFinite(w) {
			return nil, errors.Errorf("core: alias table weight %d is invalid: %v", i, w)
		}
		total += w
	}
	if len(weights) == 0 || total <= 0 {
		return nil, ErrEmptyDistribution
	}

	n := len(weights)
	at := &AliasTable{
		threshold: make([]float64, n),
		alias:     make([]int, n),
		weights:   append([]float64(nil), weights...),
		total:     total,
	}

	// Scaled probabilities average to 1; split buckets into under- and over-full
	scaled := make([]float64, n)
	small := make([]int, 0, n)
	large := make([]int, 0, n)
	for i, w := range weights {
		scaled[i] = w * float64(n) / total
		if scaled[i] < 1 {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}

	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]

		at.threshold[s] = scaled[s]
		at.alias[s] = l

		scaled[l] = (scaled[l] + scaled[s]) - 1
		if scaled[l] < 1 {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}

	// Leftovers are full buckets up to rounding error
	for _, i := range large {
		at.threshold[i] = 1
		at.alias[i] = i
	}
	for _, i := range small {
		at.threshold[i] = 1
		at.alias[i] = i
	}

	return at, nil
}

// Sample maps a uniform u in [0, 1) to an index
func (at *AliasTable) Sample(u float64) int {
	n := len(at.threshold)
	scaled := clamp01(u) * float64(n)
	i := min(int(scaled), n-1)
	frac := scaled - float64(i)
	if frac < at.threshold[i] {
		return i
	}
	return at.alias[i]
}

// PDF returns the probability of drawing the given index
func (at *AliasTable) PDF(index int) float64 {
	if index < 0 || index >= len(at.weights) {
		return 0
	}
	return at.weights[index] / at.total
}

// Count returns the number of entries in the table
func (at *AliasTable) Count() int {
	return len(at.weights)
}

// Weight returns the unnormalized weight the table was built with
func (at *AliasTable) Weight(index int) float64 {
	if index < 0 || index >= len(at.weights) {
		return 0
	}
	return at.weights[index]
}

// String returns a short description for debugging
func (at *AliasTable) String() string {
	return fmt.Sprintf("AliasTable{%d entries, total weight %.4g}", len(at.weights), at.total)
}

// clamp01 keeps floating point drift from pushing u outside [0, 1)
func clamp01(u float64) float64 {
	return math.Min(math.Max(u, 0), math.Nextafter(1, 0))
}
