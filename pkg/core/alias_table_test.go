package core

import (
	"math"
	"testing"
)

func TestAliasTable_MatchesWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
	}{
		{"Uniform", []float64{1, 1, 1, 1}},
		{"Skewed", []float64{10, 1, 0.5, 0.1}},
		{"Zero entries", []float64{0, 3, 0, 1}},
		{"Single", []float64{2.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewAliasTable(tt.weights)
			if err != nil {
				t.Fatalf("NewAliasTable failed: %v", err)
			}

			const draws = 200000
			counts := make([]int, len(tt.weights))
			sampler := NewSeededSampler(42)
			for i := 0; i < draws; i++ {
				counts[table.Sample(sampler.Get1D())]++
			}

			total := 0.0
			for _, w := range tt.weights {
				total += w
			}
			for i, w := range tt.weights {
				expected := w / total
				if math.Abs(table.PDF(i)-expected) > 1e-12 {
					t.Errorf("PDF(%d) incorrect: got %f, expected %f", i, table.PDF(i), expected)
				}
				got := float64(counts[i]) / draws
				if math.Abs(got-expected) > 0.01 {
					t.Errorf("Frequency of %d incorrect: got %f, expected %f", i, got, expected)
				}
				if w == 0 && counts[i] != 0 {
					t.Errorf("Zero weight entry %d drawn %d times", i, counts[i])
				}
			}
		})
	}
}

func TestAliasTable_Errors(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
	}{
		{"Empty", nil},
		{"All zero", []float64{0, 0}},
		{"Negative", []float64{1, -1}},
		{"NaN", []float64{1, math.NaN()}},
		{"Inf", []float64{math.Inf(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewAliasTable(tt.weights); err == nil {
				t.Errorf("Expected error for weights %v", tt.weights)
			}
		})
	}
}

func TestAliasTable_SampleEdges(t *testing.T) {
	table, err := NewAliasTable([]float64{1, 2, 3})
	if err != nil {
		t.Fatalf("NewAliasTable failed: %v", err)
	}
	for _, u := range []float64{0, 0.999999999, 1, -0.5, 1.5} {
		i := table.Sample(u)
		if i < 0 || i >= table.Count() {
			t.Errorf("Sample(%f) returned out of range index %d", u, i)
		}
	}
}
