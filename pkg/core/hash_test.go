package core

import "testing"

func TestJenkinsHash_KnownValues(t *testing.T) {
	// Distinct inputs must map to distinct, stable outputs
	seen := make(map[uint32]uint32)
	for i := uint32(0); i < 1024; i++ {
		h := JenkinsHash(i)
		if h != JenkinsHash(i) {
			t.Fatalf("Hash of %d is not stable", i)
		}
		if prev, ok := seen[h]; ok {
			t.Fatalf("Collision between %d and %d", prev, i)
		}
		seen[h] = i
	}
}

func TestPackPixel(t *testing.T) {
	if PackPixel(3, 5) == PackPixel(5, 3) {
		t.Error("Expected transposed pixels to pack differently")
	}
	if got := PackPixel(1, 0); got != 1 {
		t.Errorf("PackPixel(1, 0) incorrect: got %d, expected 1", got)
	}
}
