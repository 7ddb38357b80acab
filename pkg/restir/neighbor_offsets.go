package restir

import "math"

const neighborOffsetCount = 8192

// neighborOffsets returns a low discrepancy set of points in the unit disk
// from the R2 sequence, quantized to [-127, 127]
func neighborOffsets() [][2]int8 {
	// Plastic constant
	const g = 1.32471795724474602596
	const a1 = 1 / g
	const a2 = 1 / (g * g)

	offsets := make([][2]int8, 0, neighborOffsetCount)
	for n := 0; len(offsets) < neighborOffsetCount; n++ {
		u := math.Mod(0.5+a1*float64(n), 1)
		v := math.Mod(0.5+a2*float64(n), 1)
		x := 2*u - 1
		y := 2*v - 1
		if x*x+y*y > 1 {
			continue
		}
		offsets = append(offsets, [2]int8{int8(math.Round(x * 127)), int8(math.Round(y * 127))})
	}
	return offsets
}
