package core

import (
	"math"

	"pgregory.net/rand"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
}

// RandomSampler wraps a seeded pgregory.net/rand generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler whose stream is a pure function of the seeds.
// Pixel stages seed it with (pixel, frame, pass, stage) so a frame is reproducible.
// rand.New accepts at most three seed words; longer sequences are folded into
// the third with a splitmix64 step per extra word.
func NewSeededSampler(seeds ...uint64) *RandomSampler {
	if len(seeds) > 3 {
		folded := seeds[2]
		for _, s := range seeds[3:] {
			folded = splitmix64(folded ^ splitmix64(s))
		}
		seeds = []uint64{seeds[0], seeds[1], folded}
	}
	return &RandomSampler{random: rand.New(seeds...)}
}

// splitmix64 is the SplitMix64 finalizer
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// Get3D returns three random float64 values in [0, 1)
func (r *RandomSampler) Get3D() Vec3 {
	return NewVec3(r.random.Float64(), r.random.Float64(), r.random.Float64())
}

// Uint32 returns a uniformly distributed 32-bit value
func (r *RandomSampler) Uint32() uint32 {
	return r.random.Uint32()
}

// Intn returns a uniformly distributed int in [0, n)
func (r *RandomSampler) Intn(n int) int {
	return r.random.Intn(n)
}

// OrthonormalBasis builds a tangent frame around a unit normal
func OrthonormalBasis(normal Vec3) (tangent, bitangent Vec3) {
	// Find a vector perpendicular to normal
	var nt Vec3
	if math.Abs(normal.X) > 0.1 {
		nt = NewVec3(0, 1, 0)
	} else {
		nt = NewVec3(1, 0, 0)
	}
	tangent = nt.Cross(normal).Normalize()
	bitangent = normal.Cross(tangent)
	return tangent, bitangent
}

// SampleCosineHemisphere generates a cosine-weighted random direction in hemisphere around normal
func SampleCosineHemisphere(normal Vec3, sample Vec2) Vec3 {
	// Generate point in unit disk using uniform random sampling
	a := 2.0 * math.Pi * sample.X
	z := sample.Y
	r := math.Sqrt(z)

	x := r * math.Cos(a)
	y := r * math.Sin(a)
	zCoord := math.Sqrt(1.0 - z)

	tangent, bitangent := OrthonormalBasis(normal)

	// Transform to world space
	return tangent.Multiply(x).Add(bitangent.Multiply(y)).Add(normal.Multiply(zCoord))
}

// SampleOnUnitSphere generates a uniform random direction on the unit sphere
func SampleOnUnitSphere(sample Vec2) Vec3 {
	z := 1.0 - 2.0*sample.X // z ∈ [-1, 1]
	r := math.Sqrt(math.Max(0, 1.0-z*z))
	phi := 2.0 * math.Pi * sample.Y
	x := r * math.Cos(phi)
	y := r * math.Sin(phi)
	return NewVec3(x, y, z)
}

// SampleUniformTriangle maps a unit square sample to barycentrics (b1, b2) that are
// uniformly distributed over the triangle. b0 = 1 - b1 - b2.
func SampleUniformTriangle(sample Vec2) (b1, b2 float64) {
	su := math.Sqrt(sample.X)
	return sample.Y * su, 1 - su
}

// InvertUniformTriangle recovers the unit square sample that SampleUniformTriangle
// maps to the barycentrics (b1, b2).
func InvertUniformTriangle(b1, b2 float64) Vec2 {
	su := 1 - b2
	if su <= 0 {
		return NewVec2(0, 0)
	}
	return NewVec2(min(su*su, 1), min(max(b1/su, 0), 1))
}
