package lights

import (
	"math"

	"github.com/df07/go-restir/pkg/core"
	"github.com/pkg/errors"
)

// Environment is an equirectangular radiance map at infinite distance. Row 0 is
// the +Y pole. Directions map to (u, v) by φ = 2πu, θ = πv.
type Environment struct {
	Width, Height int
	Pixels        []core.Vec3 // Row-major radiance
	table         *core.AliasTable
}

// NewEnvironment builds an environment light and its texel importance table.
// Texels are weighted by luminance times their solid angle.
func NewEnvironment(width, height int, pixels []core.Vec3) (*Environment, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("lights: invalid environment size %dx%d", width, height)
	}
	if width*height > MaxLightIndex {
		return nil, errors.Wrapf(ErrTooManyLights, "environment %dx%d", width, height)
	}
	if len(pixels) != width*height {
		return nil, errors.Errorf("lights: environment has %d pixels, expected %d", len(pixels), width*height)
	}

	weights := make([]float64, width*height)
	texelArea := (2 * math.Pi / float64(width)) * (math.Pi / float64(height))
	for y := 0; y < height; y++ {
		sinTheta := math.Sin(math.Pi * (float64(y) + 0.5) / float64(height))
		for x := 0; x < width; x++ {
			i := y*width + x
			weights[i] = max(pixels[i].Luminance(), 0) * texelArea * sinTheta
		}
	}

	env := &Environment{Width: width, Height: height, Pixels: pixels}
	table, err := core.NewAliasTable(weights)
	if err != nil && !errors.Is(err, core.ErrEmptyDistribution) {
		return nil, errors.Wrap(err, "lights: environment importance table")
	}
	env.table = table
	return env, nil
}

// NewGradientEnvironment bakes a vertical sky gradient into an environment map
func NewGradientEnvironment(top, bottom core.Vec3, width, height int) (*Environment, error) {
	pixels := make([]core.Vec3, width*height)
	for y := 0; y < height; y++ {
		// v = 0 is straight up
		dirY := math.Cos(math.Pi * (float64(y) + 0.5) / float64(height))
		t := 0.5 * (dirY + 1.0)
		c := bottom.Multiply(1.0 - t).Add(top.Multiply(t))
		for x := 0; x < width; x++ {
			pixels[y*width+x] = c
		}
	}
	return NewEnvironment(width, height, pixels)
}

// NewUniformEnvironment creates a constant radiance environment
func NewUniformEnvironment(radiance core.Vec3) (*Environment, error) {
	return NewGradientEnvironment(radiance, radiance, 4, 2)
}

// IsBlack reports whether the environment emits nothing
func (e *Environment) IsBlack() bool {
	return e.table == nil
}

// Direction maps equirectangular coordinates to a unit direction
func (e *Environment) Direction(uv core.Vec2) core.Vec3 {
	phi := 2 * math.Pi * uv.X
	theta := math.Pi * uv.Y
	sinTheta := math.Sin(theta)
	return core.NewVec3(sinTheta*math.Cos(phi), math.Cos(theta), sinTheta*math.Sin(phi))
}

// UV maps a unit direction to equirectangular coordinates in [0, 1)²
func (e *Environment) UV(dir core.Vec3) core.Vec2 {
	theta := math.Acos(min(max(dir.Y, -1), 1))
	phi := math.Atan2(dir.Z, dir.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	return core.NewVec2(phi/(2*math.Pi), theta/math.Pi)
}

// texel returns the texel containing uv and the position within it
func (e *Environment) texel(uv core.Vec2) (int, core.Vec2) {
	fx := uv.X * float64(e.Width)
	fy := uv.Y * float64(e.Height)
	x := min(max(int(fx), 0), e.Width-1)
	y := min(max(int(fy), 0), e.Height-1)
	return y*e.Width + x, core.NewVec2(fx-float64(x), fy-float64(y))
}

// texelUV returns the global uv of a position inside a texel
func (e *Environment) texelUV(index int, local core.Vec2) core.Vec2 {
	x := index % e.Width
	y := index / e.Width
	return core.NewVec2((float64(x)+local.X)/float64(e.Width), (float64(y)+local.Y)/float64(e.Height))
}

// Radiance returns the environment radiance along dir
func (e *Environment) Radiance(dir core.Vec3) core.Vec3 {
	i, _ := e.texel(e.UV(dir))
	return e.Pixels[i]
}

// sample picks a texel by importance and a uniform position inside it
func (e *Environment) sample(u float64, pos core.Vec2) LightSample {
	if e.table == nil {
		return InvalidSample
	}
	return NewLightSample(KindEnvironment, e.table.Sample(u), pos)
}

// sampleForDirection returns the sample that would have produced dir
func (e *Environment) sampleForDirection(dir core.Vec3) LightSample {
	i, local := e.texel(e.UV(dir))
	return NewLightSample(KindEnvironment, i, local)
}

// directionPDF is the solid angle density of sampling the texel and position
func (e *Environment) directionPDF(index int, uv core.Vec2) float64 {
	if e.table == nil {
		return 0
	}
	sinTheta := math.Sin(math.Pi * uv.Y)
	if sinTheta <= 0 {
		return 0
	}
	return e.table.PDF(index) * float64(e.Width*e.Height) / (2 * math.Pi * math.Pi * sinTheta)
}
