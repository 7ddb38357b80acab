package renderer

import (
	"math"

	"github.com/df07/go-restir/pkg/core"
)

// RenderStats summarizes the accumulated image after a frame
type RenderStats struct {
	TotalPixels       int     // Number of pixels in the image
	ValidPixels       int     // Pixels with a primary surface
	FramesAccumulated int     // Frames averaged into the current image
	MeanLuminance     float64 // Mean accumulated luminance over all pixels
	MaxRelativeError  float64 // Largest per-pixel standard error relative to the mean
}

// PixelStats tracks the frames accumulated into a single pixel
type PixelStats struct {
	ColorAccum       core.Vec3 // RGB accumulator for final result
	LuminanceAccum   float64   // Luminance accumulator for convergence
	LuminanceSqAccum float64   // Luminance squared for variance
	SampleCount      int       // Number of frames accumulated
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(color core.Vec3) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	luminance := color.Luminance()
	ps.LuminanceAccum += luminance
	ps.LuminanceSqAccum += luminance * luminance
	ps.SampleCount++
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}
	return ps.ColorAccum.Multiply(1.0 / float64(ps.SampleCount))
}

// RelativeError returns the standard error of the mean luminance divided by
// the mean; 0 until two samples exist or when the mean is zero
func (ps *PixelStats) RelativeError() float64 {
	if ps.SampleCount < 2 {
		return 0
	}
	n := float64(ps.SampleCount)
	mean := ps.LuminanceAccum / n
	if mean <= 0 {
		return 0
	}
	variance := math.Max(0, ps.LuminanceSqAccum/n-mean*mean) * n / (n - 1)
	return math.Sqrt(variance/n) / mean
}

// Reset clears the accumulated samples
func (ps *PixelStats) Reset() {
	*ps = PixelStats{}
}
