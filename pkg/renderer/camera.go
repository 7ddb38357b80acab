package renderer

import (
	"math"

	"github.com/df07/go-restir/pkg/core"
)

// CameraConfig describes a pinhole camera
type CameraConfig struct {
	Center      core.Vec3 `yaml:"center"`      // Camera position
	LookAt      core.Vec3 `yaml:"lookAt"`      // Point the camera looks at
	Up          core.Vec3 `yaml:"up"`          // Up direction
	Width       int       `yaml:"width"`       // Image width in pixels
	AspectRatio float64   `yaml:"aspectRatio"` // Width / height
	VFov        float64   `yaml:"vfov"`        // Vertical field of view in degrees
}

// Height returns the image height implied by width and aspect ratio
func (c CameraConfig) Height() int {
	if c.AspectRatio <= 0 {
		return c.Width
	}
	return max(1, int(float64(c.Width)/c.AspectRatio))
}

// MergeCameraConfig returns base with every non-zero field of override applied
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base
	if !override.Center.IsZero() {
		result.Center = override.Center
	}
	if !override.LookAt.IsZero() {
		result.LookAt = override.LookAt
	}
	if !override.Up.IsZero() {
		result.Up = override.Up
	}
	if override.Width > 0 {
		result.Width = override.Width
	}
	if override.AspectRatio > 0 {
		result.AspectRatio = override.AspectRatio
	}
	if override.VFov > 0 {
		result.VFov = override.VFov
	}
	return result
}

// Camera generates primary rays and projects world points back to the image plane
type Camera struct {
	config          CameraConfig
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	u, v, w         core.Vec3 // Camera basis; w points backwards
	width, height   int
}

// NewCamera creates a camera from the configuration
func NewCamera(config CameraConfig) *Camera {
	theta := config.VFov * math.Pi / 180
	viewportHeight := 2 * math.Tan(theta/2)
	height := config.Height()
	viewportWidth := viewportHeight * float64(config.Width) / float64(height)

	w := config.Center.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	horizontal := u.Multiply(viewportWidth)
	vertical := v.Multiply(viewportHeight)
	lowerLeftCorner := config.Center.
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(w)

	return &Camera{
		config:          config,
		origin:          config.Center,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      horizontal,
		vertical:        vertical,
		u:               u,
		v:               v,
		w:               w,
		width:           config.Width,
		height:          height,
	}
}

// Config returns the configuration the camera was built from
func (c *Camera) Config() CameraConfig {
	return c.config
}

// Size returns the image size in pixels
func (c *Camera) Size() (int, int) {
	return c.width, c.height
}

// GetCameraForward returns the viewing direction
func (c *Camera) GetCameraForward() core.Vec3 {
	return c.w.Negate()
}

// GetRay generates a ray for screen coordinates (s, t) where 0 <= s,t <= 1
// and t = 1 is the top of the image
func (c *Camera) GetRay(s, t float64) core.Ray {
	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(c.origin)
	return core.NewRay(c.origin, direction.Normalize())
}

// PixelRay returns the ray through the center of pixel (x, y); y grows downward
func (c *Camera) PixelRay(x, y int) core.Ray {
	s := (float64(x) + 0.5) / float64(c.width)
	t := 1 - (float64(y)+0.5)/float64(c.height)
	return c.GetRay(s, t)
}

// Project maps a world point to continuous pixel coordinates. ok is false
// for points behind the camera.
func (c *Camera) Project(p core.Vec3) (px, py float64, ok bool) {
	d := p.Subtract(c.origin)
	depth := -d.Dot(c.w)
	if depth <= 1e-9 {
		return 0, 0, false
	}
	// Intersect the ray towards p with the image plane at distance 1
	onPlane := d.Multiply(1 / depth)
	rel := c.origin.Add(onPlane).Subtract(c.lowerLeftCorner)
	s := rel.Dot(c.horizontal) / c.horizontal.LengthSquared()
	t := rel.Dot(c.vertical) / c.vertical.LengthSquared()
	return s * float64(c.width), (1 - t) * float64(c.height), true
}

// Depth returns the distance of p along the viewing direction
func (c *Camera) Depth(p core.Vec3) float64 {
	return -p.Subtract(c.origin).Dot(c.w)
}

// Orbit returns a copy of the configuration rotated around the look-at point
// by degrees about the vertical axis
func (c CameraConfig) Orbit(degrees float64) CameraConfig {
	if degrees == 0 {
		return c
	}
	a := degrees * math.Pi / 180
	sin, cos := math.Sin(a), math.Cos(a)
	offset := c.Center.Subtract(c.LookAt)
	rotated := core.NewVec3(offset.X*cos+offset.Z*sin, offset.Y, -offset.X*sin+offset.Z*cos)
	c.Center = c.LookAt.Add(rotated)
	return c
}
