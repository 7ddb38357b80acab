package loaders

import (
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"os"

	"github.com/df07/go-restir/pkg/core"
	"github.com/df07/go-restir/pkg/lights"
	"github.com/pkg/errors"
	_ "golang.org/x/image/tiff" // TIFF decoder, 16-bit environment maps
)

// ImageData contains loaded image data as Vec3 color array
type ImageData struct {
	Width  int
	Height int
	Pixels []core.Vec3
}

// LoadImage loads a PNG, JPEG or TIFF image and converts it to a Vec3 color array
func LoadImage(filename string) (*ImageData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open image file")
	}
	defer file.Close()

	// Decode image (auto-detects the format from the file header)
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode image %s", filename)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	pixels := make([]core.Vec3, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// RGBA returns uint32 in [0, 65535], convert to [0, 1]
			pixels[y*width+x] = core.NewVec3(
				float64(r)/65535.0,
				float64(g)/65535.0,
				float64(b)/65535.0,
			)
		}
	}

	return &ImageData{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}, nil
}

// LoadEnvironment loads an equirectangular image as an environment light.
// Texel values are gamma decoded with exponent 2 to match the renderer's
// output encoding, then multiplied by intensity.
func LoadEnvironment(filename string, intensity float64) (*lights.Environment, error) {
	data, err := LoadImage(filename)
	if err != nil {
		return nil, err
	}
	for i, p := range data.Pixels {
		data.Pixels[i] = p.MultiplyVec(p).Multiply(intensity)
	}
	env, err := lights.NewEnvironment(data.Width, data.Height, data.Pixels)
	if err != nil {
		return nil, errors.Wrapf(err, "environment map %s", filename)
	}
	return env, nil
}
