package restir

import "github.com/pkg/errors"

var (
	// ErrInvalidResolution is returned for non-positive frame sizes
	ErrInvalidResolution = errors.New("restir: invalid resolution")
	// ErrGBufferMismatch is returned when a G-buffer does not match the frame size
	ErrGBufferMismatch = errors.New("restir: g-buffer does not match resolution")
	// ErrFrameNotStarted is returned when a stage runs before BeginFrame
	ErrFrameNotStarted = errors.New("restir: frame not started")
	// ErrNoLights is returned when a frame is started without a light set
	ErrNoLights = errors.New("restir: no lights set")
)
