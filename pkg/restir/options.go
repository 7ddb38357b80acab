package restir

import (
	"math"
	"strings"

	"github.com/df07/go-restir/pkg/core"
	"github.com/pkg/errors"
)

// Mode selects which reuse stages run
type Mode int

const (
	ModeNoResampling Mode = iota
	ModeSpatial
	ModeTemporal
	ModeSpatiotemporal
)

var modeNames = map[Mode]string{
	ModeNoResampling:   "none",
	ModeSpatial:        "spatial",
	ModeTemporal:       "temporal",
	ModeSpatiotemporal: "spatiotemporal",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler
func (m Mode) MarshalText() ([]byte, error) {
	name, ok := modeNames[m]
	if !ok {
		return nil, errors.Errorf("restir: unknown mode %d", int(m))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Mode) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for mode, name := range modeNames {
		if name == s {
			*m = mode
			return nil
		}
	}
	return errors.Errorf("restir: unknown mode %q", s)
}

// Temporal reports whether temporal reuse is enabled
func (m Mode) Temporal() bool {
	return m == ModeTemporal || m == ModeSpatiotemporal
}

// Spatial reports whether spatial reuse is enabled
func (m Mode) Spatial() bool {
	return m == ModeSpatial || m == ModeSpatiotemporal
}

// BiasCorrection selects how cross evaluations treat visibility during reuse
type BiasCorrection int

const (
	// BiasCorrectionBasic evaluates cross terms without visibility
	BiasCorrectionBasic BiasCorrection = iota
	// BiasCorrectionRayTraced traces shadow rays for cross terms
	BiasCorrectionRayTraced
)

func (b BiasCorrection) String() string {
	if b == BiasCorrectionRayTraced {
		return "raytraced"
	}
	return "basic"
}

// MarshalText implements encoding.TextMarshaler
func (b BiasCorrection) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (b *BiasCorrection) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "basic":
		*b = BiasCorrectionBasic
	case "raytraced", "ray-traced":
		*b = BiasCorrectionRayTraced
	default:
		return errors.Errorf("restir: unknown bias correction %q", string(text))
	}
	return nil
}

// DebugOutput selects the per-pixel channel written by DebugImage
type DebugOutput int

const (
	DebugNone DebugOutput = iota
	DebugWeight
	DebugM
	DebugTargetPdf
	DebugLightKind
	DebugRadiance
)

var debugNames = map[DebugOutput]string{
	DebugNone:      "none",
	DebugWeight:    "weight",
	DebugM:         "m",
	DebugTargetPdf: "targetpdf",
	DebugLightKind: "lightkind",
	DebugRadiance:  "radiance",
}

func (d DebugOutput) String() string {
	if name, ok := debugNames[d]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler
func (d DebugOutput) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *DebugOutput) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for out, name := range debugNames {
		if name == s {
			*d = out
			return nil
		}
	}
	return errors.Errorf("restir: unknown debug output %q", s)
}

// Options are the tunable parameters of the pipeline
type Options struct {
	Mode           Mode           `yaml:"mode" json:"mode"`
	BiasCorrection BiasCorrection `yaml:"biasCorrection" json:"biasCorrection"`

	LightTileCount int `yaml:"lightTileCount" json:"lightTileCount"`
	LightTileSize  int `yaml:"lightTileSize" json:"lightTileSize"`
	ScreenTileSize int `yaml:"screenTileSize" json:"screenTileSize"`

	InitialLightSampleCount int     `yaml:"initialLightSampleCount" json:"initialLightSampleCount"`
	InitialBRDFSampleCount  int     `yaml:"initialBrdfSampleCount" json:"initialBrdfSampleCount"`
	BRDFCutoff              float64 `yaml:"brdfCutoff" json:"brdfCutoff"`
	ResampleEmission        bool    `yaml:"resampleEmission" json:"resampleEmission"`

	UseInitialVisibility bool `yaml:"useInitialVisibility" json:"useInitialVisibility"`
	UseFinalVisibility   bool `yaml:"useFinalVisibility" json:"useFinalVisibility"`
	ReuseFinalVisibility bool `yaml:"reuseFinalVisibility" json:"reuseFinalVisibility"`

	MaxHistoryLength int `yaml:"maxHistoryLength" json:"maxHistoryLength"`

	SpatialIterations    int     `yaml:"spatialIterations" json:"spatialIterations"`
	SpatialNeighborCount int     `yaml:"spatialNeighborCount" json:"spatialNeighborCount"`
	SpatialGatherRadius  float64 `yaml:"spatialGatherRadius" json:"spatialGatherRadius"`

	NormalThreshold              float64 `yaml:"normalThreshold" json:"normalThreshold"`
	DepthThreshold               float64 `yaml:"depthThreshold" json:"depthThreshold"`
	RejectNeighborForNormalDepth bool    `yaml:"rejectNeighborForNormalDepth" json:"rejectNeighborForNormalDepth"`
	RejectNeighborForHitType     bool    `yaml:"rejectNeighborForHitType" json:"rejectNeighborForHitType"`

	UseMFactor bool    `yaml:"useMFactor" json:"useMFactor"`
	NumPasses  int     `yaml:"numPasses" json:"numPasses"`
	RayEpsilon float64 `yaml:"rayEpsilon" json:"rayEpsilon"`

	EnvLightWeight      float64 `yaml:"envLightWeight" json:"envLightWeight"`
	EmissiveLightWeight float64 `yaml:"emissiveLightWeight" json:"emissiveLightWeight"`
	AnalyticLightWeight float64 `yaml:"analyticLightWeight" json:"analyticLightWeight"`

	DebugOutput DebugOutput `yaml:"debugOutput" json:"debugOutput"`
	NumWorkers  int         `yaml:"numWorkers" json:"numWorkers"` // 0 = CPU count
}

// DefaultOptions returns the spatiotemporal configuration used by the CLI
func DefaultOptions() Options {
	return Options{
		Mode:                         ModeSpatiotemporal,
		BiasCorrection:               BiasCorrectionBasic,
		LightTileCount:               128,
		LightTileSize:                1024,
		ScreenTileSize:               8,
		InitialLightSampleCount:      32,
		InitialBRDFSampleCount:       1,
		BRDFCutoff:                   0,
		ResampleEmission:             true,
		UseInitialVisibility:         true,
		UseFinalVisibility:           true,
		ReuseFinalVisibility:         false,
		MaxHistoryLength:             20,
		SpatialIterations:            1,
		SpatialNeighborCount:         5,
		SpatialGatherRadius:          30,
		NormalThreshold:              0.5,
		DepthThreshold:               0.1,
		RejectNeighborForNormalDepth: true,
		RejectNeighborForHitType:     true,
		UseMFactor:                   false,
		NumPasses:                    1,
		RayEpsilon:                   1e-3,
		EnvLightWeight:               1,
		EmissiveLightWeight:          1,
		AnalyticLightWeight:          1,
		DebugOutput:                  DebugNone,
	}
}

func clampInt(logger core.Logger, name string, v *int, lo, hi int) {
	if *v < lo || *v > hi {
		c := min(max(*v, lo), hi)
		logger.Warningf("%s=%d out of range [%d, %d], using %d", name, *v, lo, hi, c)
		*v = c
	}
}

func clampFloat(logger core.Logger, name string, v *float64, lo, hi float64) {
	if !(*v >= lo && *v <= hi) {
		c := lo
		if *v > hi {
			c = hi
		}
		logger.Warningf("%s=%g out of range [%g, %g], using %g", name, *v, lo, hi, c)
		*v = c
	}
}

// Validate clamps every ranged option into bounds, logging a warning for each
// adjusted value, and returns the result
func (o Options) Validate(logger core.Logger) Options {
	if _, ok := modeNames[o.Mode]; !ok {
		logger.Warningf("mode=%d unknown, using %v", int(o.Mode), ModeSpatiotemporal)
		o.Mode = ModeSpatiotemporal
	}
	if o.BiasCorrection != BiasCorrectionBasic && o.BiasCorrection != BiasCorrectionRayTraced {
		logger.Warningf("biasCorrection=%d unknown, using %v", int(o.BiasCorrection), BiasCorrectionBasic)
		o.BiasCorrection = BiasCorrectionBasic
	}
	if _, ok := debugNames[o.DebugOutput]; !ok {
		logger.Warningf("debugOutput=%d unknown, using %v", int(o.DebugOutput), DebugNone)
		o.DebugOutput = DebugNone
	}

	clampInt(logger, "lightTileCount", &o.LightTileCount, 1, 1024)
	clampInt(logger, "lightTileSize", &o.LightTileSize, 1, 8192)
	clampInt(logger, "screenTileSize", &o.ScreenTileSize, 1, 128)
	clampInt(logger, "initialLightSampleCount", &o.InitialLightSampleCount, 1, 1024)
	clampInt(logger, "initialBrdfSampleCount", &o.InitialBRDFSampleCount, 0, 16)
	clampFloat(logger, "brdfCutoff", &o.BRDFCutoff, 0, 1)
	clampInt(logger, "maxHistoryLength", &o.MaxHistoryLength, 0, 100)
	clampInt(logger, "spatialIterations", &o.SpatialIterations, 0, 8)
	clampInt(logger, "spatialNeighborCount", &o.SpatialNeighborCount, 0, 32)
	clampFloat(logger, "spatialGatherRadius", &o.SpatialGatherRadius, 5, 40)
	clampFloat(logger, "normalThreshold", &o.NormalThreshold, 0, 1)
	clampFloat(logger, "depthThreshold", &o.DepthThreshold, 0, 10)
	clampInt(logger, "numPasses", &o.NumPasses, 1, 8)
	clampFloat(logger, "rayEpsilon", &o.RayEpsilon, 1e-6, 1)
	clampFloat(logger, "envLightWeight", &o.EnvLightWeight, 0, math.MaxFloat64)
	clampFloat(logger, "emissiveLightWeight", &o.EmissiveLightWeight, 0, math.MaxFloat64)
	clampFloat(logger, "analyticLightWeight", &o.AnalyticLightWeight, 0, math.MaxFloat64)
	if o.NumWorkers < 0 {
		logger.Warningf("numWorkers=%d is negative, using the CPU count", o.NumWorkers)
		o.NumWorkers = 0
	}
	return o
}

// reuse reports whether any reuse stage is active
func (o *Options) reuse() bool {
	return o.Mode != ModeNoResampling
}
