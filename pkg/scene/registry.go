package scene

import (
	"sort"

	"github.com/pkg/errors"
)

// SceneInfo describes a built-in scene
type SceneInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
}

type builtin struct {
	info SceneInfo
	new  func() *Scene
}

var builtins = map[string]builtin{
	"default": {
		SceneInfo{"default", "Default", "Boxes under a sky gradient, sun, point light and small lamps"},
		NewDefaultScene,
	},
	"cornell": {
		SceneInfo{"cornell", "Cornell Box", "Classic Cornell box with a ceiling area light"},
		NewCornellScene,
	},
	"triangle": {
		SceneInfo{"triangle", "Single Triangle", "Diffuse floor lit by one emissive triangle"},
		NewTriangleScene,
	},
}

// ErrUnknownScene is returned by New for names that are not built in
var ErrUnknownScene = errors.New("unknown scene")

// ListScenes returns the built-in scenes sorted by id
func ListScenes() []SceneInfo {
	scenes := make([]SceneInfo, 0, len(builtins))
	for _, b := range builtins {
		scenes = append(scenes, b.info)
	}
	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].ID < scenes[j].ID
	})
	return scenes
}

// New creates a built-in scene by id without preprocessing it, so callers can
// still replace the environment or add lights
func New(name string) (*Scene, error) {
	b, ok := builtins[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownScene, "%q", name)
	}
	return b.new(), nil
}
