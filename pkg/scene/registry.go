package scene

import (
	"fmt"
	"sort"
)

// SceneInfo describes a built-in scene
type SceneInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type sceneFactory struct {
	info   SceneInfo
	create func(seed int64) *Scene
}

var builtinScenes = map[string]sceneFactory{
	"default": {
		info: SceneInfo{Name: "default", Description: "Diffuse, fuzzy metal and hollow glass spheres on a diffuse ground"},
		create: func(int64) *Scene {
			return NewDefaultScene()
		},
	},
	"spheregrid": {
		info: SceneInfo{Name: "spheregrid", Description: "10x10 grid of colored metal spheres"},
		create: func(int64) *Scene {
			return NewSphereGridScene()
		},
	},
	"glass": {
		info: SceneInfo{Name: "glass", Description: "Nested glass and diamond shells on a mirror floor"},
		create: func(int64) *Scene {
			return NewGlassScene()
		},
	},
	"cover": {
		info: SceneInfo{Name: "cover", Description: "Random small spheres around three large ones with depth of field"},
		create: func(seed int64) *Scene {
			return NewCoverScene(seed)
		},
	},
}

// ListScenes returns the built-in scenes sorted by name
func ListScenes() []SceneInfo {
	scenes := make([]SceneInfo, 0, len(builtinScenes))
	for _, factory := range builtinScenes {
		scenes = append(scenes, factory.info)
	}
	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})
	return scenes
}

// Create builds the named built-in scene. The seed only affects scenes with a
// random layout.
func Create(name string, seed int64) (*Scene, error) {
	factory, ok := builtinScenes[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene %q", name)
	}
	return factory.create(seed), nil
}
