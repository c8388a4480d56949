package scene

import (
	"errors"
	"fmt"

	"github.com/qmuntal/gltf"
)

var ErrNoCameras = errors.New("scene: no cameras in document")

// LoadCameras opens a .glb or .gltf file and returns one Camera per node that
// references a perspective camera. Every camera targets the primary window.
func LoadCameras(path string) ([]*Camera, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	return camerasFromDocument(doc)
}

func camerasFromDocument(doc *gltf.Document) ([]*Camera, error) {
	var cameras []*Camera
	for i, gn := range doc.Nodes {
		if gn.Camera == nil || *gn.Camera < 0 || *gn.Camera >= len(doc.Cameras) {
			continue
		}
		gc := doc.Cameras[*gn.Camera]
		if gc.Perspective == nil {
			logger.Infof("skipping node %d: orthographic cameras are not supported", i)
			continue
		}

		name := gn.Name
		if name == "" {
			name = gc.Name
		}
		if name == "" {
			name = fmt.Sprintf("camera_%d", i)
		}

		cam := NewCamera(name, PrimaryWindow())
		t := gn.TranslationOrDefault()
		cam.Position = [3]float32{float32(t[0]), float32(t[1]), float32(t[2])}
		r := gn.RotationOrDefault() // [x, y, z, w]
		cam.Rotation = [4]float32{float32(r[0]), float32(r[1]), float32(r[2]), float32(r[3])}
		cam.YFov = float32(gc.Perspective.Yfov)
		cam.ZNear = float32(gc.Perspective.Znear)

		cameras = append(cameras, cam)
	}

	if len(cameras) == 0 {
		return nil, ErrNoCameras
	}
	logger.Infof("loaded %d camera(s)", len(cameras))
	return cameras, nil
}
