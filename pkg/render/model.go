package render

import (
	"github.com/taigrr/softras/pkg/math3d"
	"github.com/taigrr/softras/pkg/models"
)

// Model is a mesh placed in the world with its own shading.
type Model struct {
	Name      string
	Mesh      *models.Mesh
	Transform *math3d.Transform
	Shader    Shader

	// points is the per-frame output of the clip stage, three per triangle.
	// It is truncated and refilled every frame so its storage is reused.
	points []RasterizerPoint
}

// NewModel creates a model at the origin with an identity transform.
func NewModel(name string, mesh *models.Mesh, shader Shader) *Model {
	return &Model{
		Name:      name,
		Mesh:      mesh,
		Transform: math3d.NewTransform(),
		Shader:    shader,
	}
}

// Points returns the screen-space points produced for this model by the
// most recent Render call. The slice is overwritten by the next frame.
func (m *Model) Points() []RasterizerPoint {
	return m.points
}
