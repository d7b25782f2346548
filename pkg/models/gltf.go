package models

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	_ "golang.org/x/image/webp" // EXT_texture_webp images

	"github.com/taigrr/softras/pkg/math3d"
)

// GLTFLoader loads GLTF/GLB files into Mesh format.
//
// glTF is right-handed with counter-clockwise front faces. The loader negates
// Z on positions and normals and swaps the second and third index of each
// triangle, which yields the left-handed, clockwise-front layout the
// rasterizer expects. V is flipped so 0 is the bottom of the image.
type GLTFLoader struct {
	// CalculateNormals generates smooth normals when the file has none.
	CalculateNormals bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{CalculateNormals: true}
}

// LoadGLB loads a binary GLTF (.glb) or JSON (.gltf) file.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a GLTF or GLB file and returns a single Mesh holding every
// triangle primitive in the document.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.FromDocument(doc, filepath.Base(path))
}

// FromDocument converts an already decoded document.
func (l *GLTFLoader) FromDocument(doc *gltf.Document, name string) (*Mesh, error) {
	mesh := NewMesh(name)
	hasNormals := true

	for _, m := range doc.Meshes {
		for _, prim := range m.Primitives {
			part, err := readPrimitive(doc, prim)
			if err != nil {
				return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
			}
			if part == nil {
				continue
			}
			if len(part.Normals) == 0 {
				hasNormals = false
			}
			mesh.Append(part)
		}
	}

	if l.CalculateNormals && !hasNormals {
		mesh.CalculateNormals()
	}
	mesh.CalculateBounds()

	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	Logger().Debug("loaded gltf", "name", name, "vertices", mesh.VertexCount(), "triangles", mesh.TriangleCount())
	return mesh, nil
}

// readPrimitive extracts one triangle primitive. It returns nil for
// primitives that are not triangle lists or carry no positions.
func readPrimitive(doc *gltf.Document, prim *gltf.Primitive) (*Mesh, error) {
	if prim.Mode != gltf.PrimitiveTriangles {
		return nil, nil
	}
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}

	positions, err := readVec3Accessor(doc, posIdx)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	part := &Mesh{Vertices: make([]math3d.Vec3, len(positions))}
	for i, p := range positions {
		part.Vertices[i] = math3d.V3(p.X, p.Y, -p.Z)
	}

	if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err := readVec3Accessor(doc, normIdx)
		if err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
		if len(normals) == len(positions) {
			part.Normals = make([]math3d.Vec3, len(normals))
			for i, n := range normals {
				part.Normals[i] = math3d.V3(n.X, n.Y, -n.Z)
			}
		}
	}

	if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err := readVec2Accessor(doc, uvIdx)
		if err != nil {
			return nil, fmt.Errorf("read uvs: %w", err)
		}
		if len(uvs) == len(positions) {
			part.UVs = make([]math3d.Vec2, len(uvs))
			for i, uv := range uvs {
				part.UVs[i] = math3d.V2(uv.X, 1-uv.Y)
			}
		}
	}

	var indices []int
	if prim.Indices != nil {
		indices, err = readIndices(doc, *prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
	} else {
		indices = make([]int, len(positions)-len(positions)%3)
		for i := range indices {
			indices[i] = i
		}
	}

	part.Indices = make([]int, 0, len(indices))
	for i := 0; i+2 < len(indices); i += 3 {
		part.Indices = append(part.Indices, indices[i], indices[i+2], indices[i+1])
	}
	return part, nil
}

// readVec3Accessor reads float VEC3 data from a GLTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 || accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float VEC3, got %v/%v", accessor.Type, accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, 12)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec3, accessor.Count)
	for i := range result {
		b := data[i*stride:]
		result[i] = math3d.V3(readFloat32(b), readFloat32(b[4:]), readFloat32(b[8:]))
	}
	return result, nil
}

// readVec2Accessor reads float VEC2 data from a GLTF accessor.
func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec2 || accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float VEC2, got %v/%v", accessor.Type, accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, 8)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec2, accessor.Count)
	for i := range result {
		b := data[i*stride:]
		result[i] = math3d.V2(readFloat32(b), readFloat32(b[4:]))
	}
	return result, nil
}

// readIndices reads unsigned SCALAR index data from a GLTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type: %v", accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}

	result := make([]int, accessor.Count)
	for i := range result {
		b := data[i*stride:]
		switch size {
		case 1:
			result[i] = int(b[0])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(b))
		case 4:
			result[i] = int(binary.LittleEndian.Uint32(b))
		}
	}
	return result, nil
}

// accessorBytes returns the accessor's backing bytes starting at its first
// element, and the element stride. elemSize is the tightly packed size used
// when the buffer view declares no stride.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) ([]byte, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, fmt.Errorf("accessor has no buffer view")
	}

	bufferView := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[bufferView.Buffer]
	if buffer.Data == nil {
		return nil, 0, fmt.Errorf("buffer %d has no data", bufferView.Buffer)
	}

	stride := bufferView.ByteStride
	if stride == 0 {
		stride = elemSize
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	end := start
	if accessor.Count > 0 {
		end = start + (accessor.Count-1)*stride + elemSize
	}
	if end > len(buffer.Data) {
		return nil, 0, fmt.Errorf("accessor reads [%d,%d) past buffer of %d bytes", start, end, len(buffer.Data))
	}
	return buffer.Data[start:end], stride, nil
}

// readFloat32 reads a little-endian float32.
func readFloat32(b []byte) float64 {
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
}

// LoadGLBWithTexture loads a GLB file and returns the mesh plus the first
// decodable embedded or referenced image. The image is nil when the file has
// none.
func LoadGLBWithTexture(path string) (*Mesh, image.Image, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh, err := NewGLTFLoader().FromDocument(doc, filepath.Base(path))
	if err != nil {
		return nil, nil, err
	}

	for i, img := range doc.Images {
		data, err := imageBytes(doc, img, filepath.Dir(path))
		if err != nil {
			Logger().Warn("skipping gltf image", "index", i, "error", err)
			continue
		}
		decoded, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			Logger().Warn("skipping gltf image", "index", i, "error", err)
			continue
		}
		return mesh, decoded, nil
	}

	return mesh, nil, nil
}

// imageBytes returns the encoded bytes of a glTF image, read either from its
// buffer view or from a file next to the document.
func imageBytes(doc *gltf.Document, img *gltf.Image, dir string) ([]byte, error) {
	if img.BufferView != nil {
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer]
		if buf.Data == nil {
			return nil, fmt.Errorf("buffer %d has no data", bv.Buffer)
		}
		return buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength], nil
	}
	if img.URI == "" || strings.HasPrefix(img.URI, "data:") {
		return nil, fmt.Errorf("image has no external uri")
	}
	return os.ReadFile(filepath.Join(dir, img.URI))
}
