package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/softras/pkg/math3d"
)

// LoadOBJ loads a Wavefront OBJ file.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := ParseOBJ(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("parse obj %s: %w", path, err)
	}
	return mesh, nil
}

// ParseOBJ reads OBJ geometry from r. Only v, vt, vn and f statements are
// honored. Polygons are fan-triangulated around their first corner and every
// face corner becomes its own output vertex, so positions with different
// texture coordinates or normals never share an index.
//
// OBJ is right-handed with counter-clockwise front faces; Z is negated and
// winding reversed to match the rasterizer's left-handed clockwise-front
// convention.
func ParseOBJ(r io.Reader, name string) (*Mesh, error) {
	var (
		positions []math3d.Vec3
		texCoords []math3d.Vec2
		normals   []math3d.Vec3
		hasUV     bool
		hasNormal bool
	)

	type corner struct {
		pos, uv, normal int // -1 when absent
	}
	var faces [][3]corner

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			positions = append(positions, math3d.V3(v[0], v[1], -v[2]))
		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			texCoords = append(texCoords, math3d.V2(v[0], v[1]))
		case "vn":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			normals = append(normals, math3d.V3(v[0], v[1], -v[2]).Normalize())
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 corners", lineNo)
			}
			corners := make([]corner, 0, len(fields)-1)
			for _, field := range fields[1:] {
				c, err := parseCorner(field, len(positions), len(texCoords), len(normals))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				hasUV = hasUV || c[1] >= 0
				hasNormal = hasNormal || c[2] >= 0
				corners = append(corners, corner{c[0], c[1], c[2]})
			}
			for i := 1; i+1 < len(corners); i++ {
				// Reversed fan: (0, i+1, i).
				faces = append(faces, [3]corner{corners[0], corners[i+1], corners[i]})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	mesh := NewMesh(name)
	for _, face := range faces {
		for _, c := range face {
			mesh.Indices = append(mesh.Indices, len(mesh.Vertices))
			mesh.Vertices = append(mesh.Vertices, positions[c.pos])
			if hasUV {
				var uv math3d.Vec2
				if c.uv >= 0 {
					uv = texCoords[c.uv]
				}
				mesh.UVs = append(mesh.UVs, uv)
			}
			if hasNormal {
				var n math3d.Vec3
				if c.normal >= 0 {
					n = normals[c.normal]
				}
				mesh.Normals = append(mesh.Normals, n)
			}
		}
	}

	if !hasNormal {
		mesh.CalculateNormals()
	}
	mesh.CalculateBounds()

	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	Logger().Debug("parsed obj", "name", name, "vertices", mesh.VertexCount(), "triangles", mesh.TriangleCount())
	return mesh, nil
}

// parseCorner parses one face corner of the form v, v/t, v//n or v/t/n into
// zero-based (position, uv, normal) indices, -1 marking an absent attribute.
// Negative OBJ indices count back from the most recent element.
func parseCorner(s string, nPos, nUV, nNormal int) ([3]int, error) {
	out := [3]int{-1, -1, -1}
	counts := [3]int{nPos, nUV, nNormal}

	parts := strings.Split(s, "/")
	if len(parts) > 3 {
		return out, fmt.Errorf("malformed face corner %q", s)
	}
	for i, p := range parts {
		if p == "" {
			if i == 0 {
				return out, fmt.Errorf("face corner %q has no position", s)
			}
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return out, fmt.Errorf("face corner %q: %w", s, err)
		}
		switch {
		case n > 0:
			n--
		case n < 0:
			n += counts[i]
		default:
			return out, fmt.Errorf("face corner %q: index 0 is invalid", s)
		}
		if n < 0 || n >= counts[i] {
			return out, fmt.Errorf("%w: face corner %q references missing element", ErrInvalidMesh, s)
		}
		out[i] = n
	}
	return out, nil
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(fields))
	}
	out := make([]float64, n)
	for i := range n {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", fields[i], err)
		}
		out[i] = v
	}
	return out, nil
}

// Load loads a mesh, choosing the loader by file extension.
func Load(path string) (*Mesh, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".glb", ".gltf":
		return LoadGLB(path)
	case ".obj":
		return LoadOBJ(path)
	default:
		return nil, fmt.Errorf("%w: %q (use .obj, .glb or .gltf)", ErrUnsupportedFormat, ext)
	}
}
