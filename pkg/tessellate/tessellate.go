// Package tessellate turns an assembly snapshot into triangle meshes
// using a geometry kernel. One mesh is produced per part.
package tessellate

import (
	"fmt"
	"math"

	"girder/pkg/assembly"
	"girder/pkg/kernel"
)

// Tessellate produces one posed triangle mesh per part in the
// snapshot. It is read-only over the snapshot; orientations cross into
// the kernel's Euler-angle interface here and nowhere else.
func Tessellate(snap assembly.Snapshot, k kernel.Kernel) ([]*kernel.Mesh, error) {
	var meshes []*kernel.Mesh
	for i := range snap.Parts {
		p := &snap.Parts[i]

		solid, err := partSolid(k, p)
		if err != nil {
			return nil, fmt.Errorf("tessellate: %w", err)
		}

		ex, ey, ez := p.Rotation.Euler()
		if ex != 0 || ey != 0 || ez != 0 {
			solid = k.Rotate(solid, deg(ex), deg(ey), deg(ez))
		}
		if p.Position.X != 0 || p.Position.Y != 0 || p.Position.Z != 0 {
			solid = k.Translate(solid, p.Position.X, p.Position.Y, p.Position.Z)
		}

		mesh, err := k.ToMesh(solid)
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for part %s: %w", p.ID.Short(), err)
		}
		mesh.PartID = string(p.ID)
		mesh.Color = p.Color
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

func deg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
