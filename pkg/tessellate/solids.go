package tessellate

import (
	"fmt"

	"girder/pkg/assembly"
	"girder/pkg/kernel"
	"girder/pkg/part"
)

// Flange and hardware proportions, derived from the hole pitch so all
// part types stay visually consistent.
const (
	flangeWidth = 0.75 * part.HoleSpacing
	holeRadius  = 2.0
	headRadius  = 3.5
)

// holeCutHeight makes bores comfortably pierce the material.
const holeCutHeight = 4 * part.Thickness

// partSolid builds the local-frame solid for a part. The local frame
// matches the hole geometry model: hole 0 at the origin, holes along
// local X, material centered on z = 0.
func partSolid(k kernel.Kernel, p *assembly.Part) (kernel.Solid, error) {
	switch p.Type {
	case part.Strip:
		return stripSolid(k, p.Length), nil
	case part.CornerBracket:
		return cornerBracketSolid(k), nil
	case part.AngleBracket:
		return angleBracketSolid(k), nil
	case part.Screw:
		return screwSolid(k), nil
	case part.Nut:
		return nutSolid(k), nil
	}
	return nil, fmt.Errorf("part %s has no solid model (%s)", p.ID.Short(), p.Type)
}

// bore is a vertical hole cutter at (x, y).
func bore(k kernel.Kernel, x, y float64) kernel.Solid {
	return k.Translate(k.Cylinder(holeCutHeight, holeRadius, 32), x, y, 0)
}

func stripSolid(k kernel.Kernel, n int) kernel.Solid {
	length := float64(n) * part.HoleSpacing
	// Body centered on the hole row: holes run from 0 to (n-1)*pitch.
	body := k.Translate(
		k.Box(length, flangeWidth, part.Thickness),
		float64(n-1)*part.HoleSpacing/2, 0, 0,
	)
	for i := 0; i < n; i++ {
		body = k.Difference(body, bore(k, float64(i)*part.HoleSpacing, 0))
	}
	return body
}

func cornerBracketSolid(k kernel.Kernel) kernel.Solid {
	// Two arms sharing the corner hole at the origin.
	armX := k.Translate(
		k.Box(2*part.HoleSpacing, flangeWidth, part.Thickness),
		part.HoleSpacing/2, 0, 0,
	)
	armY := k.Translate(
		k.Box(flangeWidth, 2*part.HoleSpacing, part.Thickness),
		0, part.HoleSpacing/2, 0,
	)
	body := k.Union(armX, armY)
	body = k.Difference(body, bore(k, 0, 0))
	body = k.Difference(body, bore(k, part.HoleSpacing, 0))
	body = k.Difference(body, bore(k, 0, part.HoleSpacing))
	return body
}

func angleBracketSolid(k kernel.Kernel) kernel.Solid {
	// Base flange holds the flat hole at the origin; the upright flange
	// rises at the far edge and carries the horizontal-axis hole.
	base := k.Box(part.HoleSpacing, flangeWidth, part.Thickness)
	upright := k.Translate(
		k.Box(part.Thickness, flangeWidth, part.HoleSpacing),
		part.HoleSpacing/2, 0, part.HoleSpacing/2,
	)
	body := k.Union(base, upright)
	body = k.Difference(body, bore(k, 0, 0))

	// Upright bore runs along X: rotate the cutter 90 degrees about Y.
	side := k.Translate(
		k.Rotate(k.Cylinder(holeCutHeight, holeRadius, 32), 0, 90, 0),
		part.HoleSpacing/2, 0, part.HoleSpacing/2,
	)
	return k.Difference(body, side)
}

func screwSolid(k kernel.Kernel) kernel.Solid {
	// The shaft points up through the joined stack; the head sits below.
	shaft := k.Translate(
		k.Cylinder(4*part.Thickness, holeRadius*0.9, 32),
		0, 0, 1.5*part.Thickness,
	)
	head := k.Translate(
		k.Cylinder(part.Thickness, headRadius, 32),
		0, 0, -1.5*part.Thickness,
	)
	return k.Union(shaft, head)
}

func nutSolid(k kernel.Kernel) kernel.Solid {
	blank := k.Cylinder(part.Thickness, headRadius, 32)
	return k.Difference(blank, k.Cylinder(holeCutHeight, holeRadius*0.9, 32))
}
