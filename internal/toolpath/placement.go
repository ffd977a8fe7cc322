package toolpath

import (
	"fmt"
	"math"
)

// PlacementRules are the placement resolver's constants.
type PlacementRules struct {
	ClearanceFactor float64 // stand-off as a multiple of cutter diameter
	MarginY         float64 // fixed Y margin, mm
	BaseOffset      float64 // two-part: distance from table centre to each part's clearance zone, mm
}

// Offset is the table position of a part's centre. All cuts on that part
// are made relative to it.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Clearance returns the cutter stand-off for a given diameter.
func (r PlacementRules) Clearance(cutterDiameter float64) float64 {
	return r.ClearanceFactor * cutterDiameter
}

// ResolvePlacement returns one offset for a single-part table, or a near
// and a far offset for a two-part table.
//
// Single part: (dimX/2 + k*d, dimY/2 + marginY).
// Two parts: centres at +/-(base + dimX/2 + k*d), both at dimY/2 + marginY,
// so the copies mirror each other about X=0 and never overlap.
func ResolvePlacement(dimX, dimY, cutterDiameter float64, tableCount int, rules PlacementRules) ([]Offset, error) {
	if !(dimX > 0) || !(dimY > 0) {
		return nil, fmt.Errorf("part dimensions %gx%g: %w", dimX, dimY, ErrDegenerate)
	}
	if cutterDiameter < 0 || math.IsNaN(cutterDiameter) {
		return nil, fmt.Errorf("cutter diameter %g: %w", cutterDiameter, ErrDegenerate)
	}

	clearance := rules.Clearance(cutterDiameter)
	y := dimY/2 + rules.MarginY

	switch tableCount {
	case 1:
		return []Offset{{X: dimX/2 + clearance, Y: y}}, nil
	case 2:
		if !(rules.BaseOffset > 0) {
			return nil, fmt.Errorf("base offset %g: %w", rules.BaseOffset, ErrDegenerate)
		}
		x := rules.BaseOffset + dimX/2 + clearance
		return []Offset{
			{X: x, Y: y},  // near
			{X: -x, Y: y}, // far
		}, nil
	default:
		return nil, fmt.Errorf("table count %d: must be 1 or 2: %w", tableCount, ErrDegenerate)
	}
}
