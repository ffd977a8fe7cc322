package gcode

import (
	"fmt"
	"math"

	"github.com/piwi3910/MillPath/internal/toolpath"
)

// ConflictKind says what a layout conflict is between.
type ConflictKind int

const (
	ConflictRiser ConflictKind = iota // cutter envelope reaches into the riser
	ConflictCopies                    // the two copies' cutter envelopes overlap
)

// LayoutConflict is one clearance problem found in a plan.
type LayoutConflict struct {
	Kind      ConflictKind
	PartIndex int     // 0-based copy index
	Other     int     // the other copy for ConflictCopies
	Gap       float64 // mm; negative means overlap
}

// envelope is the table area swept by the cutter contouring one copy.
type envelope struct {
	x0, y0, x1, y1 float64
}

func partEnvelope(plan toolpath.Plan, off toolpath.Offset) envelope {
	r := plan.Tool.Radius()
	hx := plan.Part.DimensionX/2 + 2*r
	hy := plan.Part.DimensionY/2 + 2*r
	return envelope{x0: off.X - hx, y0: off.Y - hy, x1: off.X + hx, y1: off.Y + hy}
}

// CheckLayout reports where the cutter would touch the riser while
// contouring a copy, and where two copies' cutter envelopes overlap.
// The riser's own traverse is intentional and not reported.
func CheckLayout(plan toolpath.Plan) []LayoutConflict {
	var conflicts []LayoutConflict

	envs := make([]envelope, len(plan.Offsets))
	for i, off := range plan.Offsets {
		envs[i] = partEnvelope(plan, off)
	}

	if plan.Riser != nil {
		r := plan.Riser
		for i, e := range envs {
			gap := distanceToEnvelope(r.CenterX, r.CenterY, e) - r.Radius()
			if gap < 0 {
				conflicts = append(conflicts, LayoutConflict{Kind: ConflictRiser, PartIndex: i, Gap: gap})
			}
		}
	}

	for i := 0; i < len(envs); i++ {
		for j := i + 1; j < len(envs); j++ {
			gap := envelopeGap(envs[i], envs[j])
			if gap < 0 {
				conflicts = append(conflicts, LayoutConflict{Kind: ConflictCopies, PartIndex: i, Other: j, Gap: gap})
			}
		}
	}
	return conflicts
}

// distanceToEnvelope computes the minimum distance from a point (px, py)
// to an envelope rectangle. Returns 0 if the point is inside.
func distanceToEnvelope(px, py float64, e envelope) float64 {
	nearestX := math.Max(e.x0, math.Min(px, e.x1))
	nearestY := math.Max(e.y0, math.Min(py, e.y1))

	dx := px - nearestX
	dy := py - nearestY

	return math.Sqrt(dx*dx + dy*dy)
}

// envelopeGap returns the separation of two envelopes, negative when they
// overlap.
func envelopeGap(a, b envelope) float64 {
	gapX := math.Max(b.x0-a.x1, a.x0-b.x1)
	gapY := math.Max(b.y0-a.y1, a.y0-b.y1)
	if gapY >= 0 {
		return math.Max(gapX, gapY)
	}
	return gapX
}

// FormatConflictWarnings produces human-readable warning messages.
func FormatConflictWarnings(plan toolpath.Plan, conflicts []LayoutConflict) []string {
	var warnings []string
	for _, c := range conflicts {
		var msg string
		switch c.Kind {
		case ConflictRiser:
			msg = fmt.Sprintf("Part %s copy %d: cutter reaches riser %s (overlap %.1f mm)",
				plan.Part.Name, c.PartIndex+1, plan.Riser.Name, -c.Gap)
		case ConflictCopies:
			msg = fmt.Sprintf("Part %s: copies %d and %d overlap by %.1f mm with tool %s",
				plan.Part.Name, c.PartIndex+1, c.Other+1, -c.Gap, plan.Tool.Name)
		}
		warnings = append(warnings, msg)
	}
	return warnings
}
