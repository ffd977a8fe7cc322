package gcode

import (
	"fmt"
	"strings"

	"github.com/piwi3910/MillPath/internal/model"
	"github.com/piwi3910/MillPath/internal/toolpath"
)

// Generator turns a toolpath plan into a program for one controller profile.
type Generator struct {
	ProgramID string // written into the header when set
	profile   model.GCodeProfile
}

func New(profileName string) *Generator {
	return &Generator{profile: model.GetProfile(profileName)}
}

// NewForProfile returns a generator for an already-resolved profile,
// such as a custom one.
func NewForProfile(p model.GCodeProfile) *Generator {
	return &Generator{profile: p}
}

// Profile returns the controller profile the generator renders for.
func (g *Generator) Profile() model.GCodeProfile {
	return g.profile
}

// Generate emits the plan and renders it as text.
func (g *Generator) Generate(plan toolpath.Plan) string {
	return g.Emit(plan).Format(g.profile)
}

// Emit produces the ordered instruction list for plan: machine setup,
// every step-down pass on every copy, riser clearing and shutdown.
func (g *Generator) Emit(plan toolpath.Plan) Program {
	var prog Program

	prog = g.writeHeader(prog, plan)

	for i, off := range plan.Offsets {
		prog = g.writePart(prog, plan, off, i+1)
	}

	if plan.Riser != nil {
		prog = g.writeRiser(prog, plan)
	}

	prog = g.writeFooter(prog, plan)
	return prog
}

func (g *Generator) writeHeader(prog Program, plan toolpath.Plan) Program {
	p := g.profile
	part, tool := plan.Part, plan.Tool

	if g.ProgramID != "" {
		prog = append(prog, Comment(fmt.Sprintf("MillPath program %s", g.ProgramID)))
	} else {
		prog = append(prog, Comment("MillPath program"))
	}
	prog = append(prog,
		Comment(fmt.Sprintf("Part: %s (%.1f x %.1f mm), %d on table", part.Name, part.DimensionX, part.DimensionY, len(plan.Offsets))),
		Comment(fmt.Sprintf("Tool: %s T%d, D%.1f mm, %d inserts, S%d, F%d", tool.Name, tool.ToolNumber, tool.Diameter, tool.Inserts, tool.SpindleSpeed, tool.FeedRate)),
		Comment(fmt.Sprintf("Depth: %.3f mm in %d passes", plan.TotalDepth(), plan.PassCount())),
	)
	if plan.Riser != nil {
		r := plan.Riser
		prog = append(prog, Comment(fmt.Sprintf("Riser: %s D%.1f at (%.1f, %.1f), height %.1f mm", r.Name, r.Diameter, r.CenterX, r.CenterY, r.Height)))
	}
	prog = append(prog, Comment(fmt.Sprintf("Profile: %s", p.Name)), Blank())

	for _, code := range p.StartCode {
		prog = append(prog, Directive(code))
	}
	if p.ToolChange != "" {
		prog = append(prog, Directive(fmt.Sprintf(p.ToolChange, tool.ToolNumber)))
	}
	if p.LengthOffset != "" {
		prog = append(prog, Directive(fmt.Sprintf(p.LengthOffset, tool.ToolNumber)))
	}
	if p.SpindleStart != "" {
		prog = append(prog, Directive(fmt.Sprintf(p.SpindleStart, tool.SpindleSpeed)))
	}

	// Initial safe Z retract
	prog = append(prog, RapidZ(plan.SafeZ), Blank())
	return prog
}

// writePart cuts one copy of the part: the perimeter is contoured outside
// the part by the cutter radius, once per step-down pass.
func (g *Generator) writePart(prog Program, plan toolpath.Plan, off toolpath.Offset, partNum int) Program {
	part := plan.Part
	toolR := plan.Tool.Radius()
	feed := float64(plan.Tool.FeedRate)

	x0 := off.X - part.DimensionX/2 - toolR
	y0 := off.Y - part.DimensionY/2 - toolR
	x1 := off.X + part.DimensionX/2 + toolR
	y1 := off.Y + part.DimensionY/2 + toolR

	prog = append(prog,
		Comment(fmt.Sprintf("--- Part %d/%d: %s at X%s Y%s ---", partNum, len(plan.Offsets), part.Name, g.format(off.X), g.format(off.Y))),
		RapidXY(off.X, off.Y),
	)

	depths := toolpath.CumulativeDepths(plan.Steps)
	for i, depth := range depths {
		prog = append(prog,
			Comment(fmt.Sprintf("Pass %d/%d, step=%.3fmm, depth=%.3fmm", i+1, len(depths), plan.Steps[i], depth)),
			RapidXY(x0, y0),
			FeedZ(-depth, feed),
		)
		prog = g.writePerimeter(prog, x0, y0, x1, y1, feed)
		// Retract between passes
		prog = append(prog, RapidZ(plan.SafeZ))
	}

	return append(prog, Blank())
}

func (g *Generator) writePerimeter(prog Program, x0, y0, x1, y1, feed float64) Program {
	return append(prog,
		FeedXY(x1, y0, feed),
		FeedXY(x1, y1, feed),
		FeedXY(x0, y1, feed),
		FeedXY(x0, y0, feed),
	)
}

// writeRiser rises above the riser, then traverses its full diameter at
// cutting depth and retracts. When the safe height is above the riser top
// the cutter rapids down to it before plunging; otherwise the whole descent
// from the clear height is fed.
func (g *Generator) writeRiser(prog Program, plan toolpath.Plan) Program {
	r := plan.Riser
	feed := float64(plan.Tool.FeedRate)
	clearZ := r.Height + plan.SafeZ
	depth := plan.TotalDepth()

	prog = append(prog,
		Comment(fmt.Sprintf("--- Riser %s ---", r.Name)),
		RapidZ(clearZ),
		RapidXY(r.CenterX-r.Radius(), r.CenterY),
	)
	if plan.SafeZ > r.Height {
		prog = append(prog, RapidZ(plan.SafeZ))
	}
	return append(prog,
		FeedZ(-depth, feed),
		FeedXY(r.CenterX+r.Radius(), r.CenterY, feed),
		RapidZ(clearZ),
		Blank(),
	)
}

func (g *Generator) writeFooter(prog Program, plan toolpath.Plan) Program {
	p := g.profile

	prog = append(prog, Comment("=== Job complete ==="))

	for _, code := range p.EndCode {
		// Replace [SafeZ] placeholder
		code = strings.ReplaceAll(code, "[SafeZ]", g.format(plan.SafeZ))
		prog = append(prog, Directive(code))
	}

	if p.SpindleStop != "" {
		prog = append(prog, Directive(p.SpindleStop))
	}
	return append(prog, Directive(p.ProgramEnd()))
}

func (g *Generator) format(v float64) string {
	return formatter{profile: g.profile}.format(v)
}
