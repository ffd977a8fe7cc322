package gcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/MillPath/internal/model"
	"github.com/piwi3910/MillPath/internal/toolpath"
)

func newTestTool() model.Tool {
	return model.Tool{
		Name: "Face88", Diameter: 88, Inserts: 4, ToolNumber: 3, Length: 120,
		SpindleSpeed: 434, FeedRate: 347,
	}
}

func newTestPart(tables int) model.Part {
	return model.Part{
		Name: "1234", DimensionX: 300, DimensionY: 200, CutDepth: 5, TableCount: tables, Tool: "Face88",
	}
}

func newTestPlan(t *testing.T, tables int, riser *model.Riser) toolpath.Plan {
	t.Helper()
	part := newTestPart(tables)
	if riser != nil {
		part.Riser = riser.Name
	}
	plan, err := toolpath.New(model.DefaultSettings()).Plan(part, newTestTool(), riser, 0)
	require.NoError(t, err)
	return plan
}

func indexOf(lines []string, want string) int {
	for i, l := range lines {
		if l == want {
			return i
		}
	}
	return -1
}

func TestGenerate_InitSequence(t *testing.T) {
	code := New("Generic").Generate(newTestPlan(t, 1, nil))
	lines := strings.Split(code, "\n")

	g90 := indexOf(lines, "G90")
	g21 := indexOf(lines, "G21")
	g17 := indexOf(lines, "G17")
	m3 := indexOf(lines, "M3 S434")
	require.GreaterOrEqual(t, g90, 0, "missing G90")
	assert.Greater(t, g21, g90)
	assert.Greater(t, g17, g21)
	assert.Greater(t, m3, g17)
	assert.Equal(t, "G0 Z10.000", lines[m3+1], "retract to safe Z right after spindle start")
	assert.GreaterOrEqual(t, indexOf(lines, "T3 M6"), 0, "tool change from tool number")
}

func TestGenerate_Shutdown(t *testing.T) {
	code := strings.TrimRight(New("Generic").Generate(newTestPlan(t, 1, nil)), "\n")
	lines := strings.Split(code, "\n")
	n := len(lines)
	assert.Equal(t, "M2", lines[n-1])
	assert.Equal(t, "M5", lines[n-2])
	assert.Equal(t, "G0 Z10.000", lines[n-4])
}

func TestEmit_PassesPerPart(t *testing.T) {
	plan := newTestPlan(t, 1, nil)
	prog := New("Generic").Emit(plan)

	plunges := 0
	var depths []float64
	for _, in := range prog {
		if in.Kind == KindFeed && in.Has(AxisZ) {
			plunges++
			depths = append(depths, in.Z)
		}
	}
	assert.Equal(t, 7, plunges)
	require.Len(t, depths, 7)
	assert.InDelta(t, -0.8, depths[0], 1e-9)
	assert.InDelta(t, -4.9, depths[5], 1e-9)
	assert.InDelta(t, -5.0, depths[6], 1e-9)

	// Every feed move carries an explicit feed rate.
	for _, in := range prog {
		if in.Kind == KindFeed {
			assert.True(t, in.Has(AxisF))
			assert.Equal(t, 347.0, in.F)
		}
	}
}

func TestEmit_ContourOutsideByRadius(t *testing.T) {
	plan := newTestPlan(t, 1, nil)
	lines := New("Generic").Emit(plan).Lines(model.GetProfile("Generic"))

	// Offset (176.4, 110), part 300x200, radius 44: corners at X-17.6..370.4, Y-34..254
	assert.GreaterOrEqual(t, indexOf(lines, "G0 X176.400 Y110.000"), 0)
	assert.GreaterOrEqual(t, indexOf(lines, "G0 X-17.600 Y-34.000"), 0)
	assert.GreaterOrEqual(t, indexOf(lines, "G1 X370.400 Y-34.000 F347.000"), 0)
	assert.GreaterOrEqual(t, indexOf(lines, "G1 X370.400 Y254.000 F347.000"), 0)
}

func TestEmit_TwoParts(t *testing.T) {
	plan := newTestPlan(t, 2, nil)
	prog := New("Generic").Emit(plan)

	code := prog.Format(model.GetProfile("Generic"))
	assert.Contains(t, code, "Part 1/2")
	assert.Contains(t, code, "Part 2/2")

	plunges := 0
	for _, in := range prog {
		if in.Kind == KindFeed && in.Has(AxisZ) {
			plunges++
		}
	}
	assert.Equal(t, 14, plunges)
	assert.Equal(t, 2*7, strings.Count(code, "Pass "))
}

func TestEmit_Riser(t *testing.T) {
	riser := &model.Riser{Name: "R1", Diameter: 40, CenterX: 500, CenterY: 100, Height: 30}
	plan := newTestPlan(t, 1, riser)
	lines := New("Generic").Emit(plan).Lines(model.GetProfile("Generic"))

	start := indexOf(lines, "; --- Riser R1 ---")
	require.GreaterOrEqual(t, start, 0)
	assert.Equal(t, "G0 Z40.000", lines[start+1])
	assert.Equal(t, "G0 X480.000 Y100.000", lines[start+2])
	assert.Equal(t, "G1 Z-5.000 F347.000", lines[start+3])
	assert.Equal(t, "G1 X520.000 Y100.000 F347.000", lines[start+4])
	assert.Equal(t, "G0 Z40.000", lines[start+5])

	m5 := indexOf(lines, "M5")
	assert.Greater(t, m5, start, "spindle stops after riser clearing")
}

func TestEmit_LowRiserRapidsToSafeHeight(t *testing.T) {
	riser := &model.Riser{Name: "R2", Diameter: 40, CenterX: 500, CenterY: 100, Height: 4}
	plan := newTestPlan(t, 1, riser)
	lines := New("Generic").Emit(plan).Lines(model.GetProfile("Generic"))

	start := indexOf(lines, "; --- Riser R2 ---")
	require.GreaterOrEqual(t, start, 0)
	assert.Equal(t, "G0 Z14.000", lines[start+1])
	assert.Equal(t, "G0 X480.000 Y100.000", lines[start+2])
	assert.Equal(t, "G0 Z10.000", lines[start+3])
	assert.Equal(t, "G1 Z-5.000 F347.000", lines[start+4])
	assert.Equal(t, "G1 X520.000 Y100.000 F347.000", lines[start+5])
	assert.Equal(t, "G0 Z14.000", lines[start+6])
}

func TestEmit_NoRiserSection(t *testing.T) {
	code := New("Generic").Generate(newTestPlan(t, 1, nil))
	assert.NotContains(t, code, "Riser")
}

func TestEmit_Deterministic(t *testing.T) {
	plan := newTestPlan(t, 2, nil)
	g := New("LinuxCNC")
	assert.Equal(t, g.Generate(plan), g.Generate(plan))
}

func TestGenerate_ProgramID(t *testing.T) {
	g := New("Generic")
	g.ProgramID = "abc123"
	assert.Contains(t, g.Generate(newTestPlan(t, 1, nil)), "; MillPath program abc123")
}

func TestGenerate_Profiles(t *testing.T) {
	plan := newTestPlan(t, 1, nil)

	grbl := New("Grbl").Generate(plan)
	assert.NotContains(t, grbl, "M6", "Grbl has no tool changer")
	assert.Contains(t, grbl, "G0 Z10.000")

	mach3 := New("Mach3").Generate(plan)
	assert.Contains(t, mach3, "G43 H3")
	assert.Contains(t, mach3, "( Profile: Mach3)")
	assert.Contains(t, mach3, "G0 Z10.0000")
	assert.True(t, strings.HasSuffix(mach3, "M30\n"))

	assert.Equal(t, "Generic", New("Unknown").Profile().Name)
}
