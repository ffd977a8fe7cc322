// Package toolpath turns a catalog part, its tool and an optional riser
// into a machining plan: feeds and speeds, step-down passes and the table
// offsets of each copy. The plan is consumed by the gcode package.
package toolpath

import (
	"fmt"

	"github.com/piwi3910/MillPath/internal/model"
)

// Plan is everything the command emitter needs for one program.
type Plan struct {
	Part    model.Part   `json:"part"`
	Tool    model.Tool   `json:"tool"`
	Riser   *model.Riser `json:"riser,omitempty"`
	Offsets []Offset     `json:"offsets"`
	Steps   []float64    `json:"steps"`
	SafeZ   float64      `json:"safe_z"`
}

// TableCount returns how many copies the plan cuts.
func (p Plan) TableCount() int {
	return len(p.Offsets)
}

// PassCount returns the number of step-down passes per part.
func (p Plan) PassCount() int {
	return len(p.Steps)
}

// TotalDepth returns the depth reached after the last pass.
func (p Plan) TotalDepth() float64 {
	d := CumulativeDepths(p.Steps)
	if len(d) == 0 {
		return 0
	}
	return d[len(d)-1]
}

// Planner runs the calculators with one set of machine settings.
type Planner struct {
	Settings model.MachineSettings
}

func New(settings model.MachineSettings) *Planner {
	return &Planner{Settings: settings}
}

// StepRules returns the depth sequencer constants from the settings.
func (pl *Planner) StepRules() StepRules {
	return StepRules{
		MaxStepDown:   pl.Settings.MaxStepDown,
		MinFinalStep:  pl.Settings.MinFinalStep,
		FinishingPass: pl.Settings.FinishingPass,
	}
}

// PlacementRules returns the placement constants from the settings.
func (pl *Planner) PlacementRules() PlacementRules {
	return PlacementRules{
		ClearanceFactor: pl.Settings.ClearanceFactor,
		MarginY:         pl.Settings.MarginY,
		BaseOffset:      pl.Settings.BaseOffset,
	}
}

// Suggest returns the calculator's feed and speed for a tool geometry.
func (pl *Planner) Suggest(diameter float64, inserts int) (FeedSpeed, error) {
	return CalculateFeedSpeed(diameter, inserts, pl.Settings.SurfaceSpeed, pl.Settings.ChipThickness)
}

// Plan builds a plan for part cut with tool. riser may be nil. tableCount
// overrides the part's own table count when non-zero.
//
// The tool's stored spindle speed and feed rate are used as-is; they were
// fixed when the tool was created.
func (pl *Planner) Plan(part model.Part, tool model.Tool, riser *model.Riser, tableCount int) (Plan, error) {
	if tableCount == 0 {
		tableCount = part.TableCount
	}
	if part.Tool != "" && part.Tool != tool.Name {
		return Plan{}, fmt.Errorf("part %q expects tool %q, got %q: %w", part.Name, part.Tool, tool.Name, model.ErrNotFound)
	}
	if part.HasRiser() && (riser == nil || riser.Name != part.Riser) {
		return Plan{}, fmt.Errorf("part %q expects riser %q: %w", part.Name, part.Riser, model.ErrNotFound)
	}
	if !(tool.Diameter > 0) {
		return Plan{}, fmt.Errorf("tool %q diameter %g: %w", tool.Name, tool.Diameter, ErrDegenerate)
	}
	if tool.SpindleSpeed <= 0 || tool.FeedRate <= 0 {
		return Plan{}, fmt.Errorf("tool %q has no feed/speed: %w", tool.Name, ErrDegenerate)
	}

	steps, err := StepDowns(part.CutDepth, pl.StepRules())
	if err != nil {
		return Plan{}, fmt.Errorf("part %q: %w", part.Name, err)
	}
	offsets, err := ResolvePlacement(part.DimensionX, part.DimensionY, tool.Diameter, tableCount, pl.PlacementRules())
	if err != nil {
		return Plan{}, fmt.Errorf("part %q: %w", part.Name, err)
	}

	plan := Plan{
		Part:    part,
		Tool:    tool,
		Offsets: offsets,
		Steps:   steps,
		SafeZ:   pl.Settings.SafeZ,
	}
	plan.Part.TableCount = tableCount
	if riser != nil {
		r := *riser
		plan.Riser = &r
	}
	return plan, nil
}

// PlanFromCatalog resolves the named part's references in cat and plans it.
// Dangling references fail rather than fall back to defaults.
func (pl *Planner) PlanFromCatalog(cat *model.Catalog, partName string, tableCount int) (Plan, error) {
	part, err := cat.Part(partName)
	if err != nil {
		return Plan{}, err
	}
	tool, err := cat.Tool(part.Tool)
	if err != nil {
		return Plan{}, fmt.Errorf("part %q: %w", part.Name, err)
	}
	var riser *model.Riser
	if part.HasRiser() {
		r, err := cat.Riser(part.Riser)
		if err != nil {
			return Plan{}, fmt.Errorf("part %q: %w", part.Name, err)
		}
		riser = &r
	}
	return pl.Plan(part, tool, riser, tableCount)
}
