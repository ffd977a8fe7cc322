package toolpath

import (
	"fmt"
	"math"
)

// StepRules are the depth sequencer's constants, in mm.
type StepRules struct {
	MaxStepDown   float64
	MinFinalStep  float64
	FinishingPass float64
}

// Pass boundaries are chosen on a micrometre grid so grid-aligned depths give
// tidy step values. Whatever the grid drops is carried by the remainder pass.
const microns = 1000.0

func toMicrons(mm float64) int64 {
	return int64(math.Round(mm * microns))
}

func fromMicrons(um int64) float64 {
	return float64(um) / microns
}

// offGrid returns the part of mm the micrometre grid does not represent.
func offGrid(mm float64) float64 {
	return mm - fromMicrons(toMicrons(mm))
}

// StepDowns splits a total cut depth into incremental pass depths, first to
// last. The finishing pass is reserved up front and always cut last. Full
// roughing passes are taken while more than MaxStepDown+MinFinalStep remains;
// the remainder becomes one pass, so a sliver thinner than MinFinalStep is
// folded into the pass before it instead of being cut on its own.
//
// A depth no deeper than the finishing pass is cut in a single pass. The
// steps always sum to depth.
func StepDowns(depth float64, rules StepRules) ([]float64, error) {
	if !(depth > 0) || math.IsInf(depth, 0) {
		return nil, fmt.Errorf("cut depth %g: %w", depth, ErrDegenerate)
	}
	if !(rules.MaxStepDown > 0) || !(rules.FinishingPass > 0) || rules.MinFinalStep < 0 {
		return nil, fmt.Errorf("step rules %+v: %w", rules, ErrDegenerate)
	}
	if depth <= rules.FinishingPass {
		return []float64{depth}, nil
	}

	maxStep := int64(math.Floor(rules.MaxStepDown * microns))
	if maxStep <= 0 {
		return nil, fmt.Errorf("max step-down %g below resolution: %w", rules.MaxStepDown, ErrDegenerate)
	}
	finish := toMicrons(rules.FinishingPass)
	minFinal := toMicrons(rules.MinFinalStep)

	var steps []float64
	remaining := toMicrons(depth) - finish
	for remaining > maxStep+minFinal {
		steps = append(steps, fromMicrons(maxStep))
		remaining -= maxStep
	}
	if last := fromMicrons(remaining) + offGrid(depth) - offGrid(rules.FinishingPass); last > 0 {
		steps = append(steps, last)
	}
	steps = append(steps, rules.FinishingPass)
	return steps, nil
}

// CumulativeDepths returns the absolute depth reached after each pass.
func CumulativeDepths(steps []float64) []float64 {
	out := make([]float64, len(steps))
	var acc int64
	var frac float64
	for i, s := range steps {
		acc += toMicrons(s)
		frac += offGrid(s)
		out[i] = fromMicrons(acc) + frac
	}
	return out
}
