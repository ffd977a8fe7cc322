package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrOutOfRange    = errors.New("value out of range")
	ErrInvalidName   = errors.New("invalid name")
	ErrDuplicateName = errors.New("name already exists")
	ErrNotFound      = errors.New("not found")
	ErrInUse         = errors.New("still referenced")
)

// Machine-safe input ranges.
const (
	MinToolDiameter = 1.0
	MaxToolDiameter = 200.0
	MinInserts      = 1
	MaxInserts      = 24
	MinToolNumber   = 1
	MaxToolNumber   = 10

	MinPartName      = 1000
	MaxPartName      = 999999
	MinPartDimension = 10.0
	MaxPartDimension = 450.0
	MinCutDepth      = 1.0
	MaxCutDepth      = 10.0
)

// ValidationError describes a single rejected field.
type ValidationError struct {
	Entity string
	Field  string
	Value  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s=%s: %s", e.Entity, e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func rangeErr(entity, field string, v float64, lo, hi float64) error {
	return &ValidationError{
		Entity: entity,
		Field:  field,
		Value:  strconv.FormatFloat(v, 'f', -1, 64),
		Reason: fmt.Sprintf("must be between %g and %g", lo, hi),
		Err:    ErrOutOfRange,
	}
}

func positiveErr(entity, field string, v float64) error {
	return &ValidationError{
		Entity: entity,
		Field:  field,
		Value:  strconv.FormatFloat(v, 'f', -1, 64),
		Reason: "must be positive",
		Err:    ErrOutOfRange,
	}
}

func within(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}

func positive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// Validate checks the tool against the machine-safe ranges.
func (t Tool) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return &ValidationError{Entity: "tool", Field: "name", Reason: "must not be empty", Err: ErrInvalidName}
	}
	if !within(t.Diameter, MinToolDiameter, MaxToolDiameter) {
		return rangeErr("tool", "diameter", t.Diameter, MinToolDiameter, MaxToolDiameter)
	}
	if t.Inserts < MinInserts || t.Inserts > MaxInserts {
		return rangeErr("tool", "inserts", float64(t.Inserts), MinInserts, MaxInserts)
	}
	if t.ToolNumber < MinToolNumber || t.ToolNumber > MaxToolNumber {
		return rangeErr("tool", "tool_number", float64(t.ToolNumber), MinToolNumber, MaxToolNumber)
	}
	if !positive(t.Length) {
		return positiveErr("tool", "length", t.Length)
	}
	if t.SpindleSpeed <= 0 {
		return positiveErr("tool", "spindle_speed", float64(t.SpindleSpeed))
	}
	if t.FeedRate <= 0 {
		return positiveErr("tool", "feed_rate", float64(t.FeedRate))
	}
	return nil
}

// Validate checks the riser geometry.
func (r Riser) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return &ValidationError{Entity: "riser", Field: "name", Reason: "must not be empty", Err: ErrInvalidName}
	}
	if !positive(r.Diameter) {
		return positiveErr("riser", "diameter", r.Diameter)
	}
	if math.IsNaN(r.CenterX) || math.IsInf(r.CenterX, 0) {
		return &ValidationError{Entity: "riser", Field: "center_x", Value: fmt.Sprint(r.CenterX), Reason: "must be finite", Err: ErrOutOfRange}
	}
	if math.IsNaN(r.CenterY) || math.IsInf(r.CenterY, 0) {
		return &ValidationError{Entity: "riser", Field: "center_y", Value: fmt.Sprint(r.CenterY), Reason: "must be finite", Err: ErrOutOfRange}
	}
	if !positive(r.Height) {
		return positiveErr("riser", "height", r.Height)
	}
	return nil
}

// ValidatePartName checks that name is a 4-6 digit number.
func ValidatePartName(name string) error {
	invalid := &ValidationError{
		Entity: "part",
		Field:  "name",
		Value:  name,
		Reason: "must be a 4-6 digit number",
		Err:    ErrInvalidName,
	}
	if name == "" || len(name) > 6 {
		return invalid
	}
	for _, c := range name {
		if c < '0' || c > '9' {
			return invalid
		}
	}
	n, err := strconv.Atoi(name)
	if err != nil || n < MinPartName || n > MaxPartName {
		return invalid
	}
	return nil
}

// Validate checks the part's own fields. References are checked by Catalog.
func (p Part) Validate() error {
	if err := ValidatePartName(p.Name); err != nil {
		return err
	}
	if !within(p.DimensionX, MinPartDimension, MaxPartDimension) {
		return rangeErr("part", "dimension_x", p.DimensionX, MinPartDimension, MaxPartDimension)
	}
	if !within(p.DimensionY, MinPartDimension, MaxPartDimension) {
		return rangeErr("part", "dimension_y", p.DimensionY, MinPartDimension, MaxPartDimension)
	}
	if !within(p.CutDepth, MinCutDepth, MaxCutDepth) {
		return rangeErr("part", "cut_depth", p.CutDepth, MinCutDepth, MaxCutDepth)
	}
	if p.TableCount != 1 && p.TableCount != 2 {
		return rangeErr("part", "table_count", float64(p.TableCount), 1, 2)
	}
	if strings.TrimSpace(p.Tool) == "" {
		return &ValidationError{Entity: "part", Field: "tool", Reason: "a tool is required", Err: ErrNotFound}
	}
	return nil
}

// Validate checks that the settings can drive the planner.
func (s MachineSettings) Validate() error {
	checks := []struct {
		field string
		v     float64
	}{
		{"surface_speed", s.SurfaceSpeed},
		{"chip_thickness", s.ChipThickness},
		{"max_step_down", s.MaxStepDown},
		{"finishing_pass", s.FinishingPass},
		{"base_offset", s.BaseOffset},
		{"safe_z", s.SafeZ},
	}
	for _, c := range checks {
		if !positive(c.v) {
			return positiveErr("settings", c.field, c.v)
		}
	}
	if s.MinFinalStep < 0 || math.IsNaN(s.MinFinalStep) {
		return rangeErr("settings", "min_final_step", s.MinFinalStep, 0, s.MaxStepDown)
	}
	if s.ClearanceFactor < 0 || math.IsNaN(s.ClearanceFactor) {
		return rangeErr("settings", "clearance_factor", s.ClearanceFactor, 0, math.Inf(1))
	}
	if s.RiserDiameter < 0 || math.IsNaN(s.RiserDiameter) || math.IsInf(s.RiserDiameter, 0) {
		return rangeErr("settings", "riser_diameter", s.RiserDiameter, 0, math.Inf(1))
	}
	if s.MarginY < 0 || math.IsNaN(s.MarginY) {
		return rangeErr("settings", "margin_y", s.MarginY, 0, math.Inf(1))
	}
	return nil
}
