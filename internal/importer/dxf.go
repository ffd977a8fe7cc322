package importer

import (
	"fmt"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/MillPath/internal/model"
)

// ImportRisersDXF reads a table fixture drawing. Every CIRCLE becomes a
// riser named prefix1, prefix2, ... in order of X then Y, with the given
// height. Other entities are ignored.
func ImportRisersDXF(path string, height float64, prefix string) ImportResult {
	result := ImportResult{}
	if prefix == "" {
		prefix = "R"
	}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var circles []*entity.Circle
	skipped := 0
	for _, ent := range entities {
		if c, ok := ent.(*entity.Circle); ok {
			circles = append(circles, c)
			continue
		}
		skipped++
	}
	if skipped > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Ignored %d non-circle entities", skipped))
	}
	if len(circles) == 0 {
		result.Errors = append(result.Errors, "No circles found in DXF file")
		return result
	}

	sort.SliceStable(circles, func(i, j int) bool {
		if circles[i].Center[0] != circles[j].Center[0] {
			return circles[i].Center[0] < circles[j].Center[0]
		}
		return circles[i].Center[1] < circles[j].Center[1]
	})

	for i, c := range circles {
		r := model.Riser{
			Name:     fmt.Sprintf("%s%d", prefix, i+1),
			Diameter: 2 * c.Radius,
			CenterX:  c.Center[0],
			CenterY:  c.Center[1],
			Height:   height,
		}
		if err := r.Validate(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Circle %d: %v", i+1, err))
			continue
		}
		result.Risers = append(result.Risers, r)
	}
	return result
}
