package importer

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/MillPath/internal/model"
	"github.com/piwi3910/MillPath/internal/project"
)

// MergeResult reports what Merge added to a catalog.
type MergeResult struct {
	Tools    int
	Risers   int
	Parts    int
	Skipped  []string
	Rejected []string
}

// Merge adds the imported records to cat. Tools and risers go first so
// parts in the same import can reference them. Names already in the
// catalog are skipped.
func Merge(cat *model.Catalog, res ImportResult) MergeResult {
	var out MergeResult
	note := func(what, name string, err error) {
		if errors.Is(err, model.ErrDuplicateName) {
			out.Skipped = append(out.Skipped, fmt.Sprintf("%s %s already exists", what, name))
			return
		}
		out.Rejected = append(out.Rejected, fmt.Sprintf("%s %s: %v", what, name, err))
	}

	for _, t := range res.Tools {
		if err := cat.AddTool(t); err != nil {
			note("tool", t.Name, err)
			continue
		}
		out.Tools++
	}
	for _, r := range res.Risers {
		if err := cat.AddRiser(r); err != nil {
			note("riser", r.Name, err)
			continue
		}
		out.Risers++
	}
	for _, p := range res.Parts {
		if err := cat.AddPart(p); err != nil {
			note("part", p.Name, err)
			continue
		}
		out.Parts++
	}
	return out
}

// ExportXLSX writes the catalog as a workbook with Tools, Risers and Parts
// sheets. ImportExcel reads it back.
func ExportXLSX(path string, cat *model.Catalog) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), "Tools"); err != nil {
		return err
	}
	for _, name := range []string{"Risers", "Parts"} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	tools := make([][]interface{}, len(cat.Tools))
	for i, t := range cat.Tools {
		tools[i] = []interface{}{t.Name, t.Diameter, t.Inserts, t.SpindleSpeed, t.FeedRate, t.ToolNumber, t.Length}
	}
	risers := make([][]interface{}, len(cat.Risers))
	for i, r := range cat.Risers {
		risers[i] = []interface{}{r.Name, r.CenterX, r.CenterY, r.Height, r.Diameter}
	}
	parts := make([][]interface{}, len(cat.Parts))
	for i, p := range cat.Parts {
		parts[i] = []interface{}{p.Name, p.DimensionX, p.DimensionY, p.Tool, p.Riser, p.CutDepth, p.TableCount}
	}

	sheets := []struct {
		name   string
		header []string
		rows   [][]interface{}
	}{
		{"Tools", project.ToolHeader, tools},
		{"Risers", project.RiserHeader, risers},
		{"Parts", project.PartHeader, parts},
	}
	for _, s := range sheets {
		header := make([]interface{}, len(s.header))
		for i, h := range s.header {
			header[i] = h
		}
		if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
			return err
		}
		for i, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
