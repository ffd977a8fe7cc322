// Package importer reads tool, riser and part lists from CSV and Excel
// files and merges them into a catalog. Delimiters are detected and
// headers are matched case-insensitively against known aliases.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/MillPath/internal/model"
	"github.com/piwi3910/MillPath/internal/project"
	"github.com/piwi3910/MillPath/internal/toolpath"
)

// Kind identifies which catalog collection a table holds.
type Kind string

const (
	KindTools  Kind = "tools"
	KindRisers Kind = "risers"
	KindParts  Kind = "parts"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Tools    []model.Tool
	Risers   []model.Riser
	Parts    []model.Part
	Errors   []string
	Warnings []string
}

func (r *ImportResult) add(o ImportResult) {
	r.Tools = append(r.Tools, o.Tools...)
	r.Risers = append(r.Risers, o.Risers...)
	r.Parts = append(r.Parts, o.Parts...)
	r.Errors = append(r.Errors, o.Errors...)
	r.Warnings = append(r.Warnings, o.Warnings...)
}

// Count returns the number of imported records.
func (r ImportResult) Count() int {
	return len(r.Tools) + len(r.Risers) + len(r.Parts)
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[Kind]map[string][]string{
	KindTools: {
		"name":          {"name", "tool", "tool name", "label"},
		"diameter":      {"diameter", "dia", "d", "diameter (mm)"},
		"inserts":       {"inserts", "insert", "teeth", "flutes", "z"},
		"spindle_speed": {"spindle_speed", "spindle speed", "spindle", "rpm", "s"},
		"feed_rate":     {"feed_rate", "feed rate", "feed", "f", "mm/min"},
		"tool_number":   {"tool_number", "tool number", "number", "no", "t", "pocket"},
		"length":        {"length", "len", "l", "gauge length"},
	},
	KindRisers: {
		"name":     {"name", "riser", "riser name", "label"},
		"center_x": {"center_x", "centre_x", "center x", "centre x", "x", "cx"},
		"center_y": {"center_y", "centre_y", "center y", "centre y", "y", "cy"},
		"height":   {"height", "h", "z"},
		"diameter": {"diameter", "dia", "d"},
	},
	KindParts: {
		"name":        {"name", "part", "part number", "part no", "label"},
		"dimension_x": {"dimension_x", "dimension x", "x", "width", "w", "length"},
		"dimension_y": {"dimension_y", "dimension y", "y", "height", "h", "depth"},
		"tool":        {"tool", "tool name", "cutter"},
		"riser":       {"riser", "riser name", "fixture"},
		"cut_depth":   {"cut_depth", "cut depth", "depth of cut", "doc", "cut"},
		"table_count": {"table_count", "table count", "count", "copies", "qty", "quantity"},
	},
}

// required lists the columns a table of each kind must carry. Tool speeds
// may be left blank and are then calculated.
var required = map[Kind][]string{
	KindTools:  {"name", "diameter", "inserts", "tool_number", "length"},
	KindRisers: {"name", "center_x", "center_y", "height", "diameter"},
	KindParts:  {"name", "dimension_x", "dimension_y", "tool", "cut_depth"},
}

// Importer turns tables into catalog records.
type Importer struct {
	// Settings supply the calculator constants for tools imported
	// without spindle speed or feed rate.
	Settings model.MachineSettings
}

func New(settings model.MachineSettings) *Importer {
	return &Importer{Settings: settings}
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns maps each header cell of a kind's table to its canonical
// column name. Unknown cells map to "". Returns the mapping and the
// required columns that were not found.
func DetectColumns(kind Kind, header []string) ([]string, []string) {
	aliases := headerAliases[kind]
	columns := make([]string, len(header))
	seen := map[string]bool{}

	for i, cell := range header {
		normalized := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff")))
		for canonical, names := range aliases {
			if seen[canonical] {
				continue
			}
			for _, alias := range names {
				if normalized == alias {
					columns[i] = canonical
					seen[canonical] = true
					break
				}
			}
			if columns[i] != "" {
				break
			}
		}
	}

	var missing []string
	for _, col := range required[kind] {
		if !seen[col] {
			missing = append(missing, col)
		}
	}
	return columns, missing
}

// DetectKind guesses the kind of a table from its name, then from its header.
func DetectKind(name string, header []string) (Kind, bool) {
	base := strings.ToLower(strings.TrimSpace(name))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	for _, k := range []Kind{KindTools, KindRisers, KindParts} {
		if base == string(k) || base == strings.TrimSuffix(string(k), "s") {
			return k, true
		}
	}

	// Columns only one kind carries.
	markers := map[string]Kind{
		"inserts":     KindTools,
		"tool_number": KindTools,
		"center_x":    KindRisers,
		"dimension_x": KindParts,
		"cut_depth":   KindParts,
	}
	for _, cell := range header {
		if k, ok := markers[strings.ToLower(strings.TrimSpace(cell))]; ok {
			return k, true
		}
	}
	return "", false
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportFile imports a .csv or .xlsx file.
func (im *Importer) ImportFile(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return im.ImportCSV(path)
	case ".xlsx", ".xlsm":
		return im.ImportExcel(path)
	default:
		return ImportResult{Errors: []string{fmt.Sprintf("Unsupported file type %q", filepath.Ext(path))}}
	}
}

// ImportCSV imports one table from a CSV file. The kind comes from the
// file name (tools.csv, risers.csv, parts.csv) or from its header.
func (im *Importer) ImportCSV(path string) ImportResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open file: %v", err)}}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return ImportResult{Errors: []string{"File is empty"}}
	}

	var warnings []string
	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	result := im.ImportCSVFromReader(filepath.Base(path), bytes.NewReader(data), delimiter)
	result.Warnings = append(warnings, result.Warnings...)
	return result
}

// ImportCSVFromReader imports one table from r with a known delimiter.
func (im *Importer) ImportCSVFromReader(name string, r io.Reader, delimiter rune) ImportResult {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}
	if len(records) == 0 {
		return ImportResult{Errors: []string{"File is empty"}}
	}
	return im.importTable(name, records, "Line")
}

// ImportExcel imports every sheet of a workbook whose name or header
// identifies it as tools, risers or parts.
func (im *Importer) ImportExcel(path string) ImportResult {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open Excel file: %v", err)}}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ImportResult{Errors: []string{"Excel file has no sheets"}}
	}

	var result ImportResult
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Sheet %s: cannot read data: %v", sheet, err))
			continue
		}
		if len(rows) == 0 {
			continue
		}
		result.add(im.importTable(sheet, rows, sheet+" row"))
	}
	if result.Count() == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No tools, risers or parts found in workbook")
	}
	return result
}

// importTable parses rows whose first row is the header.
func (im *Importer) importTable(name string, rows [][]string, rowPrefix string) ImportResult {
	var result ImportResult

	kind, ok := DetectKind(name, rows[0])
	if !ok {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s: not a tools, risers or parts table, skipping", name))
		return result
	}
	columns, missing := DetectColumns(kind, rows[0])
	if len(missing) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: required columns not found in header: %s", name, strings.Join(missing, ", ")))
		return result
	}

	for i := 1; i < len(rows); i++ {
		if isEmptyRow(rows[i]) {
			continue
		}
		row := project.Row{}
		for j, col := range columns {
			if col != "" && j < len(rows[i]) {
				row[col] = rows[i][j]
			}
		}
		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)

		switch kind {
		case KindTools:
			tool, warning, err := im.parseTool(row)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", rowLabel, err))
				continue
			}
			if warning != "" {
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %s", rowLabel, warning))
			}
			result.Tools = append(result.Tools, tool)
		case KindRisers:
			riser, err := project.ParseRiserRow(row, im.Settings.RiserDiameter)
			if err == nil {
				err = riser.Validate()
			}
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", rowLabel, err))
				continue
			}
			result.Risers = append(result.Risers, riser)
		case KindParts:
			part, err := project.ParsePartRow(row)
			if err == nil {
				err = part.Validate()
			}
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", rowLabel, err))
				continue
			}
			result.Parts = append(result.Parts, part)
		}
	}
	return result
}

// parseTool fills in blank spindle speed and feed rate from the calculator.
func (im *Importer) parseTool(row project.Row) (model.Tool, string, error) {
	speedBlank := strings.TrimSpace(row["spindle_speed"]) == ""
	feedBlank := strings.TrimSpace(row["feed_rate"]) == ""
	if speedBlank {
		row["spindle_speed"] = "0"
	}
	if feedBlank {
		row["feed_rate"] = "0"
	}

	tool, err := project.ParseToolRow(row)
	if err != nil {
		return model.Tool{}, "", err
	}

	var warning string
	if speedBlank || feedBlank {
		fs, err := toolpath.CalculateFeedSpeed(tool.Diameter, tool.Inserts, im.Settings.SurfaceSpeed, im.Settings.ChipThickness)
		if err != nil {
			return model.Tool{}, "", err
		}
		if speedBlank {
			tool.SpindleSpeed = fs.SpindleSpeed
		}
		if feedBlank {
			tool.FeedRate = fs.FeedRate
		}
		warning = fmt.Sprintf("tool %s: calculated S%d F%d", tool.Name, tool.SpindleSpeed, tool.FeedRate)
	}

	if err := tool.Validate(); err != nil {
		return model.Tool{}, "", err
	}
	return tool, warning, nil
}
