package project

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/piwi3910/MillPath/internal/model"
)

// Catalog file names inside the data directory.
const (
	ToolsFile  = "tools.csv"
	RisersFile = "risers.csv"
	PartsFile  = "parts.csv"
)

var (
	ToolHeader  = []string{"name", "diameter", "inserts", "spindle_speed", "feed_rate", "tool_number", "length"}
	RiserHeader = []string{"name", "center_x", "center_y", "height", "diameter"}
	PartHeader  = []string{"name", "dimension_x", "dimension_y", "tool", "riser", "cut_depth", "table_count"}
)

// ErrNoRiserDiameter marks a risers.csv row without a diameter, as written
// before the column existed.
var ErrNoRiserDiameter = errors.New("riser has no diameter: add a diameter column to risers.csv or set machine.riser_diameter")

// Store keeps the catalog as three CSV files in Dir. Every Save rewrites
// each file completely.
type Store struct {
	Dir string

	// RiserDiameter is used for risers stored without a diameter. The next
	// Save writes it out.
	RiserDiameter float64

	log *zap.Logger
}

func NewStore(dir string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{Dir: dir, log: log}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.Dir, name)
}

// Init creates the data directory and writes a header-only file for every
// catalog file that does not exist yet.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	for name, header := range map[string][]string{
		ToolsFile:  ToolHeader,
		RisersFile: RiserHeader,
		PartsFile:  PartHeader,
	} {
		p := s.path(name)
		if _, err := os.Stat(p); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := writeCSV(p, header, nil); err != nil {
			return err
		}
		s.log.Debug("initialised catalog file", zap.String("path", p))
	}
	return nil
}

// Load reads all three files and checks the result. Missing files are
// initialised first.
func (s *Store) Load() (*model.Catalog, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	cat := model.NewCatalog()

	toolRows, err := readCSV(s.path(ToolsFile))
	if err != nil {
		return nil, err
	}
	for i, row := range toolRows {
		t, err := ParseToolRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", ToolsFile, i+2, err)
		}
		cat.Tools = append(cat.Tools, t)
	}

	riserRows, err := readCSV(s.path(RisersFile))
	if err != nil {
		return nil, err
	}
	defaulted := 0
	for i, row := range riserRows {
		r, err := ParseRiserRow(row, s.RiserDiameter)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", RisersFile, i+2, err)
		}
		if row.str("diameter") == "" {
			defaulted++
		}
		cat.Risers = append(cat.Risers, r)
	}
	if defaulted > 0 {
		s.log.Warn("risers without a diameter use the configured default",
			zap.Int("risers", defaulted),
			zap.Float64("diameter", s.RiserDiameter),
		)
	}

	partRows, err := readCSV(s.path(PartsFile))
	if err != nil {
		return nil, err
	}
	for i, row := range partRows {
		p, err := ParsePartRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", PartsFile, i+2, err)
		}
		cat.Parts = append(cat.Parts, p)
	}

	if err := cat.Check(); err != nil {
		return nil, fmt.Errorf("catalog in %s is inconsistent: %w", s.Dir, err)
	}
	s.log.Debug("catalog loaded",
		zap.String("dir", s.Dir),
		zap.Int("tools", len(cat.Tools)),
		zap.Int("risers", len(cat.Risers)),
		zap.Int("parts", len(cat.Parts)),
	)
	return cat, nil
}

// Save rewrites all three files from cat.
func (s *Store) Save(cat *model.Catalog) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tools := make([][]string, len(cat.Tools))
	for i, t := range cat.Tools {
		tools[i] = ToolRecord(t)
	}
	risers := make([][]string, len(cat.Risers))
	for i, r := range cat.Risers {
		risers[i] = RiserRecord(r)
	}
	parts := make([][]string, len(cat.Parts))
	for i, p := range cat.Parts {
		parts[i] = PartRecord(p)
	}

	if err := writeCSV(s.path(ToolsFile), ToolHeader, tools); err != nil {
		return err
	}
	if err := writeCSV(s.path(RisersFile), RiserHeader, risers); err != nil {
		return err
	}
	if err := writeCSV(s.path(PartsFile), PartHeader, parts); err != nil {
		return err
	}
	s.log.Debug("catalog saved", zap.String("dir", s.Dir))
	return nil
}

// Row is one CSV record keyed by lower-case header name.
type Row map[string]string

func (r Row) str(key string) string {
	return strings.TrimSpace(r[key])
}

func (r Row) number(key string) (float64, error) {
	v := r.str(key)
	if v == "" {
		return 0, fmt.Errorf("missing %s", key)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return f, nil
}

func (r Row) integer(key string) (int, error) {
	v := r.str(key)
	if v == "" {
		return 0, fmt.Errorf("missing %s", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		// Hand-edited files sometimes carry "434.0".
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, fmt.Errorf("invalid %s %q", key, v)
		}
		n = int(f)
	}
	return n, nil
}

// ParseToolRow builds a tool from a row.
func ParseToolRow(r Row) (model.Tool, error) {
	t := model.Tool{Name: r.str("name")}
	var err error
	if t.Diameter, err = r.number("diameter"); err != nil {
		return t, err
	}
	if t.Inserts, err = r.integer("inserts"); err != nil {
		return t, err
	}
	if t.SpindleSpeed, err = r.integer("spindle_speed"); err != nil {
		return t, err
	}
	if t.FeedRate, err = r.integer("feed_rate"); err != nil {
		return t, err
	}
	if t.ToolNumber, err = r.integer("tool_number"); err != nil {
		return t, err
	}
	if t.Length, err = r.number("length"); err != nil {
		return t, err
	}
	return t, nil
}

// ParseRiserRow builds a riser from a row. A row without a diameter takes
// defaultDiameter, or fails with ErrNoRiserDiameter when that is not positive.
func ParseRiserRow(r Row, defaultDiameter float64) (model.Riser, error) {
	rs := model.Riser{Name: r.str("name")}
	var err error
	if rs.CenterX, err = r.number("center_x"); err != nil {
		return rs, err
	}
	if rs.CenterY, err = r.number("center_y"); err != nil {
		return rs, err
	}
	if rs.Height, err = r.number("height"); err != nil {
		return rs, err
	}
	if r.str("diameter") == "" {
		if !(defaultDiameter > 0) {
			return rs, ErrNoRiserDiameter
		}
		rs.Diameter = defaultDiameter
		return rs, nil
	}
	if rs.Diameter, err = r.number("diameter"); err != nil {
		return rs, err
	}
	return rs, nil
}

// ParsePartRow builds a part from a row. A missing table_count means one copy.
func ParsePartRow(r Row) (model.Part, error) {
	p := model.Part{
		Name:       r.str("name"),
		Tool:       r.str("tool"),
		Riser:      r.str("riser"),
		TableCount: 1,
	}
	var err error
	if p.DimensionX, err = r.number("dimension_x"); err != nil {
		return p, err
	}
	if p.DimensionY, err = r.number("dimension_y"); err != nil {
		return p, err
	}
	if p.CutDepth, err = r.number("cut_depth"); err != nil {
		return p, err
	}
	if r.str("table_count") != "" {
		if p.TableCount, err = r.integer("table_count"); err != nil {
			return p, err
		}
	}
	return p, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ToolRecord renders t in ToolHeader order.
func ToolRecord(t model.Tool) []string {
	return []string{
		t.Name,
		formatFloat(t.Diameter),
		strconv.Itoa(t.Inserts),
		strconv.Itoa(t.SpindleSpeed),
		strconv.Itoa(t.FeedRate),
		strconv.Itoa(t.ToolNumber),
		formatFloat(t.Length),
	}
}

// RiserRecord renders r in RiserHeader order.
func RiserRecord(r model.Riser) []string {
	return []string{
		r.Name,
		formatFloat(r.CenterX),
		formatFloat(r.CenterY),
		formatFloat(r.Height),
		formatFloat(r.Diameter),
	}
}

// PartRecord renders p in PartHeader order.
func PartRecord(p model.Part) []string {
	return []string{
		p.Name,
		formatFloat(p.DimensionX),
		formatFloat(p.DimensionY),
		p.Tool,
		p.Riser,
		formatFloat(p.CutDepth),
		strconv.Itoa(p.TableCount),
	}
}

// ReadRows parses CSV from r into rows keyed by header name.
func ReadRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}

	var rows []Row
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		row := make(Row, len(header))
		for i, h := range header {
			if i < len(rec) {
				row[h] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func readCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := ReadRows(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

// writeCSV writes header and records to a temporary file next to path and
// renames it into place.
func writeCSV(path string, header []string, records [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return err
	}
	if err := w.WriteAll(records); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
