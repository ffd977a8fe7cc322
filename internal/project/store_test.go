package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/MillPath/internal/model"
)

func sampleCatalog(t *testing.T) *model.Catalog {
	t.Helper()
	cat := model.NewCatalog()
	if err := cat.AddTool(model.Tool{Name: "T3", Diameter: 88, Inserts: 4, ToolNumber: 3, Length: 120.5, SpindleSpeed: 434, FeedRate: 347}); err != nil {
		t.Fatal(err)
	}
	if err := cat.AddRiser(model.Riser{Name: "R1", Diameter: 30, CenterX: 0, CenterY: 250, Height: 15}); err != nil {
		t.Fatal(err)
	}
	if err := cat.AddPart(model.Part{Name: "1234", DimensionX: 300, DimensionY: 200, CutDepth: 5, TableCount: 2, Tool: "T3", Riser: "R1"}); err != nil {
		t.Fatal(err)
	}
	if err := cat.AddPart(model.Part{Name: "5678", DimensionX: 120.25, DimensionY: 80, CutDepth: 2.5, TableCount: 1, Tool: "T3"}); err != nil {
		t.Fatal(err)
	}
	return cat
}

func TestStoreLoadInitialisesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	s := NewStore(dir, nil)

	cat, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cat.Tools)+len(cat.Risers)+len(cat.Parts) != 0 {
		t.Errorf("expected empty catalog, got %+v", cat)
	}

	data, err := os.ReadFile(filepath.Join(dir, ToolsFile))
	if err != nil {
		t.Fatalf("tools.csv not created: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "name,diameter,inserts,spindle_speed,feed_rate,tool_number,length" {
		t.Errorf("unexpected tools header %q", got)
	}
	for _, name := range []string{RisersFile, PartsFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not created: %v", name, err)
		}
	}
}

func TestStoreSaveAndLoad(t *testing.T) {
	s := NewStore(t.TempDir(), nil)
	cat := sampleCatalog(t)

	if err := s.Save(cat); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(loaded.Tools) != 1 || loaded.Tools[0] != cat.Tools[0] {
		t.Errorf("tools differ: %+v vs %+v", loaded.Tools, cat.Tools)
	}
	if len(loaded.Risers) != 1 || loaded.Risers[0] != cat.Risers[0] {
		t.Errorf("risers differ: %+v vs %+v", loaded.Risers, cat.Risers)
	}
	if len(loaded.Parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(loaded.Parts))
	}
	for i := range cat.Parts {
		if loaded.Parts[i] != cat.Parts[i] {
			t.Errorf("part %d differs: %+v vs %+v", i, loaded.Parts[i], cat.Parts[i])
		}
	}
}

func TestStoreSaveRewritesWholeFile(t *testing.T) {
	s := NewStore(t.TempDir(), nil)
	cat := sampleCatalog(t)
	if err := s.Save(cat); err != nil {
		t.Fatal(err)
	}

	if err := cat.DeletePart("5678"); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(cat); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(s.Dir, PartsFile))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one part, got %q", lines)
	}
	if lines[1] != "1234,300,200,T3,R1,5,2" {
		t.Errorf("unexpected part row %q", lines[1])
	}

	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestStoreLoadLegacyPartsWithoutTableCount(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		ToolsFile:  "name,diameter,inserts,spindle_speed,feed_rate,tool_number,length\nT3,88,4,434,347,3,120\n",
		RisersFile: "name,center_x,center_y,height,diameter\n",
		PartsFile:  "name,dimension_x,dimension_y,tool,riser,cut_depth\n1234,300,200,T3,,5\n\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}

	cat, err := NewStore(dir, nil).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cat.Parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(cat.Parts))
	}
	p := cat.Parts[0]
	if p.TableCount != 1 || p.HasRiser() || p.Tool != "T3" {
		t.Errorf("unexpected part %+v", p)
	}
}

func writeLegacyRisers(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		ToolsFile:  "name,diameter,inserts,spindle_speed,feed_rate,tool_number,length\nT3,88,4,434,347,3,120\n",
		RisersFile: "name,center_x,center_y,height\nR1,100,50,20\n",
		PartsFile:  "name,dimension_x,dimension_y,tool,riser,cut_depth\n1234,300,200,T3,R1,5\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestStoreLoadLegacyRisersNeedDiameter(t *testing.T) {
	dir := writeLegacyRisers(t)
	_, err := NewStore(dir, nil).Load()
	if !errors.Is(err, ErrNoRiserDiameter) {
		t.Fatalf("expected ErrNoRiserDiameter, got %v", err)
	}
	if !strings.Contains(err.Error(), "risers.csv row 2") {
		t.Errorf("error should name the row: %v", err)
	}
}

func TestStoreLoadLegacyRisersWithDefaultDiameter(t *testing.T) {
	dir := writeLegacyRisers(t)
	s := NewStore(dir, nil)
	s.RiserDiameter = 60

	cat, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := model.Riser{Name: "R1", Diameter: 60, CenterX: 100, CenterY: 50, Height: 20}
	if len(cat.Risers) != 1 || cat.Risers[0] != want {
		t.Fatalf("unexpected risers %+v", cat.Risers)
	}

	if err := s.Save(cat); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, RisersFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "name,center_x,center_y,height,diameter\n") {
		t.Errorf("saved risers should carry the diameter column:\n%s", data)
	}

	s.RiserDiameter = 0
	reloaded, err := s.Load()
	if err != nil {
		t.Fatalf("reload after migration failed: %v", err)
	}
	if reloaded.Risers[0].Diameter != 60 {
		t.Errorf("expected stored diameter 60, got %v", reloaded.Risers[0].Diameter)
	}
}

func TestStoreLoadRejectsBadRows(t *testing.T) {
	tests := []struct {
		name  string
		tools string
		parts string
		want  error
	}{
		{
			name:  "non-numeric diameter",
			tools: "name,diameter,inserts,spindle_speed,feed_rate,tool_number,length\nT3,big,4,434,347,3,120\n",
			parts: "name,dimension_x,dimension_y,tool,riser,cut_depth,table_count\n",
		},
		{
			name:  "out of range tool number",
			tools: "name,diameter,inserts,spindle_speed,feed_rate,tool_number,length\nT3,88,4,434,347,11,120\n",
			parts: "name,dimension_x,dimension_y,tool,riser,cut_depth,table_count\n",
			want:  model.ErrOutOfRange,
		},
		{
			name:  "dangling tool",
			tools: "name,diameter,inserts,spindle_speed,feed_rate,tool_number,length\nT3,88,4,434,347,3,120\n",
			parts: "name,dimension_x,dimension_y,tool,riser,cut_depth,table_count\n1234,300,200,T9,,5,1\n",
			want:  model.ErrNotFound,
		},
		{
			name:  "duplicate tool",
			tools: "name,diameter,inserts,spindle_speed,feed_rate,tool_number,length\nT3,88,4,434,347,3,120\nT3,50,2,637,191,4,90\n",
			parts: "name,dimension_x,dimension_y,tool,riser,cut_depth,table_count\n",
			want:  model.ErrDuplicateName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			_ = os.WriteFile(filepath.Join(dir, ToolsFile), []byte(tt.tools), 0644)
			_ = os.WriteFile(filepath.Join(dir, PartsFile), []byte(tt.parts), 0644)

			_, err := NewStore(dir, nil).Load()
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestReadRowsNormalisesHeaders(t *testing.T) {
	rows, err := ReadRows(strings.NewReader("\ufeffName, Diameter\nT1, 10\n,\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0]["name"] != "T1" || rows[0]["diameter"] != "10" {
		t.Errorf("unexpected row %+v", rows[0])
	}
}

func TestRowIntegerAcceptsWholeFloats(t *testing.T) {
	tool, err := ParseToolRow(Row{
		"name": "T1", "diameter": "10", "inserts": "2", "spindle_speed": "434.0",
		"feed_rate": "347", "tool_number": "1", "length": "50",
	})
	if err != nil {
		t.Fatalf("ParseToolRow: %v", err)
	}
	if tool.SpindleSpeed != 434 {
		t.Errorf("expected 434, got %d", tool.SpindleSpeed)
	}

	_, err = ParseToolRow(Row{
		"name": "T1", "diameter": "10", "inserts": "2.5", "spindle_speed": "434",
		"feed_rate": "347", "tool_number": "1", "length": "50",
	})
	if err == nil {
		t.Error("expected error for fractional inserts")
	}
}

func TestResolveDataDir(t *testing.T) {
	if got := ResolveDataDir("/srv/millpath"); got != "/srv/millpath" {
		t.Errorf("expected path unchanged, got %s", got)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ResolveDataDir("~/shop"); got != filepath.Join(home, "shop") {
		t.Errorf("expected ~ expansion, got %s", got)
	}
}
