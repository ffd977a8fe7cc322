package toolpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/MillPath/internal/model"
)

func newTestCatalog(t *testing.T) *model.Catalog {
	t.Helper()
	cat := model.NewCatalog()
	require.NoError(t, cat.AddTool(model.Tool{
		Name: "Face88", Diameter: 88, Inserts: 4, ToolNumber: 1, Length: 120,
		SpindleSpeed: 434, FeedRate: 347,
	}))
	require.NoError(t, cat.AddRiser(model.Riser{Name: "R1", Diameter: 40, CenterX: 0, CenterY: 300, Height: 30}))
	require.NoError(t, cat.AddPart(model.Part{
		Name: "1234", DimensionX: 300, DimensionY: 200, CutDepth: 5, TableCount: 1, Tool: "Face88",
	}))
	require.NoError(t, cat.AddPart(model.Part{
		Name: "5678", DimensionX: 150, DimensionY: 100, CutDepth: 2, TableCount: 2, Tool: "Face88", Riser: "R1",
	}))
	return cat
}

func TestPlanFromCatalog_Single(t *testing.T) {
	pl := New(model.DefaultSettings())
	plan, err := pl.PlanFromCatalog(newTestCatalog(t), "1234", 0)
	require.NoError(t, err)

	assert.Equal(t, 1, plan.TableCount())
	assert.InDelta(t, 176.4, plan.Offsets[0].X, 1e-9)
	assert.InDelta(t, 110.0, plan.Offsets[0].Y, 1e-9)
	assert.Equal(t, []float64{0.8, 0.8, 0.8, 0.8, 0.8, 0.9, 0.1}, plan.Steps)
	assert.Equal(t, 7, plan.PassCount())
	assert.InDelta(t, 5.0, plan.TotalDepth(), 1e-9)
	assert.Nil(t, plan.Riser)
	assert.Equal(t, 434, plan.Tool.SpindleSpeed)
}

func TestPlanFromCatalog_TwoWithRiser(t *testing.T) {
	pl := New(model.DefaultSettings())
	plan, err := pl.PlanFromCatalog(newTestCatalog(t), "5678", 0)
	require.NoError(t, err)

	require.Equal(t, 2, plan.TableCount())
	require.NotNil(t, plan.Riser)
	assert.Equal(t, "R1", plan.Riser.Name)
	assert.InDelta(t, -plan.Offsets[0].X, plan.Offsets[1].X, 1e-9)
}

func TestPlanFromCatalog_TableOverride(t *testing.T) {
	pl := New(model.DefaultSettings())
	plan, err := pl.PlanFromCatalog(newTestCatalog(t), "1234", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, plan.TableCount())
	assert.Equal(t, 2, plan.Part.TableCount)
}

func TestPlanFromCatalog_Dangling(t *testing.T) {
	pl := New(model.DefaultSettings())
	cat := newTestCatalog(t)

	_, err := pl.PlanFromCatalog(cat, "9999", 0)
	assert.ErrorIs(t, err, model.ErrNotFound)

	// Bypass AddPart to simulate a hand-edited store.
	cat.Parts[0].Tool = "Ghost"
	_, err = pl.PlanFromCatalog(cat, "1234", 0)
	assert.ErrorIs(t, err, model.ErrNotFound)

	cat.Parts[1].Riser = "Ghost"
	_, err = pl.PlanFromCatalog(cat, "5678", 0)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestPlan_MismatchedReferences(t *testing.T) {
	pl := New(model.DefaultSettings())
	cat := newTestCatalog(t)
	part, _ := cat.Part("5678")
	tool, _ := cat.Tool("Face88")

	_, err := pl.Plan(part, tool, nil, 0)
	assert.ErrorIs(t, err, model.ErrNotFound, "riser required but missing")

	tool.Name = "Other"
	_, err = pl.Plan(part, tool, &cat.Risers[0], 0)
	assert.ErrorIs(t, err, model.ErrNotFound, "wrong tool")
}

func TestPlan_DegenerateTool(t *testing.T) {
	pl := New(model.DefaultSettings())
	part := model.Part{Name: "1234", DimensionX: 100, DimensionY: 100, CutDepth: 2, TableCount: 1}

	_, err := pl.Plan(part, model.Tool{Name: "T", Diameter: 0, SpindleSpeed: 1, FeedRate: 1}, nil, 0)
	assert.ErrorIs(t, err, ErrDegenerate)

	_, err = pl.Plan(part, model.Tool{Name: "T", Diameter: 10}, nil, 0)
	assert.ErrorIs(t, err, ErrDegenerate)

	part.CutDepth = 0
	_, err = pl.Plan(part, model.Tool{Name: "T", Diameter: 10, SpindleSpeed: 1, FeedRate: 1}, nil, 0)
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestPlanner_Suggest(t *testing.T) {
	pl := New(model.DefaultSettings())
	fs, err := pl.Suggest(88, 4)
	require.NoError(t, err)
	assert.Equal(t, FeedSpeed{SpindleSpeed: 434, FeedRate: 347}, fs)

	s := model.DefaultSettings()
	s.SurfaceSpeed = 150
	fast, err := New(s).Suggest(88, 4)
	require.NoError(t, err)
	assert.Greater(t, fast.SpindleSpeed, fs.SpindleSpeed)
}

func TestPlan_CopiesRiser(t *testing.T) {
	pl := New(model.DefaultSettings())
	cat := newTestCatalog(t)
	plan, err := pl.PlanFromCatalog(cat, "5678", 0)
	require.NoError(t, err)
	plan.Riser.Height = 999
	assert.Equal(t, 30.0, cat.Risers[0].Height)
}
