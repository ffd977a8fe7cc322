package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/MillPath/internal/toolpath"
)

// DXF layer names used by the layout drawing.
const (
	LayerParts    = "PARTS"
	LayerToolpath = "TOOLPATH"
	LayerEnvelope = "ENVELOPE"
	LayerRiser    = "RISER"
	LayerOrigin   = "ORIGIN"
)

// ExportLayoutDXF writes the table layout in table coordinates: part
// outlines, the cutter centreline of the contour pass, the swept
// envelope, the riser and an origin mark, each on its own layer.
func ExportLayoutDXF(path string, plan toolpath.Plan) error {
	if len(plan.Offsets) == 0 {
		return fmt.Errorf("plan for part %s has no placements", plan.Part.Name)
	}

	d := dxf.NewDrawing()
	layers := []struct {
		name  string
		color color.ColorNumber
	}{
		{LayerParts, color.White},
		{LayerToolpath, color.Green},
		{LayerEnvelope, color.Cyan},
		{LayerRiser, color.Red},
		{LayerOrigin, color.Yellow},
	}
	for _, l := range layers {
		if _, err := d.AddLayer(l.name, l.color, dxf.DefaultLineType, false); err != nil {
			return fmt.Errorf("failed to add layer %s: %w", l.name, err)
		}
	}

	r := plan.Tool.Radius()
	halfX, halfY := plan.Part.DimensionX/2, plan.Part.DimensionY/2
	for _, off := range plan.Offsets {
		if err := rectangle(d, LayerParts, off.X, off.Y, halfX, halfY); err != nil {
			return err
		}
		if err := rectangle(d, LayerToolpath, off.X, off.Y, halfX+r, halfY+r); err != nil {
			return err
		}
		if err := rectangle(d, LayerEnvelope, off.X, off.Y, halfX+2*r, halfY+2*r); err != nil {
			return err
		}
	}

	if plan.Riser != nil {
		rs := plan.Riser
		if err := d.ChangeLayer(LayerRiser); err != nil {
			return err
		}
		if _, err := d.Circle(rs.CenterX, rs.CenterY, 0, rs.Radius()); err != nil {
			return err
		}
	}

	if err := d.ChangeLayer(LayerOrigin); err != nil {
		return err
	}
	if _, err := d.Line(-10, 0, 0, 10, 0, 0); err != nil {
		return err
	}
	if _, err := d.Line(0, -10, 0, 0, 10, 0); err != nil {
		return err
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save DXF: %w", err)
	}
	return nil
}

// rectangle draws an axis-aligned rectangle centred on (cx, cy) as four lines.
func rectangle(d *drawing.Drawing, layer string, cx, cy, hx, hy float64) error {
	if err := d.ChangeLayer(layer); err != nil {
		return err
	}
	corners := [][2]float64{
		{cx - hx, cy - hy},
		{cx + hx, cy - hy},
		{cx + hx, cy + hy},
		{cx - hx, cy + hy},
	}
	for i := range corners {
		a, b := corners[i], corners[(i+1)%len(corners)]
		if _, err := d.Line(a[0], a[1], 0, b[0], b[1], 0); err != nil {
			return err
		}
	}
	return nil
}
