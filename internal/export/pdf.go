// Package export writes shop documents for a planned job: the PDF setup
// sheet, QR-coded part labels and a DXF drawing of the table layout.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/MillPath/internal/gcode"
	"github.com/piwi3910/MillPath/internal/toolpath"
)

// partColor represents an RGB color for a part copy.
type partColor struct {
	R, G, B int
}

var partColors = []partColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	columnWidth  = 125.0
	setupQRSize  = 40.0
)

// Job is everything the setup sheet prints besides the plan itself.
type Job struct {
	ProgramID string
	Profile   string
	Summary   gcode.Summary
	Warnings  []string
}

// JobSummary is the payload of the setup sheet's QR code.
type JobSummary struct {
	ProgramID    string            `json:"program_id"`
	Part         string            `json:"part"`
	Tool         string            `json:"tool"`
	ToolNumber   int               `json:"tool_number"`
	SpindleSpeed int               `json:"spindle_rpm"`
	FeedRate     int               `json:"feed_mm_min"`
	Copies       int               `json:"copies"`
	Depth        float64           `json:"depth_mm"`
	Passes       int               `json:"passes"`
	Offsets      []toolpath.Offset `json:"offsets"`
	Riser        string            `json:"riser,omitempty"`
	Profile      string            `json:"profile"`
}

// NewJobSummary collects the QR payload for plan.
func NewJobSummary(plan toolpath.Plan, job Job) JobSummary {
	s := JobSummary{
		ProgramID:    job.ProgramID,
		Part:         plan.Part.Name,
		Tool:         plan.Tool.Name,
		ToolNumber:   plan.Tool.ToolNumber,
		SpindleSpeed: plan.Tool.SpindleSpeed,
		FeedRate:     plan.Tool.FeedRate,
		Copies:       plan.TableCount(),
		Depth:        plan.TotalDepth(),
		Passes:       plan.PassCount(),
		Offsets:      plan.Offsets,
		Profile:      job.Profile,
	}
	if plan.Riser != nil {
		s.Riser = plan.Riser.Name
	}
	return s
}

// ExportSetupSheet writes a one-page setup sheet for the operator: tool
// data, part offsets, the pass table, riser data, a layout diagram and a
// QR code with the job summary.
func ExportSetupSheet(path string, plan toolpath.Plan, job Job) error {
	if len(plan.Offsets) == 0 || len(plan.Steps) == 0 {
		return fmt.Errorf("plan for part %s has nothing to machine", plan.Part.Name)
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Setup sheet: part %s (%.1f x %.1f mm)", plan.Part.Name, plan.Part.DimensionX, plan.Part.DimensionY)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	sub := fmt.Sprintf("Program %s | Profile %s | %d on table", job.ProgramID, job.Profile, plan.TableCount())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, sub, "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+headerHeight+6, pageWidth-marginRight, marginTop+headerHeight+6)

	y := marginTop + headerHeight + 10
	y = drawKeyValues(pdf, "Tool", y, []keyValue{
		{"Name", plan.Tool.Name},
		{"Tool number", fmt.Sprintf("T%d", plan.Tool.ToolNumber)},
		{"Diameter", fmt.Sprintf("%.1f mm (%d inserts)", plan.Tool.Diameter, plan.Tool.Inserts)},
		{"Length", fmt.Sprintf("%.1f mm", plan.Tool.Length)},
		{"Spindle speed", fmt.Sprintf("%d RPM", plan.Tool.SpindleSpeed)},
		{"Feed rate", fmt.Sprintf("%d mm/min", plan.Tool.FeedRate)},
	})

	offsets := make([]keyValue, len(plan.Offsets))
	for i, off := range plan.Offsets {
		offsets[i] = keyValue{fmt.Sprintf("Copy %d", i+1), fmt.Sprintf("X %.2f  Y %.2f", off.X, off.Y)}
	}
	y = drawKeyValues(pdf, "Part centres", y, offsets)

	if plan.Riser != nil {
		r := plan.Riser
		y = drawKeyValues(pdf, "Riser", y, []keyValue{
			{"Name", r.Name},
			{"Centre", fmt.Sprintf("X %.2f  Y %.2f", r.CenterX, r.CenterY)},
			{"Diameter / height", fmt.Sprintf("%.1f / %.1f mm", r.Diameter, r.Height)},
		})
	}

	if job.Summary.Moves > 0 {
		y = drawKeyValues(pdf, "Program", y, []keyValue{
			{"Moves", fmt.Sprintf("%d (%d plunges)", job.Summary.Moves, job.Summary.Plunges)},
			{"Cut distance", fmt.Sprintf("%.0f mm", job.Summary.CutDistance)},
			{"Cut time", fmt.Sprintf("%.1f min", job.Summary.CutMinutes)},
		})
	}

	drawPassTable(pdf, plan, y)

	if err := drawJobQR(pdf, plan, job); err != nil {
		return err
	}
	drawLayout(pdf, plan, marginLeft+columnWidth+10, marginTop+setupQRSize+5)

	if len(job.Warnings) > 0 {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetTextColor(200, 0, 0)
		wy := pageHeight - marginBottom - 4*float64(len(job.Warnings))
		for _, w := range job.Warnings {
			pdf.SetXY(marginLeft+columnWidth+10, wy)
			pdf.CellFormat(pageWidth-marginRight-marginLeft-columnWidth-10, 4, "WARNING: "+w, "", 0, "L", false, 0, "")
			wy += 4
		}
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom+4)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by MillPath", "", 0, "C", false, 0, "")

	return pdf.OutputFileAndClose(path)
}

type keyValue struct {
	label string
	value string
}

// drawKeyValues renders a titled block in the left column and returns
// the y below it.
func drawKeyValues(pdf *fpdf.Fpdf, title string, y float64, items []keyValue) float64 {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(columnWidth, 6, title, "", 0, "L", false, 0, "")
	y += 6

	for _, item := range items {
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetXY(marginLeft+3, y)
		pdf.CellFormat(35, 4.5, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(columnWidth-38, 4.5, item.value, "", 0, "L", false, 0, "")
		y += 4.5
	}
	return y + 2
}

// drawPassTable lists every step-down with its cumulative depth. Long
// sequences wrap into a second column pair.
func drawPassTable(pdf *fpdf.Fpdf, plan toolpath.Plan, y float64) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(columnWidth, 6, fmt.Sprintf("Passes (%d, total %.2f mm)", plan.PassCount(), plan.TotalDepth()), "", 0, "L", false, 0, "")
	y += 7

	colWidths := []float64{12, 22, 24}
	headers := []string{"#", "Step", "Depth"}
	rowHeight := 4.0
	maxRows := int((pageHeight - marginBottom - y - rowHeight) / rowHeight)
	if maxRows < 1 {
		maxRows = 1
	}

	depths := toolpath.CumulativeDepths(plan.Steps)
	tableWidth := colWidths[0] + colWidths[1] + colWidths[2]
	for block := 0; block*maxRows < len(plan.Steps) && block < 2; block++ {
		x := marginLeft + float64(block)*(tableWidth+4)
		ry := y

		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(230, 230, 230)
		xPos := x
		for i, h := range headers {
			pdf.SetXY(xPos, ry)
			pdf.CellFormat(colWidths[i], rowHeight, h, "1", 0, "C", true, 0, "")
			xPos += colWidths[i]
		}
		ry += rowHeight

		pdf.SetFont("Helvetica", "", 8)
		for i := block * maxRows; i < len(plan.Steps) && i < (block+1)*maxRows; i++ {
			if i%2 == 0 {
				pdf.SetFillColor(245, 245, 245)
			} else {
				pdf.SetFillColor(255, 255, 255)
			}
			cells := []string{
				fmt.Sprintf("%d", i+1),
				fmt.Sprintf("%.2f mm", plan.Steps[i]),
				fmt.Sprintf("%.2f mm", depths[i]),
			}
			xPos = x
			for j, c := range cells {
				pdf.SetXY(xPos, ry)
				pdf.CellFormat(colWidths[j], rowHeight, c, "1", 0, "C", true, 0, "")
				xPos += colWidths[j]
			}
			ry += rowHeight
		}
	}
}

// drawJobQR places the job summary QR code in the top right corner.
func drawJobQR(pdf *fpdf.Fpdf, plan toolpath.Plan, job Job) error {
	qrData, err := json.Marshal(NewJobSummary(plan, job))
	if err != nil {
		return fmt.Errorf("failed to marshal job summary: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_job_%s", plan.Part.Name)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
	pdf.ImageOptions(imgName, pageWidth-marginRight-setupQRSize, marginTop, setupQRSize, setupQRSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	return nil
}

// drawLayout draws the table from above: part copies, the cutter's swept
// envelope, the riser and the table origin. Table Y points up, page Y down.
func drawLayout(pdf *fpdf.Fpdf, plan toolpath.Plan, left, top float64) {
	b := layoutBounds(plan)
	drawWidth := pageWidth - marginRight - left
	drawHeight := pageHeight - marginBottom - 20 - top

	scale := math.Min(drawWidth/b.width(), drawHeight/b.height())
	px := func(x float64) float64 { return left + (x-b.minX)*scale }
	py := func(y float64) float64 { return top + (b.maxY-y)*scale }

	r := plan.Tool.Radius()
	halfX, halfY := plan.Part.DimensionX/2, plan.Part.DimensionY/2
	for i, off := range plan.Offsets {
		col := partColors[i%len(partColors)]

		// Swept envelope
		pdf.SetDrawColor(col.R, col.G, col.B)
		pdf.SetLineWidth(0.2)
		pdf.SetDashPattern([]float64{1.5, 1}, 0)
		pdf.Rect(px(off.X-halfX-2*r), py(off.Y+halfY+2*r), (plan.Part.DimensionX+4*r)*scale, (plan.Part.DimensionY+4*r)*scale, "D")
		pdf.SetDashPattern([]float64{}, 0)

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pw, ph := plan.Part.DimensionX*scale, plan.Part.DimensionY*scale
		pdf.Rect(px(off.X-halfX), py(off.Y+halfY), pw, ph, "FD")

		if pw > 15 && ph > 8 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			label := fmt.Sprintf("%s #%d", plan.Part.Name, i+1)
			lw := pdf.GetStringWidth(label)
			pdf.SetXY(px(off.X)-lw/2, py(off.Y)-2)
			pdf.CellFormat(lw, 4, label, "", 0, "C", false, 0, "")
		}
	}

	if plan.Riser != nil {
		rs := plan.Riser
		pdf.SetFillColor(255, 200, 200)
		pdf.SetDrawColor(200, 0, 0)
		pdf.SetLineWidth(0.3)
		pdf.Circle(px(rs.CenterX), py(rs.CenterY), rs.Radius()*scale, "FD")
	}

	// Origin cross
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	pdf.Line(px(0)-3, py(0), px(0)+3, py(0))
	pdf.Line(px(0), py(0)-3, px(0), py(0)+3)

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(80, 80, 80)
	pdf.SetXY(left, top+b.height()*scale+2)
	pdf.CellFormat(drawWidth, 4, fmt.Sprintf("Table layout, %.0f x %.0f mm shown", b.width(), b.height()), "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

type bounds struct {
	minX, minY, maxX, maxY float64
}

func (b bounds) width() float64  { return b.maxX - b.minX }
func (b bounds) height() float64 { return b.maxY - b.minY }

func (b *bounds) include(x, y float64) {
	b.minX = math.Min(b.minX, x)
	b.minY = math.Min(b.minY, y)
	b.maxX = math.Max(b.maxX, x)
	b.maxY = math.Max(b.maxY, y)
}

// layoutBounds covers the origin, every swept envelope and the riser,
// plus a 10 mm border.
func layoutBounds(plan toolpath.Plan) bounds {
	b := bounds{}
	r := plan.Tool.Radius()
	hx, hy := plan.Part.DimensionX/2+2*r, plan.Part.DimensionY/2+2*r
	for _, off := range plan.Offsets {
		b.include(off.X-hx, off.Y-hy)
		b.include(off.X+hx, off.Y+hy)
	}
	if plan.Riser != nil {
		rs := plan.Riser
		b.include(rs.CenterX-rs.Radius(), rs.CenterY-rs.Radius())
		b.include(rs.CenterX+rs.Radius(), rs.CenterY+rs.Radius())
	}
	b.minX -= 10
	b.minY -= 10
	b.maxX += 10
	b.maxY += 10
	return b
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
