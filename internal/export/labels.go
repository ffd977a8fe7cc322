package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/MillPath/internal/toolpath"
)

// LabelInfo holds the data encoded into each part label's QR code.
type LabelInfo struct {
	PartLabel string  `json:"part"`
	Copy      int     `json:"copy"`
	Width     float64 `json:"width_mm"`
	Height    float64 `json:"height_mm"`
	Depth     float64 `json:"depth_mm"`
	Tool      string  `json:"tool"`
	ProgramID string  `json:"program_id,omitempty"`
	X         float64 `json:"x_mm"`
	Y         float64 `json:"y_mm"`
}

// labelSheet describes an A4 sheet of self-adhesive labels in mm.
type labelSheet struct {
	top, left   float64
	w, h        float64
	pitchX      float64
	cols, rows  int
	qr, padding float64
}

// Avery L7160 / 3x7 on A4.
var l7160 = labelSheet{
	top: 15.1, left: 7.2,
	w: 63.5, h: 38.1,
	pitchX: 66.0,
	cols: 3, rows: 7,
	qr: 30, padding: 2.5,
}

func (s labelSheet) perPage() int { return s.cols * s.rows }

// cell returns the top-left corner of the i-th label on its page.
func (s labelSheet) cell(i int) (x, y float64) {
	n := i % s.perPage()
	return s.left + float64(n%s.cols)*s.pitchX, s.top + float64(n/s.cols)*s.h
}

// ExportLabels writes a PDF of QR-coded labels, one per machined copy
// of each plan's part, so finished parts can be matched to their program.
func ExportLabels(path string, programID string, plans ...toolpath.Plan) error {
	labels := CollectLabelInfos(programID, plans...)
	if len(labels) == 0 {
		return fmt.Errorf("no parts to generate labels for")
	}

	sheet := l7160
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	for i, label := range labels {
		if i%sheet.perPage() == 0 {
			pdf.AddPage()
		}
		x, y := sheet.cell(i)
		if err := sheet.render(pdf, x, y, label); err != nil {
			return fmt.Errorf("label for part %s copy %d: %w", label.PartLabel, label.Copy, err)
		}
	}
	return pdf.OutputFileAndClose(path)
}

func (s labelSheet) render(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	payload, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encode label: %w", err)
	}
	png, err := qrcode.Encode(string(payload), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("qr code: %w", err)
	}
	img := fmt.Sprintf("label_%s_%d", info.PartLabel, info.Copy)
	pdf.RegisterImageOptionsReader(img, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, s.w, s.h, "D")
	pdf.ImageOptions(img, x+s.w-s.qr-s.padding, y+(s.h-s.qr)/2, s.qr, s.qr, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	tx := x + s.padding
	tw := s.w - s.qr - 3*s.padding
	line := func(dy, size float64, style string, grey int, text string) {
		pdf.SetFont("Helvetica", style, size)
		pdf.SetTextColor(grey, grey, grey)
		pdf.SetXY(tx, y+s.padding+dy)
		pdf.CellFormat(tw, size*0.45, text, "", 0, "L", false, 0, "")
	}
	line(0, 12, "B", 0, fmt.Sprintf("%s #%d", info.PartLabel, info.Copy))
	line(7, 7, "", 0, fmt.Sprintf("%.1f x %.1f mm", info.Width, info.Height))
	line(11, 7, "", 0, fmt.Sprintf("depth %.2f mm", info.Depth))
	line(16, 6, "", 100, fmt.Sprintf("%s @ X%.1f Y%.1f", info.Tool, info.X, info.Y))
	if id := info.ProgramID; id != "" {
		if len(id) > 8 {
			id = id[:8]
		}
		line(20, 6, "", 100, "prog "+id)
	}
	pdf.SetTextColor(0, 0, 0)
	return nil
}

// CollectLabelInfos returns one label per copy of each plan's part.
func CollectLabelInfos(programID string, plans ...toolpath.Plan) []LabelInfo {
	var labels []LabelInfo
	for _, plan := range plans {
		for i, off := range plan.Offsets {
			labels = append(labels, LabelInfo{
				PartLabel: plan.Part.Name,
				Copy:      i + 1,
				Width:     plan.Part.DimensionX,
				Height:    plan.Part.DimensionY,
				Depth:     plan.TotalDepth(),
				Tool:      plan.Tool.Name,
				ProgramID: programID,
				X:         off.X,
				Y:         off.Y,
			})
		}
	}
	return labels
}
