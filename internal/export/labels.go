package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/MoldCut/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// LabelInfo holds the data encoded into each piece label's QR code.
type LabelInfo struct {
	PieceID       string  `json:"piece_id"`
	PieceName     string  `json:"piece"`
	MoldID        string  `json:"mold_id"`
	MoldName      string  `json:"mold"`
	Width         float64 `json:"width_mm"`
	Height        float64 `json:"height_mm"`
	CutCount      int     `json:"cut"` // pieces to cut for the batch
	Grain         string  `json:"grain"`
	RotationFixed bool    `json:"rotation_fixed"`
}

// labelSheet is an A4 sheet of adhesive labels. The default matches the
// common 21-up layout (Avery L7160: 3 x 7 labels of 63.5 x 38.1 mm).
type labelSheet struct {
	top, left     float64 // mm to the first label
	width, height float64 // mm per label
	pitchX        float64 // mm between label origins across
	cols, rows    int
}

var a4Labels = labelSheet{top: 15.15, left: 7.2, width: 63.5, height: 38.1, pitchX: 66.0, cols: 3, rows: 7}

const (
	labelQRSize = 26.0 // mm
	labelInset  = 2.5  // mm
)

func (s labelSheet) perPage() int { return s.cols * s.rows }

// origin returns the top-left corner of the i-th label on its page.
func (s labelSheet) origin(i int) (x, y float64) {
	pos := i % s.perPage()
	return s.left + float64(pos%s.cols)*s.pitchX, s.top + float64(pos/s.cols)*s.height
}

// CollectLabelInfos builds one label per piece of the mold for a batch of
// qty products, in the order given.
func CollectLabelInfos(mold model.Mold, pieces []model.Piece, qty int) []LabelInfo {
	if qty < 1 {
		qty = 1
	}
	labels := make([]LabelInfo, 0, len(pieces))
	for _, p := range pieces {
		repeat := p.RepeatCount
		if repeat < 1 {
			repeat = 1
		}
		labels = append(labels, LabelInfo{
			PieceID:       p.ID,
			PieceName:     p.Name,
			MoldID:        mold.ID,
			MoldName:      mold.Name,
			Width:         p.BBoxWidthMM,
			Height:        p.BBoxHeightMM,
			CutCount:      repeat * qty,
			Grain:         p.Grain.String(),
			RotationFixed: p.RotationFixed,
		})
	}
	return labels
}

// ExportLabels writes a PDF of QR-coded cutting labels, one per piece of the
// mold, on A4 label sheets. The QR code holds the LabelInfo as JSON so the
// cutting room can scan a bundle back to its piece.
func ExportLabels(path string, mold model.Mold, pieces []model.Piece, qty int) error {
	labels := CollectLabelInfos(mold, pieces, qty)
	if len(labels) == 0 {
		return fmt.Errorf("mold %s has no pieces to label", mold.Name)
	}

	sheet := a4Labels
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	for i, info := range labels {
		if i%sheet.perPage() == 0 {
			pdf.AddPage()
		}
		x, y := sheet.origin(i)
		if err := drawLabel(pdf, sheet, x, y, i, info); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", info.PieceName, err)
		}
	}
	return pdf.OutputFileAndClose(path)
}

// labelLine is one text line of a label.
type labelLine struct {
	style  string
	size   float64
	gray   int
	height float64
	text   string
}

func labelLines(info LabelInfo) []labelLine {
	lines := []labelLine{
		{"B", 10, 0, 5, info.PieceName},
		{"", 7, 90, 4, info.MoldName},
		{"", 8, 0, 4.5, fmt.Sprintf("%.0f x %.0f mm", info.Width, info.Height)},
		{"B", 8, 0, 4.5, fmt.Sprintf("Cut %d", info.CutCount)},
	}
	if info.Grain != model.GrainUnspecified.String() {
		lines = append(lines, labelLine{"I", 7, 60, 4, "Grain " + info.Grain})
	}
	if info.RotationFixed {
		lines = append(lines, labelLine{"I", 7, 60, 4, "Do not rotate"})
	}
	return lines
}

// drawLabel renders the text block on the left and the QR code on the right
// of one label cell.
func drawLabel(pdf *fpdf.Fpdf, sheet labelSheet, x, y float64, idx int, info LabelInfo) error {
	payload, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}
	png, err := qrcode.Encode(string(payload), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	pdf.SetDrawColor(210, 210, 210)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, sheet.width, sheet.height, "D")

	name := fmt.Sprintf("label-%d-%s", idx, info.PieceID)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	pdf.ImageOptions(name, x+sheet.width-labelQRSize-labelInset, y+(sheet.height-labelQRSize)/2,
		labelQRSize, labelQRSize, false, opts, 0, "")

	textW := sheet.width - labelQRSize - 3*labelInset
	cursor := y + labelInset
	for _, l := range labelLines(info) {
		pdf.SetFont("Helvetica", l.style, l.size)
		pdf.SetTextColor(l.gray, l.gray, l.gray)
		pdf.SetXY(x+labelInset, cursor)
		pdf.CellFormat(textW, l.height, truncate(pdf, l.text, textW), "", 0, "L", false, 0, "")
		cursor += l.height
	}
	pdf.SetTextColor(0, 0, 0)
	return nil
}
