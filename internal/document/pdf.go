package document

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// RenderPDF draws a finished layout into PDF bytes. All placement decisions
// were made by the engine; the renderer only draws ops at their recorded
// positions, so rendering never changes pagination.
func RenderPDF(l *Layout, title string) ([]byte, error) {
	geo := l.Geo
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAutoPageBreak(false, 0)

	x := geo.Margin
	w := geo.ContentWidth()

	for pi, page := range l.Pages {
		pdf.AddPage()
		for oi, op := range page.Ops {
			switch op.Kind {
			case OpText:
				pdf.SetTextColor(0, 0, 0)
				pdf.SetFont("Helvetica", op.Style, op.Size)
				pdf.Text(x, op.Y+op.H*0.75, op.Text)

			case OpBand:
				pdf.SetFillColor(op.R, op.G, op.B)
				pdf.Rect(x, op.Y, w, op.H, "F")
				pdf.SetTextColor(255, 255, 255)
				pdf.SetFont("Helvetica", op.Style, op.Size)
				pdf.SetXY(x, op.Y)
				pdf.CellFormat(w, op.H, op.Text, "", 0, "CM", false, 0, "")
				pdf.SetTextColor(0, 0, 0)

			case OpRect:
				pdf.SetDrawColor(130, 130, 130)
				pdf.Rect(x, op.Y, w, op.H, "D")

			case OpImage:
				name := fmt.Sprintf("img-%d-%d", pi, oi)
				opts := gofpdf.ImageOptions{ImageType: "PNG"}
				pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(op.Image))
				pdf.ImageOptions(name, x, op.Y, op.W, op.H, false, opts, 0, "")

			case OpQR:
				png, err := qrcode.Encode(op.Text, qrcode.Medium, 256)
				if err != nil {
					// A bad routing code is an asset error: skip the slot.
					continue
				}
				name := fmt.Sprintf("qr-%d-%d", pi, oi)
				opts := gofpdf.ImageOptions{ImageType: "PNG"}
				pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
				pdf.ImageOptions(name, x, op.Y, op.W, op.H, false, opts, 0, "")

			case OpRule:
				pdf.SetDrawColor(170, 170, 170)
				pdf.Line(x, op.Y+1, x+w, op.Y+1)
			}
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
