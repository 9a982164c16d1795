package document

import "fmt"

// OpKind tags one placed drawing operation.
type OpKind int

const (
	OpText OpKind = iota
	OpBand       // colored band with centered text
	OpRect       // empty work/answer zone outline
	OpImage
	OpQR
	OpRule
)

// Op is a single atomic placement on a page. Text ops hold exactly one
// already-wrapped line; multi-line content is placed line by line so a page
// break may fall between lines but never inside a fixed-height op.
type Op struct {
	Kind  OpKind
	Y     float64
	H     float64
	Text  string
	Size  float64 // font size in points
	Style string  // "", "B", "I"
	Image []byte
	W     float64
	R     int
	G     int
	B     int
}

// Page is one laid-out page.
type Page struct {
	Ops []Op
}

// Layout is the finished placement of a whole document, ready to render.
type Layout struct {
	Geo   Geometry
	Pages []Page
}

func (l *Layout) PageCount() int {
	return len(l.Pages)
}

// runningHeader is re-emitted at the top of every page after a student's
// first, so a sheet separated from its stack stays attributable.
type runningHeader struct {
	student string
	level   string
	form    string
}

// Engine walks content top to bottom with a single mutable cursor
// (current page, yPosition) and inserts page breaks whenever the next op
// would not fit above the bottom margin. Layout is fully deterministic:
// the same input sequence always yields the same pages.
type Engine struct {
	geo   Geometry
	pages []Page
	y     float64
	// top is where content starts on the current page: the top margin, or
	// just under the running header on continuation pages.
	top         float64
	header      *runningHeader
	studentPage int
}

func NewEngine(geo Geometry) *Engine {
	return &Engine{
		geo:   geo,
		pages: []Page{{}},
		y:     geo.Margin,
		top:   geo.Margin,
	}
}

func (e *Engine) Geometry() Geometry {
	return e.geo
}

// Finish returns the completed layout.
func (e *Engine) Finish() *Layout {
	return &Layout{Geo: e.geo, Pages: e.pages}
}

// Y exposes the cursor for tests.
func (e *Engine) Y() float64 {
	return e.y
}

func (e *Engine) atTop() bool {
	return e.y <= e.top
}

// newPage starts a fresh page and, mid-worksheet, re-emits the compact
// running header.
func (e *Engine) newPage() {
	e.pages = append(e.pages, Page{})
	e.y = e.geo.Margin
	e.top = e.geo.Margin

	if e.header != nil {
		e.studentPage++
		text := fmt.Sprintf("%s  ·  Level %s  ·  Form %s  ·  Page %d",
			e.header.student, e.header.level, e.header.form, e.studentPage)
		e.append(Op{Kind: OpText, Text: text, Size: 8, Style: "I", H: 4})
		e.append(Op{Kind: OpRule, H: 2})
		e.top = e.y
	}
}

// ensureFit breaks the page if h does not fit above the bottom margin. An op
// that does not fit even at the top of its page (taller than a whole page,
// or taller than the span left under a running header) is placed at the
// content top and overflows below; it is never silently dropped and never
// triggers a second break.
func (e *Engine) ensureFit(h float64) {
	if e.y+h <= e.geo.Bottom() {
		return
	}
	if e.atTop() {
		return
	}
	e.newPage()
}

func (e *Engine) append(op Op) {
	op.Y = e.y
	page := &e.pages[len(e.pages)-1]
	page.Ops = append(page.Ops, op)
	e.y += op.H
}

func (e *Engine) place(op Op) {
	e.ensureFit(op.H)
	e.append(op)
}

// BeginWorksheet opens a new student worksheet on a fresh page. The running
// header is suppressed on the student's first page.
func (e *Engine) BeginWorksheet(student, level, form string) {
	if len(e.pages[len(e.pages)-1].Ops) > 0 || len(e.pages) > 1 {
		e.header = nil
		e.newPage()
	}
	e.header = &runningHeader{student: student, level: level, form: form}
	e.studentPage = 1
}

// BeginSection opens a non-worksheet trailing section (the answer key) on a
// fresh page with no running header.
func (e *Engine) BeginSection() {
	e.header = nil
	e.studentPage = 0
	if len(e.pages[len(e.pages)-1].Ops) > 0 {
		e.newPage()
	}
}

// Band places a full-width colored band with centered bold text.
func (e *Engine) Band(text string, h float64, r, g, b int) {
	e.place(Op{Kind: OpBand, Text: text, H: h, Size: 13, Style: "B", R: r, G: g, B: b})
}

// TextLine places a single unwrapped line.
func (e *Engine) TextLine(text string, size, lineHeight float64, style string) {
	e.place(Op{Kind: OpText, Text: text, Size: size, Style: style, H: lineHeight})
}

// Paragraph wraps text to the safe text width and places it line by line,
// checking each wrapped line against the remaining page space individually.
// A long paragraph may legitimately span a page break between its lines.
func (e *Engine) Paragraph(text string, size, lineHeight float64, style string) {
	for _, line := range WrapText(text, e.geo.SafeTextWidth()) {
		e.place(Op{Kind: OpText, Text: line, Size: size, Style: style, H: lineHeight})
	}
}

// WorkZone places the fixed-height boxed working/answer region. The box is
// atomic: it is never begun unless its full height fits.
func (e *Engine) WorkZone(h float64) {
	e.place(Op{Kind: OpRect, H: h})
}

// ImageBlock places a diagram. Atomic like a work zone.
func (e *Engine) ImageBlock(png []byte, w, h float64) {
	e.place(Op{Kind: OpImage, Image: png, W: w, H: h})
}

// QRBlock places a square QR code carrying the given payload.
func (e *Engine) QRBlock(payload string, side float64) {
	e.place(Op{Kind: OpQR, Text: payload, W: side, H: side})
}

// Rule places a thin horizontal rule.
func (e *Engine) Rule() {
	e.place(Op{Kind: OpRule, H: 2})
}

// Spacer advances the cursor without drawing. It never forces a page break;
// trailing space at a page bottom is simply absorbed.
func (e *Engine) Spacer(h float64) {
	if e.y+h > e.geo.Bottom() {
		return
	}
	e.y += h
}
