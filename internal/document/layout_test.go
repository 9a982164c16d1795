package document

import (
	"strings"
	"testing"
	"unicode/utf8"

	"worksheet_edu_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeometryFor(t *testing.T) {
	assert.Equal(t, 12.0, GeometryFor(MarginSmall).Margin)
	assert.Equal(t, 16.0, GeometryFor(MarginMedium).Margin)
	assert.Equal(t, 20.0, GeometryFor(MarginLarge).Margin)
	// Unknown presets fall back to medium.
	assert.Equal(t, 16.0, GeometryFor("gigantic").Margin)

	g := GeometryFor(MarginMedium)
	assert.Equal(t, 178.0, g.ContentWidth())
	assert.InDelta(t, 178.0*0.92, g.SafeTextWidth(), 0.001)
	assert.Equal(t, 281.0, g.Bottom())
}

func TestWrapText(t *testing.T) {
	g := GeometryFor(MarginMedium)

	lines := WrapText("short", g.SafeTextWidth())
	assert.Equal(t, []string{"short"}, lines)

	long := strings.Repeat("word ", 60)
	lines = WrapText(long, g.SafeTextWidth())
	assert.Greater(t, len(lines), 1)
	maxChars := int(g.SafeTextWidth() / avgCharWidth)
	for _, line := range lines {
		assert.LessOrEqual(t, len(line), maxChars)
	}

	// A single word longer than a line is hard-split, never dropped.
	giant := strings.Repeat("x", maxChars*2+5)
	lines = WrapText(giant, g.SafeTextWidth())
	total := 0
	for _, line := range lines {
		total += len(line)
	}
	assert.Equal(t, len(giant), total)

	// Multi-byte words split between runes, never through one.
	wide := strings.Repeat("ü", maxChars*2+5)
	lines = WrapText(wide, g.SafeTextWidth())
	runes := 0
	for _, line := range lines {
		assert.True(t, utf8.ValidString(line))
		runes += utf8.RuneCountInString(line)
	}
	assert.Equal(t, maxChars*2+5, runes)

	assert.Equal(t, []string{""}, WrapText("", g.SafeTextWidth()))
}

// assertOpsFit checks the core placement invariant: an op may end below the
// bottom margin only when it opens its page's content area, i.e. nothing
// above it could have moved to make it fit. The content area starts at the
// top margin, or just under the two running-header ops on continuation pages.
func assertOpsFit(t *testing.T, l *Layout) {
	t.Helper()
	for pi, page := range l.Pages {
		for oi, op := range page.Ops {
			if op.Y+op.H <= l.Geo.Bottom() {
				continue
			}
			contentTop := l.Geo.Margin
			if oi == 2 && page.Ops[1].Kind == OpRule {
				contentTop = page.Ops[0].Y + page.Ops[0].H + page.Ops[1].H
			}
			assert.Equalf(t, contentTop, op.Y,
				"page %d op %d overflows bottom margin", pi, oi)
		}
	}
}

func TestEngine_BreaksBeforeBottomMargin(t *testing.T) {
	e := NewEngine(GeometryFor(MarginMedium))
	e.BeginWorksheet("Ada Byron", "B", "A")
	for i := 0; i < 30; i++ {
		e.TextLine("line", 11, 6, "")
		e.WorkZone(45)
	}
	l := e.Finish()

	assert.Greater(t, l.PageCount(), 1)
	assertOpsFit(t, l)
}

func TestEngine_ZoneNeverSplits(t *testing.T) {
	g := GeometryFor(MarginMedium)
	e := NewEngine(g)

	// Leave less room than one zone needs.
	for e.Y()+45 <= g.Bottom() {
		e.TextLine("filler", 11, 6, "")
	}
	e.WorkZone(45)
	l := e.Finish()

	require.Equal(t, 2, l.PageCount())
	zone := l.Pages[1].Ops[0]
	assert.Equal(t, OpRect, zone.Kind)
	assert.Equal(t, g.Margin, zone.Y)
}

func TestEngine_TallerThanPagePlacedAtTop(t *testing.T) {
	g := GeometryFor(MarginMedium)
	e := NewEngine(g)
	e.TextLine("before", 11, 6, "")
	e.WorkZone(500)
	l := e.Finish()

	require.Equal(t, 2, l.PageCount())
	zone := l.Pages[1].Ops[0]
	assert.Equal(t, OpRect, zone.Kind)
	// Placed at the top and allowed to overflow; never dropped.
	assert.Equal(t, g.Margin, zone.Y)
}

func TestEngine_NearFullZoneUnderHeaderPlacedAtContentTop(t *testing.T) {
	g := GeometryFor(MarginMedium)
	e := NewEngine(g)
	e.BeginWorksheet("Ada Byron", "B", "A")
	e.TextLine("intro", 11, 6, "")

	// Fits a bare page but not under the 6mm running header.
	tall := g.Bottom() - g.Margin - 3
	e.WorkZone(tall)
	e.WorkZone(tall)
	l := e.Finish()

	// One break per zone; a zone that cannot fit under the header must not
	// buy an empty header-only page with a second break.
	require.Equal(t, 3, l.PageCount())
	for pi := 1; pi < 3; pi++ {
		ops := l.Pages[pi].Ops
		require.Len(t, ops, 3)
		zone := ops[2]
		assert.Equal(t, OpRect, zone.Kind)
		assert.Equal(t, ops[0].Y+ops[0].H+ops[1].H, zone.Y)
	}
	assertOpsFit(t, l)
}

func TestEngine_RunningHeaderOnContinuationPagesOnly(t *testing.T) {
	e := NewEngine(GeometryFor(MarginMedium))
	e.BeginWorksheet("Ada Byron", "B", "A")
	for i := 0; i < 20; i++ {
		e.WorkZone(45)
	}
	l := e.Finish()
	require.Greater(t, l.PageCount(), 1)

	// No header on the student's first page.
	first := l.Pages[0].Ops[0]
	assert.NotContains(t, first.Text, "Page")

	// Every continuation page opens with the attribution header.
	for pi := 1; pi < len(l.Pages); pi++ {
		header := l.Pages[pi].Ops[0]
		assert.Equal(t, OpText, header.Kind)
		assert.Contains(t, header.Text, "Ada Byron")
		assert.Contains(t, header.Text, "Level B")
		assert.Contains(t, header.Text, "Form A")
	}
	assert.Contains(t, l.Pages[1].Ops[0].Text, "Page 2")
}

func TestEngine_SpacerNeverBreaksPage(t *testing.T) {
	g := GeometryFor(MarginMedium)
	e := NewEngine(g)
	for e.Y()+6 <= g.Bottom() {
		e.TextLine("filler", 11, 6, "")
	}
	pages := len(e.Finish().Pages)

	e.Spacer(50)
	assert.Equal(t, pages, len(e.Finish().Pages))
}

func TestEngine_Deterministic(t *testing.T) {
	build := func() *Layout {
		e := NewEngine(GeometryFor(MarginSmall))
		e.BeginWorksheet("Grace Hopper", "C", "B")
		e.Band("Fractions", 12, 10, 20, 30)
		e.Paragraph(strings.Repeat("determinism ", 40), 11, 6, "")
		for i := 0; i < 12; i++ {
			e.WorkZone(45)
		}
		return e.Finish()
	}

	assert.Equal(t, build(), build())
}

func worksheetSpec() WorksheetSpec {
	return WorksheetSpec{
		StudentName: "Ada Byron",
		StudentID:   7,
		Level:       model.LevelB,
		Form:        "A",
		Topic:       "Fractions",
		WarmUp: []model.GeneratedQuestion{
			{Number: 1, Text: "Warm-up question one"},
		},
		Main: []model.GeneratedQuestion{
			{Number: 1, Text: "Main question one", Standard: "6.NS.1"},
			{Number: 2, Text: "Main question two", Hint: "try halves"},
		},
		IncludeHints: true,
	}
}

func layoutTexts(l *Layout) []string {
	var texts []string
	for _, page := range l.Pages {
		for _, op := range page.Ops {
			if op.Text != "" {
				texts = append(texts, op.Text)
			}
		}
	}
	return texts
}

func indexOf(texts []string, substr string) int {
	for i, s := range texts {
		if strings.Contains(s, substr) {
			return i
		}
	}
	return -1
}

func TestComposeWorksheet_FixedContentOrder(t *testing.T) {
	e := NewEngine(GeometryFor(MarginMedium))
	ComposeWorksheet(e, worksheetSpec())
	l := e.Finish()

	texts := layoutTexts(l)

	band := indexOf(texts, "Level B / Form A")
	name := indexOf(texts, "Name: Ada Byron")
	warmUp := indexOf(texts, "Warm-up")
	questions := indexOf(texts, "Questions")
	standard := indexOf(texts, "[6.NS.1]")
	hint := indexOf(texts, "Hint: try halves")

	require.NotEqual(t, -1, band)
	require.NotEqual(t, -1, warmUp)
	require.NotEqual(t, -1, questions)
	assert.Less(t, band, name)
	assert.Less(t, name, warmUp)
	assert.Less(t, warmUp, questions)
	assert.NotEqual(t, -1, standard)
	assert.NotEqual(t, -1, hint)
}

func TestComposeWorksheet_EmptySectionsOmitted(t *testing.T) {
	spec := worksheetSpec()
	spec.WarmUp = nil
	spec.IncludeHints = false

	e := NewEngine(GeometryFor(MarginMedium))
	ComposeWorksheet(e, spec)
	texts := layoutTexts(e.Finish())

	assert.Equal(t, -1, indexOf(texts, "Warm-up"))
	assert.Equal(t, -1, indexOf(texts, "Hint:"))
}

func TestComposeWorksheet_IDCodeAddsQR(t *testing.T) {
	spec := worksheetSpec()
	spec.IDCode = "AB-0007"

	e := NewEngine(GeometryFor(MarginMedium))
	ComposeWorksheet(e, spec)
	l := e.Finish()

	var qr *Op
	for _, page := range l.Pages {
		for i := range page.Ops {
			if page.Ops[i].Kind == OpQR {
				qr = &page.Ops[i]
			}
		}
	}
	require.NotNil(t, qr)
	assert.Equal(t, "7|A|B|AB-0007", qr.Text)
}

func TestComposeWorksheet_EachStudentStartsFreshPage(t *testing.T) {
	e := NewEngine(GeometryFor(MarginMedium))
	ComposeWorksheet(e, worksheetSpec())
	firstPages := e.Finish().PageCount()

	e = NewEngine(GeometryFor(MarginMedium))
	ComposeWorksheet(e, worksheetSpec())
	second := worksheetSpec()
	second.StudentName = "Grace Hopper"
	ComposeWorksheet(e, second)
	l := e.Finish()

	assert.Greater(t, l.PageCount(), firstPages)

	// The second student's first page opens with their header band, not a
	// running header.
	band := l.Pages[firstPages].Ops[0]
	assert.Equal(t, OpBand, band.Kind)
}

func TestComposeAnswerKey_GroupsFormThenLevel(t *testing.T) {
	entries := map[string]*model.QuestionSet{
		"B-C": {Main: []model.GeneratedQuestion{{Number: 1, Text: "bc one"}}},
		"A-F": {Main: []model.GeneratedQuestion{{Number: 1, Text: "af one"}}},
		"A-B": {Main: []model.GeneratedQuestion{{Number: 1, Text: "ab one"}}},
		"C-A": {}, // empty entries are skipped
	}

	e := NewEngine(GeometryFor(MarginMedium))
	ComposeAnswerKey(e, "Fractions", entries)
	texts := layoutTexts(e.Finish())

	ab := indexOf(texts, "Form A — Level B")
	af := indexOf(texts, "Form A — Level F")
	bc := indexOf(texts, "Form B — Level C")

	require.NotEqual(t, -1, ab)
	require.NotEqual(t, -1, af)
	require.NotEqual(t, -1, bc)
	assert.Less(t, ab, af)
	assert.Less(t, af, bc)
	assert.Equal(t, -1, indexOf(texts, "Form C — Level A"))
}
