package document

import (
	"fmt"

	"worksheet_edu_backend/internal/model"
)

// Section heights and sizes, millimeters / points.
const (
	headerBandHeight   = 12.0
	warmUpZoneHeight   = 25.0
	mainZoneHeight     = 45.0
	diagramSide        = 50.0
	qrSide             = 16.0
	bodySize           = 11.0
	bodyLineHeight     = 6.0
	smallSize          = 9.0
	smallLineHeight    = 5.0
	sectionTitleSize   = 12.0
	sectionTitleHeight = 7.0
)

// levelColor returns the color-coding for a level/form header band.
func levelColor(l model.AdvancementLevel) (r, g, b int) {
	switch l {
	case model.LevelA:
		return 192, 57, 43
	case model.LevelB:
		return 230, 126, 34
	case model.LevelC:
		return 241, 196, 15
	case model.LevelD:
		return 39, 174, 96
	case model.LevelE:
		return 41, 128, 185
	case model.LevelF:
		return 127, 140, 141
	default:
		return 127, 140, 141
	}
}

// WorksheetSpec is everything needed to lay out one student's worksheet.
type WorksheetSpec struct {
	StudentName  string
	StudentID    uint
	Level        model.AdvancementLevel
	Form         model.FormLetter
	Topic        string
	IDCode       string // optional routing code; empty disables QR/footer code
	IncludeHints bool
	WarmUp       []model.GeneratedQuestion
	Main         []model.GeneratedQuestion
}

// ComposeWorksheet emits one student worksheet in the fixed content order:
// colored level/form header, student line, instruction banner, optional
// warm-up section, main section, footer. Empty sections are omitted.
func ComposeWorksheet(e *Engine, spec WorksheetSpec) {
	e.BeginWorksheet(spec.StudentName, string(spec.Level), string(spec.Form))

	r, g, b := levelColor(spec.Level)
	e.Band(fmt.Sprintf("%s  —  Level %s / Form %s", spec.Topic, spec.Level, spec.Form), headerBandHeight, r, g, b)
	e.Spacer(3)

	studentLine := "Name: " + spec.StudentName
	if spec.IDCode != "" {
		studentLine += "    Code: " + spec.IDCode
	}
	e.TextLine(studentLine, bodySize, bodyLineHeight, "B")
	e.Rule()
	e.Spacer(2)

	e.Paragraph("Work through the questions in order. Show your working in the box under each question and write your final answer clearly.", smallSize, smallLineHeight, "I")
	e.Spacer(4)

	if len(spec.WarmUp) > 0 {
		e.TextLine("Warm-up", sectionTitleSize, sectionTitleHeight, "B")
		e.Spacer(1)
		for _, q := range spec.WarmUp {
			composeQuestion(e, q, spec.IncludeHints, warmUpZoneHeight)
		}
		e.Spacer(3)
	}

	if len(spec.Main) > 0 {
		e.TextLine("Questions", sectionTitleSize, sectionTitleHeight, "B")
		e.Spacer(1)
		for _, q := range spec.Main {
			composeQuestion(e, q, spec.IncludeHints, mainZoneHeight)
		}
	}

	composeFooter(e, spec)
}

// composeQuestion emits one question item: prompt, optional diagram,
// optional hint, then the fixed-height work/answer zone.
func composeQuestion(e *Engine, q model.GeneratedQuestion, includeHints bool, zoneHeight float64) {
	prompt := fmt.Sprintf("%d. %s", q.Number, q.Text)
	if q.Standard != "" {
		prompt += fmt.Sprintf("  [%s]", q.Standard)
	}
	e.Paragraph(prompt, bodySize, bodyLineHeight, "")

	if q.Diagram != nil && len(q.Diagram.PNG) > 0 {
		e.Spacer(1)
		e.ImageBlock(q.Diagram.PNG, diagramSide, diagramSide)
	}

	if includeHints && q.Hint != "" {
		e.Spacer(1)
		e.Paragraph("Hint: "+q.Hint, smallSize, smallLineHeight, "I")
	}

	e.Spacer(1)
	e.WorkZone(zoneHeight)
	e.Spacer(3)
}

func composeFooter(e *Engine, spec WorksheetSpec) {
	e.Spacer(4)
	e.Rule()
	if spec.IDCode != "" {
		// Routing payload for automated grading: which sheet is this?
		payload := fmt.Sprintf("%d|%s|%s|%s", spec.StudentID, spec.Form, spec.Level, spec.IDCode)
		e.QRBlock(payload, qrSide)
	}
	e.TextLine(fmt.Sprintf("%s — Form %s", spec.Topic, spec.Form), smallSize, smallLineHeight, "")
}

// ComposeAnswerKey appends the trailing teacher reference section: every
// populated (form, level) entry grouped by form then level, listing question
// text only (answers are not computed by this system).
func ComposeAnswerKey(e *Engine, topic string, entries map[string]*model.QuestionSet) {
	e.BeginSection()
	e.Band("Answer Key — "+topic, headerBandHeight, 60, 60, 60)
	e.Spacer(3)

	for _, form := range model.FormLetters {
		for _, level := range model.LevelOrder {
			key := fmt.Sprintf("%s-%s", form, level)
			set, ok := entries[key]
			if !ok || set.Empty() {
				continue
			}

			e.TextLine(fmt.Sprintf("Form %s — Level %s", form, level), sectionTitleSize, sectionTitleHeight, "B")
			e.Spacer(1)

			if len(set.WarmUp) > 0 {
				e.TextLine("Warm-up", smallSize, smallLineHeight, "B")
				for _, q := range set.WarmUp {
					e.Paragraph(fmt.Sprintf("%d. %s", q.Number, q.Text), smallSize, smallLineHeight, "")
				}
				e.Spacer(2)
			}
			if len(set.Main) > 0 {
				e.TextLine("Questions", smallSize, smallLineHeight, "B")
				for _, q := range set.Main {
					e.Paragraph(fmt.Sprintf("%d. %s", q.Number, q.Text), smallSize, smallLineHeight, "")
				}
			}
			e.Spacer(4)
		}
	}
}
