package service

import (
	"worksheet_edu_backend/internal/model"
	"worksheet_edu_backend/internal/repository"
)

// RawScore is one student's grid of per-level raw scores as entered by the
// teacher after grading a completed worksheet.
type RawScore struct {
	StudentID   uint            `json:"studentId"`
	StudentName string          `json:"studentName"`
	Topic       string          `json:"topic"`
	Grid        model.ScoreGrid `json:"grid"`
}

// Notifier dispatches advisory level-change notifications. Implementations
// must swallow delivery failures; they are never allowed to block or roll
// back the score write.
type Notifier interface {
	NotifyLevelChanges(teacher *model.User, events []model.LevelChangeEvent)
}

// DiagnosticService converts raw score grids into persisted diagnostic
// records and detects level-change events.
type DiagnosticService struct {
	diagnostics *repository.DiagnosticRepository
	placement   *PlacementService
	notifier    Notifier
}

func NewDiagnosticService(diagnostics *repository.DiagnosticRepository, placement *PlacementService, notifier Notifier) *DiagnosticService {
	return &DiagnosticService{diagnostics: diagnostics, placement: placement, notifier: notifier}
}

// RecordScores persists one diagnostic row per input. A single student's row
// is the atomicity boundary: a failed write stops the batch and surfaces the
// error, but rows already written stay. Events are dispatched only after
// persistence and are advisory.
func (s *DiagnosticService) RecordScores(teacher *model.User, inputs []RawScore) ([]model.DiagnosticResult, []model.LevelChangeEvent, error) {
	var results []model.DiagnosticResult
	var events []model.LevelChangeEvent

	for _, in := range inputs {
		prior, err := s.diagnostics.LatestByStudentTopic(in.StudentID, in.Topic)
		if err != nil {
			return results, events, err
		}

		rec, ev := s.aggregateOne(in, prior)
		if err := s.diagnostics.Create(&rec); err != nil {
			return results, events, err
		}
		results = append(results, rec)
		if ev != nil {
			events = append(events, *ev)
		}
	}

	if len(events) > 0 && s.notifier != nil {
		s.notifier.NotifyLevelChanges(teacher, events)
	}
	return results, events, nil
}

// aggregateOne clamps the grid, derives the recommended level, and compares
// against the most recent prior record for the same topic. No event fires on
// an unchanged level or on a first-ever assessment.
func (s *DiagnosticService) aggregateOne(in RawScore, prior *model.DiagnosticResult) (model.DiagnosticResult, *model.LevelChangeEvent) {
	grid := ClampGrid(in.Grid)
	level := s.placement.RecommendLevel(grid)

	rec := model.DiagnosticResult{
		StudentID: in.StudentID,
		Topic:     in.Topic,
	}
	rec.SetGrid(grid)
	rec.RecommendedLevel = level

	var ev *model.LevelChangeEvent
	if prior != nil {
		prev := prior.RecommendedLevel
		switch {
		case level == model.LevelA && prev != model.LevelA:
			ev = &model.LevelChangeEvent{
				StudentID:   in.StudentID,
				StudentName: in.StudentName,
				Topic:       in.Topic,
				Previous:    prev,
				Current:     level,
				Kind:        model.LevelAAchieved,
			}
		case level.EasierThan(prev):
			ev = &model.LevelChangeEvent{
				StudentID:   in.StudentID,
				StudentName: in.StudentName,
				Topic:       in.Topic,
				Previous:    prev,
				Current:     level,
				Kind:        model.LevelDrop,
			}
		}
	}
	return rec, ev
}

// ListForStudent returns a student's diagnostic history, newest first.
func (s *DiagnosticService) ListForStudent(studentID uint, topic string) ([]model.DiagnosticResult, error) {
	return s.diagnostics.ListByStudent(studentID, topic)
}

// LatestLevel returns the most recent recommended level for a student on a
// topic, or the neutral default when no record exists.
func (s *DiagnosticService) LatestLevel(studentID uint, topic string) (model.AdvancementLevel, bool, error) {
	prior, err := s.diagnostics.LatestByStudentTopic(studentID, topic)
	if err != nil {
		return model.DefaultLevel, false, err
	}
	if prior == nil {
		return model.DefaultLevel, false, nil
	}
	return prior.RecommendedLevel, true, nil
}

// AssessedStudents reports which of the given students have at least one
// diagnostic row for the topic.
func (s *DiagnosticService) AssessedStudents(studentIDs []uint, topic string) (map[uint]bool, error) {
	return s.diagnostics.StudentIDsWithDiagnostic(studentIDs, topic)
}

// ClampGrid forces every correct count into [0, total] and negative totals
// to zero before any further processing.
func ClampGrid(g model.ScoreGrid) model.ScoreGrid {
	out := make(model.ScoreGrid, len(model.LevelOrder))
	for _, lvl := range model.LevelOrder {
		sc := g[lvl]
		if sc.Total < 0 {
			sc.Total = 0
		}
		if sc.Correct < 0 {
			sc.Correct = 0
		}
		if sc.Correct > sc.Total {
			sc.Correct = sc.Total
		}
		out[lvl] = sc
	}
	return out
}
