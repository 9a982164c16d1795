package service

import (
	"worksheet_edu_backend/internal/model"
	"worksheet_edu_backend/internal/util"
)

// PassThreshold is the minimum score fraction at which a level counts as
// cleared. Exactly 70% passes.
const PassThreshold = 0.70

// PlacementService turns diagnostic scores into advancement levels and
// distributes students across question forms. All methods are deterministic
// and side-effect free.
type PlacementService struct{}

func NewPlacementService() *PlacementService {
	return &PlacementService{}
}

// RecommendLevel scans levels hardest to easiest and returns the next easier
// level below the first attempted level that misses the pass bar, clamped at
// F. Unattempted levels are skipped ("not assessed", not failure). If every
// attempted level clears the bar the student is placed at A.
//
// A grid with no attempted levels at all returns the neutral DefaultLevel;
// callers that want to distinguish that case should check beforehand.
func (s *PlacementService) RecommendLevel(grid model.ScoreGrid) model.AdvancementLevel {
	attempted := false
	for _, lvl := range model.LevelOrder {
		sc := grid[lvl]
		if !sc.Attempted() {
			continue
		}
		attempted = true
		if sc.Fraction() < PassThreshold {
			return lvl.Easier()
		}
	}
	if !attempted {
		return model.DefaultLevel
	}
	return model.LevelA
}

// ResolveLevel picks the effective level for one student. The adaptive level,
// when enabled and present, replaces the diagnostic-derived level outright;
// there is no blending. A student without any level falls back to the
// neutral default.
func (s *PlacementService) ResolveLevel(sel model.StudentSelection, useAdaptive bool) model.AdvancementLevel {
	if useAdaptive && sel.AdaptiveLevel.Valid() {
		return sel.AdaptiveLevel
	}
	if sel.Level.Valid() {
		return sel.Level
	}
	return model.DefaultLevel
}

// PlacedStudent is one roster entry with its resolved level and assigned form.
type PlacedStudent struct {
	Student model.StudentSelection
	Level   model.AdvancementLevel
	Form    model.FormLetter
}

// AssignForms rotates forms within each level group: the student at position
// i (0-based, roster order) receives FormLetters[i % numForms]. The spread is
// even and deterministic within a level; it makes no balance guarantee across
// levels.
func (s *PlacementService) AssignForms(byLevel map[model.AdvancementLevel][]model.StudentSelection, numForms int) (map[model.AdvancementLevel][]PlacedStudent, error) {
	if numForms < 1 || numForms > model.MaxForms {
		return nil, util.ErrInvalidFormCount
	}
	out := make(map[model.AdvancementLevel][]PlacedStudent, len(byLevel))
	for lvl, students := range byLevel {
		placed := make([]PlacedStudent, 0, len(students))
		for i, st := range students {
			placed = append(placed, PlacedStudent{
				Student: st,
				Level:   lvl,
				Form:    model.FormLetters[i%numForms],
			})
		}
		out[lvl] = placed
	}
	return out, nil
}

// PlaceStudents resolves every student's level, groups by level preserving
// roster order, assigns forms, and returns the placements back in the
// original roster order.
func (s *PlacementService) PlaceStudents(students []model.StudentSelection, useAdaptive bool, numForms int) ([]PlacedStudent, error) {
	byLevel := make(map[model.AdvancementLevel][]model.StudentSelection)
	for _, st := range students {
		lvl := s.ResolveLevel(st, useAdaptive)
		byLevel[lvl] = append(byLevel[lvl], st)
	}

	assigned, err := s.AssignForms(byLevel, numForms)
	if err != nil {
		return nil, err
	}

	index := make(map[uint]PlacedStudent, len(students))
	for _, group := range assigned {
		for _, p := range group {
			index[p.Student.ID] = p
		}
	}

	out := make([]PlacedStudent, 0, len(students))
	for _, st := range students {
		out = append(out, index[st.ID])
	}
	return out, nil
}

// DifficultyBand maps an advancement level to the difficulty labels requested
// from the question generator.
func DifficultyBand(l model.AdvancementLevel) []string {
	switch l {
	case model.LevelA, model.LevelB:
		return []string{"hard", "challenging"}
	case model.LevelC, model.LevelD:
		return []string{"medium", "hard"}
	default:
		return []string{"easy", "super-easy", "medium"}
	}
}
