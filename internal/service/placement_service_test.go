package service

import (
	"os"
	"testing"

	"worksheet_edu_backend/internal/model"
	"worksheet_edu_backend/internal/util"
	"worksheet_edu_backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

func score(correct, total int) model.LevelScore {
	return model.LevelScore{Correct: correct, Total: total}
}

func TestRecommendLevel_ExactThresholdPasses(t *testing.T) {
	s := NewPlacementService()
	grid := model.ScoreGrid{
		model.LevelA: score(7, 10),
		model.LevelB: score(7, 10),
		model.LevelC: score(7, 10),
	}
	assert.Equal(t, model.LevelA, s.RecommendLevel(grid))
}

func TestRecommendLevel_FirstMissDropsOneLevel(t *testing.T) {
	s := NewPlacementService()
	grid := model.ScoreGrid{
		model.LevelA: score(6, 10), // 60%, below the bar
		model.LevelB: score(10, 10),
	}
	assert.Equal(t, model.LevelB, s.RecommendLevel(grid))

	grid = model.ScoreGrid{
		model.LevelA: score(10, 10),
		model.LevelB: score(10, 10),
		model.LevelC: score(3, 10),
	}
	assert.Equal(t, model.LevelD, s.RecommendLevel(grid))
}

func TestRecommendLevel_SkipsUnattemptedLevels(t *testing.T) {
	s := NewPlacementService()
	// A never attempted; the scan starts judging at B.
	grid := model.ScoreGrid{
		model.LevelB: score(2, 10),
	}
	assert.Equal(t, model.LevelC, s.RecommendLevel(grid))
}

func TestRecommendLevel_ClampsAtF(t *testing.T) {
	s := NewPlacementService()
	grid := model.ScoreGrid{
		model.LevelF: score(0, 10),
	}
	assert.Equal(t, model.LevelF, s.RecommendLevel(grid))
}

func TestRecommendLevel_NothingAttempted(t *testing.T) {
	s := NewPlacementService()
	assert.Equal(t, model.DefaultLevel, s.RecommendLevel(model.ScoreGrid{}))
	// Zero-total rows count as unattempted, not as failures.
	grid := model.ScoreGrid{model.LevelA: score(0, 0)}
	assert.Equal(t, model.DefaultLevel, s.RecommendLevel(grid))
}

func TestResolveLevel(t *testing.T) {
	s := NewPlacementService()

	sel := model.StudentSelection{Level: model.LevelD, AdaptiveLevel: model.LevelB}
	assert.Equal(t, model.LevelB, s.ResolveLevel(sel, true))
	assert.Equal(t, model.LevelD, s.ResolveLevel(sel, false))

	// Adaptive enabled but absent: the diagnostic level stands.
	sel = model.StudentSelection{Level: model.LevelD}
	assert.Equal(t, model.LevelD, s.ResolveLevel(sel, true))

	// No level at all falls back to the neutral default.
	assert.Equal(t, model.DefaultLevel, s.ResolveLevel(model.StudentSelection{}, true))
}

func TestAssignForms_RoundRobinWithinLevel(t *testing.T) {
	s := NewPlacementService()
	byLevel := map[model.AdvancementLevel][]model.StudentSelection{
		model.LevelB: {{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}, {ID: 5}},
	}

	assigned, err := s.AssignForms(byLevel, 2)
	require.NoError(t, err)

	forms := []model.FormLetter{}
	for _, p := range assigned[model.LevelB] {
		forms = append(forms, p.Form)
	}
	assert.Equal(t, []model.FormLetter{"A", "B", "A", "B", "A"}, forms)
}

func TestAssignForms_InvalidFormCount(t *testing.T) {
	s := NewPlacementService()
	byLevel := map[model.AdvancementLevel][]model.StudentSelection{
		model.LevelC: {{ID: 1}},
	}

	_, err := s.AssignForms(byLevel, 0)
	assert.ErrorIs(t, err, util.ErrInvalidFormCount)

	_, err = s.AssignForms(byLevel, model.MaxForms+1)
	assert.ErrorIs(t, err, util.ErrInvalidFormCount)
}

func TestPlaceStudents_RotationRestartsPerLevel(t *testing.T) {
	s := NewPlacementService()
	students := []model.StudentSelection{
		{ID: 1, Level: model.LevelB},
		{ID: 2, Level: model.LevelB},
		{ID: 3, Level: model.LevelC},
		{ID: 4, Level: model.LevelB},
		{ID: 5, Level: model.LevelC},
		{ID: 6, Level: model.LevelC},
	}

	placed, err := s.PlaceStudents(students, false, 2)
	require.NoError(t, err)
	require.Len(t, placed, 6)

	// Output preserves roster order.
	for i, p := range placed {
		assert.Equal(t, students[i].ID, p.Student.ID)
	}

	// Level B roster positions 1, 2, 4 -> forms A, B, A.
	assert.Equal(t, model.FormLetter("A"), placed[0].Form)
	assert.Equal(t, model.FormLetter("B"), placed[1].Form)
	assert.Equal(t, model.FormLetter("A"), placed[3].Form)

	// Level C rotation restarts independently: 3, 5, 6 -> A, B, A.
	assert.Equal(t, model.FormLetter("A"), placed[2].Form)
	assert.Equal(t, model.FormLetter("B"), placed[4].Form)
	assert.Equal(t, model.FormLetter("A"), placed[5].Form)
}

func TestDifficultyBand(t *testing.T) {
	assert.Equal(t, []string{"hard", "challenging"}, DifficultyBand(model.LevelA))
	assert.Equal(t, []string{"hard", "challenging"}, DifficultyBand(model.LevelB))
	assert.Equal(t, []string{"medium", "hard"}, DifficultyBand(model.LevelC))
	assert.Equal(t, []string{"medium", "hard"}, DifficultyBand(model.LevelD))
	assert.Equal(t, []string{"easy", "super-easy", "medium"}, DifficultyBand(model.LevelE))
	assert.Equal(t, []string{"easy", "super-easy", "medium"}, DifficultyBand(model.LevelF))
}
