package service

import (
	"testing"

	"worksheet_edu_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampGrid(t *testing.T) {
	grid := model.ScoreGrid{
		model.LevelA: {Correct: 12, Total: 10},
		model.LevelB: {Correct: -3, Total: 10},
		model.LevelC: {Correct: 5, Total: -1},
	}

	out := ClampGrid(grid)

	assert.Equal(t, model.LevelScore{Correct: 10, Total: 10}, out[model.LevelA])
	assert.Equal(t, model.LevelScore{Correct: 0, Total: 10}, out[model.LevelB])
	assert.Equal(t, model.LevelScore{Correct: 0, Total: 0}, out[model.LevelC])
	// Untouched levels come back as zero scores.
	assert.Equal(t, model.LevelScore{}, out[model.LevelF])
}

func diagService() *DiagnosticService {
	return NewDiagnosticService(nil, NewPlacementService(), nil)
}

func priorAt(level model.AdvancementLevel) *model.DiagnosticResult {
	return &model.DiagnosticResult{RecommendedLevel: level}
}

func allPass() model.ScoreGrid {
	grid := model.ScoreGrid{}
	for _, lvl := range model.LevelOrder {
		grid[lvl] = model.LevelScore{Correct: 9, Total: 10}
	}
	return grid
}

func TestAggregate_FirstAssessmentNoEvent(t *testing.T) {
	s := diagService()

	rec, ev := s.aggregateOne(RawScore{StudentID: 7, Topic: "fractions", Grid: allPass()}, nil)

	assert.Equal(t, model.LevelA, rec.RecommendedLevel)
	assert.Nil(t, ev)
}

func TestAggregate_LevelAAchievedFiresOnce(t *testing.T) {
	s := diagService()
	in := RawScore{StudentID: 7, StudentName: "Ada Byron", Topic: "fractions", Grid: allPass()}

	rec, ev := s.aggregateOne(in, priorAt(model.LevelC))
	require.NotNil(t, ev)
	assert.Equal(t, model.LevelAAchieved, ev.Kind)
	assert.Equal(t, model.LevelC, ev.Previous)
	assert.Equal(t, model.LevelA, ev.Current)
	assert.Equal(t, "Ada Byron", ev.StudentName)
	assert.Equal(t, model.LevelA, rec.RecommendedLevel)

	// Already at A: reaching A again is not an event.
	_, ev = s.aggregateOne(in, priorAt(model.LevelA))
	assert.Nil(t, ev)
}

func TestAggregate_LevelDrop(t *testing.T) {
	s := diagService()
	grid := model.ScoreGrid{
		model.LevelA: {Correct: 1, Total: 10}, // miss at A places the student at B
	}
	in := RawScore{StudentID: 7, Topic: "fractions", Grid: grid}

	// Prior B -> B again: no event.
	_, ev := s.aggregateOne(in, priorAt(model.LevelB))
	assert.Nil(t, ev)

	// Prior A -> B is a drop.
	_, ev = s.aggregateOne(in, priorAt(model.LevelA))
	require.NotNil(t, ev)
	assert.Equal(t, model.LevelDrop, ev.Kind)

	// Improvement short of A (prior D -> B) is not an event.
	_, ev = s.aggregateOne(in, priorAt(model.LevelD))
	assert.Nil(t, ev)
}

func TestAggregate_ClampsBeforeScoring(t *testing.T) {
	s := diagService()
	// Over-reported corrects clamp to totals, so every level passes.
	grid := model.ScoreGrid{}
	for _, lvl := range model.LevelOrder {
		grid[lvl] = model.LevelScore{Correct: 99, Total: 10}
	}

	rec, _ := s.aggregateOne(RawScore{StudentID: 1, Topic: "algebra", Grid: grid}, nil)
	assert.Equal(t, model.LevelA, rec.RecommendedLevel)
	stored := rec.Grid()
	assert.Equal(t, model.LevelScore{Correct: 10, Total: 10}, stored[model.LevelA])
}
