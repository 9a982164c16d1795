package model

// LevelScore is one (correct, total) pair for a single advancement level.
// A total of zero means the level was not assessed.
type LevelScore struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Attempted reports whether any questions were given at this level.
func (s LevelScore) Attempted() bool {
	return s.Total > 0
}

// Fraction returns correct/total, or 0 for an unattempted level.
func (s LevelScore) Fraction() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}

// ScoreGrid maps each advancement level to its raw score pair.
type ScoreGrid map[AdvancementLevel]LevelScore

// DiagnosticResult is one persisted snapshot of a student's per-level scores
// on one topic at one point in time. Rows are immutable once created; only
// the most recent row (optionally filtered by topic) is used for placement.
// swagger:model
type DiagnosticResult struct {
	BaseModel
	StudentID uint   `gorm:"index;not null" json:"studentId"`
	Topic     string `gorm:"size:200;index;not null" json:"topic"`

	LevelACorrect int `gorm:"default:0" json:"levelACorrect"`
	LevelATotal   int `gorm:"default:0" json:"levelATotal"`
	LevelBCorrect int `gorm:"default:0" json:"levelBCorrect"`
	LevelBTotal   int `gorm:"default:0" json:"levelBTotal"`
	LevelCCorrect int `gorm:"default:0" json:"levelCCorrect"`
	LevelCTotal   int `gorm:"default:0" json:"levelCTotal"`
	LevelDCorrect int `gorm:"default:0" json:"levelDCorrect"`
	LevelDTotal   int `gorm:"default:0" json:"levelDTotal"`
	LevelECorrect int `gorm:"default:0" json:"levelECorrect"`
	LevelETotal   int `gorm:"default:0" json:"levelETotal"`
	LevelFCorrect int `gorm:"default:0" json:"levelFCorrect"`
	LevelFTotal   int `gorm:"default:0" json:"levelFTotal"`

	RecommendedLevel AdvancementLevel `gorm:"type:enum('A','B','C','D','E','F');not null" json:"recommendedLevel"`
}

// Grid expands the six column pairs into a ScoreGrid.
func (d *DiagnosticResult) Grid() ScoreGrid {
	return ScoreGrid{
		LevelA: {Correct: d.LevelACorrect, Total: d.LevelATotal},
		LevelB: {Correct: d.LevelBCorrect, Total: d.LevelBTotal},
		LevelC: {Correct: d.LevelCCorrect, Total: d.LevelCTotal},
		LevelD: {Correct: d.LevelDCorrect, Total: d.LevelDTotal},
		LevelE: {Correct: d.LevelECorrect, Total: d.LevelETotal},
		LevelF: {Correct: d.LevelFCorrect, Total: d.LevelFTotal},
	}
}

// SetGrid writes a ScoreGrid back into the six column pairs.
func (d *DiagnosticResult) SetGrid(g ScoreGrid) {
	d.LevelACorrect, d.LevelATotal = g[LevelA].Correct, g[LevelA].Total
	d.LevelBCorrect, d.LevelBTotal = g[LevelB].Correct, g[LevelB].Total
	d.LevelCCorrect, d.LevelCTotal = g[LevelC].Correct, g[LevelC].Total
	d.LevelDCorrect, d.LevelDTotal = g[LevelD].Correct, g[LevelD].Total
	d.LevelECorrect, d.LevelETotal = g[LevelE].Correct, g[LevelE].Total
	d.LevelFCorrect, d.LevelFTotal = g[LevelF].Correct, g[LevelF].Total
}

// LevelChangeKind classifies a placement change between two diagnostics.
type LevelChangeKind string

const (
	LevelAAchieved LevelChangeKind = "level_a_achieved"
	LevelDrop      LevelChangeKind = "level_drop"
)

// LevelChangeEvent is advisory only: derived during aggregation, dispatched
// once as a notification, never persisted. Delivery failure must not block
// the score write.
type LevelChangeEvent struct {
	StudentID   uint             `json:"studentId"`
	StudentName string           `json:"studentName"`
	Topic       string           `json:"topic"`
	Previous    AdvancementLevel `json:"previous"`
	Current     AdvancementLevel `json:"current"`
	Kind        LevelChangeKind  `json:"kind"`
}
