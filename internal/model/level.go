package model

// AdvancementLevel is the placement tier of a student, A (most advanced)
// through F (foundational). The order is total and used for tie-breaks and
// the "one level easier" fallback.
type AdvancementLevel string

const (
	LevelA AdvancementLevel = "A"
	LevelB AdvancementLevel = "B"
	LevelC AdvancementLevel = "C"
	LevelD AdvancementLevel = "D"
	LevelE AdvancementLevel = "E"
	LevelF AdvancementLevel = "F"
)

// DefaultLevel is the neutral placement used when a student has no assessed
// levels at all.
const DefaultLevel = LevelC

// LevelOrder lists all levels hardest to easiest.
var LevelOrder = []AdvancementLevel{LevelA, LevelB, LevelC, LevelD, LevelE, LevelF}

func (l AdvancementLevel) Valid() bool {
	return l.Index() >= 0
}

// Index returns the position of l in LevelOrder, 0 for A, or -1 if invalid.
func (l AdvancementLevel) Index() int {
	for i, o := range LevelOrder {
		if o == l {
			return i
		}
	}
	return -1
}

// Easier returns the next easier level, clamped at F.
func (l AdvancementLevel) Easier() AdvancementLevel {
	i := l.Index()
	if i < 0 || i >= len(LevelOrder)-1 {
		return LevelF
	}
	return LevelOrder[i+1]
}

// EasierThan reports whether l is strictly easier (later in A->F order) than o.
func (l AdvancementLevel) EasierThan(o AdvancementLevel) bool {
	return l.Index() > o.Index()
}

// FormLetter labels one of up to ten parallel question variants (A-J).
// Two students sharing a (level, form) pair receive the identical question set.
type FormLetter string

// FormLetters lists the available forms in assignment order.
var FormLetters = []FormLetter{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}

// MaxForms bounds the caller-supplied form count.
const MaxForms = 10
