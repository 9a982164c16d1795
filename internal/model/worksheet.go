package model

// Diagram is an optional figure attached to a generated question. Exactly one
// of SVG / URL / DataURI is normally set by the generator; PNG is filled in
// during asset resolution and is what the renderer consumes.
type Diagram struct {
	Prompt  string `json:"prompt,omitempty"`
	SVG     string `json:"svg,omitempty"`
	URL     string `json:"url,omitempty"`
	DataURI string `json:"dataUri,omitempty"`
	PNG     []byte `json:"-"`
}

// GeneratedQuestion is produced by the external question generator. The
// layout engine treats it as opaque payload beyond these fields. Instances
// live only in memory for the duration of one generation run.
type GeneratedQuestion struct {
	Number     int              `json:"number"` // 1-based, section-local
	Topic      string           `json:"topic"`
	Standard   string           `json:"standard"`
	Text       string           `json:"text"`
	Difficulty string           `json:"difficulty"`
	Level      AdvancementLevel `json:"level"`
	Hint       string           `json:"hint,omitempty"`
	Diagram    *Diagram         `json:"diagram,omitempty"`
}

// QuestionSet is the cached unit for one (form, level) pair: the warm-up
// block plus the main block. An empty set is a valid cache entry and simply
// omits the section from affected worksheets.
type QuestionSet struct {
	WarmUp []GeneratedQuestion `json:"warmUp"`
	Main   []GeneratedQuestion `json:"main"`
}

func (s *QuestionSet) Empty() bool {
	return s == nil || (len(s.WarmUp) == 0 && len(s.Main) == 0)
}

// StudentSelection is one roster entry of a generation request, carrying the
// precomputed diagnostic level and the optional adaptive override.
type StudentSelection struct {
	ID            uint             `json:"id"`
	FirstName     string           `json:"firstName"`
	LastName      string           `json:"lastName"`
	Level         AdvancementLevel `json:"level"`
	AdaptiveLevel AdvancementLevel `json:"adaptiveLevel,omitempty"`
}

func (s StudentSelection) FullName() string {
	return s.FirstName + " " + s.LastName
}

// GenerationConfig is the inbound configuration record for one worksheet
// generation run. Topic existence and roster membership are the caller's
// responsibility.
type GenerationConfig struct {
	Topics           []string           `json:"topics"`
	QuestionCount    int                `json:"questionCount"`
	WarmUpCount      int                `json:"warmUpCount"`
	WarmUpDifficulty string             `json:"warmUpDifficulty"`
	FormCount        int                `json:"formCount"` // 1..10
	IncludeHints     bool               `json:"includeHints"`
	IncludeGeometry  bool               `json:"includeGeometry"`
	UseAIImages      bool               `json:"useAIImages"`
	UseAdaptive      bool               `json:"useAdaptive"`
	IncludeIDCodes   bool               `json:"includeIdCodes"`
	MarginSize       string             `json:"marginSize"` // small|medium|large
	Students         []StudentSelection `json:"students"`
}

// WorksheetPreset is a named bundle of generation settings, persisted
// per teacher in Redis.
type WorksheetPreset struct {
	Name             string `json:"name"`
	QuestionCount    int    `json:"questionCount"`
	WarmUpCount      int    `json:"warmUpCount"`
	WarmUpDifficulty string `json:"warmUpDifficulty"`
	FormCount        int    `json:"formCount"`
	IncludeHints     bool   `json:"includeHints"`
	MarginSize       string `json:"marginSize"`
}

// WorksheetDocument records one finished artifact handed to storage.
// swagger:model
type WorksheetDocument struct {
	BaseModel
	TeacherID    uint   `gorm:"index;not null" json:"teacherId"`
	Topic        string `gorm:"size:200;not null" json:"topic"`
	FormCount    int    `gorm:"not null" json:"formCount"`
	StudentCount int    `gorm:"not null" json:"studentCount"`
	PageCount    int    `gorm:"not null" json:"pageCount"`
	Filename     string `gorm:"size:255;not null" json:"filename"`
	URL          string `gorm:"size:500" json:"url"`
}
