package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"worksheet_edu_backend/internal/model"
	"worksheet_edu_backend/internal/util"
	"worksheet_edu_backend/pkg/logger"
	"worksheet_edu_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// diagramBatchSize bounds the number of outstanding image requests awaited
// together during asset resolution.
const diagramBatchSize = 4

// FormSeed derives the deterministic generator seed for a (form, level)
// pair, so repeated runs with the same combination reproduce while distinct
// pairs diverge.
func FormSeed(form model.FormLetter, level model.AdvancementLevel) int {
	return int(form[0])*1000 + int(level[0])
}

// CacheKey is the map key for one (form, level) question set.
func CacheKey(form model.FormLetter, level model.AdvancementLevel) string {
	return fmt.Sprintf("%s-%s", form, level)
}

// QuestionCache holds the question sets of one generation run, keyed
// "{form}-{level}". It is populated exactly once per distinct key during the
// generation phase and read-only during layout; all students sharing a
// (form, level) pair reuse the identical set. Serializable so an interactive
// run can be parked in Redis between review and render.
type QuestionCache struct {
	Entries map[string]*model.QuestionSet `json:"entries"`
}

func NewQuestionCache() *QuestionCache {
	return &QuestionCache{Entries: make(map[string]*model.QuestionSet)}
}

func (c *QuestionCache) Get(form model.FormLetter, level model.AdvancementLevel) (*model.QuestionSet, bool) {
	set, ok := c.Entries[CacheKey(form, level)]
	return set, ok
}

// Keys returns the populated keys ordered by form then level.
func (c *QuestionCache) Keys() []string {
	var keys []string
	for _, form := range model.FormLetters {
		for _, level := range model.LevelOrder {
			k := CacheKey(form, level)
			if _, ok := c.Entries[k]; ok {
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// QuestionService populates and maintains the per-run question cache.
type QuestionService struct {
	generator QuestionGenerator
	images    ImageResolver
}

func NewQuestionService(generator QuestionGenerator, images ImageResolver) *QuestionService {
	return &QuestionService{generator: generator, images: images}
}

// BuildCache resolves phase one of a run: one generator call pair per
// distinct (form, level), then diagram resolution. A cancelled context stops
// issuing further external calls and fails the run; a failed generator call
// only empties its own slot (per-entry atomicity), the run continues.
func (s *QuestionService) BuildCache(ctx context.Context, cfg model.GenerationConfig, placed []PlacedStudent) (*QuestionCache, error) {
	cache := NewQuestionCache()

	for _, p := range placed {
		key := CacheKey(p.Form, p.Level)
		if _, ok := cache.Entries[key]; ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, util.ErrRunCancelled
		}
		cache.Entries[key] = s.generateEntry(ctx, cfg, p.Form, p.Level, FormSeed(p.Form, p.Level))
	}

	s.ResolveDiagrams(ctx, cache, cfg)
	return cache, nil
}

// generateEntry never fails: a generator error or empty response leaves an
// empty question set in the slot and the affected section is simply omitted
// from the worksheets.
func (s *QuestionService) generateEntry(ctx context.Context, cfg model.GenerationConfig, form model.FormLetter, level model.AdvancementLevel, seed int) *model.QuestionSet {
	set := &model.QuestionSet{}

	if cfg.WarmUpCount > 0 {
		set.WarmUp = s.generateSection(ctx, cfg, form, level, seed, "warmup", cfg.WarmUpCount, warmUpDifficulties(cfg))
	}
	set.Main = s.generateSection(ctx, cfg, form, level, seed, "main", cfg.QuestionCount, DifficultyBand(level))

	return set
}

func (s *QuestionService) generateSection(ctx context.Context, cfg model.GenerationConfig, form model.FormLetter, level model.AdvancementLevel, seed int, section string, count int, difficulties []string) []model.GeneratedQuestion {
	questions, err := s.generator.GenerateQuestions(ctx, GenerateRequest{
		Topics:          cfg.Topics,
		Count:           count,
		Difficulties:    difficulties,
		Form:            string(form),
		Level:           string(level),
		Seed:            seed,
		Section:         section,
		IncludeHints:    cfg.IncludeHints,
		IncludeGeometry: cfg.IncludeGeometry,
		UseAIImages:     cfg.UseAIImages,
	})
	if err != nil {
		monitoring.GeneratorCalls.WithLabelValues("error").Inc()
		logger.Log.Error("question generation failed, leaving slot empty",
			zap.String("form", string(form)),
			zap.String("level", string(level)),
			zap.String("section", section),
			zap.Error(err))
		return nil
	}
	monitoring.GeneratorCalls.WithLabelValues("ok").Inc()

	for i := range questions {
		questions[i].Number = i + 1 // section-local numbering
		questions[i].Level = level
	}
	return questions
}

func warmUpDifficulties(cfg model.GenerationConfig) []string {
	if cfg.WarmUpDifficulty != "" {
		return []string{cfg.WarmUpDifficulty}
	}
	return []string{"easy"}
}

// RegenerateEntry replaces one whole (form, level) entry in place with a
// fresh seed, leaving every other entry untouched.
func (s *QuestionService) RegenerateEntry(ctx context.Context, cache *QuestionCache, cfg model.GenerationConfig, form model.FormLetter, level model.AdvancementLevel) error {
	key := CacheKey(form, level)
	if _, ok := cache.Entries[key]; !ok {
		return fmt.Errorf("no cache entry for %s", key)
	}
	seed := FormSeed(form, level) + 1 + rand.Intn(100000)
	cache.Entries[key] = s.generateEntry(ctx, cfg, form, level, seed)
	s.ResolveDiagrams(ctx, cache, cfg)
	return nil
}

// RegenerateQuestion replaces a single question slot within an entry,
// preserving its section-local number.
func (s *QuestionService) RegenerateQuestion(ctx context.Context, cache *QuestionCache, cfg model.GenerationConfig, form model.FormLetter, level model.AdvancementLevel, section string, index int) error {
	key := CacheKey(form, level)
	entry, ok := cache.Entries[key]
	if !ok {
		return fmt.Errorf("no cache entry for %s", key)
	}

	var target []model.GeneratedQuestion
	var difficulties []string
	switch section {
	case "warmup":
		target = entry.WarmUp
		difficulties = warmUpDifficulties(cfg)
	case "main":
		target = entry.Main
		difficulties = DifficultyBand(level)
	default:
		return fmt.Errorf("unknown section %q", section)
	}
	if index < 0 || index >= len(target) {
		return fmt.Errorf("question index %d out of range for %s/%s", index, key, section)
	}

	seed := FormSeed(form, level) + 1 + rand.Intn(100000)
	replacement := s.generateSection(ctx, cfg, form, level, seed, section, 1, difficulties)
	if len(replacement) == 0 {
		return fmt.Errorf("regeneration returned no question for %s/%s", key, section)
	}

	replacement[0].Number = target[index].Number
	target[index] = replacement[0]
	s.ResolveDiagrams(ctx, cache, cfg)
	return nil
}

// ResolveDiagrams fills in PNG bytes for every unresolved diagram, awaiting
// fixed-size batches so outstanding remote requests stay bounded. A failed or
// timed-out asset clears its slot and is skipped; text layout is unaffected.
func (s *QuestionService) ResolveDiagrams(ctx context.Context, cache *QuestionCache, cfg model.GenerationConfig) {
	var pending []*model.GeneratedQuestion
	for _, entry := range cache.Entries {
		for i := range entry.WarmUp {
			if needsResolution(&entry.WarmUp[i]) {
				pending = append(pending, &entry.WarmUp[i])
			}
		}
		for i := range entry.Main {
			if needsResolution(&entry.Main[i]) {
				pending = append(pending, &entry.Main[i])
			}
		}
	}

	for start := 0; start < len(pending); start += diagramBatchSize {
		end := start + diagramBatchSize
		if end > len(pending) {
			end = len(pending)
		}

		var wg sync.WaitGroup
		for _, q := range pending[start:end] {
			wg.Add(1)
			go func(q *model.GeneratedQuestion) {
				defer wg.Done()
				s.resolveOne(ctx, q, cfg)
			}(q)
		}
		wg.Wait()
	}
}

func needsResolution(q *model.GeneratedQuestion) bool {
	d := q.Diagram
	return d != nil && len(d.PNG) == 0
}

func (s *QuestionService) resolveOne(ctx context.Context, q *model.GeneratedQuestion, cfg model.GenerationConfig) {
	d := q.Diagram

	var png []byte
	var err error
	switch {
	case d.DataURI != "":
		png, err = DecodeDataURI(d.DataURI)
	case d.URL != "":
		png, err = s.images.FetchImage(ctx, d.URL)
	case d.Prompt != "" && cfg.UseAIImages:
		png, err = s.images.GenerateDiagramImage(ctx, d.Prompt)
	default:
		// SVG-only or prompt without AI images: nothing renderable, skip.
		q.Diagram = nil
		return
	}

	if err != nil {
		logger.Log.Warn("diagram resolution failed, skipping slot",
			zap.String("topic", q.Topic),
			zap.Int("question", q.Number),
			zap.Error(err))
		q.Diagram = nil
		return
	}
	d.PNG = png
}
