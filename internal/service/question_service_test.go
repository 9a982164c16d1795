package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"testing"

	"worksheet_edu_backend/internal/model"
	"worksheet_edu_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	mu    sync.Mutex
	calls []GenerateRequest
	fail  bool
}

func (g *stubGenerator) GenerateQuestions(ctx context.Context, req GenerateRequest) ([]model.GeneratedQuestion, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, req)
	if g.fail {
		return nil, errors.New("generator down")
	}
	out := make([]model.GeneratedQuestion, req.Count)
	for i := range out {
		out[i] = model.GeneratedQuestion{
			Text:  fmt.Sprintf("%s/%s/%s seed=%d q%d", req.Form, req.Level, req.Section, req.Seed, i),
			Topic: "fractions",
		}
	}
	return out, nil
}

func (g *stubGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

type stubImages struct {
	fail bool
	png  []byte
}

func (s *stubImages) GenerateDiagramImage(ctx context.Context, prompt string) ([]byte, error) {
	if s.fail {
		return nil, errors.New("image model down")
	}
	return s.png, nil
}

func (s *stubImages) FetchImage(ctx context.Context, url string) ([]byte, error) {
	if s.fail {
		return nil, errors.New("fetch failed")
	}
	return s.png, nil
}

func testConfig() model.GenerationConfig {
	return model.GenerationConfig{
		Topics:        []string{"fractions"},
		QuestionCount: 5,
		WarmUpCount:   2,
		FormCount:     2,
	}
}

func placements() []PlacedStudent {
	// Six students sharing three distinct (form, level) pairs.
	return []PlacedStudent{
		{Student: model.StudentSelection{ID: 1}, Level: model.LevelB, Form: "A"},
		{Student: model.StudentSelection{ID: 2}, Level: model.LevelB, Form: "B"},
		{Student: model.StudentSelection{ID: 3}, Level: model.LevelB, Form: "A"},
		{Student: model.StudentSelection{ID: 4}, Level: model.LevelC, Form: "A"},
		{Student: model.StudentSelection{ID: 5}, Level: model.LevelB, Form: "B"},
		{Student: model.StudentSelection{ID: 6}, Level: model.LevelC, Form: "A"},
	}
}

func TestFormSeed(t *testing.T) {
	assert.Equal(t, 65066, FormSeed("A", model.LevelB)) // 'A'*1000 + 'B'
	assert.NotEqual(t, FormSeed("A", model.LevelB), FormSeed("B", model.LevelA))
	assert.NotEqual(t, FormSeed("A", model.LevelB), FormSeed("A", model.LevelC))
}

func TestBuildCache_OneGenerationPerDistinctPair(t *testing.T) {
	gen := &stubGenerator{}
	svc := NewQuestionService(gen, &stubImages{})

	cache, err := svc.BuildCache(context.Background(), testConfig(), placements())
	require.NoError(t, err)

	// Three distinct pairs, two section calls each.
	assert.Len(t, cache.Entries, 3)
	assert.Equal(t, 6, gen.callCount())

	set, ok := cache.Get("A", model.LevelB)
	require.True(t, ok)
	assert.Len(t, set.WarmUp, 2)
	assert.Len(t, set.Main, 5)

	// Section-local renumbering and level stamping.
	for i, q := range set.Main {
		assert.Equal(t, i+1, q.Number)
		assert.Equal(t, model.LevelB, q.Level)
	}

	// Students 1 and 3 share the identical set.
	again, ok := cache.Get("A", model.LevelB)
	require.True(t, ok)
	assert.Same(t, set, again)
}

func TestBuildCache_CancelledContext(t *testing.T) {
	gen := &stubGenerator{}
	svc := NewQuestionService(gen, &stubImages{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.BuildCache(ctx, testConfig(), placements())
	assert.ErrorIs(t, err, util.ErrRunCancelled)
	assert.Equal(t, 0, gen.callCount())
}

func TestBuildCache_GeneratorFailureLeavesEmptySlot(t *testing.T) {
	gen := &stubGenerator{fail: true}
	svc := NewQuestionService(gen, &stubImages{})

	cache, err := svc.BuildCache(context.Background(), testConfig(), placements())
	require.NoError(t, err)

	// Every slot exists and is empty; the run itself did not fail.
	assert.Len(t, cache.Entries, 3)
	for _, set := range cache.Entries {
		assert.True(t, set.Empty())
	}
}

func TestCacheKeys_OrderedFormThenLevel(t *testing.T) {
	cache := NewQuestionCache()
	cache.Entries[CacheKey("B", model.LevelC)] = &model.QuestionSet{}
	cache.Entries[CacheKey("A", model.LevelF)] = &model.QuestionSet{}
	cache.Entries[CacheKey("A", model.LevelB)] = &model.QuestionSet{}

	assert.Equal(t, []string{"A-B", "A-F", "B-C"}, cache.Keys())
}

func TestRegenerateEntry(t *testing.T) {
	gen := &stubGenerator{}
	svc := NewQuestionService(gen, &stubImages{})
	cfg := testConfig()

	cache, err := svc.BuildCache(context.Background(), cfg, placements())
	require.NoError(t, err)

	before := cache.Entries[CacheKey("A", model.LevelB)]
	otherBefore := cache.Entries[CacheKey("B", model.LevelB)]

	require.NoError(t, svc.RegenerateEntry(context.Background(), cache, cfg, "A", model.LevelB))

	after := cache.Entries[CacheKey("A", model.LevelB)]
	assert.NotSame(t, before, after)
	assert.NotEqual(t, before.Main[0].Text, after.Main[0].Text)

	// Untouched entries keep their identity.
	assert.Same(t, otherBefore, cache.Entries[CacheKey("B", model.LevelB)])

	err = svc.RegenerateEntry(context.Background(), cache, cfg, "J", model.LevelF)
	assert.Error(t, err)
}

func TestRegenerateQuestion_PreservesNumber(t *testing.T) {
	gen := &stubGenerator{}
	svc := NewQuestionService(gen, &stubImages{})
	cfg := testConfig()

	cache, err := svc.BuildCache(context.Background(), cfg, placements())
	require.NoError(t, err)

	entry := cache.Entries[CacheKey("A", model.LevelB)]
	oldText := entry.Main[2].Text

	require.NoError(t, svc.RegenerateQuestion(context.Background(), cache, cfg, "A", model.LevelB, "main", 2))

	assert.Equal(t, 3, entry.Main[2].Number)
	assert.NotEqual(t, oldText, entry.Main[2].Text)

	// Neighbours untouched.
	assert.Equal(t, 2, entry.Main[1].Number)

	err = svc.RegenerateQuestion(context.Background(), cache, cfg, "A", model.LevelB, "main", 99)
	assert.Error(t, err)
	err = svc.RegenerateQuestion(context.Background(), cache, cfg, "A", model.LevelB, "bonus", 0)
	assert.Error(t, err)
}

func TestResolveDiagrams(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	svc := NewQuestionService(&stubGenerator{}, &stubImages{png: png})

	dataURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	cache := NewQuestionCache()
	cache.Entries["A-B"] = &model.QuestionSet{
		Main: []model.GeneratedQuestion{
			{Number: 1, Diagram: &model.Diagram{DataURI: dataURI}},
			{Number: 2, Diagram: &model.Diagram{URL: "http://example.com/fig.png"}},
			{Number: 3, Diagram: &model.Diagram{SVG: "<svg/>"}},
			{Number: 4},
		},
	}

	svc.ResolveDiagrams(context.Background(), cache, model.GenerationConfig{})

	entry := cache.Entries["A-B"]
	assert.Equal(t, png, entry.Main[0].Diagram.PNG)
	assert.Equal(t, png, entry.Main[1].Diagram.PNG)
	// SVG-only has nothing renderable and is dropped.
	assert.Nil(t, entry.Main[2].Diagram)
	assert.Nil(t, entry.Main[3].Diagram)
}

func TestResolveDiagrams_FailureClearsSlot(t *testing.T) {
	svc := NewQuestionService(&stubGenerator{}, &stubImages{fail: true})

	cache := NewQuestionCache()
	cache.Entries["A-B"] = &model.QuestionSet{
		Main: []model.GeneratedQuestion{
			{Number: 1, Text: "keep me", Diagram: &model.Diagram{URL: "http://example.com/fig.png"}},
		},
	}

	svc.ResolveDiagrams(context.Background(), cache, model.GenerationConfig{})

	q := cache.Entries["A-B"].Main[0]
	assert.Nil(t, q.Diagram)
	assert.Equal(t, "keep me", q.Text)
}
