package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"worksheet_edu_backend/internal/document"
	"worksheet_edu_backend/internal/model"
	"worksheet_edu_backend/internal/repository"
	"worksheet_edu_backend/internal/util"
	"worksheet_edu_backend/pkg/logger"
	"worksheet_edu_backend/pkg/monitoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WorksheetService orchestrates a full generation run: placement, the
// question cache, document layout, PDF rendering and artifact storage.
type WorksheetService struct {
	placement *PlacementService
	questions *QuestionService
	storage   *StorageService
	documents *repository.WorksheetDocumentRepository
	runs      *repository.RunRepository
}

func NewWorksheetService(
	placement *PlacementService,
	questions *QuestionService,
	storage *StorageService,
	documents *repository.WorksheetDocumentRepository,
	runs *repository.RunRepository,
) *WorksheetService {
	return &WorksheetService{
		placement: placement,
		questions: questions,
		storage:   storage,
		documents: documents,
		runs:      runs,
	}
}

func validateConfig(cfg model.GenerationConfig) error {
	if len(cfg.Students) == 0 {
		return util.ErrNoStudents
	}
	if len(cfg.Topics) == 0 {
		return util.ErrNoTopics
	}
	if cfg.FormCount < 1 || cfg.FormCount > model.MaxForms {
		return util.ErrInvalidFormCount
	}
	return nil
}

// Generate runs the one-shot pipeline: every cache entry is fully resolved
// before any layout begins, then the document is laid out synchronously,
// rendered and stored.
func (s *WorksheetService) Generate(ctx context.Context, teacherID uint, cfg model.GenerationConfig) (*model.WorksheetDocument, []byte, error) {
	start := time.Now()

	if err := validateConfig(cfg); err != nil {
		return nil, nil, err
	}

	placed, err := s.placement.PlaceStudents(cfg.Students, cfg.UseAdaptive, cfg.FormCount)
	if err != nil {
		return nil, nil, err
	}

	cache, err := s.questions.BuildCache(ctx, cfg, placed)
	if err != nil {
		if err == util.ErrRunCancelled {
			monitoring.GenerationRuns.WithLabelValues("cancelled").Inc()
		} else {
			monitoring.GenerationRuns.WithLabelValues("error").Inc()
		}
		return nil, nil, err
	}

	doc, pdf, err := s.renderAndStore(ctx, teacherID, cfg, placed, cache)
	if err != nil {
		monitoring.GenerationRuns.WithLabelValues("error").Inc()
		return nil, nil, err
	}

	monitoring.GenerationRuns.WithLabelValues("ok").Inc()
	monitoring.GenerationDuration.Observe(time.Since(start).Seconds())
	return doc, pdf, nil
}

// layout composes the whole document: one worksheet per student in roster
// order, then the answer key.
func (s *WorksheetService) layout(cfg model.GenerationConfig, placed []PlacedStudent, cache *QuestionCache) *document.Layout {
	topic := strings.Join(cfg.Topics, ", ")
	engine := document.NewEngine(document.GeometryFor(document.MarginSize(cfg.MarginSize)))

	for _, p := range placed {
		spec := document.WorksheetSpec{
			StudentName:  p.Student.FullName(),
			StudentID:    p.Student.ID,
			Level:        p.Level,
			Form:         p.Form,
			Topic:        topic,
			IncludeHints: cfg.IncludeHints,
		}
		if cfg.IncludeIDCodes {
			spec.IDCode = idCode(p)
		}
		if set, ok := cache.Get(p.Form, p.Level); ok {
			spec.WarmUp = set.WarmUp
			spec.Main = set.Main
		}
		document.ComposeWorksheet(engine, spec)
	}

	document.ComposeAnswerKey(engine, topic, cache.Entries)
	return engine.Finish()
}

// idCode is the short routing code printed on a sheet and embedded in its QR
// payload.
func idCode(p PlacedStudent) string {
	return fmt.Sprintf("%s%s-%04d", p.Form, p.Level, p.Student.ID%10000)
}

func (s *WorksheetService) renderAndStore(ctx context.Context, teacherID uint, cfg model.GenerationConfig, placed []PlacedStudent, cache *QuestionCache) (*model.WorksheetDocument, []byte, error) {
	topic := strings.Join(cfg.Topics, ", ")
	l := s.layout(cfg, placed, cache)

	pdf, err := document.RenderPDF(l, topic)
	if err != nil {
		return nil, nil, fmt.Errorf("render pdf: %w", err)
	}

	filename := documentFilename(cfg, time.Now())
	url, err := s.storage.Upload(ctx, filename, bytes.NewReader(pdf), int64(len(pdf)), util.MimePDF)
	if err != nil {
		// Keep the run usable: the caller still gets the bytes for direct
		// download, only the stored copy is missing.
		logger.Log.Error("worksheet upload failed", zap.String("filename", filename), zap.Error(err))
		url = ""
	}

	doc := &model.WorksheetDocument{
		TeacherID:    teacherID,
		Topic:        topic,
		FormCount:    cfg.FormCount,
		StudentCount: len(placed),
		PageCount:    l.PageCount(),
		Filename:     filename,
		URL:          url,
	}
	if err := s.documents.Create(doc); err != nil {
		return nil, nil, err
	}

	logger.Log.Info("worksheet document generated",
		zap.String("topic", topic),
		zap.Int("students", len(placed)),
		zap.Int("forms", cfg.FormCount),
		zap.Int("pages", l.PageCount()),
		zap.String("filename", filename))
	return doc, pdf, nil
}

// documentFilename builds the deterministic artifact name, e.g.
// worksheet_fractions_formsA-C_20260830.pdf.
func documentFilename(cfg model.GenerationConfig, now time.Time) string {
	slug := topicSlug(cfg.Topics[0])
	lastForm := model.FormLetters[cfg.FormCount-1]
	return fmt.Sprintf("worksheet_%s_forms%s-%s_%s.pdf",
		slug, model.FormLetters[0], lastForm, now.Format("20060102"))
}

func topicSlug(topic string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(topic) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	return b.String()
}

// GenerationRun is a prepared run parked between the prepare, regenerate and
// render steps of the interactive flow. Resolved image bytes are not parked;
// diagrams are re-resolved when the run is rendered.
type GenerationRun struct {
	ID        string                 `json:"id"`
	TeacherID uint                   `json:"teacherId"`
	Config    model.GenerationConfig `json:"config"`
	Placed    []PlacedStudent        `json:"placed"`
	Cache     *QuestionCache         `json:"cache"`
	CreatedAt time.Time              `json:"createdAt"`
}

// Prepare resolves placement and the question cache and parks the run for
// review. Nothing is laid out or stored yet.
func (s *WorksheetService) Prepare(ctx context.Context, teacherID uint, cfg model.GenerationConfig) (*GenerationRun, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	placed, err := s.placement.PlaceStudents(cfg.Students, cfg.UseAdaptive, cfg.FormCount)
	if err != nil {
		return nil, err
	}

	cache, err := s.questions.BuildCache(ctx, cfg, placed)
	if err != nil {
		if err == util.ErrRunCancelled {
			monitoring.GenerationRuns.WithLabelValues("cancelled").Inc()
		}
		return nil, err
	}

	run := &GenerationRun{
		ID:        uuid.NewString(),
		TeacherID: teacherID,
		Config:    cfg,
		Placed:    placed,
		Cache:     cache,
		CreatedAt: time.Now(),
	}
	if err := s.saveRun(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *WorksheetService) saveRun(ctx context.Context, run *GenerationRun) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return err
	}
	return s.runs.Save(ctx, run.ID, payload)
}

func (s *WorksheetService) loadRun(ctx context.Context, teacherID uint, runID string) (*GenerationRun, error) {
	payload, err := s.runs.Load(ctx, runID)
	if err != nil {
		return nil, err
	}
	var run GenerationRun
	if err := json.Unmarshal(payload, &run); err != nil {
		return nil, err
	}
	if run.TeacherID != teacherID {
		return nil, util.ErrPermissionDenied
	}
	return &run, nil
}

// GetRun returns a parked run for review.
func (s *WorksheetService) GetRun(ctx context.Context, teacherID uint, runID string) (*GenerationRun, error) {
	return s.loadRun(ctx, teacherID, runID)
}

// RegenerateEntry replaces one (form, level) question set within a parked run.
func (s *WorksheetService) RegenerateEntry(ctx context.Context, teacherID uint, runID string, form model.FormLetter, level model.AdvancementLevel) (*GenerationRun, error) {
	run, err := s.loadRun(ctx, teacherID, runID)
	if err != nil {
		return nil, err
	}
	if err := s.questions.RegenerateEntry(ctx, run.Cache, run.Config, form, level); err != nil {
		return nil, err
	}
	if err := s.saveRun(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// RegenerateQuestion replaces a single question within a parked run.
func (s *WorksheetService) RegenerateQuestion(ctx context.Context, teacherID uint, runID string, form model.FormLetter, level model.AdvancementLevel, section string, index int) (*GenerationRun, error) {
	run, err := s.loadRun(ctx, teacherID, runID)
	if err != nil {
		return nil, err
	}
	if err := s.questions.RegenerateQuestion(ctx, run.Cache, run.Config, form, level, section, index); err != nil {
		return nil, err
	}
	if err := s.saveRun(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// Render finishes a parked run: re-resolves diagram assets, lays out, renders
// and stores the document, then discards the run.
func (s *WorksheetService) Render(ctx context.Context, teacherID uint, runID string) (*model.WorksheetDocument, []byte, error) {
	start := time.Now()

	run, err := s.loadRun(ctx, teacherID, runID)
	if err != nil {
		return nil, nil, err
	}

	s.questions.ResolveDiagrams(ctx, run.Cache, run.Config)

	doc, pdf, err := s.renderAndStore(ctx, teacherID, run.Config, run.Placed, run.Cache)
	if err != nil {
		monitoring.GenerationRuns.WithLabelValues("error").Inc()
		return nil, nil, err
	}

	if err := s.runs.Delete(ctx, runID); err != nil {
		logger.Log.Warn("failed to discard rendered run", zap.String("runId", runID), zap.Error(err))
	}

	monitoring.GenerationRuns.WithLabelValues("ok").Inc()
	monitoring.GenerationDuration.Observe(time.Since(start).Seconds())
	return doc, pdf, nil
}

// ListDocuments pages through a teacher's stored artifacts, newest first.
func (s *WorksheetService) ListDocuments(teacherID uint, page, limit int) ([]model.WorksheetDocument, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.documents.ListByTeacher(teacherID, page, limit)
}
