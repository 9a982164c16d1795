package service

import (
	"context"
	"errors"

	"worksheet_edu_backend/internal/model"
	"worksheet_edu_backend/internal/repository"
)

// PresetService manages a teacher's saved generation presets.
type PresetService struct {
	presets *repository.PresetRepository
}

func NewPresetService(presets *repository.PresetRepository) *PresetService {
	return &PresetService{presets: presets}
}

func (s *PresetService) Save(ctx context.Context, teacherID uint, preset model.WorksheetPreset) error {
	if preset.Name == "" {
		return errors.New("preset name required")
	}
	return s.presets.Save(ctx, teacherID, preset)
}

func (s *PresetService) List(ctx context.Context, teacherID uint) ([]model.WorksheetPreset, error) {
	return s.presets.List(ctx, teacherID)
}

func (s *PresetService) Delete(ctx context.Context, teacherID uint, name string) error {
	return s.presets.Delete(ctx, teacherID, name)
}
