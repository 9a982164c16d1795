package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"worksheet_edu_backend/internal/model"
	"worksheet_edu_backend/internal/util"

	"github.com/go-redis/redis/v8"
)

// PresetRepository keeps each teacher's named generation presets in a Redis
// hash, one field per preset name.
type PresetRepository struct {
	rdb *redis.Client
}

func NewPresetRepository(rdb *redis.Client) *PresetRepository {
	return &PresetRepository{rdb: rdb}
}

func presetKey(teacherID uint) string {
	return fmt.Sprintf("worksheet:presets:%d", teacherID)
}

func (r *PresetRepository) Save(ctx context.Context, teacherID uint, preset model.WorksheetPreset) error {
	data, err := json.Marshal(preset)
	if err != nil {
		return err
	}
	return r.rdb.HSet(ctx, presetKey(teacherID), preset.Name, data).Err()
}

func (r *PresetRepository) List(ctx context.Context, teacherID uint) ([]model.WorksheetPreset, error) {
	fields, err := r.rdb.HGetAll(ctx, presetKey(teacherID)).Result()
	if err != nil {
		return nil, err
	}

	presets := make([]model.WorksheetPreset, 0, len(fields))
	for _, raw := range fields {
		var p model.WorksheetPreset
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			continue
		}
		presets = append(presets, p)
	}
	return presets, nil
}

func (r *PresetRepository) Delete(ctx context.Context, teacherID uint, name string) error {
	removed, err := r.rdb.HDel(ctx, presetKey(teacherID), name).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return util.ErrPresetNotFound
	}
	return nil
}
