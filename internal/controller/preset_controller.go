package controller

import (
	"errors"

	"worksheet_edu_backend/internal/model"
	"worksheet_edu_backend/internal/service"
	"worksheet_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PresetController struct {
	PresetService *service.PresetService
}

func NewPresetController(presetService *service.PresetService) *PresetController {
	return &PresetController{PresetService: presetService}
}

// @Summary Save or overwrite a named generation preset
// @Tags presets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.WorksheetPreset true "preset"
// @Success 201 {object} util.Response
// @Router /api/teacher/worksheets/presets [post]
func (c *PresetController) Save(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var preset model.WorksheetPreset
	if err := ctx.ShouldBindJSON(&preset); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if preset.Name == "" {
		util.BadRequest(ctx, "preset name required")
		return
	}

	if err := c.PresetService.Save(ctx.Request.Context(), claims.UserID, preset); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, preset)
}

// @Summary List the teacher's saved presets
// @Tags presets
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/teacher/worksheets/presets [get]
func (c *PresetController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	presets, err := c.PresetService.List(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, presets)
}

// @Summary Delete a saved preset by name
// @Tags presets
// @Produce json
// @Security BearerAuth
// @Param name path string true "preset name"
// @Success 200 {object} util.Response
// @Router /api/teacher/worksheets/presets/{name} [delete]
func (c *PresetController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.PresetService.Delete(ctx.Request.Context(), claims.UserID, ctx.Param("name")); err != nil {
		if errors.Is(err, util.ErrPresetNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}
