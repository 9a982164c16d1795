package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"worksheet_edu_backend/internal/model"
	"worksheet_edu_backend/internal/repository"
	"worksheet_edu_backend/internal/service"
	"worksheet_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type WorksheetController struct {
	WorksheetService *service.WorksheetService
}

func NewWorksheetController(worksheetService *service.WorksheetService) *WorksheetController {
	return &WorksheetController{WorksheetService: worksheetService}
}

// @Summary Generate, render and store a worksheet set in one call
// @Tags worksheets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param download query bool false "stream the PDF instead of metadata"
// @Param body body model.GenerationConfig true "generation config"
// @Success 200 {object} util.Response
// @Router /api/teacher/worksheets/generate [post]
func (c *WorksheetController) Generate(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var cfg model.GenerationConfig
	if err := ctx.ShouldBindJSON(&cfg); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	doc, pdf, err := c.WorksheetService.Generate(ctx.Request.Context(), claims.UserID, cfg)
	if err != nil {
		respondWorksheetError(ctx, err)
		return
	}
	respondDocument(ctx, doc, pdf)
}

// @Summary Prepare a generation run for review before rendering
// @Tags worksheets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.GenerationConfig true "generation config"
// @Success 201 {object} util.Response
// @Router /api/teacher/worksheets/runs [post]
func (c *WorksheetController) Prepare(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var cfg model.GenerationConfig
	if err := ctx.ShouldBindJSON(&cfg); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	run, err := c.WorksheetService.Prepare(ctx.Request.Context(), claims.UserID, cfg)
	if err != nil {
		respondWorksheetError(ctx, err)
		return
	}
	util.Created(ctx, run)
}

// @Summary Fetch a prepared run for review
// @Tags worksheets
// @Produce json
// @Security BearerAuth
// @Param runId path string true "run id"
// @Success 200 {object} util.Response
// @Router /api/teacher/worksheets/runs/{runId} [get]
func (c *WorksheetController) GetRun(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	run, err := c.WorksheetService.GetRun(ctx.Request.Context(), claims.UserID, ctx.Param("runId"))
	if err != nil {
		respondWorksheetError(ctx, err)
		return
	}
	util.Success(ctx, run)
}

// @Summary Regenerate one (form, level) question set within a prepared run
// @Tags worksheets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param runId path string true "run id"
// @Param body body object true "{form, level}"
// @Success 200 {object} util.Response
// @Router /api/teacher/worksheets/runs/{runId}/regenerate-entry [post]
func (c *WorksheetController) RegenerateEntry(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var body struct {
		Form  model.FormLetter       `json:"form" binding:"required"`
		Level model.AdvancementLevel `json:"level" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if !body.Level.Valid() {
		util.BadRequest(ctx, "invalid level")
		return
	}

	run, err := c.WorksheetService.RegenerateEntry(ctx.Request.Context(), claims.UserID, ctx.Param("runId"), body.Form, body.Level)
	if err != nil {
		respondWorksheetError(ctx, err)
		return
	}
	util.Success(ctx, run)
}

// @Summary Regenerate a single question within a prepared run
// @Tags worksheets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param runId path string true "run id"
// @Param body body object true "{form, level, section, index}"
// @Success 200 {object} util.Response
// @Router /api/teacher/worksheets/runs/{runId}/regenerate-question [post]
func (c *WorksheetController) RegenerateQuestion(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var body struct {
		Form    model.FormLetter       `json:"form" binding:"required"`
		Level   model.AdvancementLevel `json:"level" binding:"required"`
		Section string                 `json:"section" binding:"required,oneof=warmup main"`
		Index   int                    `json:"index"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if !body.Level.Valid() {
		util.BadRequest(ctx, "invalid level")
		return
	}

	run, err := c.WorksheetService.RegenerateQuestion(ctx.Request.Context(), claims.UserID, ctx.Param("runId"), body.Form, body.Level, body.Section, body.Index)
	if err != nil {
		respondWorksheetError(ctx, err)
		return
	}
	util.Success(ctx, run)
}

// @Summary Render a prepared run into the final stored document
// @Tags worksheets
// @Produce json
// @Security BearerAuth
// @Param runId path string true "run id"
// @Param download query bool false "stream the PDF instead of metadata"
// @Success 200 {object} util.Response
// @Router /api/teacher/worksheets/runs/{runId}/render [post]
func (c *WorksheetController) Render(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	doc, pdf, err := c.WorksheetService.Render(ctx.Request.Context(), claims.UserID, ctx.Param("runId"))
	if err != nil {
		respondWorksheetError(ctx, err)
		return
	}
	respondDocument(ctx, doc, pdf)
}

// @Summary List stored worksheet documents, newest first
// @Tags worksheets
// @Produce json
// @Security BearerAuth
// @Param page query int false "page" default(1)
// @Param limit query int false "page size" default(20)
// @Success 200 {object} util.Response
// @Router /api/teacher/worksheets/documents [get]
func (c *WorksheetController) ListDocuments(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	docs, total, err := c.WorksheetService.ListDocuments(claims.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: docs, Total: total, Page: page, Limit: limit})
}

func respondDocument(ctx *gin.Context, doc *model.WorksheetDocument, pdf []byte) {
	if ctx.Query("download") == "true" {
		ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
		ctx.Data(http.StatusOK, util.MimePDF, pdf)
		return
	}
	util.Success(ctx, doc)
}

func respondWorksheetError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrNoStudents),
		errors.Is(err, util.ErrNoTopics),
		errors.Is(err, util.ErrInvalidFormCount):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, repository.ErrRunNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrRunCancelled):
		// Client went away mid-run; nothing useful to write back.
		ctx.Abort()
	default:
		util.LogInternalError(ctx, err)
	}
}
