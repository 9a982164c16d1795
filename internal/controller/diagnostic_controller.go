package controller

import (
	"strconv"

	"worksheet_edu_backend/internal/service"
	"worksheet_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DiagnosticController struct {
	DiagnosticService *service.DiagnosticService
	AuthService       *service.AuthService
}

func NewDiagnosticController(diagnosticService *service.DiagnosticService, authService *service.AuthService) *DiagnosticController {
	return &DiagnosticController{DiagnosticService: diagnosticService, AuthService: authService}
}

// @Summary Record graded diagnostic score grids for one or more students
// @Tags diagnostics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body object true "scores [{studentId, studentName, topic, grid}]"
// @Success 200 {object} util.Response
// @Router /api/teacher/diagnostics [post]
func (c *DiagnosticController) Record(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var body struct {
		Scores []service.RawScore `json:"scores" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	teacher, err := c.AuthService.GetUser(claims.UserID)
	if err != nil {
		util.Unauthorized(ctx)
		return
	}

	results, events, err := c.DiagnosticService.RecordScores(teacher, body.Scores)
	if err != nil {
		// Rows written before the failure stay; report what landed.
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"results": results, "events": events})
}

// @Summary A student's diagnostic history, newest first
// @Tags diagnostics
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "student id"
// @Param topic query string false "topic"
// @Success 200 {object} util.Response
// @Router /api/teacher/students/{studentId}/diagnostics [get]
func (c *DiagnosticController) History(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	studentID, err := strconv.Atoi(ctx.Param("studentId"))
	if err != nil {
		util.BadRequest(ctx, "invalid student id")
		return
	}

	results, err := c.DiagnosticService.ListForStudent(uint(studentID), ctx.Query("topic"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, results)
}
