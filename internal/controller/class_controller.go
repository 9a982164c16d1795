package controller

import (
	"errors"
	"strconv"

	"worksheet_edu_backend/internal/service"
	"worksheet_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ClassController struct {
	ClassService *service.ClassService
}

func NewClassController(classService *service.ClassService) *ClassController {
	return &ClassController{ClassService: classService}
}

// @Summary Create a class with its initial roster
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateClassInput true "class"
// @Success 201 {object} util.Response
// @Router /api/teacher/classes [post]
func (c *ClassController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var in service.CreateClassInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	class, err := c.ClassService.CreateClass(claims.UserID, in)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, class)
}

// @Summary List the teacher's classes
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/teacher/classes [get]
func (c *ClassController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	classes, err := c.ClassService.ListClasses(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, classes)
}

// @Summary Delete a class
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path int true "class id"
// @Success 200 {object} util.Response
// @Router /api/teacher/classes/{id} [delete]
func (c *ClassController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	classID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid class id")
		return
	}

	if err := c.ClassService.DeleteClass(claims.UserID, uint(classID)); err != nil {
		respondClassError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}

// @Summary Add a student to a class roster
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "class id"
// @Param body body service.StudentInput true "student"
// @Success 201 {object} util.Response
// @Router /api/teacher/classes/{id}/students [post]
func (c *ClassController) AddStudent(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	classID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid class id")
		return
	}

	var in service.StudentInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	student, err := c.ClassService.AddStudent(claims.UserID, uint(classID), in)
	if err != nil {
		respondClassError(ctx, err)
		return
	}
	util.Created(ctx, student)
}

// @Summary List a class roster
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path int true "class id"
// @Success 200 {object} util.Response
// @Router /api/teacher/classes/{id}/students [get]
func (c *ClassController) ListStudents(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	classID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid class id")
		return
	}

	students, err := c.ClassService.ListStudents(claims.UserID, uint(classID))
	if err != nil {
		respondClassError(ctx, err)
		return
	}
	util.Success(ctx, students)
}

// @Summary Class roster with latest diagnostic placement for a topic
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path int true "class id"
// @Param topic query string false "topic"
// @Param filter query string false "all | assessed | unassessed" default(all)
// @Success 200 {object} util.Response
// @Router /api/teacher/classes/{id}/roster [get]
func (c *ClassController) Roster(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	classID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid class id")
		return
	}

	topic := ctx.Query("topic")
	filter := service.RosterFilter(ctx.DefaultQuery("filter", string(service.RosterAll)))
	switch filter {
	case service.RosterAll, service.RosterAssessed, service.RosterUnassessed:
	default:
		util.BadRequest(ctx, "filter must be all, assessed or unassessed")
		return
	}

	entries, err := c.ClassService.Roster(claims.UserID, uint(classID), topic, filter)
	if err != nil {
		respondClassError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

func respondClassError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrClassNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}
