package util

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailRegistered  = errors.New("email already registered")
	ErrPermissionDenied = errors.New("permission denied")
	ErrClassNotFound    = errors.New("class not found")
	ErrNoStudents       = errors.New("no students selected")
	ErrNoTopics         = errors.New("no topics selected")
	ErrInvalidFormCount = errors.New("form count must be between 1 and 10")
	ErrPresetNotFound   = errors.New("preset not found")
	ErrRunCancelled     = errors.New("generation run cancelled")
)
