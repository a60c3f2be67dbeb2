package util

import "errors"

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrNoActiveQuiz      = errors.New("no active quiz")
	ErrUnknownQuizKind   = errors.New("unknown quiz kind")
	ErrTestNotFound      = errors.New("test not found")
	ErrCourseNotFound    = errors.New("course not found")
	ErrInvalidFileType   = errors.New("invalid file type")
	ErrInvalidVideoExt   = errors.New("invalid video file extension")
	ErrInvalidImageExt   = errors.New("invalid image file extension")
	ErrInvalidMaterial   = errors.New("invalid material type")
	ErrInvalidTestDraft  = errors.New("invalid test")
	ErrFileTooLarge      = errors.New("file too large")
	ErrMissingUploadFile = errors.New("file is required")
)
