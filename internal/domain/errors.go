package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError carrying the same code, so copies produced by
// WithError/WithDetail still satisfy errors.Is against the sentinels below.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		Detail:     e.Detail,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// WithDetail returns a copy carrying a client-visible detail string.
func (e *AppError) WithDetail(detail string) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		Detail:     detail,
		StatusCode: e.StatusCode,
		Err:        e.Err,
	}
}

// PublicMessage is the text sent to clients.
func (e *AppError) PublicMessage() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request body",
		StatusCode: 400,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 400,
	}

	ErrNoFaceDetected = &AppError{
		Code:       "NO_FACE_DETECTED",
		Message:    "No face detected in the image. Please try again with better lighting.",
		StatusCode: 400,
	}

	ErrProcessing = &AppError{
		Code:       "PROCESSING_ERROR",
		Message:    "Error processing image",
		StatusCode: 500,
	}

	ErrStorage = &AppError{
		Code:       "STORAGE_ERROR",
		Message:    "Failed to save registration. Please try again.",
		StatusCode: 500,
	}

	ErrCorruptStore = &AppError{
		Code:       "CORRUPT_STORE",
		Message:    "User store is corrupt",
		StatusCode: 500,
	}

	ErrNotRecognized = &AppError{
		Code:       "NOT_RECOGNIZED",
		Message:    "User not recognized. Please register first.",
		StatusCode: 404,
	}

	ErrRateLimited = &AppError{
		Code:       "RATE_LIMITED",
		Message:    "Too many requests. Please try again later.",
		StatusCode: 429,
	}
)

// Validation failures share the VALIDATION_FAILED code and match
// ErrValidationFailed under errors.Is.
var (
	ErrNameAndImageRequired = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Name and image are required",
		StatusCode: 400,
	}

	ErrImageRequired = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Image is required",
		StatusCode: 400,
	}
)

// ErrSnapshotSave is a STORAGE_ERROR raised before the user record is written.
var ErrSnapshotSave = &AppError{
	Code:       "STORAGE_ERROR",
	Message:    "Failed to save image. Please try again.",
	StatusCode: 500,
}
