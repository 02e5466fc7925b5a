package renderer

import "errors"

var (
	ErrImageNotBound    = errors.New("renderer: no image bound")
	ErrSceneNotDefined  = errors.New("renderer: no scene defined")
	ErrCameraNotDefined = errors.New("renderer: no camera defined")
	ErrSizeMismatch     = errors.New("renderer: camera and image size mismatch")
	ErrPixelOutOfRange  = errors.New("renderer: pixel out of range")
	ErrInterrupted      = errors.New("renderer: interrupted while rendering")
	ErrClosed           = errors.New("renderer: closed")
)
