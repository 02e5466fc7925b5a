package scene

import "errors"

var (
	ErrMaterialIndex = errors.New("scene: material index out of range")
	ErrUnknownScene  = errors.New("scene: unknown scene")
)
