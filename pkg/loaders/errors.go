package loaders

import "errors"

var (
	ErrUnsupportedMesh = errors.New("loaders: unsupported mesh format")
	ErrInvalidPLY      = errors.New("loaders: invalid PLY data")
	ErrNoGeometry      = errors.New("loaders: file contains no triangles")
	ErrInvalidScene    = errors.New("loaders: invalid scene file")
)
