package build

import "errors"

var (
	ErrBuild                = errors.New("build failed")
	ErrUnresolvedBase       = errors.New("unresolved base image")
	ErrFilesystem           = errors.New("filesystem operation failed")
	ErrDependencyResolution = errors.New("dependency resolution failed")
	ErrInvalidPort          = errors.New("invalid port")
	ErrStepOrder            = errors.New("build step out of order")
)
