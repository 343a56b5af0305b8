package services

import "errors"

// Service errors
var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrNoPipeline        = errors.New("no pipeline configured")
)
