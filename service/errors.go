package service

import "errors"

var (
	ErrInvalidUTF8         = errors.New("document is not valid UTF-8 text")
	ErrCorruptPDF          = errors.New("document is not a readable PDF")
	ErrInvalidChunkConfig  = errors.New("chunk overlap must be smaller than chunk size")
	ErrAgentIterationLimit = errors.New("agent stopped after reaching the iteration limit")
	ErrNoCompletion        = errors.New("no response generated")
	ErrUnsupportedKind     = errors.New("unsupported document kind")
)
