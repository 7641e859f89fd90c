package capture

import (
	"errors"
	"fmt"

	"facedemo/internal/models"

	"gocv.io/x/gocv"
)

// ErrEndOfStream is returned by Next once a finite source is exhausted.
var ErrEndOfStream = errors.New("end of stream")

// FrameSource produces frames on demand. The caller owns every Mat returned
// by Next and must close it.
type FrameSource interface {
	Kind() models.SourceKind
	Next() (gocv.Mat, error)
	Close() error
}

// OpenError means the image, video file or camera could not be opened.
type OpenError struct {
	Kind   models.SourceKind
	Target string
	Err    error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open %s %q: %v", e.Kind, e.Target, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// DecodeError means a frame could not be read from an open source.
type DecodeError struct {
	Kind models.SourceKind
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("read %s frame: %v", e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

var (
	errNotOpened  = errors.New("device not opened")
	errEmptyImage = errors.New("file is not a readable image")
	errNoFrame    = errors.New("no frame available")
	errClosed     = errors.New("source closed")
)
