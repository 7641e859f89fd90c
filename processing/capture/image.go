package capture

import (
	"sync"

	"facedemo/internal/models"

	"gocv.io/x/gocv"
)

// ImageSource yields one still image, then ErrEndOfStream.
type ImageSource struct {
	closeOnce sync.Once

	path  string
	frame gocv.Mat
	sent  bool
}

func NewImageSource(path string) (*ImageSource, error) {
	frame := gocv.IMRead(path, gocv.IMReadColor)
	if frame.Empty() {
		frame.Close()
		return nil, &OpenError{Kind: models.SourceImage, Target: path, Err: errEmptyImage}
	}

	return &ImageSource{path: path, frame: frame}, nil
}

func (s *ImageSource) Kind() models.SourceKind { return models.SourceImage }

func (s *ImageSource) Next() (gocv.Mat, error) {
	if s.sent {
		return gocv.NewMat(), ErrEndOfStream
	}
	s.sent = true
	return s.frame.Clone(), nil
}

func (s *ImageSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.sent = true
		err = s.frame.Close()
	})
	return err
}
