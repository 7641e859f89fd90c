package capture

import (
	"strconv"
	"sync"

	"facedemo/internal/models"

	"gocv.io/x/gocv"
)

// frameReader is the part of gocv.VideoCapture used for playback.
type frameReader interface {
	Read(m *gocv.Mat) bool
	Close() error
}

var _ frameReader = (*gocv.VideoCapture)(nil)

// DeviceSource plays a video file or a camera. Camera frames are mirrored
// horizontally before they are returned and a camera never ends: a failed
// read is a DecodeError instead of ErrEndOfStream.
type DeviceSource struct {
	closeOnce sync.Once

	kind   models.SourceKind
	target string
	reader frameReader
	closed bool
}

func NewVideoSource(path string) (*DeviceSource, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		if vc != nil {
			vc.Close()
		}
		return nil, &OpenError{Kind: models.SourceVideo, Target: path, Err: err}
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, &OpenError{Kind: models.SourceVideo, Target: path, Err: errNotOpened}
	}

	return newDeviceSource(models.SourceVideo, path, vc), nil
}

func NewCameraSource(deviceID int) (*DeviceSource, error) {
	target := strconv.Itoa(deviceID)

	vc, err := gocv.VideoCaptureDevice(deviceID)
	if err != nil {
		if vc != nil {
			vc.Close()
		}
		return nil, &OpenError{Kind: models.SourceCamera, Target: target, Err: err}
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, &OpenError{Kind: models.SourceCamera, Target: target, Err: errNotOpened}
	}

	return newDeviceSource(models.SourceCamera, target, vc), nil
}

func newDeviceSource(kind models.SourceKind, target string, r frameReader) *DeviceSource {
	return &DeviceSource{kind: kind, target: target, reader: r}
}

func (s *DeviceSource) Kind() models.SourceKind { return s.kind }

func (s *DeviceSource) Next() (gocv.Mat, error) {
	frame := gocv.NewMat()

	if s.closed {
		return frame, &DecodeError{Kind: s.kind, Err: errClosed}
	}

	if ok := s.reader.Read(&frame); !ok || frame.Empty() {
		if s.kind == models.SourceCamera {
			return frame, &DecodeError{Kind: s.kind, Err: errNoFrame}
		}
		return frame, ErrEndOfStream
	}

	if s.kind == models.SourceCamera {
		gocv.Flip(frame, &frame, 1)
	}

	return frame, nil
}

func (s *DeviceSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed = true
		err = s.reader.Close()
	})
	return err
}
