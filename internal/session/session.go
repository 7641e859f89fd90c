package session

import (
	"errors"
	"fmt"
	"image"
	"time"

	"facedemo/internal/models"
	"facedemo/processing/capture"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

const (
	StatusModelReady    = "Ready: DNN model loaded"
	StatusImageWorking  = "Processing image..."
	StatusImageDone     = "Image processed"
	StatusVideoPlaying  = "Playing video..."
	StatusCameraStarted = "Camera started"
	StatusStopped       = "Playback stopped"
	StatusVideoFinished = "Video finished"
)

// Processor turns a frame into a display image.
type Processor interface {
	Process(frame gocv.Mat) (image.Image, []models.Detection, error)
}

// Opener opens a frame source of the given kind. path is ignored for the
// camera.
type Opener interface {
	Open(kind models.SourceKind, path string) (capture.FrameSource, error)
}

// Scheduler runs fn every interval on the UI goroutine until Stop.
type Scheduler interface {
	Start(interval time.Duration, fn func())
	Stop()
}

type View interface {
	ShowFrame(img image.Image)
	ClearFrame()
	SetStatus(text string)
}

// Session is the playback state machine. All methods must be called from
// the UI goroutine; the scheduler delivers ticks there too.
type Session struct {
	state    models.State
	source   capture.FrameSource
	interval time.Duration

	proc   Processor
	opener Opener
	sched  Scheduler
	view   View
	log    logrus.FieldLogger
}

func New(proc Processor, opener Opener, sched Scheduler, view View, interval time.Duration, log logrus.FieldLogger) *Session {
	return &Session{
		state:    models.StateIdle,
		interval: interval,
		proc:     proc,
		opener:   opener,
		sched:    sched,
		view:     view,
		log:      log,
	}
}

func (s *Session) State() models.State {
	return s.state
}

// OpenImage shows a single detected still image. The file is released as
// soon as its frame is on screen.
func (s *Session) OpenImage(path string) {
	s.Stop()
	if path == "" {
		return
	}

	s.view.SetStatus(StatusImageWorking)

	src, err := s.opener.Open(models.SourceImage, path)
	if err != nil {
		s.fail("cannot load image file", err)
		return
	}
	defer src.Close()

	frame, err := src.Next()
	defer frame.Close()
	if err != nil {
		s.fail("cannot load image file", err)
		return
	}

	shown, err := s.present(frame)
	if !shown {
		return
	}

	s.state = models.StateImageShown
	if err == nil {
		s.view.SetStatus(StatusImageDone)
	}
}

func (s *Session) OpenVideo(path string) {
	s.Stop()
	if path == "" {
		return
	}

	if s.play(models.SourceVideo, path, models.StateVideoPlaying) {
		s.view.SetStatus(StatusVideoPlaying)
	}
}

func (s *Session) OpenCamera() {
	s.Stop()

	if s.play(models.SourceCamera, "", models.StateCameraActive) {
		s.view.SetStatus(StatusCameraStarted)
	}
}

func (s *Session) play(kind models.SourceKind, path string, next models.State) bool {
	src, err := s.opener.Open(kind, path)
	if err != nil {
		s.fail(fmt.Sprintf("cannot open %s", describe(kind)), err)
		return false
	}

	s.source = src
	s.state = next
	s.sched.Start(s.interval, s.Tick)
	return true
}

// Tick pulls, processes and shows one frame. Ticks that arrive after the
// session left a playing state are ignored.
func (s *Session) Tick() {
	if !s.state.Playing() || s.source == nil {
		return
	}

	frame, err := s.source.Next()
	defer frame.Close()

	if err != nil {
		if errors.Is(err, capture.ErrEndOfStream) {
			s.view.SetStatus(StatusVideoFinished)
		} else {
			s.view.SetStatus(fmt.Sprintf("Error: cannot read frame from %s", describe(s.source.Kind())))
			s.log.WithError(err).WithField("source", s.source.Kind()).Warn("frame pull failed")
		}
		s.release()
		return
	}

	_, _ = s.present(frame)
}

// Stop returns to Idle, stopping the timer and releasing any open source.
// It does nothing when the session is already Idle.
func (s *Session) Stop() {
	if s.state == models.StateIdle && s.source == nil {
		return
	}

	s.release()
	s.view.ClearFrame()
	s.view.SetStatus(StatusStopped)
}

// Close stops playback; it is safe to call more than once.
func (s *Session) Close() {
	s.Stop()
}

func (s *Session) release() {
	s.sched.Stop()

	if s.source != nil {
		kind := s.source.Kind()
		if err := s.source.Close(); err != nil {
			s.log.WithError(err).WithField("source", kind).Warn("source close failed")
		}
		s.log.WithField("source", kind).Debug("source released")
		s.source = nil
	}

	s.state = models.StateIdle
}

// present reports whether an image reached the view, and the processing
// error if any. A detection failure still shows the raw frame.
func (s *Session) present(frame gocv.Mat) (bool, error) {
	img, _, err := s.proc.Process(frame)
	if err != nil {
		s.view.SetStatus(fmt.Sprintf("Error: %v", err))
		s.log.WithError(err).Warn("frame processing failed")
	}
	if img == nil {
		return false, err
	}

	s.view.ShowFrame(img)
	return true, err
}

func (s *Session) fail(msg string, err error) {
	s.log.WithError(err).Error(msg)
	s.release()
	s.view.SetStatus(fmt.Sprintf("Error: %s", msg))
}

func describe(kind models.SourceKind) string {
	switch kind {
	case models.SourceVideo:
		return "video file"
	case models.SourceCamera:
		return "camera"
	default:
		return "image"
	}
}
