package session

import (
	"errors"
	"fmt"
	"image"
	"testing"
	"time"

	"facedemo/internal/logging"
	"facedemo/internal/models"
	"facedemo/processing/capture"
	"facedemo/processing/render"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// registry enforces that at most one fake source is open at a time.
type registry struct {
	t      *testing.T
	open   *fakeSource
	events []string
}

type fakeSource struct {
	reg     *registry
	kind    models.SourceKind
	frames  int // -1 for endless
	failErr error
	closed  bool
}

func (s *fakeSource) Kind() models.SourceKind { return s.kind }

func (s *fakeSource) Next() (gocv.Mat, error) {
	if s.closed {
		s.reg.t.Errorf("Next on closed %s source", s.kind)
		return gocv.NewMat(), errors.New("closed")
	}
	if s.failErr != nil {
		return gocv.NewMat(), s.failErr
	}
	if s.frames == 0 {
		return gocv.NewMat(), capture.ErrEndOfStream
	}
	if s.frames > 0 {
		s.frames--
	}
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 4, 6, gocv.MatTypeCV8UC3), nil
}

func (s *fakeSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.reg.events = append(s.reg.events, fmt.Sprintf("close %s", s.kind))
	if s.reg.open == s {
		s.reg.open = nil
	}
	return nil
}

type fakeOpener struct {
	reg     *registry
	frames  map[models.SourceKind]int
	openErr map[models.SourceKind]error
	pullErr map[models.SourceKind]error
}

func newFakeOpener(t *testing.T) *fakeOpener {
	return &fakeOpener{
		reg:     &registry{t: t},
		frames:  map[models.SourceKind]int{models.SourceImage: 1, models.SourceVideo: 3, models.SourceCamera: -1},
		openErr: map[models.SourceKind]error{},
		pullErr: map[models.SourceKind]error{},
	}
}

func (o *fakeOpener) Open(kind models.SourceKind, path string) (capture.FrameSource, error) {
	if o.reg.open != nil {
		o.reg.t.Errorf("opening %s while %s is still open", kind, o.reg.open.kind)
	}
	if err := o.openErr[kind]; err != nil {
		return nil, &capture.OpenError{Kind: kind, Target: path, Err: err}
	}

	src := &fakeSource{reg: o.reg, kind: kind, frames: o.frames[kind], failErr: o.pullErr[kind]}
	o.reg.open = src
	o.reg.events = append(o.reg.events, fmt.Sprintf("open %s", kind))
	return src, nil
}

// manualScheduler records Start/Stop; ticks are driven by the test.
type manualScheduler struct {
	active   bool
	interval time.Duration
	fn       func()
	starts   int
	stops    int
}

func (s *manualScheduler) Start(interval time.Duration, fn func()) {
	s.active = true
	s.interval = interval
	s.fn = fn
	s.starts++
}

func (s *manualScheduler) Stop() {
	s.active = false
	s.stops++
}

func (s *manualScheduler) tick() {
	if s.active {
		s.fn()
	}
}

type recordingView struct {
	frames  int
	clears  int
	status  string
	history []string
}

func (v *recordingView) ShowFrame(image.Image) { v.frames++ }
func (v *recordingView) ClearFrame()           { v.clears++ }
func (v *recordingView) SetStatus(text string) {
	v.status = text
	v.history = append(v.history, text)
}

type fakeProcessor struct {
	calls int
	err   error
	noImg bool
}

func (p *fakeProcessor) Process(frame gocv.Mat) (image.Image, []models.Detection, error) {
	p.calls++
	if p.noImg {
		return nil, nil, p.err
	}
	return image.NewRGBA(image.Rect(0, 0, frame.Cols(), frame.Rows())), nil, p.err
}

type fixture struct {
	s      *Session
	opener *fakeOpener
	sched  *manualScheduler
	view   *recordingView
	proc   *fakeProcessor
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		opener: newFakeOpener(t),
		sched:  &manualScheduler{},
		view:   &recordingView{},
		proc:   &fakeProcessor{},
	}
	f.s = New(f.proc, f.opener, f.sched, f.view, 33*time.Millisecond, logging.Discard())
	return f
}

func TestSession_StopIdempotentInIdle(t *testing.T) {
	f := newFixture(t)

	f.s.Stop()
	f.s.Stop()

	assert.Equal(t, models.StateIdle, f.s.State())
	assert.Zero(t, f.view.clears)
	assert.Empty(t, f.view.history)
	assert.Zero(t, f.sched.stops)
}

func TestSession_OpenImage(t *testing.T) {
	f := newFixture(t)

	f.s.OpenImage("face.jpg")

	assert.Equal(t, models.StateImageShown, f.s.State())
	assert.Equal(t, 1, f.view.frames)
	assert.Equal(t, StatusImageDone, f.view.status)
	assert.Equal(t, []string{"open Image", "close Image"}, f.opener.reg.events)
	assert.Zero(t, f.sched.starts)
}

func TestSession_OpenImageEmptyPath(t *testing.T) {
	f := newFixture(t)

	f.s.OpenImage("")

	assert.Equal(t, models.StateIdle, f.s.State())
	assert.Empty(t, f.opener.reg.events)
}

func TestSession_OpenImageFailure(t *testing.T) {
	f := newFixture(t)
	f.opener.openErr[models.SourceImage] = errors.New("bad file")

	f.s.OpenImage("broken.jpg")

	assert.Equal(t, models.StateIdle, f.s.State())
	assert.Equal(t, "Error: cannot load image file", f.view.status)
}

func TestSession_VideoPlaysUntilEnd(t *testing.T) {
	f := newFixture(t)

	f.s.OpenVideo("clip.mp4")
	require.Equal(t, models.StateVideoPlaying, f.s.State())
	assert.True(t, f.sched.active)
	assert.Equal(t, 33*time.Millisecond, f.sched.interval)
	assert.Equal(t, StatusVideoPlaying, f.view.status)

	for i := 0; i < 3; i++ {
		f.sched.tick()
	}
	assert.Equal(t, 3, f.view.frames)
	assert.Equal(t, models.StateVideoPlaying, f.s.State())

	f.sched.tick()

	assert.Equal(t, models.StateIdle, f.s.State())
	assert.False(t, f.sched.active)
	assert.Equal(t, StatusVideoFinished, f.view.status)
	assert.Nil(t, f.opener.reg.open)
	// the last frame stays on screen
	assert.Zero(t, f.view.clears)
}

func TestSession_StaleTickIgnored(t *testing.T) {
	f := newFixture(t)

	f.s.OpenVideo("clip.mp4")
	f.s.Stop()

	f.s.Tick()

	assert.Zero(t, f.proc.calls)
	assert.Equal(t, models.StateIdle, f.s.State())
}

func TestSession_CameraToVideoReleasesCameraFirst(t *testing.T) {
	f := newFixture(t)

	f.s.OpenCamera()
	require.Equal(t, models.StateCameraActive, f.s.State())
	f.sched.tick()
	f.sched.tick()

	f.s.OpenVideo("clip.mp4")

	assert.Equal(t, models.StateVideoPlaying, f.s.State())
	assert.Equal(t, []string{"open Camera", "close Camera", "open Video"}, f.opener.reg.events)
	assert.Equal(t, 2, f.sched.starts)
}

func TestSession_SwitchingFromImageStops(t *testing.T) {
	f := newFixture(t)

	f.s.OpenImage("face.jpg")
	f.s.OpenCamera()

	assert.Equal(t, models.StateCameraActive, f.s.State())
	assert.Equal(t, 1, f.view.clears)
	assert.Contains(t, f.view.history, StatusStopped)
	assert.Equal(t, StatusCameraStarted, f.view.status)
}

func TestSession_StopFromPlaying(t *testing.T) {
	f := newFixture(t)

	f.s.OpenCamera()
	f.s.Stop()

	assert.Equal(t, models.StateIdle, f.s.State())
	assert.False(t, f.sched.active)
	assert.Nil(t, f.opener.reg.open)
	assert.Equal(t, 1, f.view.clears)
	assert.Equal(t, StatusStopped, f.view.status)

	f.s.Stop()
	assert.Equal(t, 1, f.view.clears)
}

func TestSession_CameraOpenFailure(t *testing.T) {
	f := newFixture(t)
	f.opener.openErr[models.SourceCamera] = errors.New("busy")

	f.s.OpenCamera()

	assert.Equal(t, models.StateIdle, f.s.State())
	assert.False(t, f.sched.active)
	assert.Equal(t, "Error: cannot open camera", f.view.status)
}

func TestSession_CameraPullFailure(t *testing.T) {
	f := newFixture(t)
	f.opener.pullErr[models.SourceCamera] = &capture.DecodeError{Kind: models.SourceCamera, Err: errors.New("unplugged")}

	f.s.OpenCamera()
	f.sched.tick()

	assert.Equal(t, models.StateIdle, f.s.State())
	assert.False(t, f.sched.active)
	assert.Equal(t, "Error: cannot read frame from camera", f.view.status)
	assert.Nil(t, f.opener.reg.open)
}

func TestSession_DetectionFailureStillShowsFrame(t *testing.T) {
	f := newFixture(t)
	f.proc.err = errors.New("malformed network output")

	f.s.OpenImage("face.jpg")

	assert.Equal(t, models.StateImageShown, f.s.State())
	assert.Equal(t, 1, f.view.frames)
	assert.Equal(t, "Error: malformed network output", f.view.status)
}

func TestSession_RenderFailure(t *testing.T) {
	f := newFixture(t)
	f.proc.err = &render.RenderError{Type: gocv.MatTypeCV16UC1}
	f.proc.noImg = true

	f.s.OpenVideo("clip.mp4")
	f.sched.tick()

	assert.Zero(t, f.view.frames)
	assert.Equal(t, models.StateVideoPlaying, f.s.State())
	assert.Contains(t, f.view.status, "unsupported pixel format")
}

func TestSession_Close(t *testing.T) {
	f := newFixture(t)

	f.s.OpenVideo("clip.mp4")
	f.s.Close()
	f.s.Close()

	assert.Equal(t, models.StateIdle, f.s.State())
	assert.Nil(t, f.opener.reg.open)
}
