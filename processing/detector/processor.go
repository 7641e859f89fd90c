package detector

import (
	"image"
	"sync"
	"time"

	"facedemo/internal/models"
	"facedemo/processing/render"

	"gocv.io/x/gocv"
)

// Processor turns one frame into a display image: detect, annotate, convert.
// It is called synchronously from the frame timer.
type Processor struct {
	det  *Detector
	opts render.Options

	latency time.Duration
	fps     uint

	frameCount    uint
	lastFpsUpdate time.Time

	mu sync.RWMutex
}

// NewProcessor accepts a nil detector; frames then pass through unannotated.
func NewProcessor(det *Detector, opts render.Options) *Processor {
	return &Processor{
		det:           det,
		opts:          opts,
		lastFpsUpdate: time.Now(),
	}
}

func (p *Processor) DetectionEnabled() bool {
	return p.det != nil
}

// Process returns the image to show and the detections behind it. A
// detection failure still yields the raw frame alongside the error; a
// render failure yields a nil image.
func (p *Processor) Process(frame gocv.Mat) (image.Image, []models.Detection, error) {
	start := time.Now()
	defer p.record(start)

	var (
		dets   []models.Detection
		detErr error
	)

	out := frame
	if p.det != nil {
		dets, detErr = p.det.Detect(frame)
		if detErr == nil {
			out = render.Annotate(frame, dets, p.opts)
			defer out.Close()
		}
	}

	img, err := render.ToImage(out)
	if err != nil {
		return nil, dets, err
	}

	return img, dets, detErr
}

func (p *Processor) record(start time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.latency = time.Since(start)

	p.frameCount++
	if time.Since(p.lastFpsUpdate) >= time.Second {
		p.fps = p.frameCount
		p.frameCount = 0
		p.lastFpsUpdate = time.Now()
	}
}

// Stats returns the last frame latency and the frames processed during the
// last full second.
func (p *Processor) Stats() (time.Duration, uint) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latency, p.fps
}

// Reset clears the counters when playback stops.
func (p *Processor) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.latency = 0
	p.fps = 0
	p.frameCount = 0
	p.lastFpsUpdate = time.Now()
}
