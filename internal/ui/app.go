package ui

import (
	"fmt"
	"image"
	"time"

	"facedemo/internal/config"
	"facedemo/internal/session"
	"facedemo/internal/ui/cwidget"
	"facedemo/processing/detector"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"
)

const placeholderText = "Display"

type DetectApp struct {
	fyneApp fyne.App
	mainWin fyne.Window

	config    *config.Config
	processor *detector.Processor
	session   *session.Session
	log       logrus.FieldLogger

	imageBtn    *widget.Button
	videoBtn    *widget.Button
	cameraBtn   *widget.Button
	closeBtn    *widget.Button
	cameraInput *cwidget.Input[int]

	videoCanvas  *canvas.Image
	placeholder  *widget.Label
	statusLabel  *widget.Label
	latencyLabel *widget.Label
	fpsLabel     *widget.Label

	stopStats chan struct{}
}

func CreateApp(p *detector.Processor, opener session.Opener, cfg *config.Config, log logrus.FieldLogger) *DetectApp {
	return newDetectApp(app.New(), p, opener, newTickerScheduler(), cfg, log)
}

func newDetectApp(fa fyne.App, p *detector.Processor, opener session.Opener, sched session.Scheduler, cfg *config.Config, log logrus.FieldLogger) *DetectApp {
	w := fa.NewWindow("Face Detection")
	w.Resize(fyne.NewSize(800, 700))

	a := &DetectApp{
		fyneApp:   fa,
		mainWin:   w,
		processor: p,
		config:    cfg,
		log:       log,
		stopStats: make(chan struct{}),
	}
	a.session = session.New(p, opener, sched, a, cfg.FrameInterval(), log)

	a.build()
	return a
}

func (a *DetectApp) build() {
	a.imageBtn = widget.NewButtonWithIcon("Image", theme.FileImageIcon(), a.onImage)
	a.videoBtn = widget.NewButtonWithIcon("Video", theme.FileVideoIcon(), a.onVideo)
	a.cameraBtn = widget.NewButtonWithIcon("Camera", theme.MediaRecordIcon(), a.onCamera)
	a.closeBtn = widget.NewButtonWithIcon("Close", theme.MediaStopIcon(), a.onClose)

	a.cameraInput = cwidget.NewIntInput(
		"Camera device",
		"Enter index",
		a.config.GetCameraDevice(),
		0,
		func(i int) {
			a.config.SetCameraDevice(i)
		},
	)

	a.videoCanvas = canvas.NewImageFromImage(nil)
	a.videoCanvas.FillMode = canvas.ImageFillContain
	a.videoCanvas.SetMinSize(fyne.NewSize(640, 480))

	a.placeholder = widget.NewLabelWithStyle(placeholderText, fyne.TextAlignCenter, fyne.TextStyle{})

	a.statusLabel = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{})

	latency, fps := a.processor.Stats()
	a.latencyLabel = widget.NewLabel(a.formatLatency(latency))
	a.fpsLabel = widget.NewLabel(a.formatFPS(fps))

	modes := container.NewGridWithColumns(3, a.imageBtn, a.videoBtn, a.cameraBtn)

	videoContainer := container.NewBorder(
		container.NewHBox(a.fpsLabel, widget.NewSeparator(), a.latencyLabel),
		nil, nil, nil,
		container.NewStack(a.placeholder, a.videoCanvas),
	)

	bottom := container.NewVBox(
		a.statusLabel,
		container.NewCenter(container.NewGridWrap(fyne.NewSize(150, 50), a.closeBtn)),
	)

	content := container.NewBorder(
		container.NewVBox(modes, a.cameraInput, widget.NewSeparator()),
		bottom, nil, nil,
		container.NewPadded(videoContainer),
	)

	a.mainWin.SetContent(content)

	a.mainWin.SetOnClosed(a.shutdown)
}

func (a *DetectApp) Run() {
	go a.runStatLoop()

	a.mainWin.CenterOnScreen()
	a.mainWin.ShowAndRun()
}

func (a *DetectApp) onImage() {
	a.log.Debug("image button clicked")
	a.session.Stop()

	a.showOpenDialog(config.ImageExtensions, a.session.OpenImage)
}

func (a *DetectApp) onVideo() {
	a.log.Debug("video button clicked")
	a.session.Stop()

	a.showOpenDialog(config.VideoExtensions, a.session.OpenVideo)
}

func (a *DetectApp) onCamera() {
	a.log.Debug("camera button clicked")
	a.session.OpenCamera()
}

func (a *DetectApp) onClose() {
	a.log.Debug("close button clicked")
	a.session.Stop()
}

// showOpenDialog calls open with the chosen path, or with "" on cancel.
func (a *DetectApp) showOpenDialog(exts []string, open func(string)) {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		path := ""
		if err != nil {
			a.SetStatus(fmt.Sprintf("Error: %v", err))
		} else if reader != nil {
			path = reader.URI().Path()
			reader.Close()
		}

		open(path)
	}, a.mainWin)

	fd.SetFilter(storage.NewExtensionFileFilter(exts))
	fd.Show()
}

// syncControls locks the camera index while a source is playing.
func (a *DetectApp) syncControls() {
	if a.session.State().Playing() {
		a.cameraInput.Disable()
	} else {
		a.cameraInput.Enable()
	}
}

// ShowFrame, ClearFrame and SetStatus make DetectApp the session's view.
func (a *DetectApp) ShowFrame(img image.Image) {
	a.placeholder.Hide()
	a.videoCanvas.Image = img
	a.videoCanvas.Refresh()
}

func (a *DetectApp) ClearFrame() {
	a.videoCanvas.Image = nil
	a.videoCanvas.Refresh()
	a.placeholder.Show()
	a.processor.Reset()
}

func (a *DetectApp) SetStatus(text string) {
	a.statusLabel.SetText(text)
	a.syncControls()
}

func (a *DetectApp) Status() string {
	return a.statusLabel.Text
}

func (a *DetectApp) runStatLoop() {
	uiTicker := time.NewTicker(time.Millisecond * 200)
	defer uiTicker.Stop()

	for {
		select {
		case <-uiTicker.C:
			fyne.Do(func() {
				latency, fps := a.processor.Stats()
				a.latencyLabel.SetText(a.formatLatency(latency))
				a.fpsLabel.SetText(a.formatFPS(fps))
			})
		case <-a.stopStats:
			return
		}
	}
}

func (a *DetectApp) shutdown() {
	a.session.Close()

	select {
	case <-a.stopStats:
	default:
		close(a.stopStats)
	}
}

func (a *DetectApp) formatFPS(v uint) string {
	return fmt.Sprintf("FPS: %d", v)
}

func (a *DetectApp) formatLatency(v time.Duration) string {
	return fmt.Sprintf("Latency: %d ms", v.Milliseconds())
}
