package render

import (
	"fmt"
	"image"
	"image/color"

	"facedemo/internal/models"

	"gocv.io/x/gocv"
)

var (
	boxColor  = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	textColor = color.RGBA{R: 0, G: 255, B: 255, A: 255}
)

const (
	boxThickness  = 2
	textThickness = 3
	labelScale    = 1.0
	countScale    = 1.5
	labelOffsetY  = 10
	countOriginX  = 40
	countOriginY  = 40
	labelFontFace = gocv.FontHersheySimplex
)

type Options struct {
	ShowBoxes bool
}

// RenderError is returned for frames whose pixel layout cannot be shown.
type RenderError struct {
	Type gocv.MatType
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("unsupported pixel format: %v", e.Type)
}

func FaceLabel(index int, confidence float32) string {
	return fmt.Sprintf("Face %d: %.2f", index+1, confidence)
}

func CountLabel(n int) string {
	return fmt.Sprintf("Faces: %d", n)
}

// Annotate draws the detections onto a clone of frame. The caller owns and
// must close the returned Mat; frame itself is left untouched.
func Annotate(frame gocv.Mat, dets []models.Detection, opts Options) gocv.Mat {
	out := frame.Clone()
	if !opts.ShowBoxes {
		return out
	}

	for i, det := range dets {
		gocv.Rectangle(&out, det.Box.Rect(), boxColor, boxThickness)

		origin := image.Pt(det.Box.X(), det.Box.Y()-labelOffsetY)
		gocv.PutText(&out, FaceLabel(i, det.Confidence), origin, labelFontFace, labelScale, textColor, textThickness)
	}

	gocv.PutText(&out, CountLabel(len(dets)), image.Pt(countOriginX, countOriginY), labelFontFace, countScale, textColor, textThickness)

	return out
}

// ToImage converts 8-bit gray, BGR and BGRA frames. Any other layout gives a
// nil image and a *RenderError.
func ToImage(m gocv.Mat) (image.Image, error) {
	switch m.Type() {
	case gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3, gocv.MatTypeCV8UC4:
	default:
		return nil, &RenderError{Type: m.Type()}
	}

	if m.Empty() {
		return nil, &RenderError{Type: m.Type()}
	}

	img, err := m.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}

	return img, nil
}
