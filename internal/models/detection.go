package models

import "image"

// Detection is one face box in frame pixel coordinates.
type Detection struct {
	Box        Box     `json:"box"`
	Confidence float32 `json:"confidence"`
}

type Box struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func (b Box) X() int      { return b.X1 }
func (b Box) Y() int      { return b.Y1 }
func (b Box) Width() int  { return b.X2 - b.X1 }
func (b Box) Height() int { return b.Y2 - b.Y1 }

// Rect is not canonicalized; an inverted box from the network stays inverted.
func (b Box) Rect() image.Rectangle {
	return image.Rectangle{Min: image.Pt(b.X1, b.Y1), Max: image.Pt(b.X2, b.Y2)}
}
