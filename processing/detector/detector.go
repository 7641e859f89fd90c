package detector

import (
	"errors"
	"fmt"
	"image"

	"facedemo/internal/config"
	"facedemo/internal/models"

	"gocv.io/x/gocv"
)

var (
	ErrEmptyModel      = errors.New("detector has no loaded model")
	ErrEmptyFrame      = errors.New("empty frame")
	ErrMalformedOutput = errors.New("malformed network output")
)

// Network is the part of gocv.Net the detector drives.
type Network interface {
	SetInput(blob gocv.Mat, name string)
	Forward(outputName string) gocv.Mat
	Empty() bool
	Close() error
}

var _ Network = (*gocv.Net)(nil)

// Params describe the blob fed to the network and the score cut-off.
type Params struct {
	Threshold   float32
	InputSize   image.Point
	ScaleFactor float64
	Mean        gocv.Scalar
}

func NewParams(cfg *config.Config) Params {
	return Params{
		Threshold:   cfg.ConfidenceThreshold,
		InputSize:   image.Pt(cfg.Model.InputWidth, cfg.Model.InputHeight),
		ScaleFactor: cfg.Model.ScaleFactor,
		Mean:        gocv.NewScalar(cfg.Model.Mean[0], cfg.Model.Mean[1], cfg.Model.Mean[2], 0),
	}
}

// Detector runs one inference pass per frame. It keeps no state between
// frames; the threshold is fixed when the detector is built.
type Detector struct {
	net    Network
	params Params
}

func New(net Network, params Params) *Detector {
	return &Detector{net: net, params: params}
}

func (d *Detector) Threshold() float32 {
	return d.params.Threshold
}

func (d *Detector) Detect(frame gocv.Mat) ([]models.Detection, error) {
	if d.net == nil || d.net.Empty() {
		return nil, ErrEmptyModel
	}
	if frame.Empty() {
		return nil, ErrEmptyFrame
	}

	blob := gocv.BlobFromImage(frame, d.params.ScaleFactor, d.params.InputSize, d.params.Mean, false, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	defer out.Close()

	// expected shape: [1, 1, N, 7]
	dims := out.Size()
	if len(dims) != 4 || dims[3] != rowWidth {
		return nil, fmt.Errorf("%w: shape %v", ErrMalformedOutput, dims)
	}

	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	return ParseDetections(data, dims[2], frame.Cols(), frame.Rows(), d.params.Threshold)
}
