package detector

import (
	"errors"
	"fmt"
	"os"

	"gocv.io/x/gocv"
)

// LoadError reports a detector model that could not be loaded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load model: %v", e.Err)
	}
	return fmt.Sprintf("load model %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

var errEmptyNet = errors.New("graph and weights produced an empty network")

type Model struct {
	GraphPath   string
	WeightsPath string

	net gocv.Net
}

// LoadModel reads a TensorFlow face detector from its text graph and frozen
// weights. Both files must exist before OpenCV is asked to parse them.
func LoadModel(graphPath, weightsPath string) (*Model, error) {
	for _, p := range []string{graphPath, weightsPath} {
		if _, err := os.Stat(p); err != nil {
			return nil, &LoadError{Path: p, Err: err}
		}
	}

	net := gocv.ReadNet(weightsPath, graphPath)
	if net.Empty() {
		net.Close()
		return nil, &LoadError{Path: weightsPath, Err: errEmptyNet}
	}

	return &Model{
		GraphPath:   graphPath,
		WeightsPath: weightsPath,
		net:         net,
	}, nil
}

// Net exposes the loaded network; it satisfies Network.
func (m *Model) Net() *gocv.Net {
	return &m.net
}

func (m *Model) Close() error {
	return m.net.Close()
}
