package capture

import (
	"fmt"

	"facedemo/internal/config"
	"facedemo/internal/models"

	"github.com/sirupsen/logrus"
)

// DeviceOpener opens real sources. The camera index is read from the config
// at open time so the sidebar can change it between sessions.
type DeviceOpener struct {
	cfg *config.Config
	log logrus.FieldLogger
}

func NewOpener(cfg *config.Config, log logrus.FieldLogger) *DeviceOpener {
	return &DeviceOpener{cfg: cfg, log: log}
}

func (o *DeviceOpener) Open(kind models.SourceKind, path string) (FrameSource, error) {
	var (
		src FrameSource
		err error
	)

	switch kind {
	case models.SourceImage:
		src, err = NewImageSource(path)
	case models.SourceVideo:
		src, err = NewVideoSource(path)
	case models.SourceCamera:
		device := o.cfg.GetCameraDevice()
		path = fmt.Sprint(device)
		src, err = NewCameraSource(device)
	default:
		return nil, fmt.Errorf("unknown source: %s", kind)
	}

	log := o.log.WithFields(logrus.Fields{"source": kind, "target": path})
	if err != nil {
		log.WithError(err).Debug("source open failed")
		return nil, err
	}

	log.Debug("source opened")
	return src, nil
}
