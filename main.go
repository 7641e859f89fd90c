package main

import (
	"flag"
	"fmt"

	"facedemo/internal/config"
	"facedemo/internal/logging"
	"facedemo/internal/session"
	"facedemo/internal/ui"
	"facedemo/processing/capture"
	"facedemo/processing/detector"
	"facedemo/processing/render"

	"github.com/sirupsen/logrus"
)

func main() {
	cfgPath := flag.String("config", config.DefaultConfigPath, "path to the JSON config file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	log := logging.New(*debug)

	cfg, err := config.LoadConfigFile(*cfgPath)
	if err != nil {
		log.WithError(err).WithField("path", *cfgPath).Warn("config not loaded, using defaults")
	}

	status := session.StatusModelReady

	var det *detector.Detector
	model, err := detector.LoadModel(cfg.Model.GraphPath, cfg.Model.WeightsPath)
	if err != nil {
		log.WithError(err).Error("face detection disabled")
		status = fmt.Sprintf("Error: failed to load DNN model: %v", err)
	} else {
		defer model.Close()
		det = detector.New(model.Net(), detector.NewParams(cfg))
		log.WithFields(logrus.Fields{
			"weights":   cfg.Model.WeightsPath,
			"threshold": det.Threshold(),
		}).Info("face detector loaded")
	}

	proc := detector.NewProcessor(det, render.Options{ShowBoxes: cfg.ShowBoxes})
	opener := capture.NewOpener(cfg, log)

	app := ui.CreateApp(proc, opener, cfg, log)
	app.SetStatus(status)

	app.Run()
}
