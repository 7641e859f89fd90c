package config

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

const (
	DefaultConfigPath  string = "config.json"
	DefaultGraphPath   string = "opencv_face_detector.pbtxt"
	DefaultWeightsPath string = "opencv_face_detector_uint8.pb"

	DefaultThreshold float32 = 0.7
	DefaultFPS       uint    = 30
)

var (
	ImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tiff"}
	VideoExtensions = []string{".mp4", ".avi", ".mov", ".wmv", ".mkv"}
)

type ModelConfig struct {
	GraphPath   string     `json:"graph_path"`
	WeightsPath string     `json:"weights_path"`
	InputWidth  int        `json:"input_width"`
	InputHeight int        `json:"input_height"`
	ScaleFactor float64    `json:"scale_factor"`
	Mean        [3]float64 `json:"mean"`
}

type CameraConfig struct {
	DeviceID int `json:"device_id"`
}

// Config is read once at startup. Only the camera device may change while
// the window is open, so it is the only field behind the mutex.
type Config struct {
	mu sync.RWMutex

	Model               ModelConfig  `json:"model"`
	Camera              CameraConfig `json:"camera"`
	ConfidenceThreshold float32      `json:"confidence_threshold"`
	ShowBoxes           bool         `json:"show_boxes"`
	TargetFPS           uint         `json:"target_fps"`
}

func (c *Config) GetCameraDevice() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Camera.DeviceID
}

func (c *Config) SetCameraDevice(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Camera.DeviceID = id
}

// FrameInterval is the playback timer period derived from TargetFPS.
func (c *Config) FrameInterval() time.Duration {
	fps := c.TargetFPS
	if fps == 0 {
		fps = DefaultFPS
	}
	return time.Second / time.Duration(fps)
}

// Validate resets out-of-range values to their defaults.
func (c *Config) Validate() {
	def := NewDefaultConfig()

	if c.Model.GraphPath == "" {
		c.Model.GraphPath = def.Model.GraphPath
	}
	if c.Model.WeightsPath == "" {
		c.Model.WeightsPath = def.Model.WeightsPath
	}
	if c.Model.InputWidth <= 0 || c.Model.InputHeight <= 0 {
		c.Model.InputWidth = def.Model.InputWidth
		c.Model.InputHeight = def.Model.InputHeight
	}
	if c.Model.ScaleFactor <= 0 {
		c.Model.ScaleFactor = def.Model.ScaleFactor
	}
	if c.ConfidenceThreshold <= 0 || c.ConfidenceThreshold >= 1 {
		c.ConfidenceThreshold = def.ConfidenceThreshold
	}
	if c.TargetFPS == 0 {
		c.TargetFPS = def.TargetFPS
	}
	if c.Camera.DeviceID < 0 {
		c.Camera.DeviceID = def.Camera.DeviceID
	}
}

// LoadConfigFile returns defaults when path does not exist. A file that
// cannot be decoded also yields defaults, together with the decode error.
func LoadConfigFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return NewDefaultConfig(), err
	}

	cfg.Validate()
	return cfg, nil
}

func NewDefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			GraphPath:   DefaultGraphPath,
			WeightsPath: DefaultWeightsPath,
			InputWidth:  300,
			InputHeight: 300,
			ScaleFactor: 1.0,
			Mean:        [3]float64{104.0, 177.0, 123.0},
		},
		Camera:              CameraConfig{DeviceID: 0},
		ConfidenceThreshold: DefaultThreshold,
		ShowBoxes:           true,
		TargetFPS:           DefaultFPS,
	}
}
