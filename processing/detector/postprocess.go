package detector

import (
	"fmt"

	"facedemo/internal/models"
)

// rowWidth is the SSD output layout: [image_id, label, conf, x1, y1, x2, y2].
const rowWidth = 7

const (
	colConfidence = 2
	colX1         = 3
	colY1         = 4
	colX2         = 5
	colY2         = 6
)

// ParseDetections keeps the rows whose confidence is strictly above
// threshold and scales their normalized corners to a width x height frame.
// Row order is preserved and boxes are not clamped to the frame.
func ParseDetections(data []float32, rows, width, height int, threshold float32) ([]models.Detection, error) {
	if rows < 0 || len(data) < rows*rowWidth {
		return nil, fmt.Errorf("%w: %d values for %d rows", ErrMalformedOutput, len(data), rows)
	}

	w := float32(width)
	h := float32(height)

	var dets []models.Detection
	for i := 0; i < rows; i++ {
		row := data[i*rowWidth : (i+1)*rowWidth]

		conf := row[colConfidence]
		if conf <= threshold {
			continue
		}

		dets = append(dets, models.Detection{
			Box: models.Box{
				X1: int(row[colX1] * w),
				Y1: int(row[colY1] * h),
				X2: int(row[colX2] * w),
				Y2: int(row[colY2] * h),
			},
			Confidence: conf,
		})
	}

	return dets, nil
}
