package toolpath

import (
	"errors"
	"fmt"
	"math"
)

// ErrDegenerate is returned for inputs that would produce physically
// meaningless motion: zero diameters, empty depth sequences and the like.
var ErrDegenerate = errors.New("degenerate input")

// FeedSpeed is the calculator's suggestion for a tool.
type FeedSpeed struct {
	SpindleSpeed int `json:"spindle_speed"` // RPM
	FeedRate     int `json:"feed_rate"`     // mm/min
}

// CalculateFeedSpeed derives spindle RPM and feed rate from the cutter
// diameter (mm) and insert count, given the surface cutting speed (m/min)
// and chip thickness per insert (mm).
//
//	rpm  = round(surfaceSpeed * 1000 / (pi * diameter))
//	feed = round(rpm * chipThickness * inserts)
func CalculateFeedSpeed(diameter float64, inserts int, surfaceSpeed, chipThickness float64) (FeedSpeed, error) {
	if !(diameter > 0) || math.IsInf(diameter, 0) {
		return FeedSpeed{}, fmt.Errorf("diameter %g: %w", diameter, ErrDegenerate)
	}
	if inserts < 1 {
		return FeedSpeed{}, fmt.Errorf("inserts %d: %w", inserts, ErrDegenerate)
	}
	if !(surfaceSpeed > 0) || !(chipThickness > 0) {
		return FeedSpeed{}, fmt.Errorf("surface speed %g / chip thickness %g: %w", surfaceSpeed, chipThickness, ErrDegenerate)
	}

	rpm := math.Round(surfaceSpeed * 1000 / (math.Pi * diameter))
	if rpm < 1 {
		rpm = 1
	}
	feed := math.Round(rpm * chipThickness * float64(inserts))
	if feed < 1 {
		feed = 1
	}
	return FeedSpeed{SpindleSpeed: int(rpm), FeedRate: int(feed)}, nil
}
