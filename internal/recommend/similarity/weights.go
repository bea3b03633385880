package similarity

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roomly/roomly-backend/internal/platform/envutil"
	"github.com/roomly/roomly-backend/internal/platform/logger"
)

// RoomWeights are the five room-similarity factor weights.
type RoomWeights struct {
	Capacity    float64 `yaml:"capacity"`
	Area        float64 `yaml:"area"`
	Features    float64 `yaml:"features"`
	Usage       float64 `yaml:"usage"`
	UserOverlap float64 `yaml:"user_overlap"`
}

// TimeWeights are the four time-similarity factor weights.
type TimeWeights struct {
	HourProximity float64 `yaml:"hour_proximity"`
	DaySimilarity float64 `yaml:"day_similarity"`
	DurationMatch float64 `yaml:"duration_match"`
	UsagePattern  float64 `yaml:"usage_pattern"`
}

// BookingWeights are the booking-context factor weights.
type BookingWeights struct {
	Room    float64 `yaml:"room"`
	Time    float64 `yaml:"time"`
	User    float64 `yaml:"user"`
	Purpose float64 `yaml:"purpose"`
}

type Weights struct {
	Room    RoomWeights    `yaml:"room"`
	Time    TimeWeights    `yaml:"time"`
	Booking BookingWeights `yaml:"booking"`
}

// DefaultWeights returns the tuned weight tables. Values are heuristic; they
// are config rather than code so they can be adjusted without touching the
// scoring logic.
func DefaultWeights() Weights {
	return Weights{
		Room: RoomWeights{
			Capacity:    0.25,
			Area:        0.15,
			Features:    0.20,
			Usage:       0.25,
			UserOverlap: 0.15,
		},
		Time: TimeWeights{
			HourProximity: 0.30,
			DaySimilarity: 0.20,
			DurationMatch: 0.25,
			UsagePattern:  0.25,
		},
		Booking: BookingWeights{
			Room:    0.3,
			Time:    0.3,
			User:    0.2,
			Purpose: 0.2,
		},
	}
}

// LoadWeights overlays a YAML file on top of the defaults. Omitted keys keep
// their default values.
func LoadWeights(path string) (Weights, error) {
	w := DefaultWeights()
	raw, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("read weights file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return w, fmt.Errorf("parse weights file: %w", err)
	}
	return w, nil
}

// WeightsFromEnv loads SIMILARITY_WEIGHTS_FILE when set, falling back to the
// defaults on any problem.
func WeightsFromEnv(log *logger.Logger) Weights {
	path := envutil.Str("SIMILARITY_WEIGHTS_FILE", "")
	if path == "" {
		return DefaultWeights()
	}
	w, err := LoadWeights(path)
	if err != nil {
		log.Warn("failed to load similarity weights, using defaults", "path", path, "error", err)
		return DefaultWeights()
	}
	log.Info("loaded similarity weights", "path", path)
	return w
}
