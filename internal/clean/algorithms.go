package clean

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/planbiir/gtrack/internal/distance"
	"github.com/planbiir/gtrack/internal/track"
)

// smoothElevation applies a median filter over known elevations. Unknown
// elevations stay unknown. Returns a new track and the number of changed samples.
func smoothElevation(t track.Track, windowSize int) (track.Track, int) {
	out := make(track.Track, len(t))
	copy(out, t)
	if len(t) < 3 || windowSize < 3 {
		return out, 0
	}

	// Ensure window size is odd
	if windowSize%2 == 0 {
		windowSize++
	}
	half := windowSize / 2

	changed := 0
	elevations := make([]float64, 0, windowSize)
	for i := range t {
		if t[i].Elevation == nil {
			continue
		}

		elevations = elevations[:0]
		start := max(0, i-half)
		end := min(len(t), i+half+1)
		for j := start; j < end; j++ {
			if t[j].Elevation != nil {
				elevations = append(elevations, *t[j].Elevation)
			}
		}

		m := medianFloat(elevations)
		if m != *t[i].Elevation {
			changed++
		}
		out[i].Elevation = track.Meters(m)
	}

	return out, changed
}

// velocityOutlierFilter removes points with impossible speeds and geometric
// spikes. Returns the indices of the kept points; first and last are always kept.
func velocityOutlierFilter(t track.Track, maxSpeed float64, config Config) []int {
	if len(t) <= 2 {
		indices := make([]int, len(t))
		for i := range indices {
			indices[i] = i
		}
		return indices
	}

	validIndices := []int{0} // Always keep first point

	for i := 1; i < len(t)-1; i++ {
		prev, curr, next := t[i-1], t[i], t[i+1]

		distToPrev := distance3D(prev, curr)
		distToNext := distance3D(curr, next)

		timeToPrev := interval(prev, curr)
		timeToNext := interval(curr, next)

		validPrev := timeToPrev > 0
		validNext := timeToNext > 0

		turnAngle := calculateTurnAngle(prev, curr, next)
		directionOK := turnAngle <= config.MaxHairpinDegrees

		speedOK := true
		switch {
		case validPrev && validNext:
			speedFromPrev := distToPrev / timeToPrev
			speedToNext := distToNext / timeToNext
			speedOK = (speedFromPrev >= config.MinSpeed && speedFromPrev <= maxSpeed) &&
				(speedToNext >= config.MinSpeed && speedToNext <= maxSpeed)

			if speedOK {
				base := haversine(prev, next)

				// classic boomerang: both legs long, base short, big turn
				if distToPrev > 120 && distToNext > 120 && base < 40 && turnAngle > 100 {
					speedOK = false
				} else {
					// sum of legs much longer than the base
					ratio := (distToPrev + distToNext) / math.Max(base, 1)
					if ratio > 6 && turnAngle > 90 {
						speedOK = false
					}
				}
			}
		case validPrev:
			speedFromPrev := distToPrev / timeToPrev
			speedOK = speedFromPrev >= config.MinSpeed && speedFromPrev <= maxSpeed
		case validNext:
			speedToNext := distToNext / timeToNext
			speedOK = speedToNext >= config.MinSpeed && speedToNext <= maxSpeed
		default:
			// No timestamps: distance-based teleport detection
			speedOK = distToPrev <= config.TeleportMeters && distToNext <= config.TeleportMeters
		}

		if speedOK && directionOK {
			validIndices = append(validIndices, i)
			continue
		}

		// Rescue clear pauses (very low speed on both legs)
		if validPrev && validNext &&
			distToPrev/timeToPrev <= config.PauseSpeed && distToNext/timeToNext <= config.PauseSpeed {
			validIndices = append(validIndices, i)
		}
	}

	return append(validIndices, len(t)-1)
}

// detectActivityType classifies the track by its P95 speed and returns a
// matching speed limit
func detectActivityType(t track.Track) (string, float64, float64) {
	speeds := calculateAllSpeeds(t)
	if len(speeds) == 0 {
		return "unknown", 12.0, 0.0
	}

	p95 := percentile(speeds, 95)

	switch {
	case p95 <= 8.0: // 28.8 km/h
		return "running/hiking", 12.0, p95
	case p95 <= 20.0: // 72 km/h
		return "cycling", 30.0, p95
	default:
		return "high-speed", 50.0, p95
	}
}

// calculateAllSpeeds computes speeds between consecutive timestamped points
func calculateAllSpeeds(t track.Track) []float64 {
	var speeds []float64
	for i := 1; i < len(t); i++ {
		dt := interval(t[i-1], t[i])
		if dt <= 0 {
			continue
		}
		speed := distance3D(t[i-1], t[i]) / dt
		if speed > 0 && speed < 100 { // reasonable bounds
			speeds = append(speeds, speed)
		}
	}
	return speeds
}

// interval returns seconds between a and b, or 0 when either lacks a timestamp
func interval(a, b track.Sample) float64 {
	if a.Time.IsZero() || b.Time.IsZero() {
		return 0
	}
	return b.Time.Sub(a.Time).Seconds()
}

// distance3D adds the elevation change to the surface distance when both
// elevations are known
func distance3D(a, b track.Sample) float64 {
	horizontal := haversine(a, b)
	if a.Elevation == nil || b.Elevation == nil {
		return horizontal
	}
	vertical := *b.Elevation - *a.Elevation
	return math.Sqrt(horizontal*horizontal + vertical*vertical)
}

// haversine returns the surface distance; coordinates are validated up front
func haversine(a, b track.Sample) float64 {
	d, err := distance.Between(a, b)
	if err != nil {
		return math.Inf(1)
	}
	return d
}

// calculateTurnAngle computes the turn angle between three consecutive points
func calculateTurnAngle(p1, p2, p3 track.Sample) float64 {
	bearing1 := calculateBearing(p1.Lat, p1.Lon, p2.Lat, p2.Lon)
	bearing2 := calculateBearing(p2.Lat, p2.Lon, p3.Lat, p3.Lon)

	turnAngle := math.Abs(bearing2 - bearing1)
	if turnAngle > 180.0 {
		turnAngle = 360.0 - turnAngle
	}

	return turnAngle
}

// calculateBearing computes bearing between two points
func calculateBearing(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLonRad := (lon2 - lon1) * math.Pi / 180

	y := math.Sin(deltaLonRad) * math.Cos(lat2Rad)
	x := math.Cos(lat1Rad)*math.Sin(lat2Rad) - math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(deltaLonRad)

	bearingDeg := math.Atan2(y, x) * 180 / math.Pi

	return math.Mod(bearingDeg+360, 360)
}

func medianFloat(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return stat.Quantile(p/100, stat.Empirical, sorted, nil)
}
