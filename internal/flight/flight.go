// Package flight computes attacker trajectories.
package flight

import "math"

// Params are the randomized wiggle parameters of one wave.
type Params struct {
	Sign           float64
	Frequency      float64
	AmplitudeScale float64
}

// LaneGoalX returns the x coordinate of a lane's center.
func LaneGoalX(lane int, fullWidth float64) float64 {
	return fullWidth * (0.25 + float64(lane)/2)
}

// Position blends a sine wiggle around the field center with a straight path to
// laneGoalX. At progress 1 the result is exactly laneGoalX.
func Position(progress float64, p Params, laneGoalX, fullWidth float64) float64 {
	if progress <= 0 {
		progress = 0
	}
	if progress >= 1 {
		return laneGoalX
	}
	w := wiggle(progress, p, fullWidth)
	return (1-progress)*w + progress*laneGoalX
}

func wiggle(progress float64, p Params, fullWidth float64) float64 {
	center := fullWidth / 2
	return center + p.AmplitudeScale*fullWidth/2*p.Sign*math.Sin(2*math.Pi*p.Frequency*progress)
}

// LanePosition is Position aimed at the center of lane.
func LanePosition(progress float64, lane int, p Params, fullWidth float64) float64 {
	return Position(progress, p, LaneGoalX(lane, fullWidth), fullWidth)
}
