package survival

import "math"

// Daylight summarizes the lighting a renderer should apply at a time of day.
type Daylight struct {
	IsDay            bool       `json:"is_day"`
	SunIntensity     float64    `json:"sun_intensity"`
	AmbientIntensity float64    `json:"ambient_intensity"`
	SunPosition      [3]float64 `json:"sun_position"`
}

func IsNight(hours float64) bool {
	return !(hours > 5 && hours < 19)
}

func DaylightAt(hours float64) Daylight {
	theta := (hours - 6) / 12 * math.Pi
	d := Daylight{
		IsDay:            !IsNight(hours),
		AmbientIntensity: 0.1,
		SunPosition:      [3]float64{math.Sin(theta) * 100, math.Sin(theta) * 50, math.Cos(theta) * 50},
	}
	if d.IsDay {
		p := math.Min(1, math.Max(0, math.Sin((hours-6)/13*math.Pi)))
		d.SunIntensity = p * 1.5
		d.AmbientIntensity = 0.2 + p*0.6
	}
	return d
}
