package models

type IncidentType string

const (
	SidewalkOrMotorbike   IncidentType = "SIDEWALK_OR_MOTORBIKE"
	ZebraCrossingMisuse   IncidentType = "ZEBRA_CROSSING_MISUSE"
	WrongDirection        IncidentType = "WRONG_DIRECTION"
	TrafficLightBlindness IncidentType = "TRAFFIC_LIGHT_BLINDNESS"
)

// IncidentTypes lists every category in display order
var IncidentTypes = []IncidentType{
	SidewalkOrMotorbike,
	ZebraCrossingMisuse,
	WrongDirection,
	TrafficLightBlindness,
}

func (t IncidentType) Valid() bool {
	for _, known := range IncidentTypes {
		if t == known {
			return true
		}
	}
	return false
}
