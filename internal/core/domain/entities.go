package domain

import (
	"time"
)

// Messages shown to the user alongside an access decision. "Allowed" means
// the user is outside the office zone and may clock in/out remotely.
const (
	MessageOutside = "✅ Outside office - Clock In/Out enabled"
	MessageInside  = "🚫 Inside office - Clock In/Out disabled"
)

// Geofence is the circular zone around the office. It is fixed at process
// start from configuration and never mutated afterwards.
type Geofence struct {
	OfficeName   string     `json:"office_name"`
	Center       Coordinate `json:"center"`
	RadiusMeters float64    `json:"radius_meters"`
}

// Contains reports whether a point at the given distance from the center
// falls inside the zone. The boundary itself counts as inside.
func (g Geofence) Contains(distanceMeters float64) bool {
	return distanceMeters <= g.RadiusMeters
}

// AccessDecision is the outcome of evaluating one reported position against
// the geofence. It is derived per request and never stored as truth.
type AccessDecision struct {
	Allowed        bool    `json:"allowed"`
	DistanceMeters float64 `json:"distance_meters"`
}

// Message returns the user-facing text for the decision.
func (d AccessDecision) Message() string {
	if d.Allowed {
		return MessageOutside
	}
	return MessageInside
}

// Evaluation is the diagnostic record of a single geofence check. It feeds
// the event stream, the live presence view and the audit log; it carries no
// user identity and no clock in/out event.
type Evaluation struct {
	ID             string     `json:"id"`
	Device         string     `json:"device"`
	Position       Coordinate `json:"position"`
	DistanceMeters float64    `json:"distance_meters"`
	Allowed        bool       `json:"allowed"`
	EvaluatedAt    time.Time  `json:"evaluated_at"`
}
