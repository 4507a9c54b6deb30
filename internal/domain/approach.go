package domain

import (
	"fmt"
	"log/slog"
	"math"
	"time"
)

// ApproachFields is the serialized form of an Approach. It deliberately omits
// the designation; writers merge it with the owning NEO's NEOFields.
type ApproachFields struct {
	DateTimeUTC string  `json:"datetime_utc"`
	DistanceAU  float64 `json:"distance_au"`
	VelocityKmS float64 `json:"velocity_km_s"`
}

// Approach is a single close approach of an NEO to Earth.
type Approach struct {
	designation string
	time        time.Time
	distance    float64
	velocity    float64

	// neo is nil until NEO.Append resolves it.
	neo *NEO
}

// NewApproach validates and coerces a raw record. The returned approach is
// unlinked; see NEO.Append.
func NewApproach(rec ApproachRecord) (*Approach, error) {
	if err := validateRecord("approach", rec); err != nil {
		return nil, err
	}

	t, err := ParseCloseApproachDate(rec.Date)
	if err != nil {
		return nil, &FieldError{Entity: "approach", Field: "cd", Value: rec.Date, Expected: "date YYYY-Mon-DD hh:mm", Err: err}
	}
	distance, err := parseFiniteFloat("dist", rec.Distance)
	if err != nil {
		return nil, err
	}
	velocity, err := parseFiniteFloat("v_rel", rec.Velocity)
	if err != nil {
		return nil, err
	}

	return &Approach{
		designation: rec.Designation,
		time:        t,
		distance:    distance,
		velocity:    velocity,
	}, nil
}

func parseFiniteFloat(field, raw string) (float64, error) {
	v, err := parseDecimal(raw)
	if err != nil {
		return 0, &FieldError{Entity: "approach", Field: field, Value: raw, Expected: "float", Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &FieldError{Entity: "approach", Field: field, Value: raw, Expected: "finite float"}
	}
	return v, nil
}

// Designation returns the designation of the NEO this approach belongs to.
func (a *Approach) Designation() string { return a.designation }

// Time returns the UTC time of closest approach.
func (a *Approach) Time() time.Time { return a.time }

// TimeStr returns the canonical "YYYY-MM-DD hh:mm" form of the approach time.
func (a *Approach) TimeStr() string { return FormatDateTime(a.time) }

// Distance returns the nominal approach distance in au.
func (a *Approach) Distance() float64 { return a.distance }

// Velocity returns the relative approach velocity in km/s.
func (a *Approach) Velocity() float64 { return a.velocity }

// NEO returns the owning NEO, or nil before linkage.
func (a *Approach) NEO() *NEO { return a.neo }

func (a *Approach) Linked() bool { return a.neo != nil }

func (a *Approach) String() string {
	who := a.designation
	if a.neo != nil {
		who = a.neo.Fullname()
	}
	return fmt.Sprintf("On %s, %s approaches Earth at a distance of %.2f au and a velocity of %.2f km/s.",
		a.TimeStr(), who, a.distance, a.velocity)
}

// Serialize returns the flat output fields of a.
func (a *Approach) Serialize() ApproachFields {
	return ApproachFields{
		DateTimeUTC: a.TimeStr(),
		DistanceAU:  a.distance,
		VelocityKmS: a.velocity,
	}
}

func (a *Approach) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("designation", a.designation),
		slog.String("datetime_utc", a.TimeStr()),
		slog.Float64("distance_au", a.distance),
		slog.Float64("velocity_km_s", a.velocity),
		slog.Bool("linked", a.neo != nil),
	)
}
