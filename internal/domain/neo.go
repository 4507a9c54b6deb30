package domain

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
)

// Diameter is a size in kilometers. NaN means the diameter was not recorded.
type Diameter float64

// UnknownDiameter returns the unknown-diameter sentinel.
func UnknownDiameter() Diameter { return Diameter(math.NaN()) }

// Known reports whether d holds a recorded value.
func (d Diameter) Known() bool { return !math.IsNaN(float64(d)) }

// MarshalJSON renders an unknown diameter as null; JSON has no NaN.
func (d Diameter) MarshalJSON() ([]byte, error) {
	if !d.Known() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(d))
}

// UnmarshalJSON reads null back as the unknown sentinel.
func (d *Diameter) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = UnknownDiameter()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*d = Diameter(v)
	return nil
}

// NEOFields is the serialized form of an NEO. Field names and types are the
// contract consumed by the writers; JSON field order follows the output format.
type NEOFields struct {
	Designation          string   `json:"designation"`
	Name                 *string  `json:"name"`
	DiameterKm           Diameter `json:"diameter_km"`
	PotentiallyHazardous bool     `json:"potentially_hazardous"`
}

// NEO is a near-Earth object and the ordered list of its close approaches.
type NEO struct {
	designation string
	name        *string
	diameter    Diameter
	hazardous   bool
	approaches  []*Approach
}

// NewNEO validates and coerces a raw record. It returns either a fully
// initialized NEO or a *FieldError naming the offending field.
func NewNEO(rec NEORecord) (*NEO, error) {
	if err := validateRecord("neo", rec); err != nil {
		return nil, err
	}

	n := &NEO{
		designation: rec.Designation,
		diameter:    UnknownDiameter(),
		hazardous:   strings.ToLower(rec.Hazardous) == "y",
		approaches:  []*Approach{},
	}

	if rec.Name != "" {
		name := rec.Name
		n.name = &name
	}

	if rec.Diameter != "" {
		d, err := parseDiameter(rec.Diameter)
		if err != nil {
			return nil, err
		}
		n.diameter = d
	}

	return n, nil
}

func parseDiameter(raw string) (Diameter, error) {
	v, err := parseDecimal(raw)
	if err != nil {
		return 0, &FieldError{Entity: "neo", Field: "diameter", Value: raw, Expected: "float", Err: err}
	}
	if math.IsNaN(v) {
		return UnknownDiameter(), nil
	}
	if math.IsInf(v, 0) || v < 0 {
		return 0, &FieldError{Entity: "neo", Field: "diameter", Value: raw, Expected: "non-negative finite float"}
	}
	return Diameter(v), nil
}

func (n *NEO) Designation() string { return n.designation }

// Name returns the IAU name and whether one is recorded.
func (n *NEO) Name() (string, bool) {
	if n.name == nil {
		return "", false
	}
	return *n.name, true
}

// Diameter returns the diameter in kilometers, NaN when unknown.
func (n *NEO) Diameter() float64 { return float64(n.diameter) }

func (n *NEO) DiameterKnown() bool { return n.diameter.Known() }

func (n *NEO) Hazardous() bool { return n.hazardous }

// Approaches returns the registered approaches in registration order.
func (n *NEO) Approaches() []*Approach { return slices.Clone(n.approaches) }

// Append links a to n: it resolves the approach's NEO reference and registers
// it at the end of n's approach list. Nil, foreign, and already linked
// approaches are rejected and leave both sides unchanged.
func (n *NEO) Append(a *Approach) error {
	if a == nil {
		return ErrNilApproach
	}
	if a.designation != n.designation {
		return fmt.Errorf("%w: approach %q, neo %q", ErrDesignationMismatch, a.designation, n.designation)
	}
	if a.neo != nil {
		return fmt.Errorf("%w: %s at %s", ErrAlreadyLinked, a.designation, a.TimeStr())
	}
	a.neo = n
	n.approaches = append(n.approaches, a)
	return nil
}

// Fullname returns "designation (name)", or just the designation when unnamed.
func (n *NEO) Fullname() string {
	if name, ok := n.Name(); ok {
		return fmt.Sprintf("%s (%s)", n.designation, name)
	}
	return n.designation
}

func (n *NEO) String() string {
	hazard := "is not potentially hazardous"
	if n.hazardous {
		hazard = "is potentially hazardous"
	}
	if !n.DiameterKnown() {
		return fmt.Sprintf("NEO %s has an unknown diameter and %s.", n.Fullname(), hazard)
	}
	return fmt.Sprintf("NEO %s has a diameter of %.3f km and %s.", n.Fullname(), n.Diameter(), hazard)
}

// Serialize returns the flat output fields of n.
func (n *NEO) Serialize() NEOFields {
	var name *string
	if n.name != nil {
		v := *n.name
		name = &v
	}
	return NEOFields{
		Designation:          n.designation,
		Name:                 name,
		DiameterKm:           n.diameter,
		PotentiallyHazardous: n.hazardous,
	}
}

func (n *NEO) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("designation", n.designation),
		slog.Bool("hazardous", n.hazardous),
		slog.Int("approaches", len(n.approaches)),
	}
	if name, ok := n.Name(); ok {
		attrs = append(attrs, slog.String("name", name))
	}
	if n.DiameterKnown() {
		attrs = append(attrs, slog.Float64("diameter_km", n.Diameter()))
	}
	return slog.GroupValue(attrs...)
}
