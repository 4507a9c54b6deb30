// Package write renders linked close approaches as CSV or JSON.
package write

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/couchcryptid/neo-approach-etl/internal/domain"
)

// ErrUnlinkedApproach is returned when an approach reaches a writer before
// its NEO reference was resolved.
var ErrUnlinkedApproach = errors.New("approach is not linked to a neo")

// Record is one output element: the approach fields at the top level and the
// owning NEO nested under "neo".
type Record struct {
	domain.ApproachFields
	NEO domain.NEOFields `json:"neo"`
}

// NewRecord merges an approach's fields with its NEO's fields.
func NewRecord(a *domain.Approach) (Record, error) {
	if a == nil || !a.Linked() {
		designation := ""
		if a != nil {
			designation = a.Designation()
		}
		return Record{}, fmt.Errorf("%w: %q", ErrUnlinkedApproach, designation)
	}
	return Record{
		ApproachFields: a.Serialize(),
		NEO:            a.NEO().Serialize(),
	}, nil
}

// csvHeader is the fixed output column order.
var csvHeader = []string{
	"datetime_utc",
	"distance_au",
	"velocity_km_s",
	"designation",
	"name",
	"diameter_km",
	"potentially_hazardous",
}

// CSVRow renders r in csvHeader order.
func (r Record) CSVRow() []string {
	name := ""
	if r.NEO.Name != nil {
		name = *r.NEO.Name
	}
	return []string{
		r.DateTimeUTC,
		formatFloat(r.DistanceAU),
		formatFloat(r.VelocityKmS),
		r.NEO.Designation,
		name,
		formatFloat(float64(r.NEO.DiameterKm)),
		formatBool(r.NEO.PotentiallyHazardous),
	}
}

// formatFloat renders floats the way the published CSV extracts do: shortest
// round-trip digits, a trailing ".0" on integral values, exponent form outside
// [1e-4, 1e16), and "nan" for an unknown value.
func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
