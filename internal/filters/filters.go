// Package filters selects close approaches by attribute and limits result streams.
package filters

import (
	"cmp"
	"fmt"
	"iter"
	"math"
	"time"

	"github.com/couchcryptid/neo-approach-etl/internal/domain"
)

// Filter reports whether an approach should be kept.
type Filter interface {
	Match(a *domain.Approach) bool
}

// Op is a comparison operator.
type Op int

const (
	OpEq Op = iota
	OpGE
	OpLE
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "=="
	case OpGE:
		return ">="
	case OpLE:
		return "<="
	default:
		return "?"
	}
}

// AttributeFilter compares one attribute of an approach against a reference
// value. NaN attributes (unknown diameters) never match.
type AttributeFilter[T cmp.Ordered] struct {
	Name  string
	Op    Op
	Value T
	Get   func(*domain.Approach) T
}

func (f AttributeFilter[T]) Match(a *domain.Approach) bool {
	v := f.Get(a)
	switch f.Op {
	case OpEq:
		return v == f.Value
	case OpGE:
		return v >= f.Value
	case OpLE:
		return v <= f.Value
	default:
		return false
	}
}

func (f AttributeFilter[T]) String() string {
	return fmt.Sprintf("%s %s %v", f.Name, f.Op, f.Value)
}

// HazardousFilter keeps approaches whose NEO hazard flag equals Want.
type HazardousFilter struct {
	Want bool
}

func (f HazardousFilter) Match(a *domain.Approach) bool {
	return a.NEO() != nil && a.NEO().Hazardous() == f.Want
}

func (f HazardousFilter) String() string {
	return fmt.Sprintf("hazardous == %t", f.Want)
}

// Criteria holds the optional query bounds. Nil fields are not filtered on.
type Criteria struct {
	Date        *time.Time
	StartDate   *time.Time
	EndDate     *time.Time
	DistanceMin *float64
	DistanceMax *float64
	VelocityMin *float64
	VelocityMax *float64
	DiameterMin *float64
	DiameterMax *float64
	Hazardous   *bool
}

// civilDate encodes the UTC calendar date of t as YYYYMMDD.
func civilDate(t time.Time) int {
	y, m, d := t.UTC().Date()
	return y*10000 + int(m)*100 + d
}

func approachDate(a *domain.Approach) int { return civilDate(a.Time()) }

func approachDistance(a *domain.Approach) float64 { return a.Distance() }

func approachVelocity(a *domain.Approach) float64 { return a.Velocity() }

func neoDiameter(a *domain.Approach) float64 {
	if a.NEO() == nil {
		return math.NaN()
	}
	return a.NEO().Diameter()
}

// Create builds the filter set for c. Dates compare by UTC calendar day.
func Create(c Criteria) []Filter {
	var out []Filter

	addDate := func(t *time.Time, op Op) {
		if t != nil {
			out = append(out, AttributeFilter[int]{Name: "date", Op: op, Value: civilDate(*t), Get: approachDate})
		}
	}
	addFloat := func(name string, v *float64, op Op, get func(*domain.Approach) float64) {
		if v != nil {
			out = append(out, AttributeFilter[float64]{Name: name, Op: op, Value: *v, Get: get})
		}
	}

	addDate(c.Date, OpEq)
	addDate(c.StartDate, OpGE)
	addDate(c.EndDate, OpLE)
	addFloat("distance", c.DistanceMin, OpGE, approachDistance)
	addFloat("distance", c.DistanceMax, OpLE, approachDistance)
	addFloat("velocity", c.VelocityMin, OpGE, approachVelocity)
	addFloat("velocity", c.VelocityMax, OpLE, approachVelocity)
	addFloat("diameter", c.DiameterMin, OpGE, neoDiameter)
	addFloat("diameter", c.DiameterMax, OpLE, neoDiameter)
	if c.Hazardous != nil {
		out = append(out, HazardousFilter{Want: *c.Hazardous})
	}

	return out
}

// MatchAll reports whether a passes every filter.
func MatchAll(a *domain.Approach, fs []Filter) bool {
	for _, f := range fs {
		if !f.Match(a) {
			return false
		}
	}
	return true
}

// Limit yields at most n items from seq and stops pulling once the limit is
// reached. n <= 0 means no limit.
func Limit[T any](seq iter.Seq[T], n int) iter.Seq[T] {
	if n <= 0 {
		return seq
	}
	return func(yield func(T) bool) {
		count := 0
		for v := range seq {
			if !yield(v) {
				return
			}
			count++
			if count >= n {
				return
			}
		}
	}
}
