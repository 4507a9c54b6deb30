package filters

import (
	"iter"
	"slices"
	"testing"
	"time"

	"github.com/couchcryptid/neo-approach-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func approach(t *testing.T, neoRec domain.NEORecord, date, dist, vel string) *domain.Approach {
	t.Helper()
	neo, err := domain.NewNEO(neoRec)
	require.NoError(t, err)
	a, err := domain.NewApproach(domain.ApproachRecord{Designation: neoRec.Designation, Date: date, Distance: dist, Velocity: vel})
	require.NoError(t, err)
	require.NoError(t, neo.Append(a))
	return a
}

func fixtures(t *testing.T) []*domain.Approach {
	t.Helper()
	eros := domain.NEORecord{Designation: "433", Name: "Eros", Diameter: "16.84", Hazardous: "N"}
	apophis := domain.NEORecord{Designation: "99942", Name: "Apophis", Diameter: "0.37", Hazardous: "Y"}
	unknown := domain.NEORecord{Designation: "2020 AB", Hazardous: "Y"}

	return []*domain.Approach{
		approach(t, eros, "2020-Jan-01 00:00", "0.30", "5.5"),
		approach(t, apophis, "2020-Jan-01 23:59", "0.05", "7.4"),
		approach(t, unknown, "2020-Jan-02 12:00", "0.01", "15.0"),
		approach(t, eros, "2020-Mar-15 06:00", "0.45", "3.1"),
	}
}

func selectDesignations(approaches []*domain.Approach, fs []Filter) []string {
	var out []string
	for _, a := range approaches {
		if MatchAll(a, fs) {
			out = append(out, a.Designation()+"@"+a.TimeStr())
		}
	}
	return out
}

func TestCreate(t *testing.T) {
	all := fixtures(t)
	jan1 := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	jan2 := time.Date(2020, time.January, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		criteria Criteria
		expected []string
	}{
		{"no criteria", Criteria{}, []string{
			"433@2020-01-01 00:00", "99942@2020-01-01 23:59", "2020 AB@2020-01-02 12:00", "433@2020-03-15 06:00",
		}},
		{"exact date", Criteria{Date: &jan1}, []string{"433@2020-01-01 00:00", "99942@2020-01-01 23:59"}},
		{"start date", Criteria{StartDate: &jan2}, []string{"2020 AB@2020-01-02 12:00", "433@2020-03-15 06:00"}},
		{"end date", Criteria{EndDate: &jan1}, []string{"433@2020-01-01 00:00", "99942@2020-01-01 23:59"}},
		{"distance bounds", Criteria{DistanceMin: ptr(0.05), DistanceMax: ptr(0.30)}, []string{
			"433@2020-01-01 00:00", "99942@2020-01-01 23:59",
		}},
		{"velocity min", Criteria{VelocityMin: ptr(7.0)}, []string{"99942@2020-01-01 23:59", "2020 AB@2020-01-02 12:00"}},
		{"velocity max", Criteria{VelocityMax: ptr(3.1)}, []string{"433@2020-03-15 06:00"}},
		{"diameter min excludes unknown", Criteria{DiameterMin: ptr(0.0)}, []string{
			"433@2020-01-01 00:00", "99942@2020-01-01 23:59", "433@2020-03-15 06:00",
		}},
		{"diameter max", Criteria{DiameterMax: ptr(1.0)}, []string{"99942@2020-01-01 23:59"}},
		{"hazardous", Criteria{Hazardous: ptr(true)}, []string{"99942@2020-01-01 23:59", "2020 AB@2020-01-02 12:00"}},
		{"not hazardous", Criteria{Hazardous: ptr(false)}, []string{"433@2020-01-01 00:00", "433@2020-03-15 06:00"}},
		{"combined", Criteria{StartDate: &jan1, EndDate: &jan2, Hazardous: ptr(true), DiameterMin: ptr(0.1)}, []string{
			"99942@2020-01-01 23:59",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, selectDesignations(all, Create(tt.criteria)))
		})
	}
}

func TestCreate_NoCriteriaIsEmpty(t *testing.T) {
	assert.Empty(t, Create(Criteria{}))
}

func TestAttributeFilter_String(t *testing.T) {
	f := AttributeFilter[float64]{Name: "distance", Op: OpGE, Value: 0.1}
	assert.Equal(t, "distance >= 0.1", f.String())
	assert.Equal(t, "hazardous == true", HazardousFilter{Want: true}.String())
}

func TestLimit(t *testing.T) {
	seq := slices.Values([]int{1, 2, 3, 4, 5})

	tests := []struct {
		name     string
		n        int
		expected []int
	}{
		{"limit below length", 2, []int{1, 2}},
		{"limit equal length", 5, []int{1, 2, 3, 4, 5}},
		{"limit above length", 10, []int{1, 2, 3, 4, 5}},
		{"zero means unlimited", 0, []int{1, 2, 3, 4, 5}},
		{"negative means unlimited", -1, []int{1, 2, 3, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, slices.Collect(Limit(seq, tt.n)))
		})
	}
}

func TestLimit_StopsPulling(t *testing.T) {
	pulled := 0
	var seq iter.Seq[int] = func(yield func(int) bool) {
		for i := 0; i < 100; i++ {
			pulled++
			if !yield(i) {
				return
			}
		}
	}

	assert.Equal(t, []int{0, 1, 2}, slices.Collect(Limit(seq, 3)))
	assert.Equal(t, 3, pulled)
}
