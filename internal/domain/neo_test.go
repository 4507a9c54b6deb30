package domain

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDesignation = "433"

func erosRecord() NEORecord {
	return NEORecord{Designation: testDesignation, Name: "Eros", Diameter: "16.84", Hazardous: "N"}
}

func TestNewNEO(t *testing.T) {
	t.Run("full record", func(t *testing.T) {
		neo, err := NewNEO(erosRecord())
		require.NoError(t, err)

		assert.Equal(t, testDesignation, neo.Designation())
		name, ok := neo.Name()
		assert.True(t, ok)
		assert.Equal(t, "Eros", name)
		assert.Equal(t, 16.84, neo.Diameter())
		assert.True(t, neo.DiameterKnown())
		assert.False(t, neo.Hazardous())
		assert.NotNil(t, neo.Approaches())
		assert.Empty(t, neo.Approaches())
	})

	t.Run("empty name is absent", func(t *testing.T) {
		rec := erosRecord()
		rec.Name = ""
		neo, err := NewNEO(rec)
		require.NoError(t, err)

		name, ok := neo.Name()
		assert.False(t, ok)
		assert.Empty(t, name)
		assert.Nil(t, neo.Serialize().Name)
	})

	t.Run("empty diameter is unknown", func(t *testing.T) {
		rec := erosRecord()
		rec.Diameter = ""
		neo, err := NewNEO(rec)
		require.NoError(t, err)

		assert.False(t, neo.DiameterKnown())
		assert.True(t, math.IsNaN(neo.Diameter()))
	})

	t.Run("zero diameter is known", func(t *testing.T) {
		rec := erosRecord()
		rec.Diameter = "0"
		neo, err := NewNEO(rec)
		require.NoError(t, err)

		assert.True(t, neo.DiameterKnown())
		assert.Equal(t, 0.0, neo.Diameter())
	})

	t.Run("missing designation", func(t *testing.T) {
		rec := erosRecord()
		rec.Designation = ""
		neo, err := NewNEO(rec)

		require.Error(t, err)
		assert.Nil(t, neo)
		var fe *FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "pdes", fe.Field)
		assert.ErrorIs(t, err, ErrInvalidField)
	})

	t.Run("unparseable diameter", func(t *testing.T) {
		rec := erosRecord()
		rec.Diameter = "big"
		neo, err := NewNEO(rec)

		require.Error(t, err)
		assert.Nil(t, neo)
		var fe *FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "neo", fe.Entity)
		assert.Equal(t, "diameter", fe.Field)
		assert.Equal(t, "big", fe.Value)
		assert.Equal(t, "float", fe.Expected)
		assert.Contains(t, err.Error(), `"big"`)
	})

	t.Run("hex diameter", func(t *testing.T) {
		for _, raw := range []string{"0x1p-2", "-0X1P+1", "0x_1p0"} {
			rec := erosRecord()
			rec.Diameter = raw
			neo, err := NewNEO(rec)

			assert.Nil(t, neo, raw)
			var fe *FieldError
			require.ErrorAs(t, err, &fe, raw)
			assert.Equal(t, "diameter", fe.Field)
			assert.Equal(t, "float", fe.Expected)
		}
	})

	t.Run("scientific diameter", func(t *testing.T) {
		rec := erosRecord()
		rec.Diameter = "1.5e-3"
		neo, err := NewNEO(rec)
		require.NoError(t, err)
		assert.InDelta(t, 0.0015, neo.Diameter(), 1e-12)
	})

	t.Run("negative diameter", func(t *testing.T) {
		rec := erosRecord()
		rec.Diameter = "-1.5"
		_, err := NewNEO(rec)
		assert.ErrorIs(t, err, ErrInvalidField)
	})
}

func TestNewNEO_Hazardous(t *testing.T) {
	tests := []struct {
		name     string
		pha      string
		expected bool
	}{
		{"upper Y", "Y", true},
		{"lower y", "y", true},
		{"upper N", "N", false},
		{"lower n", "n", false},
		{"empty", "", false},
		{"yes spelled out", "yes", false},
		{"padded", " Y", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := erosRecord()
			rec.Hazardous = tt.pha
			neo, err := NewNEO(rec)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, neo.Hazardous())
		})
	}
}

func TestNEORecordFromFields(t *testing.T) {
	rec := NEORecordFromFields(map[string]string{
		"PDES":     testDesignation,
		"Name":     "Eros",
		"diameter": "16.84",
		"pha":      "Y",
		"albedo":   "0.25",
	})

	assert.Equal(t, NEORecord{Designation: testDesignation, Name: "Eros", Diameter: "16.84", Hazardous: "Y"}, rec)
}

func TestNEORecordFromFields_MissingHazard(t *testing.T) {
	neo, err := NewNEO(NEORecordFromFields(map[string]string{"pdes": "2020 AB"}))
	require.NoError(t, err)

	assert.False(t, neo.Hazardous())
	assert.False(t, neo.DiameterKnown())
	_, ok := neo.Name()
	assert.False(t, ok)
}

func TestNEO_Fullname(t *testing.T) {
	named, err := NewNEO(erosRecord())
	require.NoError(t, err)
	assert.Equal(t, "433 (Eros)", named.Fullname())

	unnamed, err := NewNEO(NEORecord{Designation: "2020 AB"})
	require.NoError(t, err)
	assert.Equal(t, "2020 AB", unnamed.Fullname())
}

func TestNEO_String(t *testing.T) {
	known, err := NewNEO(erosRecord())
	require.NoError(t, err)
	assert.Equal(t, "NEO 433 (Eros) has a diameter of 16.840 km and is not potentially hazardous.", known.String())

	unknown, err := NewNEO(NEORecord{Designation: "2020 AB", Hazardous: "Y"})
	require.NoError(t, err)
	s := unknown.String()
	assert.Equal(t, "NEO 2020 AB has an unknown diameter and is potentially hazardous.", s)
	assert.NotContains(t, s, "NaN")
}

func TestNEO_Serialize(t *testing.T) {
	neo, err := NewNEO(erosRecord())
	require.NoError(t, err)

	fields := neo.Serialize()
	assert.Equal(t, testDesignation, fields.Designation)
	require.NotNil(t, fields.Name)
	assert.Equal(t, "Eros", *fields.Name)
	assert.Equal(t, Diameter(16.84), fields.DiameterKm)
	assert.False(t, fields.PotentiallyHazardous)

	// Mutating the serialized name must not reach the entity.
	*fields.Name = "changed"
	name, _ := neo.Name()
	assert.Equal(t, "Eros", name)

	data, err := json.Marshal(neo.Serialize())
	require.NoError(t, err)
	assert.JSONEq(t, `{"designation":"433","name":"Eros","diameter_km":16.84,"potentially_hazardous":false}`, string(data))
}

func TestNEO_SerializeUnknownDiameterRoundTrip(t *testing.T) {
	neo, err := NewNEO(NEORecord{Designation: "2020 AB"})
	require.NoError(t, err)

	data, err := json.Marshal(neo.Serialize())
	require.NoError(t, err)
	assert.JSONEq(t, `{"designation":"2020 AB","name":null,"diameter_km":null,"potentially_hazardous":false}`, string(data))

	var back NEOFields
	require.NoError(t, json.Unmarshal(data, &back))
	assert.False(t, back.DiameterKm.Known())
	assert.Nil(t, back.Name)
}

func TestNEO_Append(t *testing.T) {
	neo, err := NewNEO(erosRecord())
	require.NoError(t, err)

	first := mustApproach(t, testDesignation, "1900-Dec-27 01:30")
	second := mustApproach(t, testDesignation, "1907-Nov-05 03:31")

	require.NoError(t, neo.Append(first))
	require.NoError(t, neo.Append(second))

	assert.Equal(t, []*Approach{first, second}, neo.Approaches())
	assert.Same(t, neo, first.NEO())
	assert.Same(t, neo, second.NEO())

	t.Run("nil approach", func(t *testing.T) {
		assert.ErrorIs(t, neo.Append(nil), ErrNilApproach)
	})

	t.Run("already linked", func(t *testing.T) {
		assert.ErrorIs(t, neo.Append(first), ErrAlreadyLinked)
		assert.Len(t, neo.Approaches(), 2)
	})

	t.Run("designation mismatch", func(t *testing.T) {
		other := mustApproach(t, "1036", "1900-Dec-27 01:30")
		err := neo.Append(other)
		assert.True(t, errors.Is(err, ErrDesignationMismatch))
		assert.False(t, other.Linked())
		assert.Len(t, neo.Approaches(), 2)
	})

	t.Run("approaches copy is detached", func(t *testing.T) {
		list := neo.Approaches()
		list[0] = nil
		assert.Same(t, first, neo.Approaches()[0])
	})
}

func mustApproach(t *testing.T, designation, date string) *Approach {
	t.Helper()
	a, err := NewApproach(ApproachRecord{Designation: designation, Date: date, Distance: "0.3", Velocity: "5.5"})
	require.NoError(t, err)
	return a
}
