package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// NEORecord is the raw, string-typed form of one neos.csv row.
// The field tag carries the JPL column name used in errors.
type NEORecord struct {
	Designation string `field:"pdes" validate:"required"`
	Name        string `field:"name"`
	Diameter    string `field:"diameter"`
	Hazardous   string `field:"pha"`
}

// ApproachRecord is the raw, string-typed form of one cad.json data row.
type ApproachRecord struct {
	Designation string `field:"des"   validate:"required"`
	Date        string `field:"cd"    validate:"required"`
	Distance    string `field:"dist"  validate:"required"`
	Velocity    string `field:"v_rel" validate:"required"`
}

// NEORecordFromFields maps a field-name-keyed row onto an NEORecord.
// Names are matched case-insensitively; unrecognized fields are ignored.
func NEORecordFromFields(fields map[string]string) NEORecord {
	var rec NEORecord
	for key, value := range fields {
		switch strings.ToLower(key) {
		case "pdes":
			rec.Designation = value
		case "name":
			rec.Name = value
		case "diameter":
			rec.Diameter = value
		case "pha":
			rec.Hazardous = value
		}
	}
	return rec
}

// ApproachRecordFromFields maps a field-name-keyed row onto an ApproachRecord.
// Names are matched case-insensitively; unrecognized fields are ignored.
func ApproachRecordFromFields(fields map[string]string) ApproachRecord {
	var rec ApproachRecord
	for key, value := range fields {
		switch strings.ToLower(key) {
		case "des":
			rec.Designation = value
		case "cd":
			rec.Date = value
		case "dist":
			rec.Distance = value
		case "v_rel":
			rec.Velocity = value
		}
	}
	return rec
}

var (
	recordValidator     *validator.Validate
	recordValidatorOnce sync.Once
)

func getRecordValidator() *validator.Validate {
	recordValidatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			return f.Tag.Get("field")
		})
		recordValidator = v
	})
	return recordValidator
}

// validateRecord checks struct-tag constraints and reports the first failure
// as a FieldError.
func validateRecord(entity string, rec any) error {
	err := getRecordValidator().Struct(rec)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &FieldError{
			Entity:   entity,
			Field:    fe.Field(),
			Value:    fmt.Sprint(fe.Value()),
			Expected: "non-empty string",
		}
	}
	return fmt.Errorf("validate %s record: %w", entity, err)
}

var errNonDecimal = errors.New("not a decimal number")

// parseDecimal parses a float in decimal or scientific notation. Hexadecimal
// floats such as "0x1p-2", which strconv accepts, are rejected.
func parseDecimal(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	digits := strings.TrimLeft(s, "+-")
	if len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return 0, errNonDecimal
	}
	return strconv.ParseFloat(s, 64)
}
